package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"property-search-service/internal/contextkeys"
	"property-search-service/internal/core/domain"
	"property-search-service/internal/core/port"
	"property-search-service/internal/core/vocabulary"
)

const debugTopN = 5

// Config - явная конфигурация движка, создается один раз в корне композиции
type Config struct {
	CandidateLimit int
	FuzzyCutoff    float64
	Weights        Weights
}

func DefaultConfig() Config {
	return Config{
		CandidateLimit: DefaultCandidateLimit,
		FuzzyCutoff:    vocabulary.DefaultCutoff,
		Weights:        DefaultWeights(),
	}
}

// transitions - конечный автомат тиров. Из каждого тира при пустой выборке переходим в следующий,
// TierNone - терминальное состояние без результата.
var transitions = map[domain.Tier]domain.Tier{
	domain.TierTextStrict:    domain.TierTextNoPrice,
	domain.TierTextNoPrice:   domain.TierTextNoBeds,
	domain.TierTextNoBeds:    domain.TierRegexFallback,
	domain.TierRegexFallback: domain.TierNone,
}

// InitialTier - начальное состояние автомата
const InitialTier = domain.TierTextStrict

// NextTier возвращает состояние после тира, который не дал кандидатов.
func NextTier(t domain.Tier) domain.Tier {
	if next, ok := transitions[t]; ok {
		return next
	}
	return domain.TierNone
}

// Engine - поисковый движок: перебирает тиры, пока один из них не вернет кандидатов.
// Состояния между вызовами нет, один экземпляр безопасно использовать из разных горутин.
type Engine struct {
	store   port.ListingStorePort
	fetcher *Fetcher
	scorer  *Scorer
}

func NewEngine(store port.ListingStorePort, vocabulary VocabularyResolver, cfg Config) *Engine {
	return &Engine{
		store:   store,
		fetcher: NewFetcher(store, cfg.CandidateLimit),
		scorer:  NewScorer(cfg.Weights, vocabulary),
	}
}

// Search возвращает лучший объект, имя тира и отладочный трейс.
// Отсутствие результата - не ошибка, ошибкой считается только сбой хранилища.
func (e *Engine) Search(ctx context.Context, q domain.NormalizedQuery) (*domain.MatchResult, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "SearchEngine",
	})

	if q.ListingID != "" {
		listing, err := e.store.FindByID(ctx, q.ListingID)
		switch {
		case err == nil && listing != nil:
			logger.Debug("Direct id lookup matched", port.Fields{"listing_id": listing.ID})
			return &domain.MatchResult{
				Listing: listing,
				Tier:    domain.TierIDExact,
				Debug: []domain.TierTrace{{
					Tier:       domain.TierIDExact,
					Candidates: []domain.ScoredID{{ID: listing.ID, Score: 0}},
				}},
			}, nil
		case err == nil, errors.Is(err, domain.ErrListingNotFound):
			logger.Debug("Direct id not found, falling through to tiers", port.Fields{"listing_id": q.ListingID})
		default:
			return nil, fmt.Errorf("find listing by id %q: %w", q.ListingID, err)
		}
	}

	result := &domain.MatchResult{Tier: domain.TierNone}
	for tier := InitialTier; tier != domain.TierNone; tier = NextTier(tier) {
		candidates, err := e.fetcher.Fetch(ctx, tier, q)
		if err != nil {
			return nil, err
		}

		ranked := e.rank(candidates, q)
		result.Debug = append(result.Debug, domain.TierTrace{Tier: tier, Candidates: topScored(ranked)})

		logger.Debug("Tier attempted", port.Fields{
			"tier":       string(tier),
			"candidates": len(ranked),
		})

		if len(ranked) > 0 {
			best := ranked[0].listing
			result.Listing = &best
			result.Tier = tier
			return result, nil
		}
	}

	return result, nil
}

type rankedCandidate struct {
	listing domain.Listing
	score   float64
}

// rank сортирует кандидатов по убыванию оценки. Сортировка стабильная,
// при равенстве сохраняется порядок из хранилища.
func (e *Engine) rank(candidates []domain.Candidate, q domain.NormalizedQuery) []rankedCandidate {
	ranked := make([]rankedCandidate, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		ranked = append(ranked, rankedCandidate{
			listing: c.Listing,
			score:   e.scorer.Score(&c.Listing, q, c.TextScore),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	return ranked
}

func topScored(ranked []rankedCandidate) []domain.ScoredID {
	n := min(len(ranked), debugTopN)
	out := make([]domain.ScoredID, 0, n)
	for _, r := range ranked[:n] {
		out = append(out, domain.ScoredID{ID: r.listing.ID, Score: round3(r.score)})
	}
	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
