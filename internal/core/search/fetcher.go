package search

import (
	"context"
	"fmt"
	"strings"

	"property-search-service/internal/core/domain"
	"property-search-service/internal/core/port"
)

const (
	MinCandidateLimit     = 40
	MaxCandidateLimit     = 50
	DefaultCandidateLimit = MinCandidateLimit
)

// tierPlan - какие фильтры активны на уровне
type tierPlan struct {
	mode       domain.FetchMode
	applyPrice bool
	applyRooms bool
}

var tierPlans = map[domain.Tier]tierPlan{
	domain.TierTextStrict:    {mode: domain.FetchText, applyPrice: true, applyRooms: true},
	domain.TierTextNoPrice:   {mode: domain.FetchText, applyPrice: false, applyRooms: true},
	domain.TierTextNoBeds:    {mode: domain.FetchText, applyPrice: true, applyRooms: false},
	domain.TierRegexFallback: {mode: domain.FetchSubstring, applyPrice: false, applyRooms: false},
}

// Fetcher строит выборку для тира и передает ее хранилищу. Ошибки хранилища не повторяются.
type Fetcher struct {
	store port.ListingStorePort
	limit int
}

func NewFetcher(store port.ListingStorePort, limit int) *Fetcher {
	return &Fetcher{store: store, limit: ClampLimit(limit)}
}

// ClampLimit приводит размер выборки к допустимому диапазону 40..50.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultCandidateLimit
	case limit < MinCandidateLimit:
		return MinCandidateLimit
	case limit > MaxCandidateLimit:
		return MaxCandidateLimit
	default:
		return limit
	}
}

// BuildQuery переводит нормализованный запрос в выборку конкретного тира.
// Второе значение false означает, что тир заведомо пуст и обращаться к хранилищу не нужно.
func (f *Fetcher) BuildQuery(tier domain.Tier, q domain.NormalizedQuery) (domain.CandidateQuery, bool) {
	plan, ok := tierPlans[tier]
	if !ok {
		return domain.CandidateQuery{}, false
	}

	cq := domain.CandidateQuery{
		Purpose:     q.Purpose,
		Status:      q.Status,
		Subcategory: q.Subcategory,
		Mode:        plan.mode,
		Keyword:     strings.TrimSpace(q.Keyword),
		Limit:       f.limit,
	}
	if plan.applyPrice {
		cq.PriceMin, cq.PriceMax = q.PriceMin, q.PriceMax
	}
	if plan.applyRooms {
		cq.BedsMin, cq.BathsMin = q.BedsMin, q.BathsMin
	}

	switch plan.mode {
	case domain.FetchText:
		cq.TextTerms = TextTerms(q)
		return cq, cq.TextTerms != ""
	default:
		return cq, cq.Keyword != ""
	}
}

// TextTerms - ключевое слово плюс канонические фичи через пробел
func TextTerms(q domain.NormalizedQuery) string {
	parts := make([]string, 0, len(q.Features)+1)
	if k := strings.TrimSpace(q.Keyword); k != "" {
		parts = append(parts, k)
	}
	for _, feat := range q.Features {
		if feat != "" {
			parts = append(parts, feat)
		}
	}
	return strings.Join(parts, " ")
}

func (f *Fetcher) Fetch(ctx context.Context, tier domain.Tier, q domain.NormalizedQuery) ([]domain.Candidate, error) {
	cq, ok := f.BuildQuery(tier, q)
	if !ok {
		return nil, nil
	}
	candidates, err := f.store.FindCandidates(ctx, cq)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates for tier %s: %w", tier, err)
	}
	if len(candidates) > cq.Limit {
		candidates = candidates[:cq.Limit]
	}
	return candidates, nil
}
