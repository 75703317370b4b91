package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"property-search-service/internal/core/domain"
)

// Store - коллекция объектов в памяти. Используется в тестах и в CLI с файлом фикстур.
type Store struct {
	mu       sync.RWMutex
	listings []domain.Listing
}

func New(listings ...domain.Listing) *Store {
	s := &Store{}
	s.listings = append(s.listings, listings...)
	return s
}

// Add добавляет объекты в коллекцию
func (s *Store) Add(listings ...domain.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = append(s.listings, listings...)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listings)
}

func (s *Store) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.listings {
		if s.listings[i].ID == id {
			l := s.listings[i]
			return &l, nil
		}
	}
	return nil, domain.ErrListingNotFound
}

func (s *Store) FindCandidates(ctx context.Context, q domain.CandidateQuery) ([]domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var terms []string
	if q.Mode == domain.FetchText {
		terms = tokenize(q.TextTerms)
		if len(terms) == 0 {
			return nil, nil
		}
	} else if q.Keyword == "" {
		return nil, nil
	}

	var out []domain.Candidate
	for i := range s.listings {
		l := &s.listings[i]
		if !matchesStructured(l, q) {
			continue
		}

		switch q.Mode {
		case domain.FetchText:
			score := textScore(l, terms)
			if score <= 0 {
				continue
			}
			out = append(out, domain.Candidate{Listing: *l, TextScore: score})
		default:
			if !containsFold(substringFields(l), q.Keyword) {
				continue
			}
			out = append(out, domain.Candidate{Listing: *l})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TextScore != out[j].TextScore {
			return out[i].TextScore > out[j].TextScore
		}
		return updatedAt(out[i].Listing).After(updatedAt(out[j].Listing))
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func updatedAt(l domain.Listing) time.Time {
	if l.UpdatedAt == nil {
		return time.Time{}
	}
	return *l.UpdatedAt
}

func (s *Store) EnsureIndexes(ctx context.Context) error { return nil }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
