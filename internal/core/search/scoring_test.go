package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"property-search-service/internal/core/domain"
	"property-search-service/internal/core/vocabulary"
)

func newTestScorer() *Scorer {
	return NewScorer(DefaultWeights(), vocabulary.NewResolver(vocabulary.DefaultCutoff))
}

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }

func TestScore_PriceClosenessAtMidpoint(t *testing.T) {
	s := newTestScorer()
	l := &domain.Listing{Prices: domain.Prices{SaleGBP: 1500000}}

	q := domain.NormalizedQuery{PriceMin: ptrFloat(1000000), PriceMax: ptrFloat(2000000)}
	assert.InDelta(t, 2.0, s.Score(l, q, 0), 1e-9)

	// граница диапазона дает половину
	l.Prices.SaleGBP = 2000000
	assert.InDelta(t, 1.0, s.Score(l, q, 0), 1e-9)
}

func TestScore_PriceClosenessDegenerateRange(t *testing.T) {
	s := newTestScorer()
	l := &domain.Listing{Prices: domain.Prices{SaleGBP: "1000000"}}

	q := domain.NormalizedQuery{PriceMin: ptrFloat(1000000), PriceMax: ptrFloat(1000000)}
	assert.InDelta(t, 2.0, s.Score(l, q, 0), 1e-9)

	onlyMax := domain.NormalizedQuery{PriceMax: ptrFloat(1000000)}
	assert.InDelta(t, 2.0, s.Score(l, onlyMax, 0), 1e-9)
}

func TestScore_PriceKnownWithoutBounds(t *testing.T) {
	s := newTestScorer()

	withPrice := &domain.Listing{Prices: domain.Prices{Display: "Guide price £2,350,000"}}
	without := &domain.Listing{}

	assert.InDelta(t, 0.25, s.Score(withPrice, domain.NormalizedQuery{}, 0), 1e-9)
	assert.InDelta(t, 0.0, s.Score(without, domain.NormalizedQuery{}, 0), 1e-9)
}

func TestScore_BedsTerm(t *testing.T) {
	s := newTestScorer()
	q := domain.NormalizedQuery{BedsMin: ptrInt(2)}

	exact := &domain.Listing{Attributes: map[string]interface{}{"bedrooms": "2"}}
	short := &domain.Listing{Beds: 1}
	unknown := &domain.Listing{}

	assert.Greater(t, s.Score(exact, q, 0), 0.0)
	assert.Less(t, s.Score(short, q, 0), 0.0)
	assert.Equal(t, -0.25, s.Score(unknown, q, 0))

	surplus := &domain.Listing{Beds: 20}
	assert.InDelta(t, 2.0, s.Score(surplus, q, 0), 1e-9)
}

func TestScore_BathsShortfall(t *testing.T) {
	s := newTestScorer()
	q := domain.NormalizedQuery{BathsMin: ptrInt(5)}

	l := &domain.Listing{AttributesFull: map[string]interface{}{"bathrooms": 3}}
	assert.InDelta(t, -1.6, s.Score(l, q, 0), 1e-9)
}

func TestScore_SubcategoryOrdering(t *testing.T) {
	s := newTestScorer()
	q := domain.NormalizedQuery{Subcategory: domain.SubcategoryFlat}

	canonical := &domain.Listing{SubcategoryCanonical: domain.SubcategoryFlat}
	fromRaw := &domain.Listing{Subcategories: []string{"Penthouse"}}
	mismatch := &domain.Listing{SubcategoryCanonical: domain.SubcategoryHouse}
	unknown := &domain.Listing{}

	assert.Greater(t, s.Score(canonical, q, 0), s.Score(mismatch, q, 0))
	assert.Equal(t, s.Score(canonical, q, 0), s.Score(fromRaw, q, 0))
	assert.Equal(t, s.Score(mismatch, q, 0), s.Score(unknown, q, 0))
	assert.Equal(t, 0.0, s.Score(canonical, domain.NormalizedQuery{}, 0))
}

func TestScore_PurposeMismatchPenalised(t *testing.T) {
	s := newTestScorer()
	q := domain.NormalizedQuery{Purpose: domain.PurposeSale}

	same := &domain.Listing{Purpose: domain.PurposeSale}
	other := &domain.Listing{Purpose: domain.PurposeRental}
	missing := &domain.Listing{}

	assert.Less(t, s.Score(other, q, 0), s.Score(same, q, 0))
	assert.Equal(t, s.Score(same, q, 0), s.Score(missing, q, 0))
}

func TestScore_FeatureCoverageIsCapped(t *testing.T) {
	s := newTestScorer()
	l := &domain.Listing{
		Features:   []string{"Lift", "Balcony", "Private garden"},
		Highlights: []string{"Guest WC off the hall"},
	}

	one := domain.NormalizedQuery{Features: []string{"lift"}}
	all := domain.NormalizedQuery{Features: []string{"lift", "balcony", "private garden", "guest wc"}}

	assert.InDelta(t, 0.5, s.Score(l, one, 0), 1e-9)
	assert.InDelta(t, 1.5, s.Score(l, all, 0), 1e-9)
}

func TestScore_TextRelevanceAndFreshness(t *testing.T) {
	s := newTestScorer()
	now := time.Now()

	fresh := &domain.Listing{UpdatedAt: &now}
	stale := &domain.Listing{}

	assert.InDelta(t, 1.6, s.Score(fresh, domain.NormalizedQuery{}, 1.5), 1e-9)
	assert.InDelta(t, 1.5, s.Score(stale, domain.NormalizedQuery{}, 1.5), 1e-9)
}
