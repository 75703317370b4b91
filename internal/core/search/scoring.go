package search

import (
	"math"

	"property-search-service/internal/core/domain"
)

// Weights - коэффициенты составной оценки. Подобраны эмпирически,
// поэтому вынесены в конфигурацию, а не зашиты в формулу.
type Weights struct {
	TextRelevance float64

	SubcategoryMatch    float64
	SubcategoryMismatch float64 // штраф, вычитается
	PurposeMismatch     float64 // штраф, вычитается

	PriceCloseness float64
	PriceKnown     float64

	RoomsUnknown float64 // штраф за неизвестное количество спален/ванных

	BedsShortPerUnit  float64
	BedsBase          float64
	BedsSurplusStep   float64
	BedsCap           float64
	BathsShortPerUnit float64
	BathsBase         float64
	BathsSurplusStep  float64
	BathsCap          float64

	FeaturePerMatch float64
	FeatureCap      float64

	Freshness float64
}

func DefaultWeights() Weights {
	return Weights{
		TextRelevance:       1.0,
		SubcategoryMatch:    2.0,
		SubcategoryMismatch: 0.75,
		PurposeMismatch:     2.0,
		PriceCloseness:      2.0,
		PriceKnown:          0.25,
		RoomsUnknown:        0.25,
		BedsShortPerUnit:    1.0,
		BedsBase:            0.6,
		BedsSurplusStep:     0.2,
		BedsCap:             2.0,
		BathsShortPerUnit:   0.8,
		BathsBase:           0.5,
		BathsSurplusStep:    0.2,
		BathsCap:            1.7,
		FeaturePerMatch:     0.5,
		FeatureCap:          1.5,
		Freshness:           0.1,
	}
}

// Scorer считает составную оценку кандидата. Чистая функция от входа.
type Scorer struct {
	weights    Weights
	vocabulary VocabularyResolver
}

func NewScorer(weights Weights, vocabulary VocabularyResolver) *Scorer {
	return &Scorer{weights: weights, vocabulary: vocabulary}
}

// Score - больше значит лучше. Нормировка не нужна, важен только порядок.
func (s *Scorer) Score(l *domain.Listing, q domain.NormalizedQuery, textScore float64) float64 {
	w := s.weights
	score := w.TextRelevance * textScore

	score += s.subcategoryTerm(l, q)

	if q.Purpose != "" && l.Purpose != "" && l.Purpose != q.Purpose {
		score -= w.PurposeMismatch
	}

	score += s.priceTerm(l, q)

	if q.BedsMin != nil {
		beds, ok := l.Bedrooms()
		score += roomsTerm(beds, ok, *q.BedsMin, w.RoomsUnknown, w.BedsShortPerUnit, w.BedsBase, w.BedsSurplusStep, w.BedsCap)
	}
	if q.BathsMin != nil {
		baths, ok := l.Bathrooms()
		score += roomsTerm(baths, ok, *q.BathsMin, w.RoomsUnknown, w.BathsShortPerUnit, w.BathsBase, w.BathsSurplusStep, w.BathsCap)
	}

	if len(q.Features) > 0 {
		matched := 0
		for _, f := range q.Features {
			if l.HasFeature(f) {
				matched++
			}
		}
		score += math.Min(w.FeatureCap, w.FeaturePerMatch*float64(matched))
	}

	if l.UpdatedAt != nil {
		score += w.Freshness
	}
	return score
}

func (s *Scorer) subcategoryTerm(l *domain.Listing, q domain.NormalizedQuery) float64 {
	if q.Subcategory == "" {
		return 0
	}
	have, _ := l.CanonicalSubcategory(s.vocabulary.CanonicalSubcategory)
	if have == q.Subcategory {
		return s.weights.SubcategoryMatch
	}
	return -s.weights.SubcategoryMismatch
}

func (s *Scorer) priceTerm(l *domain.Listing, q domain.NormalizedQuery) float64 {
	p, ok := l.NumericPrice(q.Purpose)
	if !ok || p == 0 {
		return 0
	}
	if !q.HasPriceBounds() {
		return s.weights.PriceKnown
	}

	price := float64(p)
	lo, hi := price, price
	if q.PriceMin != nil {
		lo = *q.PriceMin
	}
	if q.PriceMax != nil {
		hi = *q.PriceMax
	}
	mid := (lo + hi) / 2

	// для вырожденного диапазона ширина берется от середины
	width := hi - lo
	if hi <= lo {
		width = math.Max(1, mid)
	}
	dist := math.Abs(price-mid) / math.Max(1, width)
	closeness := 1 - math.Min(1, dist)
	return s.weights.PriceCloseness * math.Max(0, closeness)
}

func roomsTerm(have int, known bool, want int, unknown, shortPerUnit, base, step, limit float64) float64 {
	if !known {
		return -unknown
	}
	if have < want {
		return -float64(want-have) * shortPerUnit
	}
	return math.Min(limit, base+step*float64(have-want))
}
