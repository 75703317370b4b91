package memstore

import (
	"strconv"
	"strings"
	"unicode"

	"property-search-service/internal/core/domain"
)

// maxRoomsAsString - верхняя граница диапазона строковых значений спален/ванных
const maxRoomsAsString = 20

// matchesStructured повторяет структурный фильтр документных хранилищ.
func matchesStructured(l *domain.Listing, q domain.CandidateQuery) bool {
	if q.Purpose != "" && l.Purpose != q.Purpose {
		return false
	}
	if q.Status != "" && l.Status != q.Status {
		return false
	}
	if q.Subcategory != "" && !matchesSubcategory(l, q.Subcategory) {
		return false
	}
	if (q.PriceMin != nil || q.PriceMax != nil) && !matchesPrice(l, q.PriceMin, q.PriceMax) {
		return false
	}
	if q.BedsMin != nil && !matchesRooms(l, "bedrooms", l.Beds, *q.BedsMin) {
		return false
	}
	if q.BathsMin != nil && !matchesRooms(l, "bathrooms", l.Baths, *q.BathsMin) {
		return false
	}
	return true
}

func matchesSubcategory(l *domain.Listing, want string) bool {
	if l.SubcategoryCanonical == want {
		return true
	}
	want = strings.ToLower(want)
	for _, s := range l.Subcategories {
		if strings.Contains(strings.ToLower(s), want) {
			return true
		}
	}
	return false
}

// matchesPrice - ИЛИ по всем числовым представлениям цены. Строковые значения
// в сравнении не участвуют, как и в документных хранилищах.
func matchesPrice(l *domain.Listing, lo, hi *float64) bool {
	p := l.Prices
	for _, v := range []interface{}{p.SaleGBP, p.SortGBP, p.RentPCMGBP, p.MatchSale, p.MatchRentMonthly} {
		f, ok := numeric(v)
		if !ok {
			continue
		}
		if lo != nil && f < *lo {
			continue
		}
		if hi != nil && f > *hi {
			continue
		}
		return true
	}
	return false
}

// matchesRooms: число сравнивается напрямую, строка - по вхождению в ["min".."20"].
func matchesRooms(l *domain.Listing, key string, topLevel interface{}, want int) bool {
	values := []interface{}{topLevel}
	if l.Attributes != nil {
		values = append(values, l.Attributes[key])
	}
	if l.AttributesFull != nil {
		values = append(values, l.AttributesFull[key])
	}

	for _, v := range values {
		if f, ok := numeric(v); ok && f >= float64(want) {
			return true
		}
		if s, ok := v.(string); ok {
			for i := want; i <= maxRoomsAsString; i++ {
				if s == strconv.Itoa(i) {
					return true
				}
			}
		}
	}
	return false
}

func numeric(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

// textFields - поля полнотекстового индекса
func textFields(l *domain.Listing) []string {
	fields := []string{
		l.DisplayAddress,
		l.Address.FullAddress,
		l.Address.HiddenAddress,
		l.Address.Locality,
		l.Address.SuburbOrTown,
		l.Address.Postcode,
		l.Advert.Heading,
		l.Advert.Body,
	}
	fields = append(fields, l.Highlights...)
	fields = append(fields, l.Features...)
	fields = append(fields, l.LocationTerms...)
	fields = append(fields, l.Tags...)
	fields = append(fields, l.Subcategories...)
	return fields
}

// substringFields - поля для поиска подстроки в последнем тире
func substringFields(l *domain.Listing) []string {
	fields := []string{
		l.DisplayAddress,
		l.Address.Postcode,
		l.Address.FullAddress,
		l.Address.Locality,
		l.Address.SuburbOrTown,
		l.Advert.Body,
	}
	fields = append(fields, l.LocationTerms...)
	fields = append(fields, l.Highlights...)
	fields = append(fields, l.Features...)
	return fields
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// textScore - грубый аналог textScore: каждый найденный термин дает 1,
// каждое повторное вхождение еще 0.1. Ноль означает, что документ не найден.
func textScore(l *domain.Listing, terms []string) float64 {
	counts := make(map[string]int)
	for _, f := range textFields(l) {
		for _, tok := range tokenize(f) {
			counts[tok]++
		}
	}

	score := 0.0
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		if seen[t] {
			continue
		}
		seen[t] = true
		if n := counts[t]; n > 0 {
			score += 1 + 0.1*float64(n-1)
		}
	}
	return score
}

func containsFold(fields []string, needle string) bool {
	needle = strings.ToLower(needle)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
