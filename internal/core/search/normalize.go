package search

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"property-search-service/internal/core/domain"
)

// keywordKeys - синонимы ключевой фразы, первый непустой выигрывает
var keywordKeys = []string{"location", "keyword", "address"}

// idKeys - порядок, в котором ищется прямой идентификатор объекта
var idKeys = []string{"listing_id", "_id", "id"}

var purposeAliases = map[string]string{
	"sale":     domain.PurposeSale,
	"sales":    domain.PurposeSale,
	"for sale": domain.PurposeSale,
	"buy":      domain.PurposeSale,
	"rental":   domain.PurposeRental,
	"rent":     domain.PurposeRental,
	"rentals":  domain.PurposeRental,
	"let":      domain.PurposeRental,
	"to let":   domain.PurposeRental,
	"lettings": domain.PurposeRental,
}

var numberCleaner = strings.NewReplacer("£", "", "$", "", "€", "", ",", "", "_", "", " ", "")

// VocabularyResolver - то, что нормализатору нужно от словаря
type VocabularyResolver interface {
	CanonicalSubcategory(text string) (string, bool)
	CanonicalFeature(text string) string
}

// Normalizer превращает нетипизированный запрос в NormalizedQuery.
type Normalizer struct {
	vocabulary VocabularyResolver
}

func NewNormalizer(vocabulary VocabularyResolver) *Normalizer {
	return &Normalizer{vocabulary: vocabulary}
}

// Normalize падает только если нет ни ключевого слова, ни идентификатора.
// Некорректные числовые значения молча отбрасываются.
func (n *Normalizer) Normalize(raw domain.RawQuery) (domain.NormalizedQuery, error) {
	q := domain.NormalizedQuery{}

	q.Keyword = firstNonEmpty(raw, keywordKeys...)
	q.ListingID = firstNonEmpty(raw, idKeys...)
	if q.Keyword == "" && q.ListingID == "" {
		return domain.NormalizedQuery{}, domain.ErrMissingKeyword
	}

	if p, ok := purposeAliases[strings.ToLower(stringValue(raw["purpose"]))]; ok {
		q.Purpose = p
	}
	q.Status = strings.ToLower(stringValue(raw["status"]))

	q.SubcategoryText = stringValue(raw["subcategory"])
	if q.SubcategoryText == "" {
		q.SubcategoryText = stringValue(raw["subcategory_canonical"])
	}
	if canon, ok := n.vocabulary.CanonicalSubcategory(q.SubcategoryText); ok {
		q.Subcategory = canon
	}

	q.PriceMin = floatValue(raw["price_min"])
	q.PriceMax = floatValue(raw["price_max"])
	q.BedsMin = minimumValue(raw["beds_min"])
	q.BathsMin = minimumValue(raw["baths_min"])

	for _, f := range stringList(raw["features"]) {
		canon := n.vocabulary.CanonicalFeature(f)
		if canon == "" || slices.Contains(q.Features, canon) {
			continue
		}
		q.Features = append(q.Features, canon)
	}

	return q, nil
}

func firstNonEmpty(raw domain.RawQuery, keys ...string) string {
	for _, k := range keys {
		if s := stringValue(raw[k]); s != "" {
			return s
		}
	}
	return ""
}

// stringValue приводит строки и числа к строке, остальное считает отсутствующим.
func stringValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int, int32, int64:
		return fmt.Sprintf("%d", t)
	default:
		return ""
	}
}

func floatValue(v interface{}) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(numberCleaner.Replace(strings.TrimSpace(t)), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// MaxRoomsMinimum - потолок для beds_min/baths_min. Больше ничего не бывает,
// а фильтр по-прежнему ничего не находит и поиск уходит в text_no_beds.
const MaxRoomsMinimum = 1000

// minimumValue - для beds_min/baths_min. Дробные значения округляются вверх, ноль и отрицательные - отсутствие фильтра.
func minimumValue(v interface{}) *int {
	f := floatValue(v)
	if f == nil || *f <= 0 {
		return nil
	}
	n := MaxRoomsMinimum
	if *f < MaxRoomsMinimum {
		n = int(math.Ceil(*f))
	}
	return &n
}

// stringList принимает как список, так и строку через запятую.
func stringList(v interface{}) []string {
	var out []string
	switch t := v.(type) {
	case []string:
		out = append(out, t...)
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case string:
		out = strings.Split(t, ",")
	}
	return out
}
