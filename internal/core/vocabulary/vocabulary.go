// Package vocabulary приводит свободный текст подкатегорий и удобств
// к фиксированному каноническому словарю.
package vocabulary

import (
	"sort"
	"strings"

	"property-search-service/internal/core/domain"

	"github.com/xrash/smetrics"
	"golang.org/x/text/cases"
)

// DefaultCutoff - минимальная похожесть для нечеткого совпадения
const DefaultCutoff = 0.8

var subcategorySynonyms = map[string][]string{
	domain.SubcategoryHouse: {
		"detached house", "semi-detached house", "terraced house",
		"end of terrace house", "mid terrace house", "town house", "mews house",
		"character property", "mews", "mews home",
	},
	domain.SubcategoryFlat: {
		"apartment", "apartments", "studio", "duplex", "penthouse",
		"maisonette", "flat",
	},
	domain.SubcategoryOther: {"house boat", "houseboat", "boat"},
}

var featureSynonyms = map[string][]string{
	"private garden":     {"garden", "roof garden", "roof terrace", "terrace"},
	"stairs":             {"stairs", "internal staircase", "duplex", "internal stairs"},
	"off-street parking": {"off street", "private parking", "driveway"},
	"double garage":      {"double garage", "garage (2 car)", "garage en bloc"},
	"lift":               {"lift", "elevator"},
	"balcony":            {"balcony", "front terrace"},
	"guest wc":           {"guest wc", "guest cloakroom", "cloakroom", "wc"},
}

// table - словарь синонимов со стабильным порядком ключей для нечеткого поиска
type table struct {
	lookup map[string]string
	keys   []string
}

func newTable(synonyms map[string][]string) table {
	t := table{lookup: make(map[string]string)}
	for canon, syns := range synonyms {
		for _, s := range syns {
			t.lookup[strings.ToLower(s)] = canon
		}
		t.lookup[canon] = canon
	}
	t.keys = make([]string, 0, len(t.lookup))
	for k := range t.lookup {
		t.keys = append(t.keys, k)
	}
	sort.Strings(t.keys)
	return t
}

func (t table) resolve(term string, cutoff float64) (string, bool) {
	if canon, ok := t.lookup[term]; ok {
		return canon, true
	}

	best, bestRatio := "", 0.0
	for _, k := range t.keys {
		if r := similarity(term, k); r > bestRatio {
			best, bestRatio = k, r
		}
	}
	if best == "" || bestRatio < cutoff {
		return "", false
	}
	return t.lookup[best], true
}

// similarity - нормированное расстояние Левенштейна по рунам: 1 для равных строк, 0 для совсем разных.
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	ea, eb, ok := runesAsBytes(ra, rb)
	if !ok {
		ea, eb = a, b
		longest = max(len(a), len(b))
	}
	dist := smetrics.WagnerFischer(ea, eb, 1, 1, 1)
	return 1 - float64(dist)/float64(longest)
}

// runesAsBytes кодирует каждую различную руну одним байтом, чтобы побайтовый
// WagnerFischer считал расстояние в символах. Больше 256 различных рун
// закодировать нельзя, тогда ok == false и сравниваются исходные байты.
func runesAsBytes(a, b []rune) (string, string, bool) {
	codes := make(map[rune]byte)
	encode := func(rs []rune) ([]byte, bool) {
		out := make([]byte, len(rs))
		for i, r := range rs {
			c, ok := codes[r]
			if !ok {
				if len(codes) == 256 {
					return nil, false
				}
				c = byte(len(codes))
				codes[r] = c
			}
			out[i] = c
		}
		return out, true
	}

	ea, okA := encode(a)
	eb, okB := encode(b)
	if !okA || !okB {
		return "", "", false
	}
	return string(ea), string(eb), true
}

// Resolver - чистая функция от входа и статических таблиц, безопасен для конкурентного использования.
type Resolver struct {
	cutoff        float64
	subcategories table
	features      table
}

func NewResolver(cutoff float64) *Resolver {
	if cutoff <= 0 || cutoff > 1 {
		cutoff = DefaultCutoff
	}
	return &Resolver{
		cutoff:        cutoff,
		subcategories: newTable(subcategorySynonyms),
		features:      newTable(featureSynonyms),
	}
}

func fold(s string) string {
	return strings.TrimSpace(cases.Fold().String(s))
}

// CanonicalSubcategory возвращает house/flat/other или false, если текст не распознан.
func (r *Resolver) CanonicalSubcategory(text string) (string, bool) {
	t := fold(text)
	if t == "" {
		return "", false
	}
	return r.subcategories.resolve(t, r.cutoff)
}

// CanonicalFeature возвращает каноническое название удобства.
// Нераспознанный текст возвращается как есть в нижнем регистре и продолжает участвовать в поиске.
func (r *Resolver) CanonicalFeature(text string) string {
	t := fold(text)
	if t == "" {
		return ""
	}
	if canon, ok := r.features.resolve(t, r.cutoff); ok {
		return canon
	}
	return t
}
