package domain

// RawQuery - запрос в том виде, в каком он пришел от внешнего слоя (вебхук, очередь, CLI).
// Дальше нормализатора нетипизированная карта не передается.
type RawQuery map[string]interface{}

// NormalizedQuery - полностью типизированный запрос. Отсутствие фильтра выражается nil/пустой строкой.
type NormalizedQuery struct {
	Keyword   string
	ListingID string

	Purpose string // "sale", "rental" или ""
	Status  string

	// SubcategoryText - исходный текст, Subcategory - каноническое значение (может быть пустым)
	SubcategoryText string
	Subcategory     string

	PriceMin *float64
	PriceMax *float64
	BedsMin  *int
	BathsMin *int

	// Features - уже канонизированные термины
	Features []string
}

// HasPriceBounds сообщает, задана ли хотя бы одна граница цены.
func (q NormalizedQuery) HasPriceBounds() bool {
	return q.PriceMin != nil || q.PriceMax != nil
}

// FetchMode - способ поиска кандидатов в хранилище
type FetchMode int

const (
	FetchText FetchMode = iota
	FetchSubstring
)

func (m FetchMode) String() string {
	switch m {
	case FetchText:
		return "text"
	case FetchSubstring:
		return "substring"
	default:
		return "unknown"
	}
}

// CandidateQuery - независимое от хранилища описание выборки одного тира.
// Адаптеры хранилищ переводят его в свой язык запросов.
type CandidateQuery struct {
	Purpose     string
	Status      string
	Subcategory string

	PriceMin *float64
	PriceMax *float64
	BedsMin  *int
	BathsMin *int

	Mode FetchMode
	// TextTerms - строка для полнотекстового поиска (ключевое слово + канонические фичи)
	TextTerms string
	// Keyword - сырое ключевое слово для поиска подстроки
	Keyword string

	Limit int
}

// Candidate - объект, найденный на шаге выборки, вместе с релевантностью от хранилища.
type Candidate struct {
	Listing   Listing
	TextScore float64
}
