package postgres

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"property-search-service/internal/core/domain"
)

const maxRoomsAsString = 20

var tsLexemeRegex = regexp.MustCompile(`[\p{L}\p{N}]+`)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Выражения над колонкой doc, по которым работают фильтры
var (
	priceExprs = []string{
		"listing_num(doc->'price_sale_gbp')",
		"listing_num(doc->'price_sort_gbp')",
		"listing_num(doc->'price_rent_pcm_gbp')",
		"listing_num(doc->'price_match_sale')",
		"listing_num(doc->'price_match_rent_pa_inc_tax_month')",
	}

	substringExprs = []string{
		"doc->>'display_address'",
		"doc#>>'{address,postcode}'",
		"doc#>>'{address,formats,full_address}'",
		"doc#>>'{address,locality}'",
		"doc#>>'{address,suburb_or_town}'",
		"jsonb_path_query_array(doc, '$.location_terms[*]')::text",
		"doc#>>'{advert_internet,body}'",
		"jsonb_path_query_array(doc, '$.highlights[*].description')::text",
		"jsonb_path_query_array(doc, '$.features[*]')::text",
	}
)

type queryBuilder struct {
	conditions []string
	args       []interface{}
	argId      int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{
		argId: 1,
		args:  make([]interface{}, 0),
	}
}

// arg регистрирует аргумент и возвращает его плейсхолдер
func (qb *queryBuilder) arg(v interface{}) string {
	qb.args = append(qb.args, v)
	placeholder := "$" + strconv.Itoa(qb.argId)
	qb.argId++
	return placeholder
}

func (qb *queryBuilder) addCondition(condition string, fieldName string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, fieldName, qb.argId))
	qb.args = append(qb.args, arg)
	qb.argId++
}

// AddAnyFloatRange - ИЛИ по нескольким полям: достаточно, чтобы в диапазон попало одно из них
func (qb *queryBuilder) AddAnyFloatRange(fields []string, min *float64, max *float64) {
	if min == nil && max == nil {
		return
	}
	var lo, hi string
	if min != nil {
		lo = qb.arg(*min)
	}
	if max != nil {
		hi = qb.arg(*max)
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		var bounds []string
		if lo != "" {
			bounds = append(bounds, fmt.Sprintf("%s >= %s", f, lo))
		}
		if hi != "" {
			bounds = append(bounds, fmt.Sprintf("%s <= %s", f, hi))
		}
		parts = append(parts, "("+strings.Join(bounds, " AND ")+")")
	}
	qb.conditions = append(qb.conditions, "("+strings.Join(parts, " OR ")+")")
}

// AddRoomsFilter: число сравнивается напрямую, строка - по вхождению в список "min".."20"
func (qb *queryBuilder) AddRoomsFilter(attrKey, topLevel string, min *int) {
	if min == nil {
		return
	}
	var asStrings []string
	for i := max(*min, 0); i <= maxRoomsAsString; i++ {
		asStrings = append(asStrings, strconv.Itoa(i))
	}
	num := qb.arg(*min)
	// при min > 20 сравнивать со строками не с чем
	strs := ""
	if len(asStrings) > 0 {
		strs = qb.arg(asStrings)
	}

	paths := []string{
		fmt.Sprintf("doc#>'{attributes,%s}'", attrKey),
		fmt.Sprintf("doc#>'{attributes_full,%s}'", attrKey),
		fmt.Sprintf("doc->'%s'", topLevel),
	}
	parts := make([]string, 0, len(paths)*2)
	for _, p := range paths {
		parts = append(parts, fmt.Sprintf("listing_num(%s) >= %s", p, num))
		if strs != "" {
			parts = append(parts, fmt.Sprintf("(%s)#>>'{}' = ANY(%s)", p, strs))
		}
	}
	qb.conditions = append(qb.conditions, "("+strings.Join(parts, " OR ")+")")
}

// AddAnyILike - подстрока без учета регистра хотя бы в одном из полей
func (qb *queryBuilder) AddAnyILike(fields []string, needle string) {
	p := qb.arg("%" + likeEscaper.Replace(needle) + "%")
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s ILIKE %s", f, p))
	}
	qb.conditions = append(qb.conditions, "("+strings.Join(parts, " OR ")+")")
}

func (qb *queryBuilder) where() string {
	if len(qb.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(qb.conditions, " AND ")
}

// applyFilters разбирает структурные фильтры выборки
func applyFilters(q domain.CandidateQuery) *queryBuilder {
	qb := newQueryBuilder()

	if q.Purpose != "" {
		qb.addCondition("%s = $%d", "doc->>'purpose'", q.Purpose)
	}
	if q.Status != "" {
		qb.addCondition("%s = $%d", "doc->>'status'", q.Status)
	}
	if q.Subcategory != "" {
		eq := qb.arg(q.Subcategory)
		like := qb.arg("%" + likeEscaper.Replace(q.Subcategory) + "%")
		qb.conditions = append(qb.conditions, fmt.Sprintf(
			"(doc->>'subcategory_canonical' = %s OR jsonb_path_query_array(doc, '$.subcategories[*]')::text ILIKE %s)",
			eq, like,
		))
	}

	qb.AddAnyFloatRange(priceExprs, q.PriceMin, q.PriceMax)
	qb.AddRoomsFilter("bedrooms", "beds", q.BedsMin)
	qb.AddRoomsFilter("bathrooms", "baths", q.BathsMin)

	return qb
}

// tsQuery превращает строку поиска в tsquery с ИЛИ между словами.
// В запрос попадают только буквы и цифры, поэтому синтаксис to_tsquery не ломается.
func tsQuery(terms string) string {
	words := tsLexemeRegex.FindAllString(strings.ToLower(terms), -1)
	return strings.Join(words, " | ")
}

// buildCandidatesQuery собирает полный SELECT для выборки тира
func buildCandidatesQuery(table string, q domain.CandidateQuery) (string, []interface{}, bool) {
	qb := applyFilters(q)

	scoreExpr := "0::float8"
	order := "doc->>'updated_at' DESC NULLS LAST"

	switch q.Mode {
	case domain.FetchText:
		tsq := tsQuery(q.TextTerms)
		if tsq == "" {
			return "", nil, false
		}
		p := qb.arg(tsq)
		query := fmt.Sprintf("to_tsquery('english', %s)", p)
		qb.conditions = append(qb.conditions, fmt.Sprintf("%s @@ %s", searchVectorExpr, query))
		scoreExpr = fmt.Sprintf("ts_rank(%s, %s)::float8", searchVectorExpr, query)
		order = "score DESC, " + order
	default:
		if strings.TrimSpace(q.Keyword) == "" {
			return "", nil, false
		}
		qb.AddAnyILike(substringExprs, strings.TrimSpace(q.Keyword))
	}

	limit := qb.arg(q.Limit)
	sql := fmt.Sprintf(
		"SELECT doc, %s AS score FROM %s %s ORDER BY %s LIMIT %s",
		scoreExpr, table, qb.where(), order, limit,
	)
	return sql, qb.args, true
}
