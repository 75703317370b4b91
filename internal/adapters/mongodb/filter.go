package mongodb

import (
	"regexp"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"

	"property-search-service/internal/core/domain"
)

// maxRoomsAsString - верхняя граница строковых значений спален/ванных ("4", "5", ... "20")
const maxRoomsAsString = 20

var (
	// priceFields - ИЛИ по всем числовым представлениям цены
	priceFields = []string{
		"price_sale_gbp",
		"price_sort_gbp",
		"price_rent_pcm_gbp",
		"price_match_sale",
		"price_match_rent_pa_inc_tax_month",
	}

	// substringFields - поля, по которым ищется подстрока в последнем тире
	substringFields = []string{
		"display_address",
		"address.postcode",
		"address.formats.full_address",
		"address.locality",
		"address.suburb_or_town",
		"location_terms",
		"advert_internet.body",
		"highlights.description",
		"features",
	}

	// textIndexFields - поля полнотекстового индекса text_search
	textIndexFields = []string{
		"display_address",
		"address.formats.full_address",
		"address.formats.hidden_address",
		"address.locality",
		"address.suburb_or_town",
		"address.postcode",
		"advert_internet.heading",
		"advert_internet.body",
		"highlights.description",
		"features",
		"location_terms",
		"tags",
		"subcategories",
	}
)

// buildStructuredClauses собирает условия, общие для всех режимов выборки.
func buildStructuredClauses(q domain.CandidateQuery) []bson.M {
	var clauses []bson.M

	if q.Purpose != "" {
		clauses = append(clauses, bson.M{"purpose": q.Purpose})
	}
	if q.Status != "" {
		clauses = append(clauses, bson.M{"status": q.Status})
	}
	if q.Subcategory != "" {
		clauses = append(clauses, bson.M{"$or": bson.A{
			bson.M{"subcategory_canonical": q.Subcategory},
			bson.M{"subcategories": caseInsensitive(q.Subcategory)},
		}})
	}
	if c := priceClause(q.PriceMin, q.PriceMax); c != nil {
		clauses = append(clauses, c)
	}
	if q.BedsMin != nil {
		clauses = append(clauses, roomsClause("bedrooms", "beds", *q.BedsMin))
	}
	if q.BathsMin != nil {
		clauses = append(clauses, roomsClause("bathrooms", "baths", *q.BathsMin))
	}
	return clauses
}

// buildFilter возвращает фильтр для Find. В текстовом режиме $text стоит на верхнем уровне,
// иначе добавляется ИЛИ по полям подстрочного поиска.
func buildFilter(q domain.CandidateQuery) bson.M {
	clauses := buildStructuredClauses(q)

	filter := bson.M{}
	switch q.Mode {
	case domain.FetchText:
		filter["$text"] = bson.M{"$search": q.TextTerms}
	default:
		rx := caseInsensitive(q.Keyword)
		or := make(bson.A, 0, len(substringFields))
		for _, f := range substringFields {
			or = append(or, bson.M{f: rx})
		}
		clauses = append(clauses, bson.M{"$or": or})
	}

	if len(clauses) > 0 {
		filter["$and"] = clauses
	}
	return filter
}

func priceClause(lo, hi *float64) bson.M {
	if lo == nil && hi == nil {
		return nil
	}
	bounds := bson.M{}
	if lo != nil {
		bounds["$gte"] = *lo
	}
	if hi != nil {
		bounds["$lte"] = *hi
	}

	or := make(bson.A, 0, len(priceFields))
	for _, f := range priceFields {
		or = append(or, bson.M{f: bounds})
	}
	return bson.M{"$or": or}
}

// roomsClause: числа сравниваются через $gte, строки - по вхождению в список "min".."20".
// При min > 20 строковой ветки нет: $in с пустым или null списком сервер не примет.
func roomsClause(attrKey, topLevel string, want int) bson.M {
	asStrings := bson.A{}
	for i := max(want, 0); i <= maxRoomsAsString; i++ {
		asStrings = append(asStrings, strconv.Itoa(i))
	}

	var or bson.A
	for _, f := range []string{"attributes." + attrKey, "attributes_full." + attrKey, topLevel} {
		or = append(or, bson.M{f: bson.M{"$gte": want}})
		if len(asStrings) > 0 {
			or = append(or, bson.M{f: bson.M{"$in": asStrings}})
		}
	}
	return bson.M{"$or": or}
}

func caseInsensitive(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}
