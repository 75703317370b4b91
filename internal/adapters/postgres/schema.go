package postgres

import (
	"crypto/sha1"
	"encoding/hex"
)

// searchVectorExpr должен совпадать с выражением текстового индекса, иначе индекс не используется
const searchVectorExpr = "to_tsvector('english', listing_search_text(doc))"

// listingFunctionsSQL - вспомогательные IMMUTABLE функции для выражений индекса и фильтров
const listingFunctionsSQL = `
CREATE OR REPLACE FUNCTION listing_num(v jsonb) RETURNS numeric
LANGUAGE sql IMMUTABLE AS $$
	SELECT CASE WHEN jsonb_typeof(v) = 'number' THEN (v #>> '{}')::numeric END
$$;

CREATE OR REPLACE FUNCTION listing_search_text(doc jsonb) RETURNS text
LANGUAGE sql IMMUTABLE AS $$
	SELECT concat_ws(' ',
		doc->>'display_address',
		doc#>>'{address,formats,full_address}',
		doc#>>'{address,formats,hidden_address}',
		doc#>>'{address,locality}',
		doc#>>'{address,suburb_or_town}',
		doc#>>'{address,postcode}',
		doc#>>'{advert_internet,heading}',
		doc#>>'{advert_internet,body}',
		jsonb_path_query_array(doc, '$.highlights[*].description')::text,
		jsonb_path_query_array(doc, '$.features[*]')::text,
		jsonb_path_query_array(doc, '$.location_terms[*]')::text,
		jsonb_path_query_array(doc, '$.tags[*]')::text,
		jsonb_path_query_array(doc, '$.subcategories[*]')::text
	)
$$;`

const createTableSQL = `
CREATE TABLE IF NOT EXISTS %[1]s (
	id  text PRIMARY KEY,
	doc jsonb NOT NULL
)`

// structuredIndexes - аналоги одиночных индексов коллекции
var structuredIndexes = map[string]string{
	"purpose":     "(doc->>'purpose')",
	"status":      "(doc->>'status')",
	"subcategory": "(doc->>'subcategory_canonical')",
	"price_sort":  "(listing_num(doc->'price_sort_gbp'))",
	"price_sale":  "(listing_num(doc->'price_sale_gbp'))",
	"price_rent":  "(listing_num(doc->'price_rent_pcm_gbp'))",
	"updated_at":  "((doc->>'updated_at') DESC)",
}

// textIndexVersion хранится в комментарии к индексу. Если определение поменялось,
// индекс пересоздается при старте.
func textIndexVersion() string {
	sum := sha1.Sum([]byte(listingFunctionsSQL + searchVectorExpr))
	return hex.EncodeToString(sum[:8])
}
