package mongodb

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"property-search-service/internal/core/domain"
)

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }

func TestBuildFilter_TextModeStrict(t *testing.T) {
	q := domain.CandidateQuery{
		Purpose:     "sale",
		Status:      "current",
		Subcategory: "house",
		PriceMin:    ptrFloat(1000000),
		BedsMin:     ptrInt(4),
		Mode:        domain.FetchText,
		TextTerms:   "Chelsea lift",
	}

	f := buildFilter(q)
	assert.Equal(t, bson.M{"$search": "Chelsea lift"}, f["$text"])

	clauses, ok := f["$and"].([]bson.M)
	require.True(t, ok)
	require.Len(t, clauses, 5)
	assert.Equal(t, bson.M{"purpose": "sale"}, clauses[0])
	assert.Equal(t, bson.M{"status": "current"}, clauses[1])

	subcat := clauses[2]["$or"].(bson.A)
	assert.Equal(t, bson.M{"subcategory_canonical": "house"}, subcat[0])

	price := clauses[3]["$or"].(bson.A)
	assert.Len(t, price, len(priceFields))
	assert.Equal(t, bson.M{"price_sale_gbp": bson.M{"$gte": 1000000.0}}, price[0])

	beds := clauses[4]["$or"].(bson.A)
	assert.Len(t, beds, 6)
	assert.Equal(t, bson.M{"attributes.bedrooms": bson.M{"$gte": 4}}, beds[0])
	inStrings := beds[1].(bson.M)["attributes.bedrooms"].(bson.M)["$in"].(bson.A)
	assert.Equal(t, "4", inStrings[0])
	assert.Equal(t, "20", inStrings[len(inStrings)-1])
	assert.Len(t, inStrings, 17)
}

func TestRoomsClause_AboveStringRange(t *testing.T) {
	f := buildFilter(domain.CandidateQuery{Mode: domain.FetchText, TextTerms: "loft", BedsMin: ptrInt(25)})

	clauses := f["$and"].([]bson.M)
	require.Len(t, clauses, 1)
	beds := clauses[0]["$or"].(bson.A)
	require.Len(t, beds, 3)
	for _, leg := range beds {
		for _, cond := range leg.(bson.M) {
			op := cond.(bson.M)
			_, hasIn := op["$in"]
			assert.False(t, hasIn)
			assert.Equal(t, 25, op["$gte"])
		}
	}

	edge := roomsClause("bedrooms", "beds", 20)["$or"].(bson.A)
	require.Len(t, edge, 6)
	assert.Equal(t, bson.A{"20"}, edge[1].(bson.M)["attributes.bedrooms"].(bson.M)["$in"])
}

func TestBuildFilter_SubstringMode(t *testing.T) {
	f := buildFilter(domain.CandidateQuery{Mode: domain.FetchSubstring, Keyword: "St. John's Wood"})

	_, hasText := f["$text"]
	assert.False(t, hasText)

	clauses := f["$and"].([]bson.M)
	require.Len(t, clauses, 1)
	or := clauses[0]["$or"].(bson.A)
	assert.Len(t, or, len(substringFields))
	assert.Equal(t, bson.M{"display_address": bson.M{"$regex": `St\. John's Wood`, "$options": "i"}}, or[0])
}

func TestBuildFilter_NoStructuredFilters(t *testing.T) {
	f := buildFilter(domain.CandidateQuery{Mode: domain.FetchText, TextTerms: "SW3"})
	_, hasAnd := f["$and"]
	assert.False(t, hasAnd)
}

func TestPriceClause_OnlyMax(t *testing.T) {
	c := priceClause(nil, ptrFloat(500000))
	or := c["$or"].(bson.A)
	assert.Equal(t, bson.M{"price_sale_gbp": bson.M{"$lte": 500000.0}}, or[0])
	assert.Nil(t, priceClause(nil, nil))
}

func TestIsIndexConflict(t *testing.T) {
	assert.True(t, isIndexConflict(mongo.CommandError{Code: 85, Name: "IndexOptionsConflict"}))
	assert.True(t, isIndexConflict(fmt.Errorf("wrapped: %w", mongo.CommandError{Code: 86})))
	assert.False(t, isIndexConflict(mongo.CommandError{Code: 11000}))
	assert.False(t, isIndexConflict(errors.New("network")))
}

func TestTextIndexModel(t *testing.T) {
	m := textIndexModel()
	keys := m.Keys.(bson.D)
	assert.Len(t, keys, len(textIndexFields))
	assert.Equal(t, "text", keys[0].Value)
	require.NotNil(t, m.Options.Name)
	assert.Equal(t, textIndexName, *m.Options.Name)
}
