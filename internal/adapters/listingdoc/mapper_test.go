package listingdoc

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const sampleJSON = `[{
	"_id": "R-1001",
	"purpose": "Sale",
	"status": "current",
	"display_address": "14 Flood Street, Chelsea",
	"address": {"postcode": "SW3 5ST", "locality": "Chelsea", "lat": "51.486", "longitude": -0.166,
		"formats": {"full_address": "14 Flood Street, London SW3 5ST", "hidden_address": "Flood Street, SW3"}},
	"price_sort_gbp": 3250000,
	"listing": {"price_match_sale": "3,250,000"},
	"size": "2,100 sq ft",
	"attributes": {"bedrooms": "4"},
	"baths": 3,
	"subcategories": ["Terraced House"],
	"features": ["Garden", "Lift"],
	"highlights": [{"description": "South facing garden"}, {"description": ""}],
	"advert_internet": {"heading": "A fine house", "body": "Wonderful"},
	"agents": [{"id": 77, "name": "Jane Doe", "email": "jane@example.test"}],
	"main_image": "https://img.test/1.jpg",
	"updated_at": "2024-05-01T10:00:00Z"
}]`

func TestDecodeJSON(t *testing.T) {
	listings, err := DecodeJSON(strings.NewReader(sampleJSON))
	require.NoError(t, err)
	require.Len(t, listings, 1)

	l := listings[0]
	assert.Equal(t, "R-1001", l.ID)
	assert.Equal(t, "sale", l.Purpose)
	assert.Equal(t, "Flood Street, SW3", l.Address.HiddenAddress)
	require.NotNil(t, l.Address.Latitude)
	assert.Equal(t, 51.486, *l.Address.Latitude)
	require.NotNil(t, l.Address.Longitude)
	assert.Equal(t, -0.166, *l.Address.Longitude)
	assert.Equal(t, "2,100 sq ft", l.Size.Display)
	assert.Equal(t, "https://img.test/1.jpg", l.MainImageURL)
	assert.Equal(t, []string{"South facing garden"}, l.Highlights)
	assert.Equal(t, []string{"Terraced House"}, l.Subcategories)
	assert.Equal(t, []string{"Garden", "Lift"}, l.Features)
	assert.Equal(t, "77", l.Agents[0].ID)
	require.NotNil(t, l.UpdatedAt)
	assert.Equal(t, 2024, l.UpdatedAt.Year())

	beds, ok := l.Bedrooms()
	assert.True(t, ok)
	assert.Equal(t, 4, beds)
	baths, ok := l.Bathrooms()
	assert.True(t, ok)
	assert.Equal(t, 3, baths)

	price, ok := l.NumericPrice("sale")
	assert.True(t, ok)
	assert.Equal(t, 3250000, price)
	assert.Equal(t, "3,250,000", l.Prices.ListingMatchSale)
}

func TestDecodeJSON_Invalid(t *testing.T) {
	_, err := DecodeJSON(strings.NewReader(`{"not": "an array"}`))
	assert.Error(t, err)
}

func TestToDomain_BSON(t *testing.T) {
	oid := primitive.NewObjectID()
	updated := time.Date(2023, 11, 2, 8, 30, 0, 0, time.UTC)

	raw, err := bson.Marshal(bson.M{
		"_id":                oid,
		"purpose":            "rental",
		"price_rent_pcm_gbp": int32(4500),
		"attributes_full":    bson.M{"bedrooms": int32(2), "bathrooms": "2"},
		"updated_at":         primitive.NewDateTimeFromTime(updated),
		"score":              1.75,
	})
	require.NoError(t, err)

	var doc Document
	require.NoError(t, bson.Unmarshal(raw, &doc))
	l := doc.ToDomain()

	assert.Equal(t, oid.Hex(), l.ID)
	assert.Equal(t, 1.75, doc.TextScore)
	require.NotNil(t, l.UpdatedAt)
	assert.True(t, updated.Equal(*l.UpdatedAt))

	price, ok := l.NumericPrice("rental")
	assert.True(t, ok)
	assert.Equal(t, 4500, price)

	baths, ok := l.Bathrooms()
	assert.True(t, ok)
	assert.Equal(t, 2, baths)
}

func TestToDomain_FallsBackToPlainID(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(`{"id": 12345, "updated_at": "yesterday"}`), &doc))

	l := doc.ToDomain()
	assert.Equal(t, "12345", l.ID)
	require.NotNil(t, l.UpdatedAt)
	assert.True(t, l.UpdatedAt.IsZero())
}

func TestToDomain_MixedFieldTypes(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"_id":           "R-2002",
		"subcategories": "Flat",
		"features":      bson.A{"Porter", int32(3), "Lift"},
		"tags":          bson.A{"riverside"},
		"price_display": int32(1250000),
		"size_display":  950.5,
	})
	require.NoError(t, err)

	var doc Document
	require.NoError(t, bson.Unmarshal(raw, &doc))
	l := doc.ToDomain()

	assert.Equal(t, "R-2002", l.ID)
	assert.Equal(t, []string{"Flat"}, l.Subcategories)
	assert.Equal(t, []string{"Porter", "Lift"}, l.Features)
	assert.Equal(t, []string{"riverside"}, l.Tags)
	assert.Equal(t, "1250000", l.Prices.Display)
	assert.Equal(t, "950.5", l.Size.Display)
}

func TestDecodeJSON_MixedFieldTypes(t *testing.T) {
	listings, err := DecodeJSON(strings.NewReader(`[
		{"_id": "a", "subcategories": "Maisonette", "features": null, "price_display": 1250000},
		{"_id": "b", "location_terms": {"unexpected": true}, "price_display": "Guide £2,000,000"}
	]`))
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, []string{"Maisonette"}, listings[0].Subcategories)
	assert.Nil(t, listings[0].Features)
	assert.Equal(t, "1250000", listings[0].Prices.Display)
	assert.Nil(t, listings[1].LocationTerms)
	assert.Equal(t, "Guide £2,000,000", listings[1].Prices.Display)
}

func TestStringList(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want []string
	}{
		{name: "nil", in: nil, want: nil},
		{name: "single string", in: "Flat", want: []string{"Flat"}},
		{name: "blank string", in: "  ", want: nil},
		{name: "string slice", in: []string{"a", "b"}, want: []string{"a", "b"}},
		{name: "json array", in: []interface{}{"a", 1.0, "", "b"}, want: []string{"a", "b"}},
		{name: "bson array", in: primitive.A{"x"}, want: []string{"x"}},
		{name: "number", in: 42.0, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stringList(tt.in))
		})
	}
}
