package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-search-service/internal/core/domain"
	"property-search-service/internal/core/vocabulary"
)

func newTestSummarizer() *Summarizer {
	return NewSummarizer("", vocabulary.NewResolver(vocabulary.DefaultCutoff))
}

func TestSummarize_AddressHidesHouseNumber(t *testing.T) {
	s := newTestSummarizer()

	l := &domain.Listing{ID: "1", DisplayAddress: "12 Cheyne Walk, Chelsea"}
	assert.Equal(t, "Cheyne Walk, Chelsea", s.Summarize(l).Address)

	l.Address.HiddenAddress = "Cheyne Walk, SW3"
	assert.Equal(t, "Cheyne Walk, SW3", s.Summarize(l).Address)

	l = &domain.Listing{ID: "2", DisplayAddress: "42"}
	assert.Equal(t, "42", s.Summarize(l).Address)
}

func TestSummarize_PriceText(t *testing.T) {
	s := newTestSummarizer()

	l := &domain.Listing{Prices: domain.Prices{Display: "Guide Price £3,250,000", SaleGBP: 1}}
	assert.Equal(t, "Guide Price £3,250,000", s.Summarize(l).Price)

	l = &domain.Listing{Prices: domain.Prices{SaleGBP: 1250000}}
	assert.Equal(t, "£1,250,000", s.Summarize(l).Price)

	l = &domain.Listing{Prices: domain.Prices{RentPCMGBP: "4500"}}
	assert.Equal(t, "£4,500", s.Summarize(l).Price)

	assert.Empty(t, s.Summarize(&domain.Listing{}).Price)
}

func TestSummarize_EbrochureFallback(t *testing.T) {
	s := newTestSummarizer()

	got := s.Summarize(&domain.Listing{ID: "R-77"})
	assert.Equal(t, DefaultEbrochureBase+"R-77", got.EbrochureURL)

	got = s.Summarize(&domain.Listing{ID: "R-77", EbrochureLink: "https://example.test/b/77"})
	assert.Equal(t, "https://example.test/b/77", got.EbrochureURL)

	custom := NewSummarizer("https://brochures.test/?id=", nil)
	assert.Equal(t, "https://brochures.test/?id=R-77", custom.Summarize(&domain.Listing{ID: "R-77"}).EbrochureURL)
}

func TestSummarize_LocationAndAmenities(t *testing.T) {
	s := newTestSummarizer()
	lat, lon := 51.4836, -0.1703

	l := &domain.Listing{
		ID:            "3",
		Address:       domain.Address{Postcode: "SW3 5HL", Locality: "Chelsea", Latitude: &lat, Longitude: &lon},
		Attributes:    map[string]interface{}{"bedrooms": float64(4)},
		Baths:         "3",
		Highlights:    []string{"Roof terrace", "", "Lift"},
		Subcategories: []string{"Penthouse"},
		Agents:        []domain.Agent{{Name: "Jane", PhoneMobile: "07700 900000"}, {Name: "Other"}},
	}

	got := s.Summarize(l)
	assert.Equal(t, "SW3 5HL", got.Location.Postcode)
	assert.Len(t, got.Location.Geohash, geohashPrecision)
	assert.Equal(t, "gcpu", got.Location.Geohash[:4])

	require.NotNil(t, got.Amenities.Beds)
	assert.Equal(t, "4", *got.Amenities.Beds)
	require.NotNil(t, got.Amenities.Baths)
	assert.Equal(t, "3", *got.Amenities.Baths)

	assert.Equal(t, "Roof terrace, Lift", got.Highlights)
	assert.Equal(t, domain.SubcategoryFlat, got.Subcategory)
	assert.Equal(t, []string{}, got.Features)

	require.NotNil(t, got.Agent)
	assert.Equal(t, "Jane", got.Agent.Name)
}

func TestSummarize_NoAgent(t *testing.T) {
	got := newTestSummarizer().Summarize(&domain.Listing{ID: "4"})
	assert.Nil(t, got.Agent)
	assert.Nil(t, got.Amenities.Beds)
	assert.Empty(t, got.Location.Geohash)
}
