package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-search-service/internal/core/domain"
)

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }

func at(month time.Month) *time.Time {
	t := time.Date(2024, month, 1, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestMatchesStructured(t *testing.T) {
	tests := []struct {
		name    string
		listing domain.Listing
		query   domain.CandidateQuery
		want    bool
	}{
		{
			name:    "rent price in range while sale price is not",
			listing: domain.Listing{Prices: domain.Prices{SaleGBP: 900000.0, RentPCMGBP: int32(4500)}},
			query:   domain.CandidateQuery{PriceMin: ptrFloat(2000), PriceMax: ptrFloat(5000)},
			want:    true,
		},
		{
			name:    "no numeric price in range",
			listing: domain.Listing{Prices: domain.Prices{SaleGBP: 900000.0}},
			query:   domain.CandidateQuery{PriceMin: ptrFloat(2000), PriceMax: ptrFloat(5000)},
			want:    false,
		},
		{
			name:    "string prices are not compared",
			listing: domain.Listing{Prices: domain.Prices{MatchSale: "4500"}},
			query:   domain.CandidateQuery{PriceMax: ptrFloat(5000)},
			want:    false,
		},
		{
			name:    "string beds above minimum",
			listing: domain.Listing{Beds: "5"},
			query:   domain.CandidateQuery{BedsMin: ptrInt(4)},
			want:    true,
		},
		{
			name:    "string beds below minimum",
			listing: domain.Listing{Beds: "3"},
			query:   domain.CandidateQuery{BedsMin: ptrInt(4)},
			want:    false,
		},
		{
			name:    "numeric baths in attributes_full",
			listing: domain.Listing{AttributesFull: map[string]interface{}{"bathrooms": int32(2)}},
			query:   domain.CandidateQuery{BathsMin: ptrInt(2)},
			want:    true,
		},
		{
			name:    "numeric beds above string range",
			listing: domain.Listing{Attributes: map[string]interface{}{"bedrooms": 30.0}},
			query:   domain.CandidateQuery{BedsMin: ptrInt(25)},
			want:    true,
		},
		{
			name:    "string beds above string range",
			listing: domain.Listing{Beds: "30"},
			query:   domain.CandidateQuery{BedsMin: ptrInt(25)},
			want:    false,
		},
		{
			name:    "clamped minimum",
			listing: domain.Listing{Beds: "20"},
			query:   domain.CandidateQuery{BedsMin: ptrInt(1000)},
			want:    false,
		},
		{
			name:    "subcategory from raw list",
			listing: domain.Listing{Subcategories: []string{"Terraced House"}},
			query:   domain.CandidateQuery{Subcategory: "house"},
			want:    true,
		},
		{
			name:    "purpose mismatch",
			listing: domain.Listing{Purpose: "rental"},
			query:   domain.CandidateQuery{Purpose: "sale"},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesStructured(&tt.listing, tt.query))
		})
	}
}

func TestFindCandidates_TextOrderingAndLimit(t *testing.T) {
	s := New(
		domain.Listing{ID: "older-single", Features: []string{"Garden"}, UpdatedAt: at(time.March)},
		domain.Listing{ID: "unrelated", Features: []string{"Porter"}, UpdatedAt: at(time.June)},
		domain.Listing{ID: "both-terms", Features: []string{"Garden", "Lift"}, UpdatedAt: at(time.January)},
		domain.Listing{ID: "newer-single", Features: []string{"Garden"}, UpdatedAt: at(time.May)},
	)

	q := domain.CandidateQuery{Mode: domain.FetchText, TextTerms: "garden lift"}
	got, err := s.FindCandidates(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "both-terms", got[0].Listing.ID)
	assert.Equal(t, 2.0, got[0].TextScore)
	assert.Equal(t, "newer-single", got[1].Listing.ID)
	assert.Equal(t, "older-single", got[2].Listing.ID)

	q.Limit = 2
	got, err = s.FindCandidates(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "newer-single", got[1].Listing.ID)
}

func TestFindCandidates_Substring(t *testing.T) {
	s := New(
		domain.Listing{ID: "a", DisplayAddress: "14 Flood Street, Chelsea"},
		domain.Listing{ID: "b", DisplayAddress: "2 Sloane Square"},
	)

	got, err := s.FindCandidates(context.Background(), domain.CandidateQuery{Mode: domain.FetchSubstring, Keyword: "flood st"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Listing.ID)
	assert.Zero(t, got[0].TextScore)
}

func TestFindCandidates_EmptyInput(t *testing.T) {
	s := New(domain.Listing{ID: "a", DisplayAddress: "14 Flood Street"})

	got, err := s.FindCandidates(context.Background(), domain.CandidateQuery{Mode: domain.FetchSubstring})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.FindCandidates(context.Background(), domain.CandidateQuery{Mode: domain.FetchText, TextTerms: " !! "})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindCandidates_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().FindCandidates(ctx, domain.CandidateQuery{Mode: domain.FetchText, TextTerms: "garden"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindByID(t *testing.T) {
	s := New()
	s.Add(domain.Listing{ID: "R-1", Purpose: "sale"})
	assert.Equal(t, 1, s.Len())

	l, err := s.FindByID(context.Background(), "R-1")
	require.NoError(t, err)
	assert.Equal(t, "sale", l.Purpose)

	_, err = s.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}
