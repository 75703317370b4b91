package vocabulary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalSubcategory(t *testing.T) {
	r := NewResolver(DefaultCutoff)

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"Penthouse", "flat", true},
		{"terraced house", "house", true},
		{"  Detached House ", "house", true},
		{"houseboat", "other", true},
		{"house", "house", true},
		{"FLAT", "flat", true},
		{"apartmnt", "flat", true},
		{"semi detached house", "house", true},
		{"xyz-unknown-token", "", false},
		{"castle", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := r.CanonicalSubcategory(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalFeature(t *testing.T) {
	r := NewResolver(DefaultCutoff)

	assert.Equal(t, "private garden", r.CanonicalFeature("roof garden"))
	assert.Equal(t, r.CanonicalFeature("roof garden"), r.CanonicalFeature("roof terrace"))
	assert.Equal(t, "lift", r.CanonicalFeature("Elevator"))
	assert.Equal(t, "balcony", r.CanonicalFeature("front terrace"))
	assert.Equal(t, "lift", r.CanonicalFeature("lifts"))
	assert.Equal(t, "swimming pool", r.CanonicalFeature(" Swimming Pool "))
	assert.Equal(t, "", r.CanonicalFeature("   "))
}

func TestNewResolverFallsBackToDefaultCutoff(t *testing.T) {
	r := NewResolver(0)
	assert.Equal(t, DefaultCutoff, r.cutoff)

	r = NewResolver(1.5)
	assert.Equal(t, DefaultCutoff, r.cutoff)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("flat", "flat"))
	assert.InDelta(t, 0.8, similarity("flats", "flat"), 1e-9)
	assert.Equal(t, 1.0, similarity("", ""))
	assert.Less(t, similarity("xyz", "house"), DefaultCutoff)
}

func TestSimilarity_CountsRunesNotBytes(t *testing.T) {
	assert.InDelta(t, 0.75, similarity("café", "cafe"), 1e-9)
	assert.InDelta(t, 0.75, similarity("ёлка", "елка"), 1e-9)
	assert.Equal(t, 1.0, similarity("maisonette ü", "maisonette ü"))

	wide := make([]rune, 300)
	for i := range wide {
		wide[i] = rune(0x4e00 + i)
	}
	got := similarity(string(wide), "flat")
	assert.GreaterOrEqual(t, got, 0.0)
	assert.Less(t, got, DefaultCutoff)
}
