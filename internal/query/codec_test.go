package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cardtrackapp/cardtrack-server/internal/domain"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name    string
		filters domain.FilterSet
		want    string
	}{
		{
			name:    "term only",
			filters: domain.FilterSet{Term: "Sol Ring"},
			want:    "Sol Ring",
		},
		{
			name: "type and colors",
			filters: domain.FilterSet{
				TypeFilter: "Dragon",
				Colors:     map[string]bool{"R": true, "G": true},
			},
			want: "t:Dragon c:RG",
		},
		{
			name: "all parts in fixed order",
			filters: domain.FilterSet{
				Term:       "bolt",
				TypeFilter: "Instant",
				Colors:     map[string]bool{"R": true},
			},
			want: "bolt t:Instant c:R",
		},
		{
			name:    "all empty",
			filters: domain.FilterSet{},
			want:    "",
		},
		{
			name:    "inactive color flags ignored",
			filters: domain.FilterSet{Colors: map[string]bool{"W": false, "U": false}},
			want:    "",
		},
		{
			name: "colors in canonical WUBRG order",
			filters: domain.FilterSet{
				Colors: map[string]bool{"G": true, "W": true, "B": true},
			},
			want: "c:WBG",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.filters))
		})
	}
}

func TestEncode_Deterministic(t *testing.T) {
	filters := domain.FilterSet{
		Term:       "dragon",
		TypeFilter: "Creature",
		Colors:     map[string]bool{"R": true, "G": true, "B": true},
	}

	first := Encode(filters)
	for range 20 {
		assert.Equal(t, first, Encode(filters))
	}
}

func TestEncode_EmptyMeansEmptyQuery(t *testing.T) {
	// Callers use IsEmpty as the EmptyQuery guard; the two must agree.
	filters := domain.FilterSet{}
	assert.Empty(t, Encode(filters))
	assert.True(t, filters.IsEmpty())
}
