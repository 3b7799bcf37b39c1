// Package query builds deterministic catalog query strings from filter sets.
package query

import (
	"strings"

	"github.com/cardtrackapp/cardtrack-server/internal/domain"
)

// Encode builds the catalog query string for a filter set.
//
// Parts are emitted in a fixed order (free-text term, type clause, color
// clause) and joined with single spaces, so encoding the same filter set
// twice always yields identical strings.
//
// Encode never fails: the all-empty filter set encodes to "". Callers must
// treat an empty result as an EmptyQuery validation failure before invoking
// any fetch.
func Encode(filters domain.FilterSet) string {
	parts := make([]string, 0, 3)

	if filters.Term != "" {
		parts = append(parts, filters.Term)
	}
	if filters.TypeFilter != "" {
		parts = append(parts, "t:"+filters.TypeFilter)
	}
	if colors := filters.ActiveColors(); colors != "" {
		parts = append(parts, "c:"+colors)
	}

	return strings.Join(parts, " ")
}
