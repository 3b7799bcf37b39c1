package domain

// SortKey identifies the catalog ordering applied to a search.
type SortKey string

// Sort keys accepted by the card catalog.
const (
	SortReleased SortKey = "released"
	SortName     SortKey = "name"
	SortCMC      SortKey = "cmc"
	SortUSD      SortKey = "usd"
)

// SortDirection identifies the direction of a catalog ordering.
type SortDirection string

// Sort directions accepted by the card catalog.
const (
	DirAuto SortDirection = "auto"
	DirAsc  SortDirection = "asc"
	DirDesc SortDirection = "desc"
)

// ColorOrder is the canonical ordering of color symbols. Color clauses are
// always emitted in this order so the encoded query is independent of map
// iteration order.
var ColorOrder = []string{"W", "U", "B", "R", "G"}

// FilterSet is an immutable snapshot of the filters used to build a search.
type FilterSet struct {
	Term          string          `json:"term"`
	TypeFilter    string          `json:"type_filter"`
	Colors        map[string]bool `json:"colors"`
	SortKey       SortKey         `json:"sort_key"`
	SortDirection SortDirection   `json:"sort_direction"`
}

// ActiveColors returns the active color symbols concatenated in canonical
// W,U,B,R,G order. Empty string when no color flag is set.
func (f FilterSet) ActiveColors() string {
	var out string
	for _, c := range ColorOrder {
		if f.Colors[c] {
			out += c
		}
	}
	return out
}

// IsEmpty reports whether the filter set has no term, no type, and no active color.
func (f FilterSet) IsEmpty() bool {
	return f.Term == "" && f.TypeFilter == "" && f.ActiveColors() == ""
}

// Clone returns a deep copy of the filter set.
func (f FilterSet) Clone() FilterSet {
	out := f
	if f.Colors != nil {
		out.Colors = make(map[string]bool, len(f.Colors))
		for k, v := range f.Colors {
			out.Colors[k] = v
		}
	}
	return out
}
