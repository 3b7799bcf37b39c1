package domain

import "slices"

// MaxPreviewThumbnails is the number of card images kept on a list for preview.
const MaxPreviewThumbnails = 3

// CardList is a named, persisted query plus the set of card identifiers the
// user has marked acquired.
//
// Query is derived from Filters once at creation and persisted redundantly:
// it is the durable contract that reproduces the list's membership, and is
// never regenerated even if the encoding logic changes later.
type CardList struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	CreatedAt         string    `json:"created_at"` // display-formatted date
	Filters           FilterSet `json:"filters"`
	Query             string    `json:"query"`
	PreviewThumbnails []string  `json:"preview_thumbnails"`
	AcquiredIDs       []string  `json:"acquired_ids"`
}

// HasAcquired reports whether the card id is marked acquired on this list.
func (l *CardList) HasAcquired(cardID string) bool {
	return slices.Contains(l.AcquiredIDs, cardID)
}

// Clone returns a deep copy of the list.
func (l CardList) Clone() CardList {
	out := l
	out.Filters = l.Filters.Clone()
	out.PreviewThumbnails = slices.Clone(l.PreviewThumbnails)
	out.AcquiredIDs = slices.Clone(l.AcquiredIDs)
	return out
}

// ListPatch is a partial CardList for merge updates. Nil fields are left
// untouched by the store, never overwritten with empty values.
type ListPatch struct {
	Name              *string    `json:"name,omitempty"`
	CreatedAt         *string    `json:"created_at,omitempty"`
	Filters           *FilterSet `json:"filters,omitempty"`
	Query             *string    `json:"query,omitempty"`
	PreviewThumbnails *[]string  `json:"preview_thumbnails,omitempty"`
	AcquiredIDs       *[]string  `json:"acquired_ids,omitempty"`
}

// Apply merges the patch into the list, field by field.
func (p ListPatch) Apply(l *CardList) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.CreatedAt != nil {
		l.CreatedAt = *p.CreatedAt
	}
	if p.Filters != nil {
		l.Filters = p.Filters.Clone()
	}
	if p.Query != nil {
		l.Query = *p.Query
	}
	if p.PreviewThumbnails != nil {
		l.PreviewThumbnails = slices.Clone(*p.PreviewThumbnails)
	}
	if p.AcquiredIDs != nil {
		l.AcquiredIDs = slices.Clone(*p.AcquiredIDs)
	}
}

// AcquiredPatch builds a patch that replaces only the acquired set.
func AcquiredPatch(acquiredIDs []string) ListPatch {
	ids := slices.Clone(acquiredIDs)
	return ListPatch{AcquiredIDs: &ids}
}

// SortSnapshot orders lists by id descending (most-recently-created first).
// List ids are monotonic-time-derived, so lexicographic comparison matches
// creation order.
func SortSnapshot(lists []CardList) {
	slices.SortFunc(lists, func(a, b CardList) int {
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		default:
			return 0
		}
	})
}
