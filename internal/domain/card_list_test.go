package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListPatch_Apply_MergesOnlyPresentFields(t *testing.T) {
	list := CardList{
		ID:          "1700000000000",
		Name:        "Commander Staples",
		CreatedAt:   "01/09/2026",
		Query:       "t:Artifact",
		AcquiredIDs: []string{"abc"},
	}

	acquired := []string{"abc", "def"}
	patch := ListPatch{AcquiredIDs: &acquired}
	patch.Apply(&list)

	assert.Equal(t, []string{"abc", "def"}, list.AcquiredIDs)
	// Untouched fields keep their values.
	assert.Equal(t, "Commander Staples", list.Name)
	assert.Equal(t, "t:Artifact", list.Query)
	assert.Equal(t, "01/09/2026", list.CreatedAt)
}

func TestListPatch_Apply_EmptySliceIsStillApplied(t *testing.T) {
	list := CardList{ID: "1", AcquiredIDs: []string{"abc"}}

	empty := []string{}
	patch := ListPatch{AcquiredIDs: &empty}
	patch.Apply(&list)

	assert.Empty(t, list.AcquiredIDs)
}

func TestSortSnapshot_NewestFirst(t *testing.T) {
	lists := []CardList{
		{ID: "1700000000001"},
		{ID: "1700000000003"},
		{ID: "1700000000002"},
	}

	SortSnapshot(lists)

	assert.Equal(t, "1700000000003", lists[0].ID)
	assert.Equal(t, "1700000000002", lists[1].ID)
	assert.Equal(t, "1700000000001", lists[2].ID)
}

func TestCardList_Clone_Independent(t *testing.T) {
	orig := CardList{
		ID:          "1",
		Filters:     FilterSet{Colors: map[string]bool{"R": true}},
		AcquiredIDs: []string{"abc"},
	}

	cp := orig.Clone()
	cp.AcquiredIDs[0] = "xyz"
	cp.Filters.Colors["G"] = true

	assert.Equal(t, []string{"abc"}, orig.AcquiredIDs)
	assert.False(t, orig.Filters.Colors["G"])
}

func TestFilterSet_ActiveColors_CanonicalOrder(t *testing.T) {
	f := FilterSet{Colors: map[string]bool{"G": true, "R": true, "W": false}}
	assert.Equal(t, "RG", f.ActiveColors())
}

func TestFilterSet_IsEmpty(t *testing.T) {
	assert.True(t, FilterSet{}.IsEmpty())
	assert.True(t, FilterSet{Colors: map[string]bool{"R": false}}.IsEmpty())
	assert.False(t, FilterSet{Term: "Sol Ring"}.IsEmpty())
	assert.False(t, FilterSet{Colors: map[string]bool{"R": true}}.IsEmpty())
}
