package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := ListID()
		assert.False(t, seen[id], "duplicate list id %s", id)
		seen[id] = true
	}
}

func TestListID_Monotonic(t *testing.T) {
	prev := ListID()
	for range 50 {
		next := ListID()
		// Same digit count, so string comparison is numeric comparison.
		assert.Len(t, next, len(prev))
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestGenerate(t *testing.T) {
	id, err := Generate("sub")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "sub-"))
	assert.Greater(t, len(id), len("sub-"))
}

func TestGenerate_Unique(t *testing.T) {
	a, err := Generate("sub")
	require.NoError(t, err)
	b, err := Generate("sub")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
