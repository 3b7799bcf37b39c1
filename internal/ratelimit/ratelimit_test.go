package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllow_PerKeyBuckets(t *testing.T) {
	krl := New(1, 2)

	// Each key gets its own burst.
	assert.True(t, krl.Allow("a"))
	assert.True(t, krl.Allow("a"))
	assert.False(t, krl.Allow("a"))

	assert.True(t, krl.Allow("b"))
	assert.True(t, krl.Allow("b"))
	assert.False(t, krl.Allow("b"))
}

func TestAllow_ReusesLimiterForKey(t *testing.T) {
	krl := New(100, 1)

	assert.True(t, krl.Allow("a"))
	assert.False(t, krl.Allow("a"))

	krl.mu.RLock()
	defer krl.mu.RUnlock()
	assert.Len(t, krl.limiters, 1)
}
