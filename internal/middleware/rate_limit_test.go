package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketDrains(t *testing.T) {
	tb := NewTokenBucket(3, 1)
	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow(), "request %d", i)
	}
	assert.False(t, tb.Allow(), "bucket should be empty")
}

func TestTokenBucketRefills(t *testing.T) {
	tb := NewTokenBucket(1, 1000)
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	// Backdate the last refill instead of sleeping.
	tb.mu.Lock()
	tb.lastRefill = tb.lastRefill.Add(-2 * time.Second)
	tb.mu.Unlock()

	assert.True(t, tb.Allow())
}

func TestTokenBucketCapsAtCapacity(t *testing.T) {
	tb := NewTokenBucket(2, 1000)
	tb.mu.Lock()
	tb.lastRefill = tb.lastRefill.Add(-10 * time.Second)
	tb.mu.Unlock()

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow(), "refill must not exceed capacity")
}
