package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllow_WithinBurst(t *testing.T) {
	kl := New(1, 3)

	for i := range 3 {
		assert.True(t, kl.Allow("1.2.3.4"), "request %d should be allowed", i)
	}
	assert.False(t, kl.Allow("1.2.3.4"), "burst exhausted")
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	kl := New(1, 1)

	assert.True(t, kl.Allow("a"))
	assert.False(t, kl.Allow("a"))
	assert.True(t, kl.Allow("b"), "a separate key has its own bucket")
}

func TestPerWindow(t *testing.T) {
	// 5 per 15 minutes: the full allowance is available as burst.
	kl := PerWindow(5, 900)

	for range 5 {
		assert.True(t, kl.Allow("ip"))
	}
	assert.False(t, kl.Allow("ip"))
}
