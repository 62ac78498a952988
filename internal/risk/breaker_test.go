package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreakerLifecycle(t *testing.T) {
	var b Breaker
	assert.False(t, b.Tripped)

	tripped := b.Trip("anomalous fill price")
	assert.True(t, tripped.Tripped)
	assert.Equal(t, "anomalous fill price", tripped.Reason)
	assert.False(t, tripped.TrippedAt.IsZero())

	// Trip returns a new value; the original is untouched.
	assert.False(t, b.Tripped)

	reset := tripped.Reset()
	assert.False(t, reset.Tripped)
	assert.Empty(t, reset.Reason)
	assert.True(t, reset.TrippedAt.IsZero())
}
