package balancer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatedCache(t *testing.T) {
	c := NewValidatedCache()
	assert.False(t, c.Has(7))
	assert.Equal(t, 0, c.Len())

	c.MarkValidated(7, 1200)
	assert.True(t, c.Has(7))
	cycles, ok := c.Cycles(7)
	assert.True(t, ok)
	assert.Equal(t, 1200, cycles)
	assert.Equal(t, 1, c.Len())

	c.MarkValidated(7, 1200) // Test idempotency
	assert.Equal(t, 1, c.Len())
}

func TestDisabledCache(t *testing.T) {
	c := DisabledCache()
	c.MarkValidated(7, 1200)
	assert.False(t, c.Has(7))
	_, ok := c.Cycles(7)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}
