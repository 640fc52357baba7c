package admission

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_ClaimSucceedsExactlyOnce(t *testing.T) {
	r := NewRegistry(DefaultMaxPlayers)

	assert.True(t, r.TryClaim("Ann"))
	assert.False(t, r.TryClaim("Ann"), "second claim of the same name must fail")
	assert.False(t, r.TryClaim("Ann"), "and every claim after that")
}

func TestRegistry_CapacityReachedExactlyAtMax(t *testing.T) {
	r := NewRegistry(4)

	for i := 0; i < 4; i++ {
		assert.False(t, r.CapacityReached(), "capacity must not trip before max, at count %d", i)
		assert.True(t, r.TryClaim(fmt.Sprintf("player-%d", i)))
	}

	assert.True(t, r.CapacityReached())
	assert.Equal(t, "4/4", r.CapacityLabel())
}

func TestRegistry_CapacityLabel(t *testing.T) {
	r := NewRegistry(4)
	assert.Equal(t, "0/4", r.CapacityLabel())

	r.TryClaim("Ann")
	assert.Equal(t, "1/4", r.CapacityLabel())
}

func TestRegistry_ClaimedNames(t *testing.T) {
	r := NewRegistry(4)
	r.TryClaim("Ann")
	r.TryClaim("Bob")

	assert.Equal(t, "Ann, Bob", r.ClaimedNames())
}

func TestRegistry_DefaultCapacity(t *testing.T) {
	r := NewRegistry(0)

	for i := 0; i < DefaultMaxPlayers; i++ {
		assert.True(t, r.TryClaim(fmt.Sprintf("player-%d", i)))
	}
	assert.True(t, r.CapacityReached())
}
