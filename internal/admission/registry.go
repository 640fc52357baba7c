package admission

import (
	"fmt"
	"strings"
	"sync"
)

// DefaultMaxPlayers is the connection-layer capacity of one network session.
const DefaultMaxPlayers = 4

// Registry tracks the display names claimed on the network-connection path.
// Claims are permanent for the registry's lifetime: a disconnecting player
// does not release their name. That is observed product behavior, kept
// as-is pending clarification.
type Registry struct {
	mu    sync.Mutex
	max   int
	names []string
}

func NewRegistry(max int) *Registry {
	if max <= 0 {
		max = DefaultMaxPlayers
	}
	return &Registry{max: max}
}

// CapacityReached reports whether the claimed-name count has hit the
// session's player capacity.
func (r *Registry) CapacityReached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.names) == r.max
}

// TryClaim inserts name into the claimed set. It fails if the name is
// already present; there is no way to release a claim afterwards.
func (r *Registry) TryClaim(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.names {
		if n == name {
			return false
		}
	}

	r.names = append(r.names, name)
	return true
}

// CapacityLabel formats the current occupancy as "{count}/{max}".
func (r *Registry) CapacityLabel() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("%d/%d", len(r.names), r.max)
}

// ClaimedNames returns the claimed names as a comma-separated list.
func (r *Registry) ClaimedNames() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.names, ", ")
}
