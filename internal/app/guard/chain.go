package guard

import (
	"github.com/upnext/upnext/internal/app/queue"
	"github.com/upnext/upnext/internal/domain/media"
)

// Chain executes guards in sequence.
type Chain struct {
	guards []Guard
}

// NewChain creates a new guard chain.
func NewChain() *Chain {
	return &Chain{
		guards: make([]Guard, 0),
	}
}

// Add adds a guard to the chain.
func (c *Chain) Add(g Guard) {
	c.guards = append(c.guards, g)
}

// Execute runs all guards in sequence.
// Returns immediately if any guard rejects the media.
func (c *Chain) Execute(state queue.State, m media.Media) Result {
	for _, g := range c.guards {
		result := g.Check(state, m)
		if !result.Accepted {
			return result
		}
	}
	return Accept()
}

// Guards returns all guards in the chain.
func (c *Chain) Guards() []Guard {
	return c.guards
}
