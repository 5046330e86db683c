// Package guard provides the admission chain for queue additions.
package guard

import (
	"github.com/upnext/upnext/internal/app/queue"
	"github.com/upnext/upnext/internal/domain/media"
)

// Result represents the result of a guard check.
type Result struct {
	Accepted bool
	Code     string // e.g., "queue_full", "duplicate_media"
}

// Accept returns an accepted result.
func Accept() Result {
	return Result{Accepted: true}
}

// Reject returns a rejected result with the given code.
func Reject(code string) Result {
	return Result{Accepted: false, Code: code}
}

// Guard is the interface for admission guards.
type Guard interface {
	// Name returns the guard name (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// ReturnCodes returns the codes this guard can return.
	ReturnCodes() []string
	// ValidateConfig validates the guard configuration.
	ValidateConfig(settings map[string]any) error
	// Check decides whether m may join the queue in the given state.
	Check(state queue.State, m media.Media) Result
}

// registry holds registered guard factories.
var registry = make(map[string]func() Guard)

// Register registers a guard factory.
func Register(name string, factory func() Guard) {
	registry[name] = factory
}

// GetRegistered returns all registered guard factories.
func GetRegistered() map[string]func() Guard {
	return registry
}
