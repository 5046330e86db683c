package guard

import (
	"github.com/upnext/upnext/internal/app/queue"
	"github.com/upnext/upnext/internal/domain/media"
)

// DuplicateMediaGuard rejects media that is already somewhere in the queue.
// Entries are compared by media ID, so the same asset queued under two
// different entry IDs still counts as a duplicate.
type DuplicateMediaGuard struct{}

// NewDuplicateMediaGuard creates a new duplicate media guard.
func NewDuplicateMediaGuard() *DuplicateMediaGuard {
	return &DuplicateMediaGuard{}
}

// Name returns the guard name.
func (g *DuplicateMediaGuard) Name() string {
	return "duplicate_media_guard"
}

// Description returns the guard description.
func (g *DuplicateMediaGuard) Description() string {
	return "Rejects media that is already queued"
}

// ReturnCodes returns possible return codes.
func (g *DuplicateMediaGuard) ReturnCodes() []string {
	return []string{"duplicate_media"}
}

// ValidateConfig validates the guard configuration.
func (g *DuplicateMediaGuard) ValidateConfig(settings map[string]any) error {
	// No configuration needed
	return nil
}

// Check checks if the media is already queued.
func (g *DuplicateMediaGuard) Check(state queue.State, m media.Media) Result {
	for _, item := range state.Items {
		if item.Media.ID == m.ID {
			return Reject("duplicate_media")
		}
	}
	return Accept()
}

func init() {
	Register("duplicate_media_guard", func() Guard {
		return &DuplicateMediaGuard{}
	})
}
