// Package media provides the media domain entities.
package media

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Kind represents the kind of a media asset.
type Kind int

const (
	KindVideo Kind = iota // Video file, ends on its own
	KindImage             // Still image, shown until something advances the queue
	KindGIF               // Animated image, the renderer decides when a loop counts as done
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindImage:
		return "image"
	case KindGIF:
		return "gif"
	default:
		return "unknown"
	}
}

// ParseKind parses a kind string as produced by String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "video":
		return KindVideo, nil
	case "image":
		return KindImage, nil
	case "gif":
		return KindGIF, nil
	default:
		return KindVideo, errors.Newf("unknown media kind: %q", s)
	}
}

// Media represents a single media asset from the library.
// Contains only what queue panels and renderers need; full metadata stays
// with the library.
type Media struct {
	ID           string        // Library media ID (the same asset may be queued more than once)
	DisplayName  string        // Name shown in queue panels
	ThumbnailRef string        // Thumbnail reference (empty if none exists)
	Kind         Kind          // video, image or gif
	Duration     time.Duration // Playback duration (zero when unknown; images have none)
}

// IsStill reports whether the media never ends on its own and needs a dwell
// timer to advance.
func (m Media) IsStill() bool {
	return m.Kind == KindImage
}

// Item represents one entry in the playback queue.
type Item struct {
	ID      string    // Queue entry ID, assigned at insertion and stable for the entry's lifetime
	Media   Media     // The queued media asset
	AddedAt time.Time // Time when added to the queue (display tie-breaks only)
}
