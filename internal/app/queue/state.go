// Package queue provides the Up Next playback queue engine.
package queue

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/upnext/upnext/internal/domain/media"
)

// RepeatMode represents the repeat behavior at queue boundaries.
type RepeatMode int

const (
	RepeatNone RepeatMode = iota // Stop after the last entry
	RepeatOne                    // Repeat the current entry indefinitely
	RepeatAll                    // Wrap around at either end
)

// String returns the string representation of the repeat mode.
func (r RepeatMode) String() string {
	switch r {
	case RepeatNone:
		return "none"
	case RepeatOne:
		return "one"
	case RepeatAll:
		return "all"
	default:
		return "unknown"
	}
}

// ParseRepeatMode parses a repeat mode string as produced by String.
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch s {
	case "none":
		return RepeatNone, nil
	case "one":
		return RepeatOne, nil
	case "all":
		return RepeatAll, nil
	default:
		return RepeatNone, errors.Newf("unknown repeat mode: %q", s)
	}
}

// Op identifies the operation that produced a state change.
type Op int

const (
	OpAdd      Op = iota // Entry or batch of entries appended
	OpRemove             // Entry removed
	OpClear              // Queue emptied
	OpCursor             // Cursor or playing flag changed
	OpMove               // Entry reordered
	OpShuffle            // Playback order shuffled
	OpSettings           // Repeat mode or auto-advance changed
)

// String returns the string representation of the operation.
func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	case OpClear:
		return "clear"
	case OpCursor:
		return "cursor"
	case OpMove:
		return "move"
	case OpShuffle:
		return "shuffle"
	case OpSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of the queue, safe to retain.
// Items is a copy; mutating it never affects the live queue.
type State struct {
	Items            []media.Item  // Entries in playback order
	CurrentIndex     int           // Index into Items, -1 when nothing is selected
	IsPlaying        bool          // True only when CurrentIndex points at a valid entry
	RepeatMode       RepeatMode    // Boundary behavior for next/previous
	Shuffled         bool          // True once the order has been shuffled (informational)
	AutoAdvance      bool          // Advance automatically when an entry finishes
	AutoAdvanceDelay time.Duration // Dwell time for still images
}

// Change describes one committed queue mutation delivered to observers.
type Change struct {
	Op    Op    // Operation that produced the change
	State State // Snapshot taken after the change
}

// Len returns the number of queued entries.
func (s State) Len() int {
	return len(s.Items)
}

// IsEmpty reports whether the queue holds no entries.
func (s State) IsEmpty() bool {
	return len(s.Items) == 0
}

// Current returns a copy of the entry under the cursor, or nil when nothing
// is selected.
func (s State) Current() *media.Item {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Items) {
		return nil
	}
	item := s.Items[s.CurrentIndex]
	return &item
}

// UpNext returns up to n entries following the cursor, fewer near the end of
// the queue. With nothing selected it returns the first n entries.
func (s State) UpNext(n int) []media.Item {
	if n <= 0 {
		return nil
	}

	start := s.CurrentIndex + 1
	if start >= len(s.Items) {
		return nil
	}

	end := start + n
	if end > len(s.Items) {
		end = len(s.Items)
	}

	next := make([]media.Item, end-start)
	copy(next, s.Items[start:end])
	return next
}
