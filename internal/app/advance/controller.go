// Package advance drives automatic queue advancement. It turns media end
// signals and still-image dwell timers into cursor moves on the queue store.
package advance

import (
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/upnext/upnext/internal/app/queue"
)

// Config holds controller configuration.
type Config struct {
	Queue *queue.Store
}

// Controller watches the queue and advances it without user input. Media
// with a natural end (video, animation) advances when MediaEnded reports the
// end of the current entry. Still images have no end, so selecting one arms
// a dwell timer for the configured delay instead.
//
// All advancement funnels through the store's AdvanceFrom guard, so a late
// timer or an end signal for an entry that is no longer current is dropped.
type Controller struct {
	queue       *queue.Store
	unsubscribe func()

	mu sync.Mutex

	// Dwell timer for the current still image. dwellGen invalidates
	// callbacks that were already in flight when the timer was cancelled,
	// since stopping a fired timer is not possible.
	dwellCancel func()
	dwellGen    uint64
	timedID     string

	closed bool
}

// NewController creates a controller bound to the given queue store. It picks
// up playback already in progress, so wiring it against a restored queue
// arms the dwell timer immediately when a still image is current.
func NewController(config Config) *Controller {
	c := &Controller{queue: config.Queue}
	c.unsubscribe = config.Queue.SubscribeFunc(c.queueChanged)
	c.queueChanged(queue.Change{Op: queue.OpCursor, State: config.Queue.State()})
	return c
}

// MediaEnded reports that the entry with the given id finished playing on
// its own. The queue advances only if that entry is still the current one,
// playback is active and automatic advancement is enabled.
func (c *Controller) MediaEnded(entryID string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if item := c.queue.AdvanceFrom(entryID); item != nil {
		zlog.Debug().Msgf("advance: media ended, advancing: from=%s to=%s", entryID, item.Media.ID)
	}
}

// DwellActive reports whether a dwell timer is currently armed.
func (c *Controller) DwellActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dwellCancel != nil
}

// Close cancels any armed timer and detaches from the queue. Signals arriving
// after Close are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancelDwellLocked()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// queueChanged keeps the dwell timer in sync with the committed queue state.
func (c *Controller) queueChanged(change queue.Change) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	state := change.State
	current := state.Current()

	if !state.AutoAdvance || !state.IsPlaying || current == nil || !current.Media.IsStill() {
		c.cancelDwellLocked()
		return
	}

	// A cursor move restarts the dwell even for the same entry. Any other
	// mutation, adding entries or reordering around the image, leaves a
	// running timer alone.
	if c.dwellCancel != nil && c.timedID == current.ID && change.Op != queue.OpCursor {
		return
	}

	c.armDwellLocked(current.ID, state.AutoAdvanceDelay)
}

// armDwellLocked replaces any running timer with one for the given entry.
// Must be called with the lock held.
func (c *Controller) armDwellLocked(entryID string, delay time.Duration) {
	c.cancelDwellLocked()

	c.dwellGen++
	gen := c.dwellGen
	c.timedID = entryID
	c.dwellCancel = startDwellTimer(delay, func() {
		c.onDwellElapsed(gen, entryID)
	})

	zlog.Debug().Msgf("advance: dwell timer armed: entry=%s delay=%v", entryID, delay)
}

// cancelDwellLocked stops the timer and invalidates callbacks already in
// flight. Must be called with the lock held.
func (c *Controller) cancelDwellLocked() {
	c.dwellGen++
	if c.dwellCancel != nil {
		c.dwellCancel()
		c.dwellCancel = nil
	}
	c.timedID = ""
}

// onDwellElapsed runs when the dwell timer fires.
func (c *Controller) onDwellElapsed(gen uint64, entryID string) {
	c.mu.Lock()
	if c.closed || gen != c.dwellGen {
		c.mu.Unlock()
		return
	}
	c.dwellCancel = nil
	c.timedID = ""
	c.mu.Unlock()

	// The advance broadcasts back into queueChanged, which re-arms the
	// timer when the next entry is a still image as well.
	if item := c.queue.AdvanceFrom(entryID); item != nil {
		zlog.Debug().Msgf("advance: dwell elapsed, advancing: from=%s to=%s", entryID, item.Media.ID)
	}
}

// startDwellTimer triggers callback after delay. Returns a cancel function.
func startDwellTimer(delay time.Duration, callback func()) func() {
	timer := time.AfterFunc(delay, callback)
	return func() { timer.Stop() }
}
