package queue

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/upnext/upnext/internal/domain/media"
)

// DefaultAutoAdvanceDelay is the dwell time for still images when none is
// configured.
const DefaultAutoAdvanceDelay = 5 * time.Second

// Config holds store configuration.
type Config struct {
	Rand             *rand.Rand    // Random source for shuffle (nil: seeded from crypto/rand)
	RepeatMode       RepeatMode    // Initial repeat mode
	AutoAdvance      bool          // Initial auto-advance flag
	AutoAdvanceDelay time.Duration // Initial dwell time for still images
}

// Store owns the queue state and is its sole mutator. Every public operation
// is a critical section; observers are notified after the mutation commits.
//
// Operations never fail: out-of-range input is a silent no-op or a nil
// return, so a misbehaving caller on the UI path cannot crash a render pass.
//
// The following holds after every operation: entry IDs are unique,
// -1 <= currentIndex < len(items), an empty queue has currentIndex == -1,
// and nothing plays while currentIndex is -1.
type Store struct {
	mu sync.RWMutex

	items        []media.Item
	currentIndex int
	isPlaying    bool
	repeatMode   RepeatMode
	shuffled     bool

	autoAdvance      bool
	autoAdvanceDelay time.Duration

	rng         *rand.Rand
	broadcaster *Broadcaster
}

// New creates an empty queue store.
func New(config Config) *Store {
	rng := config.Rand
	if rng == nil {
		rng = newRand()
	}
	delay := config.AutoAdvanceDelay
	if delay <= 0 {
		delay = DefaultAutoAdvanceDelay
	}

	return &Store{
		items:            make([]media.Item, 0),
		currentIndex:     -1,
		repeatMode:       config.RepeatMode,
		autoAdvance:      config.AutoAdvance,
		autoAdvanceDelay: delay,
		rng:              rng,
		broadcaster:      NewBroadcaster(),
	}
}

// Subscribe registers an observer for committed state changes. The returned
// function removes the observer and is safe to call more than once.
func (s *Store) Subscribe(o Observer) func() {
	return s.broadcaster.Subscribe(o)
}

// SubscribeFunc registers a plain function as an observer.
func (s *Store) SubscribeFunc(fn func(Change)) func() {
	return s.broadcaster.Subscribe(ObserverFunc(fn))
}

// State returns an immutable snapshot of the queue.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

// Len returns the number of queued entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Add appends one media asset to the end of the queue and returns the
// created entry. The cursor does not move.
func (s *Store) Add(m media.Media) media.Item {
	s.mu.Lock()
	item := s.appendLocked(m)
	change := s.changeLocked(OpAdd)
	s.mu.Unlock()

	s.broadcaster.Notify(change)
	return item
}

// AddAll appends the given media assets preserving their relative order and
// returns the created entries. Observers are notified once for the whole
// batch, so they never see it half applied. An empty batch is a no-op.
func (s *Store) AddAll(ms ...media.Media) []media.Item {
	if len(ms) == 0 {
		return nil
	}

	s.mu.Lock()
	items := make([]media.Item, 0, len(ms))
	for _, m := range ms {
		items = append(items, s.appendLocked(m))
	}
	change := s.changeLocked(OpAdd)
	s.mu.Unlock()

	s.broadcaster.Notify(change)
	return items
}

// Remove deletes the entry with the given id, ignoring unknown ids. When an
// entry before the cursor disappears the cursor shifts left so it keeps
// pointing at the same entry. Removing the current entry stops playback and
// clamps the cursor to the last valid index (-1 once the queue is empty).
func (s *Store) Remove(id string) {
	s.mu.Lock()

	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	s.items = append(s.items[:idx], s.items[idx+1:]...)

	switch {
	case idx < s.currentIndex:
		s.currentIndex--
	case idx == s.currentIndex:
		if s.currentIndex > len(s.items)-1 {
			s.currentIndex = len(s.items) - 1
		}
		s.isPlaying = false
	}

	change := s.changeLocked(OpRemove)
	s.mu.Unlock()

	s.broadcaster.Notify(change)
}

// Clear removes every entry and stops playback. Clearing an already empty
// queue changes nothing and does not notify observers.
func (s *Store) Clear() {
	s.mu.Lock()

	if len(s.items) == 0 {
		s.mu.Unlock()
		return
	}

	s.items = make([]media.Item, 0)
	s.currentIndex = -1
	s.isPlaying = false

	change := s.changeLocked(OpClear)
	s.mu.Unlock()

	s.broadcaster.Notify(change)
}

// PlayIndex selects the entry at index, marks playback active and returns a
// copy of the entry. Out-of-range indexes return nil and change nothing.
func (s *Store) PlayIndex(index int) *media.Item {
	s.mu.Lock()

	item := s.playIndexLocked(index)
	if item == nil {
		s.mu.Unlock()
		return nil
	}

	change := s.changeLocked(OpCursor)
	s.mu.Unlock()

	s.broadcaster.Notify(change)
	return item
}

// PlayNext advances according to the repeat mode and returns the new current
// entry. RepeatOne re-plays the current entry without moving the cursor.
// RepeatAll wraps from the last entry to the first. RepeatNone stops at the
// end: playback halts, the cursor stays on the last entry and nil is
// returned. On an empty queue it returns nil unconditionally.
func (s *Store) PlayNext() *media.Item {
	s.mu.Lock()

	item, change, notify := s.advanceLocked()
	s.mu.Unlock()

	if notify {
		s.broadcaster.Notify(change)
	}
	return item
}

// AdvanceFrom performs the automatic advance driven by a media end or dwell
// signal. It advances only while automatic advancement is enabled and the
// entry with the given id is still current and playing; otherwise it returns
// nil and changes nothing. The guard and the advance run atomically, so a
// signal for an entry the user already skipped away from can never move the
// cursor twice.
func (s *Store) AdvanceFrom(id string) *media.Item {
	s.mu.Lock()

	if !s.autoAdvance || !s.isPlaying ||
		s.currentIndex < 0 || s.items[s.currentIndex].ID != id {
		s.mu.Unlock()
		return nil
	}

	item, change, notify := s.advanceLocked()
	s.mu.Unlock()

	if notify {
		s.broadcaster.Notify(change)
	}
	return item
}

// PlayPrevious steps back one entry and returns the new current entry.
// RepeatOne re-plays the current entry. RepeatAll wraps from the first entry
// to the last. Otherwise the cursor clamps at the first entry and re-plays
// it; unlike PlayNext there is no stop at this boundary, the queue never
// steps before index 0. On an empty queue it returns nil.
func (s *Store) PlayPrevious() *media.Item {
	s.mu.Lock()

	if len(s.items) == 0 {
		s.mu.Unlock()
		return nil
	}

	if s.repeatMode == RepeatOne {
		item := s.playIndexLocked(s.currentIndex)
		if item == nil {
			s.mu.Unlock()
			return nil
		}
		change := s.changeLocked(OpCursor)
		s.mu.Unlock()
		s.broadcaster.Notify(change)
		return item
	}

	prev := s.currentIndex - 1
	if prev < 0 {
		if s.repeatMode == RepeatAll {
			prev = len(s.items) - 1
		} else {
			prev = 0
		}
	}

	item := s.playIndexLocked(prev)
	change := s.changeLocked(OpCursor)
	s.mu.Unlock()

	s.broadcaster.Notify(change)
	return item
}

// MoveItem moves the entry at from to position to, shifting the entries in
// between by one slot. Equal or out-of-range indexes are a no-op. The cursor
// follows the entry it pointed at, wherever that entry ends up.
func (s *Store) MoveItem(from, to int) {
	s.mu.Lock()

	n := len(s.items)
	if from == to || from < 0 || from >= n || to < 0 || to >= n {
		s.mu.Unlock()
		return
	}

	s.moveLocked(from, to)

	switch {
	case s.currentIndex == from:
		s.currentIndex = to
	case from < s.currentIndex && s.currentIndex <= to:
		s.currentIndex--
	case to <= s.currentIndex && s.currentIndex < from:
		s.currentIndex++
	}

	change := s.changeLocked(OpMove)
	s.mu.Unlock()

	s.broadcaster.Notify(change)
}

// Shuffle randomizes the playback order with a Fisher-Yates pass. The entry
// under the cursor is spliced back to its old position afterwards so the
// playing entry does not jump around in the visible list; only the entries
// around it end up permuted.
func (s *Store) Shuffle() {
	s.mu.Lock()

	var currentID string
	if s.currentIndex >= 0 {
		currentID = s.items[s.currentIndex].ID
	}

	shuffleItems(s.items, s.rng)

	if currentID != "" {
		if idx := s.indexOfLocked(currentID); idx >= 0 && idx != s.currentIndex {
			s.moveLocked(idx, s.currentIndex)
		}
	}
	s.shuffled = true

	zlog.Debug().Msgf("queue: shuffled: items=%d current_index=%d", len(s.items), s.currentIndex)
	change := s.changeLocked(OpShuffle)
	s.mu.Unlock()

	s.broadcaster.Notify(change)
}

// SetRepeatMode changes the boundary behavior. Setting the current mode
// again changes nothing and does not notify observers.
func (s *Store) SetRepeatMode(mode RepeatMode) {
	s.mu.Lock()

	if s.repeatMode == mode {
		s.mu.Unlock()
		return
	}
	s.repeatMode = mode

	change := s.changeLocked(OpSettings)
	s.mu.Unlock()

	s.broadcaster.Notify(change)
}

// SetAutoAdvance toggles automatic advancement and optionally updates the
// dwell time for still images. A delay of zero or less keeps the configured
// delay. Observers are notified only when something changed.
func (s *Store) SetAutoAdvance(enabled bool, delay time.Duration) {
	s.mu.Lock()

	changed := s.autoAdvance != enabled
	s.autoAdvance = enabled
	if delay > 0 && delay != s.autoAdvanceDelay {
		s.autoAdvanceDelay = delay
		changed = true
	}
	if !changed {
		s.mu.Unlock()
		return
	}

	change := s.changeLocked(OpSettings)
	s.mu.Unlock()

	s.broadcaster.Notify(change)
}

// Stop halts playback without moving the cursor. Stopping an already
// stopped queue is a no-op.
func (s *Store) Stop() {
	s.mu.Lock()

	if !s.isPlaying {
		s.mu.Unlock()
		return
	}
	s.isPlaying = false

	change := s.changeLocked(OpCursor)
	s.mu.Unlock()

	s.broadcaster.Notify(change)
}

// advanceLocked implements the repeat-aware cursor advance shared by PlayNext
// and AdvanceFrom. The returned flag says whether a change was committed and
// must be broadcast after unlocking.
// Must be called with the lock held.
func (s *Store) advanceLocked() (*media.Item, Change, bool) {
	if len(s.items) == 0 {
		return nil, Change{}, false
	}

	if s.repeatMode == RepeatOne {
		item := s.playIndexLocked(s.currentIndex)
		if item == nil {
			return nil, Change{}, false
		}
		return item, s.changeLocked(OpCursor), true
	}

	next := s.currentIndex + 1
	if next >= len(s.items) {
		if s.repeatMode != RepeatAll {
			// End of the queue: stop, cursor stays on the last entry.
			if !s.isPlaying {
				return nil, Change{}, false
			}
			s.isPlaying = false
			zlog.Debug().Msgf("queue: reached end, stopping: items=%d", len(s.items))
			return nil, s.changeLocked(OpCursor), true
		}
		next = 0
	}

	item := s.playIndexLocked(next)
	return item, s.changeLocked(OpCursor), true
}

// appendLocked creates an entry for m and appends it.
// Must be called with the lock held.
func (s *Store) appendLocked(m media.Media) media.Item {
	item := media.Item{
		ID:      uuid.New().String(),
		Media:   m,
		AddedAt: time.Now(),
	}
	s.items = append(s.items, item)
	return item
}

// playIndexLocked points the cursor at index and marks playback active,
// returning a copy of the entry, or nil when index is out of range.
// Must be called with the lock held.
func (s *Store) playIndexLocked(index int) *media.Item {
	if index < 0 || index >= len(s.items) {
		return nil
	}

	s.currentIndex = index
	s.isPlaying = true
	item := s.items[index]
	return &item
}

// moveLocked splices the entry at from out of the list and reinserts it at
// to. Cursor policy is the caller's business.
// Must be called with the lock held.
func (s *Store) moveLocked(from, to int) {
	item := s.items[from]
	s.items = append(s.items[:from], s.items[from+1:]...)
	s.items = append(s.items[:to], append([]media.Item{item}, s.items[to:]...)...)
}

// indexOfLocked returns the position of the entry with the given id, or -1.
// Must be called with the lock held.
func (s *Store) indexOfLocked(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// changeLocked builds the broadcast payload for a committed mutation.
// Must be called with the lock held.
func (s *Store) changeLocked(op Op) Change {
	return Change{Op: op, State: s.stateLocked()}
}

// stateLocked copies the current state into a snapshot.
// Must be called with the lock held.
func (s *Store) stateLocked() State {
	items := make([]media.Item, len(s.items))
	copy(items, s.items)

	return State{
		Items:            items,
		CurrentIndex:     s.currentIndex,
		IsPlaying:        s.isPlaying,
		RepeatMode:       s.repeatMode,
		Shuffled:         s.shuffled,
		AutoAdvance:      s.autoAdvance,
		AutoAdvanceDelay: s.autoAdvanceDelay,
	}
}
