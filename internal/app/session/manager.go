// Package session provides the session manager wiring the queue, automatic
// advancement, persistence and the presentation surface together.
package session

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	zlog "github.com/rs/zerolog/log"

	"github.com/upnext/upnext/internal/app/advance"
	"github.com/upnext/upnext/internal/app/guard"
	"github.com/upnext/upnext/internal/app/queue"
	"github.com/upnext/upnext/internal/domain/media"
	"github.com/upnext/upnext/internal/infra/state"
)

// Config holds session manager configuration.
type Config struct {
	Queue   *queue.Store
	Guards  *guard.Chain   // nil: admit everything
	Surface Surface        // nil: log only
	State   *state.Manager // nil: no persistence
}

// Manager runs a player session. It admits media through the guard chain,
// keeps the surface showing what the queue says is current, persists every
// committed change and owns the advance controller.
type Manager struct {
	queue    *queue.Store
	guards   *guard.Chain
	surface  Surface
	stateMgr *state.Manager
	advance  *advance.Controller

	mu          sync.Mutex
	lastShownID string // entry on the surface, empty when hidden
	unsubscribe func()
	closed      bool
}

// NewManager creates a new session manager.
func NewManager(cfg Config) *Manager {
	guards := cfg.Guards
	if guards == nil {
		guards = guard.NewChain()
	}
	surface := cfg.Surface
	if surface == nil {
		surface = LogSurface{}
	}

	m := &Manager{
		queue:    cfg.Queue,
		guards:   guards,
		surface:  surface,
		stateMgr: cfg.State,
	}
	m.unsubscribe = cfg.Queue.SubscribeFunc(m.queueChanged)
	m.advance = advance.NewController(advance.Config{Queue: cfg.Queue})

	return m
}

// Queue returns the queue store the session runs on.
func (m *Manager) Queue() *queue.Store {
	return m.queue
}

// Start restores the previously saved queue, if persistence is enabled and
// something was saved. Settings, entries, cursor and the playing flag all
// come back; the restored order is taken as is.
func (m *Manager) Start() error {
	if m.stateMgr == nil {
		return nil
	}

	saved, err := m.stateMgr.LoadQueue()
	if err != nil {
		return errors.Wrap(err, "failed to load saved queue")
	}
	if saved == nil || len(saved.Items) == 0 {
		zlog.Debug().Msg("session: no saved queue to restore")
		return nil
	}

	m.restore(saved)
	return nil
}

// Enqueue runs md through the guard chain and appends it on acceptance.
// It returns whether the media was admitted and the rejection code if not.
func (m *Manager) Enqueue(md media.Media) (bool, string) {
	result := m.guards.Execute(m.queue.State(), md)
	if !result.Accepted {
		zlog.Warn().Msgf("session: media rejected: media=%s code=%s", md.ID, result.Code)
		return false, result.Code
	}

	m.queue.Add(md)
	zlog.Info().Msgf("session: media queued: media=%s name=%s", md.ID, md.DisplayName)
	return true, ""
}

// EnqueueAll admits a batch. Each media is checked against the queue as it
// would look with the earlier batch entries already admitted, then all
// accepted entries join the queue as one atomic addition. Returns the
// accepted and rejected counts.
func (m *Manager) EnqueueAll(ms ...media.Media) (int, int) {
	snapshot := m.queue.State()

	accepted := make([]media.Media, 0, len(ms))
	rejected := 0
	for _, md := range ms {
		result := m.guards.Execute(snapshot, md)
		if !result.Accepted {
			zlog.Warn().Msgf("session: media rejected: media=%s code=%s", md.ID, result.Code)
			rejected++
			continue
		}
		accepted = append(accepted, md)
		// Extend the snapshot so later batch entries see this one.
		snapshot.Items = append(snapshot.Items, media.Item{ID: md.ID, Media: md})
	}

	if len(accepted) > 0 {
		m.queue.AddAll(accepted...)
		zlog.Info().Msgf("session: batch queued: accepted=%d rejected=%d", len(accepted), rejected)
	}
	return len(accepted), rejected
}

// MediaEnded reports that the entry with the given id finished playing.
func (m *Manager) MediaEnded(entryID string) {
	m.advance.MediaEnded(entryID)
}

// Close detaches the session from the queue and clears the surface. The
// queue store and the state manager stay usable, they belong to the caller.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	wasShown := m.lastShownID != ""
	m.lastShownID = ""
	m.mu.Unlock()

	m.advance.Close()
	if unsubscribe != nil {
		unsubscribe()
	}
	if wasShown {
		m.surface.Hide()
	}
}

// queueChanged persists the committed state and keeps the surface current.
func (m *Manager) queueChanged(change queue.Change) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	if m.stateMgr != nil {
		m.stateMgr.SaveQueue(savedFromState(change.State))
	}

	st := change.State
	current := st.Current()

	if !st.IsPlaying || current == nil {
		if m.lastShownID != "" {
			m.lastShownID = ""
			m.surface.Hide()
		}
		return
	}

	// A cursor move re-shows even the same entry, that is how a repeated
	// entry starts over. Other mutations only matter when they change
	// which entry is current.
	if current.ID == m.lastShownID && change.Op != queue.OpCursor {
		return
	}

	m.lastShownID = current.ID
	m.surface.Show(*current)
}

// restore replays a saved queue into the store.
func (m *Manager) restore(saved *state.SavedQueue) {
	if mode, err := queue.ParseRepeatMode(saved.RepeatMode); err == nil {
		m.queue.SetRepeatMode(mode)
	}
	m.queue.SetAutoAdvance(saved.AutoAdvance, saved.AutoAdvanceDelay)

	ms := make([]media.Media, 0, len(saved.Items))
	for _, item := range saved.Items {
		kind, err := media.ParseKind(item.Kind)
		if err != nil {
			zlog.Warn().Msgf("session: dropping saved entry with unknown kind: media=%s kind=%s",
				item.MediaID, item.Kind)
			continue
		}
		ms = append(ms, media.Media{
			ID:           item.MediaID,
			DisplayName:  item.DisplayName,
			ThumbnailRef: item.ThumbnailRef,
			Kind:         kind,
			Duration:     item.Duration,
		})
	}
	if len(ms) == 0 {
		return
	}

	m.queue.AddAll(ms...)

	if saved.CurrentIndex >= 0 && saved.CurrentIndex < len(ms) {
		m.queue.PlayIndex(saved.CurrentIndex)
		if !saved.IsPlaying {
			m.queue.Stop()
		}
	}

	zlog.Info().Msgf("session: queue restored: items=%d current_index=%d saved=%s",
		len(ms), saved.CurrentIndex, humanize.Time(saved.SavedAt))
}

// savedFromState converts a queue snapshot into its persistent form.
func savedFromState(st queue.State) state.SavedQueue {
	items := make([]state.SavedItem, 0, len(st.Items))
	for _, item := range st.Items {
		items = append(items, state.SavedItem{
			EntryID:      item.ID,
			MediaID:      item.Media.ID,
			DisplayName:  item.Media.DisplayName,
			ThumbnailRef: item.Media.ThumbnailRef,
			Kind:         item.Media.Kind.String(),
			Duration:     item.Media.Duration,
			AddedAt:      item.AddedAt,
		})
	}

	return state.SavedQueue{
		CurrentIndex:     st.CurrentIndex,
		IsPlaying:        st.IsPlaying,
		RepeatMode:       st.RepeatMode.String(),
		Shuffled:         st.Shuffled,
		AutoAdvance:      st.AutoAdvance,
		AutoAdvanceDelay: st.AutoAdvanceDelay,
		Items:            items,
	}
}
