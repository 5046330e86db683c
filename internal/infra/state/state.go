// Package state persists the queue to a local SQLite database so a restart
// picks up where the player left off.
package state

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName      = "upnext"
	dbFileName   = "upnext.db"
	saveDebounce = 500 * time.Millisecond
)

// Manager owns the database handle and debounces writes, so a burst of queue
// edits becomes a single save.
type Manager struct {
	db        *sql.DB
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *SavedQueue
}

// Open opens the database at path, creating it and its schema on first use.
// An empty path falls back to the default location in the XDG data dir.
func Open(path string) (*Manager, error) {
	dbPath := path
	if dbPath == "" {
		p, err := xdg.DataFile(filepath.Join(appName, dbFileName))
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve state path")
		}
		dbPath = p
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create state dir")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open state db")
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to init state schema")
	}

	return &Manager{db: db}, nil
}

// Close flushes any pending save and closes the database.
func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	if pending != nil {
		_ = saveQueue(m.db, *pending)
	}

	return m.db.Close()
}

// LoadQueue returns the saved queue, or nil when nothing was ever saved.
func (m *Manager) LoadQueue() (*SavedQueue, error) {
	return loadQueue(m.db)
}

// SaveQueue schedules a save of the given queue. Writes are debounced:
// only the newest state within the debounce window reaches the disk.
func (m *Manager) SaveQueue(saved SavedQueue) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &saved

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			_ = saveQueue(m.db, *pending)
		}
	})
}
