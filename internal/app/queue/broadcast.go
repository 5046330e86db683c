package queue

import (
	"sync"

	"github.com/google/uuid"
)

// Observer receives queue change notifications.
type Observer interface {
	QueueChanged(change Change)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(change Change)

// QueueChanged calls f.
func (f ObserverFunc) QueueChanged(change Change) {
	f(change)
}

// Broadcaster delivers committed state changes to registered observers.
type Broadcaster struct {
	mu        sync.RWMutex
	observers map[string]Observer
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		observers: make(map[string]Observer),
	}
}

// Subscribe registers an observer and returns a function that removes it.
// The returned function is safe to call more than once.
func (b *Broadcaster) Subscribe(o Observer) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New().String()
	b.observers[id] = o

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.observers, id)
	}
}

// Notify invokes every registered observer with the change, synchronously
// and in unspecified order. Each committed mutation produces exactly one
// call per observer; batches are never delivered half applied. Observer
// callbacks must not mutate the queue they observe.
func (b *Broadcaster) Notify(change Change) {
	b.mu.RLock()
	// Copy observers to avoid holding the lock during callbacks
	obs := make([]Observer, 0, len(b.observers))
	for _, o := range b.observers {
		obs = append(obs, o)
	}
	b.mu.RUnlock()

	for _, o := range obs {
		o.QueueChanged(change)
	}
}

// Len returns the number of registered observers.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.observers)
}

// Close removes all observers.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = make(map[string]Observer)
}
