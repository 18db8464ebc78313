// Package storage provides the durable document layer: whole JSON documents
// written under fixed keys, last write wins, with change notification so
// stores can re-read after a write — including writes made by another
// process sharing the same backing store.
package storage

import (
	"context"
	"errors"
	"sync"
)

// Fixed document keys. Each collection is one document.
const (
	RecordsKey = "jobdeck:records"
	SchemaKey  = "jobdeck:schema"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("storage: document not found")

// DocumentStore reads and writes whole documents. Put must notify local
// subscribers synchronously after the write lands; backends that can observe
// other writers (redis pub/sub) additionally re-broadcast external changes.
type DocumentStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Subscribe registers fn to run on every change to any key. It returns
	// an unsubscribe func. fn receives the changed key, not the value;
	// subscribers re-read what they care about.
	Subscribe(fn func(key string)) func()
	Close() error
}

// hub is the subscriber registry shared by every backend.
type hub struct {
	mu   sync.Mutex
	subs map[int]func(key string)
	next int
}

func newHub() *hub {
	return &hub{subs: make(map[int]func(key string))}
}

func (h *hub) subscribe(fn func(key string)) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

func (h *hub) broadcast(key string) {
	h.mu.Lock()
	fns := make([]func(string), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
}
