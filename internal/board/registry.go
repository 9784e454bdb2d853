package board

import (
	"sync"

	"github.com/perch-labs/noticeboard/internal/domain"
)

// Mode selects who may insert into a registry.
type Mode int

const (
	// ModeOpen accepts inserts from any principal.
	ModeOpen Mode = iota
	// ModeGated accepts inserts only after a successful capability check.
	ModeGated
)

// Registry is an append-only store mapping record identifiers to records.
// Records are exclusively owned by their registry and are never removed;
// identifiers stay unique for the registry's lifetime. All access goes
// through the registry's own lock, so independent registries never contend.
type Registry struct {
	id   domain.ID
	mode Mode

	mu      sync.RWMutex
	records map[domain.ID]domain.Record
}

// NewRegistry returns an empty registry with the given identifier and mode.
func NewRegistry(id domain.ID, mode Mode) *Registry {
	return &Registry{
		id:      id,
		mode:    mode,
		records: make(map[domain.ID]domain.Record),
	}
}

// ID returns the registry's own identifier, the value capabilities bind to.
func (r *Registry) ID() domain.ID { return r.id }

// Gated reports whether inserts require the admin capability.
func (r *Registry) Gated() bool { return r.mode == ModeGated }

// Insert stores a record. Input is pre-validated by the caller; the registry
// is purely storage and never truncates or coerces. The record's identifier
// comes from an IDSource, which guarantees it is fresh.
func (r *Registry) Insert(rec domain.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.RecordID()] = rec
}

// Get returns the record stored under id, or ErrNotFound.
func (r *Registry) Get(id domain.ID) (domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

// Len reports how many records the registry holds.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// update runs fn on the record stored under id while holding the write lock,
// making the whole check-then-mutate step one critical section. If fn fails
// before mutating, the registry is left untouched.
func (r *Registry) update(id domain.ID, fn func(domain.Record) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return ErrNotFound
	}
	return fn(rec)
}
