// Package journal persists every board event to Postgres. The journal is an
// observer: the board's stored state never depends on it, so a write failure
// is logged upstream and the operation still stands.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/perch-labs/noticeboard/internal/domain"
	"github.com/perch-labs/noticeboard/internal/store"
)

// Entry is one journaled event.
type Entry struct {
	Seq        int64           `json:"seq"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	RecordedAt time.Time       `json:"recordedAt"`
}

// Recorder appends board events to the journal table and reads them back.
type Recorder struct {
	pool *pgxpool.Pool
}

// New constructs a Recorder backed by the provided store.
func New(st *store.Store) *Recorder {
	return &Recorder{pool: st.Pool()}
}

// NewWithPool constructs a Recorder directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Recorder {
	return &Recorder{pool: pool}
}

// Publish appends one event. Implements the board's EventSink contract.
func (r *Recorder) Publish(ctx context.Context, ev domain.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.EventKind(), err)
	}

	const query = `INSERT INTO journal (kind, payload) VALUES ($1, $2)`
	if _, err := r.pool.Exec(ctx, query, ev.EventKind(), payload); err != nil {
		return fmt.Errorf("append %s event: %w", ev.EventKind(), err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	} else if limit > 500 {
		limit = 500
	}

	const query = `
        SELECT seq, kind, payload, recorded_at
        FROM journal
        ORDER BY seq DESC
        LIMIT $1
    `
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Seq, &e.Kind, &e.Payload, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByKind reports how many entries of each kind have been journaled.
func (r *Recorder) CountByKind(ctx context.Context) (map[string]int64, error) {
	const query = `SELECT kind, COUNT(*)::int8 FROM journal GROUP BY kind`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count journal: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var kind string
		var n int64
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan journal count: %w", err)
		}
		counts[kind] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
