package domain

import "time"

// ID is an opaque, globally-unique record identifier assigned at insert time.
// IDs are never reused or recomputed.
type ID string

// Principal identifies the caller of an operation. Supplied by the transport
// layer per call; equality-comparable so it can key vote deduplication.
type Principal string

// Record is anything a registry can store.
type Record interface {
	RecordID() ID
}

// Note is a bulletin note. Immutable once stored.
type Note struct {
	ID        ID
	Title     string
	Body      string
	Reference *ID
	Author    Principal
	PostedAt  time.Time
}

// RecordID implements Record.
func (n *Note) RecordID() ID { return n.ID }

// CatalogEntry is a curated catalog record. Immutable once stored except for
// its embedded vote aggregate.
type CatalogEntry struct {
	ID       ID
	Title    string
	Synopsis string
	Director string
	Cast     []string
	// Ratings is nil until the entry is created with an empty aggregate, so
	// "never rateable" and "rated with average 0" stay distinguishable.
	Ratings *VoteAggregate
	AddedAt time.Time
}

// RecordID implements Record.
func (e *CatalogEntry) RecordID() ID { return e.ID }
