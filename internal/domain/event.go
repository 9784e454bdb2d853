package domain

// Event is a structured notification emitted after a successful operation.
// Events are consumed by external sinks and are never required for the
// correctness of stored state.
type Event interface {
	EventKind() string
}

// NotePosted signals a new note on the open board.
type NotePosted struct {
	ID     ID        `json:"id"`
	Title  string    `json:"title"`
	Author Principal `json:"author"`
}

// AdminNotePosted signals a new note posted through the admin capability.
type AdminNotePosted struct {
	ID    ID     `json:"id"`
	Title string `json:"title"`
}

// CatalogEntryAdded signals a new curated catalog entry.
type CatalogEntryAdded struct {
	ID    ID     `json:"id"`
	Title string `json:"title"`
}

// VoteCast signals an accepted vote on a catalog entry.
type VoteCast struct {
	RecordID  ID        `json:"recordId"`
	Score     uint64    `json:"score"`
	Principal Principal `json:"principal"`
}

// AdminTransferred signals that the admin capability changed hands.
type AdminTransferred struct {
	Old Principal `json:"old"`
	New Principal `json:"new"`
}

func (NotePosted) EventKind() string        { return "note.posted" }
func (AdminNotePosted) EventKind() string   { return "note.admin_posted" }
func (CatalogEntryAdded) EventKind() string { return "catalog.entry_added" }
func (VoteCast) EventKind() string          { return "catalog.vote_cast" }
func (AdminTransferred) EventKind() string  { return "admin.transferred" }
