// Package board implements the shared noticeboard core: an open registry for
// community notes, a capability-gated registry for admin notes and catalog
// entries, and the running-average vote aggregation over catalog entries.
//
// Every operation is an atomic unit of work: if any authorization or
// validation step fails, no identifier is consumed, no record is stored, no
// aggregate is touched and no event is emitted.
package board

import (
	"context"
	"log"
	"time"

	"github.com/perch-labs/noticeboard/internal/domain"
	"github.com/perch-labs/noticeboard/internal/validate"
)

// Options configures a Board at bootstrap.
type Options struct {
	// Admin is the principal that initially holds the admin capability.
	Admin domain.Principal
	// IDs allocates record identifiers. Defaults to UUIDSource.
	IDs IDSource
	// Sink receives events after successful operations. Defaults to NopSink.
	Sink EventSink
	// Logger captures sink failures. Defaults to log.Default.
	Logger *log.Logger
}

// Board owns the two registry instances and the admin capability for the
// lifetime of the process.
type Board struct {
	open   *Registry
	shelf  *Registry
	admin  *Capability
	ids    IDSource
	sink   EventSink
	logger *log.Logger
}

// New bootstraps a board: one open-write registry for community notes, one
// capability-gated registry for admin notes and catalog entries, and the
// admin capability bound to the gated registry, held by opts.Admin.
func New(opts Options) *Board {
	ids := opts.IDs
	if ids == nil {
		ids = UUIDSource()
	}
	sink := opts.Sink
	if sink == nil {
		sink = NopSink{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	open := NewRegistry(ids.NewID(), ModeOpen)
	shelf := NewRegistry(ids.NewID(), ModeGated)

	return &Board{
		open:   open,
		shelf:  shelf,
		admin:  NewCapability(shelf, opts.Admin),
		ids:    ids,
		sink:   sink,
		logger: logger,
	}
}

// AdminHolder returns the principal currently holding the admin capability.
func (b *Board) AdminHolder() domain.Principal { return b.admin.Holder() }

// PostNote stores a community note on the open registry.
func (b *Board) PostNote(ctx context.Context, caller domain.Principal, title, body string) (domain.ID, error) {
	return b.post(ctx, b.open, caller, title, body, nil)
}

// PostNoteWithReference stores a community note that points at another record.
func (b *Board) PostNoteWithReference(ctx context.Context, caller domain.Principal, title, body string, ref domain.ID) (domain.ID, error) {
	return b.post(ctx, b.open, caller, title, body, &ref)
}

// PostAdminNote stores a note on the gated registry. The caller must hold the
// admin capability.
func (b *Board) PostAdminNote(ctx context.Context, caller domain.Principal, title, body string) (domain.ID, error) {
	return b.post(ctx, b.shelf, caller, title, body, nil)
}

// PostAdminNoteWithReference is PostAdminNote with a reference to another record.
func (b *Board) PostAdminNoteWithReference(ctx context.Context, caller domain.Principal, title, body string, ref domain.ID) (domain.ID, error) {
	return b.post(ctx, b.shelf, caller, title, body, &ref)
}

// post runs the shared note flow: authorize first (fail fast, both gates must
// pass anyway), then validate, then allocate an identifier and store.
func (b *Board) post(ctx context.Context, reg *Registry, caller domain.Principal, title, body string, ref *domain.ID) (domain.ID, error) {
	if reg.Gated() {
		if err := b.admin.Authorize(caller, reg); err != nil {
			return "", err
		}
	}
	if err := validate.Text("title", title, TitleMinLen, TitleMaxLen); err != nil {
		return "", err
	}
	if err := validate.Text("body", body, BodyMinLen, BodyMaxLen); err != nil {
		return "", err
	}

	id := b.ids.NewID()
	reg.Insert(&domain.Note{
		ID:        id,
		Title:     title,
		Body:      body,
		Reference: ref,
		Author:    caller,
		PostedAt:  time.Now().UTC(),
	})

	if reg.Gated() {
		b.emit(ctx, domain.AdminNotePosted{ID: id, Title: title})
	} else {
		b.emit(ctx, domain.NotePosted{ID: id, Title: title, Author: caller})
	}
	return id, nil
}

// ReadNote returns the note stored under id, searching the open registry
// first and the gated one second. Performs no mutation.
func (b *Board) ReadNote(id domain.ID) (domain.Note, error) {
	for _, reg := range []*Registry{b.open, b.shelf} {
		rec, err := reg.Get(id)
		if err != nil {
			continue
		}
		if note, ok := rec.(*domain.Note); ok {
			return *note, nil
		}
	}
	return domain.Note{}, ErrNotFound
}

// CatalogEntryParams bundles the fields required to add a catalog entry.
type CatalogEntryParams struct {
	Title    string
	Synopsis string
	Director string
	Cast     []string
}

// AddCatalogEntry stores a catalog entry with an empty vote aggregate on the
// gated registry. The caller must hold the admin capability. Only the title
// is bounded; synopsis, director and cast are free-form.
func (b *Board) AddCatalogEntry(ctx context.Context, caller domain.Principal, params CatalogEntryParams) (domain.ID, error) {
	if err := b.admin.Authorize(caller, b.shelf); err != nil {
		return "", err
	}
	if err := validate.Text("title", params.Title, TitleMinLen, TitleMaxLen); err != nil {
		return "", err
	}

	id := b.ids.NewID()
	cast := make([]string, len(params.Cast))
	copy(cast, params.Cast)
	b.shelf.Insert(&domain.CatalogEntry{
		ID:       id,
		Title:    params.Title,
		Synopsis: params.Synopsis,
		Director: params.Director,
		Cast:     cast,
		Ratings:  domain.NewVoteAggregate(),
		AddedAt:  time.Now().UTC(),
	})

	b.emit(ctx, domain.CatalogEntryAdded{ID: id, Title: params.Title})
	return id, nil
}

// GetCatalogEntry returns a snapshot of the entry stored under id. The
// embedded aggregate is cloned so callers cannot alias registry-owned state.
func (b *Board) GetCatalogEntry(id domain.ID) (domain.CatalogEntry, error) {
	var snapshot domain.CatalogEntry
	err := b.shelf.update(id, func(rec domain.Record) error {
		entry, ok := rec.(*domain.CatalogEntry)
		if !ok {
			return ErrNotFound
		}
		snapshot = *entry
		snapshot.Cast = append([]string(nil), entry.Cast...)
		snapshot.Ratings = entry.Ratings.Clone()
		return nil
	})
	if err != nil {
		return domain.CatalogEntry{}, err
	}
	return snapshot, nil
}

// CastVote records caller's score against the catalog entry stored under id.
// Scores outside [RatingMin, RatingMax] and repeat votes from the same
// principal are rejected with the aggregate left untouched.
func (b *Board) CastVote(ctx context.Context, caller domain.Principal, id domain.ID, score int) error {
	if err := validate.Range("rating", score, RatingMin, RatingMax); err != nil {
		return err
	}
	err := b.shelf.update(id, func(rec domain.Record) error {
		entry, ok := rec.(*domain.CatalogEntry)
		if !ok || entry.Ratings == nil {
			return ErrNotFound
		}
		return castVote(entry.Ratings, caller, score)
	})
	if err != nil {
		return err
	}
	b.emit(ctx, domain.VoteCast{RecordID: id, Score: uint64(score), Principal: caller})
	return nil
}

// RatingSummary is the read-side view of an entry's aggregate.
type RatingSummary struct {
	Average uint64
	Votes   uint64
}

// AverageRating returns the current average and vote count for the entry
// stored under id. An entry nobody voted on yet reports zero for both; the
// count lets callers tell "no votes" apart from "average 0".
func (b *Board) AverageRating(id domain.ID) (RatingSummary, error) {
	var summary RatingSummary
	err := b.shelf.update(id, func(rec domain.Record) error {
		entry, ok := rec.(*domain.CatalogEntry)
		if !ok {
			return ErrNotFound
		}
		summary.Average = currentAverage(entry.Ratings)
		if entry.Ratings != nil {
			summary.Votes = entry.Ratings.VoteCount
		}
		return nil
	})
	if err != nil {
		return RatingSummary{}, err
	}
	return summary, nil
}

// TransferAdmin moves the admin capability from caller to newHolder. Only the
// current holder may transfer; afterwards the previous holder can no longer
// exercise it.
func (b *Board) TransferAdmin(ctx context.Context, caller, newHolder domain.Principal) error {
	if err := b.admin.transfer(caller, newHolder); err != nil {
		return err
	}
	b.emit(ctx, domain.AdminTransferred{Old: caller, New: newHolder})
	return nil
}

func (b *Board) emit(ctx context.Context, ev domain.Event) {
	if err := b.sink.Publish(ctx, ev); err != nil {
		b.logger.Printf("board: publish %s event: %v", ev.EventKind(), err)
	}
}
