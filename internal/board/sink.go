package board

import (
	"context"
	"errors"

	"github.com/perch-labs/noticeboard/internal/domain"
)

// EventSink receives structured events after an operation commits. Sinks are
// fire-and-forget: a failing sink never affects the stored state, the board
// only logs the failure.
type EventSink interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// NopSink discards all events.
type NopSink struct{}

// Publish implements EventSink.
func (NopSink) Publish(context.Context, domain.Event) error { return nil }

type fanOut []EventSink

// FanOut returns a sink that publishes each event to every given sink.
// Individual failures do not stop delivery to the remaining sinks.
func FanOut(sinks ...EventSink) EventSink { return fanOut(sinks) }

// Publish implements EventSink.
func (f fanOut) Publish(ctx context.Context, ev domain.Event) error {
	var errs []error
	for _, s := range f {
		if err := s.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
