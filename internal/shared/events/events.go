// Package events defines the outbound port used to announce domain events.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// Publisher delivers domain events to interested parties. Implementations must not block
// the caller for long; delivery failures are reported but never roll back state.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, events ...Event) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, events ...Event) error {
	return f(ctx, events...)
}

// Discard drops every event.
var Discard Publisher = PublisherFunc(func(context.Context, ...Event) error { return nil })
