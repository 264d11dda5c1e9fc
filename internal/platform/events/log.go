// Package events holds the outbound adapters for domain events.
package events

import (
	"context"
	"log/slog"

	"github.com/Apurer/pet-adoption-api/internal/shared/events"
)

var _ events.Publisher = (*LogPublisher)(nil)

// LogPublisher records events in the structured log. It is the fallback when no broker is
// configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, evts ...events.Event) error {
	for _, evt := range evts {
		p.logger.LogAttrs(ctx, slog.LevelInfo, "domain event",
			slog.String("event", evt.EventName()),
			slog.Time("occurred_at", evt.OccurredAt()),
			slog.Any("payload", evt),
		)
	}
	return nil
}

// Fanout delivers to every publisher and returns the first error.
func Fanout(publishers ...events.Publisher) events.Publisher {
	return events.PublisherFunc(func(ctx context.Context, evts ...events.Event) error {
		var first error
		for _, p := range publishers {
			if p == nil {
				continue
			}
			if err := p.Publish(ctx, evts...); err != nil && first == nil {
				first = err
			}
		}
		return first
	})
}
