package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Apurer/pet-adoption-api/internal/shared/events"
)

var _ events.Publisher = (*RedisStreamPublisher)(nil)

// RedisStreamPublisher appends domain events to a Redis stream so other services
// (notifications, search indexing) can consume them with consumer groups.
type RedisStreamPublisher struct {
	rdb    redis.Cmdable
	stream string
	maxLen int64
}

type RedisStreamOption func(*RedisStreamPublisher)

func WithStream(name string) RedisStreamOption {
	return func(p *RedisStreamPublisher) {
		if name = strings.TrimSpace(name); name != "" {
			p.stream = name
		}
	}
}

// WithMaxLen caps the stream length (approximate trimming).
func WithMaxLen(n int64) RedisStreamOption {
	return func(p *RedisStreamPublisher) { p.maxLen = n }
}

func NewRedisStreamPublisher(rdb redis.Cmdable, opts ...RedisStreamOption) *RedisStreamPublisher {
	p := &RedisStreamPublisher{rdb: rdb, stream: "adoption-events", maxLen: 10000}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish writes all events in one pipeline.
func (p *RedisStreamPublisher) Publish(ctx context.Context, evts ...events.Event) error {
	if p == nil || p.rdb == nil || len(evts) == 0 {
		return nil
	}
	pipe := p.rdb.Pipeline()
	for _, evt := range evts {
		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("encode %s: %w", evt.EventName(), err)
		}
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: p.stream,
			MaxLen: p.maxLen,
			Approx: true,
			Values: map[string]any{
				"event":       evt.EventName(),
				"occurred_at": evt.OccurredAt().UTC().Format(time.RFC3339Nano),
				"payload":     string(payload),
			},
		})
	}
	_, err := pipe.Exec(ctx)
	return err
}
