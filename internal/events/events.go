// Package events publishes application change notifications to Redis
// pub/sub. The channel is the event type, the payload its JSON encoding.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"jobtracker/tracker-service/internal/tracker"
)

// RedisPublisher implements tracker.Publisher.
type RedisPublisher struct {
	rdb redis.Cmdable
}

var _ tracker.Publisher = (*RedisPublisher)(nil)

// NewRedisPublisher returns a publisher on rdb.
func NewRedisPublisher(rdb redis.Cmdable) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish sends ev on the channel named after its type.
func (p *RedisPublisher) Publish(ctx context.Context, ev tracker.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.Type, err)
	}
	if err := p.rdb.Publish(ctx, ev.Type, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// Channels lists every channel the service publishes on.
var Channels = []string{
	tracker.EventJobCreated,
	tracker.EventJobUpdated,
	tracker.EventJobDeleted,
	tracker.EventStatusChanged,
}
