package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisSink delivers events over Redis pub/sub. Consumers subscribe to
// the topic name as the channel; at-most-once, no ordering assumed.
type RedisSink struct {
	rdb *redis.Client
}

func NewRedisSink(rdb *redis.Client) *RedisSink {
	return &RedisSink{rdb: rdb}
}

func (s *RedisSink) Send(topic string, payload map[string]any) error {
	body := map[string]any{
		"event_id":    uuid.NewString(),
		"topic":       topic,
		"occurred_at": time.Now().UTC().Format(time.RFC3339),
		"data":        payload,
	}

	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return s.rdb.Publish(ctx, topic, b).Err()
}

var _ Sink = (*RedisSink)(nil)
