package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStreamPublisher mirrors every published event onto a Redis stream so
// external consumers (notification relays, audit tooling) can tail changes
// without polling the database.
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
	logger *zap.Logger
}

// NewRedisStreamPublisher builds the publisher.
func NewRedisStreamPublisher(client *redis.Client, stream string, maxLen int64, logger *zap.Logger) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, stream: stream, maxLen: maxLen, logger: logger}
}

// Handle appends the event to the stream. Publish failures are logged and
// swallowed; the stream is a mirror, not the system of record.
func (p *RedisStreamPublisher) Handle(ctx context.Context, event Event) error {
	if p.client == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("event marshal failed", zap.String("event_id", event.ID), zap.Error(err))
		return nil
	}
	args := &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"type":    string(event.Type),
			"payload": payload,
		},
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		p.logger.Warn("event stream publish failed", zap.String("event_id", event.ID), zap.Error(err))
	}
	return nil
}

// RegisterAll subscribes the publisher to every event type the services emit.
func (p *RedisStreamPublisher) RegisterAll(dispatcher Dispatcher) {
	for _, eventType := range []EventType{
		EventTicketCreated,
		EventTicketLogApplied,
		EventTicketEscalated,
		EventTicketClosed,
		EventRequestCreated,
		EventRequestStatusChanged,
	} {
		dispatcher.Subscribe(eventType, p.Handle)
	}
}
