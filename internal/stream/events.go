package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/encoding/json"
)

// streamMaxLen bounds per-room history; trimming is approximate so Redis can
// batch it.
const streamMaxLen = 10000

// Event is the frame appended to a room's stream. Consumers switch on Type
// before decoding the payload.
type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// StreamKey names the Redis stream that carries a room's events.
func StreamKey(code string) string {
	return fmt.Sprintf("debate:%s:events", code)
}

// Publisher appends room events to per-room Redis streams for out-of-process
// consumers such as moderation and analytics. A Publisher built before
// InitRedis publishes nothing.
type Publisher struct {
	rdb *redis.Client
	ctx context.Context
	log zerolog.Logger
}

// NewPublisher builds a publisher on the shared client.
func NewPublisher() *Publisher {
	return &Publisher{
		rdb: GetRedisClient(),
		ctx: GetContext(),
		log: log.With().Str("component", "stream").Logger(),
	}
}

// Publish appends one event to the room's stream. Errors are logged and
// swallowed; the live path must not depend on stream health.
func (p *Publisher) Publish(code, eventType string, payload interface{}) {
	if p == nil || p.rdb == nil {
		return
	}

	data, err := json.Marshal(Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		p.log.Error().Str("event", eventType).Err(err).Msg("marshal stream event")
		return
	}

	if err := p.rdb.XAdd(p.ctx, &redis.XAddArgs{
		Stream: StreamKey(code),
		Values: map[string]interface{}{
			"data": string(data),
		},
		MaxLen: streamMaxLen,
		Approx: true,
	}).Err(); err != nil {
		p.log.Warn().Str("stream", StreamKey(code)).Err(err).Msg("stream publish failed")
	}
}

// DecodeEvent reads one stream entry's data field back into an Event.
func DecodeEvent(data string) (Event, error) {
	var ev Event
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}
