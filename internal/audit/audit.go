package audit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Status is the recorded outcome of an audited event.
type Status string

const (
	StatusSuccess Status = "Success"
	StatusFailure Status = "Failure"
)

// Event is one append-only audit record. Events are never updated or
// deleted once emitted.
type Event struct {
	Timestamp   time.Time `json:"timestamp" bson:"createdAt"`
	PrincipalID string    `json:"principal_id,omitempty" bson:"principalId,omitempty"`
	Action      string    `json:"action" bson:"action"`
	Resource    string    `json:"resource,omitempty" bson:"resource,omitempty"`
	Status      Status    `json:"status" bson:"status"`
	IP          string    `json:"ip,omitempty" bson:"ipAddress,omitempty"`
	Details     string    `json:"details,omitempty" bson:"details,omitempty"`
}

// Sink receives dispatched audit events. Implementations must tolerate
// concurrent calls and must not assume anyone handles their failures; the
// dispatcher fires and forgets.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops every event.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink writes events into a buffered channel, mainly for tests and
// custom fan-out.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{events: make(chan Event, buffer)}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON object per line. Marshal or write failures
// are dropped silently; audit is best effort by contract.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{writer: w}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

// RedisStreamSink appends events to a Redis stream via XADD, one entry per
// event with the JSON document under the "event" field.
type RedisStreamSink struct {
	client redis.Cmdable
	stream string
}

func NewRedisStreamSink(client redis.Cmdable, stream string) *RedisStreamSink {
	if stream == "" {
		stream = "nexus:audit"
	}
	return &RedisStreamSink{client: client, stream: stream}
}

func (s *RedisStreamSink) Emit(ctx context.Context, event Event) {
	if s == nil || s.client == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	_ = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{"event": string(data)},
	}).Err()
}
