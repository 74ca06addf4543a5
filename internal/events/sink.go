// Package events carries distribution lifecycle events to observers. Sinks
// are a pure side-channel: emission failures are logged and swallowed, never
// surfaced into the crank's control flow or return contract.
package events

import (
	"context"
	"encoding/json"
	"log"

	"star-fee-distributor/internal/domain"
)

// Sink receives distribution events.
type Sink interface {
	Emit(ctx context.Context, e domain.Event)
}

// Envelope is the serialized form events travel in.
type Envelope struct {
	Type      string          `json:"type"`
	Vault     string          `json:"vault"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Wrap serializes an event into an envelope.
func Wrap(e domain.Event) (Envelope, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Type:      e.EventType(),
		Vault:     e.EventVault(),
		Timestamp: e.EventTimestamp(),
		Data:      data,
	}, nil
}

// LogSink writes events to a logger.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink creates a sink over a logger.
func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Emit logs the event as a single line.
func (s *LogSink) Emit(_ context.Context, e domain.Event) {
	env, err := Wrap(e)
	if err != nil {
		s.logger.Printf("drop event %s: %v", e.EventType(), err)
		return
	}
	s.logger.Printf("%s vault=%s %s", env.Type, env.Vault, string(env.Data))
}

// MultiSink fans an event out to several sinks.
type MultiSink []Sink

// Emit delivers the event to every sink.
func (m MultiSink) Emit(ctx context.Context, e domain.Event) {
	for _, s := range m {
		s.Emit(ctx, e)
	}
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Emit(context.Context, domain.Event) {}
