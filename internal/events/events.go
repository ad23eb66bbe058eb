// Package events publishes lifecycle notifications (finished exports and
// analyses) to a message bus so other processes can react to them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/soltixdb/datahub/internal/logging"
)

// Type names an event kind. It is also the subject suffix.
type Type string

const (
	ExportCompleted   Type = "export.completed"
	ExportFailed      Type = "export.failed"
	AnalysisCompleted Type = "analysis.completed"
)

// DefaultPrefix is prepended to every subject
const DefaultPrefix = "datahub"

// Event is the JSON envelope sent over the bus
type Event struct {
	ID        string          `json:"id"`
	Type      Type            `json:"type"`
	Time      time.Time       `json:"time"`
	DatasetID string          `json:"dataset_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// New builds an event with a fresh id and data marshalled as JSON
func New(t Type, datasetID string, data any) (Event, error) {
	e := Event{
		ID:        uuid.NewString(),
		Type:      t,
		Time:      time.Now().UTC(),
		DatasetID: datasetID,
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return Event{}, fmt.Errorf("failed to marshal %s event: %w", t, err)
		}
		e.Data = raw
	}
	return e, nil
}

// Decode unmarshals the event data into v
func (e Event) Decode(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("%s event has no data", e.Type)
	}
	return json.Unmarshal(e.Data, v)
}

// Handler processes a received event. A returned error asks the transport
// to redeliver when it supports redelivery.
type Handler func(Event) error

// Bus publishes typed events over a Transport
type Bus struct {
	transport Transport
	prefix    string
	logger    *logging.Logger
}

// NewBus wraps a transport
func NewBus(t Transport, prefix string, logger *logging.Logger) *Bus {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if logger == nil {
		logger = logging.Global()
	}
	return &Bus{transport: t, prefix: prefix, logger: logger}
}

// Subject returns the transport subject of an event type
func (b *Bus) Subject(t Type) string {
	return b.prefix + "." + string(t)
}

// Publish sends an event
func (b *Bus) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.transport.Publish(ctx, b.Subject(e.Type), data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", e.Type, err)
	}
	return nil
}

// Emit builds and publishes an event, logging instead of returning failures.
// Callers use it on paths where a missing notification must not fail the
// operation that triggered it.
func (b *Bus) Emit(ctx context.Context, t Type, datasetID string, data any) {
	e, err := New(t, datasetID, data)
	if err == nil {
		err = b.Publish(ctx, e)
	}
	if err != nil {
		b.logger.Warn("Event not published", "type", string(t), "dataset_id", datasetID, "error", err)
		return
	}
	b.logger.Debug("Event published", "type", string(t), "id", e.ID)
}

// Subscribe registers a handler for one event type
func (b *Bus) Subscribe(t Type, h Handler) error {
	return b.transport.Subscribe(b.Subject(t), func(data []byte) error {
		var e Event
		if err := json.Unmarshal(data, &e); err != nil {
			// malformed messages are dropped, redelivery would not fix them
			b.logger.Warn("Dropping malformed event", "subject", b.Subject(t), "error", err)
			return nil
		}
		return h(e)
	})
}

// Unsubscribe removes the handler of an event type
func (b *Bus) Unsubscribe(t Type) error {
	return b.transport.Unsubscribe(b.Subject(t))
}

// Close closes the transport
func (b *Bus) Close() error {
	return b.transport.Close()
}
