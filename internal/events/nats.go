package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSTransport publishes to a JetStream stream so events survive subscriber
// restarts
type NATSTransport struct {
	conn          *nats.Conn
	js            nats.JetStreamContext
	stream        string
	ownsConn      bool
	subscriptions map[string]*nats.Subscription
	mu            sync.Mutex
}

// NewNATSTransport connects to url and uses stream for all subjects
func NewNATSTransport(url, stream string) (*NATSTransport, error) {
	conn, err := nats.Connect(url, nats.Name("datahub"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	t, err := NewNATSTransportWithConn(conn, stream)
	if err != nil {
		conn.Close()
		return nil, err
	}
	t.ownsConn = true
	return t, nil
}

// NewNATSTransportWithConn uses an existing connection. Close leaves it open.
func NewNATSTransportWithConn(conn *nats.Conn, stream string) (*NATSTransport, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return &NATSTransport{
		conn:          conn,
		js:            js,
		stream:        stream,
		subscriptions: make(map[string]*nats.Subscription),
	}, nil
}

// ensureStream creates the stream or adds subject to it
func (q *NATSTransport) ensureStream(subject string) error {
	info, err := q.js.StreamInfo(q.stream)
	if err != nil {
		_, err = q.js.AddStream(&nats.StreamConfig{
			Name:     q.stream,
			Subjects: []string{subject},
			Storage:  nats.FileStorage,
			MaxAge:   24 * time.Hour,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream %s: %w", q.stream, err)
		}
		return nil
	}

	for _, s := range info.Config.Subjects {
		if s == subject {
			return nil
		}
	}
	cfg := info.Config
	cfg.Subjects = append(cfg.Subjects, subject)
	if _, err := q.js.UpdateStream(&cfg); err != nil {
		return fmt.Errorf("failed to add %s to stream %s: %w", subject, q.stream, err)
	}
	return nil
}

// Publish waits for the JetStream acknowledgement
func (q *NATSTransport) Publish(ctx context.Context, subject string, data []byte) error {
	q.mu.Lock()
	err := q.ensureStream(subject)
	q.mu.Unlock()
	if err != nil {
		return err
	}

	if _, err := q.js.Publish(subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}
	return nil
}

// Subscribe attaches a durable consumer with manual acknowledgement. A handler
// error naks the message for redelivery, up to three attempts.
func (q *NATSTransport) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}
	if err := q.ensureStream(subject); err != nil {
		return err
	}

	sub, err := q.js.Subscribe(subject, func(msg *nats.Msg) {
		if err := handler(msg.Data); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("consumer-"+sanitizeName(subject)),
		nats.ManualAck(),
		nats.MaxAckPending(100),
		nats.AckWait(30*time.Second),
		nats.MaxDeliver(3),
		nats.DeliverNew(),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	q.subscriptions[subject] = sub
	return nil
}

// Unsubscribe removes the subscription of a subject
func (q *NATSTransport) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	sub, exists := q.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}
	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe from subject %s: %w", subject, err)
	}
	delete(q.subscriptions, subject)
	return nil
}

// Close drops all subscriptions and closes the connection it opened
func (q *NATSTransport) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for subject, sub := range q.subscriptions {
		_ = sub.Unsubscribe()
		delete(q.subscriptions, subject)
	}
	if q.ownsConn {
		q.conn.Close()
	}
	return nil
}
