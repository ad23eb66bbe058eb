package events

import (
	"context"
	"fmt"
	"sync"
)

const memoryBuffer = 1024

// MemoryTransport delivers messages in-process. Each subject has at most one
// subscriber; messages published before it subscribes are buffered.
type MemoryTransport struct {
	mu            sync.Mutex
	channels      map[string]chan []byte
	subscriptions map[string]context.CancelFunc
	wg            sync.WaitGroup
	closed        bool
}

// NewMemoryTransport creates an in-memory transport
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{
		channels:      make(map[string]chan []byte),
		subscriptions: make(map[string]context.CancelFunc),
	}
}

func (q *MemoryTransport) channel(subject string) (chan []byte, error) {
	if q.closed {
		return nil, fmt.Errorf("memory transport closed")
	}
	ch, ok := q.channels[subject]
	if !ok {
		ch = make(chan []byte, memoryBuffer)
		q.channels[subject] = ch
	}
	return ch, nil
}

// Publish buffers a copy of data for the subject's subscriber
func (q *MemoryTransport) Publish(ctx context.Context, subject string, data []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	ch, err := q.channel(subject)
	if err != nil {
		return err
	}

	msg := make([]byte, len(data))
	copy(msg, data)

	select {
	case ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("channel full for subject: %s", subject)
	}
}

// Subscribe starts delivering the subject's messages to handler
func (q *MemoryTransport) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}
	ch, err := q.channel(subject)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	q.subscriptions[subject] = cancel

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case data := <-ch:
				// no redelivery in memory
				_ = handler(data)
			}
		}
	}()
	return nil
}

// Unsubscribe stops delivery for a subject
func (q *MemoryTransport) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	cancel, exists := q.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}
	cancel()
	delete(q.subscriptions, subject)
	return nil
}

// Close stops all subscribers and waits for them to return
func (q *MemoryTransport) Close() error {
	q.mu.Lock()
	for subject, cancel := range q.subscriptions {
		cancel()
		delete(q.subscriptions, subject)
	}
	q.closed = true
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}

// Pending returns the number of undelivered messages for a subject
func (q *MemoryTransport) Pending(subject string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.channels[subject])
}
