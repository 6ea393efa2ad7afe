// Package jobxmem is an in-process jobx.Queue used by tests and single-binary runs.
package jobxmem

import (
	"context"
	"sync"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/jobx"
)

// MemoryQueue implements jobx.Queue with the same in-flight semantics as Redis.
type MemoryQueue struct {
	mu       sync.Mutex
	ready    map[string][]string
	inflight map[string][]string
	notify   chan struct{}
	pushErr  error
}

// NewMemoryQueue creates an empty queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		ready:    make(map[string][]string),
		inflight: make(map[string][]string),
		notify:   make(chan struct{}),
	}
}

func inflightKey(queue, consumer string) string { return queue + "/" + consumer }

// FailPushes makes every Push return err until called again with nil.
func (q *MemoryQueue) FailPushes(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pushErr = err
}

// Push appends payload to queue.
func (q *MemoryQueue) Push(_ context.Context, queue, payload string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pushErr != nil {
		return q.pushErr
	}
	q.ready[queue] = append(q.ready[queue], payload)
	close(q.notify)
	q.notify = make(chan struct{})
	return nil
}

// Pop moves the oldest payload into consumer's in-flight list.
func (q *MemoryQueue) Pop(ctx context.Context, queue, consumer string, timeout time.Duration) (*jobx.Message, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		q.mu.Lock()
		if items := q.ready[queue]; len(items) > 0 {
			payload := items[0]
			q.ready[queue] = items[1:]
			key := inflightKey(queue, consumer)
			q.inflight[key] = append(q.inflight[key], payload)
			q.mu.Unlock()
			return &jobx.Message{Queue: queue, Payload: payload, Consumer: consumer, ReceivedAt: time.Now().UTC()}, nil
		}
		wait := q.notify
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, nil
		case <-deadline.C:
			return nil, nil
		case <-wait:
		}
	}
}

// Ack removes msg from its consumer's in-flight list.
func (q *MemoryQueue) Ack(_ context.Context, msg *jobx.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	key := inflightKey(msg.Queue, msg.Consumer)
	items := q.inflight[key]
	for i, p := range items {
		if p == msg.Payload {
			q.inflight[key] = append(items[:i:i], items[i+1:]...)
			break
		}
	}
	return nil
}

// Recover puts consumer's in-flight payloads back at the head of queue.
func (q *MemoryQueue) Recover(_ context.Context, queue, consumer string) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	key := inflightKey(queue, consumer)
	items := q.inflight[key]
	if len(items) == 0 {
		return 0, nil
	}
	q.ready[queue] = append(append([]string(nil), items...), q.ready[queue]...)
	delete(q.inflight, key)
	return len(items), nil
}

// Len returns the number of ready payloads on queue.
func (q *MemoryQueue) Len(_ context.Context, queue string) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.ready[queue])), nil
}

// InFlight returns the payloads currently held by consumer.
func (q *MemoryQueue) InFlight(queue, consumer string) []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.inflight[inflightKey(queue, consumer)]...)
}
