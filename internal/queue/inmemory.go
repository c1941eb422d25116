package queue

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryQueue is a channel-backed Publisher and Consumer for local runs
// and tests. It is safe for concurrent use.
type InMemoryQueue struct {
	events  chan UploadEvent
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
	workers int
}

// NewInMemoryQueue creates an in-memory queue. bufferSize is how many
// events can be pending before Publish blocks; workers is how many
// handler goroutines Subscribe runs.
func NewInMemoryQueue(bufferSize, workers int) *InMemoryQueue {
	if workers <= 0 {
		workers = 1
	}
	return &InMemoryQueue{
		events:  make(chan UploadEvent, bufferSize),
		done:    make(chan struct{}),
		workers: workers,
	}
}

func (q *InMemoryQueue) Publish(ctx context.Context, evt UploadEvent) error {
	q.mu.Lock()
	closed := q.closed
	q.mu.Unlock()
	if closed {
		return fmt.Errorf("queue is closed")
	}

	select {
	case q.events <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return fmt.Errorf("queue is closed")
	}
}

// Subscribe runs handler goroutines until ctx is cancelled or the queue is
// closed, then waits for in-flight handlers to finish.
func (q *InMemoryQueue) Subscribe(ctx context.Context, handler Handler) error {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-q.done:
					return
				case evt := <-q.events:
					// Handler errors are the handler's concern; the
					// in-memory queue does not retry.
					_ = handler(ctx, evt)
				}
			}
		}()
	}

	q.wg.Wait()
	return nil
}

func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.done)
	}
	return nil
}
