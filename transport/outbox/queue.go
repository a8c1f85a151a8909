// Package outbox provides the per-connection outbound message queue.
//
// A Queue is an unbounded multi-producer, single-consumer FIFO. Producers
// never block on Send; the single consumer waits on Ready and takes every
// pending frame with Drain. Closing the queue rejects further sends while
// frames already enqueued are still handed to the consumer.
package outbox

import (
	"errors"
	"sync"

	"github.com/eapache/queue"
	"github.com/wricardo/quackers-game/game/protocol"
)

var ErrQueueClosed = errors.New("outbound queue closed")

// Queue is an unbounded FIFO of frames waiting to be written to one client
type Queue struct {
	mu     sync.Mutex
	items  *queue.Queue
	closed bool
	ready  chan struct{}
}

// New creates an empty open queue
func New() *Queue {
	return &Queue{
		items: queue.New(),
		ready: make(chan struct{}, 1),
	}
}

// Send appends a frame. It fails only when the queue has been closed.
func (q *Queue) Send(f protocol.Frame) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	q.items.Add(f)
	q.notify()
	return nil
}

// Close marks the producer side as finished. Closing twice is a no-op.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.notify()
}

// Closed reports whether Close has been called
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the number of frames not yet drained
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}

// Ready is signalled whenever frames were added or the queue was closed
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Drain removes and returns all pending frames in enqueue order. open is
// false once the queue is closed; the returned frames must still be
// delivered in that case.
func (q *Queue) Drain() (frames []protocol.Frame, open bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.items.Length()
	if n > 0 {
		frames = make([]protocol.Frame, 0, n)
		for q.items.Length() > 0 {
			frames = append(frames, q.items.Remove().(protocol.Frame))
		}
	}

	return frames, !q.closed
}

// notify must be called with mu held
func (q *Queue) notify() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
