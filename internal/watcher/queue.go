package watcher

import (
	"context"
	"sync"
)

// eventQueue is an unbounded FIFO between the notification source and the
// single consumer. Push never blocks, so a long compile cannot make the source
// drop notifications.
type eventQueue struct {
	mutex  sync.Mutex
	items  []RawEvent
	notify chan struct{}
	closed bool
}

func newEventQueue() *eventQueue {
	return &eventQueue{notify: make(chan struct{}, 1)}
}

// Push appends ev. It reports false once the queue is closed.
func (q *eventQueue) Push(ev RawEvent) bool {
	q.mutex.Lock()
	if q.closed {
		q.mutex.Unlock()
		return false
	}
	q.items = append(q.items, ev)
	q.mutex.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// Pop blocks until an event is available, the queue is closed and drained,
// or ctx is done. Events pushed before Close are still returned.
func (q *eventQueue) Pop(ctx context.Context) (RawEvent, bool) {
	for {
		q.mutex.Lock()
		if len(q.items) > 0 {
			ev := q.items[0]
			q.items[0] = RawEvent{}
			q.items = q.items[1:]
			q.mutex.Unlock()
			return ev, true
		}
		if q.closed {
			q.mutex.Unlock()
			return RawEvent{}, false
		}
		q.mutex.Unlock()

		select {
		case <-ctx.Done():
			return RawEvent{}, false
		case <-q.notify:
		}
	}
}

// Len returns the number of queued events.
func (q *eventQueue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.items)
}

// Close rejects further pushes and wakes the consumer. Pending events stay
// queued until they are popped.
func (q *eventQueue) Close() {
	q.mutex.Lock()
	q.closed = true
	q.mutex.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}
