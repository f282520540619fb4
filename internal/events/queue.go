package events

import (
	"sync"
	"time"
)

type message struct {
	Kind string
	Data []byte
	At   time.Time
}

// queue is a bounded FIFO. When full, the oldest message is dropped.
type queue struct {
	lock    sync.Mutex
	items   []*message
	limit   int
	dropped int
}

func newQueue(limit int) *queue {
	if limit < 1 {
		limit = 1
	}
	return &queue{limit: limit}
}

func (q *queue) Push(msg *message) {
	q.lock.Lock()
	defer q.lock.Unlock()

	if len(q.items) >= q.limit {
		q.items[0] = nil
		q.items = q.items[1:]
		q.dropped++
	}
	q.items = append(q.items, msg)
}

func (q *queue) Pop() *message {
	q.lock.Lock()
	defer q.lock.Unlock()

	if len(q.items) == 0 {
		return nil
	}
	msg := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return msg
}

func (q *queue) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return len(q.items)
}

func (q *queue) Dropped() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.dropped
}
