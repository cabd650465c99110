package library

import (
	"context"
	"sync"
	"time"
)

// Notification is a human-readable message about one successful mutation.
type Notification struct {
	Action     string    `json:"action"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// notificationQueue is a bounded FIFO ring. A full queue drops its oldest entry.
type notificationQueue struct {
	mu      sync.Mutex
	items   []Notification
	head    int
	size    int
	dropped int
}

func newNotificationQueue(capacity int) *notificationQueue {
	return &notificationQueue{items: make([]Notification, capacity)}
}

// push appends n and returns the queue length afterwards.
func (q *notificationQueue) push(n Notification) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == len(q.items) {
		q.head = (q.head + 1) % len(q.items)
		q.size--
		q.dropped++
	}

	q.items[(q.head+q.size)%len(q.items)] = n
	q.size++

	return q.size
}

func (q *notificationQueue) drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	drained := make([]Notification, 0, q.size)
	for i := range q.size {
		idx := (q.head + i) % len(q.items)
		drained = append(drained, q.items[idx])
		q.items[idx] = Notification{}
	}

	q.head, q.size = 0, 0

	return drained
}

func (q *notificationQueue) droppedCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.dropped
}

// DrainNotifications returns all queued notifications, oldest first, and empties the queue.
func (l *Library) DrainNotifications() []Notification {
	drained := l.notifications.drain()
	l.recordPending(context.Background(), 0)

	return drained
}

// DroppedNotifications returns how many notifications were discarded because the queue was full.
func (l *Library) DroppedNotifications() int {
	return l.notifications.droppedCount()
}

func (l *Library) notify(ctx context.Context, action string, occurredAt time.Time, message string) {
	pending := l.notifications.push(Notification{
		Action:     action,
		Message:    message,
		OccurredAt: occurredAt,
	})

	l.recordPending(ctx, pending)
}
