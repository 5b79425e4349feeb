package services

import (
	"sync"

	"github.com/google/uuid"

	"github.com/talentbridge/placement-backend/internal/models"
)

// defaultSubscriberBuffer is the per-connection channel depth. A subscriber
// that falls this far behind starts dropping events; the persisted rows
// remain the source of truth.
const defaultSubscriberBuffer = 16

// Subscriber is one live SSE connection for a user.
type Subscriber struct {
	UserID uuid.UUID
	Ch     chan *models.Notification
}

// NotificationHub fans persisted notifications out to live SSE connections.
// Publish never blocks: a full subscriber channel drops the event rather
// than stalling the request that produced it.
type NotificationHub struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[*Subscriber]struct{}
	buffer int
}

// NewNotificationHub creates an empty hub. buffer <= 0 falls back to the
// default channel depth.
func NewNotificationHub(buffer int) *NotificationHub {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &NotificationHub{
		subs:   make(map[uuid.UUID]map[*Subscriber]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a live connection for userID. The caller must
// Unsubscribe when the connection closes.
func (h *NotificationHub) Subscribe(userID uuid.UUID) *Subscriber {
	sub := &Subscriber{
		UserID: userID,
		Ch:     make(chan *models.Notification, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscriber]struct{})
	}
	h.subs[userID][sub] = struct{}{}

	return sub
}

// Unsubscribe removes a connection and closes its channel.
func (h *NotificationHub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[sub.UserID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}

	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.UserID)
	}
	close(sub.Ch)
}

// Publish delivers n to every live connection of its recipient.
// Slow subscribers are skipped, not waited on.
func (h *NotificationHub) Publish(n *models.Notification) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for sub := range h.subs[n.RecipientID] {
		select {
		case sub.Ch <- n:
			delivered++
		default:
			// subscriber buffer full, drop
		}
	}
	return delivered
}

// SubscriberCount returns the number of live connections for a user.
func (h *NotificationHub) SubscriberCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
