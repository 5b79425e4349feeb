package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/placement-backend/internal/models"
)

func testNotification(recipientID uuid.UUID, title string) *models.Notification {
	return &models.Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		Type:        models.NotificationSystem,
		Title:       title,
		Message:     "test message",
		Priority:    models.PriorityNormal,
	}
}

func TestHub_PublishToSubscriber(t *testing.T) {
	hub := NewNotificationHub(4)
	userID := uuid.New()

	sub := hub.Subscribe(userID)
	defer hub.Unsubscribe(sub)

	delivered := hub.Publish(testNotification(userID, "stage updated"))
	assert.Equal(t, 1, delivered)

	select {
	case n := <-sub.Ch:
		assert.Equal(t, "stage updated", n.Title)
	default:
		t.Fatal("expected a buffered notification")
	}
}

func TestHub_PublishOnlyToRecipient(t *testing.T) {
	hub := NewNotificationHub(4)
	alice := uuid.New()
	bob := uuid.New()

	aliceSub := hub.Subscribe(alice)
	bobSub := hub.Subscribe(bob)
	defer hub.Unsubscribe(aliceSub)
	defer hub.Unsubscribe(bobSub)

	delivered := hub.Publish(testNotification(alice, "for alice"))
	assert.Equal(t, 1, delivered)
	assert.Len(t, aliceSub.Ch, 1)
	assert.Len(t, bobSub.Ch, 0)
}

func TestHub_MultipleConnectionsPerUser(t *testing.T) {
	hub := NewNotificationHub(4)
	userID := uuid.New()

	first := hub.Subscribe(userID)
	second := hub.Subscribe(userID)
	defer hub.Unsubscribe(first)
	defer hub.Unsubscribe(second)

	delivered := hub.Publish(testNotification(userID, "fan out"))
	assert.Equal(t, 2, delivered)
	assert.Equal(t, 2, hub.SubscriberCount(userID))
}

func TestHub_PublishWithNoSubscribers(t *testing.T) {
	hub := NewNotificationHub(4)

	// Row persistence is the delivery guarantee; an empty hub is fine.
	delivered := hub.Publish(testNotification(uuid.New(), "nobody home"))
	assert.Equal(t, 0, delivered)
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewNotificationHub(2)
	userID := uuid.New()

	sub := hub.Subscribe(userID)
	defer hub.Unsubscribe(sub)

	assert.Equal(t, 1, hub.Publish(testNotification(userID, "one")))
	assert.Equal(t, 1, hub.Publish(testNotification(userID, "two")))

	// Buffer full: this must return immediately with zero deliveries.
	assert.Equal(t, 0, hub.Publish(testNotification(userID, "three")))
	assert.Len(t, sub.Ch, 2)
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := NewNotificationHub(4)
	userID := uuid.New()

	sub := hub.Subscribe(userID)
	hub.Unsubscribe(sub)

	_, open := <-sub.Ch
	require.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount(userID))

	// Double unsubscribe is a no-op.
	hub.Unsubscribe(sub)
}
