package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/wealthpath/notifications/internal/model"
)

// NotificationMessage is the body published for each smart-send notification.
// Consumers own the push transport.
type NotificationMessage struct {
	ID               uuid.UUID              `json:"id"`
	UserID           uuid.UUID              `json:"userId"`
	NotificationType model.NotificationType `json:"notificationType"`
	Title            string                 `json:"title"`
	Body             string                 `json:"body"`
	Data             model.NotificationData `json:"data,omitempty"`
	Timestamp        time.Time              `json:"timestamp"`
}

func NewNotificationMessage(n *model.QueuedNotification) *NotificationMessage {
	id := n.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &NotificationMessage{
		ID:               id,
		UserID:           n.UserID,
		NotificationType: n.NotificationType,
		Title:            n.Title,
		Body:             n.Body,
		Data:             n.Data,
		Timestamp:        time.Now(),
	}
}

func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
