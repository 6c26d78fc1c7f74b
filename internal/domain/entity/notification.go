// internal/domain/entity/notification.go
package entity

import (
	"time"
)

// NotificationType defines the kind of outbound message
type NotificationType string

const (
	BookingConfirmation NotificationType = "booking_confirmation"
	DriverAssignment    NotificationType = "driver_assignment"
)

// Outbound message status
const (
	MessageQueued  = "QUEUED"
	MessageSent    = "SENT"
	MessageFailed  = "FAILED"
	MessageDropped = "DROPPED"
)

// OutboundMessage is a notification waiting in the outbox
type OutboundMessage struct {
	ID            string                 `json:"id" bson:"_id,omitempty"`
	Type          NotificationType       `json:"type" bson:"type"`
	TransactionID string                 `json:"transactionID" bson:"transactionID"`
	Phone         string                 `json:"phone" bson:"phone"`
	Text          string                 `json:"text" bson:"text"`
	ScheduleAt    time.Time              `json:"scheduleAt" bson:"scheduleAt"`
	CreatedAt     time.Time              `json:"createdAt" bson:"createdAt"`
	SentAt        time.Time              `json:"sentAt,omitempty" bson:"sentAt,omitempty"`
	Status        string                 `json:"status" bson:"status"`
	Metadata      map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
}
