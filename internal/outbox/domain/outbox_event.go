// Package domain defines outbox events and the tracking notifications they carry.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEventStatus represents the delivery state of an outbox event.
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// Tracking event types.
const (
	EventTypeTrackingStatusChanged  = "tracking.status_changed"
	EventTypeTrackingStatusCritical = "tracking.status_critical"
)

// OutboxEvent is written in the same transaction as the change it describes and
// delivered later by the outbox worker.
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TrackingNotification is the payload of the tracking event types.
type TrackingNotification struct {
	OrderID        string    `json:"order_id"`
	TrackingCode   string    `json:"tracking_code"`
	Customer       string    `json:"customer"`
	Phone          string    `json:"phone"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	MatchedKeyword string    `json:"matched_keyword,omitempty"`
	IsCritical     bool      `json:"is_critical"`
	IsDelivered    bool      `json:"is_delivered"`
	Location       string    `json:"location"`
	Timestamp      time.Time `json:"timestamp"`
}

// TrackingEventType returns the event type for a notification.
func TrackingEventType(critical bool) string {
	if critical {
		return EventTypeTrackingStatusCritical
	}
	return EventTypeTrackingStatusChanged
}
