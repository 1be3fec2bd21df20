// Package domain defines the delivery tracking entities shared by the carrier client,
// the reconciler and the polling scheduler.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TrackingEvent is one carrier-reported event for a parcel.
// Date is formatted dd/mm/yyyy, Time HH:MM and Location "city/state".
type TrackingEvent struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Location  string `json:"location"`
	Status    string `json:"status"`
	SubStatus string `json:"sub_status,omitempty"`
}

// TrackingInfo is the result of a single lookup. Events are ordered most recent first.
type TrackingInfo struct {
	Code      string          `json:"code"`
	Events    []TrackingEvent `json:"events"`
	Delivered bool            `json:"delivered"`
	Service   string          `json:"service,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// LatestStatus returns the status of the most recent event, or "" when there are none.
func (i *TrackingInfo) LatestStatus() string {
	if len(i.Events) == 0 {
		return ""
	}
	return i.Events[0].Status
}

// TrackedOrderRef is the reconciler input: an order and the last status stored for it.
type TrackedOrderRef struct {
	OrderID         string
	TrackingCode    string
	LastKnownStatus string
}

// StatusChangeResult describes a detected transition for one order.
// It only exists when NewStatus differs from PreviousStatus.
type StatusChangeResult struct {
	OrderID        string    `json:"order_id"`
	TrackingCode   string    `json:"tracking_code"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	IsCritical     bool      `json:"is_critical"`
	IsDelivered    bool      `json:"is_delivered"`
	Location       string    `json:"location"`
	Timestamp      time.Time `json:"timestamp"`
}

// APIStatus reports carrier reachability.
type APIStatus struct {
	Status         string    `json:"status"`
	Message        string    `json:"message,omitempty"`
	ResponseTimeMS int64     `json:"response_time_ms"`
	CheckedAt      time.Time `json:"checked_at"`
}

// Carrier API states.
const (
	APIStatusOnline  = "online"
	APIStatusOffline = "offline"
)

// HistoryEntry records one lookup performed through the API or the CLI.
type HistoryEntry struct {
	ID           uuid.UUID `json:"id"`
	TrackingCode string    `json:"tracking_code"`
	Status       string    `json:"status"`
	Success      bool      `json:"success"`
	Details      string    `json:"details,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NoEventsStatus is stored in the history when a lookup returned no events.
const NoEventsStatus = "Sem eventos"
