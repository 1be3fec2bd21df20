package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/allisson/parceltrack/internal/errors"
	"github.com/allisson/parceltrack/internal/outbox/domain"
)

// webhookPayload is the JSON body posted to the notification webhook.
type webhookPayload struct {
	EventID      string                      `json:"event_id"`
	EventType    string                      `json:"event_type"`
	Notification domain.TrackingNotification `json:"notification"`
}

// NotificationProcessor delivers tracking notifications. Every notification is logged;
// when a webhook URL is configured it is also posted there as JSON.
type NotificationProcessor struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewNotificationProcessor creates a NotificationProcessor. An empty webhookURL disables posting.
func NewNotificationProcessor(webhookURL string, timeout time.Duration, logger *slog.Logger) *NotificationProcessor {
	return &NotificationProcessor{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Process implements EventProcessor. Unknown event types are acknowledged and ignored.
func (p *NotificationProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	switch event.EventType {
	case domain.EventTypeTrackingStatusChanged, domain.EventTypeTrackingStatusCritical:
	default:
		p.logger.Warn("ignoring unknown outbox event type",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.EventType),
		)
		return nil
	}

	var notification domain.TrackingNotification
	if err := json.Unmarshal([]byte(event.Payload), &notification); err != nil {
		return apperrors.Wrap(err, "failed to decode tracking notification")
	}

	attrs := []any{
		slog.String("event_id", event.ID.String()),
		slog.String("order_id", notification.OrderID),
		slog.String("tracking_code", notification.TrackingCode),
		slog.String("customer", notification.Customer),
		slog.String("previous_status", notification.PreviousStatus),
		slog.String("new_status", notification.NewStatus),
	}
	if notification.IsCritical {
		attrs = append(attrs, slog.String("matched_keyword", notification.MatchedKeyword))
		p.logger.Warn("critical tracking status", attrs...)
	} else {
		p.logger.Info("tracking status changed", attrs...)
	}

	if p.webhookURL == "" {
		return nil
	}

	return p.post(ctx, webhookPayload{
		EventID:      event.ID.String(),
		EventType:    event.EventType,
		Notification: notification,
	})
}

func (p *NotificationProcessor) post(ctx context.Context, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.webhookURL, bytes.NewReader(body))
	if err != nil {
		return apperrors.Wrap(err, "failed to build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(err, "failed to post webhook")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}

	return nil
}
