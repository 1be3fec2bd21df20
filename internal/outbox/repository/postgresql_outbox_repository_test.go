package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/parceltrack/internal/outbox/domain"
)

var outboxColumns = []string{
	"id", "event_type", "payload", "status", "retries", "last_error", "processed_at", "created_at", "updated_at",
}

func newPendingEvent() *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: domain.EventTypeTrackingStatusCritical,
		Payload:   `{"order_id":"1001"}`,
		Status:    domain.OutboxEventStatusPending,
	}
}

func TestPostgreSQLOutboxEventRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLOutboxEventRepository(db)
	event := newPendingEvent()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WithArgs(event.ID, event.EventType, event.Payload, "pending", 0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Create(context.Background(), event)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLOutboxEventRepository_Create_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLOutboxEventRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WillReturnError(errors.New("connection reset"))

	err = repo.Create(context.Background(), newPendingEvent())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create outbox event")
}

func TestPostgreSQLOutboxEventRepository_GetPendingEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLOutboxEventRepository(db)
	id := uuid.Must(uuid.NewV7())
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(outboxColumns).
		AddRow(id.String(), domain.EventTypeTrackingStatusChanged, `{}`, "pending", 2, "timeout", nil, createdAt, createdAt)
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE SKIP LOCKED")).
		WithArgs("pending", 10).
		WillReturnRows(rows)

	events, err := repo.GetPendingEvents(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, id, events[0].ID)
	assert.Equal(t, domain.OutboxEventStatusPending, events[0].Status)
	assert.Equal(t, 2, events[0].Retries)
	require.NotNil(t, events[0].LastError)
	assert.Equal(t, "timeout", *events[0].LastError)
	assert.Nil(t, events[0].ProcessedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLOutboxEventRepository_GetPendingEvents_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLOutboxEventRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM outbox_events")).
		WillReturnRows(sqlmock.NewRows(outboxColumns))

	events, err := repo.GetPendingEvents(context.Background(), 10)

	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestPostgreSQLOutboxEventRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLOutboxEventRepository(db)
	event := newPendingEvent()
	event.Status = domain.OutboxEventStatusFailed
	event.Retries = 3

	mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
		WithArgs("failed", 3, sqlmock.AnyArg(), sqlmock.AnyArg(), event.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Update(context.Background(), event)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
