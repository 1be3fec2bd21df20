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

	"github.com/allisson/parceltrack/internal/tracking/domain"
)

var historyColumns = []string{"id", "tracking_code", "status", "success", "details", "created_at"}

func TestPostgreSQLHistoryRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLHistoryRepository(db)
	entry := &domain.HistoryEntry{
		ID:           uuid.Must(uuid.NewV7()),
		TrackingCode: "AA123456789BR",
		Status:       "Objeto em trânsito",
		Success:      true,
		CreatedAt:    time.Now().UTC(),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tracking_history")).
		WithArgs(entry.ID, entry.TrackingCode, entry.Status, true, nil, entry.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Create(context.Background(), entry)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLHistoryRepository_Create_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLHistoryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tracking_history")).
		WillReturnError(errors.New("relation does not exist"))

	err = repo.Create(context.Background(), &domain.HistoryEntry{ID: uuid.Must(uuid.NewV7())})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create tracking history entry")
}

func TestPostgreSQLHistoryRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLHistoryRepository(db)
	id1 := uuid.Must(uuid.NewV7())
	id2 := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	rows := sqlmock.NewRows(historyColumns).
		AddRow(id2.String(), "BB000000002BR", "Erro: carrier unavailable", false, "carrier unavailable", now).
		AddRow(id1.String(), "AA000000001BR", "Objeto postado", true, nil, now.Add(-time.Minute))

	mock.ExpectQuery(regexp.QuoteMeta("FROM tracking_history ORDER BY created_at DESC LIMIT $1")).
		WithArgs(10).
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, id2, entries[0].ID)
	assert.False(t, entries[0].Success)
	assert.Equal(t, "carrier unavailable", entries[0].Details)
	assert.Equal(t, id1, entries[1].ID)
	assert.Empty(t, entries[1].Details)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLHistoryRepository_List_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	mock.ExpectQuery(regexp.QuoteMeta("FROM tracking_history")).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows(historyColumns))

	entries, err := NewPostgreSQLHistoryRepository(db).List(context.Background(), 50)

	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestPostgreSQLHistoryRepository_DeleteAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tracking_history")).
		WillReturnResult(sqlmock.NewResult(0, 4))

	count, err := NewPostgreSQLHistoryRepository(db).DeleteAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLHistoryRepository_DeleteOlderThan(t *testing.T) {
	cutoff := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("dry run counts", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tracking_history WHERE created_at < $1")).
			WithArgs(cutoff).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

		count, err := NewPostgreSQLHistoryRepository(db).DeleteOlderThan(context.Background(), cutoff, true)

		require.NoError(t, err)
		assert.Equal(t, int64(12), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tracking_history WHERE created_at < $1")).
			WithArgs(cutoff).
			WillReturnResult(sqlmock.NewResult(0, 3))

		count, err := NewPostgreSQLHistoryRepository(db).DeleteOlderThan(context.Background(), cutoff, false)

		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
