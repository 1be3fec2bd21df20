package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/allisson/parceltrack/internal/database"
	apperrors "github.com/allisson/parceltrack/internal/errors"
	"github.com/allisson/parceltrack/internal/tracking/domain"
)

// MySQLHistoryRepository implements tracking history persistence for MySQL.
// Ids are stored as BINARY(16).
type MySQLHistoryRepository struct {
	db *sql.DB
}

// NewMySQLHistoryRepository creates a new MySQL history repository.
func NewMySQLHistoryRepository(db *sql.DB) *MySQLHistoryRepository {
	return &MySQLHistoryRepository{db: db}
}

func (m *MySQLHistoryRepository) Create(ctx context.Context, entry *domain.HistoryEntry) error {
	querier := database.GetTx(ctx, m.db)

	id, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal tracking history id")
	}

	query := `INSERT INTO tracking_history (id, tracking_code, status, success, details, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		entry.TrackingCode,
		entry.Status,
		entry.Success,
		nullString(entry.Details),
		entry.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create tracking history entry")
	}

	return nil
}

func (m *MySQLHistoryRepository) List(ctx context.Context, limit int) ([]*domain.HistoryEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, tracking_code, status, success, details, created_at
			  FROM tracking_history
			  ORDER BY created_at DESC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tracking history")
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*domain.HistoryEntry, 0)
	for rows.Next() {
		var entry domain.HistoryEntry
		var idBinary []byte
		var details sql.NullString

		err := rows.Scan(
			&idBinary,
			&entry.TrackingCode,
			&entry.Status,
			&entry.Success,
			&details,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan tracking history entry")
		}

		if err := entry.ID.UnmarshalBinary(idBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal tracking history id")
		}
		entry.Details = details.String

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate tracking history")
	}

	return entries, nil
}

func (m *MySQLHistoryRepository) DeleteAll(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM tracking_history`)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to clear tracking history")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}

	return count, nil
}

func (m *MySQLHistoryRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	if dryRun {
		var count int64
		err := querier.QueryRowContext(
			ctx,
			`SELECT COUNT(*) FROM tracking_history WHERE created_at < ?`,
			olderThan,
		).Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count tracking history")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM tracking_history WHERE created_at < ?`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete tracking history")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}

	return count, nil
}
