// Package repository implements tracking history persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/allisson/parceltrack/internal/database"
	apperrors "github.com/allisson/parceltrack/internal/errors"
	"github.com/allisson/parceltrack/internal/tracking/domain"
)

// PostgreSQLHistoryRepository implements tracking history persistence for PostgreSQL.
type PostgreSQLHistoryRepository struct {
	db *sql.DB
}

// NewPostgreSQLHistoryRepository creates a new PostgreSQL history repository.
func NewPostgreSQLHistoryRepository(db *sql.DB) *PostgreSQLHistoryRepository {
	return &PostgreSQLHistoryRepository{db: db}
}

// Create inserts a history entry. An empty Details is stored as NULL.
func (p *PostgreSQLHistoryRepository) Create(ctx context.Context, entry *domain.HistoryEntry) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO tracking_history (id, tracking_code, status, success, details, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		entry.ID,
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

// List returns up to limit entries, newest first.
func (p *PostgreSQLHistoryRepository) List(ctx context.Context, limit int) ([]*domain.HistoryEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, tracking_code, status, success, details, created_at
			  FROM tracking_history
			  ORDER BY created_at DESC
			  LIMIT $1`

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
		var details sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.TrackingCode,
			&entry.Status,
			&entry.Success,
			&details,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan tracking history entry")
		}
		entry.Details = details.String

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate tracking history")
	}

	return entries, nil
}

// DeleteAll removes every history entry and returns how many were deleted.
func (p *PostgreSQLHistoryRepository) DeleteAll(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, p.db)

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

// DeleteOlderThan removes entries created before olderThan. When dryRun is true it only
// counts them.
func (p *PostgreSQLHistoryRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	if dryRun {
		var count int64
		err := querier.QueryRowContext(
			ctx,
			`SELECT COUNT(*) FROM tracking_history WHERE created_at < $1`,
			olderThan,
		).Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count tracking history")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM tracking_history WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete tracking history")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}

	return count, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
