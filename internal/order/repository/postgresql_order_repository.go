// Package repository implements order persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/allisson/parceltrack/internal/database"
	apperrors "github.com/allisson/parceltrack/internal/errors"
	"github.com/allisson/parceltrack/internal/order/domain"
	trackingDomain "github.com/allisson/parceltrack/internal/tracking/domain"
)

const orderColumns = `id, order_id, customer, phone, offer, sale_value, received_value, sale_status, seller,
	operator, tracking_code, tracking_status, tracking_critical, tracking_updated_at, created_at, updated_at`

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// PostgreSQLOrderRepository handles order persistence for PostgreSQL.
type PostgreSQLOrderRepository struct {
	db *sql.DB
}

// NewPostgreSQLOrderRepository creates a new PostgreSQLOrderRepository.
func NewPostgreSQLOrderRepository(db *sql.DB) *PostgreSQLOrderRepository {
	return &PostgreSQLOrderRepository{db: db}
}

// Create inserts a new order. A duplicate order id returns domain.ErrOrderAlreadyExists.
func (r *PostgreSQLOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO orders (` + orderColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := querier.ExecContext(
		ctx,
		query,
		order.ID,
		order.OrderID,
		order.Customer,
		order.Phone,
		order.Offer,
		order.SaleValue,
		order.ReceivedValue,
		order.SaleStatus,
		order.Seller,
		order.Operator,
		order.TrackingCode,
		order.TrackingStatus,
		order.TrackingCritical,
		order.TrackingUpdatedAt,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return domain.ErrOrderAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create order")
	}

	return nil
}

// GetByOrderID returns the order with the given order id.
func (r *PostgreSQLOrderRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	return r.getByOrderID(ctx, orderID, "")
}

// GetByOrderIDForUpdate is GetByOrderID holding a row lock until the transaction ends.
func (r *PostgreSQLOrderRepository) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*domain.Order, error) {
	return r.getByOrderID(ctx, orderID, " FOR UPDATE")
}

func (r *PostgreSQLOrderRepository) getByOrderID(ctx context.Context, orderID, lock string) (*domain.Order, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1` + lock

	order, err := scanPostgreSQLOrder(querier.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get order")
	}

	return order, nil
}

// List returns orders, newest first.
func (r *PostgreSQLOrderRepository) List(ctx context.Context, offset, limit int) ([]*domain.Order, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list orders")
	}

	return collectPostgreSQLOrders(rows)
}

// Update writes every column of an existing order.
func (r *PostgreSQLOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE orders
			  SET customer = $1, phone = $2, offer = $3, sale_value = $4, received_value = $5, sale_status = $6,
			      seller = $7, operator = $8, tracking_code = $9, tracking_status = $10, tracking_critical = $11,
			      tracking_updated_at = $12, updated_at = $13
			  WHERE id = $14`

	result, err := querier.ExecContext(
		ctx,
		query,
		order.Customer,
		order.Phone,
		order.Offer,
		order.SaleValue,
		order.ReceivedValue,
		order.SaleStatus,
		order.Seller,
		order.Operator,
		order.TrackingCode,
		order.TrackingStatus,
		order.TrackingCritical,
		order.TrackingUpdatedAt,
		order.UpdatedAt,
		order.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update order")
	}

	return checkAffected(result)
}

// ListTrackedRefs returns the reconciler input for every order with a tracking code.
func (r *PostgreSQLOrderRepository) ListTrackedRefs(ctx context.Context) ([]trackingDomain.TrackedOrderRef, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT order_id, tracking_code, tracking_status
			  FROM orders
			  WHERE tracking_code <> ''
			  ORDER BY created_at ASC, id ASC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tracked orders")
	}

	return collectTrackedRefs(rows)
}

// GetForTrackingUpdate locks the orders matching any order id or tracking code, oldest first.
func (r *PostgreSQLOrderRepository) GetForTrackingUpdate(
	ctx context.Context,
	orderIDs, trackingCodes []string,
) ([]*domain.Order, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + orderColumns + `
			  FROM orders
			  WHERE order_id = ANY($1) OR (tracking_code <> '' AND tracking_code = ANY($2))
			  ORDER BY created_at ASC, id ASC
			  FOR UPDATE`

	rows, err := querier.QueryContext(ctx, query, pq.Array(orderIDs), pq.Array(trackingCodes))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to lock orders for tracking update")
	}

	return collectPostgreSQLOrders(rows)
}

// UpdateTracking writes only the tracking status columns.
func (r *PostgreSQLOrderRepository) UpdateTracking(ctx context.Context, order *domain.Order) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE orders
			  SET tracking_status = $1, tracking_critical = $2, tracking_updated_at = $3
			  WHERE id = $4`

	result, err := querier.ExecContext(
		ctx,
		query,
		order.TrackingStatus,
		order.TrackingCritical,
		order.TrackingUpdatedAt,
		order.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update order tracking")
	}

	return checkAffected(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostgreSQLOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order

	err := row.Scan(
		&order.ID,
		&order.OrderID,
		&order.Customer,
		&order.Phone,
		&order.Offer,
		&order.SaleValue,
		&order.ReceivedValue,
		&order.SaleStatus,
		&order.Seller,
		&order.Operator,
		&order.TrackingCode,
		&order.TrackingStatus,
		&order.TrackingCritical,
		&order.TrackingUpdatedAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func collectPostgreSQLOrders(rows *sql.Rows) ([]*domain.Order, error) {
	defer func() {
		_ = rows.Close()
	}()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanPostgreSQLOrder(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan order")
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate orders")
	}

	return orders, nil
}

func collectTrackedRefs(rows *sql.Rows) ([]trackingDomain.TrackedOrderRef, error) {
	defer func() {
		_ = rows.Close()
	}()

	refs := make([]trackingDomain.TrackedOrderRef, 0)
	for rows.Next() {
		var ref trackingDomain.TrackedOrderRef
		if err := rows.Scan(&ref.OrderID, &ref.TrackingCode, &ref.LastKnownStatus); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan tracked order")
		}
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate tracked orders")
	}

	return refs, nil
}

func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
