package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/allisson/parceltrack/internal/database"
	apperrors "github.com/allisson/parceltrack/internal/errors"
	"github.com/allisson/parceltrack/internal/order/domain"
	trackingDomain "github.com/allisson/parceltrack/internal/tracking/domain"
)

// mysqlDuplicateEntry is the MySQL error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// MySQLOrderRepository handles order persistence for MySQL. Ids are stored as BINARY(16).
//
// MySQL reports matched-but-unchanged rows as unaffected, so updates do not check the
// affected row count; callers hold the row lock from GetByOrderIDForUpdate or
// GetForTrackingUpdate instead.
type MySQLOrderRepository struct {
	db *sql.DB
}

// NewMySQLOrderRepository creates a new MySQLOrderRepository.
func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

func (r *MySQLOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	querier := database.GetTx(ctx, r.db)

	id, err := order.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal order id")
	}

	query := `INSERT INTO orders (` + orderColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return domain.ErrOrderAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create order")
	}

	return nil
}

func (r *MySQLOrderRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	return r.getByOrderID(ctx, orderID, "")
}

func (r *MySQLOrderRepository) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*domain.Order, error) {
	return r.getByOrderID(ctx, orderID, " FOR UPDATE")
}

func (r *MySQLOrderRepository) getByOrderID(ctx context.Context, orderID, lock string) (*domain.Order, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = ?` + lock

	order, err := scanMySQLOrder(querier.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get order")
	}

	return order, nil
}

func (r *MySQLOrderRepository) List(ctx context.Context, offset, limit int) ([]*domain.Order, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list orders")
	}

	return collectMySQLOrders(rows)
}

func (r *MySQLOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	querier := database.GetTx(ctx, r.db)

	id, err := order.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal order id")
	}

	query := `UPDATE orders
			  SET customer = ?, phone = ?, offer = ?, sale_value = ?, received_value = ?, sale_status = ?,
			      seller = ?, operator = ?, tracking_code = ?, tracking_status = ?, tracking_critical = ?,
			      tracking_updated_at = ?, updated_at = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(
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
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update order")
	}

	return nil
}

func (r *MySQLOrderRepository) ListTrackedRefs(ctx context.Context) ([]trackingDomain.TrackedOrderRef, error) {
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

func (r *MySQLOrderRepository) GetForTrackingUpdate(
	ctx context.Context,
	orderIDs, trackingCodes []string,
) ([]*domain.Order, error) {
	if len(orderIDs) == 0 && len(trackingCodes) == 0 {
		return make([]*domain.Order, 0), nil
	}

	querier := database.GetTx(ctx, r.db)

	conditions := make([]string, 0, 2)
	args := make([]any, 0, len(orderIDs)+len(trackingCodes))
	if len(orderIDs) > 0 {
		conditions = append(conditions, "order_id IN ("+placeholders(len(orderIDs))+")")
		for _, id := range orderIDs {
			args = append(args, id)
		}
	}
	if len(trackingCodes) > 0 {
		conditions = append(conditions, "(tracking_code <> '' AND tracking_code IN ("+placeholders(len(trackingCodes))+"))")
		for _, code := range trackingCodes {
			args = append(args, code)
		}
	}

	query := `SELECT ` + orderColumns + `
			  FROM orders
			  WHERE ` + strings.Join(conditions, " OR ") + `
			  ORDER BY created_at ASC, id ASC
			  FOR UPDATE`

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to lock orders for tracking update")
	}

	return collectMySQLOrders(rows)
}

func (r *MySQLOrderRepository) UpdateTracking(ctx context.Context, order *domain.Order) error {
	querier := database.GetTx(ctx, r.db)

	id, err := order.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal order id")
	}

	query := `UPDATE orders
			  SET tracking_status = ?, tracking_critical = ?, tracking_updated_at = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(ctx, query, order.TrackingStatus, order.TrackingCritical, order.TrackingUpdatedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update order tracking")
	}

	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func scanMySQLOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var id []byte

	err := row.Scan(
		&id,
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

	if err := order.ID.UnmarshalBinary(id); err != nil {
		return nil, err
	}

	return &order, nil
}

func collectMySQLOrders(rows *sql.Rows) ([]*domain.Order, error) {
	defer func() {
		_ = rows.Close()
	}()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanMySQLOrder(rows)
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
