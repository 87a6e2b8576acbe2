package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/repository"
)

type orderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) repository.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, code, renter_id, owner_id, item_title, item_price_unit, item_price_per_unit_cents,
	item_min_duration, item_max_duration, start_at, end_at, deposit_cents, fee_cents, currency,
	status, cancel_reason, completed_by, created_on, updated_on`

func (r *orderRepository) Create(ctx context.Context, o *domain.Order) error {
	query := `INSERT INTO orders (code, renter_id, owner_id, item_title, item_price_unit, item_price_per_unit_cents,
	          item_min_duration, item_max_duration, start_at, end_at, deposit_cents, fee_cents, currency,
	          status, cancel_reason, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17) RETURNING id`
	now := time.Now()
	o.CreatedOn = now
	o.UpdatedOn = now
	err := r.db.QueryRowContext(ctx, query,
		o.Code, o.RenterID, o.OwnerID, o.Item.Title, o.Item.PriceUnit, o.Item.PricePerUnitCents,
		o.Item.MinRentalDuration, o.Item.MaxRentalDuration, o.StartAt, o.EndAt, o.DepositCents, o.FeeCents,
		o.Currency, o.Status, o.CancelReason, now, now,
	).Scan(&o.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("order code %s already exists", o.Code)
		}
		return domain.WrapInternal(err, "create order")
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

func (r *orderRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

func (r *orderRepository) scanOne(row *sql.Row, id int64) (*domain.Order, error) {
	o := &domain.Order{}
	var cancelReason sql.NullString
	err := row.Scan(&o.ID, &o.Code, &o.RenterID, &o.OwnerID,
		&o.Item.Title, &o.Item.PriceUnit, &o.Item.PricePerUnitCents,
		&o.Item.MinRentalDuration, &o.Item.MaxRentalDuration,
		&o.StartAt, &o.EndAt, &o.DepositCents, &o.FeeCents, &o.Currency,
		&o.Status, &cancelReason, &o.CompletedBy, &o.CreatedOn, &o.UpdatedOn)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFoundError("order %d not found", id)
		}
		return nil, domain.WrapInternal(err, "get order")
	}
	o.CancelReason = cancelReason.String
	return o, nil
}

func (r *orderRepository) Update(ctx context.Context, o *domain.Order) error {
	query := `UPDATE orders SET end_at=$1, fee_cents=$2, status=$3, cancel_reason=$4, completed_by=$5, updated_on=$6 WHERE id=$7`
	o.UpdatedOn = time.Now()
	res, err := r.db.ExecContext(ctx, query, o.EndAt, o.FeeCents, o.Status, o.CancelReason, o.CompletedBy, o.UpdatedOn, o.ID)
	if err != nil {
		return domain.WrapInternal(err, "update order")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NewNotFoundError("order %d not found", o.ID)
	}
	return nil
}

func (r *orderRepository) ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Order, int32, error) {
	return r.list(ctx, "renter_id", renterID, status, page, pageSize)
}

func (r *orderRepository) ListByOwner(ctx context.Context, ownerID int64, status string, page, pageSize int32) ([]domain.Order, int32, error) {
	return r.list(ctx, "owner_id", ownerID, status, page, pageSize)
}

func (r *orderRepository) list(ctx context.Context, column string, userID int64, status string, page, pageSize int32) ([]domain.Order, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	where := fmt.Sprintf("WHERE %s = $1", column)
	args := []any{userID}
	if status != "" {
		where += " AND status = $2"
		args = append(args, status)
	}

	var count int32
	countQuery := "SELECT count(*) FROM orders " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, domain.WrapInternal(err, "count orders")
	}

	query := fmt.Sprintf("SELECT %s FROM orders %s ORDER BY created_on DESC LIMIT $%d OFFSET $%d",
		orderColumns, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, domain.WrapInternal(err, "list orders")
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		var cancelReason sql.NullString
		if err := rows.Scan(&o.ID, &o.Code, &o.RenterID, &o.OwnerID,
			&o.Item.Title, &o.Item.PriceUnit, &o.Item.PricePerUnitCents,
			&o.Item.MinRentalDuration, &o.Item.MaxRentalDuration,
			&o.StartAt, &o.EndAt, &o.DepositCents, &o.FeeCents, &o.Currency,
			&o.Status, &cancelReason, &o.CompletedBy, &o.CreatedOn, &o.UpdatedOn); err != nil {
			return nil, 0, domain.WrapInternal(err, "scan order")
		}
		o.CancelReason = cancelReason.String
		orders = append(orders, o)
	}
	return orders, count, rows.Err()
}

func (r *orderRepository) ListDue(ctx context.Context, asOf time.Time, limit int32) ([]domain.Order, error) {
	if limit < 1 {
		limit = 100
	}
	query := `SELECT ` + orderColumns + ` FROM orders
	          WHERE status IN ($1, $2) AND end_at <= $3 ORDER BY end_at ASC LIMIT $4`
	rows, err := r.db.QueryContext(ctx, query, domain.OrderStatusActive, domain.OrderStatusExtended, asOf, limit)
	if err != nil {
		return nil, domain.WrapInternal(err, "list due orders")
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		var cancelReason sql.NullString
		if err := rows.Scan(&o.ID, &o.Code, &o.RenterID, &o.OwnerID,
			&o.Item.Title, &o.Item.PriceUnit, &o.Item.PricePerUnitCents,
			&o.Item.MinRentalDuration, &o.Item.MaxRentalDuration,
			&o.StartAt, &o.EndAt, &o.DepositCents, &o.FeeCents, &o.Currency,
			&o.Status, &cancelReason, &o.CompletedBy, &o.CreatedOn, &o.UpdatedOn); err != nil {
			return nil, domain.WrapInternal(err, "scan due order")
		}
		o.CancelReason = cancelReason.String
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
