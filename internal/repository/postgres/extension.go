package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/repository"
)

type extensionRepository struct {
	db DBTX
}

func NewExtensionRepository(db DBTX) repository.ExtensionRepository {
	return &extensionRepository{db: db}
}

const extensionColumns = `id, order_id, requester_id, duration, requested_end_at, original_fee_cents,
	fee_cents, discount_cents, discount_reason, notes, status, approver_id, rejection_reason,
	created_on, updated_on`

// Create relies on the partial unique index on (order_id) WHERE
// status='PENDING' to close the race between two concurrent requesters.
func (r *extensionRepository) Create(ctx context.Context, e *domain.ExtensionRequest) error {
	query := `INSERT INTO extension_requests (order_id, requester_id, duration, requested_end_at,
	          original_fee_cents, fee_cents, discount_cents, discount_reason, notes, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	now := time.Now()
	e.CreatedOn = now
	e.UpdatedOn = now
	err := r.db.QueryRowContext(ctx, query,
		e.OrderID, e.RequesterID, e.Duration, e.RequestedEndAt,
		e.OriginalFeeCents, e.FeeCents, e.DiscountCents, e.DiscountReason, e.Notes, e.Status, now, now,
	).Scan(&e.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("order %d already has a pending extension request", e.OrderID)
		}
		return domain.WrapInternal(err, "create extension request")
	}
	return nil
}

func (r *extensionRepository) GetByID(ctx context.Context, id int64) (*domain.ExtensionRequest, error) {
	query := `SELECT ` + extensionColumns + ` FROM extension_requests WHERE id = $1`
	e, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFoundError("extension request %d not found", id)
		}
		return nil, domain.WrapInternal(err, "get extension request")
	}
	return e, nil
}

func (r *extensionRepository) GetPendingByOrder(ctx context.Context, orderID int64) (*domain.ExtensionRequest, error) {
	query := `SELECT ` + extensionColumns + ` FROM extension_requests WHERE order_id = $1 AND status = $2`
	e, err := r.scan(r.db.QueryRowContext(ctx, query, orderID, domain.ExtensionStatusPending))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFoundError("no pending extension for order %d", orderID)
		}
		return nil, domain.WrapInternal(err, "get pending extension")
	}
	return e, nil
}

func (r *extensionRepository) Update(ctx context.Context, e *domain.ExtensionRequest) error {
	query := `UPDATE extension_requests SET status=$1, approver_id=$2, rejection_reason=$3, updated_on=$4 WHERE id=$5`
	e.UpdatedOn = time.Now()
	res, err := r.db.ExecContext(ctx, query, e.Status, e.ApproverID, e.RejectionReason, e.UpdatedOn, e.ID)
	if err != nil {
		return domain.WrapInternal(err, "update extension request")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NewNotFoundError("extension request %d not found", e.ID)
	}
	return nil
}

func (r *extensionRepository) ListByOrder(ctx context.Context, orderID int64) ([]domain.ExtensionRequest, error) {
	query := `SELECT ` + extensionColumns + ` FROM extension_requests WHERE order_id = $1 ORDER BY created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, domain.WrapInternal(err, "list extension requests")
	}
	defer rows.Close()

	var exts []domain.ExtensionRequest
	for rows.Next() {
		e := domain.ExtensionRequest{}
		var discountReason, notes, rejection sql.NullString
		if err := rows.Scan(&e.ID, &e.OrderID, &e.RequesterID, &e.Duration, &e.RequestedEndAt,
			&e.OriginalFeeCents, &e.FeeCents, &e.DiscountCents, &discountReason, &notes,
			&e.Status, &e.ApproverID, &rejection, &e.CreatedOn, &e.UpdatedOn); err != nil {
			return nil, domain.WrapInternal(err, "scan extension request")
		}
		e.DiscountReason = discountReason.String
		e.Notes = notes.String
		e.RejectionReason = rejection.String
		exts = append(exts, e)
	}
	return exts, rows.Err()
}

func (r *extensionRepository) scan(row *sql.Row) (*domain.ExtensionRequest, error) {
	e := &domain.ExtensionRequest{}
	var discountReason, notes, rejection sql.NullString
	err := row.Scan(&e.ID, &e.OrderID, &e.RequesterID, &e.Duration, &e.RequestedEndAt,
		&e.OriginalFeeCents, &e.FeeCents, &e.DiscountCents, &discountReason, &notes,
		&e.Status, &e.ApproverID, &rejection, &e.CreatedOn, &e.UpdatedOn)
	if err != nil {
		return nil, err
	}
	e.DiscountReason = discountReason.String
	e.Notes = notes.String
	e.RejectionReason = rejection.String
	return e, nil
}
