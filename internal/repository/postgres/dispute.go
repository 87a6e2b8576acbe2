package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/repository"

	"github.com/lib/pq"
)

type disputeRepository struct {
	db DBTX
}

func NewDisputeRepository(db DBTX) repository.DisputeRepository {
	return &disputeRepository{db: db}
}

const disputeColumns = `id, order_id, reporter_id, reported_id, reason, description, evidence,
	status, decision, refund_target, refund_percentage, prior_order_status,
	moderator_id, moderator_notes, resolved_on, created_on, updated_on`

// Create relies on the partial unique index on (order_id) WHERE
// status='PENDING' to enforce at most one open dispute per order.
func (r *disputeRepository) Create(ctx context.Context, d *domain.Dispute) error {
	query := `INSERT INTO disputes (order_id, reporter_id, reported_id, reason, description, evidence,
	          status, prior_order_status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	now := time.Now()
	d.CreatedOn = now
	d.UpdatedOn = now
	err := r.db.QueryRowContext(ctx, query,
		d.OrderID, d.ReporterID, d.ReportedID, d.Reason, d.Description, pq.Array(d.Evidence),
		d.Status, d.PriorOrderStatus, now, now,
	).Scan(&d.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("order %d already has an open dispute", d.OrderID)
		}
		return domain.WrapInternal(err, "create dispute")
	}
	return nil
}

func (r *disputeRepository) GetByID(ctx context.Context, id int64) (*domain.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE id = $1`
	d, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFoundError("dispute %d not found", id)
		}
		return nil, domain.WrapInternal(err, "get dispute")
	}
	return d, nil
}

func (r *disputeRepository) GetOpenByOrder(ctx context.Context, orderID int64) (*domain.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE order_id = $1 AND status = $2`
	d, err := r.scan(r.db.QueryRowContext(ctx, query, orderID, domain.DisputeStatusPending))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFoundError("no open dispute for order %d", orderID)
		}
		return nil, domain.WrapInternal(err, "get open dispute")
	}
	return d, nil
}

// Close is guarded on status='PENDING': zero rows affected means
// another caller already terminated this dispute, which surfaces as a
// conflict instead of a silent double-post.
func (r *disputeRepository) Close(ctx context.Context, d *domain.Dispute) error {
	query := `UPDATE disputes SET status=$1, decision=$2, refund_target=$3, refund_percentage=$4,
	          moderator_id=$5, moderator_notes=$6, resolved_on=$7, updated_on=$8
	          WHERE id=$9 AND status=$10`
	now := time.Now()
	d.UpdatedOn = now
	res, err := r.db.ExecContext(ctx, query,
		d.Status, d.Decision, d.RefundTarget, d.RefundPercentage,
		d.ModeratorID, d.ModeratorNotes, d.ResolvedOn, now,
		d.ID, domain.DisputeStatusPending)
	if err != nil {
		return domain.WrapInternal(err, "close dispute")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.WrapInternal(err, "close dispute")
	}
	if n == 0 {
		return domain.NewConflictError("dispute %d is no longer pending", d.ID)
	}
	return nil
}

func (r *disputeRepository) HasDepositSettlement(ctx context.Context, orderID int64) (bool, error) {
	query := `SELECT count(*) FROM disputes WHERE order_id = $1 AND status = $2 AND decision <> $3`
	var count int32
	err := r.db.QueryRowContext(ctx, query, orderID, domain.DisputeStatusResolved, domain.DecisionReject).Scan(&count)
	if err != nil {
		return false, domain.WrapInternal(err, "check deposit settlement")
	}
	return count > 0, nil
}

func (r *disputeRepository) scan(row *sql.Row) (*domain.Dispute, error) {
	d := &domain.Dispute{}
	var decision, target, notes, description sql.NullString
	var pct sql.NullInt32
	err := row.Scan(&d.ID, &d.OrderID, &d.ReporterID, &d.ReportedID, &d.Reason, &description,
		pq.Array(&d.Evidence), &d.Status, &decision, &target, &pct, &d.PriorOrderStatus,
		&d.ModeratorID, &notes, &d.ResolvedOn, &d.CreatedOn, &d.UpdatedOn)
	if err != nil {
		return nil, err
	}
	d.Description = description.String
	d.Decision = domain.DisputeDecision(decision.String)
	d.RefundTarget = domain.RefundTarget(target.String)
	d.RefundPercentage = pct.Int32
	d.ModeratorNotes = notes.String
	return d, nil
}
