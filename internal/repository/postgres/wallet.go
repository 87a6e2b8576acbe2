package postgres

import (
	"context"
	"time"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/repository"
)

type walletRepository struct {
	db DBTX
}

func NewWalletRepository(db DBTX) repository.WalletRepository {
	return &walletRepository{db: db}
}

const txColumns = `id, wallet_id, type, amount_cents, related_order_id, status, idempotency_key, description, created_on`

func (r *walletRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Wallet, error) {
	query := `SELECT id, user_id, balance_cents, version, created_on, updated_on FROM wallets WHERE user_id = $1`
	w := &domain.Wallet{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&w.ID, &w.UserID, &w.BalanceCents, &w.Version, &w.CreatedOn, &w.UpdatedOn)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFoundError("wallet for user %d not found", userID)
		}
		return nil, domain.WrapInternal(err, "get wallet")
	}
	return w, nil
}

func (r *walletRepository) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (user_id, balance_cents, version, created_on, updated_on)
	          VALUES ($1, $2, 0, $3, $3) RETURNING id`
	now := time.Now()
	w.CreatedOn = now
	w.UpdatedOn = now
	if err := r.db.QueryRowContext(ctx, query, w.UserID, w.BalanceCents, now).Scan(&w.ID); err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("wallet for user %d already exists", w.UserID)
		}
		return domain.WrapInternal(err, "create wallet")
	}
	return nil
}

// Post is the only code path that mutates a balance. Sequence:
//  1. replay check on the idempotency key — a hit returns the prior
//     transaction and touches nothing;
//  2. lock the wallet row (FOR UPDATE) — the authoritative balance
//     check happens under this lock, any earlier read is advisory;
//  3. insert the transaction and adjust the balance together.
//
// Callers compose transfers by running two Posts inside one WithinTx.
func (r *walletRepository) Post(ctx context.Context, p repository.WalletPost) (*domain.WalletTransaction, bool, error) {
	if p.IdempotencyKey == "" {
		return nil, false, domain.NewValidationError("idempotency_key", "idempotency key is required")
	}

	if prior, err := r.getByIdempotencyKey(ctx, p.IdempotencyKey); err != nil {
		return nil, false, err
	} else if prior != nil {
		return prior, true, nil
	}

	var (
		walletID int64
		balance  int64
	)
	lockQuery := `SELECT id, balance_cents FROM wallets WHERE user_id = $1 FOR UPDATE`
	if err := r.db.QueryRowContext(ctx, lockQuery, p.UserID).Scan(&walletID, &balance); err != nil {
		if isNoRows(err) {
			return nil, false, domain.NewNotFoundError("wallet for user %d not found", p.UserID)
		}
		return nil, false, domain.WrapInternal(err, "lock wallet")
	}

	if p.AmountCents < 0 && balance+p.AmountCents < 0 {
		return nil, false, domain.NewInsufficientFundsError(
			"wallet of user %d has balance %d, cannot absorb debit %d", p.UserID, balance, p.AmountCents)
	}

	tx := &domain.WalletTransaction{
		WalletID:       walletID,
		Type:           p.Type,
		AmountCents:    p.AmountCents,
		RelatedOrderID: p.RelatedOrderID,
		Status:         domain.TransactionStatusPosted,
		IdempotencyKey: p.IdempotencyKey,
		Description:    p.Description,
		CreatedOn:      time.Now(),
	}
	insert := `INSERT INTO wallet_transactions (wallet_id, type, amount_cents, related_order_id, status, idempotency_key, description, created_on)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := r.db.QueryRowContext(ctx, insert,
		tx.WalletID, tx.Type, tx.AmountCents, tx.RelatedOrderID, tx.Status, tx.IdempotencyKey, tx.Description, tx.CreatedOn,
	).Scan(&tx.ID)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost the race to another poster of the same event; the
			// original outcome stands.
			if prior, lookupErr := r.getByIdempotencyKey(ctx, p.IdempotencyKey); lookupErr == nil && prior != nil {
				return prior, true, nil
			}
			return nil, false, domain.NewConflictError("duplicate idempotency key %s", p.IdempotencyKey)
		}
		return nil, false, domain.WrapInternal(err, "insert wallet transaction")
	}

	update := `UPDATE wallets SET balance_cents = balance_cents + $1, version = version + 1, updated_on = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, update, p.AmountCents, time.Now(), walletID); err != nil {
		return nil, false, domain.WrapInternal(err, "update wallet balance")
	}
	return tx, false, nil
}

func (r *walletRepository) getByIdempotencyKey(ctx context.Context, key string) (*domain.WalletTransaction, error) {
	query := `SELECT ` + txColumns + ` FROM wallet_transactions WHERE idempotency_key = $1`
	tx := &domain.WalletTransaction{}
	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&tx.ID, &tx.WalletID, &tx.Type, &tx.AmountCents, &tx.RelatedOrderID, &tx.Status, &tx.IdempotencyKey, &tx.Description, &tx.CreatedOn)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, domain.WrapInternal(err, "lookup idempotency key")
	}
	return tx, nil
}

func (r *walletRepository) ListTransactions(ctx context.Context, userID int64, page, pageSize int32) ([]domain.WalletTransaction, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	var count int32
	countQuery := `SELECT count(*) FROM wallet_transactions t JOIN wallets w ON w.id = t.wallet_id WHERE w.user_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&count); err != nil {
		return nil, 0, domain.WrapInternal(err, "count wallet transactions")
	}

	query := `SELECT t.id, t.wallet_id, t.type, t.amount_cents, t.related_order_id, t.status, t.idempotency_key, t.description, t.created_on
	          FROM wallet_transactions t JOIN wallets w ON w.id = t.wallet_id
	          WHERE w.user_id = $1 ORDER BY t.created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, domain.WrapInternal(err, "list wallet transactions")
	}
	defer rows.Close()

	var txs []domain.WalletTransaction
	for rows.Next() {
		var tx domain.WalletTransaction
		if err := rows.Scan(&tx.ID, &tx.WalletID, &tx.Type, &tx.AmountCents, &tx.RelatedOrderID,
			&tx.Status, &tx.IdempotencyKey, &tx.Description, &tx.CreatedOn); err != nil {
			return nil, 0, domain.WrapInternal(err, "scan wallet transaction")
		}
		txs = append(txs, tx)
	}
	return txs, count, rows.Err()
}
