package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/repository"

	"github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repository
// works inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.Repos
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, Repos: newRepos(db)}
}

func newRepos(db DBTX) repository.Repos {
	return repository.Repos{
		Orders:        NewOrderRepository(db),
		Extensions:    NewExtensionRepository(db),
		Disputes:      NewDisputeRepository(db),
		Wallets:       NewWalletRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

// WithinTx runs fn over repositories bound to a single transaction.
// Commit only if fn succeeds; any error rolls everything back.
func (s *Store) WithinTx(ctx context.Context, fn func(r repository.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.WrapInternal(err, "begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(newRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.WrapInternal(err, "commit transaction")
	}
	return nil
}

const pqUniqueViolation = "23505"

// isUniqueViolation detects a unique-index conflict, used to close the
// check-then-insert race on at-most-one invariants.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func isNoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }
