package service

import (
	"context"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/repository"
)

type ledgerService struct {
	txm repository.TxManager
}

func NewLedgerService(txm repository.TxManager) LedgerService {
	return &ledgerService{txm: txm}
}

func (s *ledgerService) GetWallet(ctx context.Context, userID int64) (*domain.Wallet, error) {
	var w *domain.Wallet
	err := s.txm.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		w, err = r.Wallets.GetByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (s *ledgerService) ListTransactions(ctx context.Context, userID int64, page, pageSize int32) ([]domain.WalletTransaction, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	var (
		txs   []domain.WalletTransaction
		total int32
	)
	err := s.txm.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		txs, total, err = r.Wallets.ListTransactions(ctx, userID, page, pageSize)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}
