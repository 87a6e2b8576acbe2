package service

import (
	"context"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/repository"
)

type notificationService struct {
	txm repository.TxManager
}

func NewNotificationService(txm repository.TxManager) NotificationService {
	return &notificationService{txm: txm}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	var (
		notes []domain.Notification
		total int32
	)
	err := s.txm.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		notes, total, err = r.Notifications.List(ctx, userID, page, pageSize)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int64) error {
	return s.txm.WithinTx(ctx, func(r repository.Repos) error {
		return r.Notifications.MarkAsRead(ctx, notificationID, userID)
	})
}
