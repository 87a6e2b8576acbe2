package service

import (
	"context"
	"fmt"
	"strconv"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/logger"
	"rentiva-backend/internal/repository"
)

// UserDirectory resolves a user id to a deliverable address. Identity
// lives in an external system; this is the only piece of it the
// settlement engine touches.
type UserDirectory interface {
	Lookup(ctx context.Context, userID int64) (email, name string, err error)
}

// notifier persists in-app notifications and mirrors them to email.
// Every method is best effort: failures are logged, never returned,
// and notifications are written outside the financial transaction that
// triggered them.
type notifier struct {
	txm       repository.TxManager
	emailSvc  EmailService
	directory UserDirectory
}

func NewNotifier(txm repository.TxManager, emailSvc EmailService, directory UserDirectory) Notifier {
	return &notifier{
		txm:       txm,
		emailSvc:  emailSvc,
		directory: directory,
	}
}

func (n *notifier) notify(ctx context.Context, userID int64, title, message string, orderID int64) {
	err := n.txm.WithinTx(ctx, func(r repository.Repos) error {
		return r.Notifications.Create(ctx, &domain.Notification{
			UserID:  userID,
			Title:   title,
			Message: message,
			Attributes: map[string]string{
				"order_id": strconv.FormatInt(orderID, 10),
			},
		})
	})
	if err != nil {
		logger.Warn("failed to persist notification", "user_id", userID, "title", title, "error", err)
	}

	if n.emailSvc == nil || n.directory == nil {
		return
	}
	email, name, err := n.directory.Lookup(ctx, userID)
	if err != nil {
		logger.Warn("failed to resolve user for email", "user_id", userID, "error", err)
		return
	}
	if err := n.emailSvc.Send(email, name, title, message, ""); err != nil {
		logger.Warn("failed to send email", "user_id", userID, "title", title, "error", err)
	}
}

func (n *notifier) OrderCompleted(ctx context.Context, order *domain.Order) {
	msg := fmt.Sprintf("Order %s has completed. The deposit has been settled.", order.Code)
	n.notify(ctx, order.RenterID, "Order completed", msg, order.ID)
	n.notify(ctx, order.OwnerID, "Order completed", msg, order.ID)
}

func (n *notifier) OrderCancelled(ctx context.Context, order *domain.Order) {
	msg := fmt.Sprintf("Order %s was cancelled: %s", order.Code, order.CancelReason)
	n.notify(ctx, order.RenterID, "Order cancelled", msg, order.ID)
	n.notify(ctx, order.OwnerID, "Order cancelled", msg, order.ID)
}

func (n *notifier) ExtensionRequested(ctx context.Context, order *domain.Order, ext *domain.ExtensionRequest) {
	msg := fmt.Sprintf("A %d %s extension was requested on order %s for %d cents.",
		ext.Duration, order.Item.PriceUnit, order.Code, ext.FeeCents)
	n.notify(ctx, order.OwnerID, "Extension requested", msg, order.ID)
}

func (n *notifier) ExtensionApproved(ctx context.Context, order *domain.Order, ext *domain.ExtensionRequest) {
	msg := fmt.Sprintf("Your extension on order %s was approved. New end date: %s.",
		order.Code, ext.RequestedEndAt.Format("2006-01-02 15:04"))
	n.notify(ctx, order.RenterID, "Extension approved", msg, order.ID)
}

func (n *notifier) ExtensionRejected(ctx context.Context, order *domain.Order, ext *domain.ExtensionRequest) {
	msg := fmt.Sprintf("Your extension on order %s was rejected. %s", order.Code, ext.RejectionReason)
	n.notify(ctx, order.RenterID, "Extension rejected", msg, order.ID)
}

func (n *notifier) DisputeOpened(ctx context.Context, order *domain.Order, d *domain.Dispute) {
	msg := fmt.Sprintf("A dispute was opened on order %s: %s", order.Code, d.Reason)
	n.notify(ctx, d.ReportedID, "Dispute opened", msg, order.ID)
}

func (n *notifier) DisputeResolved(ctx context.Context, order *domain.Order, d *domain.Dispute) {
	msg := fmt.Sprintf("The dispute on order %s was closed with decision %s.", order.Code, d.Decision)
	n.notify(ctx, d.ReporterID, "Dispute resolved", msg, order.ID)
	n.notify(ctx, d.ReportedID, "Dispute resolved", msg, order.ID)
}
