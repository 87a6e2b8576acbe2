package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDisputedOrder(store *memStore, deposit int64) (orderID, disputeID int64) {
	store.seedWallet(renterID, 0)
	store.seedWallet(ownerID, 0)
	orderID = store.seedOrder(domain.Order{
		Code:         "ord-dispute",
		RenterID:     renterID,
		OwnerID:      ownerID,
		Item:         dayItem(30_000),
		StartAt:      time.Now().Add(-3 * 24 * time.Hour),
		EndAt:        time.Now().Add(24 * time.Hour),
		DepositCents: deposit,
		FeeCents:     100_000,
		Currency:     "USD",
		Status:       domain.OrderStatusDisputed,
	})
	disputeID = store.seedDispute(domain.Dispute{
		OrderID:          orderID,
		ReporterID:       renterID,
		ReportedID:       ownerID,
		Reason:           "item damaged on arrival",
		Status:           domain.DisputeStatusPending,
		PriorOrderStatus: domain.OrderStatusActive,
	})
	return orderID, disputeID
}

func TestDisputeService_OpenDispute(t *testing.T) {
	ctx := context.Background()

	t.Run("FreezesOrder", func(t *testing.T) {
		store := newMemStore()
		store.seedWallet(renterID, 0)
		orderID := store.seedOrder(domain.Order{
			Code:     "ord-open",
			RenterID: renterID,
			OwnerID:  ownerID,
			Item:     dayItem(30_000),
			StartAt:  time.Now().Add(-24 * time.Hour),
			EndAt:    time.Now().Add(24 * time.Hour),
			Status:   domain.OrderStatusActive,
		})
		svc := service.NewDisputeService(store, nopNotifier{})

		d, err := svc.OpenDispute(ctx, renter, orderID, "not as described", "scratches everywhere", []string{"img-1.jpg"})
		require.NoError(t, err)
		assert.Equal(t, domain.DisputeStatusPending, d.Status)
		assert.Equal(t, renterID, d.ReporterID)
		assert.Equal(t, ownerID, d.ReportedID)
		assert.Equal(t, domain.OrderStatusActive, d.PriorOrderStatus)
		assert.Equal(t, domain.OrderStatusDisputed, store.order(orderID).Status)
	})

	t.Run("SecondOpenDisputeConflicts", func(t *testing.T) {
		store := newMemStore()
		orderID, _ := seedDisputedOrder(store, 200_000)
		svc := service.NewDisputeService(store, nopNotifier{})

		// The order is already DISPUTED, so the status gate fires
		// before the one-open-dispute constraint.
		_, err := svc.OpenDispute(ctx, owner, orderID, "counter claim", "", nil)
		require.Error(t, err)
		assert.Equal(t, domain.KindInvalidTransition, domain.KindOf(err))
	})

	t.Run("TooMuchEvidenceRejected", func(t *testing.T) {
		store := newMemStore()
		svc := service.NewDisputeService(store, nopNotifier{})
		evidence := []string{"1", "2", "3", "4", "5", "6"}
		_, err := svc.OpenDispute(ctx, renter, 1, "reason", "", evidence)
		require.Error(t, err)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})
}

func TestDisputeService_ResolveDispute(t *testing.T) {
	ctx := context.Background()

	t.Run("PartialRefundSplitsDeposit", func(t *testing.T) {
		store := newMemStore()
		orderID, disputeID := seedDisputedOrder(store, 200_000)
		svc := service.NewDisputeService(store, nopNotifier{})

		d, err := svc.ResolveDispute(ctx, moderator, disputeID, service.ResolveDisputeInput{
			Decision:         domain.DecisionRefundPartial,
			RefundTarget:     domain.RefundTargetReporter,
			RefundPercentage: 25,
			Notes:            "shared responsibility",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.DisputeStatusResolved, d.Status)
		require.NotNil(t, d.ModeratorID)
		assert.Equal(t, moderatorID, *d.ModeratorID)

		// Reporter is the renter: 25% back, owner keeps the rest.
		assert.Equal(t, int64(50_000), store.balance(renterID))
		assert.Equal(t, int64(150_000), store.balance(ownerID))
		assert.Equal(t, domain.OrderStatusRefunded, store.order(orderID).Status)
	})

	t.Run("FullRefundForcesHundredPercent", func(t *testing.T) {
		store := newMemStore()
		_, disputeID := seedDisputedOrder(store, 200_000)
		svc := service.NewDisputeService(store, nopNotifier{})

		_, err := svc.ResolveDispute(ctx, moderator, disputeID, service.ResolveDisputeInput{
			Decision:         domain.DecisionRefundFull,
			RefundTarget:     domain.RefundTargetReporter,
			RefundPercentage: 50,
		})
		require.Error(t, err)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("FullRefundGoesEntirelyToTarget", func(t *testing.T) {
		store := newMemStore()
		orderID, disputeID := seedDisputedOrder(store, 200_000)
		svc := service.NewDisputeService(store, nopNotifier{})

		_, err := svc.ResolveDispute(ctx, moderator, disputeID, service.ResolveDisputeInput{
			Decision:         domain.DecisionRefundFull,
			RefundTarget:     domain.RefundTargetReporter,
			RefundPercentage: 100,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(200_000), store.balance(renterID))
		assert.Equal(t, int64(0), store.balance(ownerID))
		assert.Equal(t, domain.OrderStatusRefunded, store.order(orderID).Status)
		// 100% to the target leaves nothing to retain: one ledger entry.
		assert.Equal(t, 1, store.transactionCount())
	})

	t.Run("RejectRestoresPriorStatus", func(t *testing.T) {
		store := newMemStore()
		orderID, disputeID := seedDisputedOrder(store, 200_000)
		svc := service.NewDisputeService(store, nopNotifier{})

		d, err := svc.ResolveDispute(ctx, moderator, disputeID, service.ResolveDisputeInput{
			Decision: domain.DecisionReject,
			Notes:    "no evidence of damage",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.DisputeStatusResolved, d.Status)
		assert.Equal(t, int64(0), store.balance(renterID))
		assert.Equal(t, int64(0), store.balance(ownerID))
		assert.Equal(t, 0, store.transactionCount())
		assert.Equal(t, domain.OrderStatusActive, store.order(orderID).Status)
	})

	t.Run("KeepForSellerAwardsDepositToOwner", func(t *testing.T) {
		store := newMemStore()
		orderID, disputeID := seedDisputedOrder(store, 200_000)
		svc := service.NewDisputeService(store, nopNotifier{})

		_, err := svc.ResolveDispute(ctx, moderator, disputeID, service.ResolveDisputeInput{
			Decision: domain.DecisionKeepForSeller,
			Notes:    "item destroyed",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), store.balance(renterID))
		assert.Equal(t, int64(200_000), store.balance(ownerID))
		assert.Equal(t, domain.OrderStatusActive, store.order(orderID).Status)

		// Later completion pays the fee but must not hand the deposit
		// back a second time.
		ordSvc := newOrderService(store, 0)
		_, err = ordSvc.CompleteOrder(ctx, domain.Actor{UserID: 0, Role: domain.RoleSystem}, orderID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), store.balance(renterID))
		assert.Equal(t, int64(300_000), store.balance(ownerID))
	})

	t.Run("NonModeratorRefused", func(t *testing.T) {
		store := newMemStore()
		_, disputeID := seedDisputedOrder(store, 200_000)
		svc := service.NewDisputeService(store, nopNotifier{})

		_, err := svc.ResolveDispute(ctx, owner, disputeID, service.ResolveDisputeInput{
			Decision: domain.DecisionReject,
		})
		require.Error(t, err)
		assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
	})

	t.Run("ConcurrentResolvesPostOnce", func(t *testing.T) {
		store := newMemStore()
		_, disputeID := seedDisputedOrder(store, 200_000)
		svc := service.NewDisputeService(store, nopNotifier{})

		input := service.ResolveDisputeInput{
			Decision:         domain.DecisionRefundFull,
			RefundTarget:     domain.RefundTargetReporter,
			RefundPercentage: 100,
		}
		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.ResolveDispute(ctx, moderator, disputeID, input)
			}(i)
		}
		wg.Wait()

		var oks, conflicts int
		for _, err := range errs {
			if err == nil {
				oks++
			} else if domain.IsKind(err, domain.KindConflict) {
				conflicts++
			}
		}
		assert.Equal(t, 1, oks)
		assert.Equal(t, 1, conflicts)
		assert.Equal(t, 1, store.transactionCount())
		assert.Equal(t, int64(200_000), store.balance(renterID))
	})
}

func TestDisputeService_RejectDispute(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	orderID, disputeID := seedDisputedOrder(store, 200_000)
	svc := service.NewDisputeService(store, nopNotifier{})

	d, err := svc.RejectDispute(ctx, moderator, disputeID, "frivolous")
	require.NoError(t, err)
	assert.Equal(t, domain.DisputeStatusRejected, d.Status)
	assert.Equal(t, domain.DecisionReject, d.Decision)
	assert.Equal(t, domain.OrderStatusActive, store.order(orderID).Status)
	assert.Equal(t, 0, store.transactionCount())

	_, err = svc.RejectDispute(ctx, moderator, disputeID, "again")
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}
