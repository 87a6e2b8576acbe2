package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	t.Run("Happy path", func(t *testing.T) {
		assert.True(t, OrderStatusCreated.CanTransitionTo(OrderStatusActive))
		assert.True(t, OrderStatusActive.CanTransitionTo(OrderStatusCompleted))
		assert.True(t, OrderStatusActive.CanTransitionTo(OrderStatusExtended))
		assert.True(t, OrderStatusActive.CanTransitionTo(OrderStatusDisputed))
		assert.True(t, OrderStatusExtended.CanTransitionTo(OrderStatusCompleted))
		assert.True(t, OrderStatusDisputed.CanTransitionTo(OrderStatusRefunded))
		assert.True(t, OrderStatusDisputed.CanTransitionTo(OrderStatusActive))
	})

	t.Run("Terminal states allow nothing", func(t *testing.T) {
		all := []OrderStatus{
			OrderStatusCreated, OrderStatusActive, OrderStatusExtended,
			OrderStatusDisputed, OrderStatusCompleted, OrderStatusCancelled,
			OrderStatusRefunded,
		}
		for _, terminal := range []OrderStatus{OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded} {
			assert.True(t, terminal.Terminal())
			for _, next := range all {
				assert.False(t, terminal.CanTransitionTo(next),
					"%s must not transition to %s", terminal, next)
			}
		}
	})

	t.Run("No regression to created", func(t *testing.T) {
		for from := range orderTransitions {
			assert.False(t, from.CanTransitionTo(OrderStatusCreated),
				"%s must not regress to CREATED", from)
		}
	})

	t.Run("Extended cannot be cancelled", func(t *testing.T) {
		assert.False(t, OrderStatusExtended.CanTransitionTo(OrderStatusCancelled))
	})

	t.Run("Disputable statuses", func(t *testing.T) {
		assert.True(t, OrderStatusActive.Disputable())
		assert.True(t, OrderStatusExtended.Disputable())
		assert.False(t, OrderStatusDisputed.Disputable())
		assert.False(t, OrderStatusCompleted.Disputable())
	})
}

func TestValidateResolution(t *testing.T) {
	t.Run("Reject needs no target", func(t *testing.T) {
		assert.NoError(t, ValidateResolution(DecisionReject, "", 0))
	})

	t.Run("Keep for seller needs no target", func(t *testing.T) {
		assert.NoError(t, ValidateResolution(DecisionKeepForSeller, "", 0))
	})

	t.Run("Partial refund requires allowed percentage", func(t *testing.T) {
		assert.NoError(t, ValidateResolution(DecisionRefundPartial, RefundTargetReporter, 25))
		assert.Error(t, ValidateResolution(DecisionRefundPartial, RefundTargetReporter, 33))
		assert.Error(t, ValidateResolution(DecisionRefundPartial, "", 25))
	})

	t.Run("Full refund forces 100", func(t *testing.T) {
		assert.NoError(t, ValidateResolution(DecisionRefundFull, RefundTargetReporter, 100))
		err := ValidateResolution(DecisionRefundFull, RefundTargetReporter, 50)
		assert.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("Unknown decision", func(t *testing.T) {
		assert.Error(t, ValidateResolution(DisputeDecision("ESCALATE"), "", 0))
	})
}
