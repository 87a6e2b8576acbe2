package settlement

import (
	"testing"

	"rentiva-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestSplitDeposit(t *testing.T) {
	t.Run("Quarter refund", func(t *testing.T) {
		// 200,000 deposit at 25% -> 50,000 refunded, 150,000 retained
		split, err := SplitDeposit(200000, 25)
		assert.NoError(t, err)
		assert.Equal(t, int64(50000), split.RefundCents)
		assert.Equal(t, int64(150000), split.RetainedCents)
	})

	t.Run("Full refund", func(t *testing.T) {
		split, err := SplitDeposit(500000, 100)
		assert.NoError(t, err)
		assert.Equal(t, int64(500000), split.RefundCents)
		assert.Equal(t, int64(0), split.RetainedCents)
	})

	t.Run("Zero deposit", func(t *testing.T) {
		split, err := SplitDeposit(0, 50)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), split.RefundCents)
		assert.Equal(t, int64(0), split.RetainedCents)
	})

	t.Run("Rounds half up", func(t *testing.T) {
		// 25% of 6 = 1.5 -> rounds to 2
		split, err := SplitDeposit(6, 25)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), split.RefundCents)
		assert.Equal(t, int64(4), split.RetainedCents)

		// 10% of 4 = 0.4 -> rounds down to 0
		split, err = SplitDeposit(4, 10)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), split.RefundCents)
		assert.Equal(t, int64(4), split.RetainedCents)
	})

	t.Run("Negative deposit rejected", func(t *testing.T) {
		_, err := SplitDeposit(-1, 50)
		assert.Error(t, err)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("Out of range percentage rejected", func(t *testing.T) {
		_, err := SplitDeposit(100, 101)
		assert.Error(t, err)
		_, err = SplitDeposit(100, -1)
		assert.Error(t, err)
	})
}

// Conservation: refund + retained must equal the deposit exactly for
// every allowed percentage, no currency leakage.
func TestSplitDeposit_Conservation(t *testing.T) {
	deposits := []int64{0, 1, 3, 7, 99, 101, 12345, 200000, 500000, 999999999}
	for _, dep := range deposits {
		for _, pct := range domain.AllowedRefundPercentages {
			split, err := SplitDeposit(dep, pct)
			assert.NoError(t, err)
			assert.Equal(t, dep, split.RefundCents+split.RetainedCents,
				"deposit %d at %d%% leaked currency", dep, pct)
			assert.GreaterOrEqual(t, split.RefundCents, int64(0))
			assert.GreaterOrEqual(t, split.RetainedCents, int64(0))
		}
	}
}

func TestSplitForDecision(t *testing.T) {
	t.Run("Reject moves nothing", func(t *testing.T) {
		split, err := SplitForDecision(200000, domain.DecisionReject, 0)
		assert.NoError(t, err)
		assert.Equal(t, RefundSplit{}, split)
	})

	t.Run("Keep for seller retains everything", func(t *testing.T) {
		split, err := SplitForDecision(200000, domain.DecisionKeepForSeller, 0)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), split.RefundCents)
		assert.Equal(t, int64(200000), split.RetainedCents)
	})

	t.Run("Full refund ignores percentage argument", func(t *testing.T) {
		split, err := SplitForDecision(200000, domain.DecisionRefundFull, 25)
		assert.NoError(t, err)
		assert.Equal(t, int64(200000), split.RefundCents)
	})

	t.Run("Partial refund uses percentage", func(t *testing.T) {
		split, err := SplitForDecision(200000, domain.DecisionRefundPartial, 25)
		assert.NoError(t, err)
		assert.Equal(t, int64(50000), split.RefundCents)
		assert.Equal(t, int64(150000), split.RetainedCents)
	})

	t.Run("Unknown decision rejected", func(t *testing.T) {
		_, err := SplitForDecision(200000, domain.DisputeDecision("SPLIT_EVENLY"), 50)
		assert.Error(t, err)
	})
}
