package ledger

import (
	"testing"
	"time"

	"github.com/Domenick1991/charterbook/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRefundableAmount(t *testing.T) {
	flexible := domain.RefundPolicy{Type: domain.RefundFlexible, DeadlineHours: 24}
	moderate := domain.RefundPolicy{Type: domain.RefundModerate, DeadlineHours: 72, Percentage: 50}
	strict := domain.RefundPolicy{Type: domain.RefundStrict, DeadlineHours: 0}

	testCases := []struct {
		name     string
		policy   domain.RefundPolicy
		paid     int64
		hours    float64
		expected int64
	}{
		{"Flexible well before", flexible, 5000, 100, 5000},
		{"Flexible at deadline", flexible, 5000, 24, 5000},
		{"Flexible after deadline", flexible, 5000, 23.5, 0},
		{"Moderate before", moderate, 5000, 80, 2500},
		{"Moderate rounds half up", moderate, 4101, 80, 2051},
		{"Moderate after", moderate, 5000, 71, 0},
		{"Strict", strict, 5000, 1000, 0},
		{"Nothing paid", flexible, 0, 100, 0},
		{"Service passed", flexible, 5000, -2, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, RefundableAmount(tc.policy, tc.paid, tc.hours))
		})
	}
}

func TestRefundableAmount_DeadlineBoundary(t *testing.T) {
	start := time.Date(2026, 11, 6, 10, 0, 0, 0, time.UTC)
	deadline := start.Add(-72 * time.Hour)

	testCases := []struct {
		name   string
		policy domain.RefundPolicy
		before int64
		after  int64
	}{
		{"Flexible", domain.RefundPolicy{Type: domain.RefundFlexible, DeadlineHours: 72}, 8000, 0},
		{"Moderate", domain.RefundPolicy{Type: domain.RefundModerate, DeadlineHours: 72, Percentage: 50}, 4000, 0},
		{"Strict", domain.RefundPolicy{Type: domain.RefundStrict, DeadlineHours: 72}, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			oneBefore := start.Sub(deadline.Add(-time.Second)).Hours()
			oneAfter := start.Sub(deadline.Add(time.Second)).Hours()

			assert.Equal(t, tc.before, RefundableAmount(tc.policy, 8000, oneBefore))
			assert.Equal(t, tc.before, RefundableAmount(tc.policy, 8000, start.Sub(deadline).Hours()))
			assert.Equal(t, tc.after, RefundableAmount(tc.policy, 8000, oneAfter))
		})
	}
}
