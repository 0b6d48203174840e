package ledger

import (
	"github.com/Domenick1991/charterbook/internal/domain"
	"github.com/Domenick1991/charterbook/internal/service/pricing"
)

// RefundableAmount is the part of paidAmount returned when a booking is
// cancelled hoursUntilService hours before it starts. Cancelling exactly at
// the deadline still qualifies.
func RefundableAmount(policy domain.RefundPolicy, paidAmount int64, hoursUntilService float64) int64 {
	if paidAmount <= 0 {
		return 0
	}
	inTime := hoursUntilService >= float64(policy.DeadlineHours)

	switch policy.Type {
	case domain.RefundFlexible:
		if inTime {
			return paidAmount
		}
	case domain.RefundModerate:
		if inTime {
			return pricing.Percentage(paidAmount, policy.Percentage)
		}
	}
	return 0
}
