// Package workflow drives a booking draft through Details, DateTime, Extras,
// Payment and Confirmation.
package workflow

import (
	"github.com/Domenick1991/charterbook/internal/apperrors"
	"github.com/Domenick1991/charterbook/internal/domain"
)

// CanAdvance reports whether to is the immediate successor of from.
func CanAdvance(from, to domain.Step) bool {
	i := from.Index()
	return i >= 0 && to.Index() == i+1
}

func Advance(d *domain.Draft, to domain.Step) error {
	if !CanAdvance(d.Step, to) {
		return apperrors.InvalidTransition(string(d.Step), string(to))
	}
	d.Step = to
	return nil
}

// Retreat moves the draft to its previous step. Details has no predecessor
// and Confirmation is final.
func Retreat(d *domain.Draft) error {
	i := d.Step.Index()
	if i <= 0 || d.Step == domain.StepConfirmation {
		to := "none"
		if i > 0 {
			to = string(domain.Steps()[i-1])
		}
		return apperrors.InvalidTransition(string(d.Step), to)
	}
	d.Step = domain.Steps()[i-1]
	return nil
}
