// Package availability derives bookable hourly slots for an asset on a date.
package availability

import (
	"context"
	"time"

	"github.com/Domenick1991/charterbook/internal/apperrors"
	"github.com/Domenick1991/charterbook/internal/calendar"
	"github.com/Domenick1991/charterbook/internal/domain"
)

type AssetLookup interface {
	GetAsset(ctx context.Context, id string) (*domain.Asset, error)
}

type ReservationLookup interface {
	FindOverlapping(ctx context.Context, assetID string, date time.Time, startHour, durationHours int) (bool, error)
}

type SlotUseCase interface {
	GetAvailableSlots(ctx context.Context, assetID string, date time.Time) ([]domain.Slot, error)
	WindowAvailable(ctx context.Context, assetID string, date time.Time, startHour, durationHours int) (bool, error)
}

type Resolver struct {
	assets       AssetLookup
	reservations ReservationLookup
	loc          *time.Location
	openHour     int
	closeHour    int
	now          func() time.Time
}

type ResolverOption func(*Resolver)

func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithOperatingHours sets the first slot hour and the exclusive closing hour.
func WithOperatingHours(open, close int) ResolverOption {
	return func(r *Resolver) {
		r.openHour, r.closeHour = open, close
	}
}

func NewResolver(assets AssetLookup, reservations ReservationLookup, loc *time.Location, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		assets:       assets,
		reservations: reservations,
		loc:          loc,
		openHour:     8,
		closeHour:    20,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetAvailableSlots returns one slot per operating hour in ascending order.
// The sequence is computed on every call.
func (r *Resolver) GetAvailableSlots(ctx context.Context, assetID string, date time.Time) ([]domain.Slot, error) {
	day, err := r.checkDate(date)
	if err != nil {
		return nil, err
	}
	if err := r.checkAsset(ctx, assetID); err != nil {
		return nil, err
	}

	now := r.now()
	slots := make([]domain.Slot, 0, r.closeHour-r.openHour)
	for h := r.openHour; h < r.closeHour; h++ {
		start, end := domain.Window(day, h, 1)
		slot := domain.Slot{StartHour: h, Start: start, End: end}
		if !start.Before(now) {
			taken, err := r.reservations.FindOverlapping(ctx, assetID, day, h, 1)
			if err != nil {
				return nil, apperrors.Unavailable("reservation store", err)
			}
			slot.Available = !taken
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// WindowAvailable reports whether the whole multi-hour window starting at
// startHour is free and still in the future.
func (r *Resolver) WindowAvailable(ctx context.Context, assetID string, date time.Time, startHour, durationHours int) (bool, error) {
	day, err := r.checkDate(date)
	if err != nil {
		return false, err
	}
	if startHour < r.openHour || startHour >= r.closeHour {
		return false, apperrors.InvalidField("start_hour", "start hour is outside operating hours")
	}
	if durationHours < 1 {
		return false, apperrors.InvalidField("duration_hours", "duration must be at least one hour")
	}

	start, _ := domain.Window(day, startHour, durationHours)
	if start.Before(r.now()) {
		return false, nil
	}
	taken, err := r.reservations.FindOverlapping(ctx, assetID, day, startHour, durationHours)
	if err != nil {
		return false, apperrors.Unavailable("reservation store", err)
	}
	return !taken, nil
}

func (r *Resolver) checkDate(date time.Time) (time.Time, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, r.loc)
	if day.Before(calendar.DateOf(r.now(), r.loc)) {
		return time.Time{}, apperrors.InvalidField("date", "date is in the past")
	}
	return day, nil
}

func (r *Resolver) checkAsset(ctx context.Context, assetID string) error {
	asset, err := r.assets.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if !asset.IsActive {
		return apperrors.NotFound("asset", assetID)
	}
	return nil
}

var _ SlotUseCase = (*Resolver)(nil)
