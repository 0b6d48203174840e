package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/charterbook/internal/domain"
	"github.com/jackc/pgx/v5"
)

type BookingRepository interface {
	CreateReserved(ctx context.Context, booking *domain.ConfirmedBooking) error
	GetByID(ctx context.Context, id string) (*domain.ConfirmedBooking, error)
	GetLiveByDraft(ctx context.Context, draftID string) (*domain.ConfirmedBooking, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.ConfirmedBooking, error)
}

type PGBookingRepository struct {
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	return &PGBookingRepository{db: db}
}

// liveDraftIndex allows one non-cancelled booking per draft.
const liveDraftIndex = "bookings_live_draft_idx"

const bookingColumns = `id, draft_id, asset_id, category, service_start, duration_hours, guests, addon_ids,
	first_name, last_name, email, phone, special_requests,
	total_price, currency, deposit_amount, deposit_due_at, balance_due_at,
	refund_type, refund_deadline_hours, refund_percentage, status, created_at, updated_at`

// CreateReserved reserves the booking window and inserts the booking in one
// transaction. Returns ErrDraftBooked when the draft already holds a live
// booking and ErrSlotConflict when the window is already taken.
func (r *PGBookingRepository) CreateReserved(ctx context.Context, b *domain.ConfirmedBooking) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockAsset(ctx, tx, b.AssetID); err != nil {
		return err
	}

	var held string
	err = tx.QueryRow(ctx, `SELECT id FROM bookings WHERE draft_id=$1 AND status <> $2 LIMIT 1`,
		b.DraftID, domain.BookingStatusCancelled).Scan(&held)
	switch {
	case err == nil:
		return ErrDraftBooked
	case !errors.Is(err, pgx.ErrNoRows):
		return err
	}

	if err := reserveTx(ctx, tx, b.AssetID, b.ServiceStart, b.ServiceEnd(), b.ID); err != nil {
		return err
	}

	if err := tx.QueryRow(ctx, `INSERT INTO bookings (id, draft_id, asset_id, category, service_start, duration_hours, guests, addon_ids,
		first_name, last_name, email, phone, special_requests,
		total_price, currency, deposit_amount, deposit_due_at, balance_due_at,
		refund_type, refund_deadline_hours, refund_percentage, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING created_at, updated_at`,
		b.ID, b.DraftID, b.AssetID, b.Category, b.ServiceStart, b.DurationHours, b.Guests, b.AddonIDs,
		b.Passenger.FirstName, b.Passenger.LastName, b.Passenger.Email, b.Passenger.Phone, b.SpecialRequests,
		b.TotalPrice, b.Currency, b.DepositAmount, b.DepositDueAt, b.BalanceDueAt,
		b.RefundPolicy.Type, b.RefundPolicy.DeadlineHours, b.RefundPolicy.Percentage, b.Status).
		Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		if isUniqueViolation(err, liveDraftIndex) {
			return ErrDraftBooked
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.ConfirmedBooking, error) {
	return scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
}

// GetLiveByDraft returns the draft's booking unless it was cancelled.
func (r *PGBookingRepository) GetLiveByDraft(ctx context.Context, draftID string) (*domain.ConfirmedBooking, error) {
	return scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE draft_id=$1 AND status <> $2`,
		draftID, domain.BookingStatusCancelled))
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.ConfirmedBooking, error) {
	return scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+bookingColumns, status, id))
}

func scanBooking(row pgx.Row) (*domain.ConfirmedBooking, error) {
	var b domain.ConfirmedBooking
	if err := row.Scan(&b.ID, &b.DraftID, &b.AssetID, &b.Category, &b.ServiceStart, &b.DurationHours, &b.Guests, &b.AddonIDs,
		&b.Passenger.FirstName, &b.Passenger.LastName, &b.Passenger.Email, &b.Passenger.Phone, &b.SpecialRequests,
		&b.TotalPrice, &b.Currency, &b.DepositAmount, &b.DepositDueAt, &b.BalanceDueAt,
		&b.RefundPolicy.Type, &b.RefundPolicy.DeadlineHours, &b.RefundPolicy.Percentage, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
