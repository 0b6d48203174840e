package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/charterbook/internal/domain"
	"github.com/jackc/pgx/v5"
)

type ReservationRepository interface {
	FindOverlapping(ctx context.Context, assetID string, date time.Time, startHour, durationHours int) (bool, error)
	Release(ctx context.Context, bookingID string) error
}

type PGReservationRepository struct {
	db DB
}

func NewReservationRepository(db DB) ReservationRepository {
	return &PGReservationRepository{db: db}
}

func (r *PGReservationRepository) FindOverlapping(ctx context.Context, assetID string, date time.Time, startHour, durationHours int) (bool, error) {
	start, end := domain.Window(date, startHour, durationHours)
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM reservations
		WHERE asset_id=$1 AND released_at IS NULL AND starts_at < $3 AND ends_at > $2)`,
		assetID, start, end).Scan(&exists)
	return exists, err
}

func (r *PGReservationRepository) Release(ctx context.Context, bookingID string) error {
	_, err := r.db.Exec(ctx, `UPDATE reservations SET released_at=now() WHERE booking_id=$1 AND released_at IS NULL`, bookingID)
	return err
}

// lockAsset serialises booking writes per asset for the rest of tx.
func lockAsset(ctx context.Context, tx pgx.Tx, assetID string) error {
	var locked string
	if err := tx.QueryRow(ctx, `SELECT id FROM assets WHERE id=$1 FOR UPDATE`, assetID).Scan(&locked); err != nil {
		return notFound(err)
	}
	return nil
}

// reserveTx inserts the window unless a live reservation overlaps it. The
// caller must hold the asset lock.
func reserveTx(ctx context.Context, tx pgx.Tx, assetID string, start, end time.Time, bookingID string) error {
	var taken bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM reservations
		WHERE asset_id=$1 AND released_at IS NULL AND starts_at < $3 AND ends_at > $2)`,
		assetID, start, end).Scan(&taken); err != nil {
		return err
	}
	if taken {
		return ErrSlotConflict
	}

	_, err := tx.Exec(ctx, `INSERT INTO reservations (asset_id, booking_id, starts_at, ends_at) VALUES ($1, $2, $3, $4)`,
		assetID, bookingID, start, end)
	return err
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
