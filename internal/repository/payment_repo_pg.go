package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/charterbook/internal/domain"
	"github.com/jackc/pgx/v5"
)

type PaymentRepository interface {
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.PaymentRecord, error)
	ListByBooking(ctx context.Context, bookingID string) ([]domain.PaymentRecord, error)
	Append(ctx context.Context, rec *domain.PaymentRecord) error
}

type PGPaymentRepository struct {
	db DB
}

func NewPaymentRepository(db DB) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

const paymentColumns = `id, booking_id, amount, currency, method, status, transaction_id, created_at`

func (r *PGPaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.PaymentRecord, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE transaction_id=$1`, transactionID)
	var p domain.PaymentRecord
	if err := row.Scan(&p.ID, &p.BookingID, &p.Amount, &p.Currency, &p.Method, &p.Status, &p.TransactionID, &p.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PGPaymentRepository) ListByBooking(ctx context.Context, bookingID string) ([]domain.PaymentRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE booking_id=$1 ORDER BY created_at, id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.PaymentRecord, 0)
	for rows.Next() {
		var p domain.PaymentRecord
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Amount, &p.Currency, &p.Method, &p.Status, &p.TransactionID, &p.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	return records, rows.Err()
}

// Append inserts a payment record under the booking row lock. A repeated
// transaction id yields ErrDuplicateTransaction ahead of the balance checks;
// completed payments are then re-checked against the booking total.
func (r *PGPaymentRepository) Append(ctx context.Context, rec *domain.PaymentRecord) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var total int64
	if err := tx.QueryRow(ctx, `SELECT total_price FROM bookings WHERE id=$1 FOR UPDATE`, rec.BookingID).Scan(&total); err != nil {
		return notFound(err)
	}

	var recorded bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM payments WHERE transaction_id=$1)`, rec.TransactionID).Scan(&recorded); err != nil {
		return err
	}
	if recorded {
		return ErrDuplicateTransaction
	}

	if rec.Status == domain.PaymentCompleted {
		var paid int64
		if err := tx.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0)::bigint FROM payments WHERE booking_id=$1 AND status=$2`,
			rec.BookingID, domain.PaymentCompleted).Scan(&paid); err != nil {
			return err
		}
		if paid >= total {
			return ErrSettled
		}
		if paid+rec.Amount > total {
			return ErrOverpayment
		}
	}

	err = tx.QueryRow(ctx, `INSERT INTO payments (booking_id, amount, currency, method, status, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (transaction_id) DO NOTHING
		RETURNING id, created_at`,
		rec.BookingID, rec.Amount, rec.Currency, rec.Method, rec.Status, rec.TransactionID).
		Scan(&rec.ID, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDuplicateTransaction
	}
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
