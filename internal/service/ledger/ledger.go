// Package ledger tracks payments against confirmed bookings and enforces the
// refund policy on cancellation.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/charterbook/internal/apperrors"
	"github.com/Domenick1991/charterbook/internal/domain"
	"github.com/Domenick1991/charterbook/internal/kafka"
	"github.com/Domenick1991/charterbook/internal/repository"
	"go.uber.org/zap"
)

type LedgerUseCase interface {
	RecordPayment(ctx context.Context, bookingID string, input RecordPaymentInput) (*domain.PaymentRecord, error)
	GetStatus(ctx context.Context, bookingID string) (*domain.PaymentStatusView, error)
	QuoteRefund(ctx context.Context, bookingID string, at time.Time) (*RefundQuote, error)
	Cancel(ctx context.Context, bookingID string, at time.Time) (*CancelResult, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type RecordPaymentInput struct {
	Amount        int64                `json:"amount"`
	Currency      string               `json:"currency"`
	Method        string               `json:"method"`
	TransactionID string               `json:"transaction_id"`
	Status        domain.PaymentStatus `json:"status"`
}

type RefundQuote struct {
	BookingID         string              `json:"booking_id"`
	Policy            domain.RefundPolicy `json:"policy"`
	PaidAmount        int64               `json:"paid_amount"`
	RefundableAmount  int64               `json:"refundable_amount"`
	HoursUntilService float64             `json:"hours_until_service"`
	Currency          string              `json:"currency"`
	At                time.Time           `json:"at"`
}

type CancelResult struct {
	Booking *domain.ConfirmedBooking `json:"booking"`
	Refund  *domain.PaymentRecord    `json:"refund,omitempty"`
	Quote   *RefundQuote             `json:"quote"`
}

type LedgerService struct {
	bookings           repository.BookingRepository
	payments           repository.PaymentRepository
	reservations       repository.ReservationRepository
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	now                func() time.Time
	logger             *zap.Logger
}

type LedgerServiceOption func(*LedgerService)

func WithNotificationsTopic(topic string) LedgerServiceOption {
	return func(s *LedgerService) {
		s.notificationsTopic = topic
	}
}

func WithLogger(logger *zap.Logger) LedgerServiceOption {
	return func(s *LedgerService) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) LedgerServiceOption {
	return func(s *LedgerService) {
		s.now = now
	}
}

// producer may be nil.
func NewLedgerService(
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
	reservations repository.ReservationRepository,
	producer Producer,
	bookingTopic string,
	opts ...LedgerServiceOption,
) *LedgerService {
	s := &LedgerService{
		bookings:     bookings,
		payments:     payments,
		reservations: reservations,
		producer:     producer,
		bookingTopic: bookingTopic,
		now:          time.Now,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordPayment appends a payment result reported by the provider. Repeated
// delivery of a transaction id returns the record stored the first time.
func (s *LedgerService) RecordPayment(ctx context.Context, bookingID string, input RecordPaymentInput) (*domain.PaymentRecord, error) {
	if input.Status == "" {
		input.Status = domain.PaymentCompleted
	}
	if err := validatePayment(input); err != nil {
		return nil, err
	}

	existing, err := s.payments.GetByTransactionID(ctx, input.TransactionID)
	switch {
	case err == nil:
		return s.replay(bookingID, existing)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.Unavailable("payment store", err)
	}

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == domain.BookingStatusCancelled {
		return nil, apperrors.InvalidState("booking " + bookingID + " is cancelled")
	}
	if input.Currency == "" {
		input.Currency = booking.Currency
	}
	if input.Currency != booking.Currency {
		return nil, apperrors.InvalidField("currency", "booking is priced in "+booking.Currency)
	}

	history, err := s.history(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	paid, _ := totals(history)
	remaining := booking.TotalPrice - paid

	if input.Status == domain.PaymentCompleted && (remaining <= 0 || input.Amount > remaining) {
		// A concurrent delivery of the same transaction may have committed since the lookup.
		if existing, err := s.payments.GetByTransactionID(ctx, input.TransactionID); err == nil {
			return s.replay(bookingID, existing)
		}
		if remaining <= 0 {
			return nil, apperrors.AlreadySettled(bookingID)
		}
		return nil, apperrors.OverpaymentRejected(remaining)
	}

	rec := &domain.PaymentRecord{
		BookingID:     bookingID,
		Amount:        input.Amount,
		Currency:      input.Currency,
		Method:        input.Method,
		Status:        input.Status,
		TransactionID: input.TransactionID,
	}
	if err := s.payments.Append(ctx, rec); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateTransaction):
			existing, getErr := s.payments.GetByTransactionID(ctx, input.TransactionID)
			if getErr != nil {
				return nil, apperrors.Unavailable("payment store", getErr)
			}
			return s.replay(bookingID, existing)
		case errors.Is(err, repository.ErrOverpayment):
			return nil, apperrors.OverpaymentRejected(remaining)
		case errors.Is(err, repository.ErrSettled):
			return nil, apperrors.AlreadySettled(bookingID)
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.BookingNotFound(bookingID)
		default:
			return nil, apperrors.Unavailable("payment store", err)
		}
	}

	s.logger.Info("payment recorded",
		zap.String("booking_id", bookingID),
		zap.String("transaction_id", rec.TransactionID),
		zap.Int64("amount", rec.Amount),
		zap.String("status", string(rec.Status)),
	)

	if rec.Status != domain.PaymentCompleted {
		return rec, nil
	}
	s.publish(ctx, kafka.EventPaymentRecorded, booking, rec.Amount)

	if booking.Status == domain.BookingStatusPending && paid+rec.Amount >= booking.DepositAmount {
		confirmed, err := s.bookings.UpdateStatus(ctx, bookingID, domain.BookingStatusConfirmed)
		if err != nil {
			// The payment is stored; the promotion is retried by the next payment.
			s.logger.Error("failed to confirm booking", zap.String("booking_id", bookingID), zap.Error(err))
			return rec, nil
		}
		s.publish(ctx, kafka.EventBookingConfirmed, confirmed, 0)
	}
	return rec, nil
}

// GetStatus derives the ledger view from the payment history. Until the
// deposit is covered the next payment is the outstanding deposit; after that
// it is the remaining balance.
func (s *LedgerService) GetStatus(ctx context.Context, bookingID string) (*domain.PaymentStatusView, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	history, err := s.history(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return statusView(booking, history, s.now()), nil
}

func (s *LedgerService) QuoteRefund(ctx context.Context, bookingID string, at time.Time) (*RefundQuote, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	history, err := s.history(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return quote(booking, history, at), nil
}

// Cancel refunds per the booking's policy, marks it cancelled and frees its
// window.
func (s *LedgerService) Cancel(ctx context.Context, bookingID string, at time.Time) (*CancelResult, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == domain.BookingStatusCancelled || booking.Status == domain.BookingStatusCompleted {
		return nil, apperrors.InvalidState("booking " + bookingID + " is already " + string(booking.Status))
	}
	history, err := s.history(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	result := &CancelResult{Quote: quote(booking, history, at)}
	if result.Quote.RefundableAmount > 0 {
		refund := &domain.PaymentRecord{
			BookingID:     bookingID,
			Amount:        result.Quote.RefundableAmount,
			Currency:      booking.Currency,
			Method:        "refund",
			Status:        domain.PaymentRefunded,
			TransactionID: "refund:" + bookingID,
		}
		if err := s.payments.Append(ctx, refund); err != nil && !errors.Is(err, repository.ErrDuplicateTransaction) {
			return nil, apperrors.Unavailable("payment store", err)
		}
		result.Refund = refund
	}

	updated, err := s.bookings.UpdateStatus(ctx, bookingID, domain.BookingStatusCancelled)
	if err != nil {
		return nil, apperrors.Unavailable("booking store", err)
	}
	if err := s.reservations.Release(ctx, bookingID); err != nil {
		return nil, apperrors.Unavailable("reservation store", err)
	}
	result.Booking = updated

	s.logger.Info("booking cancelled",
		zap.String("booking_id", bookingID),
		zap.Int64("refund", result.Quote.RefundableAmount),
	)
	s.publish(ctx, kafka.EventBookingCancelled, updated, result.Quote.RefundableAmount)
	return result, nil
}

func (s *LedgerService) replay(bookingID string, existing *domain.PaymentRecord) (*domain.PaymentRecord, error) {
	if existing.BookingID != bookingID {
		return nil, apperrors.InvalidField("transaction_id", "transaction belongs to another booking")
	}
	s.logger.Info("duplicate payment delivery", zap.String("transaction_id", existing.TransactionID))
	return existing, nil
}

func (s *LedgerService) getBooking(ctx context.Context, id string) (*domain.ConfirmedBooking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.BookingNotFound(id)
		}
		return nil, apperrors.Unavailable("booking store", err)
	}
	return booking, nil
}

func (s *LedgerService) history(ctx context.Context, bookingID string) ([]domain.PaymentRecord, error) {
	records, err := s.payments.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, apperrors.Unavailable("payment store", err)
	}
	return records, nil
}

func (s *LedgerService) publish(ctx context.Context, eventType string, booking *domain.ConfirmedBooking, amount int64) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.NewBookingEvent(eventType, booking, s.now())
	event.Amount = amount

	topics := []string{s.bookingTopic}
	if s.notificationsTopic != "" {
		topics = append(topics, s.notificationsTopic)
	}
	for _, topic := range topics {
		if err := s.producer.Publish(ctx, topic, booking.ID, event); err != nil {
			s.logger.Warn("failed to publish event", zap.String("type", eventType), zap.String("topic", topic), zap.Error(err))
			return
		}
	}
}

func validatePayment(input RecordPaymentInput) error {
	problems := map[string]string{}
	if input.Amount <= 0 {
		problems["amount"] = "amount must be positive"
	}
	if input.TransactionID == "" {
		problems["transaction_id"] = "transaction id is required"
	}
	switch input.Status {
	case domain.PaymentCompleted, domain.PaymentPending, domain.PaymentFailed:
	default:
		problems["status"] = "status must be completed, pending or failed"
	}
	if len(problems) > 0 {
		return apperrors.InvalidFields(problems)
	}
	return nil
}

// totals sums completed and refunded records.
func totals(history []domain.PaymentRecord) (paid, refunded int64) {
	for _, p := range history {
		switch p.Status {
		case domain.PaymentCompleted:
			paid += p.Amount
		case domain.PaymentRefunded:
			refunded += p.Amount
		}
	}
	return paid, refunded
}

func statusView(b *domain.ConfirmedBooking, history []domain.PaymentRecord, now time.Time) *domain.PaymentStatusView {
	paid, refunded := totals(history)
	remaining := b.TotalPrice - paid
	if remaining < 0 {
		remaining = 0
	}

	view := &domain.PaymentStatusView{
		BookingID:       b.ID,
		Currency:        b.Currency,
		TotalAmount:     b.TotalPrice,
		PaidAmount:      paid,
		RefundedAmount:  refunded,
		RemainingAmount: remaining,
	}
	if b.Status == domain.BookingStatusCancelled {
		// Nothing further is collected on a cancelled booking.
		view.RemainingAmount = 0
		view.Status = domain.LedgerCancelled
		return view
	}
	if remaining == 0 {
		view.Status = domain.LedgerCompleted
		return view
	}

	due := b.BalanceDueAt
	view.NextPaymentAmount = remaining
	if paid < b.DepositAmount {
		due = b.DepositDueAt
		view.NextPaymentAmount = b.DepositAmount - paid
	}
	view.DueDate = &due

	switch {
	case now.After(due):
		view.Status = domain.LedgerOverdue
	case paid > 0:
		view.Status = domain.LedgerPartial
	default:
		view.Status = domain.LedgerPending
	}
	return view
}

func quote(b *domain.ConfirmedBooking, history []domain.PaymentRecord, at time.Time) *RefundQuote {
	paid, refunded := totals(history)
	net := paid - refunded
	hours := b.ServiceStart.Sub(at).Hours()
	return &RefundQuote{
		BookingID:         b.ID,
		Policy:            b.RefundPolicy,
		PaidAmount:        net,
		RefundableAmount:  RefundableAmount(b.RefundPolicy, net, hours),
		HoursUntilService: hours,
		Currency:          b.Currency,
		At:                at,
	}
}

var _ LedgerUseCase = (*LedgerService)(nil)
