package domain

import "time"

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentPending   PaymentStatus = "pending"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PaymentRecord is append-only.
type PaymentRecord struct {
	ID            string        `json:"id"`
	BookingID     string        `json:"booking_id"`
	Amount        int64         `json:"amount"`
	Currency      string        `json:"currency"`
	Method        string        `json:"method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transaction_id"`
	CreatedAt     time.Time     `json:"created_at"`
}

type LedgerStatus string

const (
	LedgerPending   LedgerStatus = "pending"
	LedgerPartial   LedgerStatus = "partial"
	LedgerCompleted LedgerStatus = "completed"
	LedgerOverdue   LedgerStatus = "overdue"
	LedgerCancelled LedgerStatus = "cancelled"
)

// PaymentStatusView is derived from the payment history on every read.
type PaymentStatusView struct {
	BookingID         string       `json:"booking_id"`
	Currency          string       `json:"currency"`
	TotalAmount       int64        `json:"total_amount"`
	PaidAmount        int64        `json:"paid_amount"`
	RefundedAmount    int64        `json:"refunded_amount"`
	RemainingAmount   int64        `json:"remaining_amount"`
	NextPaymentAmount int64        `json:"next_payment_amount"`
	DueDate           *time.Time   `json:"due_date,omitempty"`
	Status            LedgerStatus `json:"status"`
}
