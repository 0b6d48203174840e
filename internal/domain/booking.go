package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// ConfirmedBooking is created from a completed Draft. Only Status and
// UpdatedAt change after creation.
type ConfirmedBooking struct {
	ID              string        `json:"id"`
	DraftID         string        `json:"draft_id"`
	AssetID         string        `json:"asset_id"`
	Category        Category      `json:"category"`
	ServiceStart    time.Time     `json:"service_start"`
	DurationHours   int           `json:"duration_hours"`
	Guests          int           `json:"guests"`
	AddonIDs        []string      `json:"addon_ids"`
	Passenger       Passenger     `json:"passenger"`
	SpecialRequests string        `json:"special_requests,omitempty"`
	TotalPrice      int64         `json:"total_price"`
	Currency        string        `json:"currency"`
	DepositAmount   int64         `json:"deposit_amount"`
	DepositDueAt    time.Time     `json:"deposit_due_at"`
	BalanceDueAt    time.Time     `json:"balance_due_at"`
	RefundPolicy    RefundPolicy  `json:"refund_policy"`
	Status          BookingStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (b ConfirmedBooking) ServiceEnd() time.Time {
	return b.ServiceStart.Add(time.Duration(b.DurationHours) * time.Hour)
}

type RefundType string

const (
	RefundFlexible RefundType = "flexible"
	RefundModerate RefundType = "moderate"
	RefundStrict   RefundType = "strict"
)

// RefundPolicy is attached to a booking when it is created so later changes
// to the configured policy do not affect it.
type RefundPolicy struct {
	Type          RefundType `json:"type"`
	DeadlineHours int        `json:"deadline_hours"`
	Percentage    int        `json:"percentage"`
}
