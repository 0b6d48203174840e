package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/charterbook/internal/domain"
	"github.com/segmentio/kafka-go"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
	EventPaymentRecorded  = "payment_recorded"
)

type BookingEvent struct {
	Type         string    `json:"type"`
	BookingID    string    `json:"booking_id"`
	AssetID      string    `json:"asset_id"`
	Category     string    `json:"category"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	Status       string    `json:"status"`
	ServiceStart time.Time `json:"service_start"`
	TotalPrice   int64     `json:"total_price"`
	Currency     string    `json:"currency"`
	Amount       int64     `json:"amount,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *domain.ConfirmedBooking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:         eventType,
		BookingID:    b.ID,
		AssetID:      b.AssetID,
		Category:     string(b.Category),
		Email:        b.Passenger.Email,
		FirstName:    b.Passenger.FirstName,
		Status:       string(b.Status),
		ServiceStart: b.ServiceStart,
		TotalPrice:   b.TotalPrice,
		Currency:     b.Currency,
		OccurredAt:   at,
	}
}

func DecodeBookingEvent(msg kafka.Message) (BookingEvent, error) {
	var event BookingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return BookingEvent{}, fmt.Errorf("decode booking event at offset %d: %w", msg.Offset, err)
	}
	return event, nil
}
