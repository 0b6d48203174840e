package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/charterbook/internal/kafka"
	"go.uber.org/zap"
)

// Sender renders booking notifications. Delivery is logged only.
type Sender struct {
	logger *zap.Logger
}

func NewSender(logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if event.Email == "" {
		s.logger.Warn("notification without recipient", zap.String("booking_id", event.BookingID), zap.String("type", event.Type))
		return nil
	}

	subject, body := Render(event)
	s.logger.Info("send email",
		zap.String("to", event.Email),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

// Render returns the subject and body for an event.
func Render(event kafka.BookingEvent) (string, string) {
	when := event.ServiceStart.Format("Mon 2 Jan 2006 15:04")
	switch event.Type {
	case kafka.EventBookingCreated:
		return "Your " + event.Category + " booking is reserved",
			fmt.Sprintf("Dear %s, booking %s for %s is reserved. Total %d %s.", event.FirstName, event.BookingID, when, event.TotalPrice, event.Currency)
	case kafka.EventBookingConfirmed:
		return "Booking confirmed",
			fmt.Sprintf("Dear %s, your deposit was received and booking %s for %s is confirmed.", event.FirstName, event.BookingID, when)
	case kafka.EventPaymentRecorded:
		return "Payment received",
			fmt.Sprintf("Dear %s, we received %d %s for booking %s.", event.FirstName, event.Amount, event.Currency, event.BookingID)
	case kafka.EventBookingCancelled:
		return "Booking cancelled",
			fmt.Sprintf("Dear %s, booking %s for %s was cancelled. Refund: %d %s.", event.FirstName, event.BookingID, when, event.Amount, event.Currency)
	default:
		return "Booking update",
			fmt.Sprintf("Dear %s, booking %s is now %s.", event.FirstName, event.BookingID, event.Status)
	}
}
