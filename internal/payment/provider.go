// Package payment holds the payment-provider port used for deposit capture.
package payment

import "context"

type CaptureStatus string

const (
	CaptureSucceeded CaptureStatus = "succeeded"
	CaptureDeclined  CaptureStatus = "declined"
	CapturePending   CaptureStatus = "pending"
)

type CaptureRequest struct {
	Amount         int64
	Currency       string
	BookingID      string
	IdempotencyKey string
	Method         string
}

type CaptureResult struct {
	TransactionID string        `json:"transaction_id"`
	Status        CaptureStatus `json:"status"`
	Reason        string        `json:"reason,omitempty"`
}

// Provider captures funds. A returned error means the provider could not be
// reached; a declined capture is reported through CaptureResult.Status.
type Provider interface {
	Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error)
}
