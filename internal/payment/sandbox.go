package payment

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// DeclinedMethod always fails capture in the sandbox.
const DeclinedMethod = "declined-card"

// SandboxProvider settles captures locally. Repeating an idempotency key
// returns the first result.
type SandboxProvider struct {
	mu      sync.Mutex
	results map[string]CaptureResult
	logger  *zap.Logger
}

func NewSandboxProvider(logger *zap.Logger) *SandboxProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SandboxProvider{results: make(map[string]CaptureResult), logger: logger}
}

func (p *SandboxProvider) Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.IdempotencyKey == "" {
		return nil, errors.New("idempotency key is required")
	}
	if req.Amount <= 0 {
		return nil, errors.New("capture amount must be positive")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if res, ok := p.results[req.IdempotencyKey]; ok {
		return &res, nil
	}

	res := CaptureResult{TransactionID: "sbx_" + req.IdempotencyKey, Status: CaptureSucceeded}
	if req.Method == DeclinedMethod {
		res.Status = CaptureDeclined
		res.Reason = "card declined"
	}
	p.results[req.IdempotencyKey] = res

	p.logger.Info("sandbox capture",
		zap.String("booking_id", req.BookingID),
		zap.Int64("amount", req.Amount),
		zap.String("status", string(res.Status)),
	)
	return &res, nil
}

var _ Provider = (*SandboxProvider)(nil)
