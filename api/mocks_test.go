package api

import (
	"context"
	"time"

	"github.com/Domenick1991/charterbook/internal/domain"
	"github.com/Domenick1991/charterbook/internal/service/ledger"
	"github.com/Domenick1991/charterbook/internal/service/workflow"
	"github.com/stretchr/testify/mock"
)

type MockWorkflowUseCase struct {
	mock.Mock
}

func (m *MockWorkflowUseCase) draft(args mock.Arguments) (*domain.Draft, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Draft), args.Error(1)
}

func (m *MockWorkflowUseCase) Start(ctx context.Context, input workflow.StartInput) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, input))
}

func (m *MockWorkflowUseCase) Get(ctx context.Context, id string) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, id))
}

func (m *MockWorkflowUseCase) SubmitDetails(ctx context.Context, id string, input workflow.DetailsInput) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, id, input))
}

func (m *MockWorkflowUseCase) SubmitDateTime(ctx context.Context, id string, input workflow.DateTimeInput) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, id, input))
}

func (m *MockWorkflowUseCase) SubmitExtras(ctx context.Context, id string, input workflow.ExtrasInput) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, id, input))
}

func (m *MockWorkflowUseCase) SubmitPayment(ctx context.Context, id string, input workflow.PaymentInput) (*workflow.PaymentOutcome, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.PaymentOutcome), args.Error(1)
}

func (m *MockWorkflowUseCase) ReserveBooking(ctx context.Context, id string) (*domain.ConfirmedBooking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConfirmedBooking), args.Error(1)
}

func (m *MockWorkflowUseCase) Back(ctx context.Context, id string) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, id))
}

func (m *MockWorkflowUseCase) ExpireAbandonedDrafts(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, draft *domain.Draft) (*domain.ConfirmedBooking, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConfirmedBooking), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, id string) (*domain.ConfirmedBooking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConfirmedBooking), args.Error(1)
}

func (m *MockBookingUseCase) ReleaseBooking(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockLedgerUseCase struct {
	mock.Mock
}

func (m *MockLedgerUseCase) RecordPayment(ctx context.Context, bookingID string, input ledger.RecordPaymentInput) (*domain.PaymentRecord, error) {
	args := m.Called(ctx, bookingID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentRecord), args.Error(1)
}

func (m *MockLedgerUseCase) GetStatus(ctx context.Context, bookingID string) (*domain.PaymentStatusView, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentStatusView), args.Error(1)
}

func (m *MockLedgerUseCase) QuoteRefund(ctx context.Context, bookingID string, at time.Time) (*ledger.RefundQuote, error) {
	args := m.Called(ctx, bookingID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.RefundQuote), args.Error(1)
}

func (m *MockLedgerUseCase) Cancel(ctx context.Context, bookingID string, at time.Time) (*ledger.CancelResult, error) {
	args := m.Called(ctx, bookingID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.CancelResult), args.Error(1)
}

type MockFleetUseCase struct {
	mock.Mock
}

func (m *MockFleetUseCase) List(ctx context.Context) ([]domain.Asset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Asset), args.Error(1)
}

func (m *MockFleetUseCase) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

type MockSlotUseCase struct {
	mock.Mock
}

func (m *MockSlotUseCase) GetAvailableSlots(ctx context.Context, assetID string, date time.Time) ([]domain.Slot, error) {
	args := m.Called(ctx, assetID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Slot), args.Error(1)
}

func (m *MockSlotUseCase) WindowAvailable(ctx context.Context, assetID string, date time.Time, startHour, durationHours int) (bool, error) {
	args := m.Called(ctx, assetID, date, startHour, durationHours)
	return args.Bool(0), args.Error(1)
}
