package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/charterbook/config"
	"github.com/Domenick1991/charterbook/internal/apperrors"
	"github.com/Domenick1991/charterbook/internal/domain"
	"github.com/Domenick1991/charterbook/internal/kafka"
	"github.com/Domenick1991/charterbook/internal/repository"
	"github.com/Domenick1991/charterbook/internal/service/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateReserved(ctx context.Context, booking *domain.ConfirmedBooking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.ConfirmedBooking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConfirmedBooking), args.Error(1)
}

func (m *MockBookingRepository) GetLiveByDraft(ctx context.Context, draftID string) (*domain.ConfirmedBooking, error) {
	args := m.Called(ctx, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConfirmedBooking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.ConfirmedBooking, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConfirmedBooking), args.Error(1)
}

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) FindOverlapping(ctx context.Context, assetID string, date time.Time, startHour, durationHours int) (bool, error) {
	args := m.Called(ctx, assetID, date, startHour, durationHours)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationRepository) Release(ctx context.Context, bookingID string) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) AcquireSlotLock(ctx context.Context, assetID string, start time.Time, hours int, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, assetID, start, hours, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) ReleaseSlotLock(ctx context.Context, assetID string, start time.Time, hours int) error {
	args := m.Called(ctx, assetID, start, hours)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

var (
	dubai   = time.FixedZone("GST", 4*60*60)
	testNow = time.Date(2026, 10, 15, 9, 0, 0, 0, dubai)
	// Monday, outside the peak season.
	serviceDay = time.Date(2026, 10, 19, 0, 0, 0, 0, dubai)
)

var testPolicy = Policy{
	Deposit:     config.DepositConfig{Percentage: 20, DueWithinMinutes: 24 * 60, BalanceDueHours: 48},
	Refund:      domain.RefundPolicy{Type: domain.RefundModerate, DeadlineHours: 72, Percentage: 50},
	SlotLockTTL: 30 * time.Second,
}

func paymentDraft() *domain.Draft {
	day := serviceDay
	return &domain.Draft{
		ID:            "dr-1",
		AssetID:       "yacht-1",
		Category:      domain.CategoryYacht,
		Channel:       domain.ChannelCustomer,
		Date:          &day,
		StartHour:     10,
		DurationHours: 4,
		Guests:        3,
		Passenger:     domain.Passenger{FirstName: "Layla", LastName: "Haddad", Email: "layla@example.com", Phone: "+971500000000"},
		Step:          domain.StepPayment,
	}
}

type fixture struct {
	bookings     *MockBookingRepository
	reservations *MockReservationRepository
	cache        *MockCache
	producer     *MockProducer
	service      *BookingService
}

func newFixture(opts ...BookingServiceOption) *fixture {
	f := &fixture{
		bookings:     &MockBookingRepository{},
		reservations: &MockReservationRepository{},
		cache:        &MockCache{},
		producer:     &MockProducer{},
	}
	opts = append([]BookingServiceOption{WithClock(func() time.Time { return testNow })}, opts...)
	f.service = NewBookingService(
		f.bookings, f.reservations,
		pricing.NewEngine(pricing.DefaultCatalog(), "AED"),
		f.cache, f.producer, "booking-events", testPolicy, opts...,
	)
	f.bookings.On("GetLiveByDraft", mock.Anything, "dr-1").Return(nil, repository.ErrNotFound).Maybe()
	return f
}

func TestBookingService_CreateBooking_Success(t *testing.T) {
	f := newFixture(WithNotificationsTopic("notifications"))
	ctx := context.Background()
	start := time.Date(2026, 10, 19, 10, 0, 0, 0, dubai)

	f.cache.On("AcquireSlotLock", ctx, "yacht-1", start, 4, 30*time.Second).Return(true, nil).Once()
	f.cache.On("ReleaseSlotLock", ctx, "yacht-1", start, 4).Return(nil).Once()
	f.bookings.On("CreateReserved", ctx, mock.AnythingOfType("*domain.ConfirmedBooking")).Return(nil).Once()
	f.producer.On("Publish", ctx, "booking-events", mock.Anything, mock.AnythingOfType("kafka.BookingEvent")).Return(nil).Once()
	f.producer.On("Publish", ctx, "notifications", mock.Anything, mock.AnythingOfType("kafka.BookingEvent")).Return(nil).Once()

	booking, err := f.service.CreateBooking(ctx, paymentDraft())

	require.NoError(t, err)
	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, domain.BookingStatusPending, booking.Status)
	assert.Equal(t, int64(8200), booking.TotalPrice)
	assert.Equal(t, int64(1640), booking.DepositAmount)
	assert.Equal(t, "AED", booking.Currency)
	assert.Equal(t, start, booking.ServiceStart)
	assert.Equal(t, testNow.Add(24*time.Hour), booking.DepositDueAt)
	assert.Equal(t, start.Add(-48*time.Hour), booking.BalanceDueAt)
	assert.Equal(t, testPolicy.Refund, booking.RefundPolicy)
	assert.Equal(t, "dr-1", booking.DraftID)

	f.cache.AssertExpectations(t)
	f.bookings.AssertExpectations(t)
	f.producer.AssertExpectations(t)
}

func TestBookingService_CreateBooking_RecomputesPrice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	draft := paymentDraft()
	draft.Price = &domain.PriceSummary{Total: 1, Currency: "AED"}

	f.cache.On("AcquireSlotLock", ctx, "yacht-1", mock.Anything, 4, mock.Anything).Return(true, nil)
	f.cache.On("ReleaseSlotLock", ctx, "yacht-1", mock.Anything, 4).Return(nil)
	f.bookings.On("CreateReserved", ctx, mock.MatchedBy(func(b *domain.ConfirmedBooking) bool {
		return b.TotalPrice == 8200
	})).Return(nil).Once()
	f.producer.On("Publish", ctx, "booking-events", mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.CreateBooking(ctx, draft)

	require.NoError(t, err)
	f.bookings.AssertExpectations(t)
}

func TestBookingService_CreateBooking_ShortNoticeBalanceDue(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	draft := paymentDraft()
	tomorrow := time.Date(2026, 10, 16, 0, 0, 0, 0, dubai)
	draft.Date = &tomorrow

	f.cache.On("AcquireSlotLock", ctx, "yacht-1", mock.Anything, 4, mock.Anything).Return(true, nil)
	f.cache.On("ReleaseSlotLock", ctx, "yacht-1", mock.Anything, 4).Return(nil)
	f.bookings.On("CreateReserved", ctx, mock.Anything).Return(nil)
	f.producer.On("Publish", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	booking, err := f.service.CreateBooking(ctx, draft)

	require.NoError(t, err)
	assert.Equal(t, booking.DepositDueAt, booking.BalanceDueAt)
}

func TestBookingService_CreateBooking_ValidationErrors(t *testing.T) {
	testCases := []struct {
		name         string
		mutate       func(*domain.Draft)
		expectedCode string
	}{
		{"Wrong step", func(d *domain.Draft) { d.Step = domain.StepExtras }, apperrors.CodeInvalidState},
		{"No date", func(d *domain.Draft) { d.Date = nil }, apperrors.CodeInvalidInput},
		{"No passenger", func(d *domain.Draft) { d.Passenger = domain.Passenger{} }, apperrors.CodeInvalidInput},
		{"Too many guests", func(d *domain.Draft) { d.Guests = 31 }, apperrors.CodeInvalidInput},
		{"Unknown addon", func(d *domain.Draft) { d.AddonIDs = []string{"fireworks"} }, apperrors.CodeUnknownAddon},
		{"Start passed", func(d *domain.Draft) {
			past := time.Date(2026, 10, 15, 0, 0, 0, 0, dubai)
			d.Date = &past
			d.StartHour = 8
		}, apperrors.CodeSlotNoLongerAvailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			draft := paymentDraft()
			tc.mutate(draft)

			booking, err := f.service.CreateBooking(context.Background(), draft)

			assert.Nil(t, booking)
			assert.Equal(t, tc.expectedCode, apperrors.CodeOf(err))
			f.bookings.AssertNotCalled(t, "CreateReserved", mock.Anything, mock.Anything)
		})
	}
}

func TestBookingService_CreateBooking_SlotAlreadyLocked(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.cache.On("AcquireSlotLock", ctx, "yacht-1", mock.Anything, 4, mock.Anything).Return(false, nil).Once()

	booking, err := f.service.CreateBooking(ctx, paymentDraft())

	assert.Nil(t, booking)
	assert.True(t, apperrors.Is(err, apperrors.CodeSlotNoLongerAvailable))
	f.bookings.AssertNotCalled(t, "CreateReserved", mock.Anything, mock.Anything)
	f.cache.AssertNotCalled(t, "ReleaseSlotLock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_CreateBooking_LockErrorFallsBackToStore(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.cache.On("AcquireSlotLock", ctx, "yacht-1", mock.Anything, 4, mock.Anything).Return(false, errors.New("redis down")).Once()
	f.bookings.On("CreateReserved", ctx, mock.Anything).Return(nil).Once()
	f.producer.On("Publish", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	booking, err := f.service.CreateBooking(ctx, paymentDraft())

	require.NoError(t, err)
	assert.NotNil(t, booking)
	f.cache.AssertNotCalled(t, "ReleaseSlotLock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_CreateBooking_RepositoryErrors(t *testing.T) {
	testCases := []struct {
		name         string
		repoErr      error
		expectedCode string
	}{
		{"Conflict", repository.ErrSlotConflict, apperrors.CodeSlotNoLongerAvailable},
		{"Asset gone", repository.ErrNotFound, apperrors.CodeNotFound},
		{"Store down", errors.New("connection reset"), apperrors.CodeCollaboratorUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()

			f.cache.On("AcquireSlotLock", ctx, "yacht-1", mock.Anything, 4, mock.Anything).Return(true, nil).Once()
			f.cache.On("ReleaseSlotLock", ctx, "yacht-1", mock.Anything, 4).Return(nil).Once()
			f.bookings.On("CreateReserved", ctx, mock.Anything).Return(tc.repoErr).Once()

			booking, err := f.service.CreateBooking(ctx, paymentDraft())

			assert.Nil(t, booking)
			assert.Equal(t, tc.expectedCode, apperrors.CodeOf(err))
			f.cache.AssertExpectations(t)
			f.producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func heldBooking(d *domain.Draft) *domain.ConfirmedBooking {
	return &domain.ConfirmedBooking{
		ID:            "bk-held",
		DraftID:       d.ID,
		AssetID:       d.AssetID,
		ServiceStart:  d.ServiceStart(),
		DurationHours: d.DurationHours,
		Guests:        d.Guests,
		AddonIDs:      []string{},
		Status:        domain.BookingStatusPending,
	}
}

func TestBookingService_CreateBooking_ReturnsDraftsLiveBooking(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	draft := paymentDraft()
	draft.ID = "dr-2"
	held := heldBooking(draft)

	f.bookings.On("GetLiveByDraft", ctx, "dr-2").Return(held, nil).Once()

	booking, err := f.service.CreateBooking(ctx, draft)

	require.NoError(t, err)
	assert.Same(t, held, booking)
	f.bookings.AssertNotCalled(t, "CreateReserved", mock.Anything, mock.Anything)
	f.cache.AssertNotCalled(t, "AcquireSlotLock", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_CreateBooking_LiveBookingForOtherTerms(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	draft := paymentDraft()
	draft.ID = "dr-2"
	held := heldBooking(draft)
	held.Guests = 8

	f.bookings.On("GetLiveByDraft", ctx, "dr-2").Return(held, nil).Once()

	booking, err := f.service.CreateBooking(ctx, draft)

	assert.Nil(t, booking)
	assert.Equal(t, apperrors.CodeInvalidState, apperrors.CodeOf(err))
	f.bookings.AssertNotCalled(t, "CreateReserved", mock.Anything, mock.Anything)
}

func TestBookingService_CreateBooking_ConcurrentCreateForSameDraft(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	draft := paymentDraft()
	draft.ID = "dr-2"
	held := heldBooking(draft)

	f.bookings.On("GetLiveByDraft", ctx, "dr-2").Return(nil, repository.ErrNotFound).Once()
	f.bookings.On("GetLiveByDraft", ctx, "dr-2").Return(held, nil).Once()
	f.cache.On("AcquireSlotLock", ctx, "yacht-1", mock.Anything, 4, mock.Anything).Return(true, nil).Once()
	f.cache.On("ReleaseSlotLock", ctx, "yacht-1", mock.Anything, 4).Return(nil).Once()
	f.bookings.On("CreateReserved", ctx, mock.Anything).Return(repository.ErrDraftBooked).Once()

	booking, err := f.service.CreateBooking(ctx, draft)

	require.NoError(t, err)
	assert.Equal(t, "bk-held", booking.ID)
	f.bookings.AssertExpectations(t)
	f.producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_CreateBooking_PublishFailureIgnored(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.cache.On("AcquireSlotLock", ctx, "yacht-1", mock.Anything, 4, mock.Anything).Return(true, nil)
	f.cache.On("ReleaseSlotLock", ctx, "yacht-1", mock.Anything, 4).Return(nil)
	f.bookings.On("CreateReserved", ctx, mock.Anything).Return(nil)
	f.producer.On("Publish", ctx, "booking-events", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	booking, err := f.service.CreateBooking(ctx, paymentDraft())

	require.NoError(t, err)
	assert.NotNil(t, booking)
}

func TestBookingService_NoCacheNoProducer(t *testing.T) {
	bookings := &MockBookingRepository{}
	service := NewBookingService(bookings, &MockReservationRepository{},
		pricing.NewEngine(pricing.DefaultCatalog(), "AED"), nil, nil, "", testPolicy,
		WithClock(func() time.Time { return testNow }))
	ctx := context.Background()

	bookings.On("GetLiveByDraft", ctx, "dr-1").Return(nil, repository.ErrNotFound).Once()
	bookings.On("CreateReserved", ctx, mock.Anything).Return(nil).Once()

	booking, err := service.CreateBooking(ctx, paymentDraft())

	require.NoError(t, err)
	assert.NotNil(t, booking)
	bookings.AssertExpectations(t)
}

func TestBookingService_GetBooking(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.bookings.On("GetByID", ctx, "missing").Return(nil, repository.ErrNotFound).Once()
	f.bookings.On("GetByID", ctx, "bk-1").Return(&domain.ConfirmedBooking{ID: "bk-1"}, nil).Once()

	_, err := f.service.GetBooking(ctx, "missing")
	assert.Equal(t, apperrors.CodeBookingNotFound, apperrors.CodeOf(err))

	booking, err := f.service.GetBooking(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, "bk-1", booking.ID)
}

func TestBookingService_ReleaseBooking_Success(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	pending := &domain.ConfirmedBooking{ID: "bk-1", Status: domain.BookingStatusPending}
	cancelled := &domain.ConfirmedBooking{ID: "bk-1", Status: domain.BookingStatusCancelled}

	f.bookings.On("GetByID", ctx, "bk-1").Return(pending, nil).Once()
	f.bookings.On("UpdateStatus", ctx, "bk-1", domain.BookingStatusCancelled).Return(cancelled, nil).Once()
	f.reservations.On("Release", ctx, "bk-1").Return(nil).Once()
	f.producer.On("Publish", ctx, "booking-events", "bk-1", mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingCancelled && e.Status == "cancelled"
	})).Return(nil).Once()

	require.NoError(t, f.service.ReleaseBooking(ctx, "bk-1"))

	f.bookings.AssertExpectations(t)
	f.reservations.AssertExpectations(t)
	f.producer.AssertExpectations(t)
}

func TestBookingService_ReleaseBooking_AlreadyCancelled(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.bookings.On("GetByID", ctx, "bk-1").Return(&domain.ConfirmedBooking{ID: "bk-1", Status: domain.BookingStatusCancelled}, nil).Once()

	require.NoError(t, f.service.ReleaseBooking(ctx, "bk-1"))
	f.bookings.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	f.reservations.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}
