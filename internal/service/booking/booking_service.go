package booking

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/Domenick1991/charterbook/config"
	"github.com/Domenick1991/charterbook/internal/apperrors"
	"github.com/Domenick1991/charterbook/internal/domain"
	"github.com/Domenick1991/charterbook/internal/kafka"
	"github.com/Domenick1991/charterbook/internal/repository"
	"github.com/Domenick1991/charterbook/internal/service/pricing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, draft *domain.Draft) (*domain.ConfirmedBooking, error)
	GetBooking(ctx context.Context, id string) (*domain.ConfirmedBooking, error)
	ReleaseBooking(ctx context.Context, id string) error
}

type Cache interface {
	AcquireSlotLock(ctx context.Context, assetID string, start time.Time, hours int, ttl time.Duration) (bool, error)
	ReleaseSlotLock(ctx context.Context, assetID string, start time.Time, hours int) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Pricer interface {
	ComputePrice(category domain.Category, date time.Time, durationHours, guests int, addonIDs []string) (*pricing.Breakdown, error)
}

// Policy is the deposit schedule and refund policy stamped on new bookings.
type Policy struct {
	Deposit     config.DepositConfig
	Refund      domain.RefundPolicy
	SlotLockTTL time.Duration
}

type BookingService struct {
	bookings           repository.BookingRepository
	reservations       repository.ReservationRepository
	pricer             Pricer
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	policy             Policy
	now                func() time.Time
	logger             *zap.Logger
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithLogger(logger *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

// cache and producer may be nil.
func NewBookingService(
	bookings repository.BookingRepository,
	reservations repository.ReservationRepository,
	pricer Pricer,
	cache Cache,
	producer Producer,
	bookingTopic string,
	policy Policy,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		reservations: reservations,
		pricer:       pricer,
		cache:        cache,
		producer:     producer,
		bookingTopic: bookingTopic,
		policy:       policy,
		now:          time.Now,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking turns a draft that reached the Payment step into a pending
// booking. The window is reserved atomically with the insert; a concurrent
// winner yields SLOT_NO_LONGER_AVAILABLE. A draft holds at most one live
// booking: repeated calls return it.
func (s *BookingService) CreateBooking(ctx context.Context, draft *domain.Draft) (*domain.ConfirmedBooking, error) {
	if err := checkDraft(draft); err != nil {
		return nil, err
	}
	if existing, err := s.liveBooking(ctx, draft); err != nil || existing != nil {
		return existing, err
	}

	price, err := s.pricer.ComputePrice(draft.Category, *draft.Date, draft.DurationHours, draft.Guests, draft.AddonIDs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	start := draft.ServiceStart()
	if !start.After(now) {
		return nil, apperrors.SlotNoLongerAvailable("the selected time has already passed")
	}

	if s.cache != nil {
		ok, err := s.cache.AcquireSlotLock(ctx, draft.AssetID, start, draft.DurationHours, s.policy.SlotLockTTL)
		switch {
		case err != nil:
			s.logger.Warn("slot lock unavailable", zap.String("asset_id", draft.AssetID), zap.Error(err))
		case !ok:
			return nil, apperrors.SlotNoLongerAvailable("the selected slot is being booked by another customer")
		default:
			defer func() {
				if err := s.cache.ReleaseSlotLock(ctx, draft.AssetID, start, draft.DurationHours); err != nil {
					s.logger.Warn("slot lock release failed", zap.String("asset_id", draft.AssetID), zap.Error(err))
				}
			}()
		}
	}

	depositDue := now.Add(time.Duration(s.policy.Deposit.DueWithinMinutes) * time.Minute)
	balanceDue := start.Add(-time.Duration(s.policy.Deposit.BalanceDueHours) * time.Hour)
	if balanceDue.Before(depositDue) {
		balanceDue = depositDue
	}

	booking := &domain.ConfirmedBooking{
		ID:              uuid.NewString(),
		DraftID:         draft.ID,
		AssetID:         draft.AssetID,
		Category:        draft.Category,
		ServiceStart:    start,
		DurationHours:   draft.DurationHours,
		Guests:          draft.Guests,
		AddonIDs:        append([]string{}, draft.AddonIDs...),
		Passenger:       draft.Passenger,
		SpecialRequests: draft.SpecialRequests,
		TotalPrice:      price.Total,
		Currency:        price.Currency,
		DepositAmount:   pricing.Percentage(price.Total, s.policy.Deposit.Percentage),
		DepositDueAt:    depositDue,
		BalanceDueAt:    balanceDue,
		RefundPolicy:    s.policy.Refund,
		Status:          domain.BookingStatusPending,
	}

	if err := s.bookings.CreateReserved(ctx, booking); err != nil {
		switch {
		case errors.Is(err, repository.ErrDraftBooked):
			existing, err := s.liveBooking(ctx, draft)
			if err == nil && existing == nil {
				err = apperrors.Internal("draft booking vanished", repository.ErrDraftBooked)
			}
			return existing, err
		case errors.Is(err, repository.ErrSlotConflict):
			return nil, apperrors.SlotNoLongerAvailable("the selected slot was just booked")
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NotFound("asset", draft.AssetID)
		default:
			return nil, apperrors.Unavailable("reservation store", err)
		}
	}

	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("asset_id", booking.AssetID),
		zap.Int64("total", booking.TotalPrice),
	)
	if err := s.publish(ctx, kafka.EventBookingCreated, booking); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", kafka.EventBookingCreated), zap.String("booking_id", booking.ID), zap.Error(err))
	}
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*domain.ConfirmedBooking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.BookingNotFound(id)
		}
		return nil, apperrors.Unavailable("booking store", err)
	}
	return booking, nil
}

// ReleaseBooking cancels a booking whose deposit could not be captured and
// frees its window.
func (s *BookingService) ReleaseBooking(ctx context.Context, id string) error {
	current, err := s.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == domain.BookingStatusCancelled {
		return nil
	}

	updated, err := s.bookings.UpdateStatus(ctx, id, domain.BookingStatusCancelled)
	if err != nil {
		return apperrors.Unavailable("booking store", err)
	}
	if err := s.reservations.Release(ctx, id); err != nil {
		return apperrors.Unavailable("reservation store", err)
	}

	s.logger.Info("booking released", zap.String("booking_id", id))
	if err := s.publish(ctx, kafka.EventBookingCancelled, updated); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", kafka.EventBookingCancelled), zap.String("booking_id", id), zap.Error(err))
	}
	return nil
}

// liveBooking returns the draft's non-cancelled booking, or nil when it has
// none. A booking made for different terms is INVALID_STATE.
func (s *BookingService) liveBooking(ctx context.Context, draft *domain.Draft) (*domain.ConfirmedBooking, error) {
	existing, err := s.bookings.GetLiveByDraft(ctx, draft.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, apperrors.Unavailable("booking store", err)
	}
	if !sameTerms(existing, draft) {
		return nil, apperrors.InvalidState("draft " + draft.ID + " already holds booking " + existing.ID + " for different terms")
	}
	return existing, nil
}

func sameTerms(b *domain.ConfirmedBooking, d *domain.Draft) bool {
	return b.AssetID == d.AssetID &&
		b.ServiceStart.Equal(d.ServiceStart()) &&
		b.DurationHours == d.DurationHours &&
		b.Guests == d.Guests &&
		slices.Equal(b.AddonIDs, d.AddonIDs)
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.ConfirmedBooking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.NewBookingEvent(eventType, booking, s.now())
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.ID, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event)
	}
	return nil
}

func checkDraft(d *domain.Draft) error {
	if d == nil {
		return apperrors.InvalidInput("draft is required")
	}
	if d.Step != domain.StepPayment {
		return apperrors.InvalidState("draft must be at the payment step, got " + string(d.Step))
	}

	problems := map[string]string{}
	if d.AssetID == "" {
		problems["asset_id"] = "asset is required"
	}
	if d.Date == nil {
		problems["date"] = "date is required"
	}
	if d.DurationHours < 1 {
		problems["duration_hours"] = "duration is required"
	}
	if d.Guests < 1 {
		problems["guests"] = "guests are required"
	}
	if d.Passenger.Email == "" {
		problems["email"] = "passenger details are required"
	}
	if len(problems) > 0 {
		return apperrors.InvalidFields(problems)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
