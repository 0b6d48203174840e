package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/charterbook/internal/apperrors"
	"github.com/Domenick1991/charterbook/internal/calendar"
	"github.com/Domenick1991/charterbook/internal/domain"
	"github.com/Domenick1991/charterbook/internal/payment"
	"github.com/Domenick1991/charterbook/internal/service/availability"
	"github.com/Domenick1991/charterbook/internal/service/booking"
	"github.com/Domenick1991/charterbook/internal/service/ledger"
	"github.com/Domenick1991/charterbook/internal/service/pricing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WorkflowUseCase interface {
	Start(ctx context.Context, input StartInput) (*domain.Draft, error)
	Get(ctx context.Context, id string) (*domain.Draft, error)
	SubmitDetails(ctx context.Context, id string, input DetailsInput) (*domain.Draft, error)
	SubmitDateTime(ctx context.Context, id string, input DateTimeInput) (*domain.Draft, error)
	SubmitExtras(ctx context.Context, id string, input ExtrasInput) (*domain.Draft, error)
	SubmitPayment(ctx context.Context, id string, input PaymentInput) (*PaymentOutcome, error)
	ReserveBooking(ctx context.Context, id string) (*domain.ConfirmedBooking, error)
	Back(ctx context.Context, id string) (*domain.Draft, error)
	ExpireAbandonedDrafts(ctx context.Context) (int, error)
}

type DraftStore interface {
	SaveDraft(ctx context.Context, d *domain.Draft) error
	LoadDraft(ctx context.Context, id string) (*domain.Draft, error)
	DeleteDraft(ctx context.Context, id string) error
	IdleDrafts(ctx context.Context, cutoff time.Time) ([]string, error)
}

type AssetLookup interface {
	GetAsset(ctx context.Context, id string) (*domain.Asset, error)
}

type Pricer interface {
	RuleSet(category domain.Category) (pricing.RuleSet, error)
	ComputePrice(category domain.Category, date time.Time, durationHours, guests int, addonIDs []string) (*pricing.Breakdown, error)
}

type PaymentRecorder interface {
	RecordPayment(ctx context.Context, bookingID string, input ledger.RecordPaymentInput) (*domain.PaymentRecord, error)
}

type StartInput struct {
	AssetID string         `json:"asset_id" validate:"required"`
	Channel domain.Channel `json:"-" validate:"omitempty,oneof=customer staff"`
}

type DetailsInput struct {
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required,max=32"`
	SpecialRequests string `json:"special_requests" validate:"max=1000"`
}

type DateTimeInput struct {
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	StartHour     int    `json:"start_hour" validate:"min=0,max=23"`
	DurationHours int    `json:"duration_hours" validate:"required,min=1"`
	Guests        int    `json:"guests" validate:"required,min=1"`
}

type ExtrasInput struct {
	AddonIDs        []string `json:"addon_ids" validate:"dive,required"`
	SpecialRequests string   `json:"special_requests" validate:"max=1000"`
}

type PaymentInput struct {
	Method string `json:"method" validate:"required"`
}

type PaymentOutcome struct {
	Draft   *domain.Draft            `json:"draft"`
	Booking *domain.ConfirmedBooking `json:"booking"`
	Capture *payment.CaptureResult   `json:"capture,omitempty"`
}

// Settings holds the calendar rules of the workflow.
type Settings struct {
	Location         *time.Location
	MinLeadDays      int
	StaffMinLeadDays int
	DraftIdle        time.Duration
}

type Service struct {
	drafts    DraftStore
	assets    AssetLookup
	slots     availability.SlotUseCase
	pricer    Pricer
	bookings  booking.BookingUseCase
	provider  payment.Provider
	ledger    PaymentRecorder
	settings  Settings
	validator *inputValidator
	now       func() time.Time
	newID     func() string
	logger    *zap.Logger
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithIDGenerator(newID func() string) ServiceOption {
	return func(s *Service) {
		s.newID = newID
	}
}

func NewService(
	drafts DraftStore,
	assets AssetLookup,
	slots availability.SlotUseCase,
	pricer Pricer,
	bookings booking.BookingUseCase,
	provider payment.Provider,
	recorder PaymentRecorder,
	settings Settings,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		drafts:    drafts,
		assets:    assets,
		slots:     slots,
		pricer:    pricer,
		bookings:  bookings,
		provider:  provider,
		ledger:    recorder,
		settings:  settings,
		validator: newInputValidator(),
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.settings.Location == nil {
		s.settings.Location = time.UTC
	}
	return s
}

func (s *Service) Start(ctx context.Context, input StartInput) (*domain.Draft, error) {
	input.AssetID = strings.TrimSpace(input.AssetID)
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}
	if input.Channel == "" {
		input.Channel = domain.ChannelCustomer
	}

	asset, err := s.activeAsset(ctx, input.AssetID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	d := &domain.Draft{
		ID:        s.newID(),
		AssetID:   asset.ID,
		Category:  asset.Category,
		Channel:   input.Channel,
		Step:      domain.StepDetails,
		CreatedAt: now,
	}
	if err := s.save(ctx, d); err != nil {
		return nil, err
	}
	s.logger.Info("draft started", zap.String("draft_id", d.ID), zap.String("asset_id", d.AssetID), zap.String("channel", string(d.Channel)))
	return d, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Draft, error) {
	return s.load(ctx, id)
}

func (s *Service) SubmitDetails(ctx context.Context, id string, input DetailsInput) (*domain.Draft, error) {
	d, err := s.loadAt(ctx, id, domain.StepDetails)
	if err != nil {
		return nil, err
	}

	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.SpecialRequests = strings.TrimSpace(input.SpecialRequests)
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	d.Passenger = domain.Passenger{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
	}
	d.SpecialRequests = input.SpecialRequests
	return s.advance(ctx, d, domain.StepDateTime)
}

// SubmitDateTime re-resolves availability for the chosen date instead of
// trusting what the customer saw, and attaches an advisory price.
func (s *Service) SubmitDateTime(ctx context.Context, id string, input DateTimeInput) (*domain.Draft, error) {
	d, err := s.loadAt(ctx, id, domain.StepDateTime)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	date, err := time.ParseInLocation(domain.DateLayout, input.Date, s.settings.Location)
	if err != nil {
		return nil, apperrors.InvalidField("date", "must be a date in YYYY-MM-DD format")
	}
	if err := s.checkLeadTime(d.Channel, date); err != nil {
		return nil, err
	}

	asset, err := s.activeAsset(ctx, d.AssetID)
	if err != nil {
		return nil, err
	}
	rules, err := s.pricer.RuleSet(asset.Category)
	if err != nil {
		return nil, err
	}
	if !rules.AllowsDuration(input.DurationHours) {
		return nil, apperrors.InvalidField("duration_hours", fmt.Sprintf("must be one of %v", rules.AllowedDurations))
	}
	if err := checkGuests(input.Guests, rules, asset); err != nil {
		return nil, err
	}
	if err := s.checkSlot(ctx, d.AssetID, date, input.StartHour, input.DurationHours); err != nil {
		return nil, err
	}

	price, err := s.pricer.ComputePrice(asset.Category, date, input.DurationHours, input.Guests, d.AddonIDs)
	if err != nil {
		return nil, err
	}

	d.SetDate(date)
	d.StartHour = input.StartHour
	d.DurationHours = input.DurationHours
	d.Guests = input.Guests
	d.Price = price.Summary()
	return s.advance(ctx, d, domain.StepExtras)
}

func (s *Service) SubmitExtras(ctx context.Context, id string, input ExtrasInput) (*domain.Draft, error) {
	d, err := s.loadAt(ctx, id, domain.StepExtras)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	asset, err := s.activeAsset(ctx, d.AssetID)
	if err != nil {
		return nil, err
	}
	rules, err := s.pricer.RuleSet(asset.Category)
	if err != nil {
		return nil, err
	}
	addons := dedupe(input.AddonIDs)
	for _, addonID := range addons {
		if _, ok := rules.Addon(addonID); !ok {
			return nil, apperrors.UnknownAddon(addonID)
		}
	}
	if err := checkGuests(d.Guests, rules, asset); err != nil {
		return nil, err
	}

	price, err := s.pricer.ComputePrice(asset.Category, *d.Date, d.DurationHours, d.Guests, addons)
	if err != nil {
		return nil, err
	}

	d.AddonIDs = addons
	if sr := strings.TrimSpace(input.SpecialRequests); sr != "" {
		d.SpecialRequests = sr
	}
	d.Price = price.Summary()
	d.PaymentAttemptID = s.newID()
	return s.advance(ctx, d, domain.StepPayment)
}

// SubmitPayment reserves the booking, captures the deposit and records it.
// A lost slot sends the draft back to DateTime; a failed capture releases the
// booking and leaves the draft at Payment. A retry reuses the booking the
// draft already holds.
func (s *Service) SubmitPayment(ctx context.Context, id string, input PaymentInput) (*PaymentOutcome, error) {
	d, err := s.loadAt(ctx, id, domain.StepPayment)
	if err != nil {
		return nil, err
	}
	input.Method = strings.TrimSpace(input.Method)
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	b, err := s.book(ctx, d)
	if err != nil {
		return nil, err
	}

	outcome := &PaymentOutcome{Draft: d, Booking: b}
	if b.DepositAmount > 0 && b.Status == domain.BookingStatusPending {
		capture, err := s.capture(ctx, d, b, input.Method)
		if err != nil {
			return nil, err
		}
		outcome.Capture = capture

		_, err = s.ledger.RecordPayment(ctx, b.ID, ledger.RecordPaymentInput{
			Amount:        b.DepositAmount,
			Currency:      b.Currency,
			Method:        input.Method,
			TransactionID: capture.TransactionID,
			Status:        domain.PaymentCompleted,
		})
		if err != nil {
			// Captured funds stay valid; the provider callback records them idempotently.
			s.logger.Error("deposit captured but not recorded",
				zap.String("booking_id", b.ID),
				zap.String("transaction_id", capture.TransactionID),
				zap.Error(err),
			)
		}
	}

	d.BookingID = b.ID
	d.PaymentAttemptID = ""
	if _, err := s.advance(ctx, d, domain.StepConfirmation); err != nil {
		return nil, err
	}
	s.logger.Info("draft confirmed", zap.String("draft_id", d.ID), zap.String("booking_id", b.ID))
	return outcome, nil
}

// ReserveBooking books a draft at the Payment step without capturing the
// deposit, which is expected later through the payments callback. The draft
// keeps the booking id, so repeated calls and a later SubmitPayment reuse the
// same booking.
func (s *Service) ReserveBooking(ctx context.Context, id string) (*domain.ConfirmedBooking, error) {
	d, err := s.loadAt(ctx, id, domain.StepPayment)
	if err != nil {
		return nil, err
	}
	b, err := s.book(ctx, d)
	if err != nil {
		return nil, err
	}
	if d.BookingID != b.ID {
		d.BookingID = b.ID
		if err := s.save(ctx, d); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// book returns the live booking the draft holds or creates one. A lost slot
// sends the draft back to DateTime.
func (s *Service) book(ctx context.Context, d *domain.Draft) (*domain.ConfirmedBooking, error) {
	if d.BookingID != "" {
		held, err := s.bookings.GetBooking(ctx, d.BookingID)
		switch {
		case err == nil && held.Status != domain.BookingStatusCancelled:
			return held, nil
		case err != nil && !apperrors.Is(err, apperrors.CodeBookingNotFound):
			return nil, err
		}
		d.BookingID = ""
	}

	b, err := s.bookings.CreateBooking(ctx, d)
	if err == nil {
		return b, nil
	}
	if apperrors.Is(err, apperrors.CodeSlotNoLongerAvailable) {
		d.Step = domain.StepDateTime
		d.PaymentAttemptID = ""
		d.Price = nil
		if saveErr := s.save(ctx, d); saveErr != nil {
			return nil, saveErr
		}
		s.logger.Info("slot lost at payment", zap.String("draft_id", d.ID), zap.String("asset_id", d.AssetID))
	}
	return nil, err
}

func (s *Service) Back(ctx context.Context, id string) (*domain.Draft, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	leaving := d.Step
	if err := Retreat(d); err != nil {
		return nil, err
	}
	switch leaving {
	case domain.StepPayment:
		if err := s.dropHeldBooking(ctx, d); err != nil {
			return nil, err
		}
		d.PaymentAttemptID = ""
	case domain.StepExtras, domain.StepDateTime:
		d.Price = nil
	}

	if err := s.save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// dropHeldBooking releases the unpaid booking a draft holds when it leaves
// the Payment step. A paid booking pins the draft to Payment.
func (s *Service) dropHeldBooking(ctx context.Context, d *domain.Draft) error {
	if d.BookingID == "" {
		return nil
	}
	held, err := s.bookings.GetBooking(ctx, d.BookingID)
	switch {
	case apperrors.Is(err, apperrors.CodeBookingNotFound):
	case err != nil:
		return err
	case held.Status == domain.BookingStatusPending:
		if err := s.bookings.ReleaseBooking(ctx, held.ID); err != nil {
			return err
		}
	case held.Status != domain.BookingStatusCancelled:
		return apperrors.InvalidState("booking " + held.ID + " is already " + string(held.Status))
	}
	d.BookingID = ""
	return nil
}

// ExpireAbandonedDrafts deletes drafts idle for longer than the configured
// window and returns how many were removed.
func (s *Service) ExpireAbandonedDrafts(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.settings.DraftIdle)
	ids, err := s.drafts.IdleDrafts(ctx, cutoff)
	if err != nil {
		return 0, apperrors.Unavailable("session store", err)
	}

	removed := 0
	for _, id := range ids {
		if err := s.drafts.DeleteDraft(ctx, id); err != nil {
			s.logger.Warn("failed to expire draft", zap.String("draft_id", id), zap.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		s.logger.Info("expired abandoned drafts", zap.Int("count", removed))
	}
	return removed, nil
}

func (s *Service) capture(ctx context.Context, d *domain.Draft, b *domain.ConfirmedBooking, method string) (*payment.CaptureResult, error) {
	res, err := s.provider.Capture(ctx, payment.CaptureRequest{
		Amount:         b.DepositAmount,
		Currency:       b.Currency,
		BookingID:      b.ID,
		IdempotencyKey: d.PaymentAttemptID,
		Method:         method,
	})

	var failure error
	switch {
	case err != nil:
		failure = apperrors.Unavailable("payment provider", err)
	case res.Status != payment.CaptureSucceeded:
		reason := res.Reason
		if reason == "" {
			reason = "capture " + string(res.Status)
		}
		failure = apperrors.PaymentDeclined(reason)
	default:
		return res, nil
	}

	if relErr := s.bookings.ReleaseBooking(ctx, b.ID); relErr != nil {
		s.logger.Error("failed to release booking after capture failure", zap.String("booking_id", b.ID), zap.Error(relErr))
	} else {
		d.BookingID = ""
	}
	// A declined key would replay the decline.
	d.PaymentAttemptID = s.newID()
	if saveErr := s.save(ctx, d); saveErr != nil {
		s.logger.Warn("failed to save draft after capture failure", zap.String("draft_id", d.ID), zap.Error(saveErr))
	}
	return nil, failure
}

func (s *Service) checkLeadTime(channel domain.Channel, date time.Time) error {
	lead := s.settings.MinLeadDays
	if channel == domain.ChannelStaff {
		lead = s.settings.StaffMinLeadDays
	}
	earliest := calendar.DateOf(s.now(), s.settings.Location).AddDate(0, 0, lead)
	if date.Before(earliest) {
		return apperrors.InvalidField("date", "earliest bookable date is "+earliest.Format("2006-01-02"))
	}
	return nil
}

func (s *Service) checkSlot(ctx context.Context, assetID string, date time.Time, startHour, duration int) error {
	slots, err := s.slots.GetAvailableSlots(ctx, assetID, date)
	if err != nil {
		return err
	}

	var chosen *domain.Slot
	anyFree := false
	for i := range slots {
		if slots[i].Available {
			anyFree = true
		}
		if slots[i].StartHour == startHour {
			chosen = &slots[i]
		}
	}
	switch {
	case !anyFree:
		return apperrors.InvalidField("date", "no availability on this date")
	case chosen == nil:
		return apperrors.InvalidField("start_hour", "outside operating hours")
	case !chosen.Available:
		return apperrors.InvalidField("start_hour", "this time is no longer available")
	}

	if duration > 1 {
		free, err := s.slots.WindowAvailable(ctx, assetID, date, startHour, duration)
		if err != nil {
			return err
		}
		if !free {
			return apperrors.InvalidField("duration_hours", "the selected duration overlaps another booking")
		}
	}
	return nil
}

func (s *Service) activeAsset(ctx context.Context, id string) (*domain.Asset, error) {
	asset, err := s.assets.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if !asset.IsActive {
		return nil, apperrors.NotFound("asset", id)
	}
	return asset, nil
}

func (s *Service) load(ctx context.Context, id string) (*domain.Draft, error) {
	d, err := s.drafts.LoadDraft(ctx, id)
	if err != nil {
		return nil, apperrors.Unavailable("session store", err)
	}
	if d == nil {
		return nil, apperrors.NotFound("draft", id)
	}
	if err := d.InLocation(s.settings.Location); err != nil {
		return nil, apperrors.Internal("stored draft has a malformed date", err)
	}
	return d, nil
}

// loadAt loads a draft that must currently be on step.
func (s *Service) loadAt(ctx context.Context, id string, step domain.Step) (*domain.Draft, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Step != step {
		return nil, apperrors.InvalidTransition(string(d.Step), string(step))
	}
	return d, nil
}

func (s *Service) advance(ctx context.Context, d *domain.Draft, to domain.Step) (*domain.Draft, error) {
	if err := Advance(d, to); err != nil {
		return nil, err
	}
	if err := s.save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) save(ctx context.Context, d *domain.Draft) error {
	d.UpdatedAt = s.now()
	if err := s.drafts.SaveDraft(ctx, d); err != nil {
		return apperrors.Unavailable("session store", err)
	}
	return nil
}

// checkGuests applies the tighter of the category ceiling and the asset's
// own capacity.
func checkGuests(guests int, rules pricing.RuleSet, asset *domain.Asset) error {
	ceiling := rules.MaxGuests
	if asset.MaxCapacity > 0 && asset.MaxCapacity < ceiling {
		ceiling = asset.MaxCapacity
	}
	if guests < 1 || guests > ceiling {
		return apperrors.InvalidField("guests", fmt.Sprintf("must be between 1 and %d", ceiling))
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

var _ WorkflowUseCase = (*Service)(nil)
