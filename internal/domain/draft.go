package domain

import "time"

type Step string

const (
	StepDetails      Step = "details"
	StepDateTime     Step = "datetime"
	StepExtras       Step = "extras"
	StepPayment      Step = "payment"
	StepConfirmation Step = "confirmation"
)

var steps = []Step{StepDetails, StepDateTime, StepExtras, StepPayment, StepConfirmation}

// Steps returns the workflow steps in forward order.
func Steps() []Step {
	return append([]Step(nil), steps...)
}

// Index is the position of s in the forward order, or -1.
func (s Step) Index() int {
	for i, x := range steps {
		if x == s {
			return i
		}
	}
	return -1
}

type Channel string

const (
	ChannelCustomer Channel = "customer"
	ChannelStaff    Channel = "staff"
)

// DateLayout is the civil-date form a draft's day is persisted in.
const DateLayout = "2006-01-02"

type Passenger struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// PriceSummary is the advisory price attached to a draft for display.
type PriceSummary struct {
	Total    int64  `json:"total"`
	Currency string `json:"currency"`
}

// Draft is the in-progress reservation one customer session builds across
// the workflow. It is persisted as a single flat record.
type Draft struct {
	ID               string        `json:"id"`
	AssetID          string        `json:"asset_id"`
	Category         Category      `json:"category"`
	Channel          Channel       `json:"channel"`
	Date             *time.Time    `json:"-"`
	Day              string        `json:"date,omitempty"`
	StartHour        int           `json:"start_hour"`
	DurationHours    int           `json:"duration_hours"`
	Guests           int           `json:"guests"`
	AddonIDs         []string      `json:"addon_ids,omitempty"`
	Passenger        Passenger     `json:"passenger"`
	SpecialRequests  string        `json:"special_requests,omitempty"`
	Price            *PriceSummary `json:"price,omitempty"`
	Step             Step          `json:"step"`
	PaymentAttemptID string        `json:"payment_attempt_id,omitempty"`
	BookingID        string        `json:"booking_id,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// ServiceStart is the absolute start of the selected window, or the zero time
// when no date has been chosen.
func (d Draft) ServiceStart() time.Time {
	if d.Date == nil {
		return time.Time{}
	}
	start, _ := Window(*d.Date, d.StartHour, d.DurationHours)
	return start
}

// SetDate records the chosen day. Only the civil date is persisted;
// InLocation restores the zone after a load.
func (d *Draft) SetDate(day time.Time) {
	d.Date = &day
	d.Day = day.Format(DateLayout)
}

// InLocation rebuilds Date from the persisted day at midnight in loc.
func (d *Draft) InLocation(loc *time.Location) error {
	if d.Day == "" {
		d.Date = nil
		return nil
	}
	day, err := time.ParseInLocation(DateLayout, d.Day, loc)
	if err != nil {
		return err
	}
	d.Date = &day
	return nil
}
