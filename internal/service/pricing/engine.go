// Package pricing computes charter prices from an immutable rule catalog.
package pricing

import (
	"fmt"
	"time"

	"github.com/Domenick1991/charterbook/internal/apperrors"
	"github.com/Domenick1991/charterbook/internal/calendar"
	"github.com/Domenick1991/charterbook/internal/domain"
	"github.com/shopspring/decimal"
)

type AddonLine struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Price int64  `json:"price"`
}

// Breakdown lists every term that contributed to Total so the figure can be
// displayed and audited without recomputation.
type Breakdown struct {
	Category             domain.Category `json:"category"`
	Currency             string          `json:"currency"`
	DurationHours        int             `json:"duration_hours"`
	Guests               int             `json:"guests"`
	BasePrice            int64           `json:"base_price"`
	DurationSurcharge    int64           `json:"duration_surcharge"`
	PeakSeasonApplied    bool            `json:"peak_season_applied"`
	PeakSeasonMultiplier decimal.Decimal `json:"peak_season_multiplier"`
	WeekendApplied       bool            `json:"weekend_applied"`
	WeekendMultiplier    decimal.Decimal `json:"weekend_multiplier"`
	AdjustedSubtotal     decimal.Decimal `json:"adjusted_subtotal"`
	GuestSurcharge       int64           `json:"guest_surcharge"`
	Addons               []AddonLine     `json:"addons"`
	Total                int64           `json:"total"`
}

func (b *Breakdown) Summary() *domain.PriceSummary {
	return &domain.PriceSummary{Total: b.Total, Currency: b.Currency}
}

type Engine struct {
	catalog  *Catalog
	currency string
}

func NewEngine(catalog *Catalog, currency string) *Engine {
	return &Engine{catalog: catalog, currency: currency}
}

func (e *Engine) RuleSet(category domain.Category) (RuleSet, error) {
	rs, ok := e.catalog.RuleSet(category)
	if !ok {
		return RuleSet{}, apperrors.InvalidField("category", "unsupported category "+string(category))
	}
	return rs, nil
}

// ComputePrice applies, in order: base price, additional hours, the peak and
// weekend multipliers, the per-guest surcharge and add-ons. The total is
// rounded half-up to a whole currency unit.
func (e *Engine) ComputePrice(category domain.Category, date time.Time, durationHours, guests int, addonIDs []string) (*Breakdown, error) {
	rs, err := e.RuleSet(category)
	if err != nil {
		return nil, err
	}
	if durationHours < 1 {
		return nil, apperrors.InvalidField("duration_hours", "duration must be at least one hour")
	}
	if guests < 1 || guests > rs.MaxGuests {
		return nil, apperrors.InvalidField("guests", guestRangeMessage(rs.MaxGuests))
	}

	b := &Breakdown{
		Category:             category,
		Currency:             e.currency,
		DurationHours:        durationHours,
		Guests:               guests,
		BasePrice:            rs.BasePrice,
		DurationSurcharge:    int64(durationHours-1) * rs.HourlyRate,
		PeakSeasonMultiplier: decimal.NewFromInt(1),
		WeekendMultiplier:    decimal.NewFromInt(1),
		Addons:               []AddonLine{},
	}

	price := decimal.NewFromInt(b.BasePrice + b.DurationSurcharge)
	if calendar.IsPeakSeason(date) {
		b.PeakSeasonApplied = true
		b.PeakSeasonMultiplier = rs.PeakSeasonMultiplier
		price = price.Mul(rs.PeakSeasonMultiplier)
	}
	if calendar.IsWeekend(date) {
		b.WeekendApplied = true
		b.WeekendMultiplier = rs.WeekendMultiplier
		price = price.Mul(rs.WeekendMultiplier)
	}
	b.AdjustedSubtotal = price

	b.GuestSurcharge = int64(guests-1) * rs.GuestRate
	price = price.Add(decimal.NewFromInt(b.GuestSurcharge))

	seen := make(map[string]struct{}, len(addonIDs))
	for _, id := range addonIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		addon, ok := rs.Addon(id)
		if !ok {
			return nil, apperrors.UnknownAddon(id)
		}
		b.Addons = append(b.Addons, AddonLine{ID: addon.ID, Label: addon.Label, Price: addon.Price})
		price = price.Add(decimal.NewFromInt(addon.Price))
	}

	b.Total = price.Round(0).IntPart()
	return b, nil
}

func guestRangeMessage(max int) string {
	return fmt.Sprintf("guests must be between 1 and %d", max)
}

// Percentage returns pct percent of amount rounded half-up to a whole unit.
func Percentage(amount int64, pct int) int64 {
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(int64(pct))).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}
