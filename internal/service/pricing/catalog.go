package pricing

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/Domenick1991/charterbook/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Addon is a named flat-price extra offered for one category.
type Addon struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Price int64  `json:"price" yaml:"price"`
}

// RuleSet holds the pricing parameters of one asset category.
type RuleSet struct {
	Category             domain.Category `json:"category"`
	BasePrice            int64           `json:"base_price"`
	HourlyRate           int64           `json:"hourly_rate"`
	PeakSeasonMultiplier decimal.Decimal `json:"peak_season_multiplier"`
	WeekendMultiplier    decimal.Decimal `json:"weekend_multiplier"`
	GuestRate            int64           `json:"guest_rate"`
	MaxGuests            int             `json:"max_guests"`
	AllowedDurations     []int           `json:"allowed_durations"`
	Addons               []Addon         `json:"addons"`
}

func (r RuleSet) Addon(id string) (Addon, bool) {
	for _, a := range r.Addons {
		if a.ID == id {
			return a, true
		}
	}
	return Addon{}, false
}

func (r RuleSet) AllowsDuration(hours int) bool {
	for _, d := range r.AllowedDurations {
		if d == hours {
			return true
		}
	}
	return false
}

func (r RuleSet) clone() RuleSet {
	r.AllowedDurations = append([]int(nil), r.AllowedDurations...)
	r.Addons = append([]Addon(nil), r.Addons...)
	return r
}

func (r RuleSet) validate() error {
	if !r.Category.Valid() {
		return fmt.Errorf("unknown category %q", r.Category)
	}
	if r.BasePrice < 0 || r.HourlyRate < 0 || r.GuestRate < 0 {
		return fmt.Errorf("%s: prices cannot be negative", r.Category)
	}
	if r.PeakSeasonMultiplier.LessThanOrEqual(decimal.Zero) || r.WeekendMultiplier.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%s: multipliers must be positive", r.Category)
	}
	if r.MaxGuests < 1 {
		return fmt.Errorf("%s: max guests must be at least 1", r.Category)
	}
	if len(r.AllowedDurations) == 0 {
		return fmt.Errorf("%s: allowed durations are empty", r.Category)
	}
	for _, d := range r.AllowedDurations {
		if d < 1 {
			return fmt.Errorf("%s: duration %d is below one hour", r.Category, d)
		}
	}
	seen := make(map[string]struct{}, len(r.Addons))
	for _, a := range r.Addons {
		if a.ID == "" {
			return fmt.Errorf("%s: add-on without id", r.Category)
		}
		if a.Price < 0 {
			return fmt.Errorf("%s: add-on %s has a negative price", r.Category, a.ID)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("%s: duplicate add-on %s", r.Category, a.ID)
		}
		seen[a.ID] = struct{}{}
	}
	return nil
}

// Catalog maps categories to rule sets. It is immutable once built; every
// accessor hands out copies.
type Catalog struct {
	sets map[domain.Category]RuleSet
}

func NewCatalog(sets ...RuleSet) (*Catalog, error) {
	c := &Catalog{sets: make(map[domain.Category]RuleSet, len(sets))}
	for _, rs := range sets {
		if err := rs.validate(); err != nil {
			return nil, fmt.Errorf("invalid rule set: %w", err)
		}
		if _, dup := c.sets[rs.Category]; dup {
			return nil, fmt.Errorf("invalid rule set: duplicate category %q", rs.Category)
		}
		c.sets[rs.Category] = rs.clone()
	}
	return c, nil
}

func (c *Catalog) RuleSet(category domain.Category) (RuleSet, bool) {
	rs, ok := c.sets[category]
	if !ok {
		return RuleSet{}, false
	}
	return rs.clone(), true
}

func (c *Catalog) Categories() []domain.Category {
	out := make([]domain.Category, 0, len(c.sets))
	for cat := range c.sets {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DefaultCatalog returns the built-in rule tables.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		RuleSet{
			Category:             domain.CategoryYacht,
			BasePrice:            5000,
			HourlyRate:           1000,
			PeakSeasonMultiplier: decimal.RequireFromString("1.3"),
			WeekendMultiplier:    decimal.RequireFromString("1.2"),
			GuestRate:            100,
			MaxGuests:            30,
			AllowedDurations:     []int{1, 2, 3, 4, 6, 8},
			Addons: []Addon{
				{ID: "catering", Label: "Gourmet catering", Price: 1500},
				{ID: "dj", Label: "Onboard DJ", Price: 2000},
				{ID: "jet-ski", Label: "Jet ski", Price: 800},
				{ID: "photographer", Label: "Photographer", Price: 1200},
			},
		},
		RuleSet{
			Category:             domain.CategoryHelicopter,
			BasePrice:            4500,
			HourlyRate:           4000,
			PeakSeasonMultiplier: decimal.RequireFromString("1.25"),
			WeekendMultiplier:    decimal.RequireFromString("1.1"),
			GuestRate:            250,
			MaxGuests:            6,
			AllowedDurations:     []int{1, 2, 3, 4},
			Addons: []Addon{
				{ID: "champagne", Label: "Champagne on board", Price: 600},
				{ID: "photographer", Label: "Aerial photographer", Price: 1500},
				{ID: "hotel-transfer", Label: "Hotel transfer", Price: 400},
			},
		},
		RuleSet{
			Category:             domain.CategoryPrivateJet,
			BasePrice:            45000,
			HourlyRate:           25000,
			PeakSeasonMultiplier: decimal.RequireFromString("1.2"),
			WeekendMultiplier:    decimal.RequireFromString("1.1"),
			GuestRate:            500,
			MaxGuests:            15,
			AllowedDurations:     []int{2, 4, 8, 24},
			Addons: []Addon{
				{ID: "catering", Label: "In-flight catering", Price: 3500},
				{ID: "limousine", Label: "Limousine transfer", Price: 1800},
				{ID: "vip-terminal", Label: "VIP terminal access", Price: 2500},
			},
		},
		RuleSet{
			Category:             domain.CategoryLuxuryCar,
			BasePrice:            1500,
			HourlyRate:           400,
			PeakSeasonMultiplier: decimal.RequireFromString("1.15"),
			WeekendMultiplier:    decimal.RequireFromString("1.1"),
			GuestRate:            0,
			MaxGuests:            4,
			AllowedDurations:     []int{1, 2, 3, 4, 6, 8},
			Addons: []Addon{
				{ID: "chauffeur", Label: "Chauffeur", Price: 700},
				{ID: "child-seat", Label: "Child seat", Price: 100},
				{ID: "delivery", Label: "Delivery to address", Price: 250},
			},
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}

type catalogFile struct {
	Categories []ruleSetFile `yaml:"categories"`
}

type ruleSetFile struct {
	Category             string  `yaml:"category"`
	BasePrice            int64   `yaml:"base_price"`
	HourlyRate           int64   `yaml:"hourly_rate"`
	PeakSeasonMultiplier string  `yaml:"peak_season_multiplier"`
	WeekendMultiplier    string  `yaml:"weekend_multiplier"`
	GuestRate            int64   `yaml:"guest_rate"`
	MaxGuests            int     `yaml:"max_guests"`
	AllowedDurations     []int   `yaml:"allowed_durations"`
	Addons               []Addon `yaml:"addons"`
}

// LoadCatalog reads a rule catalog from a YAML file. Unknown keys are
// rejected.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pricing catalog: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var doc catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse pricing catalog: %w", err)
	}

	sets := make([]RuleSet, 0, len(doc.Categories))
	for _, f := range doc.Categories {
		peak, err := decimal.NewFromString(f.PeakSeasonMultiplier)
		if err != nil {
			return nil, fmt.Errorf("%s: peak_season_multiplier: %w", f.Category, err)
		}
		weekend, err := decimal.NewFromString(f.WeekendMultiplier)
		if err != nil {
			return nil, fmt.Errorf("%s: weekend_multiplier: %w", f.Category, err)
		}
		sets = append(sets, RuleSet{
			Category:             domain.Category(f.Category),
			BasePrice:            f.BasePrice,
			HourlyRate:           f.HourlyRate,
			PeakSeasonMultiplier: peak,
			WeekendMultiplier:    weekend,
			GuestRate:            f.GuestRate,
			MaxGuests:            f.MaxGuests,
			AllowedDurations:     f.AllowedDurations,
			Addons:               f.Addons,
		})
	}
	return NewCatalog(sets...)
}
