package domain

import "time"

type Category string

const (
	CategoryHelicopter Category = "helicopter"
	CategoryYacht      Category = "yacht"
	CategoryLuxuryCar  Category = "luxury-car"
	CategoryPrivateJet Category = "private-jet"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryHelicopter, CategoryYacht, CategoryLuxuryCar, CategoryPrivateJet:
		return true
	}
	return false
}

// Asset is owned by fleet management and read-only here.
type Asset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	HourlyRate  int64     `json:"hourly_rate"`
	DailyRate   *int64    `json:"daily_rate,omitempty"`
	MaxCapacity int       `json:"max_capacity"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (a Asset) EffectiveDailyRate() int64 {
	if a.DailyRate != nil {
		return *a.DailyRate
	}
	return a.HourlyRate * 24
}
