package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Deposit  DepositConfig  `yaml:"deposit"`
	Refund   RefundConfig   `yaml:"refund"`
	Worker   WorkerConfig   `yaml:"worker"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address            string   `yaml:"address"`
	SwaggerDir         string   `yaml:"swagger_dir"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`
	RateLimitBurst     int      `yaml:"rate_limit_burst"`
	AllowedOrigins     []string `yaml:"allowed_origins"`
	StaffToken         string   `yaml:"staff_token"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	Timezone              string `yaml:"timezone"`
	Currency              string `yaml:"currency"`
	OpenHour              int    `yaml:"open_hour"`
	CloseHour             int    `yaml:"close_hour"`
	MinLeadDays           int    `yaml:"min_lead_days"`
	StaffMinLeadDays      int    `yaml:"staff_min_lead_days"`
	DraftIdleMinutes      int    `yaml:"draft_idle_minutes"`
	SlotLockSeconds       int    `yaml:"slot_lock_seconds"`
	AssetsCacheTTLSeconds int    `yaml:"assets_cache_ttl_seconds"`
	PricingRulesPath      string `yaml:"pricing_rules_path"`
}

// Location resolves the business time zone all calendar rules run in.
func (b BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(b.Timezone)
}

func (b BookingConfig) DraftIdle() time.Duration {
	return time.Duration(b.DraftIdleMinutes) * time.Minute
}

func (b BookingConfig) SlotLockTTL() time.Duration {
	return time.Duration(b.SlotLockSeconds) * time.Second
}

func (b BookingConfig) AssetsCacheTTL() time.Duration {
	return time.Duration(b.AssetsCacheTTLSeconds) * time.Second
}

// DepositConfig is the single source of the deposit schedule.
type DepositConfig struct {
	Percentage       int `yaml:"percentage"`
	DueWithinMinutes int `yaml:"due_within_minutes"`
	BalanceDueHours  int `yaml:"balance_due_hours"`
}

type RefundConfig struct {
	Type          string `yaml:"type"`
	DeadlineHours int    `yaml:"deadline_hours"`
	Percentage    int    `yaml:"percentage"`
}

type WorkerConfig struct {
	DraftSweepMinutes int `yaml:"draft_sweep_minutes"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML document, fills defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.RateLimitPerMinute == 0 {
		c.HTTP.RateLimitPerMinute = 120
	}
	if c.HTTP.RateLimitBurst == 0 {
		c.HTTP.RateLimitBurst = 20
	}
	if c.Booking.Timezone == "" {
		c.Booking.Timezone = "Asia/Dubai"
	}
	if c.Booking.Currency == "" {
		c.Booking.Currency = "AED"
	}
	if c.Booking.OpenHour == 0 && c.Booking.CloseHour == 0 {
		c.Booking.OpenHour, c.Booking.CloseHour = 8, 20
	}
	if c.Booking.MinLeadDays == 0 {
		c.Booking.MinLeadDays = 1
	}
	if c.Booking.DraftIdleMinutes == 0 {
		c.Booking.DraftIdleMinutes = 30
	}
	if c.Booking.SlotLockSeconds == 0 {
		c.Booking.SlotLockSeconds = 30
	}
	if c.Booking.AssetsCacheTTLSeconds == 0 {
		c.Booking.AssetsCacheTTLSeconds = 60
	}
	if c.Deposit.Percentage == 0 {
		c.Deposit.Percentage = 20
	}
	if c.Deposit.DueWithinMinutes == 0 {
		c.Deposit.DueWithinMinutes = 24 * 60
	}
	if c.Deposit.BalanceDueHours == 0 {
		c.Deposit.BalanceDueHours = 48
	}
	if c.Refund.Type == "" {
		c.Refund.Type = "moderate"
		c.Refund.DeadlineHours = 72
		c.Refund.Percentage = 50
	}
	if c.Worker.DraftSweepMinutes == 0 {
		c.Worker.DraftSweepMinutes = 5
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) Validate() error {
	var problems []string

	if _, err := c.Booking.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("booking.timezone %q: %v", c.Booking.Timezone, err))
	}
	if c.Booking.OpenHour < 0 || c.Booking.CloseHour > 24 || c.Booking.OpenHour >= c.Booking.CloseHour {
		problems = append(problems, fmt.Sprintf("booking hours must satisfy 0 <= open < close <= 24, got %d-%d", c.Booking.OpenHour, c.Booking.CloseHour))
	}
	if c.Booking.MinLeadDays < 0 || c.Booking.StaffMinLeadDays < 0 {
		problems = append(problems, "booking lead days cannot be negative")
	}
	if c.Booking.StaffMinLeadDays > c.Booking.MinLeadDays {
		problems = append(problems, "booking.staff_min_lead_days cannot exceed booking.min_lead_days")
	}
	if c.Deposit.Percentage < 0 || c.Deposit.Percentage > 100 {
		problems = append(problems, fmt.Sprintf("deposit.percentage must be within 0-100, got %d", c.Deposit.Percentage))
	}
	if c.Deposit.BalanceDueHours < 0 || c.Deposit.DueWithinMinutes < 0 {
		problems = append(problems, "deposit due offsets cannot be negative")
	}
	switch c.Refund.Type {
	case "flexible", "moderate", "strict":
	default:
		problems = append(problems, fmt.Sprintf("refund.type must be flexible, moderate or strict, got %q", c.Refund.Type))
	}
	if c.Refund.Percentage < 0 || c.Refund.Percentage > 100 {
		problems = append(problems, fmt.Sprintf("refund.percentage must be within 0-100, got %d", c.Refund.Percentage))
	}
	if c.Refund.DeadlineHours < 0 {
		problems = append(problems, "refund.deadline_hours cannot be negative")
	}

	if len(problems) > 0 {
		return errors.New("invalid config: " + strings.Join(problems, "; "))
	}
	return nil
}
