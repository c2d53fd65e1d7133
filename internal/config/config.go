package config

import (
	"errors"
	"fmt"
	"os"

	"salonbook/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Booking    BookingConfig    `yaml:"booking"`
	Exports    ExportConfig     `yaml:"exports"`
	Providers  []ProviderSeed   `yaml:"providers"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Interval      string `yaml:"interval"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Port      int                `yaml:"port"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// BookingConfig tunes the slot engine and submit policy.
type BookingConfig struct {
	StepMinutes         int `yaml:"step_minutes"`
	MaxBookingDays      int `yaml:"max_booking_days"`
	MinAdvanceMinutes   int `yaml:"min_advance_minutes"`
	SessionTTLSeconds   int `yaml:"session_ttl_seconds"`
	StoreTimeoutSeconds int `yaml:"store_timeout_seconds"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

// ProviderSeed lets a deployment preload providers with their schedule
// and service list at startup.
type ProviderSeed struct {
	ID       string                `yaml:"id"`
	Name     string                `yaml:"name"`
	Schedule models.WeeklySchedule `yaml:"schedule"`
	Services []models.Service      `yaml:"services"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; environment variables referenced in the YAML are
	// expanded before parsing.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Booking.StepMinutes < 0 {
		return errors.New("booking step_minutes must not be negative")
	}

	return ValidateProviders(c.Providers)
}

// ValidateProviders checks seed entries for duplicate IDs and invalid
// schedules or services.
func ValidateProviders(providers []ProviderSeed) error {
	seen := make(map[string]bool, len(providers))
	for _, p := range providers {
		if p.ID == "" {
			return fmt.Errorf("provider %q has empty ID", p.Name)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate provider ID: %s", p.ID)
		}
		seen[p.ID] = true

		if len(p.Schedule.Days) > 0 {
			if err := p.Schedule.Validate(); err != nil {
				return fmt.Errorf("provider %s: %w", p.ID, err)
			}
		}
		for i := range p.Services {
			if err := p.Services[i].Validate(); err != nil {
				return fmt.Errorf("provider %s: %w", p.ID, err)
			}
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Booking.StepMinutes == 0 {
		c.Booking.StepMinutes = models.DefaultStepMinutes
	}
	if c.Booking.MaxBookingDays == 0 {
		c.Booking.MaxBookingDays = models.DefaultMaxBookingDays
	}
	if c.Booking.SessionTTLSeconds == 0 {
		c.Booking.SessionTTLSeconds = models.DefaultSessionTTL
	}
	if c.Booking.StoreTimeoutSeconds == 0 {
		c.Booking.StoreTimeoutSeconds = models.DefaultStoreTimeoutSeconds
	}
}
