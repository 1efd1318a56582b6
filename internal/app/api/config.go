package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.temporal.io/sdk/client"

	petsapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string `mapstructure:"PORT"`
	PostgresDSN       string `mapstructure:"POSTGRES_DSN"`
	MigrateOnStart    bool   `mapstructure:"MIGRATE_ON_START"`
	TemporalAddress   string `mapstructure:"TEMPORAL_ADDRESS"`
	TemporalNamespace string `mapstructure:"TEMPORAL_NAMESPACE"`
	TemporalDisabled  bool   `mapstructure:"TEMPORAL_DISABLED"`
	JWTSecret         string `mapstructure:"AUTH_JWT_SECRET"`
	DefaultStatuses   string `mapstructure:"PETS_DEFAULT_STATUS"`
	DefaultPageSize   int    `mapstructure:"PETS_DEFAULT_PAGE_SIZE"`
	MaxPageSize       int    `mapstructure:"PETS_MAX_PAGE_SIZE"`
	LogFormat         string `mapstructure:"LOG_FORMAT"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	SentryDSN         string `mapstructure:"SENTRY_DSN"`
	Environment       string `mapstructure:"ENVIRONMENT"`
	Release           string `mapstructure:"RELEASE"`
}

var defaults = map[string]any{
	"PORT":                   "8080",
	"POSTGRES_DSN":           "",
	"MIGRATE_ON_START":       false,
	"TEMPORAL_ADDRESS":       client.DefaultHostPort,
	"TEMPORAL_NAMESPACE":     client.DefaultNamespace,
	"TEMPORAL_DISABLED":      false,
	"AUTH_JWT_SECRET":        "",
	"PETS_DEFAULT_STATUS":    string(petdomain.StatusAvailable),
	"PETS_DEFAULT_PAGE_SIZE": petsapp.DefaultPageSize,
	"PETS_MAX_PAGE_SIZE":     petsapp.MaxPageSize,
	"LOG_FORMAT":             "json",
	"LOG_LEVEL":              "info",
	"SENTRY_DSN":             "",
	"ENVIRONMENT":            "local",
	"RELEASE":                "",
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg, err := LoadWorkerConfig()
	if err != nil {
		return Config{}, err
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("AUTH_JWT_SECRET is required")
	}
	return cfg, nil
}

// LoadWorkerConfig is LoadConfig for processes that never verify tokens.
func LoadWorkerConfig() (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read configuration: %w", err)
	}
	cfg.PostgresDSN = strings.TrimSpace(cfg.PostgresDSN)
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	if cfg.DefaultPageSize <= 0 {
		return Config{}, errors.New("PETS_DEFAULT_PAGE_SIZE must be a positive integer")
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		return Config{}, errors.New("PETS_MAX_PAGE_SIZE must not be smaller than PETS_DEFAULT_PAGE_SIZE")
	}
	if _, err := cfg.PetDefaultStatuses(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// PetDefaultStatuses parses the comma-separated catalogue filter. "all"
// disables the filter.
func (c Config) PetDefaultStatuses() ([]petdomain.Status, error) {
	raw := strings.TrimSpace(c.DefaultStatuses)
	if strings.EqualFold(raw, "all") {
		return nil, nil
	}
	var statuses []petdomain.Status
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		status, err := petdomain.ParseStatus(part)
		if err != nil {
			return nil, fmt.Errorf("PETS_DEFAULT_STATUS: %w", err)
		}
		statuses = append(statuses, status)
	}
	if len(statuses) == 0 {
		return []petdomain.Status{petdomain.StatusAvailable}, nil
	}
	return statuses, nil
}

// Addr is the listen address derived from Port.
func (c Config) Addr() string {
	return ":" + c.Port
}
