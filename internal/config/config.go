package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	placeholderAccountSID = "your_account_sid_here"
	placeholderAuthToken  = "your_auth_token_here"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Provider   ProviderConfig
	Dispatch   DispatchConfig
	Reconciler ReconcilerConfig
	Redis      RedisConfig
	Log        LogConfig
}

type ServerConfig struct {
	Address          string
	CORSOrigins      []string
	MessageMaxLength int
}

type DatabaseConfig struct {
	Driver string
	URL    string
}

type ProviderConfig struct {
	TwilioAccountSID string
	TwilioAuthToken  string
	FromNumber       string
	WebhookURL       string
}

// TwilioConfigured is false for empty or placeholder credentials.
func (p ProviderConfig) TwilioConfigured() bool {
	if p.TwilioAccountSID == "" || p.TwilioAuthToken == "" {
		return false
	}
	return p.TwilioAccountSID != placeholderAccountSID && p.TwilioAuthToken != placeholderAuthToken
}

type DispatchConfig struct {
	Concurrency int
}

type ReconcilerConfig struct {
	Enabled   bool
	Interval  time.Duration
	BatchSize int
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

type LogConfig struct {
	Mode string
}

// LoadAll reads the whole configuration from the environment and reports
// every problem at once.
func LoadAll() (*Config, error) {
	var errs []error

	intVar := func(key string, def int) int {
		v, err := getEnvInt(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	boolVar := func(key string, def bool) bool {
		v, err := getEnvBool(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	cfg := &Config{
		Server: ServerConfig{
			Address:          getEnv("SERVER_ADDRESS", ":8080"),
			CORSOrigins:      splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
			MessageMaxLength: intVar("MESSAGE_MAX_LENGTH", 1600),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite")),
		},
		Provider: ProviderConfig{
			TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber:       getEnv("TWILIO_FROM_NUMBER", "+15551234567"),
			WebhookURL:       getEnv("SMS_WEBHOOK_URL", ""),
		},
		Dispatch: DispatchConfig{
			Concurrency: intVar("BULK_CONCURRENCY", 4),
		},
		Reconciler: ReconcilerConfig{
			Enabled:   boolVar("RECONCILE_ENABLED", false),
			Interval:  time.Duration(intVar("RECONCILE_INTERVAL_SECONDS", 300)) * time.Second,
			BatchSize: intVar("RECONCILE_BATCH_SIZE", 50),
		},
		Log: LogConfig{
			Mode: getEnv("LOG_MODE", "dev"),
		},
	}

	switch cfg.Database.Driver {
	case "sqlite":
		cfg.Database.URL = getEnv("DATABASE_URL", "sms.db")
	case "postgres":
		url, err := requireEnv("DATABASE_URL")
		if err != nil {
			errs = append(errs, err)
		}
		cfg.Database.URL = url
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be sqlite or postgres, got %q", cfg.Database.Driver))
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis = RedisConfig{
			Enabled:  true,
			Address:  addr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       intVar("REDIS_DB", 0),
			TTL:      time.Duration(intVar("REDIS_TTL_SECONDS", 86400)) * time.Second,
		}
	}

	errs = append(errs, validate(cfg)...)
	if err := joinErrors(errs); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) []error {
	var errs []error
	positive := func(key string, v int) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0", key))
		}
	}
	positive("MESSAGE_MAX_LENGTH", cfg.Server.MessageMaxLength)
	positive("BULK_CONCURRENCY", cfg.Dispatch.Concurrency)
	positive("RECONCILE_INTERVAL_SECONDS", int(cfg.Reconciler.Interval/time.Second))
	positive("RECONCILE_BATCH_SIZE", cfg.Reconciler.BatchSize)
	if cfg.Redis.Enabled {
		positive("REDIS_TTL_SECONDS", int(cfg.Redis.TTL/time.Second))
	}
	return errs
}

func requireEnv(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("missing required env var: %s", key)
	}
	return val, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid int for env %s: %q", key, v)
	}
	return i, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid bool for env %s: %q", key, v)
	}
	return b, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
