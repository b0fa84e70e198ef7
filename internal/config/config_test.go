package config

import (
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

var envMu sync.Mutex

func TestLoadAll_Defaults(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)

	cfg, err := LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}

	if cfg.Server.Address != ":8080" {
		t.Fatalf("unexpected Server.Address default: %q", cfg.Server.Address)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected CORS default: %v", cfg.Server.CORSOrigins)
	}
	if cfg.Server.MessageMaxLength != 1600 {
		t.Fatalf("unexpected MessageMaxLength default: %d", cfg.Server.MessageMaxLength)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.URL != "sms.db" {
		t.Fatalf("unexpected Database default: %+v", cfg.Database)
	}
	if cfg.Provider.FromNumber != "+15551234567" {
		t.Fatalf("unexpected FromNumber default: %q", cfg.Provider.FromNumber)
	}
	if cfg.Provider.TwilioConfigured() {
		t.Fatalf("expected Twilio not configured by default")
	}
	if cfg.Dispatch.Concurrency != 4 {
		t.Fatalf("unexpected Concurrency default: %d", cfg.Dispatch.Concurrency)
	}
	if cfg.Reconciler.Enabled || cfg.Reconciler.Interval != 300*time.Second || cfg.Reconciler.BatchSize != 50 {
		t.Fatalf("unexpected Reconciler default: %+v", cfg.Reconciler)
	}
	if cfg.Redis.Enabled {
		t.Fatalf("expected Redis disabled when REDIS_ADDR not set")
	}
}

func TestLoadAll_Postgres(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)

	t.Setenv("DATABASE_DRIVER", "postgres")
	_, err := LoadAll()
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected error mentioning DATABASE_URL, got: %v", err)
	}

	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/db?sslmode=disable")
	cfg, err := LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}
	if cfg.Database.URL != "postgres://u:p@localhost:5432/db?sslmode=disable" {
		t.Fatalf("unexpected Database.URL: %q", cfg.Database.URL)
	}
}

func TestLoadAll_UnknownDriver(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)

	t.Setenv("DATABASE_DRIVER", "mysql")
	_, err := LoadAll()
	if err == nil || !strings.Contains(err.Error(), "DATABASE_DRIVER") {
		t.Fatalf("expected error mentioning DATABASE_DRIVER, got: %v", err)
	}
}

func TestLoadAll_WithRedis(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)

	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_PASSWORD", "secret")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_TTL_SECONDS", "42")

	cfg, err := LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}

	if !cfg.Redis.Enabled {
		t.Fatalf("expected Redis enabled")
	}
	if cfg.Redis.Address != "localhost:6379" || cfg.Redis.Password != "secret" {
		t.Fatalf("unexpected Redis config: %+v", cfg.Redis)
	}
	if cfg.Redis.DB != 3 {
		t.Fatalf("unexpected Redis.DB: %d", cfg.Redis.DB)
	}
	if cfg.Redis.TTL != 42*time.Second {
		t.Fatalf("unexpected Redis.TTL: %v", cfg.Redis.TTL)
	}
}

func TestLoadAll_ProviderAndServer(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)

	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "tok")
	t.Setenv("TWILIO_FROM_NUMBER", "+1999")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("RECONCILE_ENABLED", "true")

	cfg, err := LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}
	if !cfg.Provider.TwilioConfigured() || cfg.Provider.FromNumber != "+1999" {
		t.Fatalf("unexpected provider config: %+v", cfg.Provider)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected CORS origins: %v", cfg.Server.CORSOrigins)
	}
	if !cfg.Reconciler.Enabled {
		t.Fatalf("expected reconciler enabled")
	}
}

func TestProviderConfig_TwilioConfigured(t *testing.T) {
	cases := []struct {
		name string
		cfg  ProviderConfig
		want bool
	}{
		{"empty", ProviderConfig{}, false},
		{"sid only", ProviderConfig{TwilioAccountSID: "AC1"}, false},
		{"placeholder sid", ProviderConfig{TwilioAccountSID: "your_account_sid_here", TwilioAuthToken: "t"}, false},
		{"placeholder token", ProviderConfig{TwilioAccountSID: "AC1", TwilioAuthToken: "your_auth_token_here"}, false},
		{"real", ProviderConfig{TwilioAccountSID: "AC1", TwilioAuthToken: "t"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.TwilioConfigured(); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestLoadAll_InvalidValues(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	cases := []struct {
		name string
		key  string
		val  string
	}{
		{"invalid MESSAGE_MAX_LENGTH", "MESSAGE_MAX_LENGTH", "abc"},
		{"invalid BULK_CONCURRENCY", "BULK_CONCURRENCY", "many"},
		{"invalid RECONCILE_INTERVAL_SECONDS", "RECONCILE_INTERVAL_SECONDS", "nope"},
		{"invalid RECONCILE_BATCH_SIZE", "RECONCILE_BATCH_SIZE", "x"},
		{"invalid RECONCILE_ENABLED", "RECONCILE_ENABLED", "maybe"},
		{"invalid REDIS_DB", "REDIS_DB", "bad"},
		{"invalid REDIS_TTL_SECONDS", "REDIS_TTL_SECONDS", "bad"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearTestEnv(t)

			// Enable redis only for redis-related values.
			if strings.HasPrefix(tc.key, "REDIS_") {
				t.Setenv("REDIS_ADDR", "localhost:6379")
			}
			t.Setenv(tc.key, tc.val)

			_, err := LoadAll()
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.key) {
				t.Fatalf("expected error mentioning %s, got: %v", tc.key, err)
			}
		})
	}
}

func TestLoadAll_ValidationFailures(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	cases := []struct {
		key string
		val string
	}{
		{"MESSAGE_MAX_LENGTH", "0"},
		{"BULK_CONCURRENCY", "-1"},
		{"RECONCILE_INTERVAL_SECONDS", "0"},
		{"RECONCILE_BATCH_SIZE", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			clearTestEnv(t)
			t.Setenv(tc.key, tc.val)

			_, err := LoadAll()
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.key) {
				t.Fatalf("expected error mentioning %s, got: %v", tc.key, err)
			}
		})
	}
}

func TestLoadAll_ReportsAllErrors(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)
	t.Setenv("BULK_CONCURRENCY", "0")
	t.Setenv("RECONCILE_BATCH_SIZE", "0")

	_, err := LoadAll()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	msg := err.Error()
	if !strings.Contains(msg, "BULK_CONCURRENCY") || !strings.Contains(msg, "RECONCILE_BATCH_SIZE") {
		t.Fatalf("expected both keys in error, got: %v", err)
	}
}

func TestRequireEnv(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)

	_, err := requireEnv("MISSING_KEY")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}

	t.Setenv("FOO", "bar")
	v, err := requireEnv("FOO")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "bar" {
		t.Fatalf("expected %q, got %q", "bar", v)
	}
}

func TestGetEnv(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)

	if got := getEnv("NOPE", "default"); got != "default" {
		t.Fatalf("expected default, got %q", got)
	}

	t.Setenv("A", "x")
	if got := getEnv("A", "default"); got != "x" {
		t.Fatalf("expected x, got %q", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)

	got, err := getEnvInt("MISSING", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7 {
		t.Fatalf("expected default 7, got %d", got)
	}

	t.Setenv("N", "123")
	got, err = getEnvInt("N", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 123 {
		t.Fatalf("expected 123, got %d", got)
	}

	t.Setenv("BAD", "abc")
	_, err = getEnvInt("BAD", 7)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "BAD") {
		t.Fatalf("expected error mentioning BAD, got: %v", err)
	}
}

func TestGetEnvBool(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)

	if got, err := getEnvBool("MISSING", true); err != nil || !got {
		t.Fatalf("expected default true, got %v, %v", got, err)
	}
	t.Setenv("A", "false")
	if got, err := getEnvBool("A", true); err != nil || got {
		t.Fatalf("expected false, got %v, %v", got, err)
	}
	t.Setenv("BAD", "nah")
	if _, err := getEnvBool("BAD", true); err == nil || !strings.Contains(err.Error(), "BAD") {
		t.Fatalf("expected error mentioning BAD, got %v", err)
	}
}

func TestJoinErrors(t *testing.T) {
	if err := joinErrors(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	e1 := errors.New("one")
	e2 := errors.New("two")
	err := joinErrors([]error{e1, e2})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}

	if !errors.Is(err, e1) {
		t.Fatalf("expected errors.Is(err, e1) to be true")
	}
	if !errors.Is(err, e2) {
		t.Fatalf("expected errors.Is(err, e2) to be true")
	}
}

// clearTestEnv unsets every key LoadAll reads; t.Setenv restores them afterwards.
func clearTestEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"SERVER_ADDRESS",
		"CORS_ALLOWED_ORIGINS",
		"MESSAGE_MAX_LENGTH",
		"DATABASE_DRIVER",
		"DATABASE_URL",
		"TWILIO_ACCOUNT_SID",
		"TWILIO_AUTH_TOKEN",
		"TWILIO_FROM_NUMBER",
		"SMS_WEBHOOK_URL",
		"BULK_CONCURRENCY",
		"RECONCILE_ENABLED",
		"RECONCILE_INTERVAL_SECONDS",
		"RECONCILE_BATCH_SIZE",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"REDIS_TTL_SECONDS",
		"LOG_MODE",
		"FOO",
		"A",
		"N",
		"BAD",
	}
	for _, k := range keys {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}
