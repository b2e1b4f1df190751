package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr        string
	PlatformBaseURL string
	PlatformTimeout time.Duration

	// PlatformServiceToken authenticates background pollers against the
	// platform. Per-request calls forward the caller's own bearer token and
	// only fall back to this one.
	PlatformServiceToken string

	RedisAddr     string
	RedisPassword string

	// Poll cadences. Live and notification data refresh every 30s, the
	// audit-log live view every 10s.
	LivePollInterval         time.Duration
	NotificationPollInterval time.Duration
	AuditPollInterval        time.Duration

	// SlotDuration is the interview slot window used to classify a scheduled
	// interview as active. Zero means the window is unknown: any interview
	// whose start time has passed counts as completed.
	SlotDuration time.Duration

	SearchDebounce  time.Duration
	SearchMinLength int

	SessionCacheTTL time.Duration

	// Timezone used to normalize day filters on the planning view.
	Timezone string
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		HTTPAddr:                 getenv("HTTP_ADDR", ":8090"),
		PlatformBaseURL:          getenv("PLATFORM_BASE_URL", "http://127.0.0.1:5000"),
		PlatformTimeout:          getenvDuration("PLATFORM_TIMEOUT", 15*time.Second),
		PlatformServiceToken:     getenv("PLATFORM_SERVICE_TOKEN", ""),
		RedisAddr:                getenv("REDIS_ADDR", ""),
		RedisPassword:            getenv("REDIS_PASSWORD", ""),
		LivePollInterval:         getenvDuration("LIVE_POLL_INTERVAL", 30*time.Second),
		NotificationPollInterval: getenvDuration("NOTIFICATION_POLL_INTERVAL", 30*time.Second),
		AuditPollInterval:        getenvDuration("AUDIT_POLL_INTERVAL", 10*time.Second),
		SlotDuration:             getenvDuration("SLOT_DURATION", 30*time.Minute),
		SearchDebounce:           getenvDuration("SEARCH_DEBOUNCE", 500*time.Millisecond),
		SearchMinLength:          getenvInt("SEARCH_MIN_LENGTH", 2),
		SessionCacheTTL:          getenvDuration("SESSION_CACHE_TTL", 15*time.Minute),
		Timezone:                 getenv("TIMEZONE", "Europe/Paris"),
	}
}

// Location resolves the configured timezone, falling back to UTC when the
// name is unknown.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
