package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	DatabaseURL        string
	CORSAllowedOrigins []string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Scheduling defaults used when a doctor has no explicit schedule
	// record for a date.
	DefaultDayOff time.Weekday
	DefaultSlots  []string

	// PhonePrefixes are the two digits accepted after the leading zero of a
	// 10-digit local mobile number (e.g. "77,78,79").
	PhonePrefixes []string

	// CatalogBaseURL points at the CMS that owns doctors and procedures.
	CatalogBaseURL  string
	CatalogCacheTTL time.Duration

	// StaffJWTSecret signs staff dashboard tokens. Empty disables the
	// staff surface.
	StaffJWTSecret string

	// Rate limiting for the public booking endpoint.
	RateLimitPerSecond float64
	RateLimitBurst     int

	// SendGrid reminder email configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	ReminderPollInterval time.Duration
	OfflineFlushInterval time.Duration
	StoreTimeout         time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		DefaultDayOff: getEnvAsWeekday("DEFAULT_DAY_OFF", time.Friday),
		DefaultSlots: getEnvAsSlice("DEFAULT_SLOTS", []string{
			"10:00 صباحاً",
			"11:00 صباحاً",
			"12:00 مساءً",
			"04:00 مساءً",
		}),

		PhonePrefixes: getEnvAsSlice("PHONE_PREFIXES", []string{"77", "78", "79"}),

		CatalogBaseURL:  getEnv("CATALOG_BASE_URL", ""),
		CatalogCacheTTL: getEnvAsDuration("CATALOG_CACHE_TTL", 10*time.Minute),

		StaffJWTSecret: getEnv("STAFF_JWT_SECRET", ""),

		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 5),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Dental Clinic"),

		ReminderPollInterval: getEnvAsDuration("REMINDER_POLL_INTERVAL", 15*time.Minute),
		OfflineFlushInterval: getEnvAsDuration("OFFLINE_FLUSH_INTERVAL", time.Minute),
		StoreTimeout:         getEnvAsDuration("STORE_TIMEOUT", 10*time.Second),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsSlice splits a comma-separated environment variable, trimming
// whitespace and dropping empty entries.
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}

func getEnvAsWeekday(key string, defaultValue time.Weekday) time.Weekday {
	valueStr := strings.ToLower(getEnv(key, ""))
	days := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}
	if day, ok := days[valueStr]; ok {
		return day
	}
	return defaultValue
}
