package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port        string
	PostgresDSN string
	RedisAddr   string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	TokenTTL    time.Duration

	// UseSharedSeller runs the back office for a single implicit seller
	// with no ownership checks. Turning it off requires JWTSecret and
	// enables per-seller auth.
	UseSharedSeller bool
	SharedSellerID  string

	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	RateLimitPerSecond int
	RateLimitPerMinute int
	DashboardCacheTTL  time.Duration
}

// LoadConfig reads environment variables, applies defaults, and validates
// basic constraints. A .env file is honored when present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:         envDefault("JWT_ISSUER", "sellerdesk"),
		JWTAudience:       envDefault("JWT_AUDIENCE", "sellerdesk-api"),
		TokenTTL:          24 * time.Hour,
		UseSharedSeller:   !isTruthy(os.Getenv("PER_SELLER_AUTH")),
		SharedSellerID:    envDefault("SHARED_SELLER_ID", "seller-1"),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		DashboardCacheTTL: 30 * time.Second,
	}

	var err error
	if cfg.RateLimitPerSecond, err = envInt("RATE_LIMIT_PER_SECOND", 10); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitPerMinute, err = envInt("RATE_LIMIT_PER_MINUTE", 100); err != nil {
		return Config{}, err
	}
	if raw := strings.TrimSpace(os.Getenv("TOKEN_TTL_HOURS")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return Config{}, fmt.Errorf("TOKEN_TTL_HOURS must be a positive integer")
		}
		cfg.TokenTTL = time.Duration(hours) * time.Hour
	}
	if raw := strings.TrimSpace(os.Getenv("DASHBOARD_CACHE_TTL_SECONDS")); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("DASHBOARD_CACHE_TTL_SECONDS must be a positive integer")
		}
		cfg.DashboardCacheTTL = time.Duration(seconds) * time.Second
	}

	if !cfg.UseSharedSeller && cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required when PER_SELLER_AUTH is enabled")
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return val, nil
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
