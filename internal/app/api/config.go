package api

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the API and worker processes.
type Config struct {
	Port                  string
	PostgresDSN           string
	TemporalAddress       string
	TemporalNamespace     string
	TemporalDisabled      bool
	JWTSecret             string
	JWTSecretGenerated    bool
	SessionTTL            time.Duration
	SessionPurgeInterval  time.Duration
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	RedisStream           string
	AdoptionRatePerMinute int
	StrictDecisions       bool
	AutoRejectCompeting   bool
	AdminEmail            string
	AdminPassword         string
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:                envDefault("PORT", "8080"),
		PostgresDSN:         strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:     envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:   envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:    isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		JWTSecret:           strings.TrimSpace(os.Getenv("JWT_SECRET")),
		RedisAddr:           strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisStream:         envDefault("REDIS_STREAM", "adoption-events"),
		StrictDecisions:     isTruthy(os.Getenv("ADOPTION_STRICT_DECISIONS")),
		AutoRejectCompeting: isTruthy(os.Getenv("ADOPTION_AUTO_REJECT_COMPETING")),
		AdminEmail:          strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		AdminPassword:       os.Getenv("ADMIN_PASSWORD"),
	}
	hours, err := positiveInt("SESSION_TTL_HOURS", 24)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTTL = time.Duration(hours) * time.Hour

	minutes, err := positiveInt("SESSION_PURGE_INTERVAL_MINUTES", 60)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionPurgeInterval = time.Duration(minutes) * time.Minute

	if cfg.AdoptionRatePerMinute, err = positiveInt("ADOPTION_RATE_PER_MINUTE", 10); err != nil {
		return Config{}, err
	}
	if raw := strings.TrimSpace(os.Getenv("REDIS_DB")); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil || db < 0 {
			return Config{}, fmt.Errorf("REDIS_DB must be a non-negative integer")
		}
		cfg.RedisDB = db
	}
	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return Config{}, fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	if cfg.JWTSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return Config{}, err
		}
		cfg.JWTSecret = secret
		cfg.JWTSecretGenerated = true
	}
	return cfg, nil
}

func positiveInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return value, nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
