package infra

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	DataDir            string
	DatabaseURL        string
	RedisURL           string
	RedisPrefix        string
	AdminPassword      string
	SessionSecret      string
	SessionTTL         time.Duration
	PublicBaseURL      string
	GeoIPDBPath        string
	LogFile            string
	CORSAllowedOrigins []string
	TrustedProxies     []string
	CacheTTL           time.Duration
	FetchTimeout       time.Duration
	FetchConcurrency   int
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	WarmInterval       time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	return loadConfig(true)
}

// LoadToolConfig is LoadConfig for command line tools that never serve the
// admin surface, so ADMIN_PASSWORD may be absent.
func LoadToolConfig() (*Config, error) {
	return loadConfig(false)
}

func loadConfig(requireAdmin bool) (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "5000"),
		DataDir:            getEnv("DATA_DIR", "."),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		RedisPrefix:        getEnv("REDIS_PREFIX", "o1sub"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		SessionTTL:         time.Hour * time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)),
		PublicBaseURL:      strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		LogFile:            os.Getenv("LOG_FILE"),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		TrustedProxies:     splitList(os.Getenv("TRUSTED_PROXIES")),
		CacheTTL:           time.Second * time.Duration(getEnvInt("CACHE_TTL_SECONDS", 600)),
		FetchTimeout:       time.Second * time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 10)),
		FetchConcurrency:   getEnvInt("FETCH_CONCURRENCY", 1),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		WarmInterval:       time.Second * time.Duration(getEnvInt("WARM_INTERVAL_SECONDS", 0)),
	}

	if requireAdmin && cfg.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD is required")
	}

	if cfg.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		cfg.SessionSecret = secret
	}

	if cfg.WarmInterval <= 0 {
		cfg.WarmInterval = cfg.CacheTTL / 2
	}
	if cfg.WarmInterval <= 0 {
		cfg.WarmInterval = time.Minute
	}

	if cfg.FetchConcurrency < 1 {
		cfg.FetchConcurrency = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// randomSecret stands in for a configured secret; sessions do not survive a restart.
func randomSecret() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
