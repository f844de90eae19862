package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	GeoIPDBPath      string
	DefaultLocale    string
	OracleAPIKey     string
	OracleModel      string
	OracleBaseURL    string
	OracleTimeout    time.Duration
	OracleMaxRetries int
	GuidanceDir      string
	DBMaxConns       int
	CORSOrigins      []string
	HTTPReadTimeout  time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:    getEnv("DEFAULT_LOCALE", "zh"),
		OracleAPIKey:     os.Getenv("ORACLE_API_KEY"),
		OracleModel:      getEnv("ORACLE_MODEL", "qwen-plus"),
		OracleBaseURL:    getEnv("ORACLE_BASE_URL", "https://dashscope.aliyuncs.com/compatible-mode/v1"),
		OracleTimeout:    time.Second * time.Duration(getEnvInt("ORACLE_TIMEOUT_SECONDS", 30)),
		OracleMaxRetries: getEnvInt("ORACLE_MAX_RETRIES", 2),
		GuidanceDir:      getEnv("GUIDANCE_DIR", "data/design_specs"),
		DBMaxConns:       getEnvInt("DB_MAX_CONNS", 10),
		CORSOrigins:      splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.OracleMaxRetries < 0 {
		cfg.OracleMaxRetries = 0
	}
	if cfg.DBMaxConns < 1 {
		cfg.DBMaxConns = 1
	}

	return cfg, nil
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
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
