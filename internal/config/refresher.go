package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// RefresherConfig holds the settings for the batch recommendation refresher.
type RefresherConfig struct {
	APIURL         string
	PipelineAPIKey string
	LogLevel       string
	RequestTimeout time.Duration
	Concurrency    int
	MaxRetries     uint64
	RetryBase      time.Duration
}

// LoadRefresher reads refresher configuration from environment variables
// (and .env when present) and validates required fields.
func LoadRefresher() (*RefresherConfig, error) {
	_ = godotenv.Load()

	cfg := &RefresherConfig{
		LogLevel:  os.Getenv("LOG_LEVEL"),
		RetryBase: getEnvDuration("REFRESH_RETRY_BASE", 500*time.Millisecond),
	}

	cfg.APIURL = os.Getenv("GOTOCARD_API_URL")
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("GOTOCARD_API_URL is required")
	}

	cfg.PipelineAPIKey = os.Getenv("PIPELINE_API_KEY")
	if cfg.PipelineAPIKey == "" {
		return nil, fmt.Errorf("PIPELINE_API_KEY is required")
	}

	timeout, err := parseTimeout(os.Getenv("REQUEST_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	cfg.RequestTimeout = timeout

	concurrency, err := parsePositiveInt("REFRESH_CONCURRENCY", os.Getenv("REFRESH_CONCURRENCY"), 4)
	if err != nil {
		return nil, err
	}
	cfg.Concurrency = concurrency

	retries, err := parsePositiveInt("REFRESH_MAX_RETRIES", os.Getenv("REFRESH_MAX_RETRIES"), 3)
	if err != nil {
		return nil, err
	}
	cfg.MaxRetries = uint64(retries)

	return cfg, nil
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %v", d)
	}
	return d, nil
}

func parsePositiveInt(key, s string, defaultVal int) (int, error) {
	if s == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}
