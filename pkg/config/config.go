package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the scanner
// ⭐ SSOT: 所有環境變數只在這裡讀取
type Config struct {
	Env string // development, staging, production

	// Delivery
	Discord DiscordConfig

	// Watchlist YAML (empty = embedded default list)
	WatchlistPath string

	// Upstream endpoints
	Upstream UpstreamConfig

	// HTTP session
	HTTP HTTPConfig

	// Scan behaviour
	Scan ScanConfig

	// Redis (optional settlement cache)
	Redis RedisConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DiscordConfig holds webhook delivery configuration
type DiscordConfig struct {
	WebhookURL string
	Username   string
}

// UpstreamConfig holds base URLs of the exchange endpoints
type UpstreamConfig struct {
	TWSEBaseURL string
	MISBaseURL  string
	TPExBaseURL string
	MOPSBaseURL string
}

// HTTPConfig holds the shared HTTP session configuration
type HTTPConfig struct {
	Timeout            time.Duration
	UserAgent          string
	InsecureSkipVerify bool
	RequestInterval    time.Duration // minimum gap between upstream requests, 0 = unpaced
}

// ScanConfig holds per-run tuning knobs
type ScanConfig struct {
	MISBatchSize      int
	DispatchDelay     time.Duration
	DisclosureEnabled bool
	Schedule          string // cron spec with seconds, used by `schedule`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// Load reads configuration from environment variables
// ⭐ SSOT: 只有這個函式會呼叫 os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Discord: DiscordConfig{
			WebhookURL: getEnv("DISCORD_WEBHOOK_URL", ""),
			Username:   getEnv("DISCORD_USERNAME", "CB 戰情室"),
		},

		WatchlistPath: getEnv("WATCHLIST_PATH", ""),

		Upstream: UpstreamConfig{
			TWSEBaseURL: getEnv("TWSE_BASE_URL", "https://www.twse.com.tw"),
			MISBaseURL:  getEnv("TWSE_MIS_BASE_URL", "https://mis.twse.com.tw"),
			TPExBaseURL: getEnv("TPEX_BASE_URL", "https://www.tpex.org.tw"),
			MOPSBaseURL: getEnv("MOPS_BASE_URL", "https://mops.twse.com.tw"),
		},

		HTTP: HTTPConfig{
			Timeout:            getEnvAsDuration("HTTP_TIMEOUT", "30s"),
			UserAgent:          getEnv("HTTP_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
			InsecureSkipVerify: getEnvAsBool("HTTP_INSECURE_SKIP_VERIFY", false),
			RequestInterval:    getEnvAsDuration("HTTP_REQUEST_INTERVAL", "300ms"),
		},

		Scan: ScanConfig{
			MISBatchSize:      getEnvAsInt("MIS_BATCH_SIZE", 20),
			DispatchDelay:     getEnvAsDuration("DISPATCH_DELAY", "1s"),
			DisclosureEnabled: getEnvAsBool("DISCLOSURE_ENABLED", true),
			Schedule:          getEnv("SCAN_SCHEDULE", "0 30 15 * * 1-5"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// DeliveryEnabled reports whether a webhook endpoint is configured.
// Without one the scanner falls back to console output (dry run).
func (c *Config) DeliveryEnabled() bool {
	return c.Discord.WebhookURL != ""
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	// production 必須有 webhook，其他環境改用 console 輸出
	if c.Env == "production" && c.Discord.WebhookURL == "" {
		return fmt.Errorf("DISCORD_WEBHOOK_URL is required when ENV=production")
	}

	if c.Scan.MISBatchSize <= 0 {
		return fmt.Errorf("MIS_BATCH_SIZE must be > 0")
	}

	if c.HTTP.RequestInterval < 0 {
		return fmt.Errorf("HTTP_REQUEST_INTERVAL must be >= 0")
	}

	if c.Scan.DispatchDelay < 0 {
		return fmt.Errorf("DISPATCH_DELAY must be >= 0")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
