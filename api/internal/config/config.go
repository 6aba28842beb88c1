package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	GeminiAPIKey string // seed only; the stored credential wins
	GeminiModel  string
	Engine       string

	SolveBudget    int32
	VerifyBudget   int32
	RequestTimeout time.Duration

	DatabaseURL string
	DBPath      string

	TelegramBotToken string
	OwnerChatID      int64
	WebhookURL       string

	LogLevel string
	LogDev   bool
}

// Load reads an optional .env file and then the environment.
// Variables already set in the environment are not overridden by the file.
func Load(envFiles ...string) (*Config, error) {
	if err := loadDotenv(envFiles); err != nil {
		return nil, err
	}
	cfg := &Config{
		Port: getEnv("PORT", "8000"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		Engine:       getEnv("COMPIFY_ENGINE", "gemini"),

		SolveBudget:    int32(getEnvInt("COMPIFY_SOLVE_BUDGET", 4096)),
		VerifyBudget:   int32(getEnvInt("COMPIFY_VERIFY_BUDGET", 2048)),
		RequestTimeout: getEnvDuration("COMPIFY_REQUEST_TIMEOUT", 180*time.Second),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBPath:      getEnv("COMPIFY_DB_PATH", defaultDBPath()),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		OwnerChatID:      int64(getEnvInt("TELEGRAM_OWNER_CHAT_ID", 0)),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogDev:   getEnvBool("LOG_DEV", false),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT cannot be empty")
	}
	if c.GeminiModel == "" {
		return errors.New("GEMINI_MODEL cannot be empty")
	}
	if c.SolveBudget <= 0 || c.VerifyBudget <= 0 {
		return errors.New("COMPIFY_SOLVE_BUDGET and COMPIFY_VERIFY_BUDGET must be > 0")
	}
	if c.SolveBudget <= c.VerifyBudget {
		return fmt.Errorf("COMPIFY_SOLVE_BUDGET (%d) must be larger than COMPIFY_VERIFY_BUDGET (%d)", c.SolveBudget, c.VerifyBudget)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("COMPIFY_REQUEST_TIMEOUT must be > 0")
	}
	if c.DatabaseURL == "" && c.DBPath == "" {
		return errors.New("COMPIFY_DB_PATH cannot be empty without DATABASE_URL")
	}
	return nil
}

// RequireTelegram checks the settings the bot command needs.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return errors.New("missing required env TELEGRAM_BOT_TOKEN")
	}
	if c.OwnerChatID == 0 {
		return errors.New("missing required env TELEGRAM_OWNER_CHAT_ID")
	}
	return nil
}

func loadDotenv(files []string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".compify", "compify.db")
	}
	return filepath.Join(home, ".compify", "compify.db")
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	v, ok := os.LookupEnv(k)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(k string, def bool) bool {
	v, ok := os.LookupEnv(k)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
