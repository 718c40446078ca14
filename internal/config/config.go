package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendSheets   = "sheets"
	BackendSupabase = "supabase"
	BackendMemory   = "memory"

	HashingPlain  = "plain"
	HashingBcrypt = "bcrypt"
)

type Config struct {
	StoreBackend    string
	SpreadsheetName string
	SpreadsheetID   string
	// GoogleCredentials holds the service-account JSON, either given inline
	// or read from GOOGLE_APPLICATION_CREDENTIALS.
	GoogleCredentials []byte
	SupabaseURL       string
	SupabaseKey       string
	StoreTimeout      time.Duration

	TelegramToken string
	Port          string
	JWTSecret     string
	SessionTTL    time.Duration
	// AllowedOrigins lists the browser origins the HTTP API answers; "*"
	// allows any.
	AllowedOrigins []string

	PasswordHashing string
}

// LoadConfig reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; variables already set in
// the environment win.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		StoreBackend:    strings.ToLower(getEnv("STORE_BACKEND", BackendSheets)),
		SpreadsheetName: getEnv("SPREADSHEET_NAME", "database_keuangan"),
		SpreadsheetID:   os.Getenv("SPREADSHEET_ID"),
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseKey:     os.Getenv("SUPABASE_KEY"),
		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
		Port:            getEnv("PORT", "8080"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		PasswordHashing: strings.ToLower(getEnv("PASSWORD_HASHING", HashingPlain)),
	}

	var err error
	if cfg.StoreTimeout, err = getDuration("STORE_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	if inline := os.Getenv("GCP_SERVICE_ACCOUNT"); inline != "" {
		cfg.GoogleCredentials = []byte(inline)
	} else if path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); path != "" {
		// An unreadable key file leaves the credential empty; the store then
		// reports itself unavailable instead of stopping the process.
		if b, err := os.ReadFile(path); err == nil {
			cfg.GoogleCredentials = b
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendSheets, BackendSupabase, BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	switch c.PasswordHashing {
	case HashingPlain, HashingBcrypt:
	default:
		return fmt.Errorf("unknown PASSWORD_HASHING %q", c.PasswordHashing)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
