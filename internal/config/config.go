package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	BotToken    string
	DatabaseURL string
	AdminIDs    []int64
	Location    *time.Location
	HTTPAddr    string
	LogLevel    string
	Env         string // dev|prod
	SentryDSN   string

	// NLU-шлюз
	AnthropicKey  string
	NLUModel      string
	NLUTimeout    time.Duration
	MinConfidence float64

	UploadDir string
	SeedDemo  bool
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Europe/Moscow")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	adminIDs, err := parseIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS: %w", err)
	}

	minConf, err := parseFloat(getenv("NLU_MIN_CONFIDENCE", "0.3"))
	if err != nil {
		return nil, fmt.Errorf("NLU_MIN_CONFIDENCE: %w", err)
	}

	nluTimeout, err := time.ParseDuration(getenv("NLU_TIMEOUT", "20s"))
	if err != nil {
		return nil, fmt.Errorf("NLU_TIMEOUT: %w", err)
	}

	cfg := &Config{
		BotToken:      mustEnv("BOT_TOKEN"),
		DatabaseURL:   mustEnv("DATABASE_URL"),
		AdminIDs:      adminIDs,
		Location:      loc,
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		Env:           getenv("ENV", "dev"),
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		AnthropicKey:  mustEnv("ANTHROPIC_API_KEY"),
		NLUModel:      getenv("NLU_MODEL", "claude-3-haiku-20240307"),
		NLUTimeout:    nluTimeout,
		MinConfidence: minConf,
		UploadDir:     getenv("UPLOAD_DIR", "uploads"),
		SeedDemo:      os.Getenv("SEED_DEMO") == "1",
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("значение %v вне диапазона [0,1]", f)
	}
	return f, nil
}

func parseIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}
