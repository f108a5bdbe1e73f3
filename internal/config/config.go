package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr         string
	StaticDir    string
	DatabaseURL  string
	BlockedCIDRs []string
	BustDelay    time.Duration
}

// Load reads .env when present, then the environment, falling back to
// defaults suitable for local play.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:      ":8080",
		StaticDir: "./web",
		BustDelay: 2 * time.Second,
	}

	if v := os.Getenv("ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		cfg.StaticDir = v
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	if v := os.Getenv("BLOCKED_CIDRS"); v != "" {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				cfg.BlockedCIDRs = append(cfg.BlockedCIDRs, part)
			}
		}
	}

	if v := os.Getenv("BUST_DELAY_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return nil, fmt.Errorf("invalid BUST_DELAY_MS %q", v)
		}
		cfg.BustDelay = time.Duration(ms) * time.Millisecond
	}

	return cfg, nil
}
