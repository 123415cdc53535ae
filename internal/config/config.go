package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	APIBaseURL string
	RedisURL   string // empty disables the bearer-token cache

	MatchCountdownSec int
	RequestTimeoutSec int

	MinWithdraw  int64
	StakeOptions []int64

	MsgOverrideDir string
}

func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{
		MatchCountdownSec: 10,
		RequestTimeoutSec: 8,
		MinWithdraw:       50,
		StakeOptions:      []int64{50, 100, 200},
	}

	cfg.APIBaseURL = strings.TrimSpace(os.Getenv("API_BASE_URL"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.MsgOverrideDir = strings.TrimSpace(os.Getenv("MSG_OVERRIDE_DIR"))

	if v := strings.TrimSpace(os.Getenv("MATCH_COUNTDOWN_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MatchCountdownSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("REQUEST_TIMEOUT_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RequestTimeoutSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("MIN_WITHDRAW")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MinWithdraw = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("STAKE_OPTIONS")); v != "" {
		var opts []int64
		for _, p := range strings.Split(v, ",") {
			p = strings.TrimSpace(p)
			if n, err := strconv.ParseInt(p, 10, 64); err == nil && n > 0 {
				opts = append(opts, n)
			}
		}
		if len(opts) > 0 {
			cfg.StakeOptions = opts
		}
	}

	if cfg.APIBaseURL == "" {
		return nil, errors.New("API_BASE_URL is required")
	}
	return cfg, nil
}
