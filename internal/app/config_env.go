package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = os.Getenv("GOARTICLE_USER_AGENT")
	}
	if cfg.LocaleOverride == "" {
		cfg.LocaleOverride = os.Getenv("GOARTICLE_LOCALE")
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	}
	if cfg.RedisDB == 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("REDIS_DB"))); err == nil && n > 0 {
			cfg.RedisDB = n
		}
	}
	if cfg.MirrorDir == "" {
		cfg.MirrorDir = os.Getenv("MIRROR_DIR")
	}
	if cfg.MirrorBaseURL == "" {
		cfg.MirrorBaseURL = os.Getenv("MIRROR_BASE_URL")
	}

	// Optional durations
	if cfg.CacheTTL == 0 {
		if s := os.Getenv("CACHE_TTL"); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				cfg.CacheTTL = d
			}
		}
	}
	if cfg.FetchTimeout == 0 {
		if s := os.Getenv("FETCH_TIMEOUT"); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				cfg.FetchTimeout = d
			}
		}
	}

	// Booleans
	setBool := func(dst *bool, envKey string) {
		if *dst {
			return
		}
		switch strings.ToLower(strings.TrimSpace(os.Getenv(envKey))) {
		case "1", "true", "yes", "on":
			*dst = true
		}
	}
	setBool(&cfg.ForceRefresh, "FORCE_REFRESH")
	setBool(&cfg.JSONOutput, "JSON_OUTPUT")
	setBool(&cfg.Verbose, "VERBOSE")
}
