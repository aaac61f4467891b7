package app

import (
	"errors"
	"strings"
	"time"
)

// Config holds runtime configuration for the application.
type Config struct {
	// Targets
	URLs      []string
	InputPath string

	// Output
	OutputPath string
	JSONOutput bool

	// Extraction
	LocaleOverride string

	// Fetching
	UserAgent       string
	FetchTimeout    time.Duration
	MaxAttempts     int
	RedirectMaxHops int
	MaxConcurrent   int

	// Caching
	CacheTTL     time.Duration
	RedisAddr    string
	RedisDB      int
	ForceRefresh bool

	// Image mirroring
	MirrorDir      string
	MirrorBaseURL  string
	MirrorMaxBytes int64

	// Behavior
	Verbose bool
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
	if len(cfg.URLs) == 0 && strings.TrimSpace(cfg.InputPath) == "" {
		return errors.New("config: at least one URL or an input file is required")
	}
	if len(cfg.URLs) > 0 && strings.TrimSpace(cfg.InputPath) != "" {
		return errors.New("config: URLs and an input file are mutually exclusive")
	}
	for _, u := range cfg.URLs {
		if strings.TrimSpace(u) == "" {
			return errors.New("config: empty URL in target list")
		}
	}
	if cfg.MaxAttempts < 0 || cfg.RedirectMaxHops < 0 || cfg.MaxConcurrent < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.MirrorMaxBytes < 0 {
		return errors.New("config: negative mirror size cap is not allowed")
	}
	return nil
}
