package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema. Nested sections
// map naturally to flags and env.
type FileConfig struct {
	URLs   []string `yaml:"urls" json:"urls"`
	Input  string   `yaml:"input" json:"input"`
	Output string   `yaml:"output" json:"output"`
	JSON   bool     `yaml:"json" json:"json"`

	Locale string `yaml:"locale" json:"locale"`

	Fetch struct {
		UserAgent     string        `yaml:"userAgent" json:"userAgent"`
		Timeout       time.Duration `yaml:"timeout" json:"timeout"`
		MaxAttempts   int           `yaml:"maxAttempts" json:"maxAttempts"`
		MaxRedirects  int           `yaml:"maxRedirects" json:"maxRedirects"`
		MaxConcurrent int           `yaml:"maxConcurrent" json:"maxConcurrent"`
	} `yaml:"fetch" json:"fetch"`

	Cache struct {
		TTL       time.Duration `yaml:"ttl" json:"ttl"`
		RedisAddr string        `yaml:"redisAddr" json:"redisAddr"`
		RedisDB   int           `yaml:"redisDB" json:"redisDB"`
	} `yaml:"cache" json:"cache"`

	Mirror struct {
		Dir      string `yaml:"dir" json:"dir"`
		BaseURL  string `yaml:"baseURL" json:"baseURL"`
		MaxBytes int64  `yaml:"maxBytes" json:"maxBytes"`
	} `yaml:"mirror" json:"mirror"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset/zero in cfg. Flags should already have been parsed; this
// lets file config supply defaults while preserving explicit flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if len(cfg.URLs) == 0 && len(fc.URLs) > 0 {
		cfg.URLs = append([]string{}, fc.URLs...)
	}
	if cfg.InputPath == "" && fc.Input != "" {
		cfg.InputPath = fc.Input
	}
	if cfg.OutputPath == "" && fc.Output != "" {
		cfg.OutputPath = fc.Output
	}
	if !cfg.JSONOutput && fc.JSON {
		cfg.JSONOutput = true
	}
	if cfg.LocaleOverride == "" && fc.Locale != "" {
		cfg.LocaleOverride = fc.Locale
	}

	if cfg.UserAgent == "" && fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if cfg.FetchTimeout == 0 && fc.Fetch.Timeout > 0 {
		cfg.FetchTimeout = fc.Fetch.Timeout
	}
	if cfg.MaxAttempts == 0 && fc.Fetch.MaxAttempts > 0 {
		cfg.MaxAttempts = fc.Fetch.MaxAttempts
	}
	if cfg.RedirectMaxHops == 0 && fc.Fetch.MaxRedirects > 0 {
		cfg.RedirectMaxHops = fc.Fetch.MaxRedirects
	}
	if cfg.MaxConcurrent == 0 && fc.Fetch.MaxConcurrent > 0 {
		cfg.MaxConcurrent = fc.Fetch.MaxConcurrent
	}

	if cfg.CacheTTL == 0 && fc.Cache.TTL > 0 {
		cfg.CacheTTL = fc.Cache.TTL
	}
	if cfg.RedisAddr == "" && fc.Cache.RedisAddr != "" {
		cfg.RedisAddr = fc.Cache.RedisAddr
	}
	if cfg.RedisDB == 0 && fc.Cache.RedisDB != 0 {
		cfg.RedisDB = fc.Cache.RedisDB
	}

	if cfg.MirrorDir == "" && fc.Mirror.Dir != "" {
		cfg.MirrorDir = fc.Mirror.Dir
	}
	if cfg.MirrorBaseURL == "" && fc.Mirror.BaseURL != "" {
		cfg.MirrorBaseURL = fc.Mirror.BaseURL
	}
	if cfg.MirrorMaxBytes == 0 && fc.Mirror.MaxBytes > 0 {
		cfg.MirrorMaxBytes = fc.Mirror.MaxBytes
	}

	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}
