package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/readableweb/goarticle/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		urlFlag        string
		inputPath      string
		outputPath     string
		jsonOutput     bool
		locale         string
		userAgent      string
		fetchTimeout   time.Duration
		maxAttempts    int
		maxRedirects   int
		maxConcurrent  int
		cacheTTL       time.Duration
		redisAddr      string
		redisDB        int
		forceRefresh   bool
		mirrorDir      string
		mirrorBaseURL  string
		mirrorMaxBytes int64
		configPath     string
		verbose        bool
	)

	flag.StringVar(&urlFlag, "url", "", "URL of the page to extract (repeatable via positional args)")
	flag.StringVar(&inputPath, "input", "", "Path to a local HTML file to extract instead of fetching")
	flag.StringVar(&outputPath, "output", "", "Path to write the result; empty writes to stdout")
	flag.BoolVar(&jsonOutput, "json", false, "Emit the full result as JSON instead of text")
	flag.StringVar(&locale, "locale", os.Getenv("GOARTICLE_LOCALE"), "Locale override, e.g. 'fi-FI'; skips inference")
	flag.StringVar(&userAgent, "fetch.ua", os.Getenv("GOARTICLE_USER_AGENT"), "Custom User-Agent for page requests")
	flag.DurationVar(&fetchTimeout, "fetch.timeout", 0, "Per-request timeout (e.g. 15s); 0 uses the default")
	flag.IntVar(&maxAttempts, "fetch.maxAttempts", 0, "Fetch attempts per URL including retries; 0 uses the default")
	flag.IntVar(&maxRedirects, "fetch.maxRedirects", 0, "Maximum redirect hops; 0 uses the default")
	flag.IntVar(&maxConcurrent, "fetch.maxConcurrent", 0, "Maximum concurrent page fetches; 0 disables the limit")
	flag.DurationVar(&cacheTTL, "cache.ttl", 0, "Article cache TTL (e.g. 30m); 0 uses the backend default")
	flag.StringVar(&redisAddr, "cache.redis", os.Getenv("REDIS_ADDR"), "Redis address for a shared article cache; empty keeps the in-memory cache")
	flag.IntVar(&redisDB, "cache.redisDB", 0, "Redis database number")
	flag.BoolVar(&forceRefresh, "refresh", false, "Bypass the cache and re-extract")
	flag.StringVar(&mirrorDir, "mirror.dir", os.Getenv("MIRROR_DIR"), "Directory to mirror article images into; empty disables mirroring")
	flag.StringVar(&mirrorBaseURL, "mirror.baseURL", os.Getenv("MIRROR_BASE_URL"), "Public base URL for mirrored images")
	flag.Int64Var(&mirrorMaxBytes, "mirror.maxBytes", 0, "Per-image download cap in bytes; 0 uses the default")
	flag.StringVar(&configPath, "config", os.Getenv("GOARTICLE_CONFIG"), "Path to a YAML or JSON config file")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := app.Config{
		InputPath:       inputPath,
		OutputPath:      outputPath,
		JSONOutput:      jsonOutput,
		LocaleOverride:  locale,
		UserAgent:       userAgent,
		FetchTimeout:    fetchTimeout,
		MaxAttempts:     maxAttempts,
		RedirectMaxHops: maxRedirects,
		MaxConcurrent:   maxConcurrent,
		CacheTTL:        cacheTTL,
		RedisAddr:       redisAddr,
		RedisDB:         redisDB,
		ForceRefresh:    forceRefresh,
		MirrorDir:       mirrorDir,
		MirrorBaseURL:   mirrorBaseURL,
		MirrorMaxBytes:  mirrorMaxBytes,
		Verbose:         verbose,
	}

	// Targets come from -url plus any positional arguments.
	if s := strings.TrimSpace(urlFlag); s != "" {
		cfg.URLs = append(cfg.URLs, s)
	}
	for _, arg := range flag.Args() {
		if s := strings.TrimSpace(arg); s != "" {
			cfg.URLs = append(cfg.URLs, s)
		}
	}

	// Precedence: flags > config file > environment.
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("config file")
			os.Exit(1)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvToConfig(&cfg)

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run(cfg app.Config) error {
	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}
