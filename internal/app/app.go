// Package app wires fetching, extraction, caching and image mirroring into a
// runnable pipeline behind a flat Config.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/readableweb/goarticle/internal/article"
	"github.com/readableweb/goarticle/internal/cache"
	"github.com/readableweb/goarticle/internal/extract"
	"github.com/readableweb/goarticle/internal/fetch"
	"github.com/readableweb/goarticle/internal/mirror"
)

type App struct {
	cfg       Config
	fetcher   *fetch.Client
	extractor *extract.Readability
	cache     cache.Cache
	mirror    *mirror.Mirror
	redis     *redis.Client

	// Out receives rendered results; defaults to stdout or cfg.OutputPath.
	Out io.Writer
}

func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	a := &App{
		cfg:       cfg,
		extractor: extract.New(),
		fetcher: &fetch.Client{
			UserAgent:         cfg.UserAgent,
			MaxAttempts:       cfg.MaxAttempts,
			PerRequestTimeout: cfg.FetchTimeout,
			RedirectMaxHops:   cfg.RedirectMaxHops,
			MaxConcurrent:     cfg.MaxConcurrent,
		},
	}

	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		// Ping is best-effort: fall back to memory so an offline Redis never
		// blocks extraction.
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := a.redis.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; using in-memory cache")
			_ = a.redis.Close()
			a.redis = nil
		}
	}
	if a.redis != nil {
		a.cache = cache.NewRedis(a.redis, "", cfg.CacheTTL)
	} else {
		a.cache = cache.NewMemory(cfg.CacheTTL)
	}

	if cfg.MirrorDir != "" {
		a.mirror = &mirror.Mirror{
			Dir:          cfg.MirrorDir,
			BaseURL:      cfg.MirrorBaseURL,
			MaxBytes:     cfg.MirrorMaxBytes,
			IgnoreErrors: true,
		}
	}

	return a, nil
}

func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// Run extracts every configured target and writes the rendered results. A
// single failing URL aborts the run; partial output is not written.
func (a *App) Run(ctx context.Context) error {
	results, err := a.collect(ctx)
	if err != nil {
		return err
	}

	out := a.Out
	if out == nil {
		if a.cfg.OutputPath != "" {
			f, err := os.Create(a.cfg.OutputPath)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			out = f
		} else {
			out = os.Stdout
		}
	}
	return a.render(out, results)
}

func (a *App) collect(ctx context.Context) ([]*article.Content, error) {
	if a.cfg.InputPath != "" {
		raw, err := os.ReadFile(a.cfg.InputPath)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		res, err := a.extractor.Extract(string(raw), extract.Options{LocaleOverride: a.cfg.LocaleOverride})
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", a.cfg.InputPath, err)
		}
		return []*article.Content{res}, nil
	}

	results := make([]*article.Content, len(a.cfg.URLs))
	errs := make([]error, len(a.cfg.URLs))
	var wg sync.WaitGroup
	for i, u := range a.cfg.URLs {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			results[i], errs[i] = a.ExtractURL(ctx, u)
		}(i, u)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", a.cfg.URLs[i], err)
		}
	}
	return results, nil
}

// ExtractURL resolves one URL through the cache, fetch and extraction layers.
// Concurrency is bounded by the fetch client's limiter.
func (a *App) ExtractURL(ctx context.Context, rawURL string) (*article.Content, error) {
	if !a.cfg.ForceRefresh {
		if hit, ok := a.cache.Get(ctx, rawURL); ok {
			log.Debug().Str("url", rawURL).Msg("cache hit")
			return hit, nil
		}
	}

	body, finalURL, err := a.fetcher.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	res, err := a.extractor.Extract(string(body), extract.Options{
		URL:            finalURL,
		LocaleOverride: a.cfg.LocaleOverride,
	})
	if err != nil {
		return nil, err
	}

	if a.mirror != nil {
		if err := a.mirror.Run(ctx, res); err != nil {
			log.Warn().Err(err).Str("url", rawURL).Msg("image mirroring failed")
		}
	}

	// Cache under the requested URL so redirected fetches still hit next time.
	a.cache.Set(ctx, rawURL, res, a.cfg.CacheTTL)
	if !strings.EqualFold(finalURL, rawURL) {
		a.cache.Set(ctx, finalURL, res, a.cfg.CacheTTL)
	}
	return res, nil
}

func (a *App) render(w io.Writer, results []*article.Content) error {
	if a.cfg.JSONOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			return enc.Encode(results[0])
		}
		return enc.Encode(results)
	}
	for i, res := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w, "\n---"); err != nil {
				return err
			}
		}
		if err := writeText(w, res); err != nil {
			return err
		}
	}
	return nil
}

func writeText(w io.Writer, res *article.Content) error {
	var b strings.Builder
	if res.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", res.Title)
	}
	if res.Author != "" {
		fmt.Fprintf(&b, "Author: %s\n", res.Author)
	}
	if res.SiteName != "" {
		fmt.Fprintf(&b, "Site: %s\n", res.SiteName)
	}
	if res.PublishedTime != nil {
		fmt.Fprintf(&b, "Published: %s\n", res.PublishedTime.Format(time.RFC3339))
	}
	if res.DetectedLocale != "" {
		fmt.Fprintf(&b, "Locale: %s\n", res.DetectedLocale)
	}
	if res.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", res.URL)
	}
	b.WriteString("\n")
	b.WriteString(res.TextContent)
	b.WriteString("\n")
	if len(res.Images) > 0 {
		b.WriteString("\nImages:\n")
		for _, img := range res.Images {
			loc := img.URL
			if img.LocalPath != "" {
				loc = fmt.Sprintf("%s (local: %s)", img.URL, img.LocalPath)
			}
			fmt.Fprintf(&b, "- [%s] %s\n", img.Role, loc)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
