// Package mirror downloads article images to local storage after extraction.
// Files are named by the sha256 of their source URL so repeat runs and
// shared URLs deduplicate naturally.
package mirror

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/readableweb/goarticle/internal/article"
)

// DefaultMaxBytes caps a single image download at 5 MB.
const DefaultMaxBytes = 5 * 1024 * 1024

// Mirror fetches image URLs into Dir. It fills LocalPath (and LocalURL when
// BaseURL is set) on every image and variant it stores.
type Mirror struct {
	Dir     string
	BaseURL string
	// MaxBytes caps one download; zero means DefaultMaxBytes.
	MaxBytes int64
	// IgnoreErrors makes individual download failures non-fatal.
	IgnoreErrors bool
	HTTPClient   *http.Client
}

// Run mirrors every image and variant URL on the article exactly once.
// Oversized and failed downloads are skipped; with IgnoreErrors set, errors
// are logged and swallowed.
func (m *Mirror) Run(ctx context.Context, a *article.Content) error {
	if m.Dir == "" {
		return fmt.Errorf("mirror dir not configured")
	}
	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return fmt.Errorf("create mirror dir: %w", err)
	}

	seen := make(map[string]struct{})
	mirrorOne := func(rawURL string) (localPath, localURL string, err error) {
		if strings.TrimSpace(rawURL) == "" {
			return "", "", nil
		}
		key := strings.ToLower(rawURL)
		if _, done := seen[key]; done {
			return "", "", nil
		}
		seen[key] = struct{}{}
		return m.fetchOne(ctx, rawURL)
	}

	for i := range a.Images {
		img := &a.Images[i]
		localPath, localURL, err := mirrorOne(img.URL)
		if err != nil {
			if !m.IgnoreErrors {
				return err
			}
			log.Warn().Err(err).Str("url", img.URL).Msg("skipping image")
		}
		if localPath != "" {
			img.LocalPath = localPath
			img.LocalURL = localURL
		}
		for j := range img.Variants {
			v := &img.Variants[j]
			vPath, vURL, err := mirrorOne(v.URL)
			if err != nil {
				if !m.IgnoreErrors {
					return err
				}
				log.Warn().Err(err).Str("url", v.URL).Msg("skipping image variant")
				continue
			}
			if vPath != "" {
				v.LocalPath = vPath
				v.LocalURL = vURL
			}
		}
	}
	return nil
}

func (m *Mirror) fetchOne(ctx context.Context, rawURL string) (string, string, error) {
	name := fileNameFor(rawURL)
	filePath := filepath.Join(m.Dir, name)

	if _, err := os.Stat(filePath); err == nil {
		log.Debug().Str("url", rawURL).Str("path", filePath).Msg("image already mirrored")
		return filePath, m.localURL(name), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("new request: %w", err)
	}
	client := m.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	maxBytes := m.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if resp.ContentLength > maxBytes {
		log.Warn().Str("url", rawURL).Int64("size", resp.ContentLength).Int64("limit", maxBytes).Msg("image over size limit")
		return "", "", nil
	}

	tmp := filePath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", "", fmt.Errorf("create file: %w", err)
	}
	written, err := io.Copy(f, io.LimitReader(resp.Body, maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return "", "", fmt.Errorf("write image: %w", err)
	}
	if written > maxBytes {
		// Content-Length lied or was absent; drop the partial file.
		os.Remove(tmp)
		log.Warn().Str("url", rawURL).Int64("limit", maxBytes).Msg("image body over size limit")
		return "", "", nil
	}
	if err := os.Rename(tmp, filePath); err != nil {
		os.Remove(tmp)
		return "", "", err
	}
	return filePath, m.localURL(name), nil
}

func (m *Mirror) localURL(name string) string {
	if m.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(m.BaseURL, "/") + "/" + name
}

// fileNameFor builds "<sha256(url)><ext>", guessing the extension from the
// URL path and falling back to .bin for anything odd.
func fileNameFor(rawURL string) string {
	ext := ".bin"
	if u, err := url.Parse(rawURL); err == nil {
		candidate := path.Ext(u.Path)
		if candidate != "" && len(candidate) <= 6 {
			ext = candidate
		}
	}
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:]) + ext
}
