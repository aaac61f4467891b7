package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/readableweb/goarticle/internal/article"
)

// DefaultRedisTTL is used when Set receives no explicit ttl.
const DefaultRedisTTL = 30 * time.Minute

// redisEntry is the flat wire shape stored per article. Images are not
// persisted; re-extraction rebuilds them and the mirror layer owns local
// copies.
type redisEntry struct {
	Title          string     `json:"title"`
	TextContent    string     `json:"textContent"`
	Excerpt        string     `json:"excerpt"`
	SiteName       string     `json:"siteName"`
	URL            string     `json:"url"`
	Author         string     `json:"author"`
	PublishedTime  *time.Time `json:"publishedTime,omitempty"`
	ModifiedTime   *time.Time `json:"modifiedTime,omitempty"`
	DetectedLocale string     `json:"detectedLocale,omitempty"`
}

// Redis stores articles in a shared Redis instance so multiple processes can
// reuse extractions. Corrupt entries are deleted and reported as misses.
type Redis struct {
	client     *redis.Client
	keyPrefix  string
	defaultTTL time.Duration
}

func NewRedis(client *redis.Client, keyPrefix string, defaultTTL time.Duration) *Redis {
	if keyPrefix == "" {
		keyPrefix = "article:"
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultRedisTTL
	}
	return &Redis{client: client, keyPrefix: keyPrefix, defaultTTL: defaultTTL}
}

func (r *Redis) key(url string) string { return r.keyPrefix + url }

func (r *Redis) Get(ctx context.Context, url string) (*article.Content, bool) {
	raw, err := r.client.Get(ctx, r.key(url)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("url", url).Msg("redis cache read failed")
		}
		return nil, false
	}

	var entry redisEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("deleting corrupt redis cache entry")
		r.client.Del(ctx, r.key(url))
		return nil, false
	}

	return &article.Content{
		Title:          entry.Title,
		TextContent:    entry.TextContent,
		Excerpt:        entry.Excerpt,
		SiteName:       entry.SiteName,
		URL:            entry.URL,
		Author:         entry.Author,
		PublishedTime:  entry.PublishedTime,
		ModifiedTime:   entry.ModifiedTime,
		DetectedLocale: entry.DetectedLocale,
	}, true
}

func (r *Redis) Set(ctx context.Context, url string, a *article.Content, ttl time.Duration) {
	if a == nil {
		return
	}
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	entry := redisEntry{
		Title:          a.Title,
		TextContent:    a.TextContent,
		Excerpt:        a.Excerpt,
		SiteName:       a.SiteName,
		URL:            a.URL,
		Author:         a.Author,
		PublishedTime:  a.PublishedTime,
		ModifiedTime:   a.ModifiedTime,
		DetectedLocale: a.DetectedLocale,
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("marshal article for redis cache")
		return
	}
	if err := r.client.Set(ctx, r.key(url), raw, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("redis cache write failed")
	}
}

var _ Cache = (*Redis)(nil)
