// Package extract composes the extraction pipeline: parse once at the
// boundary, preprocess the tree, then run locale inference, metadata,
// content scoring and image collection over it.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/readableweb/goarticle/internal/article"
	"github.com/readableweb/goarticle/internal/content"
	"github.com/readableweb/goarticle/internal/images"
	"github.com/readableweb/goarticle/internal/locale"
	"github.com/readableweb/goarticle/internal/metadata"
	"github.com/readableweb/goarticle/internal/preprocess"
)

// Options carries per-call inputs. URL feeds locale TLD inference and is
// recorded on the result; LocaleOverride skips inference entirely.
type Options struct {
	URL            string
	LocaleOverride string
}

// Readability is the heuristic article extractor. The zero value is not
// usable; construct with New so the host-locale memo exists.
type Readability struct {
	locales *locale.Inferrer
}

func New() *Readability {
	return &Readability{locales: locale.NewInferrer()}
}

// NewWithInferrer shares an existing locale inferrer (and thus its host
// memo) between extractors.
func NewWithInferrer(inf *locale.Inferrer) *Readability {
	return &Readability{locales: inf}
}

// Extract runs the full pipeline over raw HTML. The only fatal condition is
// empty input; every heuristic failure inside the pipeline degrades to an
// absent field on the result.
func (r *Readability) Extract(rawHTML string, opts Options) (*article.Content, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, ErrEmptyHTML
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	preprocess.Prepare(doc)

	localeTag := opts.LocaleOverride
	if localeTag == "" {
		localeTag = r.locales.Infer(doc, opts.URL)
	}

	result := &article.Content{
		URL:            opts.URL,
		DetectedLocale: localeTag,
		Title:          metadata.Title(doc),
		SiteName:       metadata.SiteName(doc),
		Author:         metadata.Author(doc),
	}
	result.PublishedTime, result.ModifiedTime = metadata.Dates(doc, localeTag)
	result.TextContent, result.Excerpt = content.Extract(doc)
	result.Images = images.Collect(doc)

	return result, nil
}
