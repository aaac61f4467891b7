// Package metadata pulls title, site name, author and timestamps out of a
// document using prioritized meta-tag lookups with text-heuristic fallbacks.
// Every lookup degrades to an empty value; nothing here returns an error.
package metadata

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"github.com/readableweb/goarticle/internal/locale"
	"github.com/readableweb/goarticle/internal/textutil"
)

// Title prefers the document title, overridden by og:title only when the two
// differ in length by more than 10 characters. The guard keeps near-duplicate
// OG titles from replacing an already good one while still catching titles
// that carry a site-name suffix the OG tag lacks.
func Title(doc *goquery.Document) string {
	title := textutil.NormalizeWhitespace(doc.Find("title").First().Text())

	og := metaContent(doc, "og:title")
	if og != "" {
		normOg := textutil.NormalizeWhitespace(og)
		if normOg != "" && abs(textutil.Length(normOg)-textutil.Length(title)) > 10 {
			title = normOg
		}
	}
	return title
}

// SiteName reads og:site_name, empty when absent.
func SiteName(doc *goquery.Document) string {
	return textutil.NormalizeWhitespace(metaContent(doc, "og:site_name"))
}

var (
	authorMetaNames = []string{"author", "article:author", "og:article:author", "byl", "dc.creator"}
	byPrefixRe      = regexp.MustCompile(`(?i)^\s*by\s+`)
	bodyBylineRe    = regexp.MustCompile(`by\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)`)
)

// Author tries meta tags first, then byline-classed elements, then a last
// resort scan of the body text for a "by Firstname Lastname" pattern.
func Author(doc *goquery.Document) string {
	for _, name := range authorMetaNames {
		if v := metaContent(doc, name); v != "" {
			return textutil.NormalizeWhitespace(v)
		}
	}
	if v, ok := doc.Find(`meta[itemprop="author"]`).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
		return textutil.NormalizeWhitespace(v)
	}

	author := ""
	doc.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !attrContains(s, "class", "byline") && !attrContains(s, "id", "byline") {
			return true
		}
		txt := textutil.InnerText(s)
		if l := textutil.Length(txt); l > 3 && l < 200 {
			author = strings.TrimSpace(byPrefixRe.ReplaceAllString(txt, ""))
			return false
		}
		return true
	})
	if author != "" {
		return author
	}

	if m := bodyBylineRe.FindStringSubmatch(textutil.InnerText(doc.Selection)); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// dateMetaNames is scanned in order; names mentioning modification fill
// ModifiedTime, everything else fills PublishedTime. First parse per slot
// wins.
var dateMetaNames = []string{
	"article:published_time",
	"article:modified_time",
	"og:published_time",
	"og:updated_time",
	"publish_date",
	"pubdate",
	"timestamp",
	"date",
	"datePublished",
	"dateModified",
	"dc.date",
	"dc.date.issued",
	"dc.date.modified",
}

// Dates extracts published and modified timestamps from meta tags, <time>
// elements and date-classed elements. localeTag drives day/month order for
// ambiguous numeric dates.
func Dates(doc *goquery.Document, localeTag string) (published, modified *time.Time) {
	assign := func(name string, t *time.Time) {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "modified") || strings.Contains(lower, "updated") {
			if modified == nil {
				modified = t
			}
		} else if published == nil {
			published = t
		}
	}

	for _, name := range dateMetaNames {
		doc.Find(`meta[name="` + name + `"], meta[property="` + name + `"]`).Each(func(_ int, s *goquery.Selection) {
			v, ok := s.Attr("content")
			if !ok {
				return
			}
			if t := ParseDate(v, localeTag); t != nil {
				assign(name, t)
			}
		})
	}

	handleDateElement := func(s *goquery.Selection) {
		var t *time.Time
		if v, ok := s.Attr("datetime"); ok {
			t = ParseDate(v, localeTag)
		}
		if t == nil {
			t = ParseDate(textutil.InnerText(s), localeTag)
		}
		if t == nil {
			return
		}
		class, _ := s.Attr("class")
		class = strings.ToLower(class)
		if strings.Contains(class, "mod") || strings.Contains(class, "update") {
			if modified == nil {
				modified = t
			}
		} else if published == nil {
			published = t
		}
	}

	doc.Find("time").Each(func(_ int, s *goquery.Selection) {
		handleDateElement(s)
	})
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		if attrContains(s, "class", "date") || attrContains(s, "id", "date") {
			handleDateElement(s)
		}
	})

	return published, modified
}

// invariantLayouts are tried before any locale-aware parsing; all results are
// normalized to UTC.
var invariantLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate runs the parsing ladder: ISO/invariant, locale-aware, Unix epoch
// (seconds or milliseconds by magnitude), then a loosened retry with common
// leading particles stripped. Unparseable input yields nil, never an error.
func ParseDate(value, localeTag string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	for _, layout := range invariantLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			u := t.UTC()
			return &u
		}
	}

	monthFirst := locale.MonthFirst(localeTag)
	if t, err := dateparse.ParseIn(value, time.UTC, dateparse.PreferMonthFirst(monthFirst)); err == nil {
		u := t.UTC()
		return &u
	}

	if epoch, err := strconv.ParseInt(value, 10, 64); err == nil {
		if epoch > 1_000_000_000_000 {
			epoch /= 1000
		}
		u := time.Unix(epoch, 0).UTC()
		return &u
	}

	loosened := strings.TrimSpace(strings.NewReplacer("de ", "", "le ", "").Replace(value))
	if loosened != value && loosened != "" {
		if t, err := dateparse.ParseIn(loosened, time.UTC, dateparse.PreferMonthFirst(monthFirst)); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}

func metaContent(doc *goquery.Document, name string) string {
	var content string
	doc.Find(`meta[property="`+name+`"], meta[name="`+name+`"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr("content"); ok && strings.TrimSpace(v) != "" {
			content = v
			return false
		}
		return true
	})
	return content
}

func attrContains(s *goquery.Selection, key, needle string) bool {
	v, ok := s.Attr(key)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(v), needle)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
