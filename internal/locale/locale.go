// Package locale infers a BCP 47 language tag for a document from its markup,
// a process-wide host memo, or the page URL's top-level domain.
package locale

import (
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/language"
)

// Default is returned when no signal resolves.
const Default = "en-US"

// twoLetterMap expands bare language codes to full tags. Codes outside the
// map become "ll-LL".
var twoLetterMap = map[string]string{
	"en": "en-US",
	"fr": "fr-FR",
	"de": "de-DE",
	"es": "es-ES",
	"pt": "pt-PT",
}

// tldMap is the last-resort signal. Longest matching suffix wins, so .co.uk
// beats .uk.
var tldMap = map[string]string{
	".fr":    "fr-FR",
	".de":    "de-DE",
	".es":    "es-ES",
	".it":    "it-IT",
	".nl":    "nl-NL",
	".no":    "no-NO",
	".se":    "sv-SE",
	".dk":    "da-DK",
	".pl":    "pl-PL",
	".pt":    "pt-PT",
	".br":    "pt-BR",
	".ru":    "ru-RU",
	".cn":    "zh-CN",
	".jp":    "ja-JP",
	".kr":    "ko-KR",
	".co.uk": "en-GB",
	".uk":    "en-GB",
	".ca":    "en-CA",
	".au":    "en-AU",
}

// Inferrer resolves document locales and remembers what each host resolved
// to. Construct one per process and share it; the memo is safe for concurrent
// use and never persisted.
type Inferrer struct {
	mu    sync.RWMutex
	hosts map[string]string
}

func NewInferrer() *Inferrer {
	return &Inferrer{hosts: make(map[string]string)}
}

// Infer resolves the locale for a parsed document. pageURL is optional; when
// present its host feeds the memo and the TLD fallback. Inference never
// fails: unusable signals are skipped and the chain ends at Default.
func (inf *Inferrer) Infer(doc *goquery.Document, pageURL string) string {
	host := hostOf(pageURL)

	if tag := canonicalize(langSignal(doc)); tag != "" {
		if host != "" {
			inf.remember(host, tag)
		}
		return tag
	}

	if host != "" {
		if tag, ok := inf.lookup(host); ok {
			return tag
		}
		if tag := tldLocale(host); tag != "" {
			inf.remember(host, tag)
			return tag
		}
		inf.rememberIfAbsent(host, Default)
	}
	return Default
}

// MonthFirst reports whether ambiguous numeric dates for this locale should
// be read month-first. Only US-style English does that.
func MonthFirst(tag string) bool {
	t, err := language.Parse(tag)
	if err != nil {
		if _, ok := err.(language.ValueError); !ok {
			return true
		}
	}
	base, _ := t.Base()
	if base.String() != "en" {
		return false
	}
	region, _ := t.Region()
	switch region.String() {
	case "GB", "AU", "NZ", "IE", "ZA", "IN":
		return false
	}
	return true
}

func hostOf(pageURL string) string {
	if strings.TrimSpace(pageURL) == "" {
		return ""
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// langSignal reads the raw lang hint from the root element or the usual meta
// tags. Returns "" when there is none.
func langSignal(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	root := doc.Find("html").First()
	if v, ok := root.Attr("lang"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v, ok := root.Attr("xml:lang"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	var meta string
	doc.Find(`meta[http-equiv="content-language"], meta[name="language"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr("content"); ok && strings.TrimSpace(v) != "" {
			meta = strings.TrimSpace(v)
			return false
		}
		return true
	})
	return meta
}

// canonicalize expands 2-letter codes and validates the tag. Invalid tags are
// treated as absent so resolution can continue down the chain.
func canonicalize(lang string) string {
	if lang == "" {
		return ""
	}
	if len(lang) == 2 {
		if full, ok := twoLetterMap[strings.ToLower(lang)]; ok {
			lang = full
		} else {
			lang = strings.ToLower(lang) + "-" + strings.ToUpper(lang)
		}
	}
	tag, err := language.Parse(lang)
	if err != nil {
		// Well-formed but unregistered tags still carry usable structure.
		if _, ok := err.(language.ValueError); !ok {
			return ""
		}
	}
	return tag.String()
}

func tldLocale(host string) string {
	best := ""
	bestLen := 0
	for suffix, tag := range tldMap {
		if strings.HasSuffix(host, suffix) && len(suffix) > bestLen {
			best = tag
			bestLen = len(suffix)
		}
	}
	return best
}

func (inf *Inferrer) lookup(host string) (string, bool) {
	inf.mu.RLock()
	defer inf.mu.RUnlock()
	tag, ok := inf.hosts[host]
	return tag, ok
}

func (inf *Inferrer) remember(host, tag string) {
	inf.mu.Lock()
	inf.hosts[host] = tag
	inf.mu.Unlock()
}

func (inf *Inferrer) rememberIfAbsent(host, tag string) {
	inf.mu.Lock()
	if _, ok := inf.hosts[host]; !ok {
		inf.hosts[host] = tag
	}
	inf.mu.Unlock()
}
