package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// ExcerptMaxLen is the default character budget for BuildExcerpt.
const ExcerptMaxLen = 200

// NormalizeWhitespace collapses every run of whitespace into a single ASCII
// space and trims the ends. Whitespace-only input yields the empty string.
// Idempotent.
func NormalizeWhitespace(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	inWS := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !inWS {
				b.WriteByte(' ')
				inWS = true
			}
			continue
		}
		b.WriteRune(r)
		inWS = false
	}
	return strings.TrimSpace(b.String())
}

// InnerText returns the normalized text content of a selection. Entity
// decoding already happened during parsing, so only whitespace is left to fix.
func InnerText(s *goquery.Selection) string {
	if s == nil {
		return ""
	}
	return NormalizeWhitespace(s.Text())
}

// Length counts characters the way scoring thresholds expect: runes, not bytes.
func Length(text string) int {
	return utf8.RuneCountInString(text)
}

// LinkDensity is the fraction of a node's text living inside descendant
// anchors, in [0,1]. Nodes with no anchors or no text score 0.
func LinkDensity(s *goquery.Selection) float64 {
	if s == nil {
		return 0
	}
	links := s.Find("a")
	if links.Length() == 0 {
		return 0
	}
	total := Length(InnerText(s))
	if total == 0 {
		return 0
	}
	linked := 0
	links.Each(func(_ int, a *goquery.Selection) {
		linked += Length(InnerText(a))
	})
	d := float64(linked) / float64(total)
	if d > 1 {
		d = 1
	}
	return d
}

// BuildExcerpt derives a short summary from normalized article text. It splits
// on sentence terminators, re-joins fragments with ". " while the running
// length stays within maxLen, and falls back to a hard cut with an ellipsis
// when not even the first fragment fits.
func BuildExcerpt(text string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = ExcerptMaxLen
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}

	fragments := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	var b strings.Builder
	for _, f := range fragments {
		trimmed := NormalizeWhitespace(f)
		if trimmed == "" {
			continue
		}
		if Length(b.String())+Length(trimmed)+2 > maxLen {
			break
		}
		if b.Len() > 0 {
			b.WriteString(". ")
		}
		b.WriteString(trimmed)
	}

	if b.Len() == 0 && Length(text) > maxLen {
		runes := []rune(text)
		return NormalizeWhitespace(string(runes[:maxLen])) + "…"
	}
	return b.String()
}
