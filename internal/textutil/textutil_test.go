package textutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestNormalizeWhitespace(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"   \t\n ", ""},
		{"hello", "hello"},
		{"  hello   world  ", "hello world"},
		{"a\tb\nc\r\nd", "a b c d"},
		{"one  two\t\tthree", "one two three"},
	}
	for _, c := range cases {
		got := NormalizeWhitespace(c.in)
		if got != c.want {
			t.Errorf("NormalizeWhitespace(%q) = %q, want %q", c.in, got, c.want)
		}
		if again := NormalizeWhitespace(got); again != got {
			t.Errorf("not idempotent for %q: %q -> %q", c.in, got, again)
		}
		if strings.Contains(got, "  ") {
			t.Errorf("double space left in %q", got)
		}
		if got != strings.TrimSpace(got) {
			t.Errorf("untrimmed output %q", got)
		}
	}
}

func TestLinkDensityBounds(t *testing.T) {
	doc := mustDoc(t, `<div id="d"><p>plain text without any anchors at all</p></div>`)
	if d := LinkDensity(doc.Find("#d")); d != 0 {
		t.Fatalf("no anchors: want 0, got %v", d)
	}

	doc = mustDoc(t, `<div id="d"><a href="#"></a></div>`)
	if d := LinkDensity(doc.Find("#d")); d != 0 {
		t.Fatalf("zero text: want 0, got %v", d)
	}

	doc = mustDoc(t, `<div id="d"><a href="#">all of it is linked</a></div>`)
	if d := LinkDensity(doc.Find("#d")); d != 1 {
		t.Fatalf("fully linked: want 1, got %v", d)
	}

	doc = mustDoc(t, `<div id="d">half here <a href="#">half there</a></div>`)
	d := LinkDensity(doc.Find("#d"))
	if d <= 0 || d >= 1 {
		t.Fatalf("partial link density out of (0,1): %v", d)
	}
}

func TestInnerTextNormalizes(t *testing.T) {
	doc := mustDoc(t, `<p id="p">  first&nbsp;line
	second   line </p>`)
	got := InnerText(doc.Find("#p"))
	if strings.Contains(got, "  ") || got != strings.TrimSpace(got) {
		t.Fatalf("InnerText not normalized: %q", got)
	}
	if !strings.Contains(got, "first") || !strings.Contains(got, "second line") {
		t.Fatalf("unexpected inner text: %q", got)
	}
}

func TestBuildExcerptSentenceBudget(t *testing.T) {
	text := "First sentence here. Second sentence is a bit longer than the first. Third one pushes the running total well past any reasonable budget for a small excerpt limit, so it must be dropped entirely."
	got := BuildExcerpt(text, 100)
	if Length(got) > 100 {
		t.Fatalf("excerpt over budget: %d chars: %q", Length(got), got)
	}
	if !strings.HasPrefix(got, "First sentence here") {
		t.Fatalf("excerpt should start with first sentence: %q", got)
	}
	if strings.Contains(got, "dropped entirely") {
		t.Fatalf("over-budget sentence leaked into excerpt: %q", got)
	}
}

func TestBuildExcerptGiantSentenceFallback(t *testing.T) {
	text := strings.Repeat("word ", 100) // no terminators, ~500 chars
	got := BuildExcerpt(text, 50)
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("fallback should end with ellipsis: %q", got)
	}
	if Length(got) > 51 {
		t.Fatalf("fallback too long: %d chars", Length(got))
	}
}

func TestBuildExcerptEmpty(t *testing.T) {
	if got := BuildExcerpt("   ", 200); got != "" {
		t.Fatalf("want empty excerpt, got %q", got)
	}
}

func TestBuildExcerptDeterministic(t *testing.T) {
	text := "Alpha beta gamma. Delta epsilon zeta! Eta theta iota?"
	a := BuildExcerpt(text, 200)
	b := BuildExcerpt(text, 200)
	if a != b {
		t.Fatalf("excerpt not deterministic: %q vs %q", a, b)
	}
}
