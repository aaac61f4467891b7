package preprocess

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestPrepareRemovesNonContent(t *testing.T) {
	doc := parse(t, `<html><head><style>p{color:red}</style></head><body>
		<script>var x = 1;</script>
		<noscript>enable js</noscript>
		<!-- tracking comment -->
		<p>kept</p>
	</body></html>`)
	Prepare(doc)

	if doc.Find("script").Length() != 0 {
		t.Error("script survived")
	}
	if doc.Find("style").Length() != 0 {
		t.Error("style survived")
	}
	if doc.Find("noscript").Length() != 0 {
		t.Error("noscript survived")
	}
	if doc.Find("script").Length() != 0 {
		t.Error("plain script survived")
	}
	out, err := doc.Html()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "tracking comment") {
		t.Error("comment survived")
	}
	if doc.Find("p").Length() != 1 {
		t.Error("content paragraph lost")
	}
}

func TestPrepareKeepsStructuredData(t *testing.T) {
	doc := parse(t, `<html><head>
	<script type="application/ld+json">{"@type":"NewsArticle","image":"https://x/a.jpg"}</script>
	<script>var tracked = true;</script>
	</head><body><p>content</p></body></html>`)
	Prepare(doc)
	if doc.Find(`script[type="application/ld+json"]`).Length() != 1 {
		t.Fatal("ld+json script must survive preprocessing")
	}
	if doc.Find("script").Length() != 1 {
		t.Fatal("plain script must be removed")
	}
}

func TestPrepareConvertsInlineOnlyDiv(t *testing.T) {
	doc := parse(t, `<html><body><div id="x">Just some <b>inline</b> text</div></body></html>`)
	Prepare(doc)
	if doc.Find("div#x").Length() != 0 {
		t.Fatal("inline-only div not reclassified")
	}
	if got := doc.Find("p#x").Text(); !strings.Contains(got, "Just some") {
		t.Fatalf("reclassified paragraph lost content: %q", got)
	}
}

func TestPrepareConvertsBreakOnlyDiv(t *testing.T) {
	doc := parse(t, `<html><body><div id="x">line one<br><br>line two</div></body></html>`)
	Prepare(doc)
	if doc.Find("p#x").Length() != 1 {
		t.Fatal("br-only div should become a paragraph")
	}
}

func TestPrepareKeepsStructuralDiv(t *testing.T) {
	doc := parse(t, `<html><body><div id="x"><p>nested paragraph</p><div>nested div</div></div></body></html>`)
	Prepare(doc)
	if doc.Find("div#x").Length() != 1 {
		t.Fatal("div with block children must keep its tag")
	}
}
