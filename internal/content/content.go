// Package content implements the readability heuristic: it scores paragraph
// containers across the whole tree, picks the most article-like one,
// reassembles plausible siblings into a synthetic container and prunes
// low-value descendants before rendering plain text.
package content

import (
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/readableweb/goarticle/internal/textutil"
)

var positiveSignals = []string{
	"article", "body", "content", "entry", "hentry",
	"main", "page", "pagination", "post", "text",
	"blog", "story",
}

var negativeSignals = []string{
	"comment", "combx", "contact", "footer", "foot",
	"footnote", "meta", "nav", "navbar", "rss",
	"shoutbox", "sidebar", "sponsor", "shopping",
	"tags", "tool", "widget", "promo", "related",
	"social", "sharing", "share", "subscribe", "ad",
	"advert", "banner",
}

// minLeafTextLen is the smallest paragraph that contributes scoring signal.
const minLeafTextLen = 25

// candidate pairs a container element with its accumulated score. Keyed by
// node pointer, so two structurally identical elements stay distinct.
type candidate struct {
	node  *html.Node
	score float64
}

// Extract runs the Score, Select, Assemble and Clean passes over an already
// preprocessed document and returns the article body as normalized plain text
// together with a derived excerpt. The input tree is left untouched; selected
// content is deep-cloned into a synthetic container first.
func Extract(doc *goquery.Document) (textContent, excerpt string) {
	candidates := score(doc)
	top := selectTop(doc, candidates)

	var articleNode *html.Node
	if top == nil {
		articleNode = cloneTree(fallbackRoot(doc))
	} else {
		articleNode = assemble(doc, top, candidates)
	}

	cleaned := goquery.NewDocumentFromNode(articleNode)
	clean(cleaned)

	textContent = textutil.InnerText(cleaned.Selection)
	excerpt = textutil.BuildExcerpt(textContent, textutil.ExcerptMaxLen)
	return textContent, excerpt
}

// score visits every paragraph-like leaf and credits its parent with the full
// leaf score and its grandparent with half, then suppresses link-heavy
// containers by multiplying with (1 - link density).
func score(doc *goquery.Document) map[*html.Node]*candidate {
	candidates := make(map[*html.Node]*candidate)

	doc.Find("p, pre, td").Each(func(_ int, leaf *goquery.Selection) {
		text := textutil.InnerText(leaf)
		n := textutil.Length(text)
		if n < minLeafTextLen {
			return
		}
		node := leaf.Get(0)
		parent := elementParent(node)
		if parent == nil {
			return
		}
		grandParent := elementParent(parent)

		leafScore := 1.0
		leafScore += float64(strings.Count(text, ",") + strings.Count(text, "?"))
		leafScore += math.Min(math.Floor(float64(n)/100), 3)

		ensure(candidates, parent)
		candidates[parent].score += leafScore
		if grandParent != nil {
			ensure(candidates, grandParent)
			candidates[grandParent].score += leafScore / 2
		}
	})

	for node, c := range candidates {
		c.score *= 1 - textutil.LinkDensity(doc.FindNodes(node))
	}
	return candidates
}

func ensure(candidates map[*html.Node]*candidate, node *html.Node) {
	if _, ok := candidates[node]; !ok {
		candidates[node] = &candidate{node: node, score: classWeight(node)}
	}
}

// classWeight seeds a candidate from its class/id text and tag name.
func classWeight(node *html.Node) float64 {
	var weight float64

	classAndID := strings.ToLower(attr(node, "class") + " " + attr(node, "id"))
	for _, neg := range negativeSignals {
		if strings.Contains(classAndID, neg) {
			weight -= 25
		}
	}
	for _, pos := range positiveSignals {
		if strings.Contains(classAndID, pos) {
			weight += 25
		}
	}

	switch node.Data {
	case "article":
		weight += 25
	case "section", "div":
		weight += 5
	}
	return weight
}

// selectTop walks the tree in document order and keeps the first candidate
// holding the highest score, so equal scores resolve to the earlier element.
func selectTop(doc *goquery.Document, candidates map[*html.Node]*candidate) *html.Node {
	if len(candidates) == 0 {
		return nil
	}
	var best *candidate
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if c, ok := candidates[n]; ok {
			if best == nil || c.score > best.score {
				best = c
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc.Get(0))
	if best == nil {
		return nil
	}
	return best.node
}

// assemble builds a fresh container from the top candidate's parent's
// children, recovering siblings that either scored close enough or look like
// honest paragraphs on their own.
func assemble(doc *goquery.Document, top *html.Node, candidates map[*html.Node]*candidate) *html.Node {
	parent := top.Parent
	if parent == nil {
		parent = top
	}
	container := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr:     []html.Attribute{{Key: "id", Val: "readability-content"}},
	}

	topScore := 0.0
	if c, ok := candidates[top]; ok {
		topScore = c.score
	}
	threshold := math.Max(10, topScore*0.2)

	for sibling := parent.FirstChild; sibling != nil; sibling = sibling.NextSibling {
		include := false
		switch {
		case sibling == top:
			include = true
		case siblingScore(candidates, sibling) >= threshold:
			include = true
		case sibling.Type == html.ElementNode && sibling.Data == "p":
			sel := doc.FindNodes(sibling)
			length := textutil.Length(textutil.InnerText(sel))
			density := textutil.LinkDensity(sel)
			if length > 80 && density < 0.25 {
				include = true
			} else if length > 0 && density == 0 {
				include = true
			}
		}
		if include {
			container.AppendChild(cloneTree(sibling))
		}
	}
	return container
}

func siblingScore(candidates map[*html.Node]*candidate, node *html.Node) float64 {
	if c, ok := candidates[node]; ok {
		return c.score
	}
	return math.Inf(-1)
}

// clean strips inline styles, removes junk containers outright and then
// prunes paragraph-like descendants that carry no real content. Junk removal
// runs first so link density is measured on already-pruned content.
func clean(doc *goquery.Document) {
	stripAttr(doc.Get(0), "style")

	doc.Find("form, iframe, object, embed, nav, aside").Remove()

	doc.Find("p, div, section").Each(func(_ int, s *goquery.Selection) {
		text := textutil.InnerText(s)
		if textutil.Length(text) < minLeafTextLen && s.Find("img, embed, object").Length() == 0 {
			s.Remove()
			return
		}
		if textutil.LinkDensity(s) > 0.5 {
			s.Remove()
		}
	})
}

func stripAttr(root *html.Node, key string) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			kept := n.Attr[:0]
			for _, a := range n.Attr {
				if a.Key != key {
					kept = append(kept, a)
				}
			}
			n.Attr = kept
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
}

// fallbackRoot is used when no candidate exists at all: prefer body, then the
// document root.
func fallbackRoot(doc *goquery.Document) *html.Node {
	if body := doc.Find("body").First(); body.Length() > 0 {
		return body.Get(0)
	}
	return doc.Get(0)
}

// cloneTree deep-copies a subtree so the assembled article never shares
// mutable nodes with the source document.
func cloneTree(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(cloneTree(c))
	}
	return clone
}

func elementParent(n *html.Node) *html.Node {
	p := n.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return p
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
