// Package preprocess normalizes a parsed document before scoring: non-content
// nodes are dropped and structurally empty divs become paragraphs so the
// scorer's paragraph heuristics treat them uniformly.
package preprocess

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockTags: a div containing none of these is only holding inline content
// and can be treated as a paragraph.
var blockTags = map[string]struct{}{
	"a": {}, "blockquote": {}, "dl": {}, "div": {}, "img": {},
	"ol": {}, "p": {}, "pre": {}, "table": {}, "ul": {}, "li": {},
}

// Prepare mutates doc in place. It must run before any other component reads
// the tree.
func Prepare(doc *goquery.Document) {
	if doc == nil {
		return
	}

	// ld+json scripts are data, not behavior: the image collector reads them
	// later from this same tree.
	doc.Find(`script:not([type="application/ld+json"]), style, noscript`).Remove()
	removeComments(doc)

	doc.Find("body div").Each(func(_ int, div *goquery.Selection) {
		node := div.Get(0)
		if shouldConvertToParagraph(node) {
			node.Data = "p"
			node.DataAtom = atom.P
		}
	})
}

func removeComments(doc *goquery.Document) {
	root := doc.Get(0)
	var comments []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.CommentNode {
				comments = append(comments, c)
				continue
			}
			walk(c)
		}
	}
	walk(root)
	for _, c := range comments {
		c.Parent.RemoveChild(c)
	}
}

// shouldConvertToParagraph reports whether a div carries no block-level
// structure of its own: either no block child at all, or nothing but <br>
// elements.
func shouldConvertToParagraph(div *html.Node) bool {
	hasBlock := false
	allBreaks := true
	hasElement := false
	for c := div.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		hasElement = true
		if _, ok := blockTags[c.Data]; ok {
			hasBlock = true
		}
		if c.Data != "br" {
			allBreaks = false
		}
	}
	if !hasBlock {
		return true
	}
	return hasElement && allBreaks
}
