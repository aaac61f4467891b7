// Package images harvests article images from inline markup, social meta
// tags and JSON-LD blocks, merging the three passes into one URL-keyed set.
package images

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/readableweb/goarticle/internal/article"
	"github.com/readableweb/goarticle/internal/textutil"
)

var (
	srcsetItemRe = regexp.MustCompile(`(\S+)\s+(\d+)w`)
	// Tolerant by intent: structured data in the wild is frequently malformed,
	// so the JSON-LD pass pattern-matches instead of requiring valid JSON.
	jsonLDImageRe = regexp.MustCompile(`(?i)"image"\s*:\s*(\{[^}]*\}|\[[^\]]*\]|"[^"]*")`)
	jsonLDURLRe   = regexp.MustCompile(`(?i)"url"\s*:\s*"([^"]+)"`)
)

// collector keys images by lowercased URL and preserves discovery order so
// output is deterministic even though ordering is not a contract.
type collector struct {
	byURL map[string]*article.Image
	order []string
}

// Collect gathers every distinct image URL in the document. Inline images run
// first, then social meta tags, then JSON-LD; later passes extend existing
// entries instead of duplicating them.
func Collect(doc *goquery.Document) []article.Image {
	c := &collector{byURL: make(map[string]*article.Image)}

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		c.addInline(img)
	})
	c.addMetaImages(doc)
	c.addJSONLDImages(doc)

	out := make([]article.Image, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, *c.byURL[key])
	}
	return out
}

func (c *collector) addInline(img *goquery.Selection) {
	src := firstAttr(img, "data-src", "data-original", "data-lazy-src", "src")
	if src == "" {
		return
	}

	alt, _ := img.Attr("alt")
	width := intAttr(img, "width")
	height := intAttr(img, "height")

	caption := ""
	figure := img.Closest("figure")
	if figure.Length() > 0 {
		caption = textutil.InnerText(figure.Find("figcaption").First())
	}

	var variants []article.ImageVariant
	if srcset, ok := img.Attr("srcset"); ok {
		variants = append(variants, parseSrcset(srcset, article.RoleSrcsetVariant)...)
	}
	sourceScope := figure
	if sourceScope.Length() == 0 {
		sourceScope = img.Parent()
	}
	sourceScope.Find("source").Each(func(_ int, source *goquery.Selection) {
		srcset, ok := source.Attr("srcset")
		if !ok || strings.TrimSpace(srcset) == "" {
			return
		}
		mime, _ := source.Attr("type")
		for _, v := range parseSrcset(srcset, article.RoleSourceVariant) {
			v.MimeType = mime
			variants = append(variants, v)
		}
	})

	image, existed := c.ensure(src, article.RoleInline)
	if existed {
		// Back-fill scalar fields from repeat encounters; never overwrite.
		if image.Alt == "" {
			image.Alt = alt
		}
		if image.Caption == "" {
			image.Caption = caption
		}
		if image.Width == nil {
			image.Width = width
		}
		if image.Height == nil {
			image.Height = height
		}
	} else {
		image.Alt = alt
		image.Caption = caption
		image.Width = width
		image.Height = height
	}
	for _, v := range variants {
		addVariant(image, v)
	}
}

var metaImageProps = []string{
	"og:image",
	"og:image:url",
	"og:image:secure_url",
	"twitter:image",
	"twitter:image:src",
}

func (c *collector) addMetaImages(doc *goquery.Document) {
	for _, prop := range metaImageProps {
		variantRole := article.RoleTwitterCard
		if strings.HasPrefix(prop, "og:") {
			variantRole = article.RoleOpenGraph
		}
		doc.Find(`meta[property="`+prop+`"], meta[name="`+prop+`"]`).Each(func(_ int, s *goquery.Selection) {
			url, ok := s.Attr("content")
			if !ok || strings.TrimSpace(url) == "" {
				return
			}
			url = strings.TrimSpace(url)
			image, _ := c.ensure(url, article.RoleSocial)
			addVariant(image, article.ImageVariant{URL: url, Role: variantRole})
		})
	}
}

func (c *collector) addJSONLDImages(doc *goquery.Document) {
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		body := s.Text()
		if strings.TrimSpace(body) == "" {
			return
		}
		for _, m := range jsonLDImageRe.FindAllStringSubmatch(body, -1) {
			chunk := m[1]
			urls := jsonLDURLRe.FindAllStringSubmatch(chunk, -1)
			if len(urls) == 0 && strings.HasPrefix(chunk, `"`) && strings.HasSuffix(chunk, `"`) {
				c.addJSONLDURL(strings.Trim(chunk, `"`))
				continue
			}
			for _, u := range urls {
				c.addJSONLDURL(u[1])
			}
		}
	})
}

func (c *collector) addJSONLDURL(url string) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	image, _ := c.ensure(url, article.RoleJSONLD)
	addVariant(image, article.ImageVariant{URL: url, Role: article.RoleJSONLD})
}

// ensure returns the image for url, creating it with the given primary role
// when first seen. The boolean reports whether it already existed.
func (c *collector) ensure(url string, role article.ImageRole) (*article.Image, bool) {
	key := strings.ToLower(url)
	if image, ok := c.byURL[key]; ok {
		return image, true
	}
	image := &article.Image{URL: url, Role: role}
	c.byURL[key] = image
	c.order = append(c.order, key)
	return image, false
}

// addVariant appends unless a variant with the same URL (case-insensitive)
// is already present.
func addVariant(image *article.Image, v article.ImageVariant) {
	for _, existing := range image.Variants {
		if strings.EqualFold(existing.URL, v.URL) {
			return
		}
	}
	image.Variants = append(image.Variants, v)
}

func parseSrcset(srcset string, role article.ImageRole) []article.ImageVariant {
	var variants []article.ImageVariant
	for _, raw := range strings.Split(srcset, ",") {
		item := strings.TrimSpace(raw)
		if item == "" {
			continue
		}
		if m := srcsetItemRe.FindStringSubmatch(item); m != nil {
			width, err := strconv.Atoi(m[2])
			v := article.ImageVariant{URL: m[1], Role: role}
			if err == nil {
				v.Width = &width
			}
			variants = append(variants, v)
			continue
		}
		tokens := strings.Fields(item)
		if len(tokens) > 0 {
			variants = append(variants, article.ImageVariant{URL: tokens[0], Role: role})
		}
	}
	return variants
}

func firstAttr(s *goquery.Selection, keys ...string) string {
	for _, key := range keys {
		if v, ok := s.Attr(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func intAttr(s *goquery.Selection, key string) *int {
	v, ok := s.Attr(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return nil
	}
	return &n
}
