// Package signals reduces one HTML document to a models.PageSignal.
package signals

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/geo-audit/models"
	"golang.org/x/net/html"
)

const jsonLDType = "application/ld+json"

// Parser extracts page signals. The zero value uses the default snippet length
// and skips the enrichment passes.
type Parser struct {
	SnippetChars int
	// Enrich turns on language detection and readability analysis.
	Enrich bool
}

// Parse builds the signal record for a fetched document. Malformed markup is
// tolerated; an error is only returned when the body cannot be read as HTML at all.
func (p *Parser) Parse(pageURL string, body []byte) (models.PageSignal, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return models.PageSignal{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	sig := models.PageSignal{URL: pageURL}

	if t := doc.Find("title").First(); t.Length() > 0 {
		sig.Title = ptr(normalizeText(t.Text()))
	}
	sig.MetaDescription = metaDescription(doc)
	if h := doc.Find("h1").First(); h.Length() > 0 {
		sig.H1 = ptr(normalizeText(h.Text()))
	}

	// Schema blocks are counted before scripts are stripped for text extraction.
	sig.SchemaBlockCount, sig.SchemaTypes = schemaBlocks(doc)

	hasFAQElement := doc.Find("details, summary").Length() > 0

	doc.Find("script, style, noscript, template").Remove()
	text, faqInText := visibleText(doc.Selection)
	sig.HasFAQLikeElements = hasFAQElement || faqInText

	words := strings.Fields(text)
	sig.WordCount = ptr(len(words))
	sig.TextSnippet = ptr(truncateRunes(text, p.snippetChars()))
	sig.VisibleText = text

	if p.Enrich {
		if lang, ok := DetectLanguage(text); ok {
			sig.Language = ptr(lang)
		}
		if readable, ok := readableContent(pageURL, body); ok {
			sig.ReadableChars = ptr(readable.chars)
			if readable.siteName != "" {
				sig.SiteName = ptr(readable.siteName)
			}
		}
	}

	return sig, nil
}

func (p *Parser) snippetChars() int {
	if p.SnippetChars <= 0 || p.SnippetChars > models.DefaultSnippetChars {
		return models.DefaultSnippetChars
	}
	return p.SnippetChars
}

// metaDescription returns the trimmed content of the first meta[name=description].
// The name comparison is case-insensitive; a tag without content counts as absent.
func metaDescription(doc *goquery.Document) *string {
	var out *string
	doc.Find("meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		if !strings.EqualFold(strings.TrimSpace(name), "description") {
			return true
		}
		if content, ok := s.Attr("content"); ok {
			out = ptr(strings.TrimSpace(content))
		}
		return false
	})
	return out
}

// visibleText walks the text nodes under sel and joins them with single spaces.
// It also reports whether any single text node mentions "faq".
func visibleText(sel *goquery.Selection) (string, bool) {
	var b strings.Builder
	faq := false

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if !faq && strings.Contains(strings.ToLower(n.Data), "faq") {
				faq = true
			}
			for _, w := range strings.Fields(n.Data) {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(w)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}

	return b.String(), faq
}

// normalizeText collapses all whitespace runs to single spaces.
func normalizeText(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func ptr[T any](v T) *T { return &v }
