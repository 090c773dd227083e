package signals

import (
	"bytes"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

type readable struct {
	chars    int
	siteName string
}

// readableContent runs readability over the raw page and measures the main
// content it recovers.
func readableContent(pageURL string, body []byte) (readable, bool) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return readable{}, false
	}

	readabilityParser := readability.NewParser()
	article, err := readabilityParser.Parse(bytes.NewReader(body), parsedURL)
	if err != nil {
		return readable{}, false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return readable{}, false
	}

	return readable{
		chars:    utf8.RuneCountInString(normalizeText(doc.Text())),
		siteName: strings.TrimSpace(article.SiteName),
	}, true
}
