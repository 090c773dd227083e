package signals

import (
	"reflect"
	"strings"
	"testing"
)

func TestParse_BasicFields(t *testing.T) {
	html := `<html><head>
		<title>  Acme   Widgets </title>
		<meta name="description" content="  Widgets for everyone.  ">
	</head><body>
		<h1>Best <em>widgets</em></h1>
		<h1>Second heading</h1>
		<p>Buy widgets today.</p>
	</body></html>`

	var p Parser
	sig, err := p.Parse("https://example.com/", []byte(html))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if sig.URL != "https://example.com/" {
		t.Errorf("URL = %q", sig.URL)
	}
	if sig.Title == nil || *sig.Title != "Acme Widgets" {
		t.Errorf("Title = %v, want %q", sig.Title, "Acme Widgets")
	}
	if sig.MetaDescription == nil || *sig.MetaDescription != "Widgets for everyone." {
		t.Errorf("MetaDescription = %v, want trimmed description", sig.MetaDescription)
	}
	if sig.H1 == nil || *sig.H1 != "Best widgets" {
		t.Errorf("H1 = %v, want %q", sig.H1, "Best widgets")
	}
	if sig.HasFAQLikeElements {
		t.Error("HasFAQLikeElements = true, want false")
	}
	if sig.SchemaBlockCount != 0 {
		t.Errorf("SchemaBlockCount = %d, want 0", sig.SchemaBlockCount)
	}
}

func TestParse_MissingTitleIsAbsent(t *testing.T) {
	var p Parser
	sig, err := p.Parse("https://example.com/", []byte(`<html><body><p>no head here</p></body></html>`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if sig.Title != nil {
		t.Errorf("Title = %q, want nil", *sig.Title)
	}
	if sig.MetaDescription != nil {
		t.Errorf("MetaDescription = %q, want nil", *sig.MetaDescription)
	}
	if sig.H1 != nil {
		t.Errorf("H1 = %q, want nil", *sig.H1)
	}
}

func TestParse_EmptyTitleIsPresent(t *testing.T) {
	var p Parser
	sig, err := p.Parse("https://example.com/", []byte(`<html><head><title></title></head></html>`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if sig.Title == nil {
		t.Fatal("Title = nil, want empty string")
	}
	if *sig.Title != "" {
		t.Errorf("Title = %q, want empty", *sig.Title)
	}
}

func TestParse_MetaWithoutContentIsAbsent(t *testing.T) {
	var p Parser
	sig, err := p.Parse("https://example.com/", []byte(`<html><head><meta name="Description"></head></html>`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if sig.MetaDescription != nil {
		t.Errorf("MetaDescription = %q, want nil", *sig.MetaDescription)
	}
}

func TestParse_FAQLikeElements(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{
			name: "details block",
			html: `<html><body><details><summary>FAQ</summary><p>Answer</p></details></body></html>`,
			want: true,
		},
		{
			name: "summary only",
			html: `<html><body><summary>Shipping</summary></body></html>`,
			want: true,
		},
		{
			name: "plain text mention",
			html: `<html><body><h2>Frequently Asked Questions (FAQ)</h2><p>Q and A.</p></body></html>`,
			want: true,
		},
		{
			name: "case insensitive",
			html: `<html><body><a href="/help">Faqs</a></body></html>`,
			want: true,
		},
		{
			name: "neither",
			html: `<html><body><h2>Pricing</h2><p>Plans start at $5.</p></body></html>`,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Parser
			sig, err := p.Parse("https://example.com/", []byte(tt.html))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if sig.HasFAQLikeElements != tt.want {
				t.Errorf("HasFAQLikeElements = %v, want %v", sig.HasFAQLikeElements, tt.want)
			}
		})
	}
}

func TestParse_SchemaBlockCount(t *testing.T) {
	block := func(body string) string {
		return `<script type="application/ld+json">` + body + `</script>`
	}

	tests := []struct {
		name      string
		scripts   string
		wantCount int
		wantTypes []string
	}{
		{name: "none", scripts: `<script>var x = 1;</script>`, wantCount: 0},
		{
			name:      "one",
			scripts:   block(`{"@context":"https://schema.org","@type":"Organization","name":"Acme"}`),
			wantCount: 1,
			wantTypes: []string{"Organization"},
		},
		{
			name: "malformed still counted",
			scripts: block(`{"@type":"FAQPage"`) +
				block(`{"@type":"WebSite"}`) +
				block(`not json at all`),
			wantCount: 3,
			wantTypes: []string{"WebSite"},
		},
		{
			name:      "graph and arrays",
			scripts:   block(`{"@graph":[{"@type":"Organization"},{"@type":["WebPage","FAQPage"]}]}`),
			wantCount: 1,
			wantTypes: []string{"FAQPage", "Organization", "WebPage"},
		},
		{
			name:      "type attribute case",
			scripts:   `<script type="Application/LD+JSON">{"@type":"Product"}</script>`,
			wantCount: 1,
			wantTypes: []string{"Product"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Parser
			html := `<html><head>` + tt.scripts + `</head><body><p>x</p></body></html>`
			sig, err := p.Parse("https://example.com/", []byte(html))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if sig.SchemaBlockCount != tt.wantCount {
				t.Errorf("SchemaBlockCount = %d, want %d", sig.SchemaBlockCount, tt.wantCount)
			}
			if !reflect.DeepEqual(sig.SchemaTypes, tt.wantTypes) {
				t.Errorf("SchemaTypes = %v, want %v", sig.SchemaTypes, tt.wantTypes)
			}
		})
	}
}

func TestParse_VisibleTextExcludesScriptsAndStyles(t *testing.T) {
	html := `<html><head><style>.faq { color: red }</style></head><body>
		<p>one two</p><p>three</p>
		<script>var faq = "hidden words here";</script>
		<noscript>enable javascript</noscript>
	</body></html>`

	var p Parser
	sig, err := p.Parse("https://example.com/", []byte(html))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if sig.WordCount == nil || *sig.WordCount != 3 {
		t.Errorf("WordCount = %v, want 3", sig.WordCount)
	}
	if sig.TextSnippet == nil || *sig.TextSnippet != "one two three" {
		t.Errorf("TextSnippet = %v, want %q", sig.TextSnippet, "one two three")
	}
	if sig.HasFAQLikeElements {
		t.Error("script/style text must not count as FAQ-like text")
	}
}

func TestParse_SnippetTruncated(t *testing.T) {
	long := strings.Repeat("wörd ", 400)
	var p Parser
	sig, err := p.Parse("https://example.com/", []byte("<p>"+long+"</p>"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := len([]rune(*sig.TextSnippet)); got != 800 {
		t.Errorf("snippet runes = %d, want 800", got)
	}
	if *sig.WordCount != 400 {
		t.Errorf("WordCount = %d, want 400", *sig.WordCount)
	}

	short := Parser{SnippetChars: 10}
	sig, _ = short.Parse("https://example.com/", []byte("<p>"+long+"</p>"))
	if got := len([]rune(*sig.TextSnippet)); got != 10 {
		t.Errorf("snippet runes = %d, want 10", got)
	}
}

func TestParse_MalformedMarkupTolerated(t *testing.T) {
	var p Parser
	sig, err := p.Parse("https://example.com/", []byte(`<html><body><h1>Head<p>unclosed <div><details><summary>Shipping`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !sig.HasFAQLikeElements {
		t.Error("HasFAQLikeElements = false, want true from <details>")
	}
	if sig.H1 == nil {
		t.Error("H1 = nil, want unclosed heading text")
	}
}

const articlePage = `<html><head>
	<title>Shipping widgets across Europe</title>
	<meta property="og:site_name" content="Acme Journal">
	<meta name="description" content="How Acme ships widgets.">
</head><body>
	<nav><a href="/">Home</a> <a href="/blog">Blog</a></nav>
	<article>
		<h1>Shipping widgets across Europe</h1>
		<p>Acme has shipped industrial widgets to customers in twelve European countries since the company opened its first warehouse in Rotterdam. Every order leaves the warehouse within two business days and is tracked from the loading dock to the customer's door.</p>
		<p>Our logistics team works with regional carriers so that parcels cross borders without customs delays. Customers can follow each shipment online, change the delivery address before dispatch, and schedule a pickup for returns at no extra cost.</p>
		<p>Larger orders travel on pallets by road freight. We consolidate pallets headed to the same region, which keeps prices predictable and lets us publish a fixed rate card for every destination we serve in Europe and the United Kingdom.</p>
	</article>
	<footer>Copyright Acme</footer>
</body></html>`

func TestParse_EnrichReadableContent(t *testing.T) {
	p := Parser{Enrich: true}
	sig, err := p.Parse("https://acme.example/blog/shipping", []byte(articlePage))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if sig.ReadableChars == nil {
		t.Fatal("ReadableChars = nil, want main content length")
	}
	if *sig.ReadableChars <= 0 {
		t.Errorf("ReadableChars = %d, want > 0", *sig.ReadableChars)
	}
	if *sig.ReadableChars > len([]rune(sig.VisibleText)) {
		t.Errorf("ReadableChars = %d exceeds visible text length %d", *sig.ReadableChars, len([]rune(sig.VisibleText)))
	}
	if sig.SiteName == nil || *sig.SiteName != "Acme Journal" {
		t.Errorf("SiteName = %v, want Acme Journal", sig.SiteName)
	}
	if sig.Language == nil || *sig.Language != "en" {
		t.Errorf("Language = %v, want en", sig.Language)
	}
}

func TestParse_NoEnrichLeavesFieldsAbsent(t *testing.T) {
	var p Parser
	sig, err := p.Parse("https://acme.example/blog/shipping", []byte(articlePage))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if sig.ReadableChars != nil || sig.SiteName != nil || sig.Language != nil {
		t.Errorf("enrichment fields set without Enrich: %v %v %v", sig.ReadableChars, sig.SiteName, sig.Language)
	}
}
