package llm

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/geo-audit/models"
)

const (
	maxCriticalIssues  = 5
	maxRecommendations = 10
)

const systemPrompt = `You are a Generative Engine Optimization (GEO) expert. You audit websites for how well AI answer engines (ChatGPT, Perplexity, Gemini, Copilot) can understand, summarize and cite them. Be concise and actionable. Base every finding on the page signals provided; do not invent pages or data you were not given.`

const instructions = `Respond with exactly these sections, in this order:

1. GEO readiness assessment: 2-3 sentences on how ready this site is to be cited by AI answer engines.
2. Critical issues: at most %d bullet points, most severe first.
3. Recommendations: at most %d prioritized, concrete actions, highest impact first. Reference the specific URL when a fix applies to one page.`

// BuildPrompt renders the user message for one audit. The output depends only
// on the request, so identical inputs produce identical prompts.
func BuildPrompt(req models.AuditRequest, includeSnippets bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Company: %s\n", req.TargetLabel)
	fmt.Fprintf(&b, "Domain: %s\n", req.Domain.Host)
	fmt.Fprintf(&b, "Domain info: registrable_domain=%s subdomain=%s public_suffix=%s kind=%s country=%s\n",
		orNone(req.Domain.RegistrableDomain), orNone(req.Domain.Subdomain), orNone(req.Domain.PublicSuffix),
		orNone(req.Domain.Kind), orNone(req.Domain.Country))
	if len(req.Keywords) > 0 {
		fmt.Fprintf(&b, "Top site keywords: %s\n", strings.Join(req.Keywords, ", "))
	}

	fmt.Fprintf(&b, "\nPage signals (%d pages):\n", len(req.Pages))
	for _, p := range req.Pages {
		writePageSummary(&b, p, includeSnippets)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, instructions, maxCriticalIssues, maxRecommendations)
	b.WriteString("\n")

	return b.String()
}

func writePageSummary(b *strings.Builder, p models.PageSignal, includeSnippets bool) {
	fmt.Fprintf(b, "- URL: %s\n", p.URL)
	fmt.Fprintf(b, "  Title: %s\n", models.StringOr(p.Title, "(missing)"))
	fmt.Fprintf(b, "  H1: %s\n", models.StringOr(p.H1, "(missing)"))
	fmt.Fprintf(b, "  Meta description: %s\n", yesNo(p.HasMetaDescription()))
	fmt.Fprintf(b, "  FAQ-like elements: %s\n", yesNo(p.HasFAQLikeElements))

	schema := fmt.Sprintf("%d", p.SchemaBlockCount)
	if len(p.SchemaTypes) > 0 {
		schema += " (" + strings.Join(p.SchemaTypes, ", ") + ")"
	}
	fmt.Fprintf(b, "  JSON-LD schema blocks: %s\n", schema)

	if p.WordCount != nil {
		fmt.Fprintf(b, "  Word count: %d\n", *p.WordCount)
	}
	if p.ReadableChars != nil {
		fmt.Fprintf(b, "  Main content characters: %d\n", *p.ReadableChars)
	}
	if p.Language != nil {
		fmt.Fprintf(b, "  Language: %s\n", *p.Language)
	}
	if includeSnippets && p.TextSnippet != nil && *p.TextSnippet != "" {
		fmt.Fprintf(b, "  Text: %s\n", *p.TextSnippet)
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
