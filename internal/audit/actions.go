package audit

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dtnitsch/geo-audit/internal/common"
	"github.com/dtnitsch/geo-audit/models"
	pipeline "github.com/dtnitsch/geo-audit/pkg/audit"
	"github.com/dtnitsch/geo-audit/pkg/llm"
	"github.com/urfave/cli/v2"
)

// AuditAction runs one audit for the target given as --target or the first argument.
func AuditAction(c *cli.Context) error {
	logger := common.NewLogger(os.Stderr, common.LogLevel(c.Bool("quiet"), c.Bool("verbose")))

	target := c.String("target")
	if target == "" {
		target = c.Args().First()
	}
	if strings.TrimSpace(target) == "" {
		fmt.Fprintln(os.Stderr, "Error: No target provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  geo-audit audit example.com`)
		fmt.Fprintln(os.Stderr, `  geo-audit audit --label "Acme" --urls "https://acme.com/faq,https://acme.com/pricing" acme.com`)
		return cli.Exit("", 1)
	}

	format := c.String("format")
	switch format {
	case "markdown", "json", "yaml":
	default:
		return cli.Exit(fmt.Sprintf("Error: unknown format %q (want markdown, json or yaml)", format), 1)
	}

	cfg, err := common.ConfigFromContext(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	comps, err := Build(cfg, !c.Bool("no-snippets"), logger)
	if err != nil {
		logger.Error("failed to initialize audit pipeline", "error", err)
		return cli.Exit("", 2)
	}
	defer comps.Close()

	input := models.AuditInput{
		TargetLabel: c.String("label"),
		Target:      target,
		ExtraURLs:   common.SplitLines(c.String("urls")),
		Model:       cfg.Model,
		Credentials: common.ResolveCredentials(c.String("api-key"), cfg.Provider, os.Getenv),
	}

	result, err := comps.Pipeline.Run(c.Context, input)
	if err != nil {
		return exitFor(err)
	}

	if format == "markdown" {
		return WriteMarkdown(os.Stdout, result)
	}
	return common.WriteStructured(os.Stdout, format, result)
}

// exitFor maps pipeline errors to exit codes: 1 for input problems, 2 for runtime failures.
func exitFor(err error) error {
	var derr *llm.DispatchError
	switch {
	case errors.Is(err, pipeline.ErrCredentialMissing):
		return cli.Exit("Error: no API key. Pass --api-key or set GEO_AUDIT_API_KEY / OPENAI_API_KEY / PERPLEXITY_API_KEY", 1)
	case errors.Is(err, common.ErrNotADomain):
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	case errors.Is(err, pipeline.ErrEmptySignalSet):
		return cli.Exit("Error: no pages fetched, nothing to audit", 1)
	case errors.As(err, &derr):
		return cli.Exit(fmt.Sprintf("Error: %v", derr), 2)
	default:
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}
}

// WriteMarkdown prints the report verbatim, then a metrics table per page and
// the domain breakdown.
func WriteMarkdown(w io.Writer, r *models.AuditResult) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# GEO Audit: %s\n\n", r.TargetLabel)
	b.WriteString(strings.TrimSpace(string(r.Report)))
	b.WriteString("\n\n## Page Metrics\n\n")
	b.WriteString("| URL | Schema | FAQ | Meta | Words | Language |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, p := range r.Pages {
		words := "-"
		if p.WordCount != nil {
			words = fmt.Sprint(*p.WordCount)
		}
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s |\n",
			p.URL, p.SchemaBlockCount, mark(p.HasFAQLikeElements), mark(p.HasMetaDescription()),
			words, models.StringOr(p.Language, "-"))
	}

	b.WriteString("\n## Domain Info\n\n")
	fmt.Fprintf(&b, "- Registrable domain: %s\n", orDash(r.Domain.RegistrableDomain))
	fmt.Fprintf(&b, "- Subdomain: %s\n", orDash(r.Domain.Subdomain))
	fmt.Fprintf(&b, "- Public suffix: %s\n", orDash(r.Domain.PublicSuffix))

	fmt.Fprintf(&b, "\n_Model %s, run %s", r.Model, r.RunID)
	if r.Cached {
		b.WriteString(", cached")
	}
	b.WriteString("_\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func mark(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
