package main

import (
	"fmt"
	"os"

	"github.com/dtnitsch/geo-audit/internal/audit"
	"github.com/dtnitsch/geo-audit/internal/inspect"
	"github.com/dtnitsch/geo-audit/internal/server"
	"github.com/dtnitsch/geo-audit/models"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "geo-audit",
		Usage: "Audit a site's readiness for AI answer engines (Generative Engine Optimization)",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
		},
		Commands: []*cli.Command{
			{
				Name:      "audit",
				Usage:     "Fetch pages, extract GEO signals and request an audit report",
				ArgsUsage: "<domain-or-url>",
				Flags: append(pipelineFlags(),
					&cli.StringFlag{Name: "target", Aliases: []string{"t"}, Usage: "domain or URL to audit (or pass as argument)"},
					&cli.StringFlag{Name: "label", Aliases: []string{"l"}, Usage: "company name used in the prompt (defaults to the target)"},
					&cli.StringFlag{Name: "urls", Usage: "extra URLs, comma or newline separated"},
					&cli.StringFlag{Name: "api-key", Usage: "bearer token (else GEO_AUDIT_API_KEY, OPENAI_API_KEY or PERPLEXITY_API_KEY)"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "markdown", Usage: "markdown, json or yaml"},
					&cli.BoolFlag{Name: "no-snippets", Usage: "leave page text snippets out of the prompt"},
				),
				Action: audit.AuditAction,
			},
			{
				Name:      "signals",
				Usage:     "Fetch pages and print their GEO signals without calling a model",
				ArgsUsage: "<domain-or-url>",
				Flags: append(pipelineFlags(),
					&cli.StringFlag{Name: "target", Aliases: []string{"t"}, Usage: "domain or URL (or pass as argument)"},
					&cli.StringFlag{Name: "urls", Usage: "extra URLs, comma or newline separated"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "json or yaml"},
				),
				Action: inspect.SignalsAction,
			},
			{
				Name:      "domain",
				Usage:     "Print the public-suffix breakdown of one or more domains",
				ArgsUsage: "<domain> [domain...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "json or yaml"},
				},
				Action: inspect.DomainAction,
			},
			{
				Name:  "serve",
				Usage: "Serve the audit pipeline over HTTP",
				Flags: append(pipelineFlags(),
					&cli.StringFlag{Name: "addr", Value: ":8080", EnvVars: []string{"GEO_AUDIT_ADDR"}, Usage: "listen address"},
					&cli.BoolFlag{Name: "no-snippets", Usage: "leave page text snippets out of the prompt"},
				),
				Action: server.ServeAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

// pipelineFlags are the configuration flags shared by every command that fetches pages.
func pipelineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, EnvVars: []string{"GEO_AUDIT_CONFIG"}, Usage: "YAML config file"},
		&cli.StringFlag{Name: "provider", EnvVars: []string{"GEO_AUDIT_PROVIDER"}, Usage: "openai or perplexity (default openai)"},
		&cli.StringFlag{Name: "base-url", EnvVars: []string{"GEO_AUDIT_BASE_URL"}, Usage: "chat-completions base URL (default per provider)"},
		&cli.StringFlag{Name: "model", Aliases: []string{"m"}, EnvVars: []string{"GEO_AUDIT_MODEL"}, Usage: "model identifier, passed through unchanged"},
		&cli.IntFlag{Name: "max-pages", Aliases: []string{"k"}, EnvVars: []string{"GEO_AUDIT_MAX_PAGES"}, Usage: fmt.Sprintf("fetch at most this many URLs (default %d, max %d)", models.DefaultMaxPages, models.MaxPagesCeiling)},
		&cli.DurationFlag{Name: "fetch-timeout", EnvVars: []string{"GEO_AUDIT_FETCH_TIMEOUT"}, Usage: "per-page fetch timeout (default 10s)"},
		&cli.StringFlag{Name: "user-agent", EnvVars: []string{"GEO_AUDIT_USER_AGENT"}, Usage: "User-Agent for page fetches"},
		&cli.IntFlag{Name: "max-tokens", EnvVars: []string{"GEO_AUDIT_MAX_TOKENS"}, Usage: "completion token ceiling (default 1200)"},
		&cli.Float64Flag{Name: "temperature", EnvVars: []string{"GEO_AUDIT_TEMPERATURE"}, Usage: "sampling temperature (default 0.3)"},
		&cli.DurationFlag{Name: "cache-ttl", EnvVars: []string{"GEO_AUDIT_CACHE_TTL"}, Usage: "reuse identical audits for this long, 0 disables (default 10m)"},
		&cli.StringFlag{Name: "cache-db", EnvVars: []string{"GEO_AUDIT_CACHE_DB"}, Usage: "SQLite file for the audit cache (default in-memory)"},
		&cli.BoolFlag{Name: "cache-per-token", EnvVars: []string{"GEO_AUDIT_CACHE_PER_TOKEN"}, Usage: "only reuse cached audits for the same API token"},
		&cli.IntFlag{Name: "snippet-chars", EnvVars: []string{"GEO_AUDIT_SNIPPET_CHARS"}, Usage: "text snippet length, at most 800"},
	}
}
