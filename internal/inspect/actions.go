// Package inspect holds the commands that look at a site without calling a model.
package inspect

import (
	"fmt"
	"os"
	"strings"

	"github.com/dtnitsch/geo-audit/internal/audit"
	"github.com/dtnitsch/geo-audit/internal/common"
	"github.com/dtnitsch/geo-audit/models"
	"github.com/dtnitsch/geo-audit/pkg/domain"
	"github.com/dtnitsch/geo-audit/pkg/extractor"
	"github.com/urfave/cli/v2"
)

// SignalsOutput is what the signals command prints.
type SignalsOutput struct {
	Domain   models.DomainInfo   `json:"domain" yaml:"domain"`
	Pages    []models.PageSignal `json:"pages" yaml:"pages"`
	Failures []Failure           `json:"failures,omitempty" yaml:"failures,omitempty"`
	Invalid  []string            `json:"invalid_urls,omitempty" yaml:"invalid_urls,omitempty"`
}

// Failure records a URL that produced no signal.
type Failure struct {
	URL       string `json:"url" yaml:"url"`
	ErrorType string `json:"error_type" yaml:"error_type"`
	Error     string `json:"error" yaml:"error"`
}

// Collect splits extractor results into signals and failures.
func Collect(results []extractor.Result) ([]models.PageSignal, []Failure) {
	pages := make([]models.PageSignal, 0, len(results))
	var failures []Failure
	for _, r := range results {
		if r.Signal != nil {
			pages = append(pages, *r.Signal)
			continue
		}
		f := Failure{URL: r.URL, ErrorType: r.ErrorType}
		if r.Error != nil {
			f.Error = r.Error.Error()
		}
		failures = append(failures, f)
	}
	return pages, failures
}

// SignalsAction fetches the candidate URLs and prints their page signals.
func SignalsAction(c *cli.Context) error {
	logger := common.NewLogger(os.Stderr, common.LogLevel(c.Bool("quiet"), c.Bool("verbose")))

	target := c.String("target")
	if target == "" {
		target = c.Args().First()
	}
	if strings.TrimSpace(target) == "" {
		return cli.Exit(`Error: No target provided. Usage: geo-audit signals example.com`, 1)
	}

	cfg, err := common.ConfigFromContext(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	comps, err := audit.Build(cfg, false, logger)
	if err != nil {
		logger.Error("failed to initialize extractor", "error", err)
		return cli.Exit("", 2)
	}
	defer comps.Close()

	plan, err := comps.Pipeline.Resolve(models.AuditInput{Target: target, ExtraURLs: common.SplitLines(c.String("urls"))})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	pages, failures := Collect(comps.Extractor.Run(c.Context, plan.Candidates))
	out := SignalsOutput{Domain: plan.Domain, Pages: pages, Failures: failures, Invalid: plan.Invalid}

	if err := common.WriteStructured(os.Stdout, c.String("format"), out); err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	if len(pages) == 0 {
		return cli.Exit("", 1)
	}
	return nil
}

// DomainAction prints the public-suffix breakdown of each argument.
func DomainAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("Error: Usage: geo-audit domain shop.example.co.uk [more...]", 1)
	}

	infos := make([]models.DomainInfo, 0, c.NArg())
	for _, arg := range c.Args().Slice() {
		info, err := domain.Parse(arg)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
		infos = append(infos, info)
	}

	var out any = infos
	if len(infos) == 1 {
		out = infos[0]
	}
	return common.WriteStructured(os.Stdout, c.String("format"), out)
}
