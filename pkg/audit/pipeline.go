// Package audit runs one GEO audit: resolve the target, extract page signals,
// and ask the configured model for a readiness report.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dtnitsch/geo-audit/internal/common"
	"github.com/dtnitsch/geo-audit/models"
	"github.com/dtnitsch/geo-audit/pkg/analytics"
	"github.com/dtnitsch/geo-audit/pkg/caching"
	"github.com/dtnitsch/geo-audit/pkg/domain"
	"github.com/dtnitsch/geo-audit/pkg/llm"
	"github.com/google/uuid"
)

const defaultKeywordCount = 15

var (
	// ErrCredentialMissing is returned before any network activity when no token is given.
	ErrCredentialMissing = llm.ErrCredentialMissing

	// ErrEmptySignalSet means every candidate URL failed; no report was requested.
	ErrEmptySignalSet = errors.New("no pages could be fetched, nothing to audit")
)

// SignalSource fetches candidate URLs and returns signals for the ones that succeeded.
type SignalSource interface {
	Extract(ctx context.Context, urls []string) []models.PageSignal
}

// ReportDispatcher sends one audit request to a model.
type ReportDispatcher interface {
	Dispatch(ctx context.Context, req models.AuditRequest) (models.AuditReport, error)
}

type Options struct {
	Extractor    SignalSource
	Dispatcher   ReportDispatcher
	Cache        *caching.Cache // nil disables memoization
	DefaultModel string
	KeywordCount int
	// Namespace separates cache keys of differently configured pipelines
	// sharing one store, e.g. the provider base URL.
	Namespace string
	// KeyByCredentials adds a hash of the caller's token to cache keys so
	// callers with different tokens never share a stored report.
	KeyByCredentials bool
	Logger           *slog.Logger
	Now              func() time.Time
}

type Pipeline struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options) *Pipeline {
	if opts.DefaultModel == "" {
		opts.DefaultModel = models.DefaultModel(models.ProviderOpenAI)
	}
	if opts.KeywordCount <= 0 {
		opts.KeywordCount = defaultKeywordCount
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = common.DiscardLogger()
	}
	return &Pipeline{opts: opts, logger: logger}
}

// Plan is the resolved, not yet fetched, form of an AuditInput.
type Plan struct {
	Candidates []string
	Invalid    []string
	Domain     models.DomainInfo
	Model      string
}

// Resolve builds candidate URLs and domain metadata without touching the network.
func (p *Pipeline) Resolve(in models.AuditInput) (Plan, error) {
	candidates, invalid, err := common.BuildCandidateURLs(in.Target, in.ExtraURLs)
	if err != nil {
		return Plan{}, fmt.Errorf("invalid target %q: %w", in.Target, err)
	}

	info, err := domain.Parse(candidates[0])
	if err != nil {
		// keep what we have; the report still gets the host
		p.logger.Warn("Domain parsing incomplete", "target", in.Target, "error", err)
	}

	model := strings.TrimSpace(in.Model)
	if model == "" {
		model = p.opts.DefaultModel
	}

	return Plan{Candidates: candidates, Invalid: invalid, Domain: info, Model: model}, nil
}

// Fingerprint identifies the inputs of a run. Credentials are part of it only
// with KeyByCredentials, and then only as a hash.
func (p *Pipeline) Fingerprint(label string, plan Plan, creds models.Credentials) string {
	scope := ""
	if p.opts.KeyByCredentials {
		scope = common.ContentHash([]byte(creds))
	}
	parts := append([]string{p.opts.Namespace, scope, label, plan.Model}, plan.Candidates...)
	return caching.Fingerprint(parts...)
}

// Run executes one audit. Identical inputs within the cache TTL return the
// stored result without any network calls.
func (p *Pipeline) Run(ctx context.Context, in models.AuditInput) (*models.AuditResult, error) {
	if in.Credentials.Empty() {
		return nil, ErrCredentialMissing
	}

	runID := uuid.NewString()
	ctx = common.WithRunID(ctx, runID)

	plan, err := p.Resolve(in)
	if err != nil {
		return nil, err
	}
	for _, bad := range plan.Invalid {
		p.logger.WarnContext(ctx, "Skipping malformed extra URL", "url", bad)
	}

	label := strings.TrimSpace(in.TargetLabel)
	if label == "" {
		label = strings.TrimSpace(in.Target)
	}

	compute := func(ctx context.Context) ([]byte, error) {
		result, err := p.execute(ctx, runID, label, plan, in.Credentials)
		if err != nil {
			return nil, err
		}
		return json.Marshal(result)
	}

	var (
		raw    []byte
		cached bool
	)
	if p.opts.Cache != nil {
		raw, cached, err = p.opts.Cache.GetOrCompute(ctx, p.Fingerprint(label, plan, in.Credentials), compute)
	} else {
		raw, err = compute(ctx)
	}
	if err != nil {
		return nil, err
	}

	var result models.AuditResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode audit result: %w", err)
	}
	if cached {
		p.logger.InfoContext(ctx, "Audit served from cache", "original_run_id", result.RunID)
		result.RunID = runID
		result.Cached = true
	}
	return &result, nil
}

func (p *Pipeline) execute(ctx context.Context, runID, label string, plan Plan, creds models.Credentials) (*models.AuditResult, error) {
	start := p.opts.Now()
	p.logger.InfoContext(ctx, "Audit started", "target", label, "candidates", len(plan.Candidates), "model", plan.Model)

	pages := p.opts.Extractor.Extract(ctx, plan.Candidates)
	if len(pages) == 0 {
		p.logger.WarnContext(ctx, "No pages fetched", "candidates", len(plan.Candidates))
		return nil, ErrEmptySignalSet
	}

	texts := make([]string, 0, len(pages))
	for _, pg := range pages {
		texts = append(texts, pg.VisibleText)
	}
	keywords := analytics.SiteKeywords(texts, p.opts.KeywordCount)

	req := models.AuditRequest{
		TargetLabel: label,
		Domain:      plan.Domain,
		Pages:       pages,
		Keywords:    keywords,
		Model:       plan.Model,
		Credentials: creds,
	}

	report, err := p.opts.Dispatcher.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "Audit finished", "pages", len(pages), "elapsed", p.opts.Now().Sub(start).String())

	return &models.AuditResult{
		RunID:       runID,
		TargetLabel: label,
		Domain:      plan.Domain,
		Pages:       pages,
		Keywords:    keywords,
		Model:       plan.Model,
		Report:      report,
		GeneratedAt: start.UTC(),
	}, nil
}
