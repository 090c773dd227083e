// Package extractor fetches a bounded set of URLs concurrently and reduces each
// reachable page to a models.PageSignal.
package extractor

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/dtnitsch/geo-audit/models"
	"github.com/dtnitsch/geo-audit/pkg/fetcher"
	"github.com/dtnitsch/geo-audit/pkg/signals"
)

// PageFetcher is the outbound GET used by the extractor.
type PageFetcher interface {
	GetHTMLBytes(ctx context.Context, url string) (*fetcher.Page, error)
}

// Job is one URL to fetch, tagged with its position in the request.
type Job struct {
	Index int
	URL   string
}

// Result holds the outcome of a processed job.
type Result struct {
	Index     int
	URL       string
	Signal    *models.PageSignal
	Error     error
	ErrorType string
}

type Extractor struct {
	fetcher  PageFetcher
	parser   *signals.Parser
	maxPages int
	logger   *slog.Logger
}

// New builds an Extractor that fetches at most maxPages URLs per call.
func New(f PageFetcher, p *signals.Parser, maxPages int, logger *slog.Logger) *Extractor {
	if p == nil {
		p = &signals.Parser{}
	}
	if maxPages <= 0 {
		maxPages = models.DefaultMaxPages
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Extractor{fetcher: f, parser: p, maxPages: maxPages, logger: logger}
}

// MaxPages is K, the fetch bound.
func (e *Extractor) MaxPages() int { return e.maxPages }

// Extract fetches the first K urls concurrently and waits for all of them.
// Failed URLs are dropped; the returned signals keep request order.
func (e *Extractor) Extract(ctx context.Context, urls []string) []models.PageSignal {
	results := e.Run(ctx, urls)

	out := make([]models.PageSignal, 0, len(results))
	for _, r := range results {
		if r.Signal != nil {
			out = append(out, *r.Signal)
		}
	}
	return out
}

// Run is Extract without the filtering: one Result per attempted URL, in
// request order, including failures.
func (e *Extractor) Run(ctx context.Context, urls []string) []Result {
	batch := urls
	if len(batch) > e.maxPages {
		batch = batch[:e.maxPages]
	}
	if len(batch) == 0 {
		return nil
	}

	e.logger.InfoContext(ctx, "Starting concurrent fetch phase", "url_count", len(batch), "skipped", len(urls)-len(batch))

	var wg sync.WaitGroup
	jobs := make(chan Job, len(batch))
	results := make(chan Result, len(batch))

	// One worker per URL: every fetch is in flight at once, so the wall-clock
	// bound is a single fetch timeout.
	for w := 1; w <= len(batch); w++ {
		wg.Add(1)
		go e.worker(ctx, w, &wg, jobs, results)
	}

	for i, u := range batch {
		jobs <- Job{Index: i, URL: u}
	}
	close(jobs)

	wg.Wait()
	close(results)
	e.logger.InfoContext(ctx, "All fetch workers finished")

	ordered := make([]Result, len(batch))
	for r := range results {
		ordered[r.Index] = r
	}
	return ordered
}

func (e *Extractor) worker(ctx context.Context, id int, wg *sync.WaitGroup, jobs <-chan Job, results chan<- Result) {
	defer wg.Done()
	for job := range jobs {
		results <- e.process(ctx, id, job)
	}
}

func (e *Extractor) process(ctx context.Context, id int, job Job) Result {
	result := Result{Index: job.Index, URL: job.URL}

	page, err := e.fetcher.GetHTMLBytes(ctx, job.URL)
	if err != nil {
		e.logger.WarnContext(ctx, "Error fetching HTML", "worker_id", id, "url", job.URL, "error", err)
		result.Error = err
		result.ErrorType = "fetch_error"
		return result
	}

	sig, err := e.parser.Parse(job.URL, page.Body)
	if err != nil {
		e.logger.WarnContext(ctx, "Error parsing HTML", "worker_id", id, "url", job.URL, "error", err)
		result.Error = err
		result.ErrorType = "parse_error"
		return result
	}

	result.Signal = &sig
	e.logger.InfoContext(ctx, "Worker finished processing", "worker_id", id, "url", job.URL, "schema_blocks", sig.SchemaBlockCount)
	return result
}
