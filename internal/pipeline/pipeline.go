package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/clauserisk/internal/audit"
	"github.com/ppiankov/clauserisk/internal/cache"
	"github.com/ppiankov/clauserisk/internal/classify"
	"github.com/ppiankov/clauserisk/internal/extract"
	"github.com/ppiankov/clauserisk/internal/llm"
	"github.com/ppiankov/clauserisk/internal/metrics"
	"github.com/ppiankov/clauserisk/internal/model"
	"github.com/ppiankov/clauserisk/internal/score"
	"github.com/ppiankov/clauserisk/internal/similarity"
	"github.com/ppiankov/clauserisk/internal/util"
	"github.com/ppiankov/clauserisk/internal/worker"
)

// Pipeline orchestrates load → normalize → analyze → summarize → audit
type Pipeline struct {
	fetcher    *Fetcher
	entities   *extract.EntityExtractor
	similarity *similarity.Scorer
	scorer     *score.Scorer
	renderer   *Renderer
	cache      cache.Cache
	summarizer *llm.Summarizer // nil if disabled
	audit      audit.Sink      // nil if disabled
	metrics    *metrics.Metrics
	config     *model.Config
	logger     *slog.Logger
	stdin      io.Reader
	now        func() time.Time

	// set by options; a nil value then disables the collaborator
	auditSet, cacheSet, summarizerSet bool
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithAuditSink replaces the sink built from the audit config (nil disables auditing)
func WithAuditSink(sink audit.Sink) Option {
	return func(p *Pipeline) { p.audit, p.auditSet = sink, true }
}

// WithMetrics records every analysis on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithCache replaces the cache built from the cache config (nil disables caching)
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) { p.cache, p.cacheSet = c, true }
}

// WithSummarizer replaces the summarizer built from the llm config
func WithSummarizer(s *llm.Summarizer) Option {
	return func(p *Pipeline) { p.summarizer, p.summarizerSet = s, true }
}

// WithStdin sets the reader used for the "-" source
func WithStdin(r io.Reader) Option {
	return func(p *Pipeline) { p.stdin = r }
}

// WithClock overrides the analysis timestamp source
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a new pipeline with the given configuration.
// Optional collaborators that fail to initialize are disabled with a warning.
func NewPipeline(cfg *model.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		entities:   extract.NewEntityExtractor(),
		similarity: similarity.NewScorer(),
		scorer:     score.NewScorer(),
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		config:     cfg,
		logger:     slog.Default(),
		stdin:      os.Stdin,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	if !p.cacheSet && cfg.Cache.Enabled {
		p.cache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	if !p.summarizerSet && cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
		if err != nil {
			p.logger.Warn("LLM provider disabled", "provider", cfg.LLM.Provider, "error", err)
		} else {
			p.summarizer = s
		}
	}

	if !p.auditSet && cfg.Audit.Enabled {
		sink, err := audit.NewSink(cfg.Audit, p.logger)
		if err != nil {
			p.logger.Warn("audit log disabled", "backend", cfg.Audit.Backend, "error", err)
		} else {
			p.audit = sink
		}
	}

	proxy := util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
	p.fetcher = NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.InsecureTLS, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy).
		WithLimiter(worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)).
		WithCache(p.cache)
	if cfg.HTTP.RespectRobots {
		p.fetcher.WithRobots(util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout, proxy))
	}

	return p
}

// Close releases the audit sink
func (p *Pipeline) Close() error {
	if p.audit == nil {
		return nil
	}
	return p.audit.Close()
}

// AuditSink returns the configured sink, or nil
func (p *Pipeline) AuditSink() audit.Sink {
	return p.audit
}

// Renderer returns the report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// AnalyzeSource loads a file path, URL or "-" (stdin) and analyzes it.
// It satisfies worker.Analyzer.
func (p *Pipeline) AnalyzeSource(ctx context.Context, source string) (*model.Report, error) {
	start := time.Now()

	text, err := p.load(ctx, source)
	if err != nil {
		p.metrics.ObserveFailure()
		return nil, err
	}

	report, err := p.AnalyzeText(ctx, text, source)
	if err != nil {
		p.metrics.ObserveFailure()
		return nil, err
	}

	p.metrics.Observe(report, time.Since(start))
	return report, nil
}

func (p *Pipeline) load(ctx context.Context, source string) (string, error) {
	switch {
	case source == "-":
		text, err := LoadReader(p.stdin)
		if err != nil {
			return "", fmt.Errorf("load stdin: %w", err)
		}
		return text, nil

	case worker.IsURL(source):
		res, err := p.fetcher.FetchWithRetry(ctx, source)
		if err != nil {
			return "", fmt.Errorf("fetch %s: %w", source, err)
		}
		if res.FromCache {
			p.logger.Debug("fetch cache hit", "url", source)
		}
		text, err := LoadBytes(res.Body, FormatFromContentType(res.ContentType, res.FinalURL))
		if err != nil {
			return "", fmt.Errorf("load %s: %w", source, err)
		}
		return text, nil

	default:
		text, err := LoadFile(source)
		if err != nil {
			return "", fmt.Errorf("load %s: %w", source, err)
		}
		return text, nil
	}
}

// AnalyzeText normalizes raw text, extracts entities and runs the full
// analysis including the optional summary and audit record
func (p *Pipeline) AnalyzeText(ctx context.Context, text, source string) (*model.Report, error) {
	doc := Normalize(text, source)
	p.logger.Debug("normalized document", "source", source, "language", doc.Language)

	entities := p.entities.Extract(doc.Text)

	report, err := p.Analyze(ctx, doc, entities)
	if err != nil {
		return nil, err
	}

	// after scoring; never affects the verdict
	if p.summarizer.IsEnabled() {
		summary, err := p.summarizer.GenerateSummary(ctx, *report)
		if err != nil {
			p.logger.Warn("LLM summary failed", "source", source, "error", err)
		} else if summary != nil {
			for _, w := range summary.Warnings {
				p.logger.Debug("llm", "note", w)
			}
			report.LLM = summary
		}
	}

	if p.audit != nil {
		if err := p.audit.Write(ctx, model.NewAuditRecord(report)); err != nil {
			p.logger.Warn("audit write failed", "source", source, "error", err)
		}
	}

	return report, nil
}

// cachedAnalysis is the text-dependent part of a report
type cachedAnalysis struct {
	ContractType string                 `json:"contract_type"`
	Clauses      []model.ClauseAnalysis `json:"clauses"`
}

// Analyze runs the rule engine over a normalized document. Clauses are
// analyzed concurrently and re-sorted by number, so the report is identical
// for any worker count.
func (p *Pipeline) Analyze(ctx context.Context, doc model.Document, entities model.Entities) (*model.Report, error) {
	var analysis cachedAnalysis
	key := cache.TextKey(doc.Text)

	if p.cache != nil && cache.GetJSON(p.cache, key, &analysis) {
		p.logger.Debug("analysis cache hit", "source", doc.Source)
	} else {
		clauses, err := p.analyzeClauses(ctx, extract.SplitClauses(doc.Text))
		if err != nil {
			return nil, err
		}
		analysis = cachedAnalysis{
			ContractType: classify.ContractType(doc.Text),
			Clauses:      clauses,
		}
		if p.cache != nil {
			if err := cache.SetJSON(p.cache, key, analysis); err != nil {
				p.logger.Warn("analysis cache write failed", "error", err)
			}
		}
	}

	if entities.Parties == nil {
		entities.Parties = []string{}
	}
	if entities.Dates == nil {
		entities.Dates = []string{}
	}
	if entities.Amounts == nil {
		entities.Amounts = []string{}
	}

	return &model.Report{
		ID:           uuid.NewString(),
		Source:       doc.Source,
		Language:     doc.Language,
		ContractType: analysis.ContractType,
		AnalyzedAt:   p.now().UTC(),
		Entities:     entities,
		Clauses:      analysis.Clauses,
		Score:        p.scorer.Calculate(analysis.Clauses),
	}, nil
}

func (p *Pipeline) analyzeClauses(ctx context.Context, clauses []model.Clause) ([]model.ClauseAnalysis, error) {
	if len(clauses) == 0 {
		return []model.ClauseAnalysis{}, nil
	}

	jobs := make([]worker.Job, len(clauses))
	for i, c := range clauses {
		jobs[i] = &clauseJob{clause: c, similarity: p.similarity}
	}

	results := worker.NewPool(ctx, p.config.Analysis.Workers).Run(jobs)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyze clauses: %w", err)
	}
	if len(results) != len(clauses) {
		return nil, errors.New("analyze clauses: incomplete results")
	}

	analyses := make([]model.ClauseAnalysis, 0, len(results))
	for _, r := range results {
		analyses = append(analyses, r.(*clauseResult).analysis)
	}
	sort.Slice(analyses, func(i, j int) bool {
		return analyses[i].Clause.Number < analyses[j].Clause.Number
	})
	return analyses, nil
}

// AnalyzeClause runs intent, risk, ambiguity and similarity over one clause
func AnalyzeClause(c model.Clause, sim *similarity.Scorer) model.ClauseAnalysis {
	risks := classify.Risks(c.Text)
	return model.ClauseAnalysis{
		Clause:      c,
		Intent:      classify.Intent(c.Text),
		Risks:       risks,
		Ambiguities: classify.Ambiguities(c.Text),
		Similarity:  sim.Score(c.Text),
		Level:       score.ClauseLevel(len(risks)),
	}
}

type clauseJob struct {
	clause     model.Clause
	similarity *similarity.Scorer
}

func (j *clauseJob) Execute(ctx context.Context) worker.Result {
	return &clauseResult{analysis: AnalyzeClause(j.clause, j.similarity)}
}

type clauseResult struct {
	analysis model.ClauseAnalysis
}

func (r *clauseResult) GetError() error {
	return nil
}

// RenderReport writes the requested outputs and prints the console summary.
// A .llm.md file is written next to the Markdown report when a summary exists.
func (p *Pipeline) RenderReport(report *model.Report, jsonPath, mdPath, summaryPath string, out io.Writer) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		p.logger.Debug("wrote JSON", "path", jsonPath)
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		p.logger.Debug("wrote Markdown", "path", mdPath)

		if report.LLM != nil && report.LLM.Enabled {
			llmPath := LLMPath(mdPath)
			if err := p.renderer.RenderLLMMarkdown(llm.RenderSeparateMarkdown(report.LLM), llmPath); err != nil {
				p.logger.Warn("failed to write LLM summary", "path", llmPath, "error", err)
			} else {
				p.logger.Debug("wrote LLM summary", "path", llmPath)
			}
		}
	}

	if summaryPath != "" {
		if err := p.renderer.RenderPlainSummary(report, summaryPath); err != nil {
			return fmt.Errorf("render summary: %w", err)
		}
		p.logger.Debug("wrote summary", "path", summaryPath)
	}

	if out != nil {
		p.renderer.RenderConsole(out, report)
	}
	return nil
}
