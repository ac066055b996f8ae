package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ppiankov/clauserisk/internal/model"
)

// Analyzer analyzes one contract source (file path, URL or "-")
type Analyzer interface {
	AnalyzeSource(ctx context.Context, source string) (*model.Report, error)
}

// DocumentJob analyzes a single contract source
type DocumentJob struct {
	Index    int
	Source   string
	Analyzer Analyzer
}

// Execute runs the analysis
func (j *DocumentJob) Execute(ctx context.Context) Result {
	report, err := j.Analyzer.AnalyzeSource(ctx, j.Source)
	return &DocumentResult{
		Index:  j.Index,
		Source: j.Source,
		Report: report,
		Error:  err,
	}
}

// DocumentResult is the outcome of one DocumentJob
type DocumentResult struct {
	Index  int
	Source string
	Report *model.Report
	Error  error
}

// GetError returns the analysis error, if any
func (r *DocumentResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many contracts concurrently.
// A failing document never aborts the rest of the batch.
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessSources analyzes every source and returns results in input order
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) []*DocumentResult {
	if len(sources) == 0 {
		return []*DocumentResult{}
	}

	jobs := make([]Job, len(sources))
	for i, src := range sources {
		jobs[i] = &DocumentJob{Index: i, Source: src, Analyzer: b.analyzer}
	}

	pool := NewPool(ctx, b.concurrency)
	results := pool.Run(jobs)

	docResults := make([]*DocumentResult, 0, len(results))
	for _, result := range results {
		docResults = append(docResults, result.(*DocumentResult))
	}
	sort.Slice(docResults, func(i, j int) bool {
		return docResults[i].Index < docResults[j].Index
	})

	return docResults
}

// ProcessFile reads sources from a list file and analyzes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*DocumentResult, error) {
	sources, err := ReadSourcesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources), nil
}

// ReadSourcesFromFile reads sources from a file (one per line, # comments)
func ReadSourcesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}

// ExpandSources resolves glob patterns (including **) into file paths.
// URLs and plain paths pass through unchanged; duplicates are dropped.
func ExpandSources(args []string) ([]string, error) {
	var sources []string
	seen := make(map[string]bool)

	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			sources = append(sources, s)
		}
	}

	for _, arg := range args {
		if IsURL(arg) || !hasMeta(arg) {
			add(arg)
			continue
		}

		if !doublestar.ValidatePathPattern(arg) {
			return nil, fmt.Errorf("invalid pattern %q", arg)
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", arg, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}

	return sources, nil
}

// IsURL reports whether a source should be fetched over HTTP
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
