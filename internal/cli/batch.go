package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/clauserisk/internal/model"
	"github.com/ppiankov/clauserisk/internal/pipeline"
	"github.com/ppiankov/clauserisk/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	sourcesFile  string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [pattern|file|url]...",
	Short: "Analyze many contracts in parallel",
	Long: `Batch analyzes many contracts concurrently:
- Sources are files, URLs, or glob patterns (** matches any depth)
- A list file (--from-file) adds one source per line; # comments and blank lines are skipped
- A failing document is reported and never stops the rest
- Each contract gets its own JSON and Markdown report

Example:
  clauserisk batch 'contracts/**/*.pdf'
  clauserisk batch --from-file sources.txt --concurrency 8 --output-dir ./reports
  clauserisk batch lease.docx https://example.com/terms.html`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of documents analyzed concurrently")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./clauserisk-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "deadline", 10*time.Minute, "total deadline for batch processing")
	batchCmd.Flags().StringVarP(&sourcesFile, "from-file", "f", "", "file listing one source per line")

	addAnalysisFlags(batchCmd)
	addHTTPFlags(batchCmd)
	addLLMFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && sourcesFile == "" {
		return fmt.Errorf("no sources: pass files, patterns or URLs, or --from-file")
	}

	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	sources, err := worker.ExpandSources(args)
	if err != nil {
		return err
	}
	if sourcesFile != "" {
		listed, err := worker.ReadSourcesFromFile(sourcesFile)
		if err != nil {
			return fmt.Errorf("read sources: %w", err)
		}
		more, err := worker.ExpandSources(listed)
		if err != nil {
			return err
		}
		sources = append(sources, more...)
	}
	sources = dedupe(sources)
	if len(sources) == 0 {
		return fmt.Errorf("no sources matched")
	}

	ctx, cancel := contextWithDeadline(cmd, batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  ClauseRisk Batch Analysis\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Documents:    %d\n", len(sources))
	fmt.Fprintf(os.Stderr, "  Concurrency:  %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Deadline:     %v\n", batchTimeout)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p := pipeline.NewPipeline(cfg, pipeline.WithLogger(slog.Default()))
	defer func() { _ = p.Close() }()

	processor := worker.NewBatchProcessor(p, concurrency)

	fmt.Fprintf(os.Stderr, "⚙️  Analyzing with %d workers...\n\n", concurrency)
	results := processor.ProcessSources(ctx, sources)

	var success, failure int
	counts := map[model.RiskLevel]int{}
	for i, result := range results {
		if result.Error != nil {
			failure++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Source, result.Error)
			continue
		}

		base := filepath.Join(outputDir, fmt.Sprintf("%03d-%s", i+1, sanitizeFilename(result.Source)))
		if err := p.RenderReport(result.Report, base+".json", base+".md", base+".summary.txt", nil); err != nil {
			failure++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Source, err)
			continue
		}

		success++
		counts[result.Report.Score.Overall]++
		fmt.Fprintf(os.Stderr, "✓ %s (%s, %s risk, %d clauses)\n",
			result.Source, result.Report.ContractType, result.Report.Score.Overall, len(result.Report.Clauses))
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d documents\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d (High %d, Medium %d, Low %d)\n",
		success, counts[model.RiskHigh], counts[model.RiskMedium], counts[model.RiskLow])
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failure)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failure > 0 && success == 0 {
		return fmt.Errorf("all %d documents failed", failure)
	}
	return nil
}

// contextWithDeadline derives a bounded context from the command's context
func contextWithDeadline(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename turns a source path or URL into a safe report file stem
func sanitizeFilename(s string) string {
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimSuffix(s, "/")
	if i := strings.LastIndexAny(s, `/\`); i >= 0 && i < len(s)-1 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(s, filepath.Ext(s))
	s = filenameReplacer.Replace(s)

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" || s == "." || s == ".." {
		s = "document"
	}
	return s
}
