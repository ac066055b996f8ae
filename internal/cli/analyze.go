package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/clauserisk/internal/model"
	"github.com/ppiankov/clauserisk/internal/pipeline"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|url|->",
	Short: "Analyze a single contract and generate a clause risk report",
	Long: `Analyze reads one contract and:
- Splits it into clauses
- Classifies each clause as obligation, right, prohibition or neutral
- Flags risk categories with a plain-language explanation and a safer alternative
- Marks vague drafting ("reasonable", "as soon as possible", ...)
- Scores similarity against known-safe reference clauses
- Aggregates a Low/Medium/High verdict for every clause and the whole contract

Supported inputs: .txt, .md, .docx, .pdf, .html files, http(s) URLs, or "-" for stdin.

Example:
  clauserisk analyze lease.docx
  clauserisk analyze contract.pdf --json report.json --md report.md --summary summary.txt
  clauserisk analyze https://example.com/terms --llm --llm-provider ollama --llm-model llama3.1
  cat nda.txt | clauserisk analyze -`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	outJSON    string
	outMD      string
	outSummary string
	analyzeTTL time.Duration
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path (empty to skip)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().StringVar(&outSummary, "summary", "", "output plain-text summary path (optional)")
	analyzeCmd.Flags().DurationVar(&analyzeTTL, "deadline", 2*time.Minute, "overall analysis deadline")

	addAnalysisFlags(analyzeCmd)
	addHTTPFlags(analyzeCmd)
	addLLMFlags(analyzeCmd)
}

// addAnalysisFlags registers engine, cache and audit flags
func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().Int("workers", 0, "concurrent clause workers (default: number of CPUs, 1 = sequential)")
	cmd.Flags().Bool("no-cache", false, "disable cache (force fresh analysis)")
	cmd.Flags().Bool("no-audit", false, "do not write an audit record")
	cmd.Flags().Bool("no-footer", false, "disable footer in Markdown reports")
}

// addHTTPFlags registers flags for fetching URL sources
func addHTTPFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("timeout", 30*time.Second, "HTTP timeout for URL sources")
	cmd.Flags().String("ua", "", "HTTP User-Agent")
	cmd.Flags().Int64("max-bytes", 0, "max response bytes to read")
	cmd.Flags().Bool("insecure", false, "skip TLS certificate verification (use for self-signed certs)")
	cmd.Flags().String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	cmd.Flags().String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	cmd.Flags().Bool("ignore-robots", false, "do not check robots.txt before fetching")
}

// addLLMFlags registers the optional LLM summary flags
func addLLMFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("llm", false, "enable LLM summary generation")
	cmd.Flags().String("llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	cmd.Flags().String("llm-model", "", "LLM model name (provider default if empty)")
}

// commandConfig binds the command's flags and resolves the effective config
func commandConfig(cmd *cobra.Command) (*model.Config, error) {
	bindings := map[string]string{
		"timeout":     "http.timeout",
		"ua":          "http.user_agent",
		"max-bytes":   "http.max_body_bytes",
		"insecure":    "http.insecure_tls",
		"http-proxy":  "http.http_proxy",
		"https-proxy": "http.https_proxy",
	}
	for flag := range bindings {
		if cmd.Flags().Lookup(flag) == nil {
			delete(bindings, flag)
		}
	}
	if err := bindFlags(cmd, bindings); err != nil {
		return nil, err
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Analysis.Workers, _ = flags.GetInt("workers")
	}
	if v, _ := flags.GetBool("no-cache"); v {
		cfg.Cache.Enabled = false
	}
	if v, _ := flags.GetBool("no-audit"); v {
		cfg.Audit.Enabled = false
	}
	if v, _ := flags.GetBool("no-footer"); v {
		cfg.Output.IncludeFooter = false
	}
	if v, _ := flags.GetBool("ignore-robots"); v {
		cfg.HTTP.RespectRobots = false
	}

	if v, _ := flags.GetBool("llm"); v {
		if cfg.LLM.Provider == "" || flags.Changed("llm-provider") {
			cfg.LLM.Provider, _ = flags.GetString("llm-provider")
		}
		if flags.Changed("llm-model") {
			cfg.LLM.Model, _ = flags.GetString("llm-model")
		}
		cfg.LLM.Strict = true // always enforce
		applyLLMEnv(cfg)

		switch cfg.LLM.Provider {
		case "openai":
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "anthropic":
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	source := args[0]

	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := contextWithDeadline(cmd, analyzeTTL)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", source)
		fmt.Fprintf(os.Stderr, "Workers:   %d\n", cfg.Analysis.Workers)
		fmt.Fprintf(os.Stderr, "Cache:     %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p := pipeline.NewPipeline(cfg, pipeline.WithLogger(slog.Default()))
	defer func() { _ = p.Close() }()

	report, err := p.AnalyzeSource(ctx, source)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Language: %s\n", report.Language)
		fmt.Fprintf(os.Stderr, "✓ Found %d clauses\n", len(report.Clauses))
		fmt.Fprintf(os.Stderr, "✓ Parties: %d, dates: %d, amounts: %d\n",
			len(report.Entities.Parties), len(report.Entities.Dates), len(report.Entities.Amounts))
		if report.LLM != nil && report.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM summary using %s/%s\n", report.LLM.Provider, report.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(report, outJSON, outMD, outSummary, os.Stdout); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}
