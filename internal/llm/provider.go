package llm

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/clauserisk/internal/model"
)

// systemPrompt is shared by every provider
const systemPrompt = "You explain contract risk reports in plain language. You never add risks, clauses or legal conclusions that are not in the report."

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a plain-language summary of a finished report
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	Report model.Report

	// ClauseNumbers is the STRICT allowlist of clause numbers the summary may mention
	ClauseNumbers []int

	// Prompt overrides the default prompt when set
	Prompt string

	Model     string
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	Summary string

	// CitedClauses are the clause numbers the summary mentions
	CitedClauses []int

	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string
	Model    string
	APIKey   string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	Timeout int // seconds

	// Strict rejects summaries that mention clauses the report does not have
	Strict bool

	MaxTokens int

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // disabled
		Timeout:   30,
		Strict:    true,
		MaxTokens: 600,
	}
}

// BuildPrompt lists only the computed verdicts: contract type, overall risk
// and each clause's level with its detected categories
func BuildPrompt(report model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are explaining an automated contract risk report to a non-lawyer.
The risk levels below were computed by fixed rules and are final.

CRITICAL RULES:
1. You MUST ONLY refer to these clause numbers: %s
2. DO NOT invent risks, clauses, parties or amounts.
3. DO NOT change or argue with any risk level.
4. This is not legal advice; say so once.

Report:
- Contract type: %s
- Overall risk: %s
- Clauses: %d (%d High, %d Medium, %d Low)

Clauses with detected risks:
`, joinNumbers(ClauseNumbers(report)), report.ContractType, report.Score.Overall,
		len(report.Clauses), report.Score.HighClauses, report.Score.MediumClauses, report.Score.LowClauses)

	listed := 0
	for _, c := range report.Clauses {
		if len(c.Risks) == 0 {
			continue
		}
		cats := make([]string, 0, len(c.Risks))
		for _, r := range c.Risks {
			cats = append(cats, string(r.Category))
		}
		fmt.Fprintf(&b, "- Clause %d (%s): %s\n", c.Clause.Number, c.Level, strings.Join(cats, ", "))
		listed++
	}
	if listed == 0 {
		b.WriteString("- (none)\n")
	}

	b.WriteString("\nWrite 3-5 sentences explaining what the signer should pay attention to.")
	return b.String()
}

// ClauseNumbers returns the clause numbers present in the report
func ClauseNumbers(report model.Report) []int {
	nums := make([]int, 0, len(report.Clauses))
	for _, c := range report.Clauses {
		nums = append(nums, c.Clause.Number)
	}
	return nums
}

var clauseRefPattern = regexp.MustCompile(`(?i)\bclause(s?)\s+#?(\d+)((?:\s*(?:,|and|&|or)\s*#?\d+\b)*)`)
var numberPattern = regexp.MustCompile(`\d+`)

// extractClauseRefs finds clause numbers mentioned in text
// ("Clause 2", "clauses 3, 4 and 7"), deduplicated and sorted.
// Lists are only read after the plural form.
func extractClauseRefs(text string) []int {
	seen := make(map[int]bool)
	var refs []int

	for _, m := range clauseRefPattern.FindAllStringSubmatch(text, -1) {
		span := m[2]
		if m[1] != "" {
			span += " " + m[3]
		}
		for _, digits := range numberPattern.FindAllString(span, -1) {
			n, err := strconv.Atoi(digits)
			if err != nil || seen[n] {
				continue
			}
			seen[n] = true
			refs = append(refs, n)
		}
	}

	sort.Ints(refs)
	return refs
}

// verifyClauseRefs extracts the cited clauses and, in strict mode, rejects
// any number outside allowed
func verifyClauseRefs(summary string, allowed []int, strict bool) ([]int, error) {
	cited := extractClauseRefs(summary)
	if !strict {
		return cited, nil
	}

	ok := make(map[int]bool, len(allowed))
	for _, n := range allowed {
		ok[n] = true
	}
	for _, n := range cited {
		if !ok[n] {
			return nil, fmt.Errorf("CLAUSE LEAK: LLM referenced nonexistent clause %d", n)
		}
	}
	return cited, nil
}

func joinNumbers(nums []int) string {
	if len(nums) == 0 {
		return "(no clauses)"
	}
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

func resolveModel(reqModel, configModel, fallback string) string {
	if reqModel != "" {
		return reqModel
	}
	if configModel != "" {
		return configModel
	}
	return fallback
}

func resolveMaxTokens(reqMax, configMax int) int {
	if reqMax > 0 {
		return reqMax
	}
	if configMax > 0 {
		return configMax
	}
	return 600
}
