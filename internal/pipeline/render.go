package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/clauserisk/internal/model"
	"github.com/ppiankov/clauserisk/internal/similarity"
)

// Renderer writes reports as JSON, Markdown and plain text
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// LLMPath is the companion path of a Markdown report for the LLM summary
func LLMPath(mdPath string) string {
	return strings.TrimSuffix(mdPath, ".md") + ".llm.md"
}

// RenderJSON writes the full report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the human-readable report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// RenderLLMMarkdown writes an already rendered LLM summary
func (r *Renderer) RenderLLMMarkdown(content, path string) error {
	return writeFile(path, []byte(content))
}

// RenderPlainSummary writes the plain-text clause summary
func (r *Renderer) RenderPlainSummary(report *model.Report, path string) error {
	return writeFile(path, []byte(PlainSummary(report)))
}

// RenderConsole prints the plain-text summary followed by the verdict
func (r *Renderer) RenderConsole(w io.Writer, report *model.Report) {
	_, _ = fmt.Fprint(w, PlainSummary(report))
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Contract type: %s\n", report.ContractType)
	_, _ = fmt.Fprintf(w, "Overall risk:  %s (%d high, %d medium, %d low clauses)\n",
		report.Score.Overall, report.Score.HighClauses, report.Score.MediumClauses, report.Score.LowClauses)
	if report.LLM != nil && report.LLM.Enabled {
		_, _ = fmt.Fprintf(w, "LLM summary:   %s/%s\n", report.LLM.Provider, report.LLM.Model)
	}
}

// PlainSummary renders "CONTRACT SUMMARY" followed by one
// "Clause <n> | <Level> | <categories>" line per clause.
// A clause without risks keeps the trailing empty field.
func PlainSummary(report *model.Report) string {
	var b strings.Builder
	b.WriteString("CONTRACT SUMMARY\n")
	for _, c := range report.Clauses {
		cats := make([]string, 0, len(c.Risks))
		for _, cat := range c.Categories() {
			cats = append(cats, string(cat))
		}
		fmt.Fprintf(&b, "Clause %d | %s | %s\n", c.Clause.Number, c.Level, strings.Join(cats, ","))
	}
	return b.String()
}

// Markdown renders the report with per-finding explanations and safer
// alternatives
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	b.WriteString("# Contract Risk Report\n\n")
	fmt.Fprintf(&b, "- **Source:** %s\n", report.Source)
	fmt.Fprintf(&b, "- **Contract Type:** %s\n", report.ContractType)
	fmt.Fprintf(&b, "- **Language:** %s\n", report.Language)
	fmt.Fprintf(&b, "- **Analyzed:** %s\n", report.AnalyzedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- **Report ID:** %s\n\n", report.ID)

	fmt.Fprintf(&b, "## Overall Risk: %s\n\n", report.Score.Overall)
	b.WriteString("| High | Medium | Low |\n|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| %d | %d | %d |\n\n", report.Score.HighClauses, report.Score.MediumClauses, report.Score.LowClauses)

	b.WriteString("## Entities\n\n")
	writeList(&b, "Parties", report.Entities.Parties)
	writeList(&b, "Dates", report.Entities.Dates)
	writeList(&b, "Amounts", report.Entities.Amounts)
	b.WriteString("\n")

	b.WriteString("## Clauses\n\n")
	if len(report.Clauses) == 0 {
		b.WriteString("_No clauses found._\n\n")
	}
	for _, c := range report.Clauses {
		fmt.Fprintf(&b, "### Clause %d: %s\n\n", c.Clause.Number, c.Level)
		fmt.Fprintf(&b, "> %s\n\n", strings.ReplaceAll(c.Clause.Text, "\n", "\n> "))
		fmt.Fprintf(&b, "- **Intent:** %s\n", c.Intent)
		fmt.Fprintf(&b, "- **Similarity to safe template:** %.2f\n", similarity.Round(c.Similarity))
		if len(c.Ambiguities) > 0 {
			fmt.Fprintf(&b, "- **Ambiguous terms:** %s\n", strings.Join(c.Ambiguities, ", "))
		}
		if len(c.Risks) == 0 {
			b.WriteString("- **Risks:** none detected\n\n")
			continue
		}
		b.WriteString("- **Risks:**\n")
		for _, risk := range c.Risks {
			fmt.Fprintf(&b, "  - **%s:** %s\n", risk.Category, risk.Explanation)
			fmt.Fprintf(&b, "    - _Safer alternative:_ %s\n", risk.SaferAlternative)
		}
		b.WriteString("\n")
	}

	if len(report.Score.Signals) > 0 {
		b.WriteString("## Signals\n\n")
		for _, sig := range report.Score.Signals {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", sig.Type, sig.Severity, sig.Description)
			keys := make([]string, 0, len(sig.Data))
			for k := range sig.Data {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&b, "  - `%s`: %v\n", k, sig.Data[k])
			}
		}
		b.WriteString("\n")
	}

	if report.LLM != nil && report.LLM.Enabled {
		b.WriteString("_A separate LLM summary was generated. It does not affect the risk levels above._\n\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("_Generated by clauserisk. Rule-based lexical analysis; not legal advice._\n")
	}

	return b.String()
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		fmt.Fprintf(b, "- **%s:** none found\n", label)
		return
	}
	fmt.Fprintf(b, "- **%s:** %s\n", label, strings.Join(items, "; "))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
