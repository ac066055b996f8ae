package model

import "time"

// Document is the normalized contract text handed to the analyzer
type Document struct {
	Text     string `json:"-"`
	Language string `json:"language"` // "en", "hi"
	Source   string `json:"source"`   // file path, URL or "-" for stdin
}

// Entities are extracted by a collaborator and carried into the report verbatim
type Entities struct {
	Parties []string `json:"parties"`
	Dates   []string `json:"dates"`
	Amounts []string `json:"amounts"`
}

// Report represents the complete contract risk analysis
type Report struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	Language     string    `json:"language"`
	ContractType string    `json:"contract_type"`
	AnalyzedAt   time.Time `json:"analyzed_at"`

	Entities Entities         `json:"entities"`
	Clauses  []ClauseAnalysis `json:"clauses"`

	Score Score `json:"score"`

	LLM *LLMSummary `json:"llm,omitempty"` // Optional LLM summary (separate, never affects score)
}

// Score is the document-level aggregation with a transparent breakdown
type Score struct {
	Overall       RiskLevel `json:"overall"`
	HighClauses   int       `json:"high_clauses"`
	MediumClauses int       `json:"medium_clauses"`
	LowClauses    int       `json:"low_clauses"`
	Signals       []Signal  `json:"signals"`
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalOverallRisk          SignalType = "overall_risk"          // High-clause count threshold
	SignalCategoryDistribution SignalType = "category_distribution" // Risk category tallies
	SignalAmbiguity            SignalType = "ambiguity"             // Vague drafting markers
	SignalTemplateSimilarity   SignalType = "template_similarity"   // Closeness to safe phrasing
	SignalIntentBalance        SignalType = "intent_balance"        // Obligations vs rights vs prohibitions
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// LLMSummary contains optional LLM-generated plain-language summary.
// It is produced after scoring and never feeds back into it.
type LLMSummary struct {
	Enabled   bool     `json:"enabled"`
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	Strict    bool     `json:"strict"`
	SummaryMD string   `json:"summary_md,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// AuditRecord is the structured log entry written once per analysis
type AuditRecord struct {
	Time     string    `json:"time"` // ISO-8601
	Risk     RiskLevel `json:"risk"`
	Clauses  int       `json:"clauses"`
	Parties  []string  `json:"parties"`
	ReportID string    `json:"report_id,omitempty"`
	Source   string    `json:"source,omitempty"`
}

// NewAuditRecord derives the audit entry for a finished report
func NewAuditRecord(r *Report) AuditRecord {
	parties := r.Entities.Parties
	if parties == nil {
		parties = []string{}
	}
	return AuditRecord{
		Time:     r.AnalyzedAt.Format(time.RFC3339Nano),
		Risk:     r.Score.Overall,
		Clauses:  len(r.Clauses),
		Parties:  parties,
		ReportID: r.ID,
		Source:   r.Source,
	}
}
