package model

// Clause is a contiguous fragment of the normalized document text
type Clause struct {
	Number int    `json:"number"` // 1-based position in document order
	Text   string `json:"text"`
}

// Intent is the modal force of a clause
type Intent string

const (
	IntentObligation  Intent = "Obligation"
	IntentRight       Intent = "Right"
	IntentProhibition Intent = "Prohibition"
	IntentNeutral     Intent = "Neutral"
)

// RiskCategory is a member of the closed risk taxonomy
type RiskCategory string

const (
	RiskIndemnity               RiskCategory = "Indemnity"
	RiskPenalty                 RiskCategory = "Penalty"
	RiskUnilateralTermination   RiskCategory = "Unilateral Termination"
	RiskArbitrationJurisdiction RiskCategory = "Arbitration/Jurisdiction"
	RiskAutoRenewal             RiskCategory = "Auto Renewal"
	RiskNonCompete              RiskCategory = "Non Compete"
	RiskIPTransfer              RiskCategory = "IP Transfer"
	RiskLockInPeriod            RiskCategory = "Lock-in Period"
)

// RiskLevel is the derived Low/Medium/High classification
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// RiskFinding is a detected category with its static plain-language attachments
type RiskFinding struct {
	Category         RiskCategory `json:"category"`
	Explanation      string       `json:"explanation"`
	SaferAlternative string       `json:"safer_alternative"`
}

// ClauseAnalysis aggregates every finding for one clause.
// Level is derived from len(Risks) and never set by callers.
type ClauseAnalysis struct {
	Clause      Clause        `json:"clause"`
	Intent      Intent        `json:"intent"`
	Risks       []RiskFinding `json:"risks"`
	Ambiguities []string      `json:"ambiguities,omitempty"`
	Similarity  float64       `json:"similarity"` // max cosine similarity to a safe reference clause, [0,1]
	Level       RiskLevel     `json:"level"`
}

// Categories returns the detected categories in detection order
func (a ClauseAnalysis) Categories() []RiskCategory {
	cats := make([]RiskCategory, 0, len(a.Risks))
	for _, r := range a.Risks {
		cats = append(cats, r.Category)
	}
	return cats
}
