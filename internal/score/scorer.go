package score

import (
	"fmt"

	"github.com/ppiankov/clauserisk/internal/classify"
	"github.com/ppiankov/clauserisk/internal/model"
)

// ClauseLevel derives a clause's risk level from its category count
func ClauseLevel(categories int) model.RiskLevel {
	switch {
	case categories == 0:
		return model.RiskLow
	case categories == 1:
		return model.RiskMedium
	default:
		return model.RiskHigh
	}
}

// OverallLevel derives the document verdict from the number of High clauses
func OverallLevel(highClauses int) model.RiskLevel {
	switch {
	case highClauses > 2:
		return model.RiskHigh
	case highClauses > 0:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// Scorer aggregates clause analyses into the document score
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate computes the overall verdict and transparent diagnostic signals.
// The signals describe the input; only the High-clause count decides Overall.
func (s *Scorer) Calculate(clauses []model.ClauseAnalysis) model.Score {
	var high, medium, low int
	for _, c := range clauses {
		switch c.Level {
		case model.RiskHigh:
			high++
		case model.RiskMedium:
			medium++
		default:
			low++
		}
	}

	overall := OverallLevel(high)

	signals := []model.Signal{
		s.overallSignal(overall, high, len(clauses)),
		s.categorySignal(clauses),
		s.intentSignal(clauses),
	}
	if sig, ok := s.ambiguitySignal(clauses); ok {
		signals = append(signals, sig)
	}
	if sig, ok := s.similaritySignal(clauses); ok {
		signals = append(signals, sig)
	}

	return model.Score{
		Overall:       overall,
		HighClauses:   high,
		MediumClauses: medium,
		LowClauses:    low,
		Signals:       signals,
	}
}

func (s *Scorer) overallSignal(overall model.RiskLevel, high, total int) model.Signal {
	severity := model.SeverityInfo
	switch overall {
	case model.RiskHigh:
		severity = model.SeverityCritical
	case model.RiskMedium:
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalOverallRisk,
		Severity:    severity,
		Description: fmt.Sprintf("%d of %d clauses rated High", high, total),
		Data: map[string]interface{}{
			"high_clauses": high,
			"clauses":      total,
			"overall":      string(overall),
			"formula":      "high == 0 -> Low; high <= 2 -> Medium; high > 2 -> High",
		},
	}
}

// categorySignal tallies categories in taxonomy order
func (s *Scorer) categorySignal(clauses []model.ClauseAnalysis) model.Signal {
	counts := make(map[model.RiskCategory]int)
	total := 0
	for _, c := range clauses {
		for _, r := range c.Risks {
			counts[r.Category]++
			total++
		}
	}

	tally := make(map[string]interface{})
	var present []string
	for _, cat := range classify.Taxonomy() {
		if n := counts[cat]; n > 0 {
			tally[string(cat)] = n
			present = append(present, string(cat))
		}
	}

	severity := model.SeverityInfo
	if len(present) >= 4 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalCategoryDistribution,
		Severity:    severity,
		Description: fmt.Sprintf("%d risk findings across %d categories", total, len(present)),
		Data: map[string]interface{}{
			"findings":   total,
			"categories": tally,
			"formula":    "clause level: 0 -> Low; 1 -> Medium; >= 2 -> High",
		},
	}
}

func (s *Scorer) intentSignal(clauses []model.ClauseAnalysis) model.Signal {
	counts := map[model.Intent]int{}
	for _, c := range clauses {
		counts[c.Intent]++
	}

	return model.Signal{
		Type:     model.SignalIntentBalance,
		Severity: model.SeverityInfo,
		Description: fmt.Sprintf("Obligations: %d, rights: %d, prohibitions: %d, neutral: %d",
			counts[model.IntentObligation], counts[model.IntentRight],
			counts[model.IntentProhibition], counts[model.IntentNeutral]),
		Data: map[string]interface{}{
			"obligation":  counts[model.IntentObligation],
			"right":       counts[model.IntentRight],
			"prohibition": counts[model.IntentProhibition],
			"neutral":     counts[model.IntentNeutral],
		},
	}
}

func (s *Scorer) ambiguitySignal(clauses []model.ClauseAnalysis) (model.Signal, bool) {
	var flagged []int
	phrases := make(map[string]int)
	for _, c := range clauses {
		if len(c.Ambiguities) == 0 {
			continue
		}
		flagged = append(flagged, c.Clause.Number)
		for _, p := range c.Ambiguities {
			phrases[p]++
		}
	}
	if len(flagged) == 0 {
		return model.Signal{}, false
	}

	return model.Signal{
		Type:        model.SignalAmbiguity,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("Vague drafting in %d clause(s)", len(flagged)),
		Data: map[string]interface{}{
			"clauses": flagged,
			"phrases": phrases,
		},
	}, true
}

func (s *Scorer) similaritySignal(clauses []model.ClauseAnalysis) (model.Signal, bool) {
	if len(clauses) == 0 {
		return model.Signal{}, false
	}

	var sum, max float64
	for _, c := range clauses {
		sum += c.Similarity
		if c.Similarity > max {
			max = c.Similarity
		}
	}
	mean := sum / float64(len(clauses))

	return model.Signal{
		Type:        model.SignalTemplateSimilarity,
		Severity:    model.SeverityInfo,
		Description: fmt.Sprintf("Mean similarity to safe reference clauses: %.2f", mean),
		Data: map[string]interface{}{
			"mean":    mean,
			"max":     max,
			"note":    "each clause is scored in its own TF-IDF space; scores are indicative, not comparable",
			"formula": "max cosine(tfidf(clause), tfidf(reference_i))",
		},
	}, true
}
