// Package similarity scores how lexically close a clause is to a fixed set
// of known-safe reference clauses.
package similarity

import "math"

// References are the safe reference clauses, reproduced verbatim.
var References = []string{
	"Either party may terminate with 30 days written notice.",
	"Liability is limited to direct damages only.",
	"Creator retains intellectual property ownership.",
	"Disputes will be resolved by mutual arbitration.",
	"Contract will not auto-renew without consent.",
}

// Scorer holds only the immutable reference texts. The TF-IDF space is fitted
// jointly over the references and the clause on every call, so a Scorer can
// be shared between goroutines and scores from different clauses live in
// different vector spaces.
type Scorer struct {
	references []string
}

// NewScorer creates a scorer over the given references (References if none)
func NewScorer(references ...string) *Scorer {
	if len(references) == 0 {
		references = References
	}
	return &Scorer{references: append([]string(nil), references...)}
}

// Score returns the maximum cosine similarity between the clause and any
// reference, in [0,1]
func (s *Scorer) Score(clause string) float64 {
	docs := make([]string, 0, len(s.references)+1)
	docs = append(docs, s.references...)
	docs = append(docs, clause)

	space := fit(docs)
	target := space.vectors[len(docs)-1]

	best := 0.0
	for _, ref := range space.vectors[:len(s.references)] {
		if sim := cosine(target, ref); sim > best {
			best = sim
		}
	}
	return clamp(best)
}

// Round rounds a score to two decimals for display
func Round(score float64) float64 {
	return math.Round(score*100) / 100
}

func clamp(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
