package similarity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScorer_ReferenceSelfMatch(t *testing.T) {
	s := NewScorer()
	for _, ref := range References {
		assert.InDelta(t, 1.0, s.Score(ref), 1e-9, ref)
	}
}

func TestScorer_Range(t *testing.T) {
	s := NewScorer()
	clauses := []string{
		"",
		"!!! ??? ...",
		"a b c",
		"The Supplier shall indemnify the Customer against all losses.",
		"Either party may terminate this agreement at any time without cause.",
		"Liability is limited to direct damages only, excluding lost profits.",
		"नियोक्ता समाप्त कर सकता है",
	}
	for _, c := range clauses {
		score := s.Score(c)
		assert.GreaterOrEqual(t, score, 0.0, c)
		assert.LessOrEqual(t, score, 1.0, c)
	}
}

func TestScorer_DegenerateClauseScoresZero(t *testing.T) {
	s := NewScorer()
	assert.Equal(t, 0.0, s.Score(""))
	// single-letter tokens are dropped by the tokenizer
	assert.Equal(t, 0.0, s.Score("a b c d"))
	// no shared vocabulary with any reference
	assert.Equal(t, 0.0, s.Score("Zebra quokka platypus."))
}

func TestScorer_CloserPhrasingScoresHigher(t *testing.T) {
	s := NewScorer()
	near := s.Score("Either party may terminate with 60 days written notice.")
	far := s.Score("The landlord keeps the security deposit.")
	assert.Greater(t, near, far)
	assert.Greater(t, near, 0.5)
}

// Each call fits its own vocabulary and IDF weights, so the reference
// vectors themselves move with the clause being scored. Scores from
// different clauses therefore do not share a scale.
func TestScorer_ScoresAreNotOnASharedScale(t *testing.T) {
	a := fit(append(append([]string(nil), References...), "Disputes will be resolved by arbitration."))
	b := fit(append(append([]string(nil), References...), "Disputes about fees will be resolved by the courts."))

	assert.NotEqual(t, len(a.vocab), len(b.vocab))
	assert.NotEqual(t, a.vectors[3], b.vectors[3], "reference #4 is re-weighted per clause")
}

func TestScorer_CustomReferences(t *testing.T) {
	s := NewScorer("Payment within thirty days.")
	assert.InDelta(t, 1.0, s.Score("Payment within thirty days."), 1e-9)
	assert.Equal(t, 0.0, s.Score("Disputes will be resolved by mutual arbitration."))
}

func TestScorer_ConcurrentUse(t *testing.T) {
	s := NewScorer()
	want := s.Score("Disputes will be resolved by mutual arbitration in London.")

	var wg sync.WaitGroup
	results := make([]float64, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.Score("Disputes will be resolved by mutual arbitration in London.")
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		require.Equal(t, want, r)
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"either", "party", "may", "terminate", "with", "30", "days", "written", "notice"},
		tokenize("Either party may terminate with 30 days written notice."))
	assert.Equal(t, []string{"auto", "renew"}, tokenize("auto-renew"))
	assert.Empty(t, tokenize("a I 1"))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.33, Round(0.3333))
	assert.Equal(t, 1.0, Round(0.999999))
	assert.Equal(t, 0.0, Round(0))
}

func TestCosine_ZeroVector(t *testing.T) {
	assert.Equal(t, 0.0, cosine([]float64{0, 0}, []float64{1, 0}))
	assert.InDelta(t, 1.0, cosine([]float64{1, 2}, []float64{2, 4}), 1e-12)
}
