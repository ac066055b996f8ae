package similarity

import (
	"math"
	"regexp"
	"strings"
)

// tokenPattern keeps runs of two or more letters, digits or underscores
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// vectorSpace is a TF-IDF model fitted over a fixed set of documents.
// It is built for one scoring call and then discarded.
type vectorSpace struct {
	vocab   map[string]int
	vectors [][]float64 // one L2-normalized row per fitted document
}

// fit builds the vocabulary, smoothed IDF weights and normalized rows
func fit(docs []string) *vectorSpace {
	tokens := make([][]string, len(docs))
	vocab := make(map[string]int)
	df := []int{}

	for i, doc := range docs {
		tokens[i] = tokenize(doc)
		seen := make(map[string]bool)
		for _, tok := range tokens[i] {
			idx, ok := vocab[tok]
			if !ok {
				idx = len(vocab)
				vocab[tok] = idx
				df = append(df, 0)
			}
			if !seen[tok] {
				seen[tok] = true
				df[idx]++
			}
		}
	}

	n := float64(len(docs))
	idf := make([]float64, len(df))
	for i, d := range df {
		idf[i] = math.Log((1+n)/(1+float64(d))) + 1
	}

	vectors := make([][]float64, len(docs))
	for i, toks := range tokens {
		vec := make([]float64, len(vocab))
		for _, tok := range toks {
			vec[vocab[tok]]++
		}
		for j := range vec {
			vec[j] *= idf[j]
		}
		normalize(vec)
		vectors[i] = vec
	}

	return &vectorSpace{vocab: vocab, vectors: vectors}
}

func normalize(vec []float64) {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}

// cosine returns 0 when either vector is all zeros
func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	l := len(a)
	if len(b) < l {
		l = len(b)
	}
	for i := 0; i < l; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
