package textsim

import "math"

// TermFrequency counts token occurrences.
func TermFrequency(tokens []string) map[string]int {
	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}

// InverseDocumentFrequency computes smoothed idf over a corpus of token
// sequences: log((N+1)/(df+1)) + 1. The smoothing keeps single-document
// corpora finite and all weights positive. For a pairwise comparison the
// corpus is exactly the two texts, so idf only reflects which of the two
// documents contain a term.
func InverseDocumentFrequency(corpus [][]string) map[string]float64 {
	n := float64(len(corpus))
	df := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]bool, len(doc))
		for _, t := range doc {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}
	idf := make(map[string]float64, len(df))
	for t, d := range df {
		idf[t] = math.Log((n+1)/float64(d+1)) + 1
	}
	return idf
}

// Vectorize produces a sparse tf×idf vector: term frequency normalized
// by document length, weighted by idf. Terms absent from idf get weight
// from frequency alone.
func Vectorize(tokens []string, idf map[string]float64) map[string]float64 {
	if len(tokens) == 0 {
		return map[string]float64{}
	}
	n := float64(len(tokens))
	vec := make(map[string]float64)
	for t, count := range TermFrequency(tokens) {
		w := float64(count) / n
		if f, ok := idf[t]; ok {
			w *= f
		}
		vec[t] = w
	}
	return vec
}

// unitTF returns the L2-normalized term-frequency vector of tokens.
func unitTF(tokens []string) map[string]float64 {
	tf := TermFrequency(tokens)
	var sq float64
	for _, c := range tf {
		sq += float64(c) * float64(c)
	}
	if sq == 0 {
		return map[string]float64{}
	}
	norm := math.Sqrt(sq)
	vec := make(map[string]float64, len(tf))
	for t, c := range tf {
		vec[t] = float64(c) / norm
	}
	return vec
}
