package textsim

import (
	"sort"
	"strings"
)

// Cosine scores the lexical similarity of two texts in [0,1]. Each text
// is tokenized and its term-frequency vector L2-normalized before idf
// weighting, so a burst of rare terms unique to one text cannot dilute
// the overlap signal; the idf for the dot product comes from the joint
// two-document corpus. Identical non-empty texts score 1.0 (within
// floating-point tolerance); any empty input scores 0.0 rather than
// failing.
func Cosine(textA, textB string) float64 {
	ta := Tokenize(textA)
	tb := Tokenize(textB)
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}
	idf := InverseDocumentFrequency([][]string{ta, tb})
	va := unitTF(ta)
	vb := unitTF(tb)

	var dot float64
	for t, wa := range va {
		if wb, ok := vb[t]; ok {
			dot += wa * wb * idf[t]
		}
	}
	if dot > 1 {
		dot = 1
	}
	if dot < 0 {
		dot = 0
	}
	return dot
}

// Jaccard scores the overlap of two comma-delimited keyword strings as
// |A∩B| / |A∪B| over case-normalized sets. Both sets empty scores 0.0;
// absence of keywords is not evidence of similarity.
func Jaccard(keywordsA, keywordsB string) float64 {
	a := keywordSet(keywordsA)
	b := keywordSet(keywordsB)
	if len(a) == 0 && len(b) == 0 {
		return 0.0
	}
	inter := 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}

func keywordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, k := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '，' }) {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			set[k] = true
		}
	}
	return set
}

// ExtractKeywords returns up to topN tokens ranked by term frequency,
// descending; ties are broken by first occurrence in the text, so the
// result is deterministic.
func ExtractKeywords(text string, topN int) []string {
	if topN <= 0 {
		return nil
	}
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	counts := make(map[string]int)
	firstAt := make(map[string]int)
	order := make([]string, 0)
	for i, t := range tokens {
		if counts[t] == 0 {
			firstAt[t] = i
			order = append(order, t)
		}
		counts[t]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstAt[order[i]] < firstAt[order[j]]
	})

	if len(order) > topN {
		order = order[:topN]
	}
	return order
}

// TopicRelated is the cheap pre-filter applied before any classification
// call: true when the pairwise cosine similarity meets the threshold.
func TopicRelated(textA, textB string, threshold float64) bool {
	return Cosine(textA, textB) >= threshold
}

// Matrix computes the symmetric N×N pairwise cosine matrix with 1.0 on
// the diagonal. Cost is O(N²) cosine calls; callers must cap N.
func Matrix(texts []string) [][]float64 {
	n := len(texts)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		m[i][i] = 1.0
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := Cosine(texts[i], texts[j])
			m[i][j] = s
			m[j][i] = s
		}
	}
	return m
}
