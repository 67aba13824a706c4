package nlp

import (
	"sort"

	"github.com/pmezard/go-difflib/difflib"
)

// CloseMatches returns up to n candidates whose similarity ratio with word is
// at least cutoff, best first. Ties are broken by the candidate text in
// descending order.
func CloseMatches(word string, candidates []string, n int, cutoff float64) []string {
	if n <= 0 {
		return nil
	}

	type scored struct {
		text  string
		score float64
	}

	target := chars(word)
	var hits []scored
	for _, c := range candidates {
		m := difflib.NewMatcher(chars(c), target)
		if m.RealQuickRatio() >= cutoff && m.QuickRatio() >= cutoff {
			if s := m.Ratio(); s >= cutoff {
				hits = append(hits, scored{text: c, score: s})
			}
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].text > hits[j].text
	})

	if len(hits) > n {
		hits = hits[:n]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.text
	}
	return out
}

func chars(s string) []string {
	runes := []rune(s)
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}
