package corpus

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"deepsight-be/pkg/nlp"
	"deepsight-be/pkg/rag/lookup"
)

// MemoryIndex ranks facilities by token overlap with the query. It needs no
// embedding service and is used when the corpus is served from a file.
type MemoryIndex struct {
	snapshot *Snapshot
	tokens   []map[string]bool
}

func NewMemoryIndex(s *Snapshot) *MemoryIndex {
	tokens := make([]map[string]bool, len(s.facilities))
	for i, f := range s.facilities {
		tokens[i] = tokenSet(f.Name + " " + f.Location + " " + f.FreeText)
	}
	return &MemoryIndex{snapshot: s, tokens: tokens}
}

func (m *MemoryIndex) TopK(ctx context.Context, query string, k int) ([]lookup.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := tokenSet(query)
	if len(q) == 0 {
		return nil, nil
	}
	lowerQuery := strings.ToLower(query)

	var matches []lookup.Match
	for i, f := range m.snapshot.facilities {
		hits := 0
		for t := range q {
			if m.tokens[i][t] {
				hits++
			}
		}
		score := float64(hits) / float64(len(q))
		// a name mentioned verbatim outranks incidental word overlap
		if strings.Contains(lowerQuery, strings.ToLower(f.Name)) {
			score += 1
		}
		if score == 0 {
			continue
		}
		matches = append(matches, lookup.Match{Record: toRecord(f), Score: score})
	}

	sort.SliceStable(matches, func(a, b int) bool { return matches[a].Score > matches[b].Score })
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(w) < 2 || nlp.IsStopWord(w) {
			continue
		}
		set[w] = true
	}
	return set
}
