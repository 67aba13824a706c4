package nlp

import (
	"sort"
	"strings"
)

// KeywordLabels are the entity labels kept as search-log keywords.
var KeywordLabels = map[string]bool{
	"GPE": true, "ORG": true, "PERSON": true, "LOC": true, "FAC": true, "EVENT": true,
}

var questionWords = map[string]bool{
	"what": true, "how": true, "when": true, "where": true, "why": true,
	"which": true, "who": true, "whom": true, "whose": true,
}

var stopWords = map[string]bool{
	"a": true, "about": true, "all": true, "also": true, "an": true, "and": true, "any": true,
	"are": true, "as": true, "at": true, "be": true, "been": true, "being": true, "but": true,
	"by": true, "can": true, "could": true, "do": true, "does": true, "for": true, "from": true,
	"had": true, "has": true, "have": true, "he": true, "her": true, "here": true, "him": true,
	"his": true, "i": true, "if": true, "in": true, "into": true, "is": true, "it": true,
	"its": true, "me": true, "more": true, "most": true, "my": true, "no": true, "not": true,
	"of": true, "on": true, "or": true, "our": true, "please": true, "she": true, "so": true,
	"some": true, "such": true, "than": true, "that": true, "the": true, "their": true,
	"them": true, "then": true, "there": true, "these": true, "they": true, "this": true,
	"those": true, "to": true, "too": true, "us": true, "very": true, "was": true, "we": true,
	"were": true, "will": true, "with": true, "would": true, "you": true, "your": true,
	"thing": true, "things": true, "something": true, "anything": true,
}

// IsStopWord reports whether w is a question word or a common English stop word.
func IsStopWord(w string) bool {
	w = strings.ToLower(strings.TrimSpace(w))
	return questionWords[w] || stopWords[w]
}

// ExtractKeywords returns the sorted distinct entities and noun phrases of
// text, or text itself when nothing qualifies.
func ExtractKeywords(r Recognizer, text string) []string {
	set := make(map[string]struct{})

	for _, ent := range r.Entities(text) {
		if KeywordLabels[ent.Label] && !questionWords[strings.ToLower(ent.Text)] && ent.Text != "" {
			set[ent.Text] = struct{}{}
		}
	}
	for _, np := range r.NounPhrases(text) {
		np = strings.TrimSpace(np)
		if len(np) > 2 && !IsStopWord(np) {
			set[np] = struct{}{}
		}
	}

	if len(set) == 0 {
		return []string{text}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
