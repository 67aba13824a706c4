// Package directions turns distance and direction questions into map links.
package directions

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"deepsight-be/pkg/nlp"
)

// Method names how an extraction was obtained.
type Method string

const (
	MethodNone      Method = "none"
	MethodExplicit  Method = "explicit"
	MethodSubstring Method = "substring"
	MethodPattern   Method = "pattern"
	MethodEntity    Method = "entity"
	MethodPhrase    Method = "noun_phrase"
)

const (
	fuzzyLimit  = 5
	fuzzyCutoff = 0.5
	maxPhrase   = 3
)

// Extraction is the outcome of scanning a question for places. Either both
// Origin and Destination are set, or Place is set, or nothing is.
type Extraction struct {
	Origin      string
	Destination string
	Place       string

	// Candidates are near matches from the place name set. They are reported
	// for diagnostics and never used to pick places.
	Candidates []string
	Method     Method
}

// IsRoute reports whether two places were found.
func (e Extraction) IsRoute() bool {
	return e.Origin != "" && e.Destination != ""
}

type pattern struct {
	name string
	re   *regexp.Regexp
}

// patterns are tried in order against the lower-cased question. A match
// yields (group 2, group 1) as (origin, destination).
var patterns = []pattern{
	{"reach_from", regexp.MustCompile(`how\s.*?to\s+reach\s+(.+?)\s+from\s+(.+)`)},
	{"between_and", regexp.MustCompile(`distance\s+between\s+(.+?)\s+and\s+(.+)`)},
	{"to_distance", regexp.MustCompile(`(.+?)\s+to\s+(.+?)\s+distance`)},
	{"how_far_to", regexp.MustCompile(`how\s+far\s+is\s+(.+?)\s+to\s+(.+)`)},
	{"to", regexp.MustCompile(`(.+?)\s+to\s+(.+)`)},
}

// filler words are stripped from the front of a captured group.
var filler = map[string]bool{
	"directions": true, "direction": true, "route": true, "way": true, "distance": true,
	"navigate": true, "get": true, "go": true, "reach": true, "travel": true,
	"give": true, "show": true, "tell": true, "find": true, "need": true, "want": true,
	"please": true, "how": true, "far": true, "is": true, "the": true, "me": true,
	"i": true, "a": true, "what": true, "from": true,
}

// Extractor finds one or two place names in a question.
type Extractor struct {
	places     []string
	recognizer nlp.Recognizer
}

// NewExtractor takes the lower-cased place name set in corpus order.
func NewExtractor(places []string, recognizer nlp.Recognizer) *Extractor {
	return &Extractor{places: places, recognizer: recognizer}
}

func (e *Extractor) Extract(text string) Extraction {
	lower := strings.ToLower(strings.TrimSpace(text))

	known := e.knownPlaces(lower)
	out := Extraction{
		Candidates: nlp.CloseMatches(lower, e.places, fuzzyLimit, fuzzyCutoff),
		Method:     MethodNone,
	}

	if len(known) >= 2 {
		out.Origin, out.Destination = Title(known[0]), Title(known[1])
		out.Method = MethodSubstring
		return out
	}

	if origin, dest, ok := matchPatterns(lower); ok {
		out.Origin, out.Destination = Title(origin), Title(dest)
		out.Method = MethodPattern
		return out
	}

	if len(known) == 1 {
		out.Place = Title(known[0])
		out.Method = MethodSubstring
		return out
	}

	if place := e.entityPlace(text); place != "" {
		out.Place = Title(place)
		out.Method = MethodEntity
		return out
	}

	if place := e.phrasePlace(text); place != "" {
		out.Place = Title(place)
		out.Method = MethodPhrase
	}
	return out
}

func (e *Extractor) knownPlaces(lower string) []string {
	seen := make(map[string]bool)
	var found []string
	for _, p := range e.places {
		if p == "" || seen[p] {
			continue
		}
		if strings.Contains(lower, p) {
			seen[p] = true
			found = append(found, p)
		}
	}
	return found
}

func matchPatterns(lower string) (string, string, bool) {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		first, second := cleanGroup(m[1]), cleanGroup(m[2])
		if first == "" || second == "" {
			continue
		}
		return second, first, true
	}
	return "", "", false
}

func cleanGroup(g string) string {
	g = strings.Trim(g, " \t?.!,;:'\"")
	if i := strings.LastIndex(g, " from "); i >= 0 {
		g = g[i+len(" from "):]
	}
	words := strings.Fields(g)
	for len(words) > 0 && filler[words[0]] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

func (e *Extractor) entityPlace(text string) string {
	if e.recognizer == nil {
		return ""
	}
	ents := e.recognizer.Entities(text)
	for _, ent := range ents {
		if nlp.PlaceLabels[ent.Label] {
			return ent.Text
		}
	}
	if len(ents) > 0 {
		return ents[0].Text
	}
	return ""
}

func (e *Extractor) phrasePlace(text string) string {
	if e.recognizer == nil {
		return ""
	}
	for _, np := range e.recognizer.NounPhrases(text) {
		words := strings.Fields(strings.ToLower(np))
		if len(words) == 0 || len(words) > maxPhrase {
			continue
		}
		if onlyFiller(words) {
			continue
		}
		return np
	}
	return ""
}

func onlyFiller(words []string) bool {
	for _, w := range words {
		if !filler[w] && !nlp.IsStopWord(w) {
			return false
		}
	}
	return true
}

// Title formats a place name for display. Casers keep state, so one is made
// per call.
func Title(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}
