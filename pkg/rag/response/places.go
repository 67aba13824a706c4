package response

import (
	"strings"

	"deepsight-be/pkg/nlp"
)

// PlaceFinder picks the place a general question is about, used to key image
// searches.
type PlaceFinder struct {
	places     []string
	recognizer nlp.Recognizer
}

func NewPlaceFinder(places []string, recognizer nlp.Recognizer) *PlaceFinder {
	return &PlaceFinder{places: places, recognizer: recognizer}
}

// Find returns the first known place mentioned in text, then the first place
// entity, or "".
func (f *PlaceFinder) Find(text string) string {
	lower := strings.ToLower(text)
	for _, p := range f.places {
		if p != "" && strings.Contains(lower, p) {
			return p
		}
	}

	if f.recognizer == nil {
		return ""
	}
	ents := f.recognizer.Entities(text)
	for _, e := range ents {
		if nlp.PlaceLabels[e.Label] {
			return e.Text
		}
	}
	if len(ents) > 0 {
		return ents[0].Text
	}
	return ""
}
