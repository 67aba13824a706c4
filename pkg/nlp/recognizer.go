// Package nlp provides the light linguistic tooling used to pull place names
// and keywords out of free-form questions.
package nlp

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

// Entity is a named-entity span.
type Entity struct {
	Text  string
	Label string
}

// Recognizer finds entities and noun phrases in English text.
type Recognizer interface {
	Entities(text string) []Entity
	NounPhrases(text string) []string
}

// PlaceLabels are the entity labels that denote places.
var PlaceLabels = map[string]bool{
	"GPE": true,
	"LOC": true,
	"FAC": true,
}

// ProseRecognizer is backed by the prose tagger and its bundled NER model.
type ProseRecognizer struct{}

func NewProseRecognizer() *ProseRecognizer {
	return &ProseRecognizer{}
}

func (r *ProseRecognizer) document(text string) *prose.Document {
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil
	}
	return doc
}

func (r *ProseRecognizer) Entities(text string) []Entity {
	doc := r.document(text)
	if doc == nil {
		return nil
	}

	var out []Entity
	for _, ent := range doc.Entities() {
		out = append(out, Entity{Text: strings.TrimSpace(ent.Text), Label: ent.Label})
	}
	return out
}

// NounPhrases returns maximal runs of determiner, adjective and noun tokens
// that contain at least one noun. Leading determiners are dropped.
func (r *ProseRecognizer) NounPhrases(text string) []string {
	doc := r.document(text)
	if doc == nil {
		return nil
	}

	var (
		phrases []string
		run     []string
		hasNoun bool
	)
	flush := func() {
		if hasNoun && len(run) > 0 {
			phrases = append(phrases, strings.Join(run, " "))
		}
		run, hasNoun = run[:0], false
	}

	for _, tok := range doc.Tokens() {
		switch {
		case strings.HasPrefix(tok.Tag, "NN"):
			run = append(run, tok.Text)
			hasNoun = true
		case strings.HasPrefix(tok.Tag, "JJ"), tok.Tag == "CD":
			if hasNoun {
				flush()
			}
			run = append(run, tok.Text)
		case tok.Tag == "DT" || tok.Tag == "PRP$":
			flush()
		default:
			flush()
		}
	}
	flush()
	return phrases
}
