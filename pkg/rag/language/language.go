// Package language wraps the pipeline in a single working language. Queries
// are translated in on the way in and answers are translated back out.
package language

import (
	"context"
	"strings"

	"golang.org/x/text/language"
)

const (
	// Default is both the working language and the fallback source language.
	Default = "en"

	// Unknown is reported by detectors that could not decide.
	Unknown = "unknown"
)

// Detector returns the ISO 639-1 tag of the text's language.
type Detector interface {
	Detect(ctx context.Context, text string) (string, error)
}

// Translator translates text between two ISO 639-1 tags.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// Canonical reduces a tag such as "en-US" or "EN" to its base form "en".
// Unparseable tags are returned lower-cased.
func Canonical(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	t, err := language.Parse(tag)
	if err != nil {
		return strings.ToLower(tag)
	}
	base, _ := t.Base()
	return base.String()
}

// Same reports whether two tags share a base language.
func Same(a, b string) bool {
	return Canonical(a) == Canonical(b)
}
