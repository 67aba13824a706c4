// Package intent classifies a working-language question as a time, distance
// or general question using keyword tables.
package intent

import (
	"strings"

	"deepsight-be/pkg/rag/state"
)

// Keyword sets. Matching is case-insensitive substring membership.
var (
	TimeKeywords = []string{
		"timing", "timings", "time", "hours", "open", "opening",
		"closing", "closes", "closed", "schedule",
	}

	DistanceKeywords = []string{
		"distance", "how far", "far from", "directions", "direction", "route",
		"reach", "way to", "km", "kilometer", "travel from", "get to", "navigate",
	}

	ImageKeywords = []string{
		"image", "photo", "picture", "pics", "show me", "look like", "looks like",
	}
)

// Rule pairs a keyword set with the route it selects.
type Rule struct {
	Route    state.Route
	Keywords []string
}

// DefaultRules is evaluated in order. Time is checked before distance, so a
// query mentioning both is a time query.
var DefaultRules = []Rule{
	{Route: state.RouteTime, Keywords: TimeKeywords},
	{Route: state.RouteDistance, Keywords: DistanceKeywords},
}

// Classifier maps a working-language query to a route.
type Classifier struct {
	rules         []Rule
	imageKeywords []string
}

func NewClassifier() *Classifier {
	return NewClassifierWithRules(DefaultRules, ImageKeywords)
}

func NewClassifierWithRules(rules []Rule, imageKeywords []string) *Classifier {
	return &Classifier{rules: rules, imageKeywords: imageKeywords}
}

// Classify returns the first matching rule's route, or GENERAL. The image flag
// is computed independently of the route.
func (c *Classifier) Classify(text string) (state.Route, bool) {
	lower := strings.ToLower(text)

	route := state.RouteGeneral
	for _, rule := range c.rules {
		if ContainsAny(lower, rule.Keywords) {
			route = rule.Route
			break
		}
	}

	return route, ContainsAny(lower, c.imageKeywords)
}

// ContainsAny reports whether lower contains any of the keywords.
// lower must already be lower-cased.
func ContainsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// FirstKeyword returns the first keyword found in lower, or "".
func FirstKeyword(lower string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}
