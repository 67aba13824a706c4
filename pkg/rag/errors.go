// Package rag holds the shared error taxonomy of the query pipeline.
package rag

import "errors"

var (
	// ErrEmptyQuery is returned before any stage runs when the query is blank.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrGenerationFailed marks a failure of the generative model. There is no
	// fallback after the generative stage, so callers surface it as a service error.
	ErrGenerationFailed = errors.New("generative model failed")

	// ErrCorpusUnavailable is returned when the facility corpus cannot be loaded.
	ErrCorpusUnavailable = errors.New("facility corpus unavailable")

	// ErrGraphCycle is returned when a route would be visited twice.
	ErrGraphCycle = errors.New("route visited twice")

	// ErrInvalidTransition is returned when a resolver hands back a route the
	// graph has no edge for.
	ErrInvalidTransition = errors.New("invalid route transition")
)

// EmptyQueryMessage is the user-visible validation message for blank input.
const EmptyQueryMessage = "Nothing to process, please enter or record a question."
