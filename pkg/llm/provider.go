package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrEmptyCompletion is returned when a backend answers with no text.
var ErrEmptyCompletion = errors.New("model returned no text")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Prompt wraps a single user prompt as a one-message history.
func Prompt(text string) []Message {
	return []Message{{Role: RoleUser, Content: text}}
}

type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string
	Stop        []string
}

// Resolve applies opts on top of defaults.
func Resolve(defaults Options, opts ...Option) Options {
	o := defaults
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithMaxTokens bounds the length of the completion.
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithStop(sequences ...string) Option {
	return func(o *Options) {
		o.Stop = append(o.Stop, sequences...)
	}
}

// LLMProvider is a text generation backend. Generate is Chat with a single
// user message.
type LLMProvider interface {
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
