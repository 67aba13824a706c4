// Package ollama talks to a local Ollama server through /api/chat.
package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"deepsight-be/pkg/llm"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	backend        = "ollama"
)

type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

var _ llm.LLMProvider = (*OllamaProvider)(nil)

func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  modelOptions  `json:"options"`
}

type modelOptions struct {
	Temperature float64  `json:"temperature"`
	NumPredict  int      `json:"num_predict,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type chatResponse struct {
	Model   string      `json:"model"`
	Message llm.Message `json:"message"`
	Done    bool        `json:"done"`
}

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Resolve(llm.Options{Model: o.model, Temperature: 0.7}, opts...)

	// Ollama has no "model" role; some callers use it for assistant turns.
	messages := make([]llm.Message, len(history))
	for i, m := range history {
		if m.Role == "model" {
			m.Role = llm.RoleAssistant
		}
		messages[i] = m
	}

	var out chatResponse
	err := llm.PostJSON(ctx, o.client, backend, o.baseURL+"/api/chat", nil, chatRequest{
		Model:    options.Model,
		Messages: messages,
		Options: modelOptions{
			Temperature: options.Temperature,
			NumPredict:  options.MaxTokens,
			Stop:        options.Stop,
		},
	}, &out)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(out.Message.Content) == "" {
		return "", llm.ErrEmptyCompletion
	}
	return out.Message.Content, nil
}

func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return o.Chat(ctx, llm.Prompt(prompt), opts...)
}
