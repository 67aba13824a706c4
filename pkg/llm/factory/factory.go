package factory

import (
	"fmt"

	"deepsight-be/pkg/llm"
	"deepsight-be/pkg/llm/huggingface"
	"deepsight-be/pkg/llm/ollama"
)

// Settings selects and configures a generative backend.
type Settings struct {
	Provider    string // "ollama" or "huggingface"
	Model       string
	BaseURL     string
	APIKey      string
	Concurrency int
}

// NewLLMProvider builds the configured provider and wraps it so that at most
// Concurrency generations run at once.
func NewLLMProvider(s Settings) (llm.LLMProvider, error) {
	var p llm.LLMProvider
	switch s.Provider {
	case "ollama", "":
		p = ollama.NewOllamaProvider(s.BaseURL, s.Model)
	case "huggingface":
		if s.APIKey == "" {
			return nil, fmt.Errorf("huggingface provider requires an API key")
		}
		p = huggingface.NewHuggingFaceProvider(s.APIKey, s.BaseURL, s.Model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
	return llm.NewBoundedProvider(p, s.Concurrency), nil
}
