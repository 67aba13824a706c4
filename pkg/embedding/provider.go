package embedding

import (
	"context"
	"fmt"
	"math"
)

// Task types understood by providers that embed queries and documents
// differently. Others ignore them.
const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}

type Settings struct {
	Provider string // "ollama", "gemini" or "jina"
	BaseURL  string
	Model    string
	APIKey   string
}

func NewProvider(s Settings) (EmbeddingProvider, error) {
	switch s.Provider {
	case "ollama", "":
		return NewOllamaProvider(s.BaseURL, s.Model), nil
	case "gemini":
		if s.APIKey == "" {
			return nil, fmt.Errorf("gemini embeddings require an API key")
		}
		return NewGeminiProvider(s.APIKey), nil
	case "jina":
		if s.APIKey == "" {
			return nil, fmt.Errorf("jina embeddings require an API key")
		}
		return NewJinaProvider(s.APIKey), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", s.Provider)
	}
}

// normalizeVector scales vec to unit length. pgvector's cosine operator
// expects normalized input for scores to be comparable across providers.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
