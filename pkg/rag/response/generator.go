// Package response produces answers with the generative model when neither the
// facility lookup nor the map link can answer a question.
package response

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"deepsight-be/internal/pkg/logger"
	"deepsight-be/pkg/llm"
	"deepsight-be/pkg/rag"
	"deepsight-be/pkg/rag/language"
	"deepsight-be/pkg/rag/prompt"
	"deepsight-be/pkg/rag/state"
)

// Cache stores generated answers. Implementations may fail; the generator
// treats every cache error as a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// ImageSearcher returns up to n image URLs for a query.
type ImageSearcher interface {
	Search(ctx context.Context, query string, n int) ([]string, error)
}

type Options struct {
	MaxTokens    int
	Temperature  float64
	ImageCount   int
	ModelTimeout time.Duration
	ImageTimeout time.Duration
}

type Generator struct {
	llmProvider llm.LLMProvider
	cache       Cache
	images      ImageSearcher
	places      *PlaceFinder
	opts        Options
	logger      logger.ILogger
}

// NewGenerator wires the generator. cache and images may be nil.
func NewGenerator(llmProvider llm.LLMProvider, cache Cache, images ImageSearcher, places *PlaceFinder, opts Options, l logger.ILogger) *Generator {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 512
	}
	if opts.ImageCount <= 0 {
		opts.ImageCount = 3
	}
	return &Generator{
		llmProvider: llmProvider,
		cache:       cache,
		images:      images,
		places:      places,
		opts:        opts,
		logger:      l,
	}
}

// Resolve always terminates. A model failure is returned wrapped in
// rag.ErrGenerationFailed since nothing runs after this stage.
func (g *Generator) Resolve(ctx context.Context, c state.Classified) (state.Step, error) {
	question := c.Q.WorkingText

	answer, err := g.answer(ctx, question)
	if err != nil {
		return nil, err
	}

	var images []string
	if c.Q.WantsImages {
		images = g.findImages(ctx, question)
	}

	return c.Resolve(answer+ImageBlock(images), images), nil
}

func (g *Generator) answer(ctx context.Context, question string) (string, error) {
	key := CacheKey(question)
	if g.cache != nil {
		cached, ok, err := g.cache.Get(ctx, key)
		if err != nil {
			g.logger.Warn("GENERATION", "Answer cache read failed", map[string]interface{}{"error": err.Error()})
		} else if ok {
			g.logger.Debug("GENERATION", "Answer served from cache", nil)
			return cached, nil
		}
	}

	instruction := prompt.Infer(question)
	promptText := prompt.NewBuilder(instruction, question).Build()

	genCtx := ctx
	if g.opts.ModelTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, g.opts.ModelTimeout)
		defer cancel()
	}

	start := time.Now()
	completion, err := g.llmProvider.Generate(genCtx, promptText,
		llm.WithMaxTokens(g.opts.MaxTokens),
		llm.WithTemperature(g.opts.Temperature),
	)
	if err != nil {
		g.logger.Error("GENERATION", "Model call failed", map[string]interface{}{"error": err.Error()})
		return "", fmt.Errorf("%w: %w", rag.ErrGenerationFailed, err)
	}

	answer := prompt.StripEcho(promptText, completion)
	if answer == "" {
		g.logger.Error("GENERATION", "Model returned an empty completion", nil)
		return "", fmt.Errorf("%w: empty completion", rag.ErrGenerationFailed)
	}

	g.logger.Info("GENERATION", "Answer generated", map[string]interface{}{
		"instruction": instruction.Name,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if g.cache != nil {
		if err := g.cache.Set(ctx, key, answer); err != nil {
			g.logger.Warn("GENERATION", "Answer cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return answer, nil
}

func (g *Generator) findImages(ctx context.Context, question string) []string {
	if g.images == nil {
		return nil
	}

	query := question
	if g.places != nil {
		if place := g.places.Find(question); place != "" {
			query = place
		}
	}

	if g.opts.ImageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.ImageTimeout)
		defer cancel()
	}

	urls, err := g.images.Search(ctx, query, g.opts.ImageCount)
	if err != nil {
		g.logger.Warn("GENERATION", "Image search failed, answering without images", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return nil
	}
	return urls
}

// CacheKey identifies a generated answer by its normalized question.
func CacheKey(question string) string {
	sum := sha256.Sum256([]byte(state.RouteGeneral.Category() + "|" + strings.ToLower(strings.TrimSpace(question))))
	return hex.EncodeToString(sum[:])
}

// ImageBlock renders image URLs as markup lines to append after an answer.
func ImageBlock(urls []string) string {
	if len(urls) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n")
	for _, u := range urls {
		b.WriteString("\n")
		b.WriteString(language.ImageMarkup)
		b.WriteString(u)
		b.WriteString(")")
	}
	return b.String()
}
