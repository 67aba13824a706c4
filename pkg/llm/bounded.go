package llm

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// BoundedProvider caps the number of in-flight calls to the wrapped provider.
// Local model servers run one or two inferences at a time and queue the rest
// with no deadline, so waiting happens here where the caller's context applies.
type BoundedProvider struct {
	inner LLMProvider
	sem   *semaphore.Weighted
}

var _ LLMProvider = (*BoundedProvider)(nil)

func NewBoundedProvider(inner LLMProvider, limit int) *BoundedProvider {
	if limit <= 0 {
		limit = 1
	}
	return &BoundedProvider{inner: inner, sem: semaphore.NewWeighted(int64(limit))}
}

func (b *BoundedProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("waiting for model slot: %w", err)
	}
	defer b.sem.Release(1)
	return b.inner.Chat(ctx, history, options...)
}

func (b *BoundedProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("waiting for model slot: %w", err)
	}
	defer b.sem.Release(1)
	return b.inner.Generate(ctx, prompt, options...)
}
