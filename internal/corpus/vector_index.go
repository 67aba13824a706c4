package corpus

import (
	"context"
	"fmt"

	"deepsight-be/internal/repository/unitofwork"
	"deepsight-be/pkg/embedding"
	"deepsight-be/pkg/rag/lookup"
)

// VectorIndex embeds the query and asks pgvector for the nearest facilities.
type VectorIndex struct {
	embedder   embedding.EmbeddingProvider
	uowFactory unitofwork.RepositoryFactory
}

func NewVectorIndex(embedder embedding.EmbeddingProvider, uowFactory unitofwork.RepositoryFactory) *VectorIndex {
	return &VectorIndex{embedder: embedder, uowFactory: uowFactory}
}

func (v *VectorIndex) TopK(ctx context.Context, query string, k int) ([]lookup.Match, error) {
	res, err := v.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	uow := v.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.FacilityRepository().SearchSimilar(ctx, res.Embedding.Values, k)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	matches := make([]lookup.Match, len(scored))
	for i, s := range scored {
		matches[i] = lookup.Match{Record: toRecord(s.Facility), Score: s.Similarity}
	}
	return matches, nil
}
