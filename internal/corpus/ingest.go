package corpus

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"deepsight-be/internal/entity"
	"deepsight-be/internal/pkg/logger"
	"deepsight-be/internal/repository/unitofwork"
	"deepsight-be/pkg/embedding"
)

// Ingestor embeds scraped facilities and stores them.
type Ingestor struct {
	embedder    embedding.EmbeddingProvider
	uowFactory  unitofwork.RepositoryFactory
	concurrency int
	logger      logger.ILogger
}

func NewIngestor(embedder embedding.EmbeddingProvider, uowFactory unitofwork.RepositoryFactory, concurrency int, l logger.ILogger) *Ingestor {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Ingestor{embedder: embedder, uowFactory: uowFactory, concurrency: concurrency, logger: l}
}

// DocumentText is what gets embedded for a facility.
func DocumentText(f *entity.Facility) string {
	parts := []string{f.Name}
	if f.Location != "" {
		parts = append(parts, f.Location)
	}
	parts = append(parts, f.FreeText)
	return strings.Join(parts, "\n")
}

// Ingest embeds every facility and writes them in one transaction. With
// replace set the existing corpus is removed first. Nothing is written when
// any embedding fails.
func (i *Ingestor) Ingest(ctx context.Context, facilities []*entity.Facility, replace bool) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.concurrency)

	for idx, f := range facilities {
		g.Go(func() error {
			res, err := i.embedder.Generate(gctx, DocumentText(f), embedding.TaskRetrievalDocument)
			if err != nil {
				return fmt.Errorf("embed facility %d (%s): %w", idx, f.Name, err)
			}
			f.Embedding = res.Embedding.Values
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	uow := i.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if replace {
		if err := uow.FacilityRepository().DeleteAll(ctx); err != nil {
			return fmt.Errorf("clear facilities: %w", err)
		}
	}
	if err := uow.FacilityRepository().CreateBulk(ctx, facilities); err != nil {
		return fmt.Errorf("store facilities: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	i.logger.Info("CORPUS", "Ingested facilities", map[string]interface{}{
		"count":   len(facilities),
		"replace": replace,
	})
	return nil
}
