package corpus

import (
	"context"
	"fmt"

	"deepsight-be/internal/pkg/logger"
	"deepsight-be/internal/repository/memory"
	"deepsight-be/internal/repository/unitofwork"
	"deepsight-be/pkg/embedding"
	"deepsight-be/pkg/rag/lookup"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

type Loader struct {
	backend     string
	filePath    string
	uowFactory  unitofwork.RepositoryFactory
	embedder    embedding.EmbeddingProvider
	concurrency int
	logger      logger.ILogger
}

func NewLoader(backend, filePath string, uowFactory unitofwork.RepositoryFactory, embedder embedding.EmbeddingProvider, l logger.ILogger) *Loader {
	return &Loader{
		backend:    backend,
		filePath:   filePath,
		uowFactory: uowFactory,
		embedder:   embedder,
		logger:     l,
	}
}

// WithConcurrency bounds parallel embedding calls when the memory backend
// embeds its corpus at startup.
func (l *Loader) WithConcurrency(n int) *Loader {
	l.concurrency = n
	return l
}

// Load reads the corpus and builds the matching similarity index. An empty or
// unreadable corpus is an error; the server does not start without one.
func (l *Loader) Load(ctx context.Context) (*Snapshot, lookup.Index, error) {
	switch l.backend {
	case BackendMemory:
		facilities, err := LoadFile(l.filePath)
		if err != nil {
			return nil, nil, err
		}
		if len(facilities) == 0 {
			return nil, nil, fmt.Errorf("corpus file %s has no records", l.filePath)
		}
		snap := NewSnapshot(facilities)
		l.logger.Info("CORPUS", "Loaded corpus from file", map[string]interface{}{
			"path":       l.filePath,
			"facilities": snap.Len(),
			"places":     len(snap.placeNames),
		})
		return snap, l.memoryIndex(ctx, snap), nil

	case BackendPostgres:
		uow := l.uowFactory.NewUnitOfWork(ctx)
		facilities, err := uow.FacilityRepository().FindAll(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("read facilities: %w", err)
		}
		if len(facilities) == 0 {
			return nil, nil, fmt.Errorf("facilities table is empty, run the seeder first")
		}
		snap := NewSnapshot(facilities)
		l.logger.Info("CORPUS", "Loaded corpus from database", map[string]interface{}{
			"facilities": snap.Len(),
			"places":     len(snap.placeNames),
		})
		return snap, NewVectorIndex(l.embedder, l.uowFactory), nil

	default:
		return nil, nil, fmt.Errorf("unknown corpus backend: %s", l.backend)
	}
}

// memoryIndex embeds the file corpus into a process-local store and ranks by
// cosine, like the postgres backend. Without a working embedder it falls back
// to lexical overlap so the server still starts.
func (l *Loader) memoryIndex(ctx context.Context, snap *Snapshot) lookup.Index {
	if l.embedder == nil {
		l.logger.Warn("CORPUS", "No embedding provider, using lexical index", nil)
		return NewMemoryIndex(snap)
	}

	store := memory.NewRepositoryFactory()
	if err := NewIngestor(l.embedder, store, l.concurrency, l.logger).Ingest(ctx, snap.Facilities(), true); err != nil {
		l.logger.Warn("CORPUS", "Embedding the corpus failed, using lexical index", map[string]interface{}{
			"error": err.Error(),
		})
		return NewMemoryIndex(snap)
	}
	return NewVectorIndex(l.embedder, store)
}
