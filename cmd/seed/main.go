package main

import (
	"context"
	"flag"
	"log"

	"deepsight-be/internal/config"
	"deepsight-be/internal/corpus"
	"deepsight-be/internal/pkg/logger"
	"deepsight-be/internal/repository/unitofwork"
	"deepsight-be/pkg/database"
	"deepsight-be/pkg/embedding"
)

// seed embeds the scraper output and loads it into the facilities table.
func main() {
	cfg := config.Load()

	file := flag.String("file", cfg.Corpus.FilePath, "scraper JSON output")
	appendMode := flag.Bool("append", false, "keep existing facilities instead of replacing them")
	flag.Parse()

	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	facilities, err := corpus.LoadFile(*file)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	log.Printf("Read %d facilities from %s", len(facilities), *file)

	embedder, err := embedding.NewProvider(embedding.Settings{
		Provider: cfg.Ai.EmbeddingProvider,
		BaseURL:  cfg.Ai.EmbeddingBaseURL,
		Model:    cfg.Ai.EmbeddingModel,
		APIKey:   cfg.EmbeddingAPIKey(),
	})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	ingestor := corpus.NewIngestor(
		embedder,
		unitofwork.NewRepositoryFactory(db),
		cfg.Ai.IngestConcurrency,
		logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction()),
	)
	if err := ingestor.Ingest(context.Background(), facilities, !*appendMode); err != nil {
		log.Fatalf("Error: ingest failed: %v", err)
	}

	log.Printf("Success: %d facilities stored", len(facilities))
}
