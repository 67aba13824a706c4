package main

import (
	"log"
	"os"

	"deepsight-be/internal/model"
	"deepsight-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. Extensions + tables
	log.Println("Migrating facilities and search_logs...")
	if err := database.Migrate(db, &model.Facility{}, &model.SearchLog{}); err != nil {
		log.Fatalf("Error: migration failed: %v", err)
	}

	// 4. Post-migration: vector index for the similarity search
	postMigrationSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_facilities_embedding_hnsw
		 ON facilities USING hnsw (embedding vector_cosine_ops);`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("Success: database migration completed.")
}
