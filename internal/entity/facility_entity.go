package entity

import (
	"time"

	"github.com/google/uuid"
)

// Facility is one heritage-site record produced by the scraper. Records are
// read-only once loaded.
type Facility struct {
	Id         uuid.UUID
	Name       string
	Location   string
	FreeText   string
	Attributes map[string]string
	Embedding  []float32
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type ScoredFacility struct {
	Facility   *Facility
	Similarity float64
}
