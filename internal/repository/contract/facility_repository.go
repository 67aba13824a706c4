package contract

import (
	"context"

	"deepsight-be/internal/entity"
	"deepsight-be/internal/repository/specification"
)

type FacilityRepository interface {
	// CreateBulk stores facilities in slice order.
	CreateBulk(ctx context.Context, facilities []*entity.Facility) error
	DeleteAll(ctx context.Context) error
	// FindAll returns facilities in corpus order unless a specification orders them otherwise.
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Facility, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilar ranks facilities by cosine similarity to embedding, best first.
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.ScoredFacility, error)
}
