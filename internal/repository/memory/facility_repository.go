package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"deepsight-be/internal/entity"
	"deepsight-be/internal/repository/contract"
	"deepsight-be/internal/repository/specification"
)

// FacilityRepository holds the corpus in a slice, in insertion order.
type FacilityRepository struct {
	mu         sync.RWMutex
	facilities []*entity.Facility
}

var _ contract.FacilityRepository = (*FacilityRepository)(nil)

func NewFacilityRepository() *FacilityRepository {
	return &FacilityRepository{}
}

func (r *FacilityRepository) CreateBulk(_ context.Context, facilities []*entity.Facility) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range facilities {
		if f.Id == uuid.Nil {
			f.Id = uuid.New()
		}
		cp := *f
		r.facilities = append(r.facilities, &cp)
	}
	return nil
}

func (r *FacilityRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	r.facilities = nil
	r.mu.Unlock()
	return nil
}

// FindAll understands ByFacilityName, HasEmbedding and Pagination.
func (r *FacilityRepository) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Facility, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Facility, 0, len(r.facilities))
	for _, f := range r.facilities {
		if matches(f, specs) {
			cp := *f
			out = append(out, &cp)
		}
	}

	for _, s := range specs {
		if p, ok := s.(specification.Pagination); ok {
			if p.Offset >= len(out) {
				return []*entity.Facility{}, nil
			}
			out = out[p.Offset:]
			if p.Limit > 0 && p.Limit < len(out) {
				out = out[:p.Limit]
			}
		}
	}
	return out, nil
}

func (r *FacilityRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func (r *FacilityRepository) SearchSimilar(_ context.Context, embedding []float32, limit int) ([]*entity.ScoredFacility, error) {
	if limit <= 0 {
		limit = 3
	}

	r.mu.RLock()
	var scored []*entity.ScoredFacility
	for _, f := range r.facilities {
		if len(f.Embedding) == 0 || len(f.Embedding) != len(embedding) {
			continue
		}
		cp := *f
		scored = append(scored, &entity.ScoredFacility{Facility: &cp, Similarity: cosine(embedding, f.Embedding)})
	}
	r.mu.RUnlock()

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Similarity > scored[j].Similarity })
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func matches(f *entity.Facility, specs []specification.Specification) bool {
	for _, s := range specs {
		switch v := s.(type) {
		case specification.ByFacilityName:
			if !strings.Contains(strings.ToLower(f.Name), strings.ToLower(v.Name)) {
				return false
			}
		case specification.HasEmbedding:
			if len(f.Embedding) == 0 {
				return false
			}
		}
	}
	return true
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
