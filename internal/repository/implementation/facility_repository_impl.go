package implementation

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"deepsight-be/internal/entity"
	"deepsight-be/internal/mapper"
	"deepsight-be/internal/model"
	"deepsight-be/internal/repository/contract"
	"deepsight-be/internal/repository/specification"
)

type FacilityRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FacilityMapper
}

func NewFacilityRepository(db *gorm.DB) contract.FacilityRepository {
	return &FacilityRepositoryImpl{
		db:     db,
		mapper: mapper.NewFacilityMapper(),
	}
}

func (r *FacilityRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *FacilityRepositoryImpl) CreateBulk(ctx context.Context, facilities []*entity.Facility) error {
	if len(facilities) == 0 {
		return nil
	}

	var offset int64
	if err := r.db.WithContext(ctx).Model(&model.Facility{}).Count(&offset).Error; err != nil {
		return err
	}

	models := make([]*model.Facility, len(facilities))
	for i, f := range facilities {
		models[i] = r.mapper.ToModel(f, int(offset)+i)
	}

	if err := r.db.WithContext(ctx).CreateInBatches(models, 200).Error; err != nil {
		return err
	}

	for i, m := range models {
		*facilities[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *FacilityRepositoryImpl) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Facility{}).Error
}

func (r *FacilityRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Facility, error) {
	var models []*model.Facility
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if len(specs) == 0 {
		query = specification.InCorpusOrder{}.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	entities := make([]*entity.Facility, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *FacilityRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Facility{}).Count(&count).Error
	return count, err
}

// SearchSimilar computes 1 - cosine distance as the similarity score.
func (r *FacilityRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.ScoredFacility, error) {
	if limit <= 0 {
		limit = 3
	}

	type result struct {
		model.Facility
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)
	err := r.db.WithContext(ctx).
		Table("facilities").
		Select("facilities.*, 1 - (embedding <=> ?) AS similarity", queryVector).
		Where("embedding IS NOT NULL").
		Order(gorm.Expr("embedding <=> ?", queryVector)).
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*entity.ScoredFacility, len(results))
	for i := range results {
		scored[i] = &entity.ScoredFacility{
			Facility:   r.mapper.ToEntity(&results[i].Facility),
			Similarity: results[i].Similarity,
		}
	}
	return scored, nil
}
