package implementation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"deepsight-be/internal/entity"
	"deepsight-be/internal/mapper"
	"deepsight-be/internal/model"
	"deepsight-be/internal/repository/contract"
	"deepsight-be/internal/repository/specification"
)

type SearchLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SearchLogMapper
}

func NewSearchLogRepository(db *gorm.DB) contract.SearchLogRepository {
	return &SearchLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewSearchLogMapper(),
	}
}

func (r *SearchLogRepositoryImpl) GetByDevice(ctx context.Context, deviceId string) (*entity.SearchLog, error) {
	var m model.SearchLog
	err := specification.ByDeviceID{DeviceID: deviceId}.Apply(r.db.WithContext(ctx)).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

// upsertAppendSQL relies on the unique index on device_id. Concurrent first
// searches from one device collapse into one row and the row lock taken by
// ON CONFLICT serialises appends. xmax is 0 only for freshly inserted rows.
const upsertAppendSQL = `
INSERT INTO search_logs (id, device_id, history, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (device_id) DO UPDATE
SET history = CASE
		WHEN search_logs.history = '' THEN EXCLUDED.history
		ELSE search_logs.history || ', ' || EXCLUDED.history
	END,
	updated_at = EXCLUDED.updated_at
RETURNING id, device_id, history, created_at, updated_at, (xmax = 0) AS inserted`

func (r *SearchLogRepositoryImpl) UpsertAppend(ctx context.Context, deviceId, entry string) (*entity.SearchLog, bool, error) {
	var row struct {
		model.SearchLog
		Inserted bool
	}

	now := time.Now()
	err := r.db.WithContext(ctx).
		Raw(upsertAppendSQL, uuid.New(), deviceId, entry, now, now).
		Scan(&row).Error
	if err != nil {
		return nil, false, err
	}
	return r.mapper.ToEntity(&row.SearchLog), row.Inserted, nil
}

func (r *SearchLogRepositoryImpl) FindRecent(ctx context.Context, limit int) ([]*entity.SearchLog, error) {
	if limit <= 0 {
		limit = 10
	}

	var models []*model.SearchLog
	query := r.db.WithContext(ctx)
	for _, spec := range []specification.Specification{
		specification.RecentlyUpdated{},
		specification.Pagination{Limit: limit},
	} {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	entities := make([]*entity.SearchLog, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *SearchLogRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	err := query.Model(&model.SearchLog{}).Count(&count).Error
	return count, err
}
