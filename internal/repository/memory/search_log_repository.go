package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"deepsight-be/internal/entity"
	"deepsight-be/internal/repository/contract"
	"deepsight-be/internal/repository/specification"
)

// SearchLogRepository keeps logs in process. A single mutex makes the
// read-modify-write of UpsertAppend atomic.
type SearchLogRepository struct {
	mu   sync.Mutex
	logs map[string]*entity.SearchLog
	now  func() time.Time
}

var _ contract.SearchLogRepository = (*SearchLogRepository)(nil)

func NewSearchLogRepository() *SearchLogRepository {
	return &SearchLogRepository{
		logs: make(map[string]*entity.SearchLog),
		now:  time.Now,
	}
}

func (r *SearchLogRepository) GetByDevice(_ context.Context, deviceId string) (*entity.SearchLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.logs[deviceId]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (r *SearchLogRepository) UpsertAppend(_ context.Context, deviceId, entry string) (*entity.SearchLog, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	l, ok := r.logs[deviceId]
	if !ok {
		l = &entity.SearchLog{Id: uuid.New(), DeviceId: deviceId, CreatedAt: now}
		r.logs[deviceId] = l
	}
	l.Append(entry)
	l.UpdatedAt = now

	cp := *l
	return &cp, !ok, nil
}

func (r *SearchLogRepository) FindRecent(_ context.Context, limit int) ([]*entity.SearchLog, error) {
	if limit <= 0 {
		limit = 10
	}

	r.mu.Lock()
	out := make([]*entity.SearchLog, 0, len(r.logs))
	for _, l := range r.logs {
		cp := *l
		out = append(out, &cp)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count understands ByDeviceID; other specifications are ignored.
func (r *SearchLogRepository) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range specs {
		if by, ok := s.(specification.ByDeviceID); ok {
			if _, found := r.logs[by.DeviceID]; found {
				return 1, nil
			}
			return 0, nil
		}
	}
	return int64(len(r.logs)), nil
}
