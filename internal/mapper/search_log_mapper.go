package mapper

import (
	"deepsight-be/internal/entity"
	"deepsight-be/internal/model"
)

type SearchLogMapper struct{}

func NewSearchLogMapper() *SearchLogMapper {
	return &SearchLogMapper{}
}

func (m *SearchLogMapper) ToEntity(s *model.SearchLog) *entity.SearchLog {
	if s == nil {
		return nil
	}
	return &entity.SearchLog{
		Id:        s.Id,
		DeviceId:  s.DeviceId,
		History:   s.History,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (m *SearchLogMapper) ToModel(s *entity.SearchLog) *model.SearchLog {
	if s == nil {
		return nil
	}
	return &model.SearchLog{
		Id:        s.Id,
		DeviceId:  s.DeviceId,
		History:   s.History,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
