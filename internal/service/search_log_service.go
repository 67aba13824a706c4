package service

import (
	"context"
	"strings"

	"deepsight-be/internal/dto"
	"deepsight-be/internal/entity"
	"deepsight-be/internal/pkg/logger"
	"deepsight-be/internal/repository/unitofwork"
	"deepsight-be/pkg/nlp"
)

const DefaultRecentLimit = 10

type ISearchLogService interface {
	Record(ctx context.Context, deviceId, query string) (*dto.SearchLogResponse, error)
	Recent(ctx context.Context, limit int) (*dto.RecentSearchesResponse, error)
	ForDevice(ctx context.Context, deviceId string) (*dto.SearchLogResponse, error)
}

type searchLogService struct {
	uowFactory unitofwork.RepositoryFactory
	recognizer nlp.Recognizer
	logger     logger.ILogger
}

func NewSearchLogService(uowFactory unitofwork.RepositoryFactory, recognizer nlp.Recognizer, l logger.ILogger) ISearchLogService {
	return &searchLogService{uowFactory: uowFactory, recognizer: recognizer, logger: l}
}

// Record stores the keywords of query in the device's history.
func (s *searchLogService) Record(ctx context.Context, deviceId, query string) (*dto.SearchLogResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	entry := strings.Join(nlp.ExtractKeywords(s.recognizer, query), entity.HistorySeparator)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	log, created, err := uow.SearchLogRepository().UpsertAppend(ctx, deviceId, entry)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("SEARCH_LOG", "Search recorded", map[string]interface{}{
		"device":  deviceId,
		"entry":   entry,
		"created": created,
	})
	return toSearchLogResponse(log), nil
}

func (s *searchLogService) Recent(ctx context.Context, limit int) (*dto.RecentSearchesResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = DefaultRecentLimit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	logs, err := uow.SearchLogRepository().FindRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	out := &dto.RecentSearchesResponse{Logs: make([]*dto.SearchLogResponse, len(logs))}
	for i, l := range logs {
		out.Logs[i] = toSearchLogResponse(l)
	}
	return out, nil
}

// ForDevice returns nil, nil when the device has not searched yet.
func (s *searchLogService) ForDevice(ctx context.Context, deviceId string) (*dto.SearchLogResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	log, err := uow.SearchLogRepository().GetByDevice(ctx, deviceId)
	if err != nil || log == nil {
		return nil, err
	}
	return toSearchLogResponse(log), nil
}

func toSearchLogResponse(l *entity.SearchLog) *dto.SearchLogResponse {
	return &dto.SearchLogResponse{
		Id:        l.Id,
		DeviceId:  l.DeviceId,
		History:   l.History,
		Entries:   entity.SplitHistory(l.History),
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
