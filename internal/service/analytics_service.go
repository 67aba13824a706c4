package service

import (
	"context"
	"sync"

	"deepsight-be/internal/dto"
	"deepsight-be/internal/pkg/logger"
	"deepsight-be/pkg/events"
	pktNats "deepsight-be/pkg/nats"
)

const analyticsDurable = "deepsight-analytics"

type IAnalyticsService interface {
	Start(ctx context.Context) error
	Observe(ctx context.Context, event events.Event) error
	Stats() *dto.StatsResponse
}

// analyticsService aggregates QUERY_ANSWERED events in memory. Counters
// reset on restart; the stream itself keeps the history.
type analyticsService struct {
	subscriber *pktNats.Subscriber
	logger     logger.ILogger

	mu         sync.Mutex
	total      int64
	withImages int64
	routes     map[string]*routeAgg
	languages  map[string]int64
}

type routeAgg struct {
	count, demoted, latencySum int64
}

func NewAnalyticsService(subscriber *pktNats.Subscriber, l logger.ILogger) IAnalyticsService {
	return &analyticsService{
		subscriber: subscriber,
		logger:     l,
		routes:     make(map[string]*routeAgg),
		languages:  make(map[string]int64),
	}
}

func (s *analyticsService) Start(ctx context.Context) error {
	if s.subscriber == nil {
		s.logger.Warn("ANALYTICS", "No NATS subscriber, analytics disabled", nil)
		return nil
	}
	return s.subscriber.Subscribe(ctx, events.QueryAnsweredType, analyticsDurable, s.Observe)
}

func (s *analyticsService) Observe(_ context.Context, event events.Event) error {
	e := events.QueryAnsweredFrom(event.Payload())
	if e.Route == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	if e.Images > 0 {
		s.withImages++
	}
	agg, ok := s.routes[e.Route]
	if !ok {
		agg = &routeAgg{}
		s.routes[e.Route] = agg
	}
	agg.count++
	agg.latencySum += e.LatencyMs
	if e.Demoted {
		agg.demoted++
	}
	if e.Language != "" {
		s.languages[e.Language]++
	}
	return nil
}

func (s *analyticsService) Stats() *dto.StatsResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := &dto.StatsResponse{
		Total:      s.total,
		WithImages: s.withImages,
		Routes:     make(map[string]*dto.RouteStats, len(s.routes)),
		Languages:  make(map[string]int64, len(s.languages)),
	}
	for r, agg := range s.routes {
		out.Routes[r] = &dto.RouteStats{
			Count:        agg.count,
			Demoted:      agg.demoted,
			AvgLatencyMs: float64(agg.latencySum) / float64(agg.count),
		}
	}
	for l, n := range s.languages {
		out.Languages[l] = n
	}
	return out
}
