package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"deepsight-be/internal/dto"
	"deepsight-be/internal/pkg/logger"
	"deepsight-be/pkg/events"
	"deepsight-be/pkg/rag"
	"deepsight-be/pkg/rag/executor"
	"deepsight-be/pkg/speech"
)

// QueryRunner is satisfied by *executor.Graph.
type QueryRunner interface {
	Run(ctx context.Context, req executor.Request) (*executor.Result, error)
}

// EventPublisher is satisfied by the NATS publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IQueryService interface {
	Ask(ctx context.Context, deviceId string, req *dto.QueryRequest) (*dto.QueryResponse, error)
	AskVoice(ctx context.Context, deviceId string, audio []byte, contentType, language string) (*dto.VoiceQueryResponse, error)
}

type queryService struct {
	graph          QueryRunner
	transcriber    speech.Transcriber
	searchLogBus   IPublisherService
	eventPublisher EventPublisher
	logger         logger.ILogger
}

// NewQueryService wires the query entrypoint. transcriber, searchLogBus and
// eventPublisher may be nil; the related feature is then skipped.
func NewQueryService(
	graph QueryRunner,
	transcriber speech.Transcriber,
	searchLogBus IPublisherService,
	eventPublisher EventPublisher,
	l logger.ILogger,
) IQueryService {
	return &queryService{
		graph:          graph,
		transcriber:    transcriber,
		searchLogBus:   searchLogBus,
		eventPublisher: eventPublisher,
		logger:         l,
	}
}

// Ask answers one question. For blank input it returns both the user-facing
// response and rag.ErrEmptyQuery so the caller can pick the status code.
func (s *queryService) Ask(ctx context.Context, deviceId string, req *dto.QueryRequest) (*dto.QueryResponse, error) {
	res, err := s.graph.Run(ctx, executor.Request{
		Text:        req.Query,
		Origin:      req.Origin,
		Destination: req.Destination,
	})
	if errors.Is(err, rag.ErrEmptyQuery) {
		return &dto.QueryResponse{Response: rag.EmptyQueryMessage, Category: dto.CategoryInvalid}, err
	}

	// Every processed query is logged, answered or not. Without a result the
	// working-language text is unknown and the raw query is logged.
	searched := req.Query
	if res != nil {
		searched = res.Q.WorkingText
	}
	s.logSearch(ctx, deviceId, searched)

	if err != nil {
		s.logger.Error("QUERY", "Query failed", map[string]interface{}{
			"device": deviceId,
			"error":  err.Error(),
		})
		return nil, err
	}

	s.publishAnswered(ctx, res)

	return &dto.QueryResponse{
		Response: res.Response,
		Category: res.Route.Category(),
		Language: res.Q.Language,
		Images:   res.Images,
		Demoted:  res.Demoted,
		TookMs:   res.Duration.Milliseconds(),
	}, nil
}

func (s *queryService) AskVoice(ctx context.Context, deviceId string, audio []byte, contentType, language string) (*dto.VoiceQueryResponse, error) {
	if s.transcriber == nil {
		return nil, fmt.Errorf("voice input is not configured")
	}

	tr, err := s.transcriber.Transcribe(ctx, audio, contentType, language)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	out := &dto.VoiceQueryResponse{Transcript: tr.Text, TranscriptLanguage: tr.Language}
	res, err := s.Ask(ctx, deviceId, &dto.QueryRequest{Query: tr.Text})
	if res != nil {
		out.QueryResponse = *res
	}
	if err != nil {
		if res != nil {
			return out, err
		}
		return nil, err
	}
	return out, nil
}

// logSearch hands the search to the consumer. The request never waits for
// the database.
func (s *queryService) logSearch(ctx context.Context, deviceId, text string) {
	if s.searchLogBus == nil || deviceId == "" {
		return
	}
	payload, _ := json.Marshal(dto.SearchLoggedMessage{DeviceId: deviceId, Query: text})
	if err := s.searchLogBus.Publish(ctx, payload); err != nil {
		s.logger.Warn("QUERY", "Failed to queue search log", map[string]interface{}{
			"device": deviceId,
			"error":  err.Error(),
		})
	}
}

func (s *queryService) publishAnswered(ctx context.Context, res *executor.Result) {
	if s.eventPublisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	evt := events.QueryAnswered{
		Route:     res.Route.Category(),
		Language:  res.Q.Language,
		Demoted:   res.Demoted,
		Images:    len(res.Images),
		LatencyMs: res.Duration.Milliseconds(),
		At:        time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("QUERY", "Failed to publish analytics event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
