package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"deepsight-be/internal/dto"
	"deepsight-be/internal/pkg/logger"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// RetryPolicy bounds redelivery of a search log that fails to store. After
// MaxRetries the message goes to the poison topic and is acked.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:      3,
	InitialInterval: 200 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

// PoisonTopic is where search logs that exhausted their retries end up.
func PoisonTopic(topic string) string {
	return topic + "_POISON"
}

type consumerService struct {
	subscriber       message.Subscriber
	publisher        message.Publisher
	topicName        string
	searchLogService ISearchLogService
	retry            RetryPolicy
	logger           logger.ILogger
}

// NewConsumerService persists search logs from topicName. publisher receives
// poisoned messages.
func NewConsumerService(
	subscriber message.Subscriber,
	publisher message.Publisher,
	topicName string,
	searchLogService ISearchLogService,
	retry RetryPolicy,
	l logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:       subscriber,
		publisher:        publisher,
		topicName:        topicName,
		searchLogService: searchLogService,
		retry:            retry,
		logger:           l,
	}
}

func (cs *consumerService) newRouter() (*message.Router, error) {
	wmLogger := logger.NewWatermillAdapter(cs.logger, "CONSUMER")

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, wmLogger)
	if err != nil {
		return nil, err
	}

	poison, err := middleware.PoisonQueue(cs.publisher, PoisonTopic(cs.topicName))
	if err != nil {
		return nil, fmt.Errorf("poison queue: %w", err)
	}

	// outermost first: a panic or an exhausted retry both end in the poison topic
	router.AddMiddleware(
		poison,
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      cs.retry.MaxRetries,
			InitialInterval: cs.retry.InitialInterval,
			MaxInterval:     cs.retry.MaxInterval,
			Multiplier:      2,
			Logger:          wmLogger,
		}.Middleware,
	)

	router.AddNoPublisherHandler("search_log_consumer", cs.topicName, cs.subscriber, cs.processMessage)
	router.AddNoPublisherHandler("search_log_poison", PoisonTopic(cs.topicName), cs.subscriber, cs.logPoisoned)
	return router, nil
}

// Consume starts persisting search logs in the background until ctx ends.
// It returns once the router is running.
func (cs *consumerService) Consume(ctx context.Context) error {
	router, err := cs.newRouter()
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- router.Run(ctx)
	}()

	select {
	case <-router.Running():
		go func() {
			if err := <-done; err != nil {
				cs.logger.Error("CONSUMER", "Router stopped", map[string]interface{}{"error": err.Error()})
			}
		}()
		return nil
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (cs *consumerService) processMessage(msg *message.Message) error {
	var payload dto.SearchLoggedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal search log message", map[string]interface{}{
			"error": err.Error(),
		})
		return nil // a retry cannot fix it
	}

	if _, err := cs.searchLogService.Record(msg.Context(), payload.DeviceId, payload.Query); err != nil {
		return fmt.Errorf("record search for %s: %w", payload.DeviceId, err)
	}
	return nil
}

func (cs *consumerService) logPoisoned(msg *message.Message) error {
	cs.logger.Error("CONSUMER", "Search log dropped after retries", map[string]interface{}{
		"message_id": msg.UUID,
		"reason":     msg.Metadata.Get(middleware.ReasonForPoisonedKey),
		"payload":    string(msg.Payload),
	})
	return nil
}
