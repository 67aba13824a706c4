package bootstrap

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"

	"deepsight-be/internal/config"
	"deepsight-be/internal/controller"
	"deepsight-be/internal/corpus"
	"deepsight-be/internal/pkg/logger"
	"deepsight-be/internal/repository/memory"
	"deepsight-be/internal/repository/unitofwork"
	"deepsight-be/internal/service"
	"deepsight-be/internal/websocket"
	"deepsight-be/pkg/embedding"
	"deepsight-be/pkg/imagesearch"
	"deepsight-be/pkg/llm/factory"
	pktNats "deepsight-be/pkg/nats"
	"deepsight-be/pkg/nlp"
	"deepsight-be/pkg/rag"
	"deepsight-be/pkg/rag/directions"
	"deepsight-be/pkg/rag/executor"
	"deepsight-be/pkg/rag/intent"
	"deepsight-be/pkg/rag/language"
	"deepsight-be/pkg/rag/lookup"
	"deepsight-be/pkg/rag/response"
	"deepsight-be/pkg/speech"
	"deepsight-be/pkg/store"
	"deepsight-be/pkg/translate"
)

type Container struct {
	Logger logger.ILogger
	Graph  *executor.Graph
	Corpus *corpus.Snapshot

	// Controllers
	QueryController     controller.IQueryController
	SearchLogController controller.ISearchLogController
	SystemController    controller.ISystemController

	// Background Services (Exposed for main.go to run)
	ConsumerService  service.IConsumerService
	AnalyticsService service.IAnalyticsService

	WebSocketHub     *websocket.Hub
	WebSocketHandler *websocket.Handler

	closers []func()
}

// NewContainer builds the whole object graph. db may be nil, in which case
// search logs are kept in memory and the corpus must come from a file.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c := &Container{Logger: sysLogger}

	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	} else {
		sysLogger.Warn("BOOTSTRAP", "No database configured, search logs are kept in memory", nil)
		uowFactory = memory.NewRepositoryFactory()
		if cfg.Corpus.Backend == corpus.BackendPostgres {
			return nil, fmt.Errorf("%w: CORPUS_BACKEND=postgres needs DB_CONNECTION_STRING", rag.ErrCorpusUnavailable)
		}
	}

	// 2. Model backends
	embedder, err := embedding.NewProvider(embedding.Settings{
		Provider: cfg.Ai.EmbeddingProvider,
		BaseURL:  cfg.Ai.EmbeddingBaseURL,
		Model:    cfg.Ai.EmbeddingModel,
		APIKey:   cfg.EmbeddingAPIKey(),
	})
	if err != nil {
		return nil, err
	}

	llmProvider, err := factory.NewLLMProvider(factory.Settings{
		Provider:    cfg.Ai.LLMProvider,
		Model:       cfg.Ai.LLMModel,
		BaseURL:     cfg.Ai.LLMBaseURL,
		APIKey:      cfg.Keys.HuggingFace,
		Concurrency: cfg.Ai.LLMConcurrency,
	})
	if err != nil {
		return nil, err
	}
	sysLogger.Info("BOOTSTRAP", "Model backends ready", map[string]interface{}{
		"llm":       cfg.Ai.LLMProvider + "/" + cfg.Ai.LLMModel,
		"embedding": cfg.Ai.EmbeddingProvider,
	})

	// 3. Corpus
	snapshot, index, err := corpus.NewLoader(cfg.Corpus.Backend, cfg.Corpus.FilePath, uowFactory, embedder, sysLogger).
		WithConcurrency(cfg.Ai.IngestConcurrency).
		Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", rag.ErrCorpusUnavailable, err)
	}
	c.Corpus = snapshot

	// 4. Language
	libre := translate.NewLibreTranslate(cfg.Language.TranslateURL, cfg.Keys.LibreTranslate, cfg.Timeouts.Translate, cfg.Language.CacheTTL)
	var detector language.Detector = translate.NewWhatlangDetector(cfg.Language.MinConfidence)
	if cfg.Language.Detector == "libretranslate" {
		detector = libre
	}
	normalizer := language.NewNormalizer(detector, libre, cfg.Language.Working, sysLogger)
	localizer := language.NewLocalizer(libre, cfg.Language.Working, sysLogger)

	// 5. Resolvers
	recognizer := nlp.NewProseRecognizer()
	places := snapshot.PlaceNames()

	answerCache := c.answerCache(ctx, cfg, sysLogger)
	images := imagesearch.NewCommonsClient(cfg.Services.ImageSearchURL, cfg.Services.UserAgent, cfg.Timeouts.Image, cfg.Services.ImageCacheTTL)

	graph := executor.NewGraph(
		normalizer,
		intent.NewClassifier(),
		localizer,
		executor.Nodes{
			Lookup:  lookup.NewResolver(index, cfg.Timeouts.Lookup, sysLogger),
			Extract: directions.NewResolver(directions.NewExtractor(places, recognizer), localizer, sysLogger),
			Generate: response.NewGenerator(
				llmProvider,
				answerCache,
				images,
				response.NewPlaceFinder(places, recognizer),
				response.Options{
					MaxTokens:    cfg.Ai.MaxTokens,
					Temperature:  cfg.Ai.Temperature,
					ImageCount:   cfg.Services.ImageCount,
					ModelTimeout: cfg.Timeouts.Model,
					ImageTimeout: cfg.Timeouts.Image,
				},
				sysLogger,
			),
		},
		sysLogger,
	)
	c.Graph = graph

	// 6. Event Bus
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger.NewWatermillAdapter(sysLogger, "PUBSUB"))
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var natsPub *pktNats.Publisher
	var natsSub *pktNats.Subscriber
	if cfg.App.NatsURL != "" {
		if natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL, sysLogger); err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect NATS publisher", map[string]interface{}{"error": err.Error()})
			natsPub = nil
		} else {
			c.closers = append(c.closers, natsPub.Close)
		}
		if natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger); err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect NATS subscriber", map[string]interface{}{"error": err.Error()})
			natsSub = nil
		} else {
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	// 7. Services
	var transcriber speech.Transcriber
	if cfg.Services.WhisperURL != "" {
		transcriber = speech.NewWhisperClient(cfg.Services.WhisperURL, cfg.Services.WhisperModel)
	}

	var events service.EventPublisher
	if natsPub != nil {
		events = natsPub
	}

	searchLogService := service.NewSearchLogService(uowFactory, recognizer, sysLogger)
	publisherService := service.NewPublisherService(cfg.Keys.SearchLogTopic, pubSub)
	queryService := service.NewQueryService(graph, transcriber, publisherService, events, sysLogger)
	c.ConsumerService = service.NewConsumerService(pubSub, pubSub, cfg.Keys.SearchLogTopic, searchLogService, service.DefaultRetryPolicy, sysLogger)
	c.AnalyticsService = service.NewAnalyticsService(natsSub, sysLogger)

	// 8. WebSocket
	wsLogger := logger.NewIsolatedLogger(cfg.App.WsLogFilePath)
	c.WebSocketHub = websocket.NewHub(wsLogger)
	c.WebSocketHandler = websocket.NewHandler(c.WebSocketHub, queryService, wsLogger)
	c.closers = append(c.closers, c.WebSocketHub.Stop)

	// 9. Controllers
	c.QueryController = controller.NewQueryController(queryService)
	c.SearchLogController = controller.NewSearchLogController(searchLogService)
	c.SystemController = controller.NewSystemController(snapshot, cfg.Corpus.Backend, cfg.Language.Working, sysLogger, c.AnalyticsService)

	return c, nil
}

// answerCache prefers Redis and falls back to an in-process cache.
func (c *Container) answerCache(ctx context.Context, cfg *config.Config, l logger.ILogger) response.Cache {
	if cfg.App.RedisURL != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.App.RedisURL)
		if err == nil {
			c.closers = append(c.closers, func() { _ = rdb.Close() })
			return store.NewRedisAnswerCache(rdb, cfg.Services.AnswerCacheTTL)
		}
		l.Warn("BOOTSTRAP", "Failed to connect to Redis, caching answers in memory", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return store.NewMemoryAnswerCache(cfg.Services.AnswerCacheTTL)
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
