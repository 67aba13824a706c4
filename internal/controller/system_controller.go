package controller

import (
	"github.com/gofiber/fiber/v2"

	"deepsight-be/internal/dto"
	"deepsight-be/internal/pkg/logger"
	"deepsight-be/internal/pkg/serverutils"
	"deepsight-be/internal/service"
)

// CorpusInfo is satisfied by *corpus.Snapshot.
type CorpusInfo interface {
	Len() int
	PlaceNames() []string
}

type ISystemController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
	Logs(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type systemController struct {
	corpus          CorpusInfo
	backend         string
	workingLanguage string
	logs            logger.ILogger
	analytics       service.IAnalyticsService
}

func NewSystemController(corpus CorpusInfo, backend, workingLanguage string, logs logger.ILogger, analytics service.IAnalyticsService) ISystemController {
	return &systemController{
		corpus:          corpus,
		backend:         backend,
		workingLanguage: workingLanguage,
		logs:            logs,
		analytics:       analytics,
	}
}

func (c *systemController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
	r.Get("/logs", c.Logs)
	r.Get("/stats", c.Stats)
}

func (c *systemController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.HealthResponse{
		Status:     "ok",
		Corpus:     c.corpus.Len(),
		Places:     len(c.corpus.PlaceNames()),
		Backend:    c.backend,
		WorkingLng: c.workingLanguage,
	})
}

// Logs pages through the server log file, newest first.
func (c *systemController) Logs(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 50)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	offset := ctx.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	entries, err := c.logs.GetLogs(ctx.Query("level"), limit, offset)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	out := make([]dto.LogEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = dto.LogEntryResponse(e)
	}
	return ctx.JSON(serverutils.SuccessResponse("Logs", out))
}

func (c *systemController) Stats(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Query statistics", c.analytics.Stats()))
}
