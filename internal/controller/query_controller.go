package controller

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"deepsight-be/internal/dto"
	"deepsight-be/internal/pkg/serverutils"
	"deepsight-be/internal/service"
	"deepsight-be/pkg/rag"
)

const maxAudioBytes = 25 * 1024 * 1024

type IQueryController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	AskVoice(ctx *fiber.Ctx) error
}

type queryController struct {
	service service.IQueryService
}

func NewQueryController(service service.IQueryService) IQueryController {
	return &queryController{service: service}
}

func (c *queryController) RegisterRoutes(r fiber.Router) {
	r.Post("/query", c.Ask)
	r.Post("/query/voice", c.AskVoice)
}

func (c *queryController) Ask(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}

	res, err := c.service.Ask(ctx.UserContext(), serverutils.DeviceID(ctx), &req)
	if errors.Is(err, rag.ErrEmptyQuery) {
		return ctx.Status(fiber.StatusBadRequest).JSON(res)
	}
	if err != nil {
		code := serverutils.StatusFor(err)
		return ctx.Status(code).JSON(serverutils.ErrorResponse(code, err.Error()))
	}
	return ctx.JSON(res)
}

func (c *queryController) AskVoice(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("audio")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "audio file is required"))
	}
	if file.Size > maxAudioBytes {
		return ctx.Status(fiber.StatusRequestEntityTooLarge).JSON(serverutils.ErrorResponse(413, "audio file is too large"))
	}

	f, err := file.Open()
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}
	defer f.Close()

	audio, err := io.ReadAll(f)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.AskVoice(
		ctx.UserContext(),
		serverutils.DeviceID(ctx),
		audio,
		file.Header.Get(fiber.HeaderContentType),
		ctx.FormValue("language"),
	)
	if errors.Is(err, rag.ErrEmptyQuery) && res != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(res)
	}
	if err != nil {
		code := serverutils.StatusFor(err)
		return ctx.Status(code).JSON(serverutils.ErrorResponse(code, err.Error()))
	}
	return ctx.JSON(res)
}
