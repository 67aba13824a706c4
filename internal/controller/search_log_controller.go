package controller

import (
	"github.com/gofiber/fiber/v2"

	"deepsight-be/internal/pkg/serverutils"
	"deepsight-be/internal/service"
)

type ISearchLogController interface {
	RegisterRoutes(r fiber.Router)
	Recent(ctx *fiber.Ctx) error
	Mine(ctx *fiber.Ctx) error
}

type searchLogController struct {
	service service.ISearchLogService
}

func NewSearchLogController(service service.ISearchLogService) ISearchLogController {
	return &searchLogController{service: service}
}

func (c *searchLogController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/search-logs")
	h.Get("/recent", c.Recent)
	h.Get("/me", c.Mine)
}

func (c *searchLogController) Recent(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", service.DefaultRecentLimit)

	res, err := c.service.Recent(ctx.UserContext(), limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Recent searches", res))
}

func (c *searchLogController) Mine(ctx *fiber.Ctx) error {
	res, err := c.service.ForDevice(ctx.UserContext(), serverutils.DeviceID(ctx))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	if res == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "no searches recorded for this device"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Search history", res))
}
