package websocket

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"deepsight-be/internal/pkg/logger"
	"deepsight-be/internal/pkg/serverutils"
	"deepsight-be/internal/service"
)

const deviceLocal = "device_id"

type Handler struct {
	hub     *Hub
	queries service.IQueryService
	logger  logger.ILogger
}

func NewHandler(hub *Hub, queries service.IQueryService, l logger.ILogger) *Handler {
	return &Handler{hub: hub, queries: queries, logger: l}
}

func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Use("/ws", func(ctx *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(ctx) {
			return fiber.ErrUpgradeRequired
		}
		// headers are gone once the connection is upgraded
		ctx.Locals(deviceLocal, serverutils.DeviceID(ctx))
		return ctx.Next()
	})
	app.Get("/ws/query", websocket.New(h.serve))
}

// serve runs for the lifetime of one connection.
func (h *Handler) serve(c *websocket.Conn) {
	deviceID, _ := c.Locals(deviceLocal).(string)
	client := &Client{
		Hub:      h.hub,
		Conn:     c,
		DeviceID: deviceID,
		Send:     make(chan []byte, 16),
		queries:  h.queries,
		logger:   h.logger,
	}
	h.hub.register <- client

	go client.writePump()
	client.readPump()
}
