package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"

	"deepsight-be/internal/dto"
	"deepsight-be/internal/pkg/logger"
	"deepsight-be/internal/pkg/serverutils"
	"deepsight-be/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
)

// Client is one query socket. Frames are answered in the order received.
type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	DeviceID string

	// Buffered channel of outbound messages.
	Send chan []byte

	queries service.IQueryService
	logger  logger.ILogger
}

// errorFrame is sent when a query could not be answered at all.
type errorFrame struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// Answer turns one inbound frame into one outbound frame.
func Answer(ctx context.Context, queries service.IQueryService, deviceID string, frame []byte) []byte {
	var req dto.QueryRequest
	if err := json.Unmarshal(frame, &req); err != nil {
		// plain text frames are treated as the question itself
		req = dto.QueryRequest{Query: string(frame)}
	}

	res, err := queries.Ask(ctx, deviceID, &req)
	if res != nil {
		out, _ := json.Marshal(res)
		return out
	}
	out, _ := json.Marshal(errorFrame{Error: err.Error(), Code: serverutils.StatusFor(err)})
	return out
}

// readPump answers inbound frames until the connection closes.
func (c *Client) readPump() {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WS", "Unexpected close", map[string]interface{}{
					"device_id": c.DeviceID,
					"error":     err.Error(),
				})
			}
			break
		}

		reply := Answer(ctx, c.queries, c.DeviceID, frame)
		select {
		case c.Send <- reply:
		default:
			c.logger.Warn("WS", "Send buffer full, dropping reply", map[string]interface{}{"device_id": c.DeviceID})
		}
		// generation can take longer than pongWait
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

// writePump pumps replies and pings to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
