package serverutils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"deepsight-be/pkg/rag"
	"deepsight-be/pkg/speech"
)

type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) Response {
	return Response{Success: true, Code: fiber.StatusOK, Message: message, Data: data}
}

func ErrorResponse(code int, message string) Response {
	return Response{Success: false, Code: code, Message: message}
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, rag.ErrEmptyQuery):
		return fiber.StatusBadRequest
	case errors.Is(err, speech.ErrNoSpeech):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, rag.ErrGenerationFailed), errors.Is(err, rag.ErrCorpusUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.As(err, &fe):
		return fe.Code
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware turns errors escaping a handler into ErrorResponse
// bodies.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		code := StatusFor(err)
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}

const (
	DeviceHeader = "X-Device-Id"

	// MaxDeviceIDLength matches the search_logs.device_id column, in characters.
	MaxDeviceIDLength = 128
)

// NormalizeDeviceID drops invalid UTF-8 and cuts the id to
// MaxDeviceIDLength characters, never inside a multibyte character.
func NormalizeDeviceID(raw string) string {
	id := strings.TrimSpace(strings.ToValidUTF8(raw, ""))
	if utf8.RuneCountInString(id) > MaxDeviceIDLength {
		id = string([]rune(id)[:MaxDeviceIDLength])
	}
	return id
}

// DeviceID identifies the caller for search history: the X-Device-Id header
// when present, otherwise a hash of client IP and user agent.
func DeviceID(ctx *fiber.Ctx) string {
	if id := NormalizeDeviceID(ctx.Get(DeviceHeader)); id != "" {
		return id
	}
	sum := sha256.Sum256([]byte(ctx.IP() + "|" + ctx.Get(fiber.HeaderUserAgent)))
	return hex.EncodeToString(sum[:])
}
