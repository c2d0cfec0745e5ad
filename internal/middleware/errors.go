package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/sghss/sghss-api/internal/apperr"
	"github.com/sghss/sghss-api/internal/dto"
)

// Fail writes err as a JSON error body with the status of its category.
// Store failures are logged at ERROR and reported with a generic message;
// validation and not-found outcomes are not logged.
func Fail(c *fiber.Ctx, action string, err error) error {
	ae := apperr.As(err)
	status := apperr.HTTPStatus(err)
	message := ae.Message

	if status >= fiber.StatusInternalServerError {
		attrs := []any{
			"action", action,
			"error", err.Error(),
			"path", c.Path(),
			"request_id", RequestID(c),
		}
		if id := GetIdentity(c); id != nil {
			attrs = append(attrs, "user_id", id.UserID.String())
		}
		slog.Error("request failed", attrs...)
		message = "Internal server error"
	}

	return c.Status(status).JSON(dto.ErrorResponse{
		Error:   true,
		Kind:    ae.Code(),
		Message: message,
	})
}

// RequestID returns the id assigned by the requestid middleware.
func RequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

// ErrorHandler handles errors that escape the route handlers, such as
// fiber's own 404 and 405 responses.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	if code >= fiber.StatusInternalServerError {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", RequestID(c),
			"error", err.Error(),
		)
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}
