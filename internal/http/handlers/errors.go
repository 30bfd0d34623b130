package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/vyrlo/listing-browser/internal/backend"
	"github.com/vyrlo/listing-browser/internal/browse"
	"github.com/vyrlo/listing-browser/internal/pagination"
)

// respondError maps service errors onto status codes. Backend failures are
// reported as retryable so the client can offer a manual retry.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, browse.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "session not found"})
	case errors.Is(err, pagination.ErrBusy):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error(), "retryable": true})
	case errors.Is(err, backend.ErrNetworkFailure):
		slog.Warn("backend request failed", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "listing service unavailable", "retryable": true})
	case errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{"message": "request timed out", "retryable": true})
	default:
		slog.Error(fallback, "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": fallback})
	}
}
