package handlers

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
)

type BackendPinger interface {
	HealthCheck(ctx context.Context) error
}

type CatalogStatus interface {
	Loaded() bool
	LoadedAt() time.Time
}

type HealthHandler struct {
	db      *sql.DB
	catalog CatalogStatus
	backend BackendPinger
}

func NewHealthHandler(db *sql.DB, catalog CatalogStatus, backend BackendPinger) *HealthHandler {
	return &HealthHandler{db: db, catalog: catalog, backend: backend}
}

// Check reports 503 only when the session store is down. An unreachable
// backend degrades the status but cached listings can still be served.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	payload := fiber.Map{
		"status":  "ok",
		"db":      "up",
		"backend": "unknown",
		"catalog": "cold",
		"time":    time.Now().UTC().Format(time.RFC3339),
	}

	if h.catalog != nil && h.catalog.Loaded() {
		payload["catalog"] = "loaded"
		payload["catalogLoadedAt"] = h.catalog.LoadedAt().Format(time.RFC3339)
	}

	if h.backend != nil {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		err := h.backend.HealthCheck(ctx)
		cancel()
		if err != nil {
			payload["backend"] = "down"
			payload["status"] = "degraded"
		} else {
			payload["backend"] = "up"
		}
	}

	if err := h.db.Ping(); err != nil {
		payload["db"] = "down"
		payload["status"] = "degraded"
		return c.Status(fiber.StatusServiceUnavailable).JSON(payload)
	}

	return c.JSON(payload)
}
