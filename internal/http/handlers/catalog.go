package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vyrlo/listing-browser/internal/models"
)

type CatalogService interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Reload(ctx context.Context) error
	Listings(ctx context.Context) ([]models.Listing, error)
	LoadedAt() time.Time
}

type CatalogHandler struct {
	catalog CatalogService
}

func NewCatalogHandler(catalog CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	categories, err := h.catalog.Categories(c.Context())
	if err != nil {
		return respondError(c, err, "failed to load categories")
	}
	return c.JSON(fiber.Map{"items": categories, "empty": len(categories) == 0})
}

// Reload drops the cached listing and category sets and fetches them again.
func (h *CatalogHandler) Reload(c *fiber.Ctx) error {
	if err := h.catalog.Reload(c.Context()); err != nil {
		return respondError(c, err, "failed to reload catalog")
	}

	listings, err := h.catalog.Listings(c.Context())
	if err != nil {
		return respondError(c, err, "failed to reload catalog")
	}
	categories, err := h.catalog.Categories(c.Context())
	if err != nil {
		return respondError(c, err, "failed to reload catalog")
	}

	return c.JSON(fiber.Map{
		"listings":   len(listings),
		"categories": len(categories),
		"loadedAt":   h.catalog.LoadedAt().Format(time.RFC3339),
	})
}
