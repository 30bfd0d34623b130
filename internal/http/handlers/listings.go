package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/vyrlo/listing-browser/internal/browse"
	"github.com/vyrlo/listing-browser/internal/models"
)

type BrowseService interface {
	Start(ctx context.Context, initial models.FilterState) (models.Session, error)
	Get(ctx context.Context, id string) (models.Session, error)
	UpdateFilter(ctx context.Context, id string, next models.FilterState) (models.Session, error)
	Next(ctx context.Context, id string) (browse.Page, error)
	Query(ctx context.Context, state models.FilterState, pageNumber int) (browse.Page, error)
	Suggest(ctx context.Context, id string, query string, location string) (browse.SuggestionResult, error)
	LocationSuggestions(ctx context.Context, query string) ([]models.Suggestion, error)
}

type ListingsHandler struct {
	browse BrowseService
}

func NewListingsHandler(service BrowseService) *ListingsHandler {
	return &ListingsHandler{browse: service}
}

// List serves one page of a filter without creating a session.
func (h *ListingsHandler) List(c *fiber.Ctx) error {
	state := models.FilterState{
		Name:        c.Query("name"),
		Location:    c.Query("location"),
		CategoryID:  c.Query("category"),
		QuickFilter: models.QuickFilter(c.Query("quick", string(models.QuickFilterAll))),
	}

	pageNumber := c.QueryInt("page", 1)
	if pageNumber < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "page must be a positive integer"})
	}

	page, err := h.browse.Query(c.Context(), state, pageNumber)
	if err != nil {
		return respondError(c, err, "failed to list listings")
	}
	return c.JSON(page)
}
