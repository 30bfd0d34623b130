package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type SuggestionsHandler struct {
	browse BrowseService
}

func NewSuggestionsHandler(service BrowseService) *SuggestionsHandler {
	return &SuggestionsHandler{browse: service}
}

func (h *SuggestionsHandler) Session(c *fiber.Ctx) error {
	result, err := h.browse.Suggest(c.Context(), c.Params("id"), c.Query("q"), c.Query("location"))
	if err != nil {
		return respondError(c, err, "failed to load suggestions")
	}
	return c.JSON(result)
}

func (h *SuggestionsHandler) Locations(c *fiber.Ctx) error {
	suggestions, err := h.browse.LocationSuggestions(c.Context(), c.Query("q"))
	if err != nil {
		return respondError(c, err, "failed to load location suggestions")
	}
	return c.JSON(fiber.Map{"items": suggestions, "empty": len(suggestions) == 0})
}
