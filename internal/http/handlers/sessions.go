package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/vyrlo/listing-browser/internal/models"
)

type filterRequest struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	CategoryID  string `json:"categoryId"`
	QuickFilter string `json:"quickFilter"`
}

func (r filterRequest) toState() models.FilterState {
	quick := strings.TrimSpace(r.QuickFilter)
	if quick == "" {
		quick = string(models.QuickFilterAll)
	}
	return models.FilterState{
		Name:        r.Name,
		Location:    r.Location,
		CategoryID:  r.CategoryID,
		QuickFilter: models.QuickFilter(quick),
	}
}

type SessionsHandler struct {
	browse BrowseService
}

func NewSessionsHandler(service BrowseService) *SessionsHandler {
	return &SessionsHandler{browse: service}
}

func (h *SessionsHandler) Create(c *fiber.Ctx) error {
	var req filterRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid json body"})
		}
	}

	session, err := h.browse.Start(c.Context(), req.toState())
	if err != nil {
		return respondError(c, err, "failed to create session")
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *SessionsHandler) Get(c *fiber.Ctx) error {
	session, err := h.browse.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "failed to load session")
	}
	return c.JSON(session)
}

func (h *SessionsHandler) UpdateFilter(c *fiber.Ctx) error {
	var req filterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid json body"})
	}

	session, err := h.browse.UpdateFilter(c.Context(), c.Params("id"), req.toState())
	if err != nil {
		return respondError(c, err, "failed to update filter")
	}
	return c.JSON(session)
}

func (h *SessionsHandler) Next(c *fiber.Ctx) error {
	page, err := h.browse.Next(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "failed to load next page")
	}
	return c.JSON(page)
}
