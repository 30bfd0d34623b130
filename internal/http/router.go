package http

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/vyrlo/listing-browser/internal/config"
	"github.com/vyrlo/listing-browser/internal/http/handlers"
	"github.com/vyrlo/listing-browser/internal/http/middleware"
)

type Dependencies struct {
	DB      *sql.DB
	Catalog handlers.CatalogService
	Status  handlers.CatalogStatus
	Backend handlers.BackendPinger
	Browse  handlers.BrowseService
}

func NewServer(cfg config.Config, deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	app.Use(recover.New())

	health := handlers.NewHealthHandler(deps.DB, deps.Status, deps.Backend)
	catalog := handlers.NewCatalogHandler(deps.Catalog)
	listings := handlers.NewListingsHandler(deps.Browse)
	sessions := handlers.NewSessionsHandler(deps.Browse)
	suggestions := handlers.NewSuggestionsHandler(deps.Browse)
	suggestLimit := middleware.NewRateLimiter(cfg.SuggestRatePerSecond, suggestBurst(cfg.SuggestRatePerSecond)).Handler()

	app.Get("/health", health.Check)
	app.Get("/v1/health", health.Check)

	v1 := app.Group("/v1")
	v1.Get("/categories", catalog.Categories)
	v1.Post("/catalog/reload", catalog.Reload)
	v1.Get("/listings", listings.List)
	v1.Post("/sessions", sessions.Create)
	v1.Get("/sessions/:id", sessions.Get)
	v1.Put("/sessions/:id/filter", sessions.UpdateFilter)
	v1.Post("/sessions/:id/next", sessions.Next)
	v1.Get("/sessions/:id/suggestions", suggestLimit, suggestions.Session)
	v1.Get("/suggestions/locations", suggestLimit, suggestions.Locations)

	return app
}

// suggestBurst is twice the sustained rate, never below 5.
func suggestBurst(perSecond float64) int {
	burst := int(perSecond * 2)
	if burst < 5 {
		return 5
	}
	return burst
}
