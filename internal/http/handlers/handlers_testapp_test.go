package handlers_test

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/vyrlo/listing-browser/internal/backend"
	"github.com/vyrlo/listing-browser/internal/browse"
	"github.com/vyrlo/listing-browser/internal/catalog"
	"github.com/vyrlo/listing-browser/internal/config"
	"github.com/vyrlo/listing-browser/internal/database"
	apihttp "github.com/vyrlo/listing-browser/internal/http"
	"github.com/vyrlo/listing-browser/internal/repository"
	"github.com/vyrlo/listing-browser/internal/suggest"
)

func fixtureBackend() http.Handler {
	listings := make([]map[string]any, 0, 17)
	for i := 1; i <= 15; i++ {
		listings = append(listings, map[string]any{
			"_id":        fmt.Sprintf("cafe-%02d", i),
			"name":       fmt.Sprintf("Cafe %02d", i),
			"location":   "Lisbon",
			"categoryId": "c1",
			"rating":     float64(i%5) + 0.5,
			"isPosted":   false,
			"isActive":   true,
		})
	}
	listings = append(listings,
		map[string]any{"_id": "diner-1", "name": "Ace Diner", "location": "Porto", "categoryId": map[string]any{"_id": "c2", "name": "Diners"}, "rating": 5},
		map[string]any{"_id": "diner-2", "name": "Night Diner", "location": "Porto", "categoryId": "c2", "rating": 3},
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/listings/active", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"listings": listings})
	})
	mux.HandleFunc("/categories", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"_id": "c1", "name": "Cafes"},
			{"_id": "c2", "name": "Diners"},
		})
	})
	return mux
}

func setupTestApp(t *testing.T) (*sql.DB, *fiber.App, func()) {
	t.Helper()
	return setupTestAppWithBackend(t, fixtureBackend())
}

func setupTestAppWithBackend(t *testing.T, backendHandler http.Handler) (*sql.DB, *fiber.App, func()) {
	t.Helper()

	tmpDir := t.TempDir()
	db, err := database.Open(filepath.Join(tmpDir, "test.sqlite"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.ApplyMigrations(db, ""); err != nil {
		_ = db.Close()
		t.Fatalf("apply migrations: %v", err)
	}

	server := httptest.NewServer(backendHandler)

	cfg := config.Config{
		AppName:              "test-app",
		SuggestRatePerSecond: 1000,
		Tuning:               config.DefaultTuning(),
	}

	client := backend.NewClient(backend.Options{BaseURL: server.URL})
	cat := catalog.New(client, nil)
	aggregator := suggest.NewAggregator(cat, cat, cfg.Tuning, nil)
	service := browse.NewService(cat, repository.NewSessionRepository(db), aggregator, nil)

	app := apihttp.NewServer(cfg, apihttp.Dependencies{
		DB:      db,
		Catalog: cat,
		Status:  cat,
		Backend: client,
		Browse:  service,
	})

	cleanup := func() {
		_ = app.Shutdown()
		server.Close()
		_ = db.Close()
	}

	return db, app, cleanup
}

func doRequest(t *testing.T, app *fiber.App, method string, target string, body io.Reader) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, target, err)
	}
	return res
}

func decodeBody(t *testing.T, res *http.Response) map[string]any {
	t.Helper()

	var payload map[string]any
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload
}
