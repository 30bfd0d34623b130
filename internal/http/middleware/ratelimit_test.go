package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestRateLimiterRejectsBurstOverflow(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return fixed }

	app := fiber.New()
	app.Get("/limited", limiter.Handler(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		res, err := app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil))
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		statuses = append(statuses, res.StatusCode)
	}

	if statuses[0] != http.StatusNoContent || statuses[1] != http.StatusNoContent {
		t.Fatalf("expected burst to pass, got %v", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", statuses[2])
	}

	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req.Header.Set("X-Client-ID", "other-tab")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("expected separate client bucket, got %d", res.StatusCode)
	}
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	limiter.allow("a")
	current = current.Add(time.Hour)
	limiter.allow("b")

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if _, ok := limiter.clients["a"]; ok {
		t.Fatalf("expected idle client to be swept")
	}
	if len(limiter.clients) != 1 {
		t.Fatalf("expected 1 tracked client, got %d", len(limiter.clients))
	}
}

func TestRateLimiterWithoutRateAllowsAll(t *testing.T) {
	limiter := NewRateLimiter(0, 0)
	for i := 0; i < 50; i++ {
		if !limiter.allow("a") {
			t.Fatalf("expected unlimited limiter to allow request %d", i)
		}
	}
}
