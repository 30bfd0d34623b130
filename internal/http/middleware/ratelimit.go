package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const (
	clientIdleTimeout = 30 * time.Minute
	sweepInterval     = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands every client its own token bucket.
type RateLimiter struct {
	perSecond rate.Limit
	burst     int
	now       func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		perSecond: limit,
		burst:     burst,
		now:       time.Now,
		clients:   make(map[string]*clientLimiter),
	}
}

func clientIdentifier(c *fiber.Ctx) string {
	if forwarded := c.Get("X-Client-ID"); forwarded != "" {
		return c.IP() + "|" + forwarded
	}
	return c.IP()
}

func (rl *RateLimiter) allow(identifier string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > sweepInterval {
		for id, client := range rl.clients {
			if now.Sub(client.lastSeen) > clientIdleTimeout {
				delete(rl.clients, id)
			}
		}
		rl.lastSweep = now
	}

	client, exists := rl.clients[identifier]
	if !exists {
		client = &clientLimiter{limiter: rate.NewLimiter(rl.perSecond, rl.burst)}
		rl.clients[identifier] = client
	}
	client.lastSeen = now
	return client.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rl.allow(clientIdentifier(c)) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message":   "rate limit exceeded",
				"retryable": true,
			})
		}
		return c.Next()
	}
}
