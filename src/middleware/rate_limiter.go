package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/careernest/Backend-CareerNest/src/models"
)

// RateLimit applies a per-client token bucket. Authenticated requests are
// keyed by user id, anonymous ones by remote IP. Idle limiters are evicted
// in the background so the map does not grow without bound.
func RateLimit(requestsPerMinute, burst int) fiber.Handler {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*client)
	)

	go func() {
		for range time.Tick(5 * time.Minute) {
			mu.Lock()
			for key, c := range clients {
				if time.Since(c.lastSeen) > 10*time.Minute {
					delete(clients, key)
				}
			}
			mu.Unlock()
		}
	}()

	perSecond := rate.Limit(float64(requestsPerMinute) / 60.0)

	return func(c *fiber.Ctx) error {
		key := c.IP()
		if user, ok := c.Locals("user").(models.User); ok {
			key = user.Id.Hex()
		}

		mu.Lock()
		entry, ok := clients[key]
		if !ok {
			entry = &client{limiter: rate.NewLimiter(perSecond, burst)}
			clients[key] = entry
		}
		entry.lastSeen = time.Now()
		mu.Unlock()

		if !entry.limiter.Allow() {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests, please try again later",
			})
		}
		return c.Next()
	}
}
