package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/Backend-Link-Up/src/models"
	"github.com/theleywin/Backend-Link-Up/src/ratelimit"
)

// Limiter is the process-wide counter store. Main swaps it for a Redis
// store when REDIS_ADDR is configured.
var Limiter ratelimit.Store = ratelimit.NewMemoryStore()

// RateLimit admits or rejects the request against the category's fixed
// window before the handler runs. Keys by authenticated user when the
// auth middleware already ran, otherwise by client IP.
func RateLimit(cat ratelimit.Category) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if user, ok := c.Locals("user").(models.User); ok {
			key = user.Id.Hex()
		}

		decision, err := Limiter.Consume(c.Context(), key, cat)
		if err != nil {
			// Un contador caído no debe tirar la API completa
			slog.Error("rate limiter store failure, admitting request", "category", string(cat), "error", err)
			return c.Next()
		}

		if !decision.Allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success":           false,
				"message":           ratelimit.MessageFor(cat) + " exceeded. Please try again later.",
				"retryAfterSeconds": decision.RetryAfterSeconds(),
				"retryAfterMinutes": decision.RetryAfterMinutes(),
			})
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Set("X-RateLimit-Reset", decision.ResetAt.Format(time.RFC3339))

		return c.Next()
	}
}
