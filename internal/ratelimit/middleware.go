package ratelimit

import (
	"fmt"
	"log/slog"

	"soundmap/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FailPolicy defines the behavior when the backing store is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if the store is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if the store is unavailable.
	FailClosed
)

// Middleware returns a Fiber middleware enforcing the policy for the named
// action. It keys by authenticated userID (if set in c.Locals("userID"))
// otherwise by remote IP, and defaults to FailOpen.
func (l *Limiter) Middleware(action string, policy Policy) fiber.Handler {
	return l.MiddlewareWithPolicy(action, policy, FailOpen)
}

// MiddlewareWithPolicy returns a Fiber middleware with an explicit failure policy.
func (l *Limiter) MiddlewareWithPolicy(action string, policy Policy, fail FailPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var subject string
		if uid, ok := c.Locals("userID").(string); ok && uid != "" {
			subject = "user:" + uid
		} else {
			subject = "ip:" + c.IP()
		}

		key := fmt.Sprintf("%s:%s", action, subject)
		res, err := l.CheckAndConsume(c.UserContext(), key, policy)
		if err != nil {
			if fail == FailClosed {
				slog.Warn("rate limit store unavailable, failing closed",
					slog.String("action", action),
					slog.String("error", err.Error()))
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
				})
			}
			return c.Next()
		}

		if !res.Allowed {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				models.NewRateLimitError(res.ResetAt))
		}
		return c.Next()
	}
}
