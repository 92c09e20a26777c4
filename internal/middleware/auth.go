package middleware

import (
	"context"
	"log/slog"

	"soundmap/internal/models"
	"soundmap/internal/session"

	"github.com/gofiber/fiber/v2"
)

// UserLookup reports whether the user behind a session payload still exists.
// Failures are returned so callers can distinguish "gone" from "store down".
type UserLookup func(ctx context.Context, userID string) (bool, error)

// SessionAuth resolves the session cookie into an authenticated user. All
// collaborators are injected; there is no package-level session state.
type SessionAuth struct {
	Store      *session.Store
	Cookie     session.CookieConfig
	LookupUser UserLookup
}

// RequireAuth returns a middleware enforcing a valid session. On success it
// stores the user ID, the session payload, and the raw token in Fiber locals.
// A session that parses but refers to a user that no longer exists is revoked
// and its cookie cleared before rejecting the request.
func (a *SessionAuth) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload, token := a.resolve(c)
		if payload == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authentication required"))
		}

		if a.LookupUser != nil {
			exists, err := a.LookupUser(c.UserContext(), payload.UserID)
			if err == nil && !exists {
				// The account behind this session is gone; force a clean logout.
				if delErr := a.Store.Delete(c.UserContext(), token); delErr != nil {
					Logger.WarnContext(c.UserContext(), "failed to revoke orphaned session",
						slog.String("error", delErr.Error()))
				}
				a.Cookie.ClearCookie(c)
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Authentication required"))
			}
		}

		c.Locals("userID", payload.UserID)
		c.Locals("session", payload)
		c.Locals("sessionToken", token)
		return c.Next()
	}
}

// OptionalAuth resolves the session if present but never rejects the request.
func (a *SessionAuth) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if payload, token := a.resolve(c); payload != nil {
			c.Locals("userID", payload.UserID)
			c.Locals("session", payload)
			c.Locals("sessionToken", token)
		}
		return c.Next()
	}
}

// resolve reads the cookie and looks the token up in the session store.
// Store unavailability degrades to anonymous by the store's Get contract.
func (a *SessionAuth) resolve(c *fiber.Ctx) (*session.Payload, string) {
	token := a.Cookie.TokenFromRequest(c)
	if token == "" {
		return nil, ""
	}
	payload, err := a.Store.Get(c.UserContext(), token)
	if err != nil || payload == nil {
		return nil, ""
	}
	return payload, token
}

// CurrentUserID returns the authenticated user ID from Fiber locals, or ""
// for anonymous requests.
func CurrentUserID(c *fiber.Ctx) string {
	if uid, ok := c.Locals("userID").(string); ok {
		return uid
	}
	return ""
}
