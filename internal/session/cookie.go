package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// CookieConfig describes how the session token is transported to the browser.
// Constructed once at startup from application config and injected; the cookie
// is a capability reference, never a copy of session state.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// SetCookie attaches the session token to the response.
func (cc CookieConfig) SetCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     cc.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cc.MaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   cc.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie on the client.
func (cc CookieConfig) ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     cc.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   cc.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// TokenFromRequest extracts the session token from the request cookie, or ""
// when the cookie is absent.
func (cc CookieConfig) TokenFromRequest(c *fiber.Ctx) string {
	return c.Cookies(cc.Name)
}
