package server

import (
	"strings"

	"soundmap/internal/models"

	"github.com/gofiber/fiber/v2"
)

// respondError maps the service error to its HTTP status and writes the
// standard error body.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}

// currentUserID returns the authenticated user ID from locals, or "" for
// anonymous requests.
func currentUserID(c *fiber.Ctx) string {
	if uid, ok := c.Locals("userID").(string); ok {
		return uid
	}
	return ""
}

// requireParam extracts a non-empty route parameter. The second return is
// false when the parameter is missing, in which case a 400 has been written.
func requireParam(c *fiber.Ctx, name, label string) (string, bool) {
	value := strings.TrimSpace(c.Params(name))
	if value == "" {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+label))
		return "", false
	}
	return value, true
}

// parseLimit extracts the limit query parameter, falling back to the default
// when absent or out of range.
func parseLimit(c *fiber.Ctx, defaultLimit int) int {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 || limit > defaultLimit {
		return defaultLimit
	}
	return limit
}
