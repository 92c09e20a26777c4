package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/profile/:username.
func (s *Server) GetProfile(c *fiber.Ctx) error {
	username, ok := requireParam(c, "username", "username")
	if !ok {
		return nil
	}

	profile, err := s.socialService.GetProfile(c.UserContext(), username, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// ToggleFollow handles POST /api/profile/:username/follow.
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	username, ok := requireParam(c, "username", "username")
	if !ok {
		return nil
	}

	following, err := s.socialService.ToggleFollow(c.UserContext(), currentUserID(c), username)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}
