package server

import (
	"strings"

	"soundmap/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ServeAudio handles GET /audio/:filename, streaming a stored blob back with
// its content type. Keys are flat generated filenames; anything resembling a
// path is rejected before touching the store.
func (s *Server) ServeAudio(c *fiber.Ctx) error {
	filename, ok := requireParam(c, "filename", "filename")
	if !ok {
		return nil
	}
	if strings.ContainsAny(filename, "/\\") || strings.Contains(filename, "..") {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid filename"))
	}

	obj, err := s.uploadService.Fetch(c.UserContext(), filename)
	if err != nil {
		return respondError(c, err)
	}
	if obj == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Audio not found"))
	}

	if obj.ContentType != "" {
		c.Set(fiber.HeaderContentType, obj.ContentType)
	}
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	return c.Send(obj.Data)
}
