package server

import (
	"io"
	"strconv"

	"soundmap/internal/models"
	"soundmap/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts. The request is multipart: an "audio"
// file plus the post fields. The audio is stored first; the post row is only
// created once the blob write succeeded.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	file, err := c.FormFile("audio")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No audio file uploaded"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}

	uploaded, err := s.uploadService.Upload(c.UserContext(), service.UploadAudioInput{
		UserID:      userID,
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		return respondError(c, err)
	}

	lat, err := parseCoordinate(c.FormValue("latitude"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid latitude"))
	}
	lng, err := parseCoordinate(c.FormValue("longitude"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid longitude"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:      userID,
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		AudioURL:    uploaded.URL,
		Latitude:    lat,
		Longitude:   lng,
		Location:    c.FormValue("location"),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": post})
}

// GetPost handles GET /api/posts/:id.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, ok := requireParam(c, "id", "post ID")
	if !ok {
		return nil
	}

	detail, err := s.postService.GetPost(c.UserContext(), postID, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

// ToggleLike handles POST /api/posts/:id/like.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, ok := requireParam(c, "id", "post ID")
	if !ok {
		return nil
	}

	liked, likesCount, err := s.postService.ToggleLike(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"liked":       liked,
		"likes_count": likesCount,
	})
}

// GetComments handles GET /api/posts/:id/comments.
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, ok := requireParam(c, "id", "post ID")
	if !ok {
		return nil
	}

	detail, err := s.postService.GetPost(c.UserContext(), postID, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"comments": detail.Comments})
}

// CreateComment handles POST /api/posts/:id/comments.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, ok := requireParam(c, "id", "post ID")
	if !ok {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.postService.AddComment(c.UserContext(), currentUserID(c), postID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": comment})
}

// GetTimeline handles GET /api/timeline.
func (s *Server) GetTimeline(c *fiber.Ctx) error {
	posts, err := s.feedService.Timeline(c.UserContext(), currentUserID(c),
		parseLimit(c, service.DefaultFeedLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GetMapPosts handles GET /api/map, returning posts with coordinates.
func (s *Server) GetMapPosts(c *fiber.Ctx) error {
	posts, err := s.feedService.MapPosts(c.UserContext(), parseLimit(c, service.DefaultFeedLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// parseCoordinate parses an optional form field into a coordinate pointer.
// Empty means absent, not zero.
func parseCoordinate(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
