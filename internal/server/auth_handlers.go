package server

import (
	"soundmap/internal/models"
	"soundmap/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register.
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, token, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	s.cookieConfig().SetCookie(c, token)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user})
}

// Login handles POST /api/auth/login.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, token, err := s.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	s.cookieConfig().SetCookie(c, token)
	return c.JSON(fiber.Map{"user": user})
}

// Logout handles POST /api/auth/logout. The cookie is cleared even when no
// session was attached, so a stale browser state always resolves to logged out.
func (s *Server) Logout(c *fiber.Ctx) error {
	cookie := s.cookieConfig()
	token := cookie.TokenFromRequest(c)
	if token != "" {
		if err := s.authService.Logout(c.UserContext(), token); err != nil {
			cookie.ClearCookie(c)
			return respondError(c, err)
		}
	}
	cookie.ClearCookie(c)
	return c.JSON(fiber.Map{"success": true})
}

// GetMe handles GET /api/me and returns the authenticated user.
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authentication required"))
	}
	return c.JSON(fiber.Map{"user": user})
}
