package service

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"soundmap/internal/models"
	"soundmap/internal/observability"
	"soundmap/internal/repository"
	"soundmap/internal/session"
	"soundmap/internal/validation"
)

// AuthService handles registration, login and logout. Credentials are
// verified against bcrypt hashes; successful auth mints an opaque session
// token in the session store.
type AuthService struct {
	userRepo repository.UserRepository
	sessions *session.Store
}

type RegisterInput struct {
	Email    string
	Username string
	Password string
}

func NewAuthService(userRepo repository.UserRepository, sessions *session.Store) *AuthService {
	return &AuthService{userRepo: userRepo, sessions: sessions}
}

// Register creates a new account and an initial session for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	if err := validation.ValidateEmail(email); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}

	if existing, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", models.NewConflictError("Email already registered")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", models.NewConflictError("Username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.createSession(ctx, user, "register")
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and creates a session. The error message never
// distinguishes an unknown email from a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		// Burn a hash comparison so timing does not reveal whether the
		// email exists.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$N9qo8uLOickgx2ZMRZoMye"), []byte(password))
		return nil, "", models.NewUnauthorizedError("Email or password incorrect")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", models.NewUnauthorizedError("Email or password incorrect")
	}

	token, err := s.createSession(ctx, user, "login")
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout revokes the session token. Revoking an unknown or expired token is
// not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		slog.WarnContext(ctx, "failed to revoke session", "error", err)
		return models.NewInternalErrorMessage("Authentication unavailable", err)
	}
	return nil
}

func (s *AuthService) createSession(ctx context.Context, user *models.User, surface string) (string, error) {
	token, err := s.sessions.Create(ctx, session.Payload{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create session", "error", err, "user_id", user.ID)
		return "", models.NewInternalErrorMessage("Authentication unavailable", err)
	}
	observability.SessionsCreated.WithLabelValues(surface).Inc()
	return token, nil
}
