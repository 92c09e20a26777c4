package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	ResetAt string `json:"reset_at,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	// ResetAt is set for rate limit errors so clients can tell the user when to retry.
	ResetAt time.Time
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: message,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
	}
}

func NewRateLimitError(resetAt time.Time) *AppError {
	return &AppError{
		Code:    "RATE_LIMITED",
		Message: fmt.Sprintf("Rate limit exceeded, try again after %s", resetAt.UTC().Format(time.RFC3339)),
		ResetAt: resetAt,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Err:     err,
	}
}

// NewInternalErrorMessage is an internal error with a specific caller-facing
// message (e.g. "Authentication unavailable"). The wrapped cause is logged
// server-side, never echoed to the client.
func NewInternalErrorMessage(message string, err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Err:     err,
	}
}

// StatusForError maps an AppError code to its HTTP status.
func StatusForError(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case "NOT_FOUND":
		return fiber.StatusNotFound
	case "VALIDATION_ERROR", "CONFLICT":
		return fiber.StatusBadRequest
	case "UNAUTHORIZED":
		return fiber.StatusUnauthorized
	case "RATE_LIMITED":
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response.
// Internal error detail is never echoed to the client; callers log it server-side.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if !appErr.ResetAt.IsZero() {
			response.ResetAt = appErr.ResetAt.UTC().Format(time.RFC3339)
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
