package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/credential-service/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// ValidationErrorDetail surfaces an individual credential error code.
type ValidationErrorDetail struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ValidationErrorResponse carries the full list of validation failures.
type ValidationErrorResponse struct {
	Error   string                  `json:"error"`
	Details []ValidationErrorDetail `json:"details,omitempty"`
	TraceID string                  `json:"trace_id,omitempty"`
}

// NewValidationErrorResponse flattens a failed operation result into an API payload.
func NewValidationErrorResponse(c *gin.Context, msg string, result domain.OperationResult) ValidationErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	details := make([]ValidationErrorDetail, 0, len(result.Errors))
	for _, credErr := range result.Errors {
		details = append(details, ValidationErrorDetail{
			Code:        credErr.Code,
			Description: credErr.Description,
		})
	}

	return ValidationErrorResponse{
		Error:   msg,
		Details: details,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserSummary describes a minimal view of a user returned by the API.
type UserSummary struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        *string   `json:"email,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

// RegistrationRequest defines the account registration payload.
type RegistrationRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegistrationResponse contains the created account view.
type RegistrationResponse struct {
	User UserSummary `json:"user"`
}

// LoginRequest defines the payload for the login endpoint. Identifier may be
// a username or an email address.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	Authenticated bool        `json:"authenticated"`
	User          UserSummary `json:"user"`
}

// PasswordChangeRequest captures a password change request body.
type PasswordChangeRequest struct {
	Identifier      string `json:"identifier" binding:"required"`
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// PasswordChangeResponse conveys the result of a password change.
type PasswordChangeResponse struct {
	Message   string    `json:"message"`
	ChangedAt time.Time `json:"changed_at"`
}

// UserLookupResponse wraps a resolved user.
type UserLookupResponse struct {
	User UserSummary `json:"user"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// newUserSummary converts a domain user to a summary suitable for API responses.
func newUserSummary(user domain.User) UserSummary {
	summary := UserSummary{
		ID:           user.ID,
		Username:     user.Username,
		RegisteredAt: user.RegisteredAt,
	}

	if email := user.Email; email != "" {
		summary.Email = &email
	}

	return summary
}
