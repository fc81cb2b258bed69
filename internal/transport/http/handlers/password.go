package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/credential-service/internal/core/domain"
	"github.com/arklim/credential-service/internal/usecase"
)

// PasswordHandler exposes the password change endpoint.
type PasswordHandler struct {
	manager *usecase.CredentialManager
}

func NewPasswordHandler(manager *usecase.CredentialManager) *PasswordHandler {
	return &PasswordHandler{manager: manager}
}

// RegisterRoutes binds password endpoints.
func (h *PasswordHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/change", h.ChangePassword)
}

// ChangePassword godoc
// @Summary Change the password for an account
// @Description Verifies the current password and replaces it with a new one.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body PasswordChangeRequest true "Password change request"
// @Success 200 {object} PasswordChangeResponse
// @Failure 400 {object} ValidationErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/password/change [post]
func (h *PasswordHandler) ChangePassword(c *gin.Context) {
	var req PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid password change payload"))
		return
	}

	ctx := c.Request.Context()

	user, err := h.resolveUser(ctx, strings.TrimSpace(req.Identifier))
	if err != nil {
		RespondWithMappedError(c, err, passwordErrorCases, http.StatusInternalServerError, "failed to change password")
		return
	}

	// An unknown identifier gets the same response as a wrong current
	// password so the endpoint does not confirm account existence.
	if user == nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "current password is incorrect"))
		return
	}

	result, err := h.manager.ChangePassword(ctx, user, req.CurrentPassword, req.NewPassword)
	if err != nil {
		RespondWithMappedError(c, err, passwordErrorCases, http.StatusInternalServerError, "failed to change password")
		return
	}

	if !result.Succeeded {
		if result.HasCode(domain.ErrCodePasswordMismatch) {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "current password is incorrect"))
			return
		}
		c.JSON(http.StatusBadRequest, NewValidationErrorResponse(c, "new password rejected", result))
		return
	}

	c.JSON(http.StatusOK, PasswordChangeResponse{
		Message:   "password changed",
		ChangedAt: time.Now().UTC(),
	})
}

func (h *PasswordHandler) resolveUser(ctx context.Context, identifier string) (*domain.User, error) {
	if strings.Contains(identifier, "@") {
		return h.manager.FindByEmail(ctx, identifier)
	}
	return h.manager.FindByName(ctx, identifier)
}

var passwordErrorCases = []ErrorCase{
	{Err: usecase.ErrManagerClosed, Status: http.StatusServiceUnavailable, Message: "service is shutting down"},
	{Err: usecase.ErrIdentifierRequired, Status: http.StatusBadRequest, Message: "identifier is required"},
}
