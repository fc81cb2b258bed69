package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/credential-service/internal/core/domain"
	"github.com/arklim/credential-service/internal/usecase"
)

// AuthHandler exposes the password verification endpoint.
type AuthHandler struct {
	manager *usecase.CredentialManager
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(manager *usecase.CredentialManager) *AuthHandler {
	return &AuthHandler{manager: manager}
}

// RegisterRoutes binds authentication routes, applying optional middleware ahead of handlers.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, loginMiddlewares ...gin.HandlerFunc) {
	chain := append([]gin.HandlerFunc{}, loginMiddlewares...)
	chain = append(chain, h.Login)
	r.POST("/login", chain...)
}

// Login godoc
// @Summary Verify user credentials
// @Description Resolves the user by username or email and verifies the supplied password.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	ctx := c.Request.Context()

	user, err := h.resolveUser(ctx, strings.TrimSpace(req.Identifier))
	if err != nil {
		RespondWithMappedError(c, err, authErrorCases, http.StatusInternalServerError, "failed to verify credentials")
		return
	}

	// CheckPassword runs even when no user matched so an unknown identifier
	// costs the same as a wrong password.
	ok, err := h.manager.CheckPassword(ctx, user, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, authErrorCases, http.StatusInternalServerError, "failed to verify credentials")
		return
	}

	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid credentials"))
		return
	}

	user.PasswordHash = ""

	c.JSON(http.StatusOK, LoginResponse{
		Authenticated: true,
		User:          newUserSummary(*user),
	})
}

func (h *AuthHandler) resolveUser(ctx context.Context, identifier string) (*domain.User, error) {
	if strings.Contains(identifier, "@") {
		return h.manager.FindByEmail(ctx, identifier)
	}
	return h.manager.FindByName(ctx, identifier)
}

var authErrorCases = []ErrorCase{
	{Err: usecase.ErrManagerClosed, Status: http.StatusServiceUnavailable, Message: "service is shutting down"},
	{Err: usecase.ErrIdentifierRequired, Status: http.StatusBadRequest, Message: "identifier is required"},
}
