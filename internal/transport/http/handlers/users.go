package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/credential-service/internal/usecase"
)

// UserHandler exposes user resolution endpoints.
type UserHandler struct {
	manager *usecase.CredentialManager
}

func NewUserHandler(manager *usecase.CredentialManager) *UserHandler {
	return &UserHandler{manager: manager}
}

// RegisterRoutes binds user lookup endpoints.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/by-name/:username", h.FindByName)
	r.GET("/by-email/:email", h.FindByEmail)
}

// FindByName godoc
// @Summary Resolve a user by username
// @Description Looks up a user by username. Matching is case-insensitive.
// @Tags Users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} UserLookupResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/user/by-name/{username} [get]
func (h *UserHandler) FindByName(c *gin.Context) {
	username := strings.TrimSpace(c.Param("username"))

	user, err := h.manager.FindByName(c.Request.Context(), username)
	if err != nil {
		RespondWithMappedError(c, err, lookupErrorCases, http.StatusInternalServerError, "failed to resolve user")
		return
	}

	if user == nil {
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "user not found"))
		return
	}

	user.PasswordHash = ""

	c.JSON(http.StatusOK, UserLookupResponse{User: newUserSummary(*user)})
}

// FindByEmail godoc
// @Summary Resolve a user by email address
// @Description Looks up a user by email. Matching is case-insensitive.
// @Tags Users
// @Produce json
// @Param email path string true "Email address"
// @Success 200 {object} UserLookupResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/user/by-email/{email} [get]
func (h *UserHandler) FindByEmail(c *gin.Context) {
	email := strings.TrimSpace(c.Param("email"))

	user, err := h.manager.FindByEmail(c.Request.Context(), email)
	if err != nil {
		RespondWithMappedError(c, err, lookupErrorCases, http.StatusInternalServerError, "failed to resolve user")
		return
	}

	if user == nil {
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "user not found"))
		return
	}

	user.PasswordHash = ""

	c.JSON(http.StatusOK, UserLookupResponse{User: newUserSummary(*user)})
}

var lookupErrorCases = []ErrorCase{
	{Err: usecase.ErrManagerClosed, Status: http.StatusServiceUnavailable, Message: "service is shutting down"},
	{Err: usecase.ErrIdentifierRequired, Status: http.StatusBadRequest, Message: "identifier is required"},
}
