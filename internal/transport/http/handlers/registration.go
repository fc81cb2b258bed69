package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/credential-service/internal/core/domain"
	"github.com/arklim/credential-service/internal/usecase"
)

// RegistrationHandler exposes the account creation endpoint.
type RegistrationHandler struct {
	manager *usecase.CredentialManager
}

func NewRegistrationHandler(manager *usecase.CredentialManager) *RegistrationHandler {
	return &RegistrationHandler{manager: manager}
}

// RegisterRoutes binds registration endpoints.
func (h *RegistrationHandler) RegisterRoutes(r *gin.RouterGroup, middlewares ...gin.HandlerFunc) {
	chain := append([]gin.HandlerFunc{}, middlewares...)
	chain = append(chain, h.Register)
	r.POST("/register", chain...)
}

// Register godoc
// @Summary Register a new user account
// @Description Creates a new user with the provided username, email, and password.
// @Tags Registration
// @Accept json
// @Produce json
// @Param request body RegistrationRequest true "Registration request"
// @Success 201 {object} RegistrationResponse
// @Failure 400 {object} ValidationErrorResponse
// @Failure 409 {object} ValidationErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/user/register [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	user := domain.User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
	}

	result, err := h.manager.Create(c.Request.Context(), &user, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, registrationErrorCases, http.StatusInternalServerError, "failed to register user")
		return
	}

	if !result.Succeeded {
		if result.HasCode(domain.ErrCodeDuplicateKey) {
			c.JSON(http.StatusConflict, NewValidationErrorResponse(c, "username or email already registered", result))
			return
		}
		c.JSON(http.StatusBadRequest, NewValidationErrorResponse(c, "registration validation failed", result))
		return
	}

	user.PasswordHash = ""

	c.JSON(http.StatusCreated, RegistrationResponse{User: newUserSummary(user)})
}

var registrationErrorCases = []ErrorCase{
	{Err: usecase.ErrManagerClosed, Status: http.StatusServiceUnavailable, Message: "service is shutting down"},
}
