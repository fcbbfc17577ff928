package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-id-api/internal/middleware"
	"github.com/noah-isme/campus-id-api/internal/models"
	"github.com/noah-isme/campus-id-api/internal/service"
	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
	"github.com/noah-isme/campus-id-api/pkg/response"
	"github.com/noah-isme/campus-id-api/pkg/validation"
)

// ForgotPasswordMessage is returned whether or not the account exists.
const ForgotPasswordMessage = "if an account exists for that email, a reset link has been sent"

type authService interface {
	Login(ctx context.Context, clientID string, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, clientID string, req models.RegisterRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context, clientID string) error
	ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Sign in
// @Description Authenticate by email and password. A client already holding a token keeps its client id.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validation.Error(err, "invalid login payload"))
		return
	}

	res, err := h.service.Login(c.Request.Context(), middleware.ClientID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Register godoc
// @Summary Register a student account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validation.Error(err, "invalid registration payload"))
		return
	}

	res, err := h.service.Register(c.Request.Context(), middleware.ClientID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, res)
}

// Logout godoc
// @Summary Sign out
// @Description Clears the client's session and discards any request in progress
// @Tags Authentication
// @Produce json
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	clientID := middleware.ClientID(c)
	if clientID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Logout(c.Request.Context(), clientID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ForgotPassword godoc
// @Summary Forgot password
// @Description Simulates sending a reset link
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.ForgotPasswordRequest true "Forgot password"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validation.Error(err, "invalid payload"))
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	response.Accepted(c, gin.H{"message": ForgotPasswordMessage})
}

// Me godoc
// @Summary Get current session
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Access godoc
// @Summary Evaluate view access
// @Description Answers whether the caller may open a view and where to go otherwise
// @Tags Authentication
// @Produce json
// @Param view query string true "View path, e.g. /admin/requests"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/access [get]
func (h *AuthHandler) Access(c *gin.Context) {
	view := strings.TrimSpace(c.Query("view"))
	if view == "" {
		response.Error(c, appErrors.Validation("validation failed", map[string]string{"view": "view is required"}))
		return
	}
	level := service.ViewLevel(view)
	decision := service.Decide(level, sessionFromContext(c))
	response.JSON(c, http.StatusOK, gin.H{
		"view":     view,
		"level":    level.String(),
		"decision": decision,
	}, nil)
}
