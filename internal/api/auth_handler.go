package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stockx-backend-go/internal/core"
	"stockx-backend-go/internal/middleware"
	"stockx-backend-go/internal/models"
)

const msgInvalidBody = "Invalid request body"

// AuthHandler serves the password and federated auth endpoints.
type AuthHandler struct {
	authService core.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as core.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: as, logger: logger}
}

// SignUp handles POST /api/v1/auth/signup. The new account starts pending.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgInvalidBody)
		return
	}
	profile, message, err := h.authService.SignUp(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.logger.Info("Account created", zap.String("uid", profile.UID))
	c.JSON(http.StatusCreated, okMessage(message, profile))
}

// SignIn handles POST /api/v1/auth/signin.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgInvalidBody)
		return
	}
	result, err := h.authService.SignIn(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ok(result))
}

// FederatedSignIn handles POST /api/v1/auth/federated with the ID token from a
// Google or Apple popup. A first sign-in registers a pending account and is
// answered 403 with the signup message.
func (h *AuthHandler) FederatedSignIn(c *gin.Context) {
	var req models.FederatedSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgInvalidBody)
		return
	}
	result, err := h.authService.SignInWithIdentity(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ok(result))
}

// SignOut handles POST /api/v1/auth/signout and revokes the caller's refresh tokens.
func (h *AuthHandler) SignOut(c *gin.Context) {
	uid := c.GetString(middleware.ContextUserID)
	if err := h.authService.SignOut(c.Request.Context(), uid); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, okMessage("Signed out", nil))
}

// SendPasswordReset handles POST /api/v1/auth/password-reset.
func (h *AuthHandler) SendPasswordReset(c *gin.Context) {
	var req models.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgInvalidBody)
		return
	}
	if err := h.authService.SendPasswordReset(c.Request.Context(), req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, okMessage("Password reset email sent. Please check your inbox.", nil))
}

// ConfirmPasswordReset handles POST /api/v1/auth/password-reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req models.ConfirmPasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgInvalidBody)
		return
	}
	if err := h.authService.ConfirmPasswordReset(c.Request.Context(), req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, okMessage("Password has been reset. You can now sign in.", nil))
}
