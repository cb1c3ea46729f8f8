package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stockx-backend-go/internal/core"
	"stockx-backend-go/internal/middleware"
	"stockx-backend-go/internal/models"
)

const (
	msgUserDeleted       = "User deleted successfully from both Firestore and Firebase Auth"
	msgNotifyFailed      = "Failed to send notification"
	msgActorMismatch     = "Admin UID does not match the authenticated user"
	msgActorUnauthorized = "Unauthorized: Only superadmins can delete users"
)

// RelayHandler serves the flat /api endpoints kept for server-side callers.
type RelayHandler struct {
	adminService        core.AdminService
	notificationService core.NotificationService
	logger              *zap.Logger
}

// NewRelayHandler creates a new RelayHandler.
func NewRelayHandler(as core.AdminService, ns core.NotificationService, logger *zap.Logger) *RelayHandler {
	return &RelayHandler{adminService: as, notificationService: ns, logger: logger}
}

// DeleteUser handles POST /api/delete-user {uid, adminUid}.
func (h *RelayHandler) DeleteUser(c *gin.Context) {
	var req models.DeleteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.UID) == "" || strings.TrimSpace(req.AdminUID) == "" {
		badRequest(c, core.MissingFieldsMessage)
		return
	}
	if req.AdminUID != c.GetString(middleware.ContextUserID) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: msgActorMismatch})
		return
	}
	actor := middleware.ProfileFrom(c)
	if actor == nil {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: msgActorUnauthorized})
		return
	}

	if err := h.adminService.Delete(c.Request.Context(), actor, req.UID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, RelayResponse{Success: true, Message: msgUserDeleted})
}

// NotifyAdmin handles POST /api/notify-admin and sends the signup email synchronously.
func (h *RelayHandler) NotifyAdmin(c *gin.Context) {
	var payload notifyAdminPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, core.MissingFieldsMessage)
		return
	}
	req, tsOK := payload.request()
	if !tsOK {
		h.logger.Debug("Ignoring unreadable notification timestamp", zap.String("uid", req.UID), zap.Any("timestamp", payload.Timestamp))
	}
	result, err := h.notificationService.NotifyAdmins(c.Request.Context(), req)
	if err != nil {
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			badRequest(c, ve.Message)
			return
		}
		h.logger.Error("Admin notification failed", zap.String("uid", req.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgNotifyFailed})
		return
	}
	c.JSON(http.StatusOK, RelayResponse{Success: true, Message: result.Message})
}
