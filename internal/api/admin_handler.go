package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stockx-backend-go/internal/core"
	"stockx-backend-go/internal/middleware"
	"stockx-backend-go/internal/models"
	"stockx-backend-go/internal/packages"
)

// AdminHandler serves the admin dashboard endpoints. Every route sits behind the admin gate.
type AdminHandler struct {
	adminService core.AdminService
	catalog      *packages.Catalog
	logger       *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(as core.AdminService, catalog *packages.Catalog, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{adminService: as, catalog: catalog, logger: logger}
}

// ListUsers handles GET /api/v1/admin/users?status=&q=&page=. Each row carries
// the display label of its package.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	filter := models.ListUsersFilter{
		Status: strings.ToLower(c.DefaultQuery("status", core.StatusFilterAll)),
		Search: c.Query("q"),
		Page:   page,
	}
	result, err := h.adminService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ok(newUserListResponse(result, h.catalog)))
}

// ApproveUser handles POST /api/v1/admin/users/:uid/approve. The body is
// optional since admin targets need no package.
func (h *AdminHandler) ApproveUser(c *gin.Context) {
	var req models.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, msgInvalidBody)
		return
	}
	profile, err := h.adminService.Approve(c.Request.Context(), middleware.ProfileFrom(c), c.Param("uid"), req.Package)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, okMessage("User approved", profile))
}

// RejectUser handles POST /api/v1/admin/users/:uid/reject.
func (h *AdminHandler) RejectUser(c *gin.Context) {
	profile, err := h.adminService.Reject(c.Request.Context(), middleware.ProfileFrom(c), c.Param("uid"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, okMessage("User rejected", profile))
}

// SuspendUser handles POST /api/v1/admin/users/:uid/suspend.
func (h *AdminHandler) SuspendUser(c *gin.Context) {
	profile, err := h.adminService.Suspend(c.Request.Context(), middleware.ProfileFrom(c), c.Param("uid"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, okMessage("User suspended", profile))
}

// EditUser handles PUT /api/v1/admin/users/:uid.
func (h *AdminHandler) EditUser(c *gin.Context) {
	var req models.EditProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgInvalidBody)
		return
	}
	profile, err := h.adminService.Edit(c.Request.Context(), middleware.ProfileFrom(c), c.Param("uid"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, okMessage("User updated", profile))
}

// DeleteUser handles DELETE /api/v1/admin/users/:uid.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.adminService.Delete(c.Request.Context(), middleware.ProfileFrom(c), c.Param("uid")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, okMessage(msgUserDeleted, nil))
}

// ListPackages handles GET /api/v1/admin/packages.
func (h *AdminHandler) ListPackages(c *gin.Context) {
	c.JSON(http.StatusOK, ok(h.catalog.All()))
}
