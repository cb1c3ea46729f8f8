package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stockx-backend-go/internal/core"
	"stockx-backend-go/internal/middleware"
	"stockx-backend-go/internal/packages"
)

// UserHandler handles API endpoints for the signed-in user.
type UserHandler struct {
	profileService core.ProfileService
	catalog        *packages.Catalog
	logger         *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(ps core.ProfileService, catalog *packages.Catalog, logger *zap.Logger) *UserHandler {
	return &UserHandler{profileService: ps, catalog: catalog, logger: logger}
}

// GetCurrentUserProfile handles GET /api/v1/users/me. The basic gate has
// already loaded the profile with expiry applied.
func (h *UserHandler) GetCurrentUserProfile(c *gin.Context) {
	profile := middleware.ProfileFrom(c)
	if profile == nil {
		respondError(c, h.logger, core.ErrProfileNotFound)
		return
	}
	c.JSON(http.StatusOK, ok(MeResponse{
		Profile:      profile,
		Remaining:    h.profileService.Remaining(profile),
		PackageLabel: packageLabel(h.catalog, profile.Package),
	}))
}
