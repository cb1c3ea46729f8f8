// Package api exposes the core services over HTTP with gin.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stockx-backend-go/internal/access"
	"stockx-backend-go/internal/config"
	"stockx-backend-go/internal/core"
	"stockx-backend-go/internal/middleware"
	"stockx-backend-go/internal/packages"
)

// SetupRoutes registers every route. Global middleware (logging, recovery,
// CORS) is expected to be on router already.
//
// Only the proxies named in TRUSTED_PROXIES may set the client IP through
// X-Forwarded-For; the per-IP rate limits depend on that.
func SetupRoutes(
	router *gin.Engine,
	appConfig *config.Config,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
	authService core.AuthService,
	profileService core.ProfileService,
	adminService core.AdminService,
	notificationService core.NotificationService,
	catalog *packages.Catalog,
) {
	authHandler := NewAuthHandler(authService, logger)
	sessionHandler := NewSessionHandler()
	userHandler := NewUserHandler(profileService, catalog, logger)
	adminHandler := NewAdminHandler(adminService, catalog, logger)
	relayHandler := NewRelayHandler(adminService, notificationService, logger)

	if err := router.SetTrustedProxies(appConfig.TrustedProxyList()); err != nil {
		logger.Fatal("Invalid TRUSTED_PROXIES", zap.Error(err))
	}

	limiter := middleware.RateLimit(middleware.NewIPRateLimiter(appConfig.AuthRateLimit, appConfig.AuthRateBurst))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	// Flat relay endpoints.
	relay := router.Group("/api")
	{
		relay.POST("/notify-admin", limiter, relayHandler.NotifyAdmin)
		relay.POST("/delete-user", authMW.VerifyToken(), authMW.LoadSession(), relayHandler.DeleteUser)
	}

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/signup", limiter, authHandler.SignUp)
			authGroup.POST("/signin", limiter, authHandler.SignIn)
			authGroup.POST("/federated", limiter, authHandler.FederatedSignIn)
			authGroup.POST("/password-reset", limiter, authHandler.SendPasswordReset)
			authGroup.POST("/password-reset/confirm", limiter, authHandler.ConfirmPasswordReset)
			authGroup.POST("/signout", authMW.VerifyToken(), authHandler.SignOut)
		}

		sessionGroup := apiV1.Group("/session", authMW.OptionalToken(), authMW.LoadSession())
		{
			sessionGroup.GET("", sessionHandler.GetSession)
			sessionGroup.GET("/gate", sessionHandler.EvaluateGate)
		}

		apiV1.GET("/users/me", authMW.VerifyToken(), authMW.RequireGate(access.GateBasic), userHandler.GetCurrentUserProfile)

		adminGroup := apiV1.Group("/admin", authMW.VerifyToken(), authMW.RequireGate(access.GateAdmin))
		{
			adminGroup.GET("/users", adminHandler.ListUsers)
			adminGroup.POST("/users/:uid/approve", adminHandler.ApproveUser)
			adminGroup.POST("/users/:uid/reject", adminHandler.RejectUser)
			adminGroup.POST("/users/:uid/suspend", adminHandler.SuspendUser)
			adminGroup.PUT("/users/:uid", adminHandler.EditUser)
			adminGroup.DELETE("/users/:uid", adminHandler.DeleteUser)
			adminGroup.GET("/packages", adminHandler.ListPackages)
		}
	}

	logger.Info("Routes registered")
}
