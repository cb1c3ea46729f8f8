package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stockx-backend-go/internal/api"
	"stockx-backend-go/internal/config"
	"stockx-backend-go/internal/core"
	"stockx-backend-go/internal/db"
	"stockx-backend-go/internal/identity"
	"stockx-backend-go/internal/middleware"
	"stockx-backend-go/internal/packages"
	"stockx-backend-go/pkg/cache"
	"stockx-backend-go/pkg/mailer"
	"stockx-backend-go/pkg/messagequeue"
)

func main() {
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	logger, err := newLogger(appConfig)
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	clients, err := db.InitFirebase(ctx, appConfig, logger)
	if err != nil {
		logger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
	}

	catalog, err := packages.Load(appConfig.PackagesFile)
	if err != nil {
		logger.Fatal("CRITICAL_ERROR: Failed to load package catalog", zap.Error(err))
	}

	queue, topic, err := newQueue(appConfig)
	if err != nil {
		logger.Fatal("CRITICAL_ERROR: Failed to initialize message queue", zap.Error(err), zap.String("driver", appConfig.QueueDriver))
	}
	logger.Info("Message queue ready", zap.String("driver", appConfig.QueueDriver), zap.String("topic", topic))

	adminCache := newCache(ctx, appConfig, logger)

	idp, err := identity.NewFirebaseProvider(ctx, appConfig.FirebaseWebAPIKey, clients.Auth, logger)
	if err != nil {
		logger.Fatal("CRITICAL_ERROR: Failed to initialize identity provider", zap.Error(err))
	}

	// --- Repositories and services ---
	profileRepo := db.NewFirestoreProfileRepository(clients.Firestore)
	auditService := core.NewAuditService(db.NewFirestoreAuditRepository(clients.Firestore))
	validator := core.NewInputValidator(appConfig.DefaultPhoneRegion)

	smtpMailer := mailer.New(mailer.Config{
		Host:     appConfig.SMTPHost,
		Port:     appConfig.SMTPPort,
		Username: appConfig.SMTPUser,
		Password: appConfig.SMTPPassword,
		From:     appConfig.EmailFrom,
	})
	notificationService := core.NewNotificationService(queue, smtpMailer, profileRepo, adminCache, core.NotificationConfig{
		AppURL:         appConfig.AppURL,
		Topic:          topic,
		CacheTTL:       appConfig.AdminEmailCacheTTL,
		EnqueueTimeout: appConfig.QueuePublishTimeout,
	}, logger)
	profileService := core.NewProfileService(profileRepo, auditService, logger)
	authService := core.NewAuthService(idp, profileRepo, profileService, notificationService, validator, logger)
	adminService := core.NewAdminService(profileRepo, profileService, idp, catalog, auditService, notificationService, validator, logger)
	logger.Info("Core services initialized")

	// --- HTTP ---
	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig))
		logger.Info("CORS Middleware enabled", zap.String("clientURL", appConfig.ClientURL))
	} else {
		logger.Warn("CORS Middleware SKIPPED: CLIENT_URL is not configured")
	}

	authMW := middleware.NewAuthMiddleware(idp, profileService, logger)
	api.SetupRoutes(router, appConfig, logger, authMW, authService, profileService, adminService, notificationService, catalog)

	workerCtx, stopWorker := context.WithCancel(ctx)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := notificationService.RunWorker(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Notification worker stopped", zap.Error(err))
		}
	}()

	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting HTTP server", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Queued notifications are drained by Close before the worker is stopped.
	if err := queue.Close(); err != nil {
		logger.Warn("Failed to close message queue", zap.Error(err))
	}
	stopWorker()
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		logger.Warn("Notification worker did not stop in time")
	}

	if closer, ok := adminCache.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Warn("Failed to close cache", zap.Error(err))
		}
	}
	if err := clients.Close(); err != nil {
		logger.Warn("Failed to close Firestore client", zap.Error(err))
	}
	logger.Info("Server exiting gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsRelease() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// newQueue picks the queue driver and the topic notifications travel on.
func newQueue(cfg *config.Config) (messagequeue.MessageQueue, string, error) {
	switch strings.ToLower(cfg.QueueDriver) {
	case config.QueueDriverRabbitMQ:
		q, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: cfg.RabbitMQURL})
		return q, core.NotifyTopic, err
	case config.QueueDriverKafka:
		q, err := messagequeue.NewKafkaQueue(messagequeue.NewKafkaQueueConfig{
			Brokers:  cfg.KafkaBrokerList(),
			GroupID:  cfg.KafkaGroupID,
			Username: cfg.KafkaUsername,
			Password: cfg.KafkaPassword,
		})
		return q, cfg.KafkaTopic, err
	case config.QueueDriverMemory, "":
		return messagequeue.NewMemoryQueue(messagequeue.NewMemoryQueueConfig{}), core.NotifyTopic, nil
	}
	return nil, "", fmt.Errorf("unknown QUEUE_DRIVER %q", cfg.QueueDriver)
}

// newCache uses Redis when REDIS_ADDR is set and falls back to process memory.
func newCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryCache()
	}
	rc, err := cache.NewRedisCache(ctx, cache.NewRedisCacheConfig{
		Address:  cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory admin email cache", zap.Error(err))
		return cache.NewMemoryCache()
	}
	return rc
}
