package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/docflow-api/api/swagger"
	"github.com/noah-isme/docflow-api/internal/handler"
	"github.com/noah-isme/docflow-api/internal/middleware"
	"github.com/noah-isme/docflow-api/internal/models"
	"github.com/noah-isme/docflow-api/internal/repository"
	"github.com/noah-isme/docflow-api/internal/service"
	"github.com/noah-isme/docflow-api/pkg/cache"
	"github.com/noah-isme/docflow-api/pkg/config"
	"github.com/noah-isme/docflow-api/pkg/database"
	"github.com/noah-isme/docflow-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/docflow-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/docflow-api/pkg/middleware/requestid"
)

// @title DocFlow API
// @version 0.1.0
// @description Realm-scoped document review workflow service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Documents.CacheTTL, logr, cfg.Documents.CacheEnabled && redisClient != nil)

	documentRepo := repository.NewDocumentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	authSvc := service.NewAuthService(cfg.JWT)
	identitySvc := service.NewIdentityService(cfg.Identity, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, auditRepo, logr)
	documentSvc := service.NewDocumentService(documentRepo, identitySvc, notificationSvc, auditRepo, cacheSvc, validator.New(), logr)
	exportSvc := service.NewExportService(documentSvc, logr, nil, nil)

	documentHandler := handler.NewDocumentHandler(documentSvc, exportSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, redisClient)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))

	realmDocs := api.Group("/realms/:realm_id/documents")
	{
		realmDocs.POST("", middleware.RequireRealmRole(models.RoleUser, models.RoleAdmin), documentHandler.Create)
		realmDocs.GET("", documentHandler.List)
	}

	docs := api.Group("/documents")
	{
		docs.GET("/:id", documentHandler.Get)
		docs.PATCH("/:id", documentHandler.Update)
		docs.POST("/:id/submit-for-review", documentHandler.SubmitForReview)
		docs.POST("/:id/review-action", documentHandler.Review)
		docs.GET("/:id/review-history", documentHandler.History)
		docs.GET("/:id/review-history/export",
			middleware.Audit(auditRepo, models.AuditActionDocumentExport, "document"),
			documentHandler.ExportHistory)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("", notificationHandler.List)
		notifications.PATCH("/:id", notificationHandler.MarkRead)
	}

	api.GET("/metrics/summary", metricsHandler.Summary)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
