package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/content-review-api/api/swagger"
	"github.com/noah-isme/content-review-api/internal/handler"
	"github.com/noah-isme/content-review-api/internal/middleware"
	"github.com/noah-isme/content-review-api/internal/models"
	"github.com/noah-isme/content-review-api/internal/repository"
	"github.com/noah-isme/content-review-api/internal/service"
	"github.com/noah-isme/content-review-api/pkg/cache"
	"github.com/noah-isme/content-review-api/pkg/config"
	"github.com/noah-isme/content-review-api/pkg/database"
	"github.com/noah-isme/content-review-api/pkg/export"
	"github.com/noah-isme/content-review-api/pkg/logger"
	"github.com/noah-isme/content-review-api/pkg/mailer"
	corsmiddleware "github.com/noah-isme/content-review-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/content-review-api/pkg/middleware/requestid"
	"github.com/noah-isme/content-review-api/pkg/scheduler"
)

// @title Content Review API
// @version 1.0.0
// @description Review schedules, owner reminders and review reports for CMS pages
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, report cache and sweep lock disabled", zap.Error(err))
	} else {
		defer redisClient.Close() //nolint:errcheck
	}

	validate := validator.New()
	clock := service.SystemClock{}
	metricsSvc := service.NewMetricsService()

	pageRepo := repository.NewPageRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)
	logRepo := repository.NewReviewLogRepository(db)
	siteRepo := repository.NewSiteSettingsRepository(db)

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, "content-review:", logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Review.ReportCacheTTL, logr, true)
	}

	resolver := service.NewSettingsResolver(pageRepo, siteRepo, cfg.Review.MaxDepth)
	owners := service.NewOwnerResolver(groupRepo, userRepo)
	schedule := service.NewReviewScheduleService(pageRepo, resolver, owners, clock, logr)
	permissions := service.NewReviewPermissionService(resolver, owners, clock, nil)

	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
		Audience:          cfg.JWT.Audience,
	})
	reviewSvc := service.NewReviewService(pageRepo, userRepo, logRepo, pageRepo, resolver, owners, schedule, permissions, cacheSvc, validate, clock, logr)
	siteSvc := service.NewSiteSettingsService(siteRepo, owners, cacheSvc, validate, logr, service.SiteSettingsServiceConfig{AdminEmail: cfg.Review.AdminEmail})
	reportSvc := service.NewReportService(pageRepo, logRepo, userRepo, resolver, owners,
		export.NewCSVExporter(), export.NewPDFExporter(), cacheSvc, validate, clock, logr,
		service.ReportServiceConfig{CacheTTL: cfg.Review.ReportCacheTTL})

	notifier := service.NewEmailNotifier(mailer.NewSMTPMailer(cfg.SMTP, logr))
	notificationSvc := service.NewNotificationService(pageRepo, logRepo, siteRepo, schedule, permissions,
		service.NewEmailRenderer(cfg.Review.CMSBaseURL), notifier, mailer.NewAddressValidator(validate),
		metricsSvc, clock, service.NotificationConfig{AdminEmail: cfg.Review.AdminEmail}, logr)

	workerCfg := service.SweepWorkerConfig{LockTTL: cfg.Sweep.LockTTL, MaxRetries: cfg.Sweep.WorkerRetries, RetryDelay: cfg.Sweep.RetryDelay}
	var sweepWorker *service.SweepWorker
	if redisClient != nil {
		sweepWorker = service.NewSweepWorker(notificationSvc, cache.NewLocker(redisClient), cacheSvc, workerCfg, logr)
	} else {
		sweepWorker = service.NewSweepWorker(notificationSvc, nil, cacheSvc, workerCfg, logr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweepWorker.Start(ctx)
	defer sweepWorker.Stop()

	if cfg.Sweep.Enabled {
		sched := scheduler.New(scheduler.Config{Timezone: cfg.Sweep.Timezone, Logger: logr})
		err := sched.Add("review-sweep", cfg.Sweep.Cron, func() {
			if _, err := sweepWorker.Trigger("scheduler"); err != nil {
				logr.Error("failed to queue scheduled review sweep", zap.Error(err))
			}
		})
		if err != nil {
			logr.Fatal("failed to schedule review sweep", zap.Error(err))
		}
		sched.Start()
		defer sched.Stop()
		logr.Info("review sweep scheduled", zap.String("cron", cfg.Sweep.Cron), zap.Time("next", sched.Next("review-sweep")))
	}

	checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix, middleware.JWT(authSvc)), routeHandlers{
		review:  handler.NewReviewHandler(reviewSvc),
		site:    handler.NewSiteSettingsHandler(siteSvc),
		reports: handler.NewReportHandler(reportSvc),
		sweeps:  handler.NewSweepHandler(sweepWorker),
		audit:   logr.Named("audit"),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

type routeHandlers struct {
	review  *handler.ReviewHandler
	site    *handler.SiteSettingsHandler
	reports *handler.ReportHandler
	sweeps  *handler.SweepHandler
	audit   *zap.Logger
}

func registerRoutes(api *gin.RouterGroup, h routeHandlers) {
	admin := middleware.RequireRoles(models.RoleAdmin)
	editors := middleware.RequireRoles(models.RoleAdmin, models.RoleEditor)

	api.GET("/pages/:id/review", h.review.Status)
	api.POST("/pages/:id/review", middleware.Audit(h.audit, "review", "page"), h.review.Submit)
	api.GET("/pages/:id/review-settings", editors, h.review.GetSettings)
	api.PUT("/pages/:id/review-settings", admin, middleware.Audit(h.audit, "update", "page_review_settings"), h.review.UpdateSettings)
	api.GET("/review/schedule", h.review.Schedule)

	api.GET("/site/review-settings", editors, h.site.Get)
	api.PUT("/site/review-settings", admin, middleware.Audit(h.audit, "update", "site_review_settings"), h.site.Update)

	api.GET("/reports/due-for-review", editors, h.reports.DueForReview)
	api.GET("/reports/without-schedule", editors, h.reports.WithoutSchedule)

	api.POST("/sweeps", admin, middleware.Audit(h.audit, "trigger", "review_sweep"), h.sweeps.Trigger)
	api.GET("/sweeps/last", editors, h.sweeps.Last)
}
