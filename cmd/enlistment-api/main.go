package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/enlistment-api/api/swagger"
	"github.com/noah-isme/enlistment-api/internal/handler"
	"github.com/noah-isme/enlistment-api/internal/middleware"
	"github.com/noah-isme/enlistment-api/internal/models"
	"github.com/noah-isme/enlistment-api/internal/repository"
	"github.com/noah-isme/enlistment-api/internal/service"
	"github.com/noah-isme/enlistment-api/pkg/cache"
	"github.com/noah-isme/enlistment-api/pkg/config"
	"github.com/noah-isme/enlistment-api/pkg/database"
	"github.com/noah-isme/enlistment-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/enlistment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/enlistment-api/pkg/middleware/requestid"
)

// @title Enlistment API
// @version 1.0.0
// @description Enrollment, waitlist and cashiering service
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The snapshot cache degrades to a pass-through without Redis.
		logr.Sugar().Warnw("redis unavailable, snapshot cache disabled", "error", err)
		redisClient = nil
	}

	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	enlistmentRepo := repository.NewEnlistmentRepository(db)
	waitlistRepo := repository.NewWaitlistRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	subjectLogRepo := repository.NewSubjectLogRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	txRunner := repository.NewTxRunner(db, logr)

	validate := validator.New()
	checker := service.NewScheduleChecker()
	metricsSvc := service.NewMetricsService()

	financialSvc := service.NewFinancialService(
		studentRepo, enlistmentRepo, scheduleRepo, paymentRepo, cacheRepo,
		checker, cfg.Financial, cfg.Enlistment.MaxUnits, logr)

	waitlistSvc := service.NewWaitlistService(
		txRunner, waitlistRepo, sectionRepo, enlistmentRepo, courseRepo,
		studentRepo, scheduleRepo, scheduleRepo, subjectLogRepo, financialSvc,
		checker, metricsSvc, cfg.Enlistment.MaxUnits, logr)

	enlistmentSvc := service.NewEnlistmentService(
		txRunner, studentRepo, sectionRepo, courseRepo, enlistmentRepo,
		scheduleRepo, scheduleRepo, paymentRepo, waitlistSvc, subjectLogRepo,
		financialSvc, checker, cfg.Enlistment.MaxUnits, cfg.Financial.Downpayment,
		validate, logr)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, subjectLogRepo, financialSvc, logr)
	courseSvc := service.NewCourseService(courseRepo, scheduleRepo, checker, logr)
	dashboardSvc := service.NewDashboardService(studentRepo, subjectLogRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	enlistmentHandler := handler.NewEnlistmentHandler(enlistmentSvc, waitlistSvc, metricsSvc)
	paymentHandler := handler.NewPaymentHandler(enlistmentSvc, metricsSvc)
	adminHandler := handler.NewAdminHandler(dashboardSvc, courseSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("", middleware.JWT(authSvc))

	students := secured.Group("/students",
		middleware.RequireRoles(models.RoleAdmin, models.RoleFaculty, models.RoleCashier))
	students.GET("", studentHandler.Search)
	students.GET("/:studentNumber/account", studentHandler.Account)
	students.GET("/:studentNumber/subject-logs", studentHandler.SubjectHistory)

	enlistments := secured.Group("/enlistments",
		middleware.RequireRoles(models.RoleAdmin, models.RoleFaculty))
	enlistments.POST("",
		middleware.Audit(userRepo, "ENLIST", "enlistments"),
		enlistmentHandler.Enlist)
	enlistments.POST("/bulk-remove",
		middleware.Audit(userRepo, "BULK_REMOVE", "enlistments"),
		enlistmentHandler.RemoveBulk)

	secured.POST("/waitlist/:id/cancel",
		middleware.RequireRoles(models.RoleAdmin, models.RoleFaculty),
		middleware.Audit(userRepo, "WAITLIST_CANCEL", "waitlist"),
		enlistmentHandler.CancelWaitlist)

	secured.POST("/payments/walk-in",
		middleware.RequireRoles(models.RoleAdmin, models.RoleCashier),
		middleware.Audit(userRepo, "WALK_IN_PAYMENT", "payments"),
		paymentHandler.WalkIn)

	admin := secured.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/dashboard", adminHandler.Dashboard)
	admin.GET("/courses", adminHandler.Courses)
	admin.GET("/subject-logs", adminHandler.SubjectLogs)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("forced shutdown", "error", err)
	}
	logr.Sugar().Infow("server stopped")
}
