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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/logistik-admin-api/api/swagger"
	"github.com/noah-isme/logistik-admin-api/internal/handler"
	"github.com/noah-isme/logistik-admin-api/internal/middleware"
	"github.com/noah-isme/logistik-admin-api/internal/models"
	"github.com/noah-isme/logistik-admin-api/internal/repository"
	"github.com/noah-isme/logistik-admin-api/internal/service"
	"github.com/noah-isme/logistik-admin-api/pkg/cache"
	"github.com/noah-isme/logistik-admin-api/pkg/config"
	"github.com/noah-isme/logistik-admin-api/pkg/database"
	"github.com/noah-isme/logistik-admin-api/pkg/export"
	"github.com/noah-isme/logistik-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/logistik-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/logistik-admin-api/pkg/middleware/requestid"
)

// @title Logistik Admin API
// @version 1.0.0
// @description Employee roster and weekly attendance backend
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

	db, err := database.NewPostgres(context.Background(), cfg.Database, cfg.Timezone)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Attendance.CacheEnabled {
		redisClient, err = cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, attendance cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	loc := cfg.Location()
	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	attendanceRepo := repository.NewEmployeeAttendanceRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Attendance.CacheTTL, logr, redisClient != nil)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	periodSvc := service.NewPeriodService(periodRepo, validate, logr, loc)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, periodSvc, db, cacheSvc, metricsSvc, validate, logr, service.AttendanceConfig{
		CacheTTL:     cfg.Attendance.CacheTTL,
		MaxRangeDays: cfg.Attendance.MaxRangeDays,
		Location:     loc,
	})
	employeeSvc := service.NewEmployeeService(employeeRepo, cacheSvc, validate, logr, loc)
	userSvc := service.NewUserService(userRepo, validate, logr)
	exportSvc := service.NewExportService(attendanceSvc, validate, logr, export.NewCSVExporter(), export.NewPDFExporter(), export.NewXLSXExporter())

	authHandler := handler.NewAuthHandler(authSvc)
	employeeHandler := handler.NewEmployeeHandler(employeeSvc)
	userHandler := handler.NewUserHandler(userSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, exportSvc)
	periodHandler := handler.NewPeriodHandler(periodSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, map[string]handler.Pinger{
		"database": db,
		"cache":    handler.PingerFunc(cacheSvc.Ping),
	}, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc, "/metrics", "/health", "/ready"))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	admins := []models.UserRole{models.RoleSuperAdmin, models.RoleOwner}
	editors := append(append([]models.UserRole{}, admins...), models.RoleWarehouseHead)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(authSvc))
	{
		secured.GET("/auth/current", authHandler.Current)
		secured.PUT("/auth/password", authHandler.ChangePassword)

		secured.GET("/employees", employeeHandler.List)
		secured.GET("/employees/:id", employeeHandler.Get)
		secured.POST("/employees", middleware.RequireRoles(admins...), employeeHandler.Create)
		secured.PUT("/employees/:id", middleware.RequireRoles(admins...), employeeHandler.Update)
		secured.DELETE("/employees/:id", middleware.RequireRoles(admins...), employeeHandler.Delete)

		users := secured.Group("/users", middleware.RequireRoles(admins...))
		users.GET("", userHandler.List)
		users.GET("/:id", userHandler.Get)
		users.POST("", userHandler.Create)
		users.PUT("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)

		secured.GET("/attendance", attendanceHandler.Weekly)
		secured.POST("/attendance/batch", middleware.RequireRoles(editors...), attendanceHandler.Batch)
		secured.GET("/attendance/export", attendanceHandler.Export)

		secured.GET("/periods", periodHandler.Get)
		secured.POST("/periods/close", middleware.RequireRoles(admins...), periodHandler.Close)

		secured.GET("/system/metrics", middleware.RequireRoles(admins...), metricsHandler.Snapshot)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
