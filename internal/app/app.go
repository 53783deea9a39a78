package app

import (
	"assessment_backend/internal/config"
	"assessment_backend/internal/controller"
	"assessment_backend/internal/repository"
	"assessment_backend/internal/service"
	"assessment_backend/internal/util"
	"assessment_backend/pkg/configwatcher"
	"assessment_backend/pkg/database"
	"assessment_backend/pkg/logger"
	"assessment_backend/pkg/monitoring"
	"assessment_backend/pkg/security"
	"assessment_backend/pkg/tracing"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	mu              sync.RWMutex
	config          *config.Config
	configCallbacks []func(*config.Config)

	services    *services
	rateLimiter *security.RateLimiter
	tracer      *sdktrace.TracerProvider
}

type repositories struct {
	assessment *repository.AssessmentRepository
	attempt    *repository.AttemptRepository
	guard      repository.SubmitGuard
}

type services struct {
	storage    *service.StorageService
	assessment *service.AssessmentService
	attempt    *service.AttemptService
}

type controllers struct {
	assessment *controller.AssessmentController
	attempt    *controller.AttemptController
	grade      *controller.GradeController
	health     *controller.HealthController
}

// Config returns the configuration currently in effect.
func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

// applyConfig installs cfg and notifies every registered callback.
func (a *App) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	a.config = cfg
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) jwtConfig() config.JWTConfig {
	return a.Config().JWT
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	repos := &repositories{
		assessment: repository.NewAssessmentRepository(db),
		attempt:    repository.NewAttemptRepository(db),
	}
	if rdb != nil {
		repos.guard = repository.NewRedisSubmitGuard(rdb, cfg.Assessment.SubmitLockTTL)
	} else {
		// 单实例部署时用进程内锁
		repos.guard = repository.NewMemorySubmitGuard()
	}
	return repos
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.assessment = service.NewAssessmentService(repos.assessment)
	s.attempt = service.NewAttemptService(repos.assessment, repos.attempt, repos.guard, s.storage, cfg.Assessment)

	a.RegisterConfigCallback(func(c *config.Config) {
		s.attempt.ApplyConfig(c.Assessment)
	})

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		assessment: controller.NewAssessmentController(s.assessment),
		attempt:    controller.NewAttemptController(s.attempt),
		grade:      controller.NewGradeController(s.attempt),
		health:     controller.NewHealthController(db, rdb),
	}
}

func rateWindow(cfg *config.Config) time.Duration {
	return time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	a.rateLimiter = security.NewRateLimiter(cfg.RateLimit.MaxRequests, rateWindow(cfg))
	a.RegisterConfigCallback(func(c *config.Config) {
		a.rateLimiter.Update(c.RateLimit.MaxRequests, rateWindow(c))
	})
	router.Use(a.rateLimiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// sweepExpired closes attempts whose deadline passed while no client was
// connected. The interval is reread after every pass so a reload applies.
func (a *App) sweepExpired(ctx context.Context) {
	timer := time.NewTimer(a.Config().Assessment.ExpirySweepInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		n, err := a.services.attempt.ExpireOverdue(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.Error("expiry sweep failed", zap.Error(err))
		} else if n > 0 {
			logger.Log.Info("expiry sweep closed attempts", zap.Int("count", n))
		}

		timer.Reset(a.Config().Assessment.ExpirySweepInterval)
	}
}

func (a *App) startBackgroundTasks(ctx context.Context) {
	go a.sweepExpired(ctx)

	path := config.Path()
	if path == "" {
		return
	}
	go func() {
		err := configwatcher.Watch(ctx, path, configwatcher.DefaultDebounce, config.Reload, a.applyConfig)
		if err != nil {
			logger.Log.Error("config watcher stopped", zap.Error(err))
		}
	}()
}

// NewApp wires storage, services and routes. It returns an error instead of
// exiting so main decides how to report it.
func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	migrate := cfg.Server.Mode == gin.DebugMode || cfg.ForceMigrate
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Error("Failed to initialize database", zap.Error(err))
		return nil, err
	}

	app := &App{
		config: cfg,
		DB:     db,
	}

	if cfg.MigrateOnly {
		return app, nil
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Error("Failed to initialize redis", zap.Error(err))
		return nil, err
	}
	app.Redis = rdb
	if rdb != nil {
		logger.Log.Info("Redis connection established", zap.String("addr", rdb.Options().Addr))
	}

	repos := app.initRepositories(db, rdb, cfg)
	app.services = app.initServices(repos, cfg)
	controllers := app.initControllers(app.services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("assessment-engine", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
			return nil, err
		}
		app.tracer = tp
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Mode == gin.DebugMode {
		router.Use(gin.Logger())
	}
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app, nil
}

func (a *App) Run() error {
	cfg := a.Config()
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.startBackgroundTasks(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	a.Close(shutdownCtx)
	logger.Log.Info("Server exiting")
	return nil
}

// Close releases the tracer, redis and database handles.
func (a *App) Close(ctx context.Context) {
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	logger.Sync()
}
