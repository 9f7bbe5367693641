package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/classflow/classflow-api/api/swagger"
	"github.com/classflow/classflow-api/internal/handler"
	"github.com/classflow/classflow-api/internal/middleware"
	"github.com/classflow/classflow-api/internal/models"
	"github.com/classflow/classflow-api/internal/repository"
	"github.com/classflow/classflow-api/internal/service"
	"github.com/classflow/classflow-api/pkg/cache"
	"github.com/classflow/classflow-api/pkg/config"
	"github.com/classflow/classflow-api/pkg/database"
	"github.com/classflow/classflow-api/pkg/jobs"
	"github.com/classflow/classflow-api/pkg/logger"
	"github.com/classflow/classflow-api/pkg/metrics"
	corsmiddleware "github.com/classflow/classflow-api/pkg/middleware/cors"
	reqidmiddleware "github.com/classflow/classflow-api/pkg/middleware/requestid"
)

// @title ClassFlow API
// @version 1.0.0
// @description Lesson-to-session assignment engine for class schedules
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
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Timeline.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, timeline caching disabled", "error", err)
			redisClient = nil
		}
	}

	classRepo := repository.NewClassRepository(db)
	lessonRepo := repository.NewClassLessonRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	definitionRepo := repository.NewLessonDefinitionRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	m := metrics.New()
	validate := validator.New()

	assignmentSvc := service.NewAssignmentService(classRepo, lessonRepo, sessionRepo, cacheRepo, m, logr,
		service.AssignmentConfig{TimelineCacheTTL: cfg.Timeline.CacheTTL})
	rebalanceSvc := service.NewRebalanceService(definitionRepo, classRepo, lessonRepo, assignmentSvc, m, logr)

	queueCfg := jobs.QueueConfig{
		Workers:    cfg.AutoAssign.QueueWorkers,
		BufferSize: cfg.AutoAssign.QueueBufferSize,
		MaxRetries: cfg.AutoAssign.QueueMaxRetries,
		RetryDelay: cfg.AutoAssign.QueueRetryDelay,
		Logger:     logr,
	}
	autoAssignQueue := jobs.NewQueue("auto-assign", func(ctx context.Context, job jobs.Job) error {
		classID, ok := job.Payload.(string)
		if !ok {
			return fmt.Errorf("job %s: unexpected payload %T", job.ID, job.Payload)
		}
		_, err := assignmentSvc.AutoAssignClass(ctx, classID)
		return err
	}, queueCfg)
	rebalanceQueue := jobs.NewQueue("rebalance", func(ctx context.Context, job jobs.Job) error {
		blockID, ok := job.Payload.(string)
		if !ok {
			return fmt.Errorf("job %s: unexpected payload %T", job.ID, job.Payload)
		}
		_, err := rebalanceSvc.SyncClassesForBlockTemplate(ctx, blockID)
		return err
	}, queueCfg)

	dispatcher := service.NewDispatcher(autoAssignQueue, rebalanceQueue, logr)

	sessionSvc := service.NewSessionService(classRepo, sessionRepo, lessonRepo, dispatcher, cacheRepo, validate, logr,
		service.SessionConfig{MaxGenerateSpan: cfg.Sessions.MaxGenerateSpan})
	lessonSvc := service.NewLessonService(classRepo, lessonRepo, definitionRepo, dispatcher, cacheRepo, validate, logr)
	curriculumSvc := service.NewCurriculumService(blockRepo, definitionRepo, dispatcher, validate, logr)

	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	lessonHandler := handler.NewLessonHandler(lessonSvc)
	curriculumHandler := handler.NewCurriculumHandler(curriculumSvc, rebalanceSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(m.GinMiddleware())

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

	r.GET("/metrics", gin.WrapH(m.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT.Secret))

	staff := api.Group("")
	staff.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleCoach))
	{
		staff.GET("/blocks", curriculumHandler.ListBlocks)
		staff.POST("/blocks", curriculumHandler.CreateBlock)
		staff.GET("/blocks/:id", curriculumHandler.GetBlock)
		staff.PUT("/blocks/:id", curriculumHandler.UpdateBlock)
		staff.DELETE("/blocks/:id", curriculumHandler.DeleteBlock)
		staff.POST("/blocks/:id/rebalance", curriculumHandler.Rebalance)

		staff.POST("/lesson-definitions", curriculumHandler.CreateDefinition)
		staff.PUT("/lesson-definitions/:id", curriculumHandler.UpdateDefinition)
		staff.DELETE("/lesson-definitions/:id", curriculumHandler.DeleteDefinition)

		staff.POST("/class-blocks", lessonHandler.InstantiateBlock)
		staff.DELETE("/class-blocks/:id", lessonHandler.DeleteBlock)
		staff.POST("/lessons", lessonHandler.CreateAdHoc)
		staff.POST("/lessons/from-definition", lessonHandler.CreateFromDefinition)
		staff.PATCH("/lessons/:id", lessonHandler.UpdateContent)
		staff.DELETE("/lessons/:id", lessonHandler.Delete)
		staff.PUT("/lessons/:id/session", assignmentHandler.AssignLesson)

		staff.POST("/sessions/generate", sessionHandler.Generate)
		staff.PATCH("/sessions/:id/status", sessionHandler.UpdateStatus)
		staff.PATCH("/sessions/:id/schedule", sessionHandler.Reschedule)
		staff.PATCH("/sessions/:id/substitute", sessionHandler.AssignSubstitute)

		staff.POST("/classes/:id/auto-assign", assignmentHandler.AutoAssign)
	}

	// Coders may read their class's calendar and curriculum views.
	api.GET("/class-blocks/:id/lessons", lessonHandler.ListByClassBlock)
	api.GET("/classes/:id/sessions", sessionHandler.ListByClass)
	api.GET("/classes/:id/timeline", assignmentHandler.Timeline)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	autoAssignQueue.Start(ctx)
	rebalanceQueue.Start(ctx)
	defer autoAssignQueue.Stop()
	defer rebalanceQueue.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
