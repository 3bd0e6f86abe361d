package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medray-api/config"
	deliveryHttp "medray-api/internal/delivery/http"
	"medray-api/internal/delivery/http/handler"
	"medray-api/internal/delivery/http/middleware"
	"medray-api/internal/infrastructure/cache"
	"medray-api/internal/infrastructure/classifier"
	"medray-api/internal/infrastructure/database"
	"medray-api/internal/infrastructure/mail"
	"medray-api/internal/infrastructure/storage"
	"medray-api/internal/jobs"
	"medray-api/internal/repository"
	"medray-api/internal/service"
	"medray-api/internal/usecase"
	"medray-api/pkg/jwt"
	"medray-api/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Scheduler   *jobs.Scheduler
}

// New creates a new App instance with all dependencies initialized
func New(cfg *config.Config) (*App, error) {
	log := setupLogger(cfg.App)
	app := &App{Config: cfg, Log: log}

	db, err := database.NewPostgresConnection(cfg.DB, cfg.App, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	redisClient, err := cache.NewRedisClient(cfg.Redis, log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	if err := app.initialize(); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(cfg config.AppConfig) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// initialize wires repositories, usecases, handlers and jobs
func (app *App) initialize() error {
	cfg, log, db, redisClient := app.Config, app.Log, app.DB, app.RedisClient

	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()

	blobStore, err := storage.NewLocalStore(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("failed to prepare image storage: %w", err)
	}

	allocator, err := service.NewSlotAllocator(cfg.Location(), cfg.Schedule.DayStart, cfg.Schedule.DayEnd, cfg.Schedule.SlotStep)
	if err != nil {
		return fmt.Errorf("failed to configure clinic hours: %w", err)
	}

	xrayClassifier := classifier.NewClient(cfg.Classifier, log)
	mailer := mail.NewMailer(cfg.Mail, log)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	rayRepo := repository.NewRayRepository(db)
	noteRepo := repository.NewMedicalNoteRepository(db)
	statusRepo := repository.NewPatientStatusRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	auditService := service.NewAuditService(log, auditLogRepo)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(log, userRepo, auditService, jwtService, redisClient, mailer, cfg.PasswordReset.CodeTTL)
	userUsecase := usecase.NewUserUsecase(log, userRepo, appointmentRepo, rayRepo, auditService, cfg.Location())
	appointmentUsecase := usecase.NewAppointmentUsecase(log, userRepo, appointmentRepo, auditService, allocator)
	rayUsecase := usecase.NewRayUsecase(log, rayRepo, blobStore, xrayClassifier, auditService, cfg.Storage.MaxImageBytes)
	doctorUsecase := usecase.NewDoctorUsecase(log, userRepo, rayRepo, noteRepo, statusRepo, blobStore, auditService)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(db, redisClient)
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	userHandler := handler.NewUserHandler(userUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	rayHandler := handler.NewRayHandler(rayUsecase, customValidator, cfg.Storage.MaxImageBytes)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(log, jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigin)

	router := deliveryHttp.NewRouter(log, healthHandler, authHandler, userHandler, appointmentHandler, rayHandler, doctorHandler, authMiddleware, corsMiddleware)

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		// Uploads wait for the classifier before responding.
		WriteTimeout: cfg.Classifier.Timeout + cfg.Classifier.ProbeTimeout + 30*time.Second,
	}

	// Initialize background jobs
	app.Scheduler = jobs.NewScheduler(log, cfg.Location())
	if cfg.Jobs.RayRetryEnabled {
		retryJob := jobs.NewRayRetryJob(log, rayRepo, rayUsecase, redisClient, cfg.Jobs.RayRetryMaxAttempts, cfg.Jobs.RayRetryGrace)
		if err := app.Scheduler.Register(cfg.Jobs.RayRetrySpec, retryJob); err != nil {
			return err
		}
	}

	return nil
}

// Run starts the HTTP server and the job scheduler, then blocks until shutdown
func (app *App) Run() error {
	app.Scheduler.Start()

	serverErr := make(chan error, 1)
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-quit:
	case runErr = <-serverErr:
		app.Log.Errorf("Failed to start server: %v", runErr)
	}

	app.shutdown()
	return runErr
}

func (app *App) shutdown() {
	app.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Scheduler.Stop(ctx)
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	if app.DB != nil {
		if sqlDB, err := app.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		_ = app.RedisClient.Close()
	}
}
