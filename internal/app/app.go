package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classifieds_backend/internal/config"
	"classifieds_backend/internal/database"
	"classifieds_backend/internal/handlers"
	"classifieds_backend/internal/imageprocessor"
	"classifieds_backend/internal/logger"
	"classifieds_backend/internal/metrics"
	"classifieds_backend/internal/middleware"
	"classifieds_backend/internal/repositories"
	"classifieds_backend/internal/routes"
	"classifieds_backend/internal/services"
	"classifieds_backend/internal/storage"
	"classifieds_backend/internal/validator"
	"classifieds_backend/internal/workers"
	"classifieds_backend/pkg/apperrors"
	"classifieds_backend/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Run() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	logger.Init(cfg.Server.Env, cfg.Server.LogLevel)
	logger.Info("Logger initialized", "env", cfg.Server.Env)
	apperrors.SetDebug(cfg.IsDevelopment())

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	deps, err := NewDependencies(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize dependencies", "error", err)
	}
	serviceContainer := NewServiceContainer(cfg, deps)

	if err := seedFirstAdmin(gormDB, cfg, serviceContainer.UserService); err != nil {
		// без админа (при проблемах с БД) сервер не запускаем
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB, serviceContainer, deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go deps.Hub.Run(ctx)

	tokenWorker := workers.NewTokenCleanupWorker(gormDB, serviceContainer.AuthService, cfg.Workers.TokenCleanupSchedule)
	if err := tokenWorker.Start(ctx); err != nil {
		logger.Fatal("Failed to start token cleanup worker", "error", err)
	}

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(fmt.Sprintf("🚀 Server starting on %s", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	tokenWorker.Stop()

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Server stopped")
}

// Dependencies - инфраструктура вне БД: хранилище изображений и хаб живой ленты.
// Hub.Run запускает владелец (Run или тестовый сервер).
type Dependencies struct {
	Storage storage.Storage
	Images  *imageprocessor.Processor
	Hub     *ws.Hub
}

func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	store, err := storage.New(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("Image storage initialized", "type", cfg.Storage.Type)

	return &Dependencies{
		Storage: store,
		Images:  imageprocessor.NewProcessor(cfg.Images.Quality, cfg.Images.MaxWidth, cfg.Images.MaxHeight),
		Hub:     ws.NewHub(),
	}, nil
}

// NewServiceContainer собирает репозитории и сервисы по конфигу
func NewServiceContainer(cfg *config.Config, deps *Dependencies) *services.ServiceContainer {
	userRepo := repositories.NewUserRepository()
	tokenRepo := repositories.NewTokenRepository()
	adRepo := repositories.NewAdvertisementRepository()

	userService := services.NewUserService(userRepo, cfg.Auth.BcryptCost, cfg.Auth.AllowAnonymousAdmin,
		services.WithAdvertisementImages(adRepo, deps.Storage),
	)
	adService := services.NewAdvertisementService(adRepo,
		services.WithEventPublisher(deps.Hub),
		services.WithImageStorage(deps.Storage),
	)

	return &services.ServiceContainer{
		AuthService:               services.NewAuthService(userRepo, tokenRepo, cfg.TokenTTL()),
		UserService:               userService,
		AdvertisementService:      adService,
		AdvertisementImageService: services.NewAdvertisementImageService(adRepo, deps.Storage, deps.Images, deps.Hub),
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB, serviceContainer *services.ServiceContainer, deps *Dependencies) *gin.Engine {
	metrics.Register()

	appHandlers := initializeHandlers(cfg, serviceContainer, deps)
	ginRouter := initializeGinRouter(cfg, gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter
}

func initializeHandlers(cfg *config.Config, services *services.ServiceContainer, deps *Dependencies) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	imageHandler := handlers.NewAdvertisementImageHandler(baseHandler, services.AdvertisementImageService, services.AuthService, cfg.MaxImageBytes())

	return &handlers.AppHandlers{
		AuthHandler:               handlers.NewAuthHandler(baseHandler, services.AuthService),
		UserHandler:               handlers.NewUserHandler(baseHandler, services.UserService, services.AuthService),
		AdvertisementHandler:      handlers.NewAdvertisementHandler(baseHandler, services.AdvertisementService, services.AuthService),
		AdvertisementImageHandler: imageHandler,
		FeedHandler:               ws.NewHandler(deps.Hub, cfg.CORS.AllowedOrigins),
		HealthHandler:             handlers.NewHealthHandler(baseHandler),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if !cfg.IsDevelopment() && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(cors.New(corsConfig(cfg)))
	router.Use(middleware.DBMiddleware(db))
	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	// без X-Token браузерный клиент не сможет авторизоваться
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", middleware.TokenHeader, middleware.RequestIDHeader}
	corsCfg.ExposeHeaders = []string{middleware.RequestIDHeader}

	origins := cfg.CORS.AllowedOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	return corsCfg
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config, userService services.UserService) error {
	name := cfg.FirstAdmin.Name
	password := cfg.FirstAdmin.Password

	if name == "" || password == "" {
		logger.Warn("FIRST_ADMIN_NAME or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	created, err := userService.EnsureAdmin(db, name, password)
	if err != nil {
		return fmt.Errorf("failed to create first admin: %w", err)
	}
	if created {
		logger.Info("✅ Successfully created first admin user", "name", name)
	} else {
		logger.Info("Admin user already exists. Skipping creation.", "name", name)
	}
	return nil
}
