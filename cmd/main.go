package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/streamhub/accounts/config"
	"github.com/streamhub/accounts/internal/handler"
	"github.com/streamhub/accounts/internal/middleware"
	"github.com/streamhub/accounts/internal/repository"
	"github.com/streamhub/accounts/internal/router"
	"github.com/streamhub/accounts/internal/service"
	"github.com/streamhub/accounts/pkg/database"
	"github.com/streamhub/accounts/pkg/logger"
	"github.com/streamhub/accounts/pkg/mediastore"
	"github.com/streamhub/accounts/pkg/redisclient"
	"github.com/streamhub/accounts/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
	)

	dbConfig := database.DefaultConfig()
	dbConfig.Host = config.Database.Host
	dbConfig.Port = config.Database.Port
	dbConfig.User = config.Database.User
	dbConfig.Password = config.Database.Password
	dbConfig.Database = config.Database.Name
	dbConfig.SSLMode = config.Database.SSLMode

	db, err := database.NewPostgresDB(dbConfig)
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	redisClient, err := redisclient.NewClient(config)
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	mediaClient, err := mediastore.New(&config.Media)
	if err != nil {
		logger.GetLogger().Fatal("Failed to create media store client", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := mediaClient.EnsureBucket(ctx); err != nil {
		logger.GetLogger().Warn("Failed to ensure media bucket", zap.Error(err))
	}
	cancel()

	if err := validation.RegisterCustomValidators(); err != nil {
		logger.GetLogger().Fatal("Failed to register validators", zap.Error(err))
	}

	// Repositories and services
	userRepo := repository.NewUserRepository(db)
	tokenService := service.NewTokenService(&config.JWT)
	userService := service.NewUserService(userRepo, mediaClient, tokenService)

	// Handlers
	authHandler := handler.NewAuthHandler(userService, config)
	userHandler := handler.NewUserHandler(userService, config)
	healthHandler := handler.NewHealthHandler(db, redisClient, mediaClient)

	// Middleware
	jwtMiddleware := middleware.NewJWTMiddleware(tokenService, userRepo)

	r := router.NewRouter(
		authHandler,
		userHandler,
		healthHandler,

		jwtMiddleware,
		redisClient,
		config,
	).SetupRoutes()

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
			zap.String("host", "0.0.0.0"),
		)
		if err := r.Run(":" + config.App.Port); err != nil {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")
}
