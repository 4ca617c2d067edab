package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/streamhub/accounts/config"
	"github.com/streamhub/accounts/internal/handler"
	"github.com/streamhub/accounts/internal/middleware"
	"github.com/streamhub/accounts/pkg/redisclient"
)

type Router struct {
	authHandler   *handler.AuthHandler
	userHandler   *handler.UserHandler
	healthHandler *handler.HealthHandler

	jwtMw  *middleware.JWTMiddleware
	redis  *redisclient.Client
	config *config.Config
}

func NewRouter(
	auth *handler.AuthHandler,
	user *handler.UserHandler,
	health *handler.HealthHandler,

	jwtMw *middleware.JWTMiddleware,
	redis *redisclient.Client,
	config *config.Config,
) *Router {
	return &Router{
		authHandler:   auth,
		userHandler:   user,
		healthHandler: health,

		jwtMw:  jwtMw,
		redis:  redis,
		config: config,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	if r.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware(!r.config.IsProduction()))
	router.Use(middleware.RequestContextMiddleware())
	router.Use(middleware.CORS())

	api := router.Group("/api")
	{
		api.GET("/health", r.healthHandler.Health)

		v1 := api.Group("/v1")
		{
			v1.Use(middleware.RateLimit(
				r.redis,
				r.config.RateLimit.Request,
				time.Duration(r.config.RateLimit.Duration)*time.Second,
			))

			r.userRoutes(v1)
		}
	}

	return router
}
