package routes

import (
	_ "classifieds_backend/docs"
	"classifieds_backend/internal/handlers"
	"classifieds_backend/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes регистрирует все HTTP маршруты.
// API живет в корне: /advertisement, /login, /user, лента - /ws/advertisements.
func RegisterRoutes(ginRouter *gin.Engine, appHandlers *handlers.AppHandlers) {
	api := ginRouter.Group("")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.UserHandler.RegisterRoutes(api)
		appHandlers.AdvertisementHandler.RegisterRoutes(api)
		appHandlers.AdvertisementImageHandler.RegisterRoutes(api)
		appHandlers.FeedHandler.RegisterRoutes(api)
	}

	ginRouter.GET("/health", appHandlers.HealthHandler.Health)
	ginRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))
	ginRouter.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	logger.Info("HTTP routes registered", "routes", len(ginRouter.Routes()))
}
