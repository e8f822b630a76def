package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ekuznetsov/campus-market-backend/internal/config"
	"github.com/ekuznetsov/campus-market-backend/internal/http/handlers"
	"github.com/ekuznetsov/campus-market-backend/internal/http/middleware"
	"github.com/ekuznetsov/campus-market-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	listingHandler *handlers.ListingHandler,
	adminHandler *handlers.AdminActionHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	// Публичные маршруты
	api.GET("/listings", listingHandler.ListListings)
	api.GET("/listings/:id", middleware.UUIDValidator("id"), listingHandler.GetListing)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.POST("/listings", listingHandler.CreateListing)
		protected.POST("/listings/:id/photos", middleware.UUIDValidator("id"), listingHandler.UploadPhoto)
	}

	// Маршруты модерации: только администраторы
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager))
	admin.Use(middleware.AdminOnly())
	admin.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		admin.POST("/strikes", adminHandler.CreateStrike)
		admin.POST("/bans", adminHandler.CreateBan)
		admin.GET("/bans", adminHandler.ListBans)
		admin.DELETE("/listings/:id", middleware.UUIDValidator("id"), adminHandler.RemoveListing)

		admin.GET("/actions", adminHandler.SearchActions)
		admin.GET("/actions/mine", adminHandler.MyActions)
		admin.GET("/actions/:id", middleware.UUIDValidator("id"), adminHandler.GetAction)
		admin.DELETE("/actions/:id", middleware.UUIDValidator("id"), adminHandler.RevokeAction)

		admin.GET("/users/:id/actions", middleware.UUIDValidator("id"), adminHandler.UserHistory)
		admin.GET("/listings/:id/actions", middleware.UUIDValidator("id"), adminHandler.ListingHistory)
	}

	return r
}
