package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/workhub/marketplace-backend/internal/config"
	"github.com/workhub/marketplace-backend/internal/http/handlers"
	"github.com/workhub/marketplace-backend/internal/http/middleware"
	"github.com/workhub/marketplace-backend/internal/models"
	"github.com/workhub/marketplace-backend/internal/service"
)

// SetupRouter собирает все маршруты приложения.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	freelancerHandler *handlers.FreelancerHandler,
	catalogHandler *handlers.CatalogHandler,
	adminHandler *handlers.AdminHandler,
	orderHandler *handlers.OrderHandler,
	fulfillmentHandler *handlers.FulfillmentHandler,
	mediaHandler *handlers.MediaHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	seedHandler *handlers.SeedHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.MetricsMiddleware())

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.StaticFS("/uploads", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	if seedHandler != nil && cfg.Env == "development" {
		api.POST("/dev/seed", seedHandler.Seed)
	}

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.GET("/me", authHandler.Me)
		protectedAuth.GET("/sessions", authHandler.ListSessions)
		protectedAuth.DELETE("/sessions/:id", middleware.UUIDValidator("id"), authHandler.DeleteSession)
		protectedAuth.DELETE("/sessions", authHandler.DeleteAllSessionsExcept)
	}

	// Публичный каталог
	api.GET("/catalog/freelancers", catalogHandler.Search)
	api.GET("/catalog/freelancers/:id", middleware.UUIDValidator("id"), catalogHandler.GetFreelancer)
	api.GET("/ws", wsHandler.Handle)

	// Кабинет фрилансера
	freelancer := api.Group("/freelancer")
	freelancer.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireRole(models.RoleFreelancer))
	{
		freelancer.GET("/profile", freelancerHandler.GetMyProfile)
		freelancer.PUT("/profile", freelancerHandler.UpdateMyProfile)
		freelancer.PUT("/requirements", freelancerHandler.UpdateRequirements)
		freelancer.GET("/plans", freelancerHandler.ListMyRatePlans)
		freelancer.PUT("/plans", freelancerHandler.UpsertRatePlan)
		freelancer.DELETE("/plans/:planType", freelancerHandler.DeleteRatePlan)

		freelancer.GET("/orders", fulfillmentHandler.List)
		freelancer.GET("/orders/:id", middleware.UUIDValidator("id"), fulfillmentHandler.Get)
		freelancer.POST("/orders/:id/accept", middleware.UUIDValidator("id"), fulfillmentHandler.Accept)
		freelancer.POST("/orders/:id/reject", middleware.UUIDValidator("id"), fulfillmentHandler.Reject)
		freelancer.POST("/orders/:id/deliver", middleware.UUIDValidator("id"), fulfillmentHandler.Deliver)
	}

	// Заказы клиента
	orders := api.Group("/orders")
	orders.Use(middleware.AuthMiddleware(tokenManager))
	{
		orders.POST("", orderHandler.Create)
		orders.GET("", orderHandler.List)
		orders.GET("/active/:freelancerId", middleware.UUIDValidator("freelancerId"), orderHandler.ActiveOrder)
		orders.GET("/:id", middleware.UUIDValidator("id"), orderHandler.Get)
		orders.POST("/:id/pay", middleware.UUIDValidator("id"), orderHandler.CapturePayment)
		orders.PUT("/:id/answers", middleware.UUIDValidator("id"), orderHandler.SubmitAnswers)
	}

	// Медиа
	media := api.Group("/media")
	media.Use(middleware.AuthMiddleware(tokenManager))
	{
		media.POST("/photos", mediaHandler.UploadPhoto)
		media.POST("/files", mediaHandler.UploadFile)
		media.DELETE("/:id", middleware.UUIDValidator("id"), mediaHandler.DeleteMedia)
	}

	// Уведомления
	notifications := api.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware(tokenManager))
	{
		notifications.GET("", notificationHandler.List)
		notifications.POST("/read-all", notificationHandler.MarkAllAsRead)
		notifications.POST("/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
	}

	// Модерация
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/freelancers", adminHandler.ListModeration)
		admin.POST("/freelancers/:id/approve", middleware.UUIDValidator("id"), adminHandler.Approve)
		admin.POST("/freelancers/:id/reject", middleware.UUIDValidator("id"), adminHandler.Reject)
	}

	return r
}
