package routes

import (
	"github.com/chachabrian/tourbook-backend/internal/handlers"
	"github.com/chachabrian/tourbook-backend/internal/middleware"
	"github.com/chachabrian/tourbook-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	DB                    *gorm.DB
	Redis                 *redis.Client
	JWTSecret             string
	Bookings              *services.BookingService
	Auth                  *services.AuthService
	Notifications         handlers.TestEmailSender
	Storage               services.Storage
	Activity              services.ActivityRecorder
	Hub                   *services.Hub
	ActivityRetentionDays int
}

func SetupRoutes(r *gin.Engine, d Deps) {
	handlers.RegisterValidators()

	requireAuth := middleware.AuthMiddleware(d.JWTSecret, d.DB)
	optionalAuth := middleware.OptionalAuth(d.JWTSecret, d.DB)
	admin := []gin.HandlerFunc{requireAuth, middleware.RequireAdmin()}
	superAdmin := []gin.HandlerFunc{requireAuth, middleware.RequireSuperAdmin()}

	api := r.Group("/api")
	api.GET("/health", handlers.Health(d.DB, d.Redis, d.Hub))

	/*=============================================================================
	| Auth
	===============================================================================*/
	auth := api.Group("/auth")
	{
		auth.POST("/admin/login", handlers.AdminLogin(d.Auth))
		auth.POST("/forgot-password", handlers.ForgotPassword(d.Auth))
		auth.POST("/reset-password", handlers.ResetPassword(d.Auth))
		auth.GET("/verify-reset-token/:token", handlers.VerifyResetToken(d.Auth))

		authed := auth.Group("", admin...)
		authed.GET("/me", handlers.Me(d.DB))
		authed.POST("/change-password", handlers.ChangePassword(d.Auth))
	}

	/*=============================================================================
	| Bookings
	===============================================================================*/
	bookings := api.Group("/bookings")
	{
		bookings.POST("", handlers.CreateDirectBooking(d.Bookings))
		bookings.GET("/lookup", handlers.LookupBooking(d.Bookings))

		managed := bookings.Group("", admin...)
		managed.GET("", handlers.ListBookings(d.Bookings))
		managed.GET("/stats", handlers.GetBookingStats(d.Bookings))
		managed.GET("/:id", handlers.GetBooking(d.Bookings))
		managed.PUT("/:id/status", handlers.UpdateBookingStatus(d.Bookings))
		managed.POST("/:id/notes", handlers.AddBookingNote(d.Bookings))
	}

	/*=============================================================================
	| Catalog
	===============================================================================*/
	tours := api.Group("/tours")
	{
		tours.GET("", optionalAuth, handlers.ListTours(d.DB))
		tours.GET("/:id", optionalAuth, handlers.GetTour(d.DB))

		managed := tours.Group("", admin...)
		managed.POST("", handlers.CreateTour(d.DB, d.Storage, d.Activity))
		managed.PUT("/:id", handlers.UpdateTour(d.DB, d.Storage, d.Activity))
		managed.DELETE("/:id", handlers.DeleteTour(d.DB, d.Storage, d.Activity))
	}

	travelServices := api.Group("/services")
	{
		travelServices.GET("", optionalAuth, handlers.ListServices(d.DB))
		travelServices.GET("/:id", optionalAuth, handlers.GetService(d.DB))

		managed := travelServices.Group("", admin...)
		managed.POST("", handlers.CreateService(d.DB, d.Storage, d.Activity))
		managed.PUT("/:id", handlers.UpdateService(d.DB, d.Storage, d.Activity))
		managed.DELETE("/:id", handlers.DeleteService(d.DB, d.Storage, d.Activity))
	}

	categories := api.Group("/categories")
	{
		categories.GET("", optionalAuth, handlers.ListCategories(d.DB))
		categories.GET("/:id", optionalAuth, handlers.GetCategory(d.DB))

		managed := categories.Group("", admin...)
		managed.POST("", handlers.CreateCategory(d.DB, d.Activity))
		managed.PUT("/:id", handlers.UpdateCategory(d.DB, d.Activity))
		managed.DELETE("/:id", handlers.DeleteCategory(d.DB, d.Activity))
	}

	/*=============================================================================
	| Site content
	===============================================================================*/
	content := api.Group("/content")
	{
		content.GET("", optionalAuth, handlers.ListContent(d.DB))
		content.GET("/:key", optionalAuth, handlers.GetContent(d.DB))

		managed := content.Group("", admin...)
		managed.POST("", handlers.CreateContent(d.DB, d.Storage, d.Activity))
		managed.PUT("/:key", handlers.UpdateContent(d.DB, d.Storage, d.Activity))
		managed.DELETE("/:key", handlers.DeleteContent(d.DB, d.Storage, d.Activity))
	}

	socialLinks := api.Group("/social-links")
	{
		socialLinks.GET("", optionalAuth, handlers.ListSocialLinks(d.DB))

		managed := socialLinks.Group("", admin...)
		managed.POST("", handlers.CreateSocialLink(d.DB, d.Activity))
		managed.PUT("/reorder", handlers.ReorderSocialLinks(d.DB, d.Activity))
		managed.PUT("/:id", handlers.UpdateSocialLink(d.DB, d.Activity))
		managed.DELETE("/:id", handlers.DeleteSocialLink(d.DB, d.Activity))
	}

	emailSettings := api.Group("/email-settings", admin...)
	{
		emailSettings.GET("", handlers.ListEmailSettings(d.DB))
		emailSettings.POST("/test", handlers.SendTestEmail(d.Notifications))
		emailSettings.GET("/:key", handlers.GetEmailSetting(d.DB))
		emailSettings.PUT("/:key", handlers.UpsertEmailSetting(d.DB, d.Activity))
		emailSettings.DELETE("/:key", handlers.DeleteEmailSetting(d.DB, d.Activity))
	}

	/*=============================================================================
	| Administration
	===============================================================================*/
	admins := api.Group("/admin-management", superAdmin...)
	{
		admins.GET("", handlers.ListAdmins(d.DB))
		admins.POST("", handlers.CreateAdmin(d.DB, d.Activity))
		admins.GET("/:id", handlers.GetAdmin(d.DB))
		admins.PUT("/:id", handlers.UpdateAdmin(d.DB, d.Activity))
		admins.DELETE("/:id", handlers.DeleteAdmin(d.DB, d.Activity))
	}

	activity := api.Group("/activity-logs")
	{
		activity.GET("", append(admin, handlers.ListActivityLogs(d.DB))...)
		activity.GET("/stats", append(admin, handlers.GetActivityStats(d.DB))...)
		activity.POST("/cleanup", append(superAdmin, handlers.CleanupActivityLogs(d.DB, d.ActivityRetentionDays, d.Activity))...)
	}

	api.GET("/ws", append(admin, handlers.WebSocketHandler(d.Hub))...)
}
