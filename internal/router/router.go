// Package router wires the HTTP routes to their handlers and
// middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/peakform/trainer-crm/internal/config"
	"github.com/peakform/trainer-crm/internal/handler"
	"github.com/peakform/trainer-crm/internal/middleware"
	"github.com/peakform/trainer-crm/internal/model"
)

// Deps carries everything route registration needs.
type Deps struct {
	JWTSecret string
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client

	Auth          *handler.AuthHandler
	Clients       *handler.ClientHandler
	Sessions      *handler.SessionHandler
	Availability  *handler.AvailabilityHandler
	Bookings      *handler.BookingHandler
	PublicBooking *handler.PublicBookingHandler
	Settings      *handler.SettingsHandler
	Programs      *handler.ProgramHandler
	Progress      *handler.ProgressHandler
	Payments      *handler.PaymentHandler
	Dashboard     *handler.DashboardHandler
	Messages      *handler.MessagingHandler
	Chat          *handler.ChatHandler
}

// Register attaches every route to the Echo instance.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	api := e.Group("/api/v1")

	// Auth does not require a token except /auth/me.
	auth := api.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)
	auth.GET("/me", d.Auth.Me, middleware.JWTAuth(d.JWTSecret))

	// Public booking pages: reads are response-cached, writes and the
	// availability probe are rate limited per IP.
	cache := middleware.NewRedisCache(d.Cache, d.Redis)
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis)
	pub := api.Group("/public/booking")
	pub.GET("/:slug", d.PublicBooking.Page, cache)
	pub.GET("/:slug/availability/:date", d.PublicBooking.DayAvailability, limit)
	pub.POST("/:slug", d.PublicBooking.Create, limit)

	// Stripe calls this with its own signature scheme, not a JWT.
	api.POST("/payments/webhook", d.Payments.Webhook)

	// Everything below requires an authenticated trainer.
	g := api.Group("",
		middleware.JWTAuth(d.JWTSecret),
		middleware.RequireRole(model.RoleTrainer, model.RoleAdmin),
	)

	g.GET("/dashboard", d.Dashboard.Get)

	g.GET("/clients", d.Clients.List)
	g.POST("/clients", d.Clients.Create)
	g.GET("/clients/:id", d.Clients.Get)
	g.PATCH("/clients/:id", d.Clients.Patch)
	g.DELETE("/clients/:id", d.Clients.Delete)

	// Static session routes precede /:id so echo matches them first.
	g.GET("/sessions/stats", d.Sessions.Stats)
	g.GET("/sessions/availability", d.Sessions.Availability)
	g.GET("/sessions", d.Sessions.List)
	g.POST("/sessions", d.Sessions.Create)
	g.GET("/sessions/:id", d.Sessions.Get)
	g.PATCH("/sessions/:id", d.Sessions.Patch)
	g.DELETE("/sessions/:id", d.Sessions.Delete)
	g.POST("/sessions/:id/complete", d.Sessions.Complete)

	g.GET("/booking/availability", d.Availability.ListSlots)
	g.POST("/booking/availability", d.Availability.CreateSlot)
	g.PATCH("/booking/availability/:id", d.Availability.PatchSlot)
	g.DELETE("/booking/availability/:id", d.Availability.DeleteSlot)
	g.GET("/booking/exceptions", d.Availability.ListExceptions)
	g.POST("/booking/exceptions", d.Availability.CreateException)
	g.DELETE("/booking/exceptions/:id", d.Availability.DeleteException)
	g.GET("/booking/check-availability/:date", d.Availability.CheckAvailability)

	g.GET("/booking/bookings", d.Bookings.List)
	g.POST("/booking/bookings", d.Bookings.Create)
	g.PATCH("/booking/bookings/:id/status", d.Bookings.UpdateStatus)

	g.GET("/booking/settings", d.Settings.Get)
	g.PATCH("/booking/settings", d.Settings.Patch)

	g.GET("/programs", d.Programs.List)
	g.POST("/programs", d.Programs.Create)
	g.POST("/programs/generate", d.Programs.Generate)
	g.GET("/programs/:id", d.Programs.Get)
	g.PATCH("/programs/:id", d.Programs.Patch)
	g.DELETE("/programs/:id", d.Programs.Delete)
	g.POST("/programs/:id/exercises", d.Programs.AddExercise)
	g.DELETE("/programs/:id/exercises/:exercise_id", d.Programs.DeleteExercise)

	g.GET("/progress/entries", d.Progress.List)
	g.POST("/progress/entries", d.Progress.Create)
	g.PATCH("/progress/entries/:id", d.Progress.Patch)
	g.DELETE("/progress/entries/:id", d.Progress.Delete)
	g.GET("/progress/photos", d.Progress.Photos)
	g.POST("/progress/photos", d.Progress.AddPhoto)
	g.GET("/progress/stats/:client_id", d.Progress.Stats)

	g.POST("/payments/intent", d.Payments.CreateIntent)
	g.GET("/payments", d.Payments.List)

	g.POST("/chat", d.Chat.Ask)
	g.GET("/chat/suggestions", d.Chat.Suggestions)

	g.POST("/messages/email", d.Messages.Email)
	g.POST("/messages/sms", d.Messages.SMS)
}
