// Package routes defines the API routing configuration. It wires
// repositories, services, and handlers and applies the auth and role
// middleware per route group.
package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tutorlink/internal/config"
	"tutorlink/internal/events"
	"tutorlink/internal/handlers"
	"tutorlink/internal/middleware"
	"tutorlink/internal/models"
	"tutorlink/internal/repositories"
	"tutorlink/internal/services/auth"
	"tutorlink/internal/services/booking"
	"tutorlink/internal/services/chat"
	"tutorlink/internal/services/kyc"
	"tutorlink/internal/services/notification"
	"tutorlink/internal/services/payment"
	"tutorlink/internal/services/tutor"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB, logger *zap.Logger) {
	// Repositories
	userRepo := repositories.NewUserRepository(db, repositories.CacheService)
	bookingRepo := repositories.NewBookingRepository(db)
	kycRepo := repositories.NewKYCRepository(db)
	tutorRepo := repositories.NewTutorRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	messageRepo := repositories.NewMessageRepository(db)

	// Event dispatcher and its subscribers
	dispatcher := events.NewInMemoryDispatcher()

	smtpCfg := config.LoadSMTP()
	notificationService := notification.NewService(
		dispatcher,
		userRepo,
		notification.NewSMTPMailer(smtpCfg),
		logger.Named("notification"),
		smtpCfg,
	)
	notificationService.RegisterHandlers()

	paymentService := payment.NewService(paymentRepo, tutorRepo, dispatcher, logger.Named("payment"))
	paymentService.RegisterHandlers()

	// Services
	authService := auth.NewService(userRepo, logger.Named("auth"))
	bookingService := booking.NewService(bookingRepo, userRepo, repositories.CacheService, dispatcher, logger.Named("booking"))
	kycService := kyc.NewService(kycRepo, userRepo, repositories.CacheService, dispatcher, logger.Named("kyc"))
	tutorService := tutor.NewService(tutorRepo, repositories.CacheService, logger.Named("tutor"))
	hub := chat.NewHub(logger.Named("chat"))
	chatService := chat.NewService(messageRepo, bookingRepo, hub)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	kycHandler := handlers.NewKYCHandler(kycService)
	tutorHandler := handlers.NewTutorHandler(tutorService)
	chatHandler := handlers.NewChatHandler(chatService, hub, authService, logger.Named("chat"))

	authMiddleware := middleware.NewAuthMiddleware(authService, logger.Named("authmw"))

	api := app.Group("/api")

	// Public endpoints
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/refresh", authHandler.Refresh)
	api.Get("/health", handlers.HealthCheck)

	// Everything registered below requires a valid token.
	api.Use(authMiddleware.Handler)
	protected := api

	protected.Post("/logout", authHandler.Logout)

	// Tutor directory (any authenticated user)
	protected.Get("/tutors", tutorHandler.ListApproved)
	protected.Get("/tutors/:id", tutorHandler.GetProfile)

	// Tutor self-service
	tutorGroup := protected.Group("/tutor", middleware.RequireRole(models.RoleTutor))
	tutorGroup.Put("/profile", tutorHandler.UpsertProfile)
	tutorGroup.Get("/courses", tutorHandler.ListCourses)
	tutorGroup.Post("/courses", tutorHandler.CreateCourse)
	tutorGroup.Put("/courses/:id", tutorHandler.UpdateCourse)
	tutorGroup.Delete("/courses/:id", tutorHandler.DeleteCourse)

	// Bookings: the resource guard inside the service decides per record.
	protected.Post("/booking", middleware.RequireRole(models.RoleStudent), bookingHandler.Create)
	protected.Get("/booking/:id", bookingHandler.Get)
	protected.Patch("/booking/:id/status", bookingHandler.Transition)
	protected.Get("/bookings", bookingHandler.List)
	protected.Get("/session/upcoming", bookingHandler.Upcoming)

	// Booking chat
	protected.Get("/booking/:id/messages", chatHandler.History)
	protected.Post("/booking/:id/messages", chatHandler.Send)

	// KYC
	kycGroup := protected.Group("/kyc")
	kycGroup.Post("/upload", middleware.RequireRole(models.RoleTutor), kycHandler.Upload)
	kycGroup.Get("/status", middleware.RequireRole(models.RoleTutor), kycHandler.Status)
	kycGroup.Get("/pending", middleware.RequireAdmin(), kycHandler.ListPending)
	kycGroup.Patch("/approve/:id", middleware.RequireAdmin(), kycHandler.Approve)
	kycGroup.Patch("/reject/:id", middleware.RequireAdmin(), kycHandler.Reject)

	// Websocket chat rooms; token passed as query parameter.
	app.Use("/ws/booking/:id", chatHandler.Upgrade)
	app.Get("/ws/booking/:id", chatHandler.Socket())
}
