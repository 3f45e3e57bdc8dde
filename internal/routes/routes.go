package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/donpedro/internal/config"
	"github.com/example/donpedro/internal/handlers"
	"github.com/example/donpedro/internal/middleware"
	"github.com/example/donpedro/internal/models"
	"github.com/example/donpedro/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	twilioService := services.NewTwilioService(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)

	registrationHandler := handlers.NewRegistrationHandler(db, cfg, twilioService, telegramService)
	authHandler := handlers.NewAuthHandler(db, cfg)
	staffHandler := handlers.NewStaffHandler(db, telegramService)
	adminHandler := handlers.NewAdminHandler(db)

	// Public registration flow
	api := app.Group("/api")
	api.Post("/send-otp", registrationHandler.SendOTP)
	api.Post("/check-otp", registrationHandler.CheckOTP)

	// Staff/admin login
	app.Post("/auth/login", authHandler.Login)

	// Scanner endpoint: staff and admins may validate coupons
	staff := app.Group("/staff",
		middleware.AuthMiddleware(cfg, db),
		middleware.RequireRole(models.RoleStaff, models.RoleAdmin),
	)
	staff.Post("/validate", staffHandler.Validate)

	// Reporting: admins only
	admin := app.Group("/admin",
		middleware.AuthMiddleware(cfg, db),
		middleware.RequireRole(models.RoleAdmin),
	)
	admin.Get("/leads", adminHandler.ListLeads)
	admin.Get("/leads/export", adminHandler.ExportLeads)
	admin.Get("/stats", adminHandler.Stats)
}
