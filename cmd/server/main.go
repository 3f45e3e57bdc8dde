package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/donpedro/internal/config"
	"github.com/example/donpedro/internal/database"
	"github.com/example/donpedro/internal/models"
	"github.com/example/donpedro/internal/routes"
	"github.com/example/donpedro/internal/services"
	"github.com/example/donpedro/internal/utils"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	seedPrincipal(cfg.AdminUsername, cfg.AdminPassword, models.RoleAdmin)
	seedPrincipal(cfg.StaffUsername, cfg.StaffPassword, models.RoleStaff)

	app := fiber.New(fiber.Config{
		AppName: "Don Pedro Coupons",
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	routes.Register(app, db, cfg)

	services.StartOTPSessionSweeper(db, time.Minute)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}

func seedPrincipal(username, password, role string) {
	if username == "" || password == "" {
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash seed password for %s: %v", username, err)
	}

	if err := database.SeedPrincipal(database.DB(), username, hash, role); err != nil {
		log.Fatalf("failed to seed %s principal: %v", role, err)
	}
}
