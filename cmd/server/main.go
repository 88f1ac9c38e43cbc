// Package main is the entry point for the API server. It loads
// configuration, connects PostgreSQL and Redis, wires the routes, and
// starts the HTTP listener.
package main

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"

	"tutorlink/internal/config"
	"tutorlink/internal/observability"
	"tutorlink/internal/repositories"
	"tutorlink/internal/routes"
)

func main() {
	config.LoadEnv()

	logger, err := observability.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := repositories.InitDB(); err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	sqlDB, err := repositories.DB.DB()
	if err != nil {
		logger.Fatal("failed to get database instance", zap.Error(err))
	}
	if err := sqlDB.Ping(); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}
	logger.Info("connected to postgres")

	if repositories.CacheService != nil {
		if err := repositories.CacheService.FlushAll(context.Background()); err != nil {
			logger.Warn("failed to flush cache on startup", zap.Error(err))
		}
	}

	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("failed to close database connection", zap.Error(err))
		}
		if repositories.CacheService != nil {
			if err := repositories.CacheService.Close(); err != nil {
				logger.Warn("failed to close redis connection", zap.Error(err))
			}
		}
	}()

	app := fiber.New(fiber.Config{
		AppName: "tutorlink",
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.GetEnv("CORS_ORIGIN", "http://localhost:5173"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))

	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	for _, path := range []string{"/api/register", "/api/login"} {
		app.Use(path, limiter.New(limiter.Config{
			Max:        5,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Too many requests. Please try again later.",
				})
			},
		}))
	}

	routes.SetupRoutes(app, repositories.DB, logger)

	addr := ":" + config.GetEnv("PORT", "3000")
	logger.Info("listening", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
