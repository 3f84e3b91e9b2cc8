package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// BaseRoutes: health & root, tanpa auth.
func BaseRoutes(app *fiber.App, db *gorm.DB) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "schoolku-backend",
			"status":  "ok",
		})
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		status := "ok"
		dbStatus := "ok"
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			status = "degraded"
			dbStatus = "unreachable"
		}
		return c.JSON(fiber.Map{
			"status": status,
			"db":     dbStatus,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
}
