package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/smarifurrahman/linguistic-horizons-server/handlers"
)

func PublicRoutes(app *fiber.App, h *handlers.Handler) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Linguistic Horizons is running")
	})
	app.Get("/health", h.Health)
}
