package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/smarifurrahman/linguistic-horizons-server/handlers"
)

func AuthRoutes(app *fiber.App, h *handlers.Handler) {
	app.Post("/jwt", h.IssueToken)
}
