package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/smarifurrahman/linguistic-horizons-server/handlers"
	"github.com/smarifurrahman/linguistic-horizons-server/middleware"
)

func AdminRoutes(app *fiber.App, h *handlers.Handler, g *middleware.Guards) {
	admin := app.Group("/admin", g.Authenticate(), g.RequireAdmin())

	admin.Post("/classes/recount", h.RecountEnrollments)
}
