package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/smarifurrahman/linguistic-horizons-server/handlers"
	"github.com/smarifurrahman/linguistic-horizons-server/middleware"
)

func UploadRoutes(app *fiber.App, h *handlers.Handler, g *middleware.Guards) {
	uploads := app.Group("/uploads", g.Authenticate(), g.RequireInstructor())

	uploads.Get("/class-image/signature", h.ClassImageSignature)
}
