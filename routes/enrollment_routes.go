package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/smarifurrahman/linguistic-horizons-server/handlers"
	"github.com/smarifurrahman/linguistic-horizons-server/middleware"
)

// EnrollmentRoutes carries the cart and roster mutations. ?email= must be the
// caller's own.
func EnrollmentRoutes(app *fiber.App, h *handlers.Handler, g *middleware.Guards) {
	classes := app.Group("/classes")

	classes.Patch("/selected/:id", g.Authenticate(), g.RequireSelf(), h.SelectClass)
	classes.Patch("/selected/delete/:id", g.Authenticate(), g.RequireSelf(), h.DeselectClass)
	classes.Patch("/enrolled/:id", g.Authenticate(), g.RequireSelf(), h.EnrollClass)
	classes.Patch("/enrolled/delete/:id", g.Authenticate(), g.RequireSelf(), h.UnenrollClass)
}
