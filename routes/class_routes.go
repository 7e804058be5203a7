package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/smarifurrahman/linguistic-horizons-server/handlers"
	"github.com/smarifurrahman/linguistic-horizons-server/middleware"
	"github.com/smarifurrahman/linguistic-horizons-server/models"
)

func ClassRoutes(app *fiber.App, h *handlers.Handler, g *middleware.Guards) {
	app.Post("/selected-classes", h.SelectedClasses)
	app.Get("/enrolled-classes", h.EnrolledClasses)
	app.Post("/addClass", g.Authenticate(), g.RequireInstructor(), h.AddClass)

	classes := app.Group("/classes")
	classes.Get("", h.ListClasses)
	classes.Get("/:id", h.GetClass)
	classes.Get("/:id/roster", g.Authenticate(), g.RequireRole(models.RoleInstructor, models.RoleAdmin), h.ExportRoster)

	classes.Patch("/updateclass/:id", g.Authenticate(), g.RequireInstructor(), h.UpdateClass)
	classes.Patch("/approved/:id", g.Authenticate(), g.RequireAdmin(), h.ApproveClass)
	classes.Patch("/denied/:id", g.Authenticate(), g.RequireAdmin(), h.DenyClass)
	classes.Patch("/feedback/:id", g.Authenticate(), g.RequireAdmin(), h.SendFeedback)
}
