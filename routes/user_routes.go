package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/smarifurrahman/linguistic-horizons-server/handlers"
	"github.com/smarifurrahman/linguistic-horizons-server/middleware"
)

func UserRoutes(app *fiber.App, h *handlers.Handler, g *middleware.Guards) {
	users := app.Group("/users")

	users.Get("", h.ListUsers)
	users.Post("", h.CreateUser)
	users.Get("/:email", h.GetUser)

	users.Get("/check-admin/:email", g.Authenticate(), h.CheckAdmin)
	users.Get("/check-instructor/:email", g.Authenticate(), h.CheckInstructor)
	users.Get("/check-student/:email", g.Authenticate(), h.CheckStudent)

	users.Patch("/admin/:id", g.Authenticate(), g.RequireAdmin(), h.MakeAdmin)
	users.Patch("/instructor/:id", g.Authenticate(), g.RequireAdmin(), h.MakeInstructor)
}
