package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/smarifurrahman/linguistic-horizons-server/handlers"
	"github.com/smarifurrahman/linguistic-horizons-server/middleware"
	hub "github.com/smarifurrahman/linguistic-horizons-server/websocket"
)

// Register mounts every route. feed may be nil, which leaves the live class
// feed off.
func Register(app *fiber.App, h *handlers.Handler, g *middleware.Guards, feed *hub.Hub) {
	PublicRoutes(app, h)
	AuthRoutes(app, h)
	UserRoutes(app, h, g)
	ClassRoutes(app, h, g)
	EnrollmentRoutes(app, h, g)
	AdminRoutes(app, h, g)
	UploadRoutes(app, h, g)
	if feed != nil {
		LiveRoutes(app, feed)
	}
}
