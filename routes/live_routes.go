package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	hub "github.com/smarifurrahman/linguistic-horizons-server/websocket"
)

func LiveRoutes(app *fiber.App, feed *hub.Hub) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	app.Get("/ws/classes", websocket.New(feed.Serve))
}
