package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/careernest/Backend-CareerNest/src/realtime"
)

// SocketRoutes mounts the websocket endpoint. Auth happens during the
// upgrade, before the protocol switch.
func SocketRoutes(app *fiber.App, handler *realtime.Handler) {
	app.Use("/ws", handler.Upgrade)
	app.Get("/ws", handler.Serve())
}
