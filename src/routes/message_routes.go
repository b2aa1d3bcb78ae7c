package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/careernest/Backend-CareerNest/src/controllers"
)

// MessageRoutes sets up messaging routes for sending, listing conversations, reading threads, read receipts, search and deletion.
// The rate limiter only guards the mutating routes and runs after protect so
// it keys on the authenticated user.
func MessageRoutes(app *fiber.App, ctl *controllers.MessageController, protect, limit fiber.Handler) {
	message := app.Group("/api/v1/messages", protect)

	message.Post("/send", limit, ctl.SendMessage)
	message.Get("/conversations", ctl.GetConversations)
	message.Get("/unread/count", ctl.GetUnreadCount)
	message.Get("/search", ctl.SearchMessages)
	message.Put("/read-all/:userId", limit, ctl.MarkAllAsRead)
	message.Put("/:id/read", limit, ctl.MarkAsRead)
	message.Delete("/:id", limit, ctl.DeleteMessage)

	// La ruta genérica va al final para no capturar las anteriores
	message.Get("/:userId", ctl.GetThread)
}
