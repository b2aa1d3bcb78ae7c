package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/careernest/Backend-CareerNest/src/controllers"
)

// ConnectionRoutes sets up connection-related routes for sending, accepting, rejecting and listing requests, blocking users and connection stats.
// The rate limiter only guards the mutating routes and runs after protect so
// it keys on the authenticated user.
func ConnectionRoutes(app *fiber.App, ctl *controllers.ConnectionController, protect, limit fiber.Handler) {
	connection := app.Group("/api/v1/connections", protect)

	connection.Post("/request", limit, ctl.SendRequest)
	connection.Post("/block", limit, ctl.BlockUser)
	connection.Get("/my", ctl.GetMyConnections)
	connection.Get("/requests/pending", ctl.GetPendingRequests)
	connection.Get("/requests/sent", ctl.GetSentRequests)
	connection.Get("/blocked", ctl.GetBlockedUsers)
	connection.Get("/stats", ctl.GetStats)
	connection.Put("/:id/accept", limit, ctl.AcceptRequest)
	connection.Put("/:id/reject", limit, ctl.RejectRequest)
	connection.Put("/:id/unblock", limit, ctl.UnblockUser)
	connection.Delete("/:id", limit, ctl.RemoveConnection)
}
