package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/careernest/Backend-CareerNest/src/controllers"
)

// NotificationRoutes sets up notification routes for listing, read state management, stats and deletion
func NotificationRoutes(app *fiber.App, ctl *controllers.NotificationController, protect fiber.Handler) {
	notification := app.Group("/api/v1/notifications", protect)

	notification.Get("/", ctl.GetNotifications)
	notification.Get("/unread/count", ctl.GetUnreadCount)
	notification.Get("/stats", ctl.GetStats)
	notification.Put("/read-all", ctl.MarkAllAsRead)
	notification.Put("/:id/read", ctl.MarkAsRead)
	notification.Delete("/all", ctl.DeleteAllNotifications)
	notification.Delete("/read", ctl.DeleteReadNotifications)
	notification.Delete("/:id", ctl.DeleteNotification)
}
