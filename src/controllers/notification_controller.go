package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/careernest/Backend-CareerNest/src/models"
	"github.com/careernest/Backend-CareerNest/src/repositories"
	"github.com/careernest/Backend-CareerNest/src/services"
)

type NotificationController struct {
	notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

// GetNotifications lists the authenticated user's notifications, optionally
// filtered by type and read state
func (ctl *NotificationController) GetNotifications(c *fiber.Ctx) error {
	// Obtener usuario autenticado del middleware
	user := c.Locals("user").(models.User)

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	var filter repositories.NotificationFilter
	if raw := c.Query("type"); raw != "" {
		typ := models.NotificationType(raw)
		filter.Type = &typ
	}
	if raw := c.Query("isRead"); raw != "" {
		isRead := raw == "true"
		filter.IsRead = &isRead
	}

	result, err := ctl.notifications.List(c.Context(), user.Id, filter, page, limit)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"notifications": result.Notifications,
		"count":         result.Count,
		"totalCount":    result.TotalCount,
		"page":          result.Page,
		"limit":         result.Limit,
		"totalPages":    result.TotalPages,
	})
}

// GetUnreadCount returns the authenticated user's unread notification count
func (ctl *NotificationController) GetUnreadCount(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	count, err := ctl.notifications.UnreadCount(c.Context(), user.Id)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{"unreadCount": count})
}

// GetStats returns notification totals grouped by type
func (ctl *NotificationController) GetStats(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	stats, err := ctl.notifications.Stats(c.Context(), user.Id)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{"stats": stats})
}

// MarkAsRead marks one of the authenticated user's notifications as read
func (ctl *NotificationController) MarkAsRead(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	notificationID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid notification ID format")
	}

	notification, err := ctl.notifications.MarkRead(c.Context(), user.Id, notificationID)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"message":      "Notification marked as read",
		"notification": notification,
	})
}

// MarkAllAsRead marks every unread notification of the authenticated user as read
func (ctl *NotificationController) MarkAllAsRead(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	modified, err := ctl.notifications.MarkAllRead(c.Context(), user.Id)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"message":       "All notifications marked as read",
		"modifiedCount": modified,
	})
}

// DeleteNotification deletes one of the authenticated user's notifications
func (ctl *NotificationController) DeleteNotification(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	notificationID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid notification ID format")
	}

	if err := ctl.notifications.Delete(c.Context(), user.Id, notificationID); err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{"message": "Notification deleted successfully"})
}

// DeleteReadNotifications deletes every read notification of the authenticated user
func (ctl *NotificationController) DeleteReadNotifications(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	deleted, err := ctl.notifications.DeleteAllRead(c.Context(), user.Id)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"message":      "Read notifications deleted",
		"deletedCount": deleted,
	})
}

// DeleteAllNotifications deletes every notification of the authenticated user
func (ctl *NotificationController) DeleteAllNotifications(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	deleted, err := ctl.notifications.DeleteAll(c.Context(), user.Id)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"message":      "All notifications deleted",
		"deletedCount": deleted,
	})
}
