package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/careernest/Backend-CareerNest/src/models"
	"github.com/careernest/Backend-CareerNest/src/services"
)

type MessageController struct {
	messages *services.MessageService
}

func NewMessageController(messages *services.MessageService) *MessageController {
	return &MessageController{messages: messages}
}

// SendMessage sends a message from the authenticated user to a connected user
func (ctl *MessageController) SendMessage(c *fiber.Ctx) error {
	// Obtener usuario autenticado del middleware
	user := c.Locals("user").(models.User)

	var body struct {
		ReceiverId       string `json:"receiverId"`
		Text             string `json:"text"`
		AttachmentFileId string `json:"attachmentFileId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	receiverID, err := primitive.ObjectIDFromHex(body.ReceiverId)
	if err != nil {
		return badRequest(c, "Invalid receiver ID format")
	}

	var attachmentID primitive.ObjectID
	if body.AttachmentFileId != "" {
		attachmentID, err = primitive.ObjectIDFromHex(body.AttachmentFileId)
		if err != nil {
			return badRequest(c, "Invalid attachment ID format")
		}
	}

	message, err := ctl.messages.Send(c.Context(), user.Id, receiverID, body.Text, attachmentID)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusCreated, fiber.Map{
		"message": "Message sent successfully",
		"data":    message,
	})
}

// GetConversations lists the authenticated user's conversations, most recent first
func (ctl *MessageController) GetConversations(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	result, err := ctl.messages.Conversations(c.Context(), user.Id, page, limit)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"conversations": result.Conversations,
		"count":         result.Count,
		"totalCount":    result.TotalCount,
		"page":          result.Page,
		"limit":         result.Limit,
		"totalPages":    result.TotalPages,
	})
}

// GetThread returns a page of the conversation with another user and marks
// the fetched unread messages as read
func (ctl *MessageController) GetThread(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	otherID, err := primitive.ObjectIDFromHex(c.Params("userId"))
	if err != nil {
		return badRequest(c, "Invalid user ID format")
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)

	result, err := ctl.messages.Thread(c.Context(), user.Id, otherID, page, limit)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"messages":   result.Messages,
		"count":      result.Count,
		"totalCount": result.TotalCount,
		"page":       result.Page,
		"limit":      result.Limit,
		"totalPages": result.TotalPages,
	})
}

// MarkAsRead marks a single received message as read
func (ctl *MessageController) MarkAsRead(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	messageID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid message ID format")
	}

	message, err := ctl.messages.MarkRead(c.Context(), user.Id, messageID)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"message": "Message marked as read",
		"data":    message,
	})
}

// MarkAllAsRead marks every unread message from the given sender as read
func (ctl *MessageController) MarkAllAsRead(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	senderID, err := primitive.ObjectIDFromHex(c.Params("userId"))
	if err != nil {
		return badRequest(c, "Invalid user ID format")
	}

	modified, err := ctl.messages.MarkAllRead(c.Context(), user.Id, senderID)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"message":       "Messages marked as read",
		"modifiedCount": modified,
	})
}

// DeleteMessage deletes a message sent by the authenticated user
func (ctl *MessageController) DeleteMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	messageID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid message ID format")
	}

	if err := ctl.messages.Delete(c.Context(), user.Id, messageID); err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{"message": "Message deleted successfully"})
}

// GetUnreadCount returns the authenticated user's total unread message count
func (ctl *MessageController) GetUnreadCount(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	count, err := ctl.messages.UnreadCount(c.Context(), user.Id)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{"unreadCount": count})
}

// SearchMessages searches the authenticated user's messages by content
func (ctl *MessageController) SearchMessages(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	query := c.Query("q")
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	result, err := ctl.messages.Search(c.Context(), user.Id, query, page, limit)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"messages": result.Messages,
		"count":    result.Count,
		"page":     result.Page,
		"limit":    result.Limit,
	})
}
