package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/careernest/Backend-CareerNest/src/models"
	"github.com/careernest/Backend-CareerNest/src/services"
)

type ConnectionController struct {
	connections *services.ConnectionService
}

func NewConnectionController(connections *services.ConnectionService) *ConnectionController {
	return &ConnectionController{connections: connections}
}

// SendRequest sends a connection request from the authenticated user to another user
func (ctl *ConnectionController) SendRequest(c *fiber.Ctx) error {
	// Obtener usuario autenticado del middleware
	user := c.Locals("user").(models.User)

	var body struct {
		ReceiverId string `json:"receiverId"`
		Message    string `json:"message"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	receiverID, err := primitive.ObjectIDFromHex(body.ReceiverId)
	if err != nil {
		return badRequest(c, "Invalid receiver ID format")
	}

	connection, err := ctl.connections.Propose(c.Context(), user.Id, receiverID, body.Message)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusCreated, fiber.Map{
		"message":    "Connection request sent successfully",
		"connection": connection,
	})
}

// AcceptRequest accepts a pending connection request addressed to the authenticated user
func (ctl *ConnectionController) AcceptRequest(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	connectionID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid connection ID format")
	}

	connection, err := ctl.connections.Accept(c.Context(), user.Id, connectionID)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"message":    "Connection request accepted",
		"connection": connection,
	})
}

// RejectRequest rejects a pending connection request addressed to the authenticated user
func (ctl *ConnectionController) RejectRequest(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	connectionID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid connection ID format")
	}

	connection, err := ctl.connections.Reject(c.Context(), user.Id, connectionID)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"message":    "Connection request rejected",
		"connection": connection,
	})
}

// GetMyConnections lists the authenticated user's accepted connections
func (ctl *ConnectionController) GetMyConnections(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)

	result, err := ctl.connections.ListConnections(c.Context(), user.Id, page, limit)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"connections": result.Connections,
		"count":       result.Count,
		"page":        result.Page,
		"limit":       result.Limit,
		"totalPages":  result.TotalPages,
	})
}

// GetPendingRequests lists requests waiting on the authenticated user's decision
func (ctl *ConnectionController) GetPendingRequests(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	result, err := ctl.connections.ListPending(c.Context(), user.Id, page, limit)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"requests":   result.Connections,
		"count":      result.Count,
		"page":       result.Page,
		"limit":      result.Limit,
		"totalPages": result.TotalPages,
	})
}

// GetSentRequests lists pending requests the authenticated user has sent
func (ctl *ConnectionController) GetSentRequests(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	result, err := ctl.connections.ListSent(c.Context(), user.Id, page, limit)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"requests":   result.Connections,
		"count":      result.Count,
		"page":       result.Page,
		"limit":      result.Limit,
		"totalPages": result.TotalPages,
	})
}

// GetBlockedUsers lists the users the authenticated user has blocked
func (ctl *ConnectionController) GetBlockedUsers(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	result, err := ctl.connections.ListBlocked(c.Context(), user.Id, page, limit)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"blocked":    result.Connections,
		"count":      result.Count,
		"page":       result.Page,
		"limit":      result.Limit,
		"totalPages": result.TotalPages,
	})
}

// GetStats returns the authenticated user's connection counts by status
func (ctl *ConnectionController) GetStats(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	stats, err := ctl.connections.Stats(c.Context(), user.Id)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{"stats": stats})
}

// RemoveConnection deletes an accepted connection involving the authenticated user
func (ctl *ConnectionController) RemoveConnection(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	connectionID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid connection ID format")
	}

	if err := ctl.connections.Remove(c.Context(), user.Id, connectionID); err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{"message": "Connection removed successfully"})
}

// BlockUser blocks another user, overwriting any existing relationship
func (ctl *ConnectionController) BlockUser(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	var body struct {
		UserId string `json:"userId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	targetID, err := primitive.ObjectIDFromHex(body.UserId)
	if err != nil {
		return badRequest(c, "Invalid user ID format")
	}

	connection, err := ctl.connections.Block(c.Context(), user.Id, targetID)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"message":    "User blocked successfully",
		"connection": connection,
	})
}

// UnblockUser removes a block previously placed by the authenticated user
func (ctl *ConnectionController) UnblockUser(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	connectionID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid connection ID format")
	}

	if err := ctl.connections.Unblock(c.Context(), user.Id, connectionID); err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{"message": "User unblocked successfully"})
}
