package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/careernest/Backend-CareerNest/src/apperr"
)

// ok writes a success envelope with the given payload fields.
func ok(c *fiber.Ctx, status int, payload fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

// fail maps an error to its HTTP status and writes the failure envelope.
// Coded errors expose their machine-readable code alongside the message;
// anything outside the known kinds becomes an opaque server error.
func fail(c *fiber.Ctx, err error) error {
	status := apperr.HTTPStatus(err)

	body := fiber.Map{"success": false}
	if status == fiber.StatusInternalServerError {
		body["message"] = "Server error"
	} else {
		body["message"] = err.Error()
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Code != "" {
		body["code"] = appErr.Code
	}

	return c.Status(status).JSON(body)
}

// badRequest is for malformed input caught at the transport edge, before
// any engine is involved.
func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
