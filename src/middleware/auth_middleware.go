package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/careernest/Backend-CareerNest/src/lib"
	"github.com/careernest/Backend-CareerNest/src/repositories"
)

// ProtectRoute checks for a valid JWT token, authenticates the user and
// attaches the user document to the request context.
func ProtectRoute(users repositories.UserRepository, jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Obtener token del header Authorization
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "Unauthorized - No token provided")
		}

		// Formato esperado: "Bearer <token>"
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return unauthorized(c, "Unauthorized - Invalid token format")
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := lib.VerifyJWT(token, jwtSecret)
		if err != nil {
			return unauthorized(c, "Unauthorized - Invalid token")
		}

		userIDHex, ok := claims["userId"].(string)
		if !ok {
			return unauthorized(c, "Unauthorized - Invalid token")
		}

		userID, err := primitive.ObjectIDFromHex(userIDHex)
		if err != nil {
			return unauthorized(c, "Unauthorized - Invalid user ID")
		}

		user, err := users.GetByID(c.Context(), userID)
		if err != nil || user == nil {
			return unauthorized(c, "Unauthorized - User not found")
		}

		c.Locals("user", *user)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
