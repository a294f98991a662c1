package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/arzan03/RestoHub/internal/response"
	"github.com/arzan03/RestoHub/internal/services"
)

// Locals keys set by AuthMiddleware.
const (
	LocalUserID       = "user_id"
	LocalRole         = "role"
	LocalRestaurantID = "restaurant_id"
)

// AuthMiddleware validates the Bearer JWT and stores the caller's identity in c.Locals.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get the Authorization header
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return response.Error(c, response.StatusUnauthorized, "Missing token", response.CodeUnauthorized)
		}

		// Ensure it's a Bearer token
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		tokenString = strings.TrimSpace(tokenString)
		if !ok || tokenString == "" {
			return response.Error(c, response.StatusUnauthorized, "Invalid token format", response.CodeUnauthorized)
		}

		claims, err := services.ParseJWT(tokenString, secret)
		if err != nil {
			return response.Error(c, response.StatusUnauthorized, "Invalid token", response.CodeUnauthorized)
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalRole, claims.Role)
		c.Locals(LocalRestaurantID, claims.RestaurantID)
		return c.Next()
	}
}

// UserID returns the authenticated caller's id, or "" outside AuthMiddleware.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

func Role(c *fiber.Ctx) string {
	role, _ := c.Locals(LocalRole).(string)
	return role
}
