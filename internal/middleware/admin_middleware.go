package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/arzan03/RestoHub/internal/models"
	"github.com/arzan03/RestoHub/internal/response"
	"github.com/arzan03/RestoHub/internal/services"
)

// RequireRole lets the request through when the token's role is one of roles.
// Must run after AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := Role(c)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return response.Error(c, response.StatusForbidden, "Access denied", response.CodeForbidden)
	}
}

// PermissionLoader loads the current user record. *services.UserService implements it.
type PermissionLoader interface {
	Get(ctx context.Context, id string) (models.User, error)
}

// RequirePermission reloads the caller and checks a permission flag against the stored
// record, not the token. Admins always pass.
func RequirePermission(users PermissionLoader, flag string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := users.Get(c.UserContext(), UserID(c))
		switch {
		case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrInvalidID):
			return response.Error(c, response.StatusUnauthorized, "User no longer exists", response.CodeUnauthorized)
		case err != nil:
			logrus.WithFields(logrus.Fields{"user_id": UserID(c), "error": err.Error()}).Error("Failed to load user permissions")
			return response.Error(c, response.StatusInternalError, "Failed to load permissions", response.CodeInternalError)
		}

		if user.Role == models.RoleAdmin || user.EffectivePermissions().Has(flag) {
			c.Locals(LocalRole, user.Role)
			c.Locals(LocalRestaurantID, restaurantHex(user))
			return c.Next()
		}
		return response.Error(c, response.StatusForbidden, "Missing permission: "+flag, response.CodeForbidden)
	}
}

func restaurantHex(u models.User) string {
	if u.RestaurantID == nil {
		return ""
	}
	return u.RestaurantID.Hex()
}
