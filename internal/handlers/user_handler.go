package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arzan03/RestoHub/internal/middleware"
	"github.com/arzan03/RestoHub/internal/models"
	"github.com/arzan03/RestoHub/internal/response"
)

// Me returns the caller's own record.
func (h *Handler) Me(c *fiber.Ctx) error {
	user, err := h.users.Get(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return response.Send(c, response.StatusOK, response.ToPublicUser(user), "")
}

// UpdatePermissions replaces the permission flags of the user in :id.
func (h *Handler) UpdatePermissions(c *fiber.Ctx) error {
	var perms models.Permissions
	if err := h.parse(c, &perms); err != nil {
		return h.fail(c, err)
	}

	user, err := h.users.UpdatePermissions(c.UserContext(), middleware.UserID(c), c.Params("id"), perms)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Send(c, response.StatusOK, response.ToPublicUser(user), "Permissions updated")
}
