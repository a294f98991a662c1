package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arzan03/RestoHub/internal/models"
	"github.com/arzan03/RestoHub/internal/response"
	"github.com/arzan03/RestoHub/internal/services"
)

// Page is one page of a listing.
type Page[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}

func pageParams(c *fiber.Ctx) (int, int) {
	return services.NormalizePage(c.QueryInt("page", 1), c.QueryInt("size", 0))
}

// ListUsers lists all users (admin only).
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	page, size := pageParams(c)
	users, total, err := h.users.List(c.UserContext(), page, size)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Send(c, response.StatusOK, Page[response.PublicUser]{
		Items: response.ToPublicUsers(users),
		Page:  page,
		Size:  size,
		Total: total,
	}, "")
}

// ListRestaurants lists all restaurants (admin only).
func (h *Handler) ListRestaurants(c *fiber.Ctx) error {
	page, size := pageParams(c)
	restaurants, total, err := h.restaurants.List(c.UserContext(), page, size)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Send(c, response.StatusOK, Page[models.Restaurant]{
		Items: restaurants,
		Page:  page,
		Size:  size,
		Total: total,
	}, "")
}
