package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/RestoHub/internal/middleware"
	"github.com/arzan03/RestoHub/internal/models"
	"github.com/arzan03/RestoHub/internal/response"
	"github.com/arzan03/RestoHub/internal/services"
)

type createRestaurantRequest struct {
	RestaurantName string `json:"restaurantName" validate:"required,max=120"`
	Location       string `json:"location" validate:"required,max=200"`
	PlanType       string `json:"planType"`
	BillingCycle   string `json:"billingCycle"`
}

type patchRestaurantRequest struct {
	RestaurantName *string `json:"restaurantName" validate:"omitempty,max=120"`
	Location       *string `json:"location" validate:"omitempty,max=200"`
}

// OnboardingPayload carries the new restaurant and a token reflecting the caller's new role.
type OnboardingPayload struct {
	Restaurant models.Restaurant   `json:"restaurant"`
	User       response.PublicUser `json:"user"`
	Token      string              `json:"token"`
}

// CreateRestaurant onboards a restaurant with the caller as head chef.
func (h *Handler) CreateRestaurant(c *fiber.Ctx) error {
	var req createRestaurantRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}

	restaurant, chef, err := h.restaurants.Create(c.UserContext(), services.CreateRestaurantInput{
		RestaurantName: req.RestaurantName,
		Location:       req.Location,
		HeadChefID:     middleware.UserID(c),
		PlanType:       req.PlanType,
		BillingCycle:   req.BillingCycle,
	})
	if err != nil {
		return h.fail(c, err)
	}

	token, err := h.auth.GenerateJWT(chef)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Send(c, response.StatusCreated, OnboardingPayload{
		Restaurant: restaurant,
		User:       response.ToPublicUser(chef),
		Token:      token,
	}, "Restaurant created successfully")
}

// GetRestaurant is visible to the restaurant's members and to admins.
func (h *Handler) GetRestaurant(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return h.fail(c, services.ErrInvalidID)
	}
	caller, err := h.users.Get(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	if caller.Role != models.RoleAdmin && (caller.RestaurantID == nil || *caller.RestaurantID != id) {
		return h.fail(c, services.ErrForbidden)
	}

	restaurant, err := h.restaurants.Get(c.UserContext(), id.Hex())
	if err != nil {
		return h.fail(c, err)
	}
	return response.Send(c, response.StatusOK, restaurant, "")
}

// PatchRestaurant runs behind RequirePermission, which stored the caller's restaurant.
func (h *Handler) PatchRestaurant(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return h.fail(c, services.ErrInvalidID)
	}
	if middleware.Role(c) != models.RoleAdmin {
		own, _ := c.Locals(middleware.LocalRestaurantID).(string)
		ownID, err := primitive.ObjectIDFromHex(own)
		if err != nil || ownID != id {
			return h.fail(c, services.ErrForbidden)
		}
	}

	var req patchRestaurantRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}

	restaurant, err := h.restaurants.Update(c.UserContext(), id.Hex(), services.RestaurantPatch{
		RestaurantName: req.RestaurantName,
		Location:       req.Location,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return response.Send(c, response.StatusOK, restaurant, "Restaurant updated")
}
