package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arzan03/RestoHub/internal/response"
	"github.com/arzan03/RestoHub/internal/services"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthPayload is the data of a successful register or login.
type AuthPayload struct {
	User  response.PublicUser `json:"user"`
	Token string              `json:"token"`
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}

	user, token, err := h.auth.Register(c.UserContext(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return h.fail(c, err)
	}

	return response.Send(c, response.StatusCreated,
		AuthPayload{User: response.ToPublicUser(user), Token: token},
		"User registered successfully")
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}

	user, token, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}

	return response.Send(c, response.StatusOK,
		AuthPayload{User: response.ToPublicUser(user), Token: token},
		"Login successful")
}
