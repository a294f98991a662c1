package handlers

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/arzan03/RestoHub/internal/db"
	"github.com/arzan03/RestoHub/internal/middleware"
	"github.com/arzan03/RestoHub/internal/response"
	"github.com/arzan03/RestoHub/internal/services"
)

// Probe is a named dependency check reported by the health endpoint.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps wires the HTTP surface to its collaborators.
type Deps struct {
	Auth        *services.AuthService
	Users       *services.UserService
	Restaurants *services.RestaurantService

	Gate          middleware.Gate
	JWTSecret     string
	ReadyTimeout  time.Duration
	HealthTimeout time.Duration // defaults to DefaultHealthTimeout
	RetryAfter    time.Duration
	Probes        []Probe
}

// DefaultHealthTimeout bounds how long /api/health waits on the database gate.
const DefaultHealthTimeout = 3 * time.Second

type Handler struct {
	auth        *services.AuthService
	users       *services.UserService
	restaurants *services.RestaurantService
	probes      []Probe

	errs     *response.Mapper
	validate *validator.Validate
}

func New(d Deps) *Handler {
	return &Handler{
		auth:        d.Auth,
		users:       d.Users,
		restaurants: d.Restaurants,
		probes:      d.Probes,
		errs:        newErrorMapper(),
		validate:    newValidator(),
	}
}

func newErrorMapper() *response.Mapper {
	return response.NewMapper().
		WithMapping(services.ErrEmailExists, response.StatusConflict, "Email already registered", response.CodeEmailExists).
		WithMapping(services.ErrInvalidCredentials, response.StatusUnauthorized, "Invalid email or password", response.CodeInvalidCredentials).
		WithMapping(services.ErrInvalidToken, response.StatusUnauthorized, "Invalid token", response.CodeUnauthorized).
		WithMapping(services.ErrForbidden, response.StatusForbidden, "Access denied", response.CodeForbidden).
		WithMapping(services.ErrHeadChefNotFound, response.StatusNotFound, "Head chef not found", response.CodeNotFound).
		WithMapping(services.ErrNotFound, response.StatusNotFound, "Resource not found", response.CodeNotFound).
		WithMapping(services.ErrInvalidID, response.StatusBadRequest, "Invalid id", response.CodeValidationError).
		WithMapping(services.ErrRestaurantExists, response.StatusConflict, "Head chef already has a restaurant", response.CodeRestaurantExists).
		WithMapping(services.ErrInvalidPlan, response.StatusBadRequest, "Invalid plan type or billing cycle", response.CodeInvalidPlan).
		WithMapping(db.ErrUnavailable, response.StatusServiceUnavailable, "Database unavailable", response.CodeDBUnavailable).
		WithMapping(services.ErrCreationFailed, response.StatusInternalError, "Failed to create record", response.CodeCreationError)
}

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parse decodes the body into dst and validates it.
func (h *Handler) parse(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fmt.Errorf("%w: invalid request body", services.ErrValidation)
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", services.ErrValidation, err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describe(fe))
		}
		return fmt.Errorf("%w: %s", services.ErrValidation, strings.Join(msgs, "; "))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	}
	return fe.Field() + " is invalid"
}

// fail renders err as an error envelope.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrValidation) {
		return response.Error(c, response.StatusBadRequest, err.Error(), response.CodeValidationError)
	}
	info := h.errs.Map(err)
	if info.Status >= response.StatusInternalError {
		logrus.WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
			"status": info.Status,
			"error":  err.Error(),
		}).Error("Request failed")
	}
	return response.Error(c, info.Status, info.Message, info.Code)
}
