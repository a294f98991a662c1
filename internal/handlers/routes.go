package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arzan03/RestoHub/internal/middleware"
	"github.com/arzan03/RestoHub/internal/models"
)

// Register mounts the API under /api.
func Register(app *fiber.App, d Deps) *Handler {
	h := New(d)

	ready := middleware.RequireDatabase(d.Gate, d.ReadyTimeout, d.RetryAfter)
	authed := middleware.AuthMiddleware(d.JWTSecret)
	healthTimeout := d.HealthTimeout
	if healthTimeout <= 0 {
		healthTimeout = DefaultHealthTimeout
	}

	api := app.Group("/api")
	api.Get("/health", middleware.PreferDatabase(d.Gate, healthTimeout), h.Health)

	// Auth Routes
	auth := api.Group("/auth", ready)
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)

	// User Routes
	users := api.Group("/users", ready, authed)
	users.Get("/me", h.Me)
	users.Put("/:id/permissions", middleware.RequirePermission(d.Users, models.PermManageStaff), h.UpdatePermissions)

	// Restaurant Routes
	restaurants := api.Group("/restaurants", ready, authed)
	restaurants.Post("/", h.CreateRestaurant)
	restaurants.Get("/:id", h.GetRestaurant)
	restaurants.Patch("/:id", middleware.RequirePermission(d.Users, models.PermManageSettings), h.PatchRestaurant)

	// Admin Routes
	admin := api.Group("/admin", ready, authed, middleware.RequireRole(models.RoleAdmin))
	admin.Get("/users", h.ListUsers)
	admin.Get("/restaurants", h.ListRestaurants)

	return h
}
