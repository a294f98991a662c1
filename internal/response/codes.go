package response

import "github.com/gofiber/fiber/v2"

// Error codes returned in the "code" field of error envelopes.
const (
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeCreationError      = "CREATION_ERROR"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeRestaurantExists   = "RESTAURANT_EXISTS"
	CodeInvalidPlan        = "INVALID_PLAN"
	CodeDBUnavailable      = "DB_UNAVAILABLE"
	CodeTimeout            = "TIMEOUT"
	CodeInternalError      = "INTERNAL_ERROR"
)

// HTTP status codes the API responds with.
const (
	StatusOK                 = fiber.StatusOK
	StatusCreated            = fiber.StatusCreated
	StatusBadRequest         = fiber.StatusBadRequest
	StatusUnauthorized       = fiber.StatusUnauthorized
	StatusForbidden          = fiber.StatusForbidden
	StatusNotFound           = fiber.StatusNotFound
	StatusConflict           = fiber.StatusConflict
	StatusInternalError      = fiber.StatusInternalServerError
	StatusServiceUnavailable = fiber.StatusServiceUnavailable
	StatusGatewayTimeout     = fiber.StatusGatewayTimeout
)
