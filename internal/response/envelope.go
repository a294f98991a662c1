package response

import (
	"github.com/gofiber/fiber/v2"
)

// Envelope is the body of every successful response.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorEnvelope is the body of every failed response outside the readiness gate.
type ErrorEnvelope struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func Success(data any, message string) Envelope {
	return Envelope{Data: data, Message: message}
}

func Failure(message, code string) ErrorEnvelope {
	return ErrorEnvelope{Message: message, Code: code}
}

// Send writes a success envelope with the given status.
func Send(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(Success(data, message))
}

// Error writes an error envelope with the given status.
func Error(c *fiber.Ctx, status int, message, code string) error {
	return c.Status(status).JSON(Failure(message, code))
}
