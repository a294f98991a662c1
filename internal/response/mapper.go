package response

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorInfo is the HTTP rendering of an error.
type ErrorInfo struct {
	Status  int
	Message string
	Code    string
}

type mapping struct {
	err  error
	info ErrorInfo
}

// Mapper maps domain errors to HTTP status codes, messages and error codes.
type Mapper struct {
	mappings []mapping
	fallback ErrorInfo
}

func NewMapper() *Mapper {
	return &Mapper{
		fallback: ErrorInfo{Status: StatusInternalError, Message: "internal server error", Code: CodeInternalError},
	}
}

// WithMapping registers err (matched with errors.Is). Earlier mappings win.
func (m *Mapper) WithMapping(err error, status int, message, code string) *Mapper {
	m.mappings = append(m.mappings, mapping{err: err, info: ErrorInfo{Status: status, Message: message, Code: code}})
	return m
}

// WithDefault sets the rendering for unmatched errors.
func (m *Mapper) WithDefault(status int, message, code string) *Mapper {
	m.fallback = ErrorInfo{Status: status, Message: message, Code: code}
	return m
}

// Map converts err to its HTTP rendering. A nil error maps to 200.
func (m *Mapper) Map(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{Status: StatusOK}
	}
	for _, mp := range m.mappings {
		if errors.Is(err, mp.err) {
			return mp.info
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorInfo{Status: StatusGatewayTimeout, Message: "request timeout", Code: CodeTimeout}
	}
	if errors.Is(err, context.Canceled) {
		return ErrorInfo{Status: StatusServiceUnavailable, Message: "request cancelled", Code: CodeDBUnavailable}
	}
	return m.fallback
}

// Write maps err and sends the error envelope.
func (m *Mapper) Write(c *fiber.Ctx, err error) error {
	info := m.Map(err)
	return Error(c, info.Status, info.Message, info.Code)
}
