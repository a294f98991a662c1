package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	DefaultReadyTimeout = 45 * time.Second
	DefaultRetryAfter   = 30 * time.Second

	// LocalDBReady is the c.Locals key set by PreferDatabase.
	LocalDBReady = "db_ready"
)

// Gate resolves once the shared database connection is usable. *db.Connector implements it.
type Gate interface {
	Ensure(ctx context.Context) error
}

// UnavailableBody is the 503 payload of the readiness gate.
type UnavailableBody struct {
	Message    string `json:"message"`
	Error      string `json:"error"`
	Timestamp  string `json:"timestamp"`
	RetryAfter int    `json:"retryAfter"` // seconds
}

func awaitGate(c *fiber.Ctx, gate Gate, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}
	ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
	defer cancel()
	return gate.Ensure(ctx)
}

// RequireDatabase holds the request until the database connection is ready, for at most
// timeout. On failure it answers 503 with a Retry-After hint.
func RequireDatabase(gate Gate, timeout, retryAfter time.Duration) fiber.Handler {
	if retryAfter <= 0 {
		retryAfter = DefaultRetryAfter
	}
	seconds := int(retryAfter / time.Second)

	return func(c *fiber.Ctx) error {
		if err := awaitGate(c, gate, timeout); err != nil {
			logrus.WithFields(logrus.Fields{
				"path":  c.Path(),
				"error": err.Error(),
			}).Warn("Database not ready, rejecting request")

			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds))
			return c.Status(fiber.StatusServiceUnavailable).JSON(UnavailableBody{
				Message:    "Service temporarily unavailable",
				Error:      "Database connection is not available",
				Timestamp:  time.Now().UTC().Format(time.RFC3339),
				RetryAfter: seconds,
			})
		}
		return c.Next()
	}
}

// PreferDatabase waits for the connection like RequireDatabase but never rejects.
// Handlers read the outcome from c.Locals(LocalDBReady).
func PreferDatabase(gate Gate, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := awaitGate(c, gate, timeout)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"path":  c.Path(),
				"error": err.Error(),
			}).Debug("Proceeding without database")
		}
		c.Locals(LocalDBReady, err == nil)
		return c.Next()
	}
}

// DatabaseReady reads the flag stored by PreferDatabase.
func DatabaseReady(c *fiber.Ctx) bool {
	ready, _ := c.Locals(LocalDBReady).(bool)
	return ready
}
