// Package smoke posts fixed payloads against a running deployment and prints what comes
// back. It makes no assertions.
package smoke

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	RegisterPath = "/api/auth/register"
	CheckoutPath = "/api/stripe/create-checkout-session"
)

// Check is one request of a smoke run.
type Check struct {
	Name string
	Path string
	Body any
}

type Result struct {
	Check  Check
	Status int
	Body   []byte
	Err    error
}

type Client struct {
	baseURL string
	timeout time.Duration
	out     io.Writer
}

func New(baseURL string, timeout time.Duration, out io.Writer) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout, out: out}
}

// DefaultChecks registers a throwaway user and opens a checkout session for it.
func DefaultChecks() []Check {
	email := fmt.Sprintf("smoke-%s@example.com", uuid.NewString())
	return []Check{
		{
			Name: "register",
			Path: RegisterPath,
			Body: map[string]string{
				"name":     "Smoke Test",
				"email":    email,
				"password": "smoke-test-password",
			},
		},
		{
			Name: "checkout session",
			Path: CheckoutPath,
			Body: map[string]string{
				"email":        email,
				"planType":     "pro",
				"billingCycle": "monthly",
			},
		},
	}
}

// Post sends body as JSON to path.
func (c *Client) Post(path string, body any) (int, []byte, error) {
	agent := fiber.Post(c.baseURL + path).JSON(body).Timeout(c.timeout)
	status, resp, errs := agent.Bytes()
	if len(errs) > 0 {
		return status, resp, errors.Join(errs...)
	}
	return status, resp, nil
}

// Run executes checks in order and prints each outcome.
func (c *Client) Run(checks []Check) []Result {
	results := make([]Result, 0, len(checks))
	for _, check := range checks {
		status, body, err := c.Post(check.Path, check.Body)
		r := Result{Check: check, Status: status, Body: body, Err: err}
		results = append(results, r)

		fmt.Fprintf(c.out, "==> %s POST %s\n", check.Name, check.Path)
		if err != nil {
			fmt.Fprintf(c.out, "    error: %v\n", err)
			continue
		}
		fmt.Fprintf(c.out, "    status: %d\n    body: %s\n", status, body)
	}
	return results
}
