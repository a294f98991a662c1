package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/arzan03/RestoHub/internal/middleware"
	"github.com/arzan03/RestoHub/internal/response"
	"github.com/arzan03/RestoHub/internal/utils"
)

const probeTimeout = 2 * time.Second

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
)

type HealthReport struct {
	Status   string            `json:"status"`
	Database string            `json:"database"`
	Checks   map[string]string `json:"checks,omitempty"`
}

// Health runs behind PreferDatabase and always answers 200.
func (h *Handler) Health(c *fiber.Ctx) error {
	report := HealthReport{Status: statusOK, Database: "connected"}
	if !middleware.DatabaseReady(c) {
		report.Status = statusDegraded
		report.Database = "unavailable"
	}

	if len(h.probes) > 0 {
		ctx := c.UserContext()
		tasks := make([]utils.ParallelTask[string], len(h.probes))
		for i, p := range h.probes {
			p := p
			tasks[i] = func() (string, error) {
				pctx, cancel := context.WithTimeout(ctx, probeTimeout)
				defer cancel()
				return statusOK, p.Check(pctx)
			}
		}
		_, errs := utils.RunParallel(tasks)

		report.Checks = make(map[string]string, len(h.probes))
		for i, p := range h.probes {
			if errs[i] != nil {
				report.Checks[p.Name] = errs[i].Error()
				report.Status = statusDegraded
				continue
			}
			report.Checks[p.Name] = statusOK
		}
	}

	return response.Send(c, response.StatusOK, report, "")
}
