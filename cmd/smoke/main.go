// Command smoke posts fixed payloads to API_BASE_URL and prints the responses.
package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/arzan03/RestoHub/internal/config"
	"github.com/arzan03/RestoHub/internal/logging"
	"github.com/arzan03/RestoHub/internal/smoke"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}
	logging.Setup(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	logrus.WithField("base_url", cfg.Smoke.BaseURL).Info("Running smoke checks")

	smoke.New(cfg.Smoke.BaseURL, 0, os.Stdout).Run(smoke.DefaultChecks())
}
