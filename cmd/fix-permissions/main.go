// Command fix-permissions sets role default permissions on users stored without them.
//
// DRY_RUN=true lists the affected users without writing. MIGRATION_WORKERS bounds the
// number of concurrent updates (default 4). Affected users are snapshotted to MinIO when
// MINIO_ENDPOINT is set.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arzan03/RestoHub/internal/config"
	"github.com/arzan03/RestoHub/internal/db"
	"github.com/arzan03/RestoHub/internal/logging"
	"github.com/arzan03/RestoHub/internal/services"
	"github.com/arzan03/RestoHub/internal/storage"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Error("fix-permissions failed")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	dryRun, err := config.GetEnvBool("DRY_RUN", false)
	if err != nil {
		return err
	}
	workers, err := config.GetEnvInt("MIGRATION_WORKERS", 4)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	connector := db.NewConnector(cfg.Database.URI, cfg.Database.Name, cfg.Database.ConnectTimeout)
	if err := connector.Ensure(ctx); err != nil {
		return err
	}
	defer func() {
		if err := connector.Disconnect(context.Background()); err != nil {
			logrus.WithError(err).Warn("MongoDB disconnect failed")
		}
	}()

	var snapshots storage.SnapshotStore = storage.Discard{}
	if cfg.Storage.Endpoint != "" {
		minioSnapshots, err := storage.NewMinio(ctx, cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket, cfg.Storage.UseSSL)
		if err != nil {
			return err
		}
		snapshots = minioSnapshots
	} else {
		logrus.Warn("MINIO_ENDPOINT not set, running without a snapshot")
	}

	report, runErr := services.NewPermissionService(connector, snapshots).FixMissing(ctx, services.FixOptions{
		DryRun:  dryRun,
		Workers: workers,
	})

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return runErr
}
