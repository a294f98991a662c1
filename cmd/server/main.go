package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/arzan03/RestoHub/internal/cache"
	"github.com/arzan03/RestoHub/internal/config"
	"github.com/arzan03/RestoHub/internal/db"
	"github.com/arzan03/RestoHub/internal/events"
	"github.com/arzan03/RestoHub/internal/handlers"
	"github.com/arzan03/RestoHub/internal/logging"
	"github.com/arzan03/RestoHub/internal/response"
	"github.com/arzan03/RestoHub/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	logging.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	logrus.WithField("config", cfg.String()).Info("Starting RestoHub API")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connector := db.NewConnector(cfg.Database.URI, cfg.Database.Name, cfg.Database.ConnectTimeout)
	connector.OnConnect(db.EnsureIndexes)
	// Connect in the background; requests wait on the readiness gate meanwhile.
	go func() {
		if err := connector.Ensure(ctx); err != nil {
			logrus.WithError(err).Warn("Initial MongoDB connection failed, requests will retry")
		}
	}()

	probes := []handlers.Probe{{Name: "mongodb", Check: connector.Ping}}

	var store cache.Store = cache.Noop{}
	if cfg.Cache.Addr != "" {
		redisStore, err := cache.NewRedis(ctx, cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
		if err != nil {
			logrus.WithError(err).Warn("Redis unavailable, restaurant cache disabled")
		} else {
			defer redisStore.Close()
			store = redisStore
			probes = append(probes, handlers.Probe{Name: "redis", Check: redisStore.Ping})
			logrus.WithField("addr", cfg.Cache.Addr).Info("Restaurant cache enabled")
		}
	}

	var publisher events.Publisher = events.Noop{}
	if len(cfg.Events.Brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.TopicPrefix)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logrus.WithField("brokers", cfg.Events.Brokers).Info("Kafka event publishing enabled")
	}

	// Initialize Fiber
	app := fiber.New(fiber.Config{
		AppName:      "RestoHub API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		ErrorHandler: errorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New())

	handlers.Register(app, handlers.Deps{
		Auth:          services.NewAuthService(connector, publisher, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Users:         services.NewUserService(connector),
		Restaurants:   services.NewRestaurantService(connector, store, cfg.Cache.TTL, publisher),
		Gate:          connector,
		JWTSecret:     cfg.Auth.JWTSecret,
		ReadyTimeout:  cfg.Database.ReadyTimeout,
		HealthTimeout: cfg.Database.HealthTimeout,
		RetryAfter:    cfg.Database.RetryAfter,
		Probes:        probes,
	})

	go func() {
		<-ctx.Done()
		logrus.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.WithError(err).Error("Server shutdown failed")
		}
	}()

	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		logrus.WithError(err).Fatal("Server stopped")
	}

	disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := connector.Disconnect(disconnectCtx); err != nil {
		logrus.WithError(err).Warn("MongoDB disconnect failed")
	}
}

// errorHandler renders unmatched routes and framework errors in the error envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	status, message, code := fiber.StatusInternalServerError, "internal server error", response.CodeInternalError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status, message = fe.Code, fe.Message
		if status == fiber.StatusNotFound {
			code = response.CodeNotFound
		}
	} else {
		logrus.WithFields(logrus.Fields{"path": c.Path(), "error": err.Error()}).Error("Unhandled error")
	}
	return response.Error(c, status, message, code)
}
