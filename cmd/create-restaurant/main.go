// Command create-restaurant onboards a restaurant for an existing user.
//
// Configuration comes from the environment:
//
//	RESTAURANT_NAME, RESTAURANT_LOCATION, HEAD_CHEF_EMAIL (required)
//	PLAN_TYPE (basic), BILLING_CYCLE (monthly)
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arzan03/RestoHub/internal/config"
	"github.com/arzan03/RestoHub/internal/db"
	"github.com/arzan03/RestoHub/internal/events"
	"github.com/arzan03/RestoHub/internal/logging"
	"github.com/arzan03/RestoHub/internal/response"
	"github.com/arzan03/RestoHub/internal/services"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Error("create-restaurant failed")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	email := os.Getenv("HEAD_CHEF_EMAIL")
	if email == "" {
		return errors.New("HEAD_CHEF_EMAIL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
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

	var publisher events.Publisher = events.Noop{}
	if len(cfg.Events.Brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.TopicPrefix)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	chef, err := services.NewUserService(connector).GetByEmail(ctx, email)
	if errors.Is(err, services.ErrNotFound) {
		return fmt.Errorf("no user with email %s", email)
	}
	if err != nil {
		return err
	}

	restaurant, chef, err := services.NewRestaurantService(connector, nil, 0, publisher).Create(ctx, services.CreateRestaurantInput{
		RestaurantName: os.Getenv("RESTAURANT_NAME"),
		Location:       os.Getenv("RESTAURANT_LOCATION"),
		HeadChefID:     chef.ID.Hex(),
		PlanType:       os.Getenv("PLAN_TYPE"),
		BillingCycle:   os.Getenv("BILLING_CYCLE"),
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(struct {
		Restaurant any `json:"restaurant"`
		HeadChef   any `json:"headChef"`
	}{restaurant, response.ToPublicUser(chef)}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
