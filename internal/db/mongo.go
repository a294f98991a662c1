package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/singleflight"
)

// ErrUnavailable is returned when the shared connection could not be established in time.
var ErrUnavailable = errors.New("database unavailable")

// Collection names.
const (
	UsersCollection       = "users"
	RestaurantsCollection = "restaurants"
)

// Database is the subset of *mongo.Database the services use. *Connector implements it too.
type Database interface {
	Collection(name string, opts ...*options.CollectionOptions) *mongo.Collection
}

// Connector owns the process-wide MongoDB client. The client is created lazily by the
// first call to Ensure; concurrent callers share the same attempt.
type Connector struct {
	name           string
	connectTimeout time.Duration
	dial           func(ctx context.Context) (*mongo.Client, error)
	onConnect      func(ctx context.Context, d Database) error

	mu          sync.RWMutex
	client      *mongo.Client
	hookPending bool
	group       singleflight.Group
}

// NewConnector prepares a connector for uri/name. Nothing is dialed until Ensure.
func NewConnector(uri, name string, connectTimeout time.Duration) *Connector {
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	return &Connector{
		name:           name,
		connectTimeout: connectTimeout,
		dial: func(ctx context.Context) (*mongo.Client, error) {
			return connect(ctx, uri, connectTimeout)
		},
	}
}

// OnConnect registers fn to run once after the first successful connection. A failed
// run is logged and retried by the next Ensure. Call it before the first Ensure.
func (c *Connector) OnConnect(fn func(ctx context.Context, d Database) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = fn
	c.hookPending = fn != nil
}

func connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri).SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	// Ping the database to verify connection
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// Ensure resolves once the shared connection is established. It gives up when ctx is
// done; the attempt itself keeps running so a later caller can pick up its result.
// A failed attempt is not cached and the next call dials again.
func (c *Connector) Ensure(ctx context.Context) error {
	if c.settled() {
		return nil
	}
	ch := c.group.DoChan("connect", func() (interface{}, error) {
		if c.settled() {
			return nil, nil
		}
		attemptCtx, cancel := context.WithTimeout(context.Background(), c.connectTimeout)
		defer cancel()

		if !c.Ready() {
			start := time.Now()
			client, err := c.dial(attemptCtx)
			if err != nil {
				logrus.WithFields(logrus.Fields{"database": c.name, "error": err.Error()}).Warn("MongoDB connection attempt failed")
				return nil, err
			}
			c.mu.Lock()
			c.client = client
			c.mu.Unlock()
			logrus.WithFields(logrus.Fields{"database": c.name, "elapsed": time.Since(start).String()}).Info("Connected to MongoDB")
		}
		c.runOnConnect(attemptCtx)
		return nil, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return fmt.Errorf("%w: %w", ErrUnavailable, res.Err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	}
}

// settled reports whether the client is up and the on-connect hook has completed.
func (c *Connector) settled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client != nil && !c.hookPending
}

func (c *Connector) runOnConnect(ctx context.Context) {
	c.mu.RLock()
	fn, pending := c.onConnect, c.hookPending
	c.mu.RUnlock()
	if !pending {
		return
	}
	if err := fn(ctx, c); err != nil {
		logrus.WithFields(logrus.Fields{"database": c.name, "error": err.Error()}).Error("MongoDB on-connect setup failed, will retry")
		return
	}
	c.mu.Lock()
	c.hookPending = false
	c.mu.Unlock()
}

// Ready reports whether the shared client is established.
func (c *Connector) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client != nil
}

// Client returns the shared client, or nil before Ensure succeeded.
func (c *Connector) Client() *mongo.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

// Database returns the configured database. Callers must Ensure first.
func (c *Connector) Database() *mongo.Database {
	client := c.Client()
	if client == nil {
		return nil
	}
	return client.Database(c.name)
}

// Collection returns a collection of the configured database. Callers must Ensure first.
func (c *Connector) Collection(name string, opts ...*options.CollectionOptions) *mongo.Collection {
	d := c.Database()
	if d == nil {
		return nil
	}
	return d.Collection(name, opts...)
}

// Ping checks a live round trip on an established connection.
func (c *Connector) Ping(ctx context.Context) error {
	client := c.Client()
	if client == nil {
		return ErrUnavailable
	}
	return client.Ping(ctx, readpref.Primary())
}

// Disconnect closes the shared client if one was created.
func (c *Connector) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	client := c.client
	c.client = nil
	c.mu.Unlock()
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}
