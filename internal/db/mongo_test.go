package db

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// offlineClient builds a client without touching the network; mongo.Connect only
// validates options and starts background monitoring.
func offlineClient(t *testing.T) *mongo.Client {
	t.Helper()
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://127.0.0.1:1"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client
}

func newTestConnector(dial func(ctx context.Context) (*mongo.Client, error)) *Connector {
	c := NewConnector("mongodb://unused", "restohub_test", time.Second)
	c.dial = dial
	return c
}

func TestEnsure_ConcurrentCallersShareOneAttempt(t *testing.T) {
	client := offlineClient(t)
	release := make(chan struct{})
	var calls atomic.Int32
	c := newTestConnector(func(ctx context.Context) (*mongo.Client, error) {
		calls.Add(1)
		<-release
		return client, nil
	})

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.Ensure(context.Background())
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, c.Ready())
	assert.NotNil(t, c.Collection(UsersCollection))

	require.NoError(t, c.Ensure(context.Background()))
	assert.Equal(t, int32(1), calls.Load(), "established connection must not redial")
}

func TestEnsure_FailedAttemptIsRetried(t *testing.T) {
	client := offlineClient(t)
	var calls atomic.Int32
	c := newTestConnector(func(ctx context.Context) (*mongo.Client, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("connection refused")
		}
		return client, nil
	})

	err := c.Ensure(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, c.Ready())
	assert.Nil(t, c.Collection(UsersCollection))

	require.NoError(t, c.Ensure(context.Background()))
	assert.Equal(t, int32(2), calls.Load())
}

func TestEnsure_GivesUpWhenContextExpires(t *testing.T) {
	client := offlineClient(t)
	release := make(chan struct{})
	c := newTestConnector(func(ctx context.Context) (*mongo.Client, error) {
		<-release
		return client, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.Ensure(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The attempt keeps running and lands for the next caller.
	close(release)
	require.Eventually(t, c.Ready, time.Second, 5*time.Millisecond)
}

func TestDisconnect_ResetsState(t *testing.T) {
	c := newTestConnector(func(ctx context.Context) (*mongo.Client, error) {
		return mongo.Connect(ctx, options.Client().ApplyURI("mongodb://127.0.0.1:1"))
	})
	require.NoError(t, c.Disconnect(context.Background()), "disconnect before connect is a no-op")
	require.NoError(t, c.Ensure(context.Background()))
	require.NoError(t, c.Disconnect(context.Background()))
	assert.False(t, c.Ready())
	assert.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestOnConnect_RunsAfterLateConnect(t *testing.T) {
	client := offlineClient(t)
	var dials, hooks atomic.Int32
	c := newTestConnector(func(ctx context.Context) (*mongo.Client, error) {
		if dials.Add(1) == 1 {
			return nil, errors.New("connection refused")
		}
		return client, nil
	})
	c.OnConnect(func(ctx context.Context, d Database) error {
		hooks.Add(1)
		assert.NotNil(t, d.Collection(RestaurantsCollection))
		return nil
	})

	require.Error(t, c.Ensure(context.Background()))
	assert.Equal(t, int32(0), hooks.Load())

	require.NoError(t, c.Ensure(context.Background()))
	require.NoError(t, c.Ensure(context.Background()))
	assert.Equal(t, int32(1), hooks.Load())
	assert.Equal(t, int32(2), dials.Load())
}

func TestOnConnect_FailureIsRetried(t *testing.T) {
	client := offlineClient(t)
	var dials, hooks atomic.Int32
	c := newTestConnector(func(ctx context.Context) (*mongo.Client, error) {
		dials.Add(1)
		return client, nil
	})
	c.OnConnect(func(ctx context.Context, d Database) error {
		if hooks.Add(1) == 1 {
			return errors.New("createIndexes failed")
		}
		return nil
	})

	require.NoError(t, c.Ensure(context.Background()), "hook failure keeps the connection usable")
	assert.True(t, c.Ready())

	require.NoError(t, c.Ensure(context.Background()))
	require.NoError(t, c.Ensure(context.Background()))
	assert.Equal(t, int32(2), hooks.Load())
	assert.Equal(t, int32(1), dials.Load(), "retrying the hook must not redial")
}
