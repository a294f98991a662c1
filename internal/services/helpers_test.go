package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/arzan03/RestoHub/internal/events"
	"github.com/arzan03/RestoHub/internal/models"
)

const (
	usersNS       = "restohub.users"
	restaurantsNS = "restohub.restaurants"
)

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

// emptyCursor answers a FindOne/Find with no documents.
func emptyCursor(ns string) bson.D {
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch)
}

func cursorOf(ns string, docs ...bson.D) bson.D {
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, docs...)
}

func updated(n, modified int) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: n},
		bson.E{Key: "nModified", Value: modified},
	)
}

// userDoc marshals u the way the driver would store it.
func userDoc(t *testing.T, u models.User) bson.D {
	t.Helper()
	raw, err := bson.Marshal(u)
	if err != nil {
		t.Fatalf("marshal user: %v", err)
	}
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		t.Fatalf("unmarshal user: %v", err)
	}
	return d
}

func restaurantDoc(t *testing.T, r models.Restaurant) bson.D {
	t.Helper()
	raw, err := bson.Marshal(r)
	if err != nil {
		t.Fatalf("marshal restaurant: %v", err)
	}
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		t.Fatalf("unmarshal restaurant: %v", err)
	}
	return d
}

func ptrID(id primitive.ObjectID) *primitive.ObjectID { return &id }

func ptrPerms(p models.Permissions) *models.Permissions { return &p }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) all() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

// memoryCache is an in-process cache.Store.
type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache { return &memoryCache{items: map[string][]byte{}} }

func (m *memoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = b
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}

type recordingSnapshots struct {
	keys   []string
	values []any
}

func (r *recordingSnapshots) PutJSON(_ context.Context, key string, v any) (string, error) {
	r.keys = append(r.keys, key)
	r.values = append(r.values, v)
	return "bucket/" + key + ".json", nil
}
