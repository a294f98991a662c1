package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/arzan03/RestoHub/internal/cache"
	"github.com/arzan03/RestoHub/internal/models"
)

func TestCreateRestaurant(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	chef := models.User{
		ID:          primitive.NewObjectID(),
		Name:        "Colette",
		Email:       "colette@example.com",
		Role:        models.RoleStaff,
		Permissions: ptrPerms(models.DefaultPermissions(models.RoleStaff)),
	}

	mt.Run("onboards head chef", func(mt *mtest.T) {
		mt.AddMockResponses(
			cursorOf(usersNS, userDoc(mt.T, chef)),
			emptyCursor(restaurantsNS),
			mtest.CreateSuccessResponse(),
			updated(1, 1),
		)
		pub := &recordingPublisher{}
		svc := NewRestaurantService(mt.DB, nil, time.Minute, pub)

		restaurant, user, err := svc.Create(ctx, CreateRestaurantInput{
			RestaurantName: " Gusteau's ",
			Location:       "Paris",
			HeadChefID:     chef.ID.Hex(),
			PlanType:       "Pro",
		})
		require.NoError(mt, err)
		assert.Equal(mt, "Gusteau's", restaurant.RestaurantName)
		assert.Equal(mt, models.PlanPro, restaurant.PlanType)
		assert.Equal(mt, models.BillingMonthly, restaurant.BillingCycle)
		assert.Equal(mt, models.SubscriptionPending, restaurant.SubscriptionStatus)
		assert.Equal(mt, chef.ID, restaurant.HeadChefID)

		assert.Equal(mt, models.RoleHeadChef, user.Role)
		require.NotNil(mt, user.RestaurantID)
		assert.Equal(mt, restaurant.ID, *user.RestaurantID)
		assert.Equal(mt, models.FullPermissions(), user.EffectivePermissions())

		evs := pub.all()
		require.Len(mt, evs, 1)
		assert.Equal(mt, "restaurant", evs[0].Entity)
		assert.Equal(mt, "created", evs[0].Action)
		assert.Equal(mt, "pro", evs[0].Metadata["planType"])
	})

	mt.Run("admin keeps role", func(mt *mtest.T) {
		admin := chef
		admin.Role = models.RoleAdmin
		mt.AddMockResponses(
			cursorOf(usersNS, userDoc(mt.T, admin)),
			emptyCursor(restaurantsNS),
			mtest.CreateSuccessResponse(),
			updated(1, 1),
		)
		svc := NewRestaurantService(mt.DB, nil, time.Minute, nil)

		_, user, err := svc.Create(ctx, CreateRestaurantInput{RestaurantName: "Admin Bistro", Location: "Lyon", HeadChefID: admin.ID.Hex()})
		require.NoError(mt, err)
		assert.Equal(mt, models.RoleAdmin, user.Role)
	})

	mt.Run("head chef already has a restaurant", func(mt *mtest.T) {
		existing := models.Restaurant{ID: primitive.NewObjectID(), RestaurantName: "Old", HeadChefID: chef.ID}
		mt.AddMockResponses(
			cursorOf(usersNS, userDoc(mt.T, chef)),
			cursorOf(restaurantsNS, restaurantDoc(mt.T, existing)),
		)
		svc := NewRestaurantService(mt.DB, nil, time.Minute, nil)

		_, _, err := svc.Create(ctx, CreateRestaurantInput{RestaurantName: "New", Location: "Paris", HeadChefID: chef.ID.Hex()})
		assert.ErrorIs(mt, err, ErrRestaurantExists)
	})

	mt.Run("concurrent onboarding hits unique index", func(mt *mtest.T) {
		mt.AddMockResponses(
			cursorOf(usersNS, userDoc(mt.T, chef)),
			emptyCursor(restaurantsNS),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error collection: restohub.restaurants index: head_chef"}),
		)
		pub := &recordingPublisher{}
		svc := NewRestaurantService(mt.DB, nil, time.Minute, pub)

		_, _, err := svc.Create(ctx, CreateRestaurantInput{RestaurantName: "New", Location: "Paris", HeadChefID: chef.ID.Hex()})
		assert.ErrorIs(mt, err, ErrRestaurantExists)
		assert.Empty(mt, pub.all())
	})

	mt.Run("failed link removes the restaurant", func(mt *mtest.T) {
		mt.AddMockResponses(
			cursorOf(usersNS, userDoc(mt.T, chef)),
			emptyCursor(restaurantsNS),
			mtest.CreateSuccessResponse(),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11601, Message: "interrupted"}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)
		pub := &recordingPublisher{}
		svc := NewRestaurantService(mt.DB, nil, time.Minute, pub)

		_, _, err := svc.Create(ctx, CreateRestaurantInput{RestaurantName: "New", Location: "Paris", HeadChefID: chef.ID.Hex()})
		assert.ErrorIs(mt, err, ErrCreationFailed)
		assert.Empty(mt, pub.all())

		started := mt.GetAllStartedEvents()
		var commands []string
		for _, ev := range started {
			commands = append(commands, ev.CommandName)
		}
		require.Equal(mt, []string{"find", "find", "insert", "update", "delete"}, commands)

		inserted := started[2].Command.Lookup("documents", "0", "_id").ObjectID()
		deleted := started[4].Command.Lookup("deletes", "0", "q", "_id").ObjectID()
		assert.Equal(mt, inserted, deleted)
	})

	mt.Run("head chef not found", func(mt *mtest.T) {
		mt.AddMockResponses(emptyCursor(usersNS))
		svc := NewRestaurantService(mt.DB, nil, time.Minute, nil)

		_, _, err := svc.Create(ctx, CreateRestaurantInput{RestaurantName: "New", Location: "Paris", HeadChefID: primitive.NewObjectID().Hex()})
		assert.ErrorIs(mt, err, ErrHeadChefNotFound)
	})

	mt.Run("rejects bad input", func(mt *mtest.T) {
		svc := NewRestaurantService(mt.DB, nil, time.Minute, nil)

		_, _, err := svc.Create(ctx, CreateRestaurantInput{Location: "Paris", HeadChefID: chef.ID.Hex()})
		assert.ErrorIs(mt, err, ErrValidation)

		_, _, err = svc.Create(ctx, CreateRestaurantInput{RestaurantName: "New", Location: "Paris", HeadChefID: chef.ID.Hex(), PlanType: "platinum"})
		assert.ErrorIs(mt, err, ErrInvalidPlan)

		_, _, err = svc.Create(ctx, CreateRestaurantInput{RestaurantName: "New", Location: "Paris", HeadChefID: chef.ID.Hex(), BillingCycle: "weekly"})
		assert.ErrorIs(mt, err, ErrInvalidPlan)

		_, _, err = svc.Create(ctx, CreateRestaurantInput{RestaurantName: "New", Location: "Paris", HeadChefID: "nope"})
		assert.ErrorIs(mt, err, ErrInvalidID)
	})
}

func TestGetRestaurantUsesCache(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("read through", func(mt *mtest.T) {
		r := models.Restaurant{
			ID:                 primitive.NewObjectID(),
			RestaurantName:     "Gusteau's",
			Location:           "Paris",
			HeadChefID:         primitive.NewObjectID(),
			PlanType:           models.PlanBasic,
			BillingCycle:       models.BillingMonthly,
			SubscriptionStatus: models.SubscriptionActive,
		}
		mt.AddMockResponses(cursorOf(restaurantsNS, restaurantDoc(mt.T, r)))
		store := newMemoryCache()
		svc := NewRestaurantService(mt.DB, store, time.Minute, nil)

		first, err := svc.Get(ctx, r.ID.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, r.RestaurantName, first.RestaurantName)
		assert.True(mt, store.has(cache.RestaurantKey(r.ID.Hex())))

		// No mock response is queued, so this must be served from the cache.
		second, err := svc.Get(ctx, r.ID.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, first.ID, second.ID)
		assert.Equal(mt, models.SubscriptionActive, second.SubscriptionStatus)
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(emptyCursor(restaurantsNS))
		svc := NewRestaurantService(mt.DB, newMemoryCache(), time.Minute, nil)

		_, err := svc.Get(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestUpdateRestaurant(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("applies patch and invalidates cache", func(mt *mtest.T) {
		r := models.Restaurant{ID: primitive.NewObjectID(), RestaurantName: "Renamed", Location: "Paris"}
		store := newMemoryCache()
		key := cache.RestaurantKey(r.ID.Hex())
		require.NoError(mt, store.Set(ctx, key, models.Restaurant{ID: r.ID, RestaurantName: "Old"}, time.Minute))

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: restaurantDoc(mt.T, r)}))
		svc := NewRestaurantService(mt.DB, store, time.Minute, nil)

		name := "Renamed"
		got, err := svc.Update(ctx, r.ID.Hex(), RestaurantPatch{RestaurantName: &name})
		require.NoError(mt, err)
		assert.Equal(mt, "Renamed", got.RestaurantName)
		assert.False(mt, store.has(key))
	})

	mt.Run("missing restaurant", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))
		svc := NewRestaurantService(mt.DB, nil, time.Minute, nil)

		loc := "Lyon"
		_, err := svc.Update(ctx, primitive.NewObjectID().Hex(), RestaurantPatch{Location: &loc})
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("empty name", func(mt *mtest.T) {
		svc := NewRestaurantService(mt.DB, nil, time.Minute, nil)

		blank := "  "
		_, err := svc.Update(ctx, primitive.NewObjectID().Hex(), RestaurantPatch{RestaurantName: &blank})
		assert.ErrorIs(mt, err, ErrValidation)
	})
}

func TestListRestaurants(t *testing.T) {
	mt := newMock(t)

	mt.Run("page", func(mt *mtest.T) {
		a := models.Restaurant{ID: primitive.NewObjectID(), RestaurantName: "A"}
		b := models.Restaurant{ID: primitive.NewObjectID(), RestaurantName: "B"}
		mt.AddMockResponses(
			cursorOf(restaurantsNS, bson.D{{Key: "n", Value: int32(2)}}),
			cursorOf(restaurantsNS, restaurantDoc(mt.T, a), restaurantDoc(mt.T, b)),
		)
		svc := NewRestaurantService(mt.DB, nil, time.Minute, nil)

		list, total, err := svc.List(context.Background(), 0, 0)
		require.NoError(mt, err)
		assert.EqualValues(mt, 2, total)
		require.Len(mt, list, 2)
		assert.Equal(mt, "A", list[0].RestaurantName)
	})
}
