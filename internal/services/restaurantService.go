package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arzan03/RestoHub/internal/cache"
	"github.com/arzan03/RestoHub/internal/db"
	"github.com/arzan03/RestoHub/internal/events"
	"github.com/arzan03/RestoHub/internal/models"
)

type RestaurantService struct {
	db       db.Database
	cache    cache.Store
	cacheTTL time.Duration
	events   events.Publisher
	now      func() time.Time
}

func NewRestaurantService(database db.Database, store cache.Store, cacheTTL time.Duration, publisher events.Publisher) *RestaurantService {
	if store == nil {
		store = cache.Noop{}
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &RestaurantService{
		db:       database,
		cache:    store,
		cacheTTL: cacheTTL,
		events:   publisher,
		now:      time.Now,
	}
}

type CreateRestaurantInput struct {
	RestaurantName string
	Location       string
	HeadChefID     string
	PlanType       string // defaults to basic
	BillingCycle   string // defaults to monthly
}

// Create onboards a restaurant for an existing user, who becomes its head chef.
// The subscription starts as pending until billing confirms it.
func (s *RestaurantService) Create(ctx context.Context, in CreateRestaurantInput) (models.Restaurant, models.User, error) {
	name := strings.TrimSpace(in.RestaurantName)
	location := strings.TrimSpace(in.Location)
	if name == "" || location == "" {
		return models.Restaurant{}, models.User{}, fmt.Errorf("%w: restaurantName and location are required", ErrValidation)
	}
	plan := strings.ToLower(strings.TrimSpace(in.PlanType))
	if plan == "" {
		plan = models.PlanBasic
	}
	cycle := strings.ToLower(strings.TrimSpace(in.BillingCycle))
	if cycle == "" {
		cycle = models.BillingMonthly
	}
	if !models.IsValidPlan(plan) || !models.IsValidBillingCycle(cycle) {
		return models.Restaurant{}, models.User{}, fmt.Errorf("%w: %q/%q", ErrInvalidPlan, plan, cycle)
	}
	chefID, err := parseID(in.HeadChefID)
	if err != nil {
		return models.Restaurant{}, models.User{}, err
	}

	users := s.db.Collection(db.UsersCollection)
	restaurants := s.db.Collection(db.RestaurantsCollection)

	var chef models.User
	err = users.FindOne(ctx, bson.M{"_id": chefID}).Decode(&chef)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Restaurant{}, models.User{}, ErrHeadChefNotFound
	}
	if err != nil {
		return models.Restaurant{}, models.User{}, fmt.Errorf("find head chef: %w", err)
	}

	var existing models.Restaurant
	err = restaurants.FindOne(ctx, bson.M{"headChefId": chefID}).Decode(&existing)
	if err == nil {
		return models.Restaurant{}, models.User{}, ErrRestaurantExists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Restaurant{}, models.User{}, fmt.Errorf("%w: lookup restaurant: %w", ErrCreationFailed, err)
	}

	now := s.now().UTC()
	restaurant := models.Restaurant{
		ID:                 primitive.NewObjectID(),
		RestaurantName:     name,
		Location:           location,
		HeadChefID:         chefID,
		PlanType:           plan,
		BillingCycle:       cycle,
		SubscriptionStatus: models.SubscriptionPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if _, err := restaurants.InsertOne(ctx, restaurant); err != nil {
		// A concurrent onboarding won the unique head_chef index.
		if mongo.IsDuplicateKeyError(err) {
			return models.Restaurant{}, models.User{}, ErrRestaurantExists
		}
		return models.Restaurant{}, models.User{}, fmt.Errorf("%w: insert restaurant: %w", ErrCreationFailed, err)
	}

	// Platform admins keep their role when they onboard a restaurant for themselves.
	if chef.Role != models.RoleAdmin {
		chef.Role = models.RoleHeadChef
	}
	perms := models.FullPermissions()
	chef.Permissions = &perms
	chef.RestaurantID = &restaurant.ID
	chef.UpdatedAt = now
	_, err = users.UpdateOne(ctx, bson.M{"_id": chefID}, bson.M{"$set": bson.M{
		"role":         chef.Role,
		"permissions":  perms,
		"restaurantId": restaurant.ID,
		"updatedAt":    now,
	}})
	if err != nil {
		s.discardRestaurant(ctx, restaurant.ID)
		return models.Restaurant{}, models.User{}, fmt.Errorf("%w: link head chef: %w", ErrCreationFailed, err)
	}

	publish(ctx, s.events, events.Event{
		Entity:     "restaurant",
		Action:     "created",
		ResourceID: restaurant.ID.Hex(),
		Metadata: map[string]string{
			"headChefId":   chefID.Hex(),
			"planType":     plan,
			"billingCycle": cycle,
		},
		Data: restaurant,
	})
	logrus.WithFields(logrus.Fields{
		"restaurant_id": restaurant.ID.Hex(),
		"head_chef_id":  chefID.Hex(),
		"plan_type":     plan,
	}).Info("Restaurant created")
	return restaurant, chef, nil
}

// discardRestaurant removes a restaurant whose head chef could not be linked, so the
// onboarding can be retried.
func (s *RestaurantService) discardRestaurant(ctx context.Context, id primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, err := s.db.Collection(db.RestaurantsCollection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		logrus.WithFields(logrus.Fields{
			"restaurant_id": id.Hex(),
			"error":         err.Error(),
		}).Error("Failed to remove unlinked restaurant")
	}
}

// Get reads a restaurant through the cache.
func (s *RestaurantService) Get(ctx context.Context, id string) (models.Restaurant, error) {
	objID, err := parseID(id)
	if err != nil {
		return models.Restaurant{}, err
	}
	key := cache.RestaurantKey(objID.Hex())

	var restaurant models.Restaurant
	found, err := s.cache.Get(ctx, key, &restaurant)
	if err == nil && found {
		return restaurant, nil
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache read failed")
	}

	err = s.db.Collection(db.RestaurantsCollection).FindOne(ctx, bson.M{"_id": objID}).Decode(&restaurant)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Restaurant{}, ErrNotFound
	}
	if err != nil {
		return models.Restaurant{}, fmt.Errorf("find restaurant: %w", err)
	}

	if err := s.cache.Set(ctx, key, restaurant, s.cacheTTL); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache write failed")
	}
	return restaurant, nil
}

// RestaurantPatch holds the editable fields; nil fields are left untouched.
type RestaurantPatch struct {
	RestaurantName *string
	Location       *string
}

// Update applies patch and drops the cached copy.
func (s *RestaurantService) Update(ctx context.Context, id string, patch RestaurantPatch) (models.Restaurant, error) {
	objID, err := parseID(id)
	if err != nil {
		return models.Restaurant{}, err
	}
	set := bson.M{"updatedAt": s.now().UTC()}
	if patch.RestaurantName != nil {
		v := strings.TrimSpace(*patch.RestaurantName)
		if v == "" {
			return models.Restaurant{}, fmt.Errorf("%w: restaurantName cannot be empty", ErrValidation)
		}
		set["restaurantName"] = v
	}
	if patch.Location != nil {
		v := strings.TrimSpace(*patch.Location)
		if v == "" {
			return models.Restaurant{}, fmt.Errorf("%w: location cannot be empty", ErrValidation)
		}
		set["location"] = v
	}

	var updated models.Restaurant
	err = s.db.Collection(db.RestaurantsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Restaurant{}, ErrNotFound
	}
	if err != nil {
		return models.Restaurant{}, fmt.Errorf("update restaurant: %w", err)
	}

	if err := s.cache.Delete(ctx, cache.RestaurantKey(objID.Hex())); err != nil {
		logrus.WithFields(logrus.Fields{"restaurant_id": objID.Hex(), "error": err.Error()}).Warn("Cache invalidation failed")
	}
	return updated, nil
}

// List returns one page of restaurants, newest first, and the total count.
func (s *RestaurantService) List(ctx context.Context, page, size int) ([]models.Restaurant, int64, error) {
	page, size = NormalizePage(page, size)
	collection := s.db.Collection(db.RestaurantsCollection)

	total, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count restaurants: %w", err)
	}
	cursor, err := collection.Find(ctx, bson.M{}, findOptions(page, size))
	if err != nil {
		return nil, 0, fmt.Errorf("find restaurants: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.Restaurant{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("decode restaurants: %w", err)
	}
	return out, total, nil
}
