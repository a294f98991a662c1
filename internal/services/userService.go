package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arzan03/RestoHub/internal/db"
	"github.com/arzan03/RestoHub/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// NormalizePage clamps page to >= 1 and size to 1..100 (default 20).
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func findOptions(page, size int) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * size)).
		SetLimit(int64(size))
}

func parseID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return objID, nil
}

type UserService struct {
	db  db.Database
	now func() time.Time
}

func NewUserService(database db.Database) *UserService {
	return &UserService{db: database, now: time.Now}
}

func (s *UserService) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var user models.User
	err := s.db.Collection(db.UsersCollection).FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	objID, err := parseID(id)
	if err != nil {
		return models.User{}, err
	}
	return s.findOne(ctx, bson.M{"_id": objID})
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

// List returns one page of users, newest first, and the total count.
func (s *UserService) List(ctx context.Context, page, size int) ([]models.User, int64, error) {
	page, size = NormalizePage(page, size)
	collection := s.db.Collection(db.UsersCollection)

	total, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	cursor, err := collection.Find(ctx, bson.M{}, findOptions(page, size))
	if err != nil {
		return nil, 0, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}
	return users, total, nil
}

// UpdatePermissions replaces the permissions of targetID on behalf of actorID.
//
// Admins may edit anyone. Otherwise the actor needs canManageStaff, must share the
// target's restaurant and cannot grant a flag it does not hold itself. A head chef's
// permissions can never drop below the full set.
func (s *UserService) UpdatePermissions(ctx context.Context, actorID, targetID string, perms models.Permissions) (models.User, error) {
	actor, err := s.Get(ctx, actorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.User{}, fmt.Errorf("%w: actor no longer exists", ErrForbidden)
		}
		return models.User{}, err
	}
	target, err := s.Get(ctx, targetID)
	if err != nil {
		return models.User{}, err
	}

	if actor.Role != models.RoleAdmin {
		actorPerms := actor.EffectivePermissions()
		if !actorPerms.CanManageStaff {
			return models.User{}, fmt.Errorf("%w: missing %s", ErrForbidden, models.PermManageStaff)
		}
		if actor.RestaurantID == nil || !target.BelongsTo(*actor.RestaurantID) {
			return models.User{}, fmt.Errorf("%w: user belongs to another restaurant", ErrForbidden)
		}
		if !actorPerms.Covers(perms) {
			return models.User{}, fmt.Errorf("%w: cannot grant permissions you do not hold", ErrForbidden)
		}
	}
	if target.Role == models.RoleHeadChef && !perms.Covers(models.FullPermissions()) {
		return models.User{}, fmt.Errorf("%w: head chef permissions cannot be reduced", ErrForbidden)
	}

	now := s.now().UTC()
	res, err := s.db.Collection(db.UsersCollection).UpdateOne(ctx,
		bson.M{"_id": target.ID},
		bson.M{"$set": bson.M{"permissions": perms, "updatedAt": now}},
	)
	if err != nil {
		return models.User{}, fmt.Errorf("update permissions: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.User{}, ErrNotFound
	}

	logrus.WithFields(logrus.Fields{
		"actor_id":  actor.ID.Hex(),
		"target_id": target.ID.Hex(),
	}).Info("Permissions updated")

	target.Permissions = &perms
	target.UpdatedAt = now
	return target, nil
}
