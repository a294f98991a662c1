package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/RestoHub/internal/db"
	"github.com/arzan03/RestoHub/internal/models"
	"github.com/arzan03/RestoHub/internal/storage"
	"github.com/arzan03/RestoHub/internal/utils"
)

// PermissionService hosts the permissions data migration.
type PermissionService struct {
	db        db.Database
	snapshots storage.SnapshotStore
	now       func() time.Time
}

func NewPermissionService(database db.Database, snapshots storage.SnapshotStore) *PermissionService {
	if snapshots == nil {
		snapshots = storage.Discard{}
	}
	return &PermissionService{db: database, snapshots: snapshots, now: time.Now}
}

type FixOptions struct {
	DryRun  bool
	Workers int
}

type FixReport struct {
	Scanned  int    `json:"scanned"`
	Updated  int    `json:"updated"`
	Skipped  int    `json:"skipped"` // fixed concurrently by someone else
	Failed   int    `json:"failed"`
	DryRun   bool   `json:"dryRun"`
	Snapshot string `json:"snapshot,omitempty"`
}

type permissionSnapshot struct {
	ID    primitive.ObjectID `json:"id"`
	Email string             `json:"email"`
	Role  string             `json:"role"`
}

var missingPermissions = bson.M{"permissions": bson.M{"$exists": false}}

// FixMissing sets the role defaults on every user stored without a permissions field.
// The affected users are snapshotted first. Each update re-checks the field is still
// missing, so running the job twice is harmless.
func (s *PermissionService) FixMissing(ctx context.Context, opts FixOptions) (FixReport, error) {
	report := FixReport{DryRun: opts.DryRun}
	collection := s.db.Collection(db.UsersCollection)

	cursor, err := collection.Find(ctx, missingPermissions)
	if err != nil {
		return report, fmt.Errorf("find users without permissions: %w", err)
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return report, fmt.Errorf("decode users: %w", err)
	}
	report.Scanned = len(users)
	if len(users) == 0 {
		return report, nil
	}

	snap := make([]permissionSnapshot, 0, len(users))
	for _, u := range users {
		snap = append(snap, permissionSnapshot{ID: u.ID, Email: u.Email, Role: u.Role})
	}
	location, err := s.snapshots.PutJSON(ctx, storage.SnapshotKey("fix-permissions", s.now()), snap)
	if err != nil {
		return report, fmt.Errorf("snapshot users: %w", err)
	}
	report.Snapshot = location

	if opts.DryRun {
		for _, u := range users {
			logrus.WithFields(logrus.Fields{"user_id": u.ID.Hex(), "role": u.Role}).Info("Would set default permissions")
		}
		return report, nil
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	pool := utils.NewWorkerPool(opts.Workers)
	defer pool.Close()

	for _, u := range users {
		u := u
		pool.AddTask(func() {
			modified, err := s.fixOne(ctx, u)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed++
				errs = append(errs, fmt.Errorf("user %s: %w", u.ID.Hex(), err))
			case modified:
				report.Updated++
			default:
				report.Skipped++
			}
		})
	}
	pool.Wait()

	logrus.WithFields(logrus.Fields{
		"scanned": report.Scanned,
		"updated": report.Updated,
		"skipped": report.Skipped,
		"failed":  report.Failed,
	}).Info("Permission migration finished")
	return report, errors.Join(errs...)
}

func (s *PermissionService) fixOne(ctx context.Context, u models.User) (bool, error) {
	filter := bson.M{"_id": u.ID, "permissions": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{
		"permissions": models.DefaultPermissions(u.Role),
		"updatedAt":   s.now().UTC(),
	}}
	res, err := s.db.Collection(db.UsersCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
