package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can hold. Head chefs administer a single restaurant tenant.
const (
	RoleAdmin    = "admin"
	RoleHeadChef = "headChef"
	RoleStaff    = "staff"
)

type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string              `bson:"name" json:"name"`
	Email        string              `bson:"email" json:"email"`
	Password     string              `bson:"password,omitempty" json:"-"`
	Role         string              `bson:"role" json:"role"`
	Permissions  *Permissions        `bson:"permissions,omitempty" json:"permissions,omitempty"` // nil on legacy documents
	RestaurantID *primitive.ObjectID `bson:"restaurantId,omitempty" json:"restaurantId,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleHeadChef, RoleStaff:
		return true
	}
	return false
}

// EffectivePermissions returns the stored permissions, or the role defaults when the
// document predates the permissions field.
func (u User) EffectivePermissions() Permissions {
	if u.Permissions != nil {
		return *u.Permissions
	}
	return DefaultPermissions(u.Role)
}

// BelongsTo reports whether the user is attached to the given restaurant.
func (u User) BelongsTo(restaurantID primitive.ObjectID) bool {
	return u.RestaurantID != nil && *u.RestaurantID == restaurantID
}
