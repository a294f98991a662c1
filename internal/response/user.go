package response

import (
	"time"

	"github.com/arzan03/RestoHub/internal/models"
)

// PublicUser is the projection of a user record that leaves the API.
type PublicUser struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	Role         string             `json:"role"`
	Permissions  models.Permissions `json:"permissions"`
	RestaurantID string             `json:"restaurantId,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// ToPublicUser projects u. Missing permissions are filled from the role defaults.
func ToPublicUser(u models.User) PublicUser {
	pu := PublicUser{
		ID:          u.ID.Hex(),
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Permissions: u.EffectivePermissions(),
		CreatedAt:   u.CreatedAt,
	}
	if u.RestaurantID != nil {
		pu.RestaurantID = u.RestaurantID.Hex()
	}
	return pu
}

func ToPublicUsers(users []models.User) []PublicUser {
	out := make([]PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, ToPublicUser(u))
	}
	return out
}
