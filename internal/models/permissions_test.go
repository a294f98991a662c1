package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDefaultPermissions(t *testing.T) {
	assert.Equal(t, FullPermissions(), DefaultPermissions(RoleHeadChef))
	assert.Equal(t, FullPermissions(), DefaultPermissions(RoleAdmin))
	assert.Equal(t, Permissions{CanManageOrders: true}, DefaultPermissions(RoleStaff))
	assert.Equal(t, Permissions{}, DefaultPermissions("sommelier"))
}

func TestPermissions_Has(t *testing.T) {
	p := Permissions{CanManageStaff: true}
	assert.True(t, p.Has(PermManageStaff))
	assert.False(t, p.Has(PermManageBilling))
	assert.False(t, FullPermissions().Has("canFly"))
}

func TestPermissions_Covers(t *testing.T) {
	full := FullPermissions()
	staff := DefaultPermissions(RoleStaff)
	assert.True(t, full.Covers(staff))
	assert.False(t, staff.Covers(full))
	assert.True(t, staff.Covers(Permissions{}))
}

func TestUser_EffectivePermissions(t *testing.T) {
	legacy := User{Role: RoleStaff}
	assert.Equal(t, DefaultPermissions(RoleStaff), legacy.EffectivePermissions())

	custom := Permissions{CanViewReports: true}
	u := User{Role: RoleStaff, Permissions: &custom}
	assert.Equal(t, custom, u.EffectivePermissions())
}

func TestUser_BelongsTo(t *testing.T) {
	rid := primitive.NewObjectID()
	assert.False(t, User{}.BelongsTo(rid))
	assert.True(t, User{RestaurantID: &rid}.BelongsTo(rid))
	other := primitive.NewObjectID()
	assert.False(t, User{RestaurantID: &other}.BelongsTo(rid))
}
