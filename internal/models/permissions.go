package models

// Permissions is the flat set of capability flags stored on every user document.
type Permissions struct {
	CanManageMenu      bool `bson:"canManageMenu" json:"canManageMenu"`
	CanManageOrders    bool `bson:"canManageOrders" json:"canManageOrders"`
	CanManageStaff     bool `bson:"canManageStaff" json:"canManageStaff"`
	CanManageInventory bool `bson:"canManageInventory" json:"canManageInventory"`
	CanViewReports     bool `bson:"canViewReports" json:"canViewReports"`
	CanManageBilling   bool `bson:"canManageBilling" json:"canManageBilling"`
	CanManageSettings  bool `bson:"canManageSettings" json:"canManageSettings"`
}

// Permission flag names, matching the bson/json field names.
const (
	PermManageMenu      = "canManageMenu"
	PermManageOrders    = "canManageOrders"
	PermManageStaff     = "canManageStaff"
	PermManageInventory = "canManageInventory"
	PermViewReports     = "canViewReports"
	PermManageBilling   = "canManageBilling"
	PermManageSettings  = "canManageSettings"
)

// FullPermissions grants every capability.
func FullPermissions() Permissions {
	return Permissions{
		CanManageMenu:      true,
		CanManageOrders:    true,
		CanManageStaff:     true,
		CanManageInventory: true,
		CanViewReports:     true,
		CanManageBilling:   true,
		CanManageSettings:  true,
	}
}

// DefaultPermissions returns the permissions a user of the given role starts with.
// Unknown roles get nothing.
func DefaultPermissions(role string) Permissions {
	switch role {
	case RoleAdmin, RoleHeadChef:
		return FullPermissions()
	case RoleStaff:
		return Permissions{CanManageOrders: true}
	default:
		return Permissions{}
	}
}

// Has reports whether the named flag is granted. Unknown names are never granted.
func (p Permissions) Has(flag string) bool {
	switch flag {
	case PermManageMenu:
		return p.CanManageMenu
	case PermManageOrders:
		return p.CanManageOrders
	case PermManageStaff:
		return p.CanManageStaff
	case PermManageInventory:
		return p.CanManageInventory
	case PermViewReports:
		return p.CanViewReports
	case PermManageBilling:
		return p.CanManageBilling
	case PermManageSettings:
		return p.CanManageSettings
	}
	return false
}

// Covers reports whether p grants at least everything other grants.
func (p Permissions) Covers(other Permissions) bool {
	return (p.CanManageMenu || !other.CanManageMenu) &&
		(p.CanManageOrders || !other.CanManageOrders) &&
		(p.CanManageStaff || !other.CanManageStaff) &&
		(p.CanManageInventory || !other.CanManageInventory) &&
		(p.CanViewReports || !other.CanViewReports) &&
		(p.CanManageBilling || !other.CanManageBilling) &&
		(p.CanManageSettings || !other.CanManageSettings)
}
