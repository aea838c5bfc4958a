// internal/pkg/auth/role.go
package auth

import (
	"fmt"
	"slices"
)

// Role is the closed set of identities the API recognises
type Role string

const (
	RoleSuperAdmin        Role = "super_admin"
	RoleCampusAdmin       Role = "campus_admin"
	RoleRestaurantManager Role = "restaurant_manager"
	RoleUser              Role = "user"
)

// ParseRole converts a token claim into a Role, rejecting anything unknown
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSuperAdmin, RoleCampusAdmin, RoleRestaurantManager, RoleUser:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Action is something a principal may attempt
type Action string

const (
	ActionViewOrders         Action = "orders:view"
	ActionUpdateOrderStatus  Action = "orders:update_status"
	ActionViewAnalytics      Action = "analytics:view"
	ActionManageCatalog      Action = "catalog:manage"
	ActionManageMenu         Action = "menu:manage"
	ActionManageCampusFees   Action = "fees:manage_campus"
	ActionManageGlobalFees   Action = "fees:manage_global"
	ActionManageUniversities Action = "universities:manage"
)

// Scope describes the resource an action targets. Zero values mean
// "not tied to a campus" or "not tied to a restaurant". Resource marks a
// single record whose RestaurantIDs are complete, so an empty list means
// no restaurant owns it.
type Scope struct {
	CampusID      uint
	RestaurantIDs []uint
	Resource      bool
}

// Principal is the authenticated caller
type Principal struct {
	UserID       string
	Email        string
	Role         Role
	CampusID     uint
	RestaurantID uint
}

// Can reports whether the principal may perform action on scope
func (p Principal) Can(action Action, scope Scope) bool {
	switch p.Role {
	case RoleSuperAdmin:
		return true
	case RoleCampusAdmin:
		switch action {
		case ActionManageGlobalFees, ActionManageUniversities:
			return false
		}
		return p.CampusID != 0 && (scope.CampusID == 0 || scope.CampusID == p.CampusID)
	case RoleRestaurantManager:
		switch action {
		case ActionViewOrders, ActionUpdateOrderStatus, ActionViewAnalytics, ActionManageMenu:
		default:
			return false
		}
		if p.RestaurantID == 0 {
			return false
		}
		if len(scope.RestaurantIDs) == 0 {
			if scope.Resource {
				return false
			}
			// listing endpoints narrow to the manager's restaurant themselves
			return scope.CampusID == 0 || scope.CampusID == p.CampusID
		}
		return slices.Contains(scope.RestaurantIDs, p.RestaurantID)
	case RoleUser:
		return false
	default:
		return false
	}
}

// IsStaff reports whether the role belongs to the operations side
func (r Role) IsStaff() bool {
	return r == RoleSuperAdmin || r == RoleCampusAdmin || r == RoleRestaurantManager
}
