package model

import "github.com/google/uuid"

// Role is the access level carried by an authenticated identity.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// Identity is the authenticated caller.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

// Anonymous reports whether no user is attached.
func (i Identity) Anonymous() bool {
	return i.UserID == uuid.Nil
}

// CanManageOrders reports whether the caller may act on orders of other customers.
func (i Identity) CanManageOrders() bool {
	return i.Role == RoleAdmin || i.Role == RoleSeller
}
