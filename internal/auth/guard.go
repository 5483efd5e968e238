package auth

import (
	"errors"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/user"
)

// Typed authorization failures. The API boundary maps them to 401/403;
// nothing downstream re-checks.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("forbidden")
)

// Identity is the caller resolved from a verified session token. It is
// passed explicitly into every check; there is no ambient current-user.
type Identity struct {
	UID     string    `json:"uid"`
	Role    user.Role `json:"role"`
	StoreID int64     `json:"store_id,omitempty"`
}

// RequireRole passes when the caller holds one of the allowed roles.
func RequireRole(id *Identity, allowed ...user.Role) error {
	if id == nil {
		return ErrNotAuthenticated
	}
	for _, r := range allowed {
		if id.Role == r {
			return nil
		}
	}
	return ErrForbidden
}

// RequireStoreOwnership passes for a super_admin on any store, and for a
// store_owner on its own store. Staff and customers never pass.
func RequireStoreOwnership(id *Identity, storeID int64) error {
	if id == nil {
		return ErrNotAuthenticated
	}
	switch id.Role {
	case user.RoleSuperAdmin:
		return nil
	case user.RoleStoreOwner:
		if id.StoreID == storeID {
			return nil
		}
	}
	return ErrForbidden
}

// RequireCategoryWrite gates category mutations: super_admin or the owning
// store_owner only.
func RequireCategoryWrite(id *Identity, storeID int64) error {
	return RequireStoreOwnership(id, storeID)
}

// RequireOrderRefund gates refunds: super_admin or the owning store_owner
// only, regardless of who else can see the order.
func RequireOrderRefund(id *Identity, storeID int64) error {
	return RequireStoreOwnership(id, storeID)
}

// RequireUserProfileUpdate allows self-service profile edits and
// super_admin edits of anyone, independent of store.
func RequireUserProfileUpdate(id *Identity, targetUID string) error {
	if id == nil {
		return ErrNotAuthenticated
	}
	if id.Role == user.RoleSuperAdmin || id.UID == targetUID {
		return nil
	}
	return ErrForbidden
}
