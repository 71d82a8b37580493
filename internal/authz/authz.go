// Package authz holds the single tenant-scoped authorization decision
// core. Handlers never branch on roles directly; they ask this package
// and translate a denial into a 403.
package authz

import (
	"github.com/planhive/planhive/internal/apiserver/database"
)

// Identity is the authenticated caller resolved from token claims.
// TenantID is nil only for the super administrator.
type Identity struct {
	UserID   string
	TenantID *string
	Role     database.UserRole
}

// Decision is the outcome of an authorization check
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// restrictedTenantFields may only be set by the super administrator
var restrictedTenantFields = map[string]bool{
	"status":           true,
	"subscriptionPlan": true,
	"maxUsers":         true,
	"maxProjects":      true,
}

func (i Identity) isSuperAdmin() bool {
	return i.Role == database.RoleSuperAdmin
}

func (i Identity) inTenant(tenantID string) bool {
	return i.TenantID != nil && *i.TenantID == tenantID
}

// CanAccessTenant decides whether the caller may read a tenant's details
func CanAccessTenant(id Identity, tenantID string) Decision {
	if id.isSuperAdmin() || id.inTenant(tenantID) {
		return allow()
	}
	return deny("unauthorized access")
}

// CanListTenants decides whether the caller may list all tenants
func CanListTenants(id Identity) Decision {
	if id.isSuperAdmin() {
		return allow()
	}
	return deny("only the super administrator can list tenants")
}

// CanUpdateTenant decides whether the caller may apply the given field set
// to a tenant. A tenant administrator setting any restricted field denies
// the whole request; no partial application.
func CanUpdateTenant(id Identity, tenantID string, fields []string) Decision {
	if id.isSuperAdmin() {
		return allow()
	}
	if !id.inTenant(tenantID) {
		return deny("unauthorized access")
	}
	if id.Role != database.RoleTenantAdmin {
		return deny("only a tenant administrator can update the tenant")
	}
	for _, f := range fields {
		if restrictedTenantFields[f] {
			return deny("you are not allowed to update these fields")
		}
	}
	return allow()
}

// CanListUsers decides whether the caller may list a tenant's users
func CanListUsers(id Identity, tenantID string) Decision {
	if id.isSuperAdmin() {
		return allow()
	}
	if id.inTenant(tenantID) && id.Role == database.RoleTenantAdmin {
		return allow()
	}
	return deny("unauthorized access")
}

// CanAddUser decides whether the caller may add a user to a tenant
func CanAddUser(id Identity, tenantID string) Decision {
	if id.inTenant(tenantID) && id.Role == database.RoleTenantAdmin {
		return allow()
	}
	return deny("not authorized")
}

// CanModifyUser decides whether the caller may update or delete the target
// user through the user-management endpoints. Self-service goes through
// the profile path, so the caller's own account is always denied here.
func CanModifyUser(id Identity, target *database.User) Decision {
	if id.Role != database.RoleTenantAdmin {
		return deny("not authorized")
	}
	if target.TenantID == nil || !id.inTenant(*target.TenantID) {
		return deny("unauthorized access")
	}
	if target.ID == id.UserID {
		return deny("cannot manage your own account here")
	}
	return allow()
}

// CanAccessProject decides whether the caller may act on a tenant's
// projects and tasks. Any active member of the owning tenant qualifies;
// the super administrator carries no tenant scope and is excluded.
func CanAccessProject(id Identity, tenantID string) Decision {
	if id.inTenant(tenantID) {
		return allow()
	}
	return deny("unauthorized access")
}
