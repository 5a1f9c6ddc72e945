// Package tenant resolves the effective tenant for a caller and builds the
// query filters every repository must use. Scope is only constructible
// through Resolve/ForTenant, so there is no code path that reads or writes
// tenant-owned data without a tenant filter.
package tenant

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/white/lead-management/internal/apperrors"
	"github.com/white/lead-management/internal/models"
)

// Caller is the identity supplied by the external identity provider.
type Caller struct {
	UserID   string
	Role     models.Role
	TenantID string // set for AGENT, empty for ADMIN
}

// Scope carries the resolved tenant id. The field is unexported on purpose:
// callers cannot fabricate a scope for an arbitrary tenant.
type Scope struct {
	tenantID string
}

// Resolve determines the effective tenant for a caller. An ADMIN owns its own
// tenant; an AGENT inherits the tenant of its creating admin. An agent record
// without a tenant id is corrupt and is rejected rather than defaulted.
func Resolve(caller Caller) (Scope, error) {
	switch caller.Role {
	case models.RoleAdmin:
		if caller.UserID == "" {
			return Scope{}, apperrors.Unauthorizedf("missing user id")
		}
		return Scope{tenantID: caller.UserID}, nil
	case models.RoleAgent:
		if caller.TenantID == "" {
			return Scope{}, apperrors.Unauthorizedf("agent %s has no tenant", caller.UserID)
		}
		return Scope{tenantID: caller.TenantID}, nil
	default:
		return Scope{}, apperrors.Unauthorizedf("role %q cannot be scoped to a single tenant", caller.Role)
	}
}

// ForTenant builds a scope for an explicit tenant. Only SUPER_ADMIN may do
// this; it is the entry point for cross-tenant administration such as tenant
// teardown.
func ForTenant(caller Caller, tenantID string) (Scope, error) {
	if caller.Role != models.RoleSuperAdmin {
		return Scope{}, apperrors.Unauthorizedf("role %q may not address tenant %s directly", caller.Role, tenantID)
	}
	if tenantID == "" {
		return Scope{}, apperrors.Validationf("tenant id is required")
	}
	return Scope{tenantID: tenantID}, nil
}

func (s Scope) TenantID() string {
	return s.tenantID
}

// Filter merges the tenant id into a query filter. The extra filter is copied,
// never mutated, and any adminId the caller tried to smuggle in is overwritten.
func (s Scope) Filter(extra bson.M) bson.M {
	filter := bson.M{}
	for k, v := range extra {
		filter[k] = v
	}
	filter["adminId"] = s.tenantID
	return filter
}
