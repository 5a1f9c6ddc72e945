package models

import (
	"time"
)

// Role determines how a caller's tenant is resolved. An ADMIN owns a tenant
// (tenant id == the admin's user id); an AGENT belongs to the tenant of the
// admin that created it. SUPER_ADMIN is the platform operator and is the only
// role allowed to act across tenants.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleAgent      Role = "AGENT"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleAdmin, RoleAgent, RoleSuperAdmin:
		return true
	}
	return false
}

type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
)

// User represents an account. Collection: users.
//
// AdminID and CreatedBy are set for every AGENT and empty for ADMIN accounts;
// the constructor in UserService enforces this.
type User struct {
	ID          string     `bson:"_id,omitempty" json:"id"`
	Email       string     `bson:"email" json:"email"`
	FirstName   string     `bson:"firstName" json:"firstName"`
	LastName    string     `bson:"lastName" json:"lastName"`
	Role        Role       `bson:"role" json:"role"`
	Status      UserStatus `bson:"status" json:"status"`
	Permissions []string   `bson:"permissions,omitempty" json:"permissions,omitempty"`
	AdminID     string     `bson:"adminId,omitempty" json:"adminId,omitempty"`
	CreatedBy   string     `bson:"createdBy,omitempty" json:"createdBy,omitempty"`

	// Billing fields consumed by UsageLimiter. MaxLeads/MaxUsers use -1 as
	// the unlimited sentinel; zero means "use the configured trial default".
	Balance     float64    `bson:"balance" json:"balance"`
	MaxLeads    int        `bson:"maxLeads" json:"maxLeads"`
	MaxUsers    int        `bson:"maxUsers" json:"maxUsers"`
	TrialEndsAt *time.Time `bson:"trialEndsAt,omitempty" json:"trialEndsAt,omitempty"`
	Subscribed  bool       `bson:"subscribed" json:"subscribed"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func (u *User) IsActive() bool {
	return u.Status == UserActive
}

// HasPermission checks a named permission. Admins implicitly hold all
// permissions within their tenant.
func (u *User) HasPermission(permission string) bool {
	if u.Role == RoleAdmin || u.Role == RoleSuperAdmin {
		return true
	}
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// Snapshot is the denormalized user view embedded in activity metadata and
// returned by the assignee projection. It is a read-time shape only; leads
// store a plain reference id.
type Snapshot struct {
	ID        string `bson:"id" json:"id"`
	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`
}

func (u *User) Snapshot() Snapshot {
	return Snapshot{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
}
