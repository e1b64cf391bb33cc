package domain

import "time"

// AdminRole enumerates console operator roles.
type AdminRole string

const (
	AdminRoleSuperAdmin AdminRole = "super_admin"
	AdminRoleAdmin      AdminRole = "admin"
	AdminRoleModerator  AdminRole = "moderator"
)

// Rank orders roles for listings, super admins first.
func (r AdminRole) Rank() int {
	switch r {
	case AdminRoleSuperAdmin:
		return 0
	case AdminRoleAdmin:
		return 1
	case AdminRoleModerator:
		return 2
	}
	return 3
}

// Valid reports whether r is a known role.
func (r AdminRole) Valid() bool {
	return r.Rank() < 3
}

// Console permissions.
const (
	PermissionUsers           = "users"
	PermissionKYC             = "kyc"
	PermissionAccounts        = "accounts"
	PermissionTransactions    = "transactions"
	PermissionSupport         = "support"
	PermissionReports         = "reports"
	PermissionSettings        = "settings"
	PermissionAdminManagement = "admin_management"
)

// AllPermissions lists every console permission, granted to seeded super admins.
var AllPermissions = []string{
	PermissionUsers,
	PermissionKYC,
	PermissionAccounts,
	PermissionTransactions,
	PermissionSupport,
	PermissionReports,
	PermissionSettings,
	PermissionAdminManagement,
}

// IsPermission reports whether p is one of AllPermissions.
func IsPermission(p string) bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}

// AdminUser is an authenticated operator of the console.
type AdminUser struct {
	UID         string
	Email       string
	Name        string
	Role        AdminRole
	Permissions []string
	Active      bool
	LastLogin   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Identity is what the identity provider knows about a signed-in subject.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
}

// Credential is a locally stored sign-in secret for an identity.
type Credential struct {
	UID          string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}

// featurePermissions maps console features to the permission names that unlock them,
// including the long-form names older admin records carry.
var featurePermissions = map[string][]string{
	PermissionUsers:           {PermissionUsers, "user_management"},
	PermissionKYC:             {PermissionKYC, "kyc_management"},
	PermissionAccounts:        {PermissionAccounts, "account_management"},
	PermissionTransactions:    {PermissionTransactions, "transaction_management"},
	PermissionSupport:         {PermissionSupport, "support_management"},
	PermissionReports:         {PermissionReports, "report_management"},
	PermissionSettings:        {PermissionSettings, "system_management"},
	PermissionAdminManagement: {PermissionAdminManagement, "super_admin"},
}

// HasPermission is true for every permission when the role is super_admin, otherwise only
// for permissions listed on the record. The active flag is enforced at sign-in, not here.
func (a *AdminUser) HasPermission(permission string) bool {
	if a == nil {
		return false
	}
	if a.Role == AdminRoleSuperAdmin {
		return true
	}
	for _, p := range a.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CanAccess reports whether any permission mapped to feature is held.
func (a *AdminUser) CanAccess(feature string) bool {
	for _, p := range featurePermissions[feature] {
		if a.HasPermission(p) {
			return true
		}
	}
	return false
}
