package model

// Roles seeded into the catalog.
const (
	RoleAdmin           = "admin"
	RoleManager         = "manager"
	RoleSecurityAnalyst = "security_analyst"
	RoleAuditor         = "auditor"
	RoleUser            = "user"

	// BaseRole is what every user falls back to; it can never be removed.
	BaseRole = RoleUser
)

// Permission codes.
const (
	PermUserRead      = "USER_READ"
	PermUserCreate    = "USER_CREATE"
	PermUserUpdate    = "USER_UPDATE"
	PermUserDelete    = "USER_DELETE"
	PermRoleAssign    = "ROLE_ASSIGN"
	PermAuditRead     = "AUDIT_READ"
	PermSessionRead   = "SESSION_READ"
	PermSessionRevoke = "SESSION_REVOKE"
	PermTempGrant     = "TEMP_GRANT"
)

// Audit actions.
const (
	ActionSignup               = "SIGNUP"
	ActionLogin                = "LOGIN"
	ActionRoleAssign           = "ROLE_ASSIGN"
	ActionRoleReset            = "ROLE_RESET"
	ActionTempPermissionGrant  = "TEMP_PERMISSION_GRANT"
	ActionTempPermissionRevoke = "TEMP_PERMISSION_REVOKE"
	ActionSessionRevoke        = "SESSION_REVOKE"
	ActionUserRead             = "USER_READ"
	ActionUserCreate           = "USER_CREATE"
	ActionUserUpdate           = "USER_UPDATE"
	ActionUserDelete           = "USER_DELETE"
)

// Session list status filter.
const (
	SessionStatusActive   = "active"
	SessionStatusInactive = "inactive"
	SessionStatusAll      = "all"
)

// Temporary grant bounds, in minutes.
const (
	MinGrantMinutes = 1
	MaxGrantMinutes = 30
)

// Page sizes per listing.
const (
	DefaultGrantPageSize   = 100
	MaxGrantPageSize       = 500
	DefaultSessionPageSize = 30
	MaxSessionPageSize     = 200
	DefaultAuditPageSize   = 100
	MaxAuditPageSize       = 500
	DefaultUserPageSize    = 50
	MaxUserPageSize        = 200
)
