package model

import "time"

type GrantFilter struct {
	UserID     string
	ActiveOnly bool
	Now        time.Time
}

// SessionFilter narrows on the active flag only; expiry is not consulted.
type SessionFilter struct {
	UserID string
	Status string
}

// SessionSelector picks sessions to revoke by id or by refresh token id.
type SessionSelector struct {
	SessionID      string
	RefreshTokenID string
}

type AuditFilter struct {
	UserID string
	Action string
}
