package model

import (
	"errors"
	"time"
)

// ErrInvalid is matched by every *ErrorDetail with the bad_request code.
var ErrInvalid = errors.New("invalid input")

// ErrorResponse for consistent error handling
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (e *ErrorDetail) Error() string {
	return e.Message
}

func (e *ErrorDetail) Unwrap() error {
	if e.Code == "bad_request" {
		return ErrInvalid
	}
	return nil
}

// Invalid builds a bad_request error with a caller-facing message.
func Invalid(msg string) *ErrorDetail {
	return &ErrorDetail{Code: "bad_request", Message: msg}
}

type User struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	Username     string    `json:"username,omitempty" bson:"username,omitempty"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	MFAEnabled   bool      `json:"mfaEnabled" bson:"mfa_enabled"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
}

// UserSummary is the public projection embedded in other responses.
type UserSummary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Username: u.Username}
}

// Role is a named permission bundle. Permissions holds the RolePermission edges.
type Role struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Permissions []string  `json:"permissions" bson:"permissions"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
}

type Permission struct {
	ID   string `json:"id" bson:"_id"`
	Code string `json:"code" bson:"code"`
}

// UserRole is the single role edge of a user.
type UserRole struct {
	ID         string    `json:"id" bson:"_id"`
	UserID     string    `json:"userId" bson:"user_id"`
	RoleID     string    `json:"roleId" bson:"role_id"`
	RoleName   string    `json:"roleName" bson:"role_name"`
	AssignedBy string    `json:"assignedBy,omitempty" bson:"assigned_by,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
}

type TempPermissionGrant struct {
	ID          string    `json:"id" bson:"_id"`
	UserID      string    `json:"userId" bson:"user_id"`
	Permission  string    `json:"permission" bson:"permission"`
	ExpiresAt   time.Time `json:"expiresAt" bson:"expires_at"`
	GrantedByID string    `json:"grantedById" bson:"granted_by_id"`
	Reason      string    `json:"reason,omitempty" bson:"reason,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
}

// Active reports whether the grant still confers its permission at now.
func (g *TempPermissionGrant) Active(now time.Time) bool {
	return g.ExpiresAt.After(now)
}

type Session struct {
	ID             string    `json:"id" bson:"_id"`
	UserID         string    `json:"userId" bson:"user_id"`
	RefreshTokenID string    `json:"refreshTokenId" bson:"refresh_token_id"`
	UserAgent      string    `json:"userAgent,omitempty" bson:"user_agent,omitempty"`
	IP             string    `json:"ip,omitempty" bson:"ip,omitempty"`
	Active         bool      `json:"active" bson:"active"`
	CreatedAt      time.Time `json:"createdAt" bson:"created_at"`
	ExpiresAt      time.Time `json:"expiresAt" bson:"expires_at"`
}

// Usable requires both the active flag and an unexpired window; expiry never flips the flag.
func (s *Session) Usable(now time.Time) bool {
	return s.Active && s.ExpiresAt.After(now)
}

type AuditLog struct {
	ID        string         `json:"id" bson:"_id"`
	UserID    string         `json:"userId,omitempty" bson:"user_id,omitempty"`
	ActorID   string         `json:"actorId,omitempty" bson:"actor_id,omitempty"`
	Action    string         `json:"action" bson:"action"`
	IP        string         `json:"ip,omitempty" bson:"ip,omitempty"`
	Meta      map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
	CreatedAt time.Time      `json:"createdAt" bson:"created_at"`
}

// AuditEntry is what a mutation hands to the audit sink.
type AuditEntry struct {
	Action  string
	Subject string
	Caller  Caller
	Meta    map[string]any
}

// Caller identifies who issued a request and from where.
type Caller struct {
	UserID    string
	IP        string
	UserAgent string
	RequestID string
}
