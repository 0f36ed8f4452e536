package model

import (
	"math"
	"strings"
)

// GrantTempPermissionReq issues a time-bound permission. permissionCode and minutes are accepted aliases.
type GrantTempPermissionReq struct {
	UserID          string   `json:"userId" validate:"omitempty,max=64"`
	Identifier      string   `json:"identifier" validate:"omitempty,max=254"`
	Permission      string   `json:"permission" validate:"max=64"`
	PermissionCode  string   `json:"permissionCode"`
	DurationMinutes *float64 `json:"durationMinutes"`
	Minutes         *float64 `json:"minutes"`
	Reason          string   `json:"reason" validate:"max=500"`
}

func (r *GrantTempPermissionReq) Validate() error {
	r.UserID = strings.TrimSpace(r.UserID)
	r.Identifier = strings.TrimSpace(r.Identifier)
	r.Permission = strings.TrimSpace(r.Permission)
	if r.Permission == "" {
		r.Permission = strings.TrimSpace(r.PermissionCode)
	}
	r.PermissionCode = ""
	if r.DurationMinutes == nil {
		r.DurationMinutes = r.Minutes
	}
	r.Minutes = nil
	r.Reason = strings.TrimSpace(r.Reason)

	if err := GetValidator().Struct(r); err != nil {
		return FormatValidationError(err)
	}
	if r.UserID == "" && r.Identifier == "" {
		return Invalid("userId or identifier is required")
	}
	return ValidateGrantTerms(r.Permission, r.DurationMinutes)
}

// Duration returns the validated whole-minute duration.
func (r *GrantTempPermissionReq) Duration() int {
	if r.DurationMinutes == nil {
		return 0
	}
	return int(*r.DurationMinutes)
}

// ValidateGrantTerms enforces the permission code and the 1-30 whole-minute window.
func ValidateGrantTerms(permission string, minutes *float64) error {
	if permission == "" {
		return Invalid("permission is required")
	}
	if strings.EqualFold(permission, RoleAdmin) {
		return Invalid("Temporary grants take permission codes, not role names")
	}
	if minutes == nil {
		return Invalid("durationMinutes is required")
	}
	d := *minutes
	if math.IsNaN(d) || math.IsInf(d, 0) || d != math.Trunc(d) {
		return Invalid("durationMinutes must be a whole number")
	}
	if d < MinGrantMinutes || d > MaxGrantMinutes {
		return Invalid("durationMinutes must be between 1 and 30")
	}
	return nil
}

type GrantTempPermissionResp struct {
	Success bool                 `json:"success"`
	Grant   *TempPermissionGrant `json:"grant"`
}

// ListTempPermissionsReq lists grants newest first; ActiveOnly defaults to true.
type ListTempPermissionsReq struct {
	UserID     string `query:"userId" validate:"omitempty,max=64"`
	Identifier string `query:"identifier" validate:"omitempty,max=254"`
	ActiveOnly string `query:"activeOnly" validate:"omitempty,oneof=true false 1 0"`
	Limit      int    `query:"limit"`
	Cursor     string `query:"cursor" validate:"omitempty,max=64"`
}

func (r *ListTempPermissionsReq) Validate() error {
	r.UserID = strings.TrimSpace(r.UserID)
	r.Identifier = strings.TrimSpace(r.Identifier)
	r.ActiveOnly = strings.ToLower(strings.TrimSpace(r.ActiveOnly))
	r.Cursor = strings.TrimSpace(r.Cursor)
	r.Limit = ClampLimit(r.Limit, DefaultGrantPageSize, MaxGrantPageSize)

	if err := GetValidator().Struct(r); err != nil {
		return FormatValidationError(err)
	}
	return nil
}

// OnlyActive reports whether expired grants should be filtered out.
func (r *ListTempPermissionsReq) OnlyActive() bool {
	return r.ActiveOnly != "false" && r.ActiveOnly != "0"
}

type RevokeTempPermissionReq struct {
	GrantID string `json:"grantId" validate:"required,max=64"`
	Reason  string `json:"reason" validate:"max=500"`
}

func (r *RevokeTempPermissionReq) Validate() error {
	r.GrantID = strings.TrimSpace(r.GrantID)
	r.Reason = strings.TrimSpace(r.Reason)

	if err := GetValidator().Struct(r); err != nil {
		return FormatValidationError(err)
	}
	return nil
}

type RevokeTempPermissionResp struct {
	Success        bool   `json:"success"`
	RevokedGrantID string `json:"revokedGrantId"`
}
