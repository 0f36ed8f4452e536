package model

import "strings"

// AssignRoleReq replaces the target user's role with RoleName.
type AssignRoleReq struct {
	UserID   string `json:"userId" validate:"required,max=64"`
	RoleName string `json:"roleName" validate:"required,max=64"`
}

func (r *AssignRoleReq) Validate() error {
	r.UserID = strings.TrimSpace(r.UserID)
	r.RoleName = strings.ToLower(strings.TrimSpace(r.RoleName))

	if err := GetValidator().Struct(r); err != nil {
		return FormatValidationError(err)
	}
	return nil
}

// RemoveRoleReq resets the target user to the base role.
type RemoveRoleReq struct {
	UserID   string `json:"userId" validate:"required,max=64"`
	RoleName string `json:"roleName" validate:"required,max=64"`
}

func (r *RemoveRoleReq) Validate() error {
	r.UserID = strings.TrimSpace(r.UserID)
	r.RoleName = strings.ToLower(strings.TrimSpace(r.RoleName))

	if err := GetValidator().Struct(r); err != nil {
		return FormatValidationError(err)
	}
	if r.RoleName == BaseRole {
		return Invalid("Base role 'user' cannot be removed")
	}
	return nil
}

// RoleChangeResp answers both assign and remove.
type RoleChangeResp struct {
	Success bool   `json:"success"`
	Role    string `json:"role"`
}
