package model

import "strings"

type SignupReq struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"omitempty,username"`
	Password string `json:"password" validate:"required,min=12,max=128"`
}

func (r *SignupReq) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.TrimSpace(r.Username)

	if err := GetValidator().Struct(r); err != nil {
		return FormatValidationError(err)
	}
	return nil
}

// LoginReq accepts an email or username as Identifier; Email is a legacy alias.
type LoginReq struct {
	Identifier string `json:"identifier" validate:"max=254"`
	Email      string `json:"email" validate:"max=254"`
	Password   string `json:"password" validate:"required,max=128"`
}

func (r *LoginReq) Validate() error {
	r.Identifier = strings.TrimSpace(r.Identifier)
	if r.Identifier == "" {
		r.Identifier = strings.TrimSpace(r.Email)
	}
	r.Email = ""

	if err := GetValidator().Struct(r); err != nil {
		return FormatValidationError(err)
	}
	if r.Identifier == "" {
		return Invalid("identifier is required")
	}
	return nil
}

type AuthResp struct {
	User      UserSummary `json:"user"`
	Token     string      `json:"token"`
	SessionID string      `json:"sessionId,omitempty"`
}

type CreateUserReq struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"omitempty,username"`
	Password string `json:"password" validate:"required,min=12,max=128"`
}

func (r *CreateUserReq) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.TrimSpace(r.Username)

	if err := GetValidator().Struct(r); err != nil {
		return FormatValidationError(err)
	}
	return nil
}

// UpdateUserReq changes only the fields present; an empty Username clears it.
type UpdateUserReq struct {
	Email      *string `json:"email" validate:"omitempty,email,max=254"`
	Username   *string `json:"username" validate:"omitempty,username"`
	Password   *string `json:"password" validate:"omitempty,min=12,max=128"`
	MFAEnabled *bool   `json:"mfaEnabled"`
}

func (r *UpdateUserReq) Validate() error {
	if r.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &v
	}
	if r.Username != nil {
		v := strings.TrimSpace(*r.Username)
		r.Username = &v
	}

	if err := GetValidator().Struct(r); err != nil {
		return FormatValidationError(err)
	}
	if r.Email != nil && *r.Email == "" {
		return Invalid("email cannot be empty")
	}
	if r.Email == nil && r.Username == nil && r.Password == nil && r.MFAEnabled == nil {
		return Invalid("No changes supplied")
	}
	return nil
}

// UserUpdate is the store-level patch; ClearUsername removes the field.
type UserUpdate struct {
	Email         *string
	Username      *string
	ClearUsername bool
	PasswordHash  *string
	MFAEnabled    *bool
}

type ListUsersReq struct {
	Limit  int    `query:"limit"`
	Cursor string `query:"cursor" validate:"omitempty,max=64"`
}

func (r *ListUsersReq) Validate() error {
	r.Cursor = strings.TrimSpace(r.Cursor)
	r.Limit = ClampLimit(r.Limit, DefaultUserPageSize, MaxUserPageSize)

	if err := GetValidator().Struct(r); err != nil {
		return FormatValidationError(err)
	}
	return nil
}

type LookupUserReq struct {
	Identifier string `query:"identifier" validate:"required,max=254"`
}

func (r *LookupUserReq) Validate() error {
	r.Identifier = strings.TrimSpace(r.Identifier)

	if err := GetValidator().Struct(r); err != nil {
		return FormatValidationError(err)
	}
	return nil
}

type LookupUserResp struct {
	Found bool         `json:"found"`
	User  *UserSummary `json:"user"`
}
