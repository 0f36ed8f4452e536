package model

import "strings"

type ListSessionsReq struct {
	UserID     string `query:"userId" validate:"omitempty,max=64"`
	Identifier string `query:"identifier" validate:"omitempty,max=254"`
	Status     string `query:"status" validate:"oneof=active inactive all"`
	Limit      int    `query:"limit"`
	Cursor     string `query:"cursor" validate:"omitempty,max=64"`
}

func (r *ListSessionsReq) Validate() error {
	r.UserID = strings.TrimSpace(r.UserID)
	r.Identifier = strings.TrimSpace(r.Identifier)
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	if r.Status == "" {
		r.Status = SessionStatusActive
	}
	r.Cursor = strings.TrimSpace(r.Cursor)
	r.Limit = ClampLimit(r.Limit, DefaultSessionPageSize, MaxSessionPageSize)

	if err := GetValidator().Struct(r); err != nil {
		return FormatValidationError(err)
	}
	return nil
}

// RevokeSessionReq matches by exactly one of SessionID or RefreshTokenID.
type RevokeSessionReq struct {
	SessionID      string `json:"sessionId" validate:"omitempty,max=64"`
	RefreshTokenID string `json:"refreshTokenId" validate:"omitempty,max=64"`
}

func (r *RevokeSessionReq) Validate() error {
	r.SessionID = strings.TrimSpace(r.SessionID)
	r.RefreshTokenID = strings.TrimSpace(r.RefreshTokenID)

	if err := GetValidator().Struct(r); err != nil {
		return FormatValidationError(err)
	}
	if (r.SessionID == "") == (r.RefreshTokenID == "") {
		return Invalid("Provide exactly one of sessionId or refreshTokenId")
	}
	return nil
}

type RevokeSessionResp struct {
	Success      bool  `json:"success"`
	UpdatedCount int64 `json:"updatedCount"`
}
