package model

import "strings"

type ListAuditLogsReq struct {
	UserID     string `query:"userId" validate:"omitempty,max=64"`
	Identifier string `query:"identifier" validate:"omitempty,max=254"`
	Action     string `query:"action" validate:"omitempty,max=64"`
	Limit      int    `query:"limit"`
	Cursor     string `query:"cursor" validate:"omitempty,max=64"`
}

func (r *ListAuditLogsReq) Validate() error {
	r.UserID = strings.TrimSpace(r.UserID)
	r.Identifier = strings.TrimSpace(r.Identifier)
	r.Action = strings.ToUpper(strings.TrimSpace(r.Action))
	r.Cursor = strings.TrimSpace(r.Cursor)
	r.Limit = ClampLimit(r.Limit, DefaultAuditPageSize, MaxAuditPageSize)

	if err := GetValidator().Struct(r); err != nil {
		return FormatValidationError(err)
	}
	return nil
}
