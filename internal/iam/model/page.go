package model

// PageRequest is a keyset page: Cursor is the id of the last row already seen.
type PageRequest struct {
	Limit  int
	Cursor string
}

// FetchLimit is how many rows a store must return so overflow can be detected.
func (p PageRequest) FetchLimit() int {
	return p.Limit + 1
}

type Page[T any] struct {
	Items      []T
	NextCursor *string
	HasMore    bool
}

// Paginate trims rows fetched with FetchLimit down to limit and derives the next cursor.
func Paginate[T any](rows []T, limit int, idOf func(T) string) Page[T] {
	page := Page[T]{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		page.HasMore = true
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	if page.HasMore && len(page.Items) > 0 {
		next := idOf(page.Items[len(page.Items)-1])
		page.NextCursor = &next
	}
	return page
}

// ClampLimit applies a default to non-positive limits and caps the rest.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

type GrantListResp struct {
	Grants     []*TempPermissionGrant `json:"grants"`
	NextCursor *string                `json:"nextCursor"`
	HasMore    bool                   `json:"hasMore"`
}

type SessionListResp struct {
	Sessions   []*Session `json:"sessions"`
	NextCursor *string    `json:"nextCursor"`
	HasMore    bool       `json:"hasMore"`
}

type AuditLogListResp struct {
	Logs       []*AuditLog `json:"logs"`
	NextCursor *string     `json:"nextCursor"`
	HasMore    bool        `json:"hasMore"`
}

type UserListResp struct {
	Users      []*User `json:"users"`
	NextCursor *string `json:"nextCursor"`
	HasMore    bool    `json:"hasMore"`
}
