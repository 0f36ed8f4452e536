package model

import (
	"slices"
	"time"
)

// EffectivePermissions is the evaluated access of one user at one instant.
// All slices are sorted and deduplicated.
type EffectivePermissions struct {
	Roles      []string               `json:"roles"`
	Permanent  []string               `json:"permanent"`
	Temporary  []string               `json:"temporary"`
	Combined   []string               `json:"combined"`
	TempGrants []*TempPermissionGrant `json:"tempGrants"`
	At         time.Time              `json:"-"`
}

// NewEffectivePermissions builds the union of permanent and temporary codes.
func NewEffectivePermissions(roles, permanent []string, grants []*TempPermissionGrant, at time.Time) EffectivePermissions {
	temporary := make([]string, 0, len(grants))
	for _, g := range grants {
		temporary = append(temporary, g.Permission)
	}
	if grants == nil {
		grants = []*TempPermissionGrant{}
	}
	combined := make([]string, 0, len(permanent)+len(temporary))
	combined = append(combined, permanent...)
	combined = append(combined, temporary...)
	return EffectivePermissions{
		Roles:      sortedSet(roles),
		Permanent:  sortedSet(permanent),
		Temporary:  sortedSet(temporary),
		Combined:   sortedSet(combined),
		TempGrants: grants,
		At:         at,
	}
}

func (e EffectivePermissions) Has(code string) bool {
	_, found := slices.BinarySearch(e.Combined, code)
	return found
}

func (e EffectivePermissions) HasRole(name string) bool {
	_, found := slices.BinarySearch(e.Roles, name)
	return found
}

// Principal is the authenticated caller, built once per request and never mutated.
type Principal struct {
	User      User
	SessionID string
	Access    EffectivePermissions
}

func (p *Principal) UserID() string {
	if p == nil {
		return ""
	}
	return p.User.ID
}

func (p *Principal) HasPermission(code string) bool {
	return p != nil && p.Access.Has(code)
}

func (p *Principal) HasRole(name string) bool {
	return p != nil && p.Access.HasRole(name)
}

type PermissionBreakdown struct {
	Permanent []string `json:"permanent"`
	Temporary []string `json:"temporary"`
	Combined  []string `json:"combined"`
}

// MeResponse is the effective profile of the caller.
type MeResponse struct {
	User        UserSummary            `json:"user"`
	Roles       []string               `json:"roles"`
	Permissions PermissionBreakdown    `json:"permissions"`
	TempGrants  []*TempPermissionGrant `json:"tempGrants"`
}

func NewMeResponse(p *Principal) MeResponse {
	return MeResponse{
		User:  p.User.Summary(),
		Roles: p.Access.Roles,
		Permissions: PermissionBreakdown{
			Permanent: p.Access.Permanent,
			Temporary: p.Access.Temporary,
			Combined:  p.Access.Combined,
		},
		TempGrants: p.Access.TempGrants,
	}
}

func sortedSet(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
