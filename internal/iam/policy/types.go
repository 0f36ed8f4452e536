package policy

import "iam/internal/iam/model"

// Requirement is the predicate a route demands. Every non-empty clause must hold.
type Requirement struct {
	Authenticated bool     `yaml:"authenticated"`
	AnyRole       []string `yaml:"any_role"`
	AllPerms      []string `yaml:"all_perms"`
	AnyPerm       []string `yaml:"any_perm"`
}

// Empty reports whether the requirement declares nothing at all.
func (r Requirement) Empty() bool {
	return !r.Authenticated && len(r.AnyRole) == 0 && len(r.AllPerms) == 0 && len(r.AnyPerm) == 0
}

// Allows evaluates the predicate against a principal. A nil principal never passes.
func (r Requirement) Allows(p *model.Principal) bool {
	if p == nil || r.Empty() {
		return false
	}
	if len(r.AnyRole) > 0 && !anyOf(r.AnyRole, p.HasRole) {
		return false
	}
	if len(r.AnyPerm) > 0 && !anyOf(r.AnyPerm, p.HasPermission) {
		return false
	}
	for _, perm := range r.AllPerms {
		if !p.HasPermission(perm) {
			return false
		}
	}
	return true
}

func anyOf(items []string, has func(string) bool) bool {
	for _, item := range items {
		if has(item) {
			return true
		}
	}
	return false
}

type RoleSpec struct {
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type Route struct {
	Method  string      `yaml:"method"`
	Path    string      `yaml:"path"`
	Require Requirement `yaml:"require"`
}

// Key is the lookup key used by the guard middleware.
func (r Route) Key() string {
	return RouteKey(r.Method, r.Path)
}

func RouteKey(method, path string) string {
	return method + ":" + path
}

type Catalog struct {
	Permissions []string   `yaml:"permissions"`
	Roles       []RoleSpec `yaml:"roles"`
	Routes      []Route    `yaml:"routes"`
}

// Decision is the outcome of a guard check.
type Decision string

const (
	DecisionAllow           Decision = "allow"
	DecisionDeny            Decision = "deny"
	DecisionUnauthenticated Decision = "unauthenticated"
)
