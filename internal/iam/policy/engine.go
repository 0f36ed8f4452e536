package policy

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"iam/internal/iam/model"
	"iam/internal/iam/util"
)

// Engine answers catalog questions and makes guard decisions.
type Engine struct {
	catalog *Catalog
	routes  map[string]Requirement
}

// NewEngine builds an engine from the embedded catalog.
func NewEngine() (*Engine, error) {
	c, err := LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return NewEngineFromCatalog(c), nil
}

func NewEngineFromCatalog(c *Catalog) *Engine {
	routes := make(map[string]Requirement, len(c.Routes))
	for _, rt := range c.Routes {
		routes[RouteKey(strings.ToUpper(rt.Method), rt.Path)] = rt.Require
	}
	return &Engine{catalog: c, routes: routes}
}

// Requirement returns the declared requirement for a route template.
func (e *Engine) Requirement(method, path string) (Requirement, bool) {
	r, ok := e.routes[RouteKey(method, path)]
	return r, ok
}

// Authorize decides a request. Undeclared routes are denied.
func (e *Engine) Authorize(method, path string, p *model.Principal) Decision {
	if p == nil {
		return DecisionUnauthenticated
	}
	req, ok := e.Requirement(method, path)
	if !ok || !req.Allows(p) {
		return DecisionDeny
	}
	return DecisionAllow
}

// Permissions lists every permission code in the catalog.
func (e *Engine) Permissions() []string {
	return append([]string(nil), e.catalog.Permissions...)
}

// KnownPermission reports whether code is declared in the catalog.
func (e *Engine) KnownPermission(code string) bool {
	return slices.Contains(e.catalog.Permissions, code)
}

// RolePermissions returns the catalog bundle of a role.
func (e *Engine) RolePermissions(name string) ([]string, bool) {
	for _, r := range e.catalog.Roles {
		if r.Name == name {
			return append([]string(nil), r.Permissions...), true
		}
	}
	return nil, false
}

// SeedRoles converts the catalog roles into store records stamped at now.
func (e *Engine) SeedRoles(now time.Time) []*model.Role {
	roles := make([]*model.Role, 0, len(e.catalog.Roles))
	for _, r := range e.catalog.Roles {
		roles = append(roles, &model.Role{
			ID:          util.NewIDAt(now),
			Name:        r.Name,
			Permissions: append([]string(nil), r.Permissions...),
			CreatedAt:   now,
		})
	}
	return roles
}
