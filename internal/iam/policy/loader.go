package policy

import (
	_ "embed"
	"fmt"
	"net/http"
	"strings"

	"iam/internal/iam/model"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// LoadCatalog parses the embedded catalog.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog decodes and cross-checks a catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	perms := make(map[string]bool, len(c.Permissions))
	for _, p := range c.Permissions {
		if p == "" || perms[p] {
			return fmt.Errorf("catalog: empty or duplicate permission %q", p)
		}
		perms[p] = true
	}

	roles := make(map[string]bool, len(c.Roles))
	for _, r := range c.Roles {
		if r.Name == "" || roles[r.Name] {
			return fmt.Errorf("catalog: empty or duplicate role %q", r.Name)
		}
		roles[r.Name] = true
		for _, p := range r.Permissions {
			if !perms[p] {
				return fmt.Errorf("catalog: role %s references unknown permission %s", r.Name, p)
			}
		}
	}
	if !roles[model.BaseRole] {
		return fmt.Errorf("catalog: base role %q is missing", model.BaseRole)
	}

	routes := make(map[string]bool, len(c.Routes))
	for _, rt := range c.Routes {
		rt.Method = strings.ToUpper(rt.Method)
		switch rt.Method {
		case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			return fmt.Errorf("catalog: route %s has unsupported method", rt.Path)
		}
		if routes[rt.Key()] {
			return fmt.Errorf("catalog: duplicate route %s", rt.Key())
		}
		routes[rt.Key()] = true
		if rt.Require.Empty() {
			return fmt.Errorf("catalog: route %s declares no requirement", rt.Key())
		}
		for _, name := range rt.Require.AnyRole {
			if !roles[name] {
				return fmt.Errorf("catalog: route %s references unknown role %s", rt.Key(), name)
			}
		}
		for _, p := range append(append([]string{}, rt.Require.AllPerms...), rt.Require.AnyPerm...) {
			if !perms[p] {
				return fmt.Errorf("catalog: route %s references unknown permission %s", rt.Key(), p)
			}
		}
	}
	return nil
}
