package policy

import (
	"context"
	"fmt"
	"time"

	"iam/internal/iam/model"

	"golang.org/x/sync/errgroup"
)

// RoleSource resolves the permanent side of a user's access.
type RoleSource interface {
	FindUserRole(ctx context.Context, userID string) (*model.UserRole, error)
	FindRoleByName(ctx context.Context, name string) (*model.Role, error)
}

// GrantSource resolves the temporary side of a user's access.
type GrantSource interface {
	ListActiveGrantsForUser(ctx context.Context, userID string, now time.Time) ([]*model.TempPermissionGrant, error)
}

// Evaluator computes effective permissions straight from the store on every call.
type Evaluator struct {
	roles  RoleSource
	grants GrantSource
}

func NewEvaluator(roles RoleSource, grants GrantSource) *Evaluator {
	return &Evaluator{roles: roles, grants: grants}
}

// EffectivePermissions returns permanent ∪ active temporary codes for userID at now.
// A user without a role edge has no permanent permissions.
func (e *Evaluator) EffectivePermissions(ctx context.Context, userID string, now time.Time) (model.EffectivePermissions, error) {
	var (
		roles     []string
		permanent []string
		active    []*model.TempPermissionGrant
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ur, err := e.roles.FindUserRole(gctx, userID)
		if err != nil {
			return fmt.Errorf("load user role: %w", err)
		}
		if ur == nil {
			return nil
		}
		roles = []string{ur.RoleName}
		role, err := e.roles.FindRoleByName(gctx, ur.RoleName)
		if err != nil {
			return fmt.Errorf("load role %s: %w", ur.RoleName, err)
		}
		if role != nil {
			permanent = role.Permissions
		}
		return nil
	})

	g.Go(func() error {
		grants, err := e.grants.ListActiveGrantsForUser(gctx, userID, now)
		if err != nil {
			return fmt.Errorf("load temp grants: %w", err)
		}
		for _, gr := range grants {
			if gr.Active(now) {
				active = append(active, gr)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return model.EffectivePermissions{}, err
	}

	return model.NewEffectivePermissions(roles, permanent, active, now), nil
}
