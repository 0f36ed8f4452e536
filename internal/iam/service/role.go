package service

import (
	"context"
	"errors"
	"fmt"

	"iam/internal/iam/model"
	"iam/internal/iam/repository"
	"iam/internal/iam/util"
)

// AssignRole replaces the target's single role edge in one transaction.
func (s *Service) AssignRole(ctx context.Context, caller model.Caller, req model.AssignRoleReq) (*model.RoleChangeResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	role, err := s.Store.FindRoleByName(ctx, req.RoleName)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, model.Invalid("Role not found")
	}

	target, err := s.Store.FindUserByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrNotFound
	}

	previous, err := s.replaceRole(ctx, target.ID, role, caller.UserID)
	if err != nil {
		return nil, err
	}

	s.record(ctx, caller, model.ActionRoleAssign, target.ID, map[string]any{
		"targetUserId":    target.ID,
		"targetUserEmail": target.Email,
		"previousRole":    previous,
		"newRole":         role.Name,
	})

	return &model.RoleChangeResp{Success: true, Role: role.Name}, nil
}

// RemoveRole resets the target to the base role. Removing the base role itself is rejected.
func (s *Service) RemoveRole(ctx context.Context, caller model.Caller, req model.RemoveRoleReq) (*model.RoleChangeResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	target, err := s.Store.FindUserByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrNotFound
	}

	base, err := s.Store.FindRoleByName(ctx, model.BaseRole)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return nil, fmt.Errorf("base role %q is not seeded", model.BaseRole)
	}

	previous, err := s.replaceRole(ctx, target.ID, base, caller.UserID)
	if err != nil {
		return nil, err
	}

	s.record(ctx, caller, model.ActionRoleReset, target.ID, map[string]any{
		"targetUserId":    target.ID,
		"targetUserEmail": target.Email,
		"removedRole":     req.RoleName,
		"previousRole":    previous,
		"newRole":         model.BaseRole,
	})

	return &model.RoleChangeResp{Success: true, Role: model.BaseRole}, nil
}

// replaceRole writes the new edge. A duplicate from a concurrent writer that left the
// same role in place counts as success; any other outcome of the race is a conflict.
func (s *Service) replaceRole(ctx context.Context, userID string, role *model.Role, actorID string) (string, error) {
	now := s.now()
	edge := &model.UserRole{
		ID:         util.NewIDAt(now),
		UserID:     userID,
		RoleID:     role.ID,
		RoleName:   role.Name,
		AssignedBy: actorID,
		CreatedAt:  now,
	}

	previous, err := s.Store.ReplaceUserRole(ctx, edge)
	if err == nil {
		return previous, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return "", err
	}

	current, findErr := s.Store.FindUserRole(ctx, userID)
	if findErr != nil {
		return "", findErr
	}
	if current != nil && current.RoleName == role.Name {
		logger().Info("role already assigned", "user_id", userID, "role", role.Name)
		return role.Name, nil
	}
	return "", ErrConflict
}
