package service

import (
	"context"
	"errors"
	"fmt"

	"iam/internal/iam/model"
	"iam/internal/iam/repository"
	"iam/internal/iam/util"
)

// createUser inserts a user holding roleName.
func (s *Service) createUser(ctx context.Context, email, username, password, roleName string) (*model.User, error) {
	role, err := s.Store.FindRoleByName(ctx, roleName)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("role %q is not seeded", roleName)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		ID:           util.NewIDAt(now),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	edge := &model.UserRole{
		ID:        util.NewIDAt(now),
		UserID:    user.ID,
		RoleID:    role.ID,
		RoleName:  role.Name,
		CreatedAt: now,
	}

	if err := s.Store.CreateUser(ctx, user, edge); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, req model.ListUsersReq) (*model.UserListResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	page := model.PageRequest{Limit: req.Limit, Cursor: req.Cursor}
	rows, err := s.Store.ListUsers(ctx, page)
	if err != nil {
		return nil, cursorErr(err)
	}

	p := model.Paginate(rows, page.Limit, func(u *model.User) string { return u.ID })
	return &model.UserListResp{Users: p.Items, NextCursor: p.NextCursor, HasMore: p.HasMore}, nil
}

func (s *Service) CreateUser(ctx context.Context, caller model.Caller, req model.CreateUserReq) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, req.Email, req.Username, req.Password, model.BaseRole)
	if err != nil {
		return nil, err
	}

	s.record(ctx, caller, model.ActionUserCreate, user.ID, map[string]any{
		"email":    user.Email,
		"username": user.Username,
	})
	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, caller model.Caller, id string, req model.UpdateUserReq) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var changed []string
	upd := model.UserUpdate{Email: req.Email, MFAEnabled: req.MFAEnabled}
	if req.Email != nil {
		changed = append(changed, "email")
	}
	if req.MFAEnabled != nil {
		changed = append(changed, "mfaEnabled")
	}
	if req.Username != nil {
		changed = append(changed, "username")
		if *req.Username == "" {
			upd.ClearUsername = true
		} else {
			upd.Username = req.Username
		}
	}
	if req.Password != nil {
		hash, err := HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		upd.PasswordHash = &hash
		changed = append(changed, "password")
	}

	user, err := s.Store.UpdateUser(ctx, id, upd)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	s.record(ctx, caller, model.ActionUserUpdate, user.ID, map[string]any{
		"targetUserId": user.ID,
		"changed":      changed,
	})
	return user, nil
}

// DeleteUser cascades through every record owned by the user.
func (s *Service) DeleteUser(ctx context.Context, caller model.Caller, id string) error {
	target, err := s.Store.FindUserByID(ctx, id)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrNotFound
	}

	deleted, err := s.Store.DeleteUserCascade(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}

	s.record(ctx, caller, model.ActionUserDelete, target.ID, map[string]any{
		"targetUserId":    target.ID,
		"targetUserEmail": target.Email,
	})
	return nil
}

func (s *Service) LookupUser(ctx context.Context, caller model.Caller, req model.LookupUserReq) (*model.LookupUserResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.Store.FindUserByIdentifier(ctx, req.Identifier)
	if err != nil {
		return nil, err
	}

	resp := &model.LookupUserResp{Found: user != nil}
	subject := ""
	if user != nil {
		summary := user.Summary()
		resp.User = &summary
		subject = user.ID
	}

	s.record(ctx, caller, model.ActionUserRead, subject, map[string]any{
		"identifier": req.Identifier,
		"found":      resp.Found,
	})
	return resp, nil
}
