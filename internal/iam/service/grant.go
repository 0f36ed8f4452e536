package service

import (
	"context"
	"time"

	"iam/internal/iam/metrics"
	"iam/internal/iam/model"
	"iam/internal/iam/util"
)

// GrantTempPermission issues a grant that expires DurationMinutes from now.
func (s *Service) GrantTempPermission(ctx context.Context, caller model.Caller, req model.GrantTempPermissionReq) (*model.TempPermissionGrant, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var target *model.User
	var err error
	if req.UserID != "" {
		target, err = s.Store.FindUserByID(ctx, req.UserID)
	} else {
		target, err = s.Store.FindUserByIdentifier(ctx, req.Identifier)
	}
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrNotFound
	}

	now := s.now()
	grant := &model.TempPermissionGrant{
		ID:          util.NewIDAt(now),
		UserID:      target.ID,
		Permission:  req.Permission,
		ExpiresAt:   now.Add(time.Duration(req.Duration()) * time.Minute),
		GrantedByID: caller.UserID,
		Reason:      req.Reason,
		CreatedAt:   now,
	}
	if err := s.Store.CreateGrant(ctx, grant); err != nil {
		return nil, err
	}
	label := grant.Permission
	if !s.Engine.KnownPermission(label) {
		label = metrics.OtherPermission
	}
	s.Metrics.GrantIssued(label)

	s.record(ctx, caller, model.ActionTempPermissionGrant, target.ID, map[string]any{
		"targetUserId":     target.ID,
		"targetIdentifier": req.Identifier,
		"permission":       grant.Permission,
		"durationMinutes":  req.Duration(),
		"expiresAt":        grant.ExpiresAt,
		"reason":           grant.Reason,
	})

	return grant, nil
}

// ListTempPermissions pages grants newest first. An identifier matching nobody yields an empty page.
func (s *Service) ListTempPermissions(ctx context.Context, req model.ListTempPermissionsReq) (*model.GrantListResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	userID, err := s.resolveSubject(ctx, req.UserID, req.Identifier)
	if err != nil {
		return nil, err
	}
	if userID == "" && req.Identifier != "" {
		return &model.GrantListResp{Grants: []*model.TempPermissionGrant{}}, nil
	}

	filter := model.GrantFilter{UserID: userID, ActiveOnly: req.OnlyActive(), Now: s.now()}
	page := model.PageRequest{Limit: req.Limit, Cursor: req.Cursor}
	rows, err := s.Store.ListGrants(ctx, filter, page)
	if err != nil {
		return nil, cursorErr(err)
	}

	p := model.Paginate(rows, page.Limit, func(g *model.TempPermissionGrant) string { return g.ID })
	return &model.GrantListResp{Grants: p.Items, NextCursor: p.NextCursor, HasMore: p.HasMore}, nil
}

// RevokeTempPermission hard-deletes a grant, expired or not.
func (s *Service) RevokeTempPermission(ctx context.Context, caller model.Caller, req model.RevokeTempPermissionReq) (*model.RevokeTempPermissionResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	grant, err := s.Store.FindGrant(ctx, req.GrantID)
	if err != nil {
		return nil, err
	}
	if grant == nil {
		return nil, ErrNotFound
	}

	deleted, err := s.Store.DeleteGrant(ctx, grant.ID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, ErrNotFound
	}

	s.record(ctx, caller, model.ActionTempPermissionRevoke, grant.UserID, map[string]any{
		"grantId":      grant.ID,
		"targetUserId": grant.UserID,
		"permission":   grant.Permission,
		"expiresAt":    grant.ExpiresAt,
		"wasExpired":   !grant.Active(s.now()),
		"reason":       req.Reason,
	})

	return &model.RevokeTempPermissionResp{Success: true, RevokedGrantID: grant.ID}, nil
}
