package service

import (
	"context"

	"iam/internal/iam/model"
)

// ListSessions pages sessions newest first, filtered on the active flag.
func (s *Service) ListSessions(ctx context.Context, req model.ListSessionsReq) (*model.SessionListResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	userID, err := s.resolveSubject(ctx, req.UserID, req.Identifier)
	if err != nil {
		return nil, err
	}
	if userID == "" && req.Identifier != "" {
		return &model.SessionListResp{Sessions: []*model.Session{}}, nil
	}

	page := model.PageRequest{Limit: req.Limit, Cursor: req.Cursor}
	rows, err := s.Store.ListSessions(ctx, model.SessionFilter{UserID: userID, Status: req.Status}, page)
	if err != nil {
		return nil, cursorErr(err)
	}

	p := model.Paginate(rows, page.Limit, func(sess *model.Session) string { return sess.ID })
	return &model.SessionListResp{Sessions: p.Items, NextCursor: p.NextCursor, HasMore: p.HasMore}, nil
}

// RevokeSession deactivates sessions matching one key. Revocation is terminal.
func (s *Service) RevokeSession(ctx context.Context, caller model.Caller, req model.RevokeSessionReq) (*model.RevokeSessionResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		sess *model.Session
		err  error
	)
	where := map[string]any{}
	if req.SessionID != "" {
		where["sessionId"] = req.SessionID
		sess, err = s.Store.FindSession(ctx, req.SessionID)
	} else {
		where["refreshTokenId"] = req.RefreshTokenID
		sess, err = s.Store.FindSessionByRefreshToken(ctx, req.RefreshTokenID)
	}
	if err != nil {
		return nil, err
	}
	var subject string
	if sess != nil {
		subject = sess.UserID
	}

	n, err := s.Store.RevokeSessions(ctx, model.SessionSelector{SessionID: req.SessionID, RefreshTokenID: req.RefreshTokenID})
	if err != nil {
		return nil, err
	}

	s.record(ctx, caller, model.ActionSessionRevoke, subject, map[string]any{
		"where":        where,
		"updatedCount": n,
	})

	return &model.RevokeSessionResp{Success: true, UpdatedCount: n}, nil
}
