package service

import (
	"context"

	"iam/internal/iam/model"
)

func (s *Service) ListAuditLogs(ctx context.Context, req model.ListAuditLogsReq) (*model.AuditLogListResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	userID, err := s.resolveSubject(ctx, req.UserID, req.Identifier)
	if err != nil {
		return nil, err
	}
	if userID == "" && req.Identifier != "" {
		return &model.AuditLogListResp{Logs: []*model.AuditLog{}}, nil
	}

	page := model.PageRequest{Limit: req.Limit, Cursor: req.Cursor}
	rows, err := s.Store.ListAuditLogs(ctx, model.AuditFilter{UserID: userID, Action: req.Action}, page)
	if err != nil {
		return nil, cursorErr(err)
	}

	p := model.Paginate(rows, page.Limit, func(l *model.AuditLog) string { return l.ID })
	return &model.AuditLogListResp{Logs: p.Items, NextCursor: p.NextCursor, HasMore: p.HasMore}, nil
}
