package service

import (
	"context"
	"fmt"

	"iam/internal/iam/model"
	"iam/internal/iam/util"

	"github.com/google/uuid"
)

func (s *Service) Signup(ctx context.Context, caller model.Caller, req model.SignupReq) (*model.AuthResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, req.Email, req.Username, req.Password, model.BaseRole)
	if err != nil {
		return nil, err
	}

	session, token, err := s.openSession(ctx, user, caller)
	if err != nil {
		return nil, err
	}

	caller.UserID = user.ID
	s.record(ctx, caller, model.ActionSignup, user.ID, map[string]any{
		"email":     user.Email,
		"sessionId": session.ID,
	})

	return &model.AuthResp{User: user.Summary(), Token: token, SessionID: session.ID}, nil
}

// Login never reveals whether the identifier or the password was wrong.
func (s *Service) Login(ctx context.Context, caller model.Caller, req model.LoginReq) (*model.AuthResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.Store.FindUserByIdentifier(ctx, req.Identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	ok, err := VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		logger().Warn("unreadable password hash", "user_id", user.ID, "error", err)
		return nil, ErrUnauthenticated
	}
	if !ok {
		return nil, ErrUnauthenticated
	}

	session, token, err := s.openSession(ctx, user, caller)
	if err != nil {
		return nil, err
	}

	caller.UserID = user.ID
	s.record(ctx, caller, model.ActionLogin, user.ID, map[string]any{
		"sessionId":      session.ID,
		"refreshTokenId": session.RefreshTokenID,
	})

	return &model.AuthResp{User: user.Summary(), Token: token, SessionID: session.ID}, nil
}

// openSession persists a new active session and signs an access token bound to it.
func (s *Service) openSession(ctx context.Context, user *model.User, caller model.Caller) (*model.Session, string, error) {
	now := s.now()
	session := &model.Session{
		ID:             util.NewIDAt(now),
		UserID:         user.ID,
		RefreshTokenID: uuid.NewString(),
		UserAgent:      caller.UserAgent,
		IP:             caller.IP,
		Active:         true,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.SessionTTL),
	}
	if err := s.Store.CreateSession(ctx, session); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	token, err := s.Tokens.Issue(user.ID, session.ID)
	if err != nil {
		return nil, "", err
	}
	return session, token, nil
}

// Authenticate resolves a bearer token into a Principal evaluated at the current instant.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.Principal, error) {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	now := s.now()

	if claims.SessionID == "" {
		return nil, ErrUnauthenticated
	}
	session, err := s.Store.FindSession(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != claims.Subject || !session.Usable(now) {
		return nil, ErrUnauthenticated
	}

	user, err := s.Store.FindUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}

	access, err := s.Evaluator.EffectivePermissions(ctx, user.ID, now)
	if err != nil {
		return nil, err
	}

	return &model.Principal{User: *user, SessionID: claims.SessionID, Access: access}, nil
}
