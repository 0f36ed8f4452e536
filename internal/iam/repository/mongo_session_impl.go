package repository

import (
	"context"

	"iam/internal/iam/model"

	"go.mongodb.org/mongo-driver/bson"
)

func (r *MongoRepository) CreateSession(ctx context.Context, session *model.Session) error {
	_, err := r.Sessions.InsertOne(ctx, session)
	return mapWriteErr(err)
}

func (r *MongoRepository) FindSession(ctx context.Context, id string) (*model.Session, error) {
	return findOne[model.Session](ctx, r.Sessions, bson.M{"_id": id})
}

func (r *MongoRepository) FindSessionByRefreshToken(ctx context.Context, refreshTokenID string) (*model.Session, error) {
	return findOne[model.Session](ctx, r.Sessions, bson.M{"refresh_token_id": refreshTokenID})
}

// RevokeSessions only ever writes active=false; nothing sets it back.
func (r *MongoRepository) RevokeSessions(ctx context.Context, sel model.SessionSelector) (int64, error) {
	filter := bson.M{"active": true}
	switch {
	case sel.SessionID != "":
		filter["_id"] = sel.SessionID
	case sel.RefreshTokenID != "":
		filter["refresh_token_id"] = sel.RefreshTokenID
	default:
		return 0, nil
	}

	res, err := r.Sessions.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"active": false}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *MongoRepository) ListSessions(ctx context.Context, filter model.SessionFilter, page model.PageRequest) ([]*model.Session, error) {
	base := bson.M{}
	if filter.UserID != "" {
		base["user_id"] = filter.UserID
	}
	switch filter.Status {
	case model.SessionStatusActive:
		base["active"] = true
	case model.SessionStatusInactive:
		base["active"] = false
	}
	return findPage[model.Session](ctx, r.Sessions, base, page.Cursor, page.FetchLimit())
}
