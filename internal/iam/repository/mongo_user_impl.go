package repository

import (
	"context"
	"errors"
	"strings"

	"iam/internal/iam/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoRepository) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	return findOne[model.User](ctx, r.Users, bson.M{"_id": id})
}

func (r *MongoRepository) FindUserByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, nil
	}
	// Email wins over a username that happens to look like one.
	u, err := findOne[model.User](ctx, r.Users, bson.M{"email": strings.ToLower(identifier)})
	if err != nil || u != nil {
		return u, err
	}
	return findOne[model.User](ctx, r.Users, bson.M{"username": identifier})
}

func (r *MongoRepository) ListUsers(ctx context.Context, page model.PageRequest) ([]*model.User, error) {
	return findPage[model.User](ctx, r.Users, bson.M{}, page.Cursor, page.FetchLimit())
}

func (r *MongoRepository) CreateUser(ctx context.Context, user *model.User, edge *model.UserRole) error {
	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		if _, err := r.Users.InsertOne(sessCtx, user); err != nil {
			return nil, mapWriteErr(err)
		}
		if edge == nil {
			return nil, nil
		}
		if _, err := r.UserRoles.InsertOne(sessCtx, edge); err != nil {
			return nil, mapWriteErr(err)
		}
		return nil, nil
	}

	_, err := r.inTransaction(ctx, callback)
	return err
}

func (r *MongoRepository) UpdateUser(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	set := bson.M{}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.Username != nil {
		set["username"] = *upd.Username
	}
	if upd.PasswordHash != nil {
		set["password_hash"] = *upd.PasswordHash
	}
	if upd.MFAEnabled != nil {
		set["mfa_enabled"] = *upd.MFAEnabled
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if upd.ClearUsername {
		update["$unset"] = bson.M{"username": ""}
	}
	if len(update) == 0 {
		return r.FindUserByID(ctx, id)
	}

	var out model.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.Users.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, mapWriteErr(err)
	}
	return &out, nil
}

func (r *MongoRepository) DeleteUserCascade(ctx context.Context, id string) (bool, error) {
	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		owned := bson.M{"user_id": id}
		for _, coll := range []*mongo.Collection{r.Sessions, r.UserRoles, r.AuditLogs, r.Grants} {
			if _, err := coll.DeleteMany(sessCtx, owned); err != nil {
				return nil, err
			}
		}
		res, err := r.Users.DeleteOne(sessCtx, bson.M{"_id": id})
		if err != nil {
			return nil, err
		}
		return res.DeletedCount > 0, nil
	}

	out, err := r.inTransaction(ctx, callback)
	if err != nil {
		return false, err
	}
	deleted, _ := out.(bool)
	return deleted, nil
}
