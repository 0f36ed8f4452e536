package repository

import (
	"context"
	"errors"
	"time"

	"iam/internal/iam/model"
	"iam/internal/iam/util"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoRepository) SeedCatalog(ctx context.Context, permissions []string, roles []*model.Role) error {
	upsert := options.Update().SetUpsert(true)
	now := time.Now()

	for _, code := range permissions {
		update := bson.M{"$setOnInsert": bson.M{"_id": util.NewIDAt(now), "code": code}}
		if _, err := r.Permissions.UpdateOne(ctx, bson.M{"code": code}, update, upsert); err != nil {
			return err
		}
	}

	for _, role := range roles {
		update := bson.M{
			"$setOnInsert": bson.M{"_id": role.ID, "created_at": role.CreatedAt},
			"$addToSet":    bson.M{"permissions": bson.M{"$each": role.Permissions}},
		}
		if _, err := r.Roles.UpdateOne(ctx, bson.M{"name": role.Name}, update, upsert); err != nil {
			return err
		}
	}
	return nil
}

func (r *MongoRepository) FindRoleByName(ctx context.Context, name string) (*model.Role, error) {
	return findOne[model.Role](ctx, r.Roles, bson.M{"name": name})
}

func (r *MongoRepository) FindUserRole(ctx context.Context, userID string) (*model.UserRole, error) {
	return findOne[model.UserRole](ctx, r.UserRoles, bson.M{"user_id": userID})
}

func (r *MongoRepository) ReplaceUserRole(ctx context.Context, edge *model.UserRole) (string, error) {
	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		var previous model.UserRole
		err := r.UserRoles.FindOne(sessCtx, bson.M{"user_id": edge.UserID}).Decode(&previous)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}

		if _, err := r.UserRoles.DeleteMany(sessCtx, bson.M{"user_id": edge.UserID}); err != nil {
			return nil, err
		}
		if _, err := r.UserRoles.InsertOne(sessCtx, edge); err != nil {
			return nil, mapWriteErr(err)
		}
		return previous.RoleName, nil
	}

	out, err := r.inTransaction(ctx, callback)
	if err != nil {
		return "", err
	}
	previous, _ := out.(string)
	return previous, nil
}
