package repository

import (
	"context"
	"time"

	"iam/internal/iam/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoRepository) CreateGrant(ctx context.Context, grant *model.TempPermissionGrant) error {
	_, err := r.Grants.InsertOne(ctx, grant)
	return mapWriteErr(err)
}

func (r *MongoRepository) FindGrant(ctx context.Context, id string) (*model.TempPermissionGrant, error) {
	return findOne[model.TempPermissionGrant](ctx, r.Grants, bson.M{"_id": id})
}

func (r *MongoRepository) DeleteGrant(ctx context.Context, id string) (bool, error) {
	res, err := r.Grants.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoRepository) ListActiveGrantsForUser(ctx context.Context, userID string, now time.Time) ([]*model.TempPermissionGrant, error) {
	filter := bson.M{"user_id": userID, "expires_at": bson.M{"$gt": now}}
	cur, err := r.Grants.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var grants []*model.TempPermissionGrant
	if err := cur.All(ctx, &grants); err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *MongoRepository) ListGrants(ctx context.Context, filter model.GrantFilter, page model.PageRequest) ([]*model.TempPermissionGrant, error) {
	base := bson.M{}
	if filter.UserID != "" {
		base["user_id"] = filter.UserID
	}
	if filter.ActiveOnly {
		base["expires_at"] = bson.M{"$gt": filter.Now}
	}
	return findPage[model.TempPermissionGrant](ctx, r.Grants, base, page.Cursor, page.FetchLimit())
}
