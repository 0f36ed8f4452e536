package repository

import (
	"context"
	"errors"
	"fmt"

	"iam/internal/iam/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	Users       *mongo.Collection
	Roles       *mongo.Collection
	Permissions *mongo.Collection
	UserRoles   *mongo.Collection
	Grants      *mongo.Collection
	Sessions    *mongo.Collection
	AuditLogs   *mongo.Collection
	Client      *mongo.Client // for transactions
}

var _ Store = (*MongoRepository)(nil)

func NewMongoRepository(db *mongo.Database, names config.Collections) *MongoRepository {
	return &MongoRepository{
		Users:       db.Collection(names.Users),
		Roles:       db.Collection(names.Roles),
		Permissions: db.Collection(names.Permissions),
		UserRoles:   db.Collection(names.UserRoles),
		Grants:      db.Collection(names.Grants),
		Sessions:    db.Collection(names.Sessions),
		AuditLogs:   db.Collection(names.AuditLogs),
		Client:      db.Client(),
	}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	keysetIdx := mongo.IndexModel{
		Keys:    newestFirst,
		Options: options.Index().SetName("idx_created_at_id"),
	}

	plan := []struct {
		coll    *mongo.Collection
		indexes []mongo.IndexModel
	}{
		{r.Users, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
			{
				Keys: bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_username").
					SetPartialFilterExpression(bson.M{"username": bson.M{"$type": "string"}}),
			},
			keysetIdx,
		}},
		{r.Roles, []mongo.IndexModel{
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_role_name")},
		}},
		{r.Permissions, []mongo.IndexModel{
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_permission_code")},
		}},
		// One role edge per user.
		{r.UserRoles, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_user_role")},
		}},
		{r.Grants, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "expires_at", Value: 1}}, Options: options.Index().SetName("idx_user_expires")},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_user_created")},
			keysetIdx,
		}},
		{r.Sessions, []mongo.IndexModel{
			{Keys: bson.D{{Key: "refresh_token_id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_refresh_token")},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_user_created")},
			keysetIdx,
		}},
		{r.AuditLogs, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_user_created")},
			{Keys: bson.D{{Key: "action", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_action_created")},
			keysetIdx,
		}},
	}

	for _, p := range plan {
		if _, err := p.coll.Indexes().CreateMany(ctx, p.indexes); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", p.coll.Name(), err)
		}
	}
	return nil
}

// inTransaction runs fn inside a Mongo transaction; the deployment must be a replica set.
func (r *MongoRepository) inTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	session, err := r.Client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	return session.WithTransaction(ctx, fn)
}

// afterCursor narrows base to rows strictly after the cursor row in newest-first order.
func afterCursor(ctx context.Context, coll *mongo.Collection, base bson.M, cursor string) (bson.M, error) {
	if cursor == "" {
		return base, nil
	}

	var anchor struct {
		CreatedAt interface{} `bson:"created_at"`
	}
	err := coll.FindOne(ctx, bson.M{"_id": cursor}, options.FindOne().SetProjection(bson.M{"created_at": 1})).Decode(&anchor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCursor
		}
		return nil, err
	}

	return bson.M{"$and": bson.A{
		base,
		bson.M{"$or": bson.A{
			bson.M{"created_at": bson.M{"$lt": anchor.CreatedAt}},
			bson.M{"created_at": anchor.CreatedAt, "_id": bson.M{"$lt": cursor}},
		}},
	}}, nil
}

// findPage runs a keyset page query over coll.
func findPage[T any](ctx context.Context, coll *mongo.Collection, base bson.M, cursor string, fetch int) ([]*T, error) {
	filter, err := afterCursor(ctx, coll, base, cursor)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(newestFirst).SetLimit(int64(fetch))
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	results := make([]*T, 0, fetch)
	if err := cur.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// findOne decodes a single document, mapping no match to (nil, nil).
func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func mapWriteErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}
