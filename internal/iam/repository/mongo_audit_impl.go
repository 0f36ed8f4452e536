package repository

import (
	"context"
	"time"

	"iam/internal/iam/model"

	"go.mongodb.org/mongo-driver/bson"
)

// CreateAuditLog appends a record; audit logs are never updated.
func (r *MongoRepository) CreateAuditLog(ctx context.Context, log *model.AuditLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	_, err := r.AuditLogs.InsertOne(ctx, log)
	return mapWriteErr(err)
}

func (r *MongoRepository) ListAuditLogs(ctx context.Context, filter model.AuditFilter, page model.PageRequest) ([]*model.AuditLog, error) {
	base := bson.M{}
	if filter.UserID != "" {
		base["user_id"] = filter.UserID
	}
	if filter.Action != "" {
		base["action"] = filter.Action
	}
	return findPage[model.AuditLog](ctx, r.AuditLogs, base, page.Cursor, page.FetchLimit())
}
