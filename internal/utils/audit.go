package utils

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/sohaibislam45/BookFlix-sub002/internal/models"
)

// AuditLogger records engine mutations to the audit_logs collection.
type AuditLogger struct {
	Collection *mongo.Collection
}

func (l *AuditLogger) Log(ctx context.Context, entity, action, performedBy string, data any) {
	if l.Collection == nil {
		return
	}
	entry := models.AuditLog{
		Timestamp:   time.Now(),
		Entity:      entity,
		Action:      action,
		PerformedBy: performedBy,
		Data:        data,
	}
	if _, err := l.Collection.InsertOne(ctx, entry); err != nil {
		GetLogger().Warn("audit log insert failed",
			zap.String("entity", entity),
			zap.String("action", action),
			zap.Error(err))
	}
}
