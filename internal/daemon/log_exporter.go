package daemon

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/sohaibislam45/BookFlix-sub002/internal/models"
	"github.com/sohaibislam45/BookFlix-sub002/internal/utils"
)

// LogExporter periodically ships unexported audit entries to the log sink
// and marks them exported.
type LogExporter struct {
	Coll     *mongo.Collection
	Interval time.Duration
}

func (l *LogExporter) Start(ctx context.Context) {
	interval := l.Interval
	if interval == 0 {
		interval = 30 * time.Second
	}

	go func() {
		logger := utils.GetLogger()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := l.exportPending(ctx, logger); err != nil {
					logger.Warn("audit export pass failed", zap.Error(err))
				}
			}
		}
	}()
}

func (l *LogExporter) exportPending(ctx context.Context, logger *zap.Logger) error {
	cursor, err := l.Coll.Find(ctx, bson.M{"exported": false})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var logs []models.AuditLog
	if err := cursor.All(ctx, &logs); err != nil {
		return err
	}
	if len(logs) == 0 {
		return nil
	}

	ids := make([]primitive.ObjectID, 0, len(logs))
	for _, entry := range logs {
		logger.Info("audit",
			zap.Time("at", entry.Timestamp),
			zap.String("entity", entry.Entity),
			zap.String("action", entry.Action),
			zap.String("performed_by", entry.PerformedBy))
		ids = append(ids, entry.ID)
	}

	_, err = l.Coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"exported": true}},
	)
	return err
}
