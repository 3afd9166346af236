package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sohaibislam45/BookFlix-sub002/internal/models"
)

type MetricsHandler struct {
	CopyCol   *mongo.Collection
	MemberCol *mongo.Collection
	BorrowCol *mongo.Collection
	FineCol   *mongo.Collection
}

// GET /admin/metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	todayStart := time.Now().Truncate(24 * time.Hour)
	now := time.Now()

	totalCopies, _ := h.CopyCol.CountDocuments(ctx, bson.M{"is_active": true})

	activeMembers, _ := h.MemberCol.CountDocuments(ctx, bson.M{"is_active": true})

	borrowingsToday, _ := h.BorrowCol.CountDocuments(ctx, bson.M{
		"borrowed_date": bson.M{"$gte": todayStart},
	})

	overdueCount, _ := h.BorrowCol.CountDocuments(ctx, bson.M{
		"status":   bson.M{"$in": models.OpenBorrowingStatuses},
		"due_date": bson.M{"$lt": now},
	})

	// outstanding fine exposure = sum of pending fine amounts
	cursor, _ := h.FineCol.Find(ctx, bson.M{"status": models.FinePending})
	var pendingFines []models.Fine
	if cursor != nil {
		_ = cursor.All(ctx, &pendingFines)
	}
	var outstanding float64
	for _, fine := range pendingFines {
		outstanding += fine.Amount
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"total_copies":      totalCopies,
		"active_members":    activeMembers,
		"borrowings_today":  borrowingsToday,
		"overdue_count":     overdueCount,
		"outstanding_fines": outstanding,
	})
}
