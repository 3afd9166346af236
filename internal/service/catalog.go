package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/sohaibislam45/BookFlix-sub002/internal/constants"
	"github.com/sohaibislam45/BookFlix-sub002/internal/models"
	"github.com/sohaibislam45/BookFlix-sub002/internal/utils"
)

// CatalogService owns books and copies: availability counts, copy claims
// and stock reconciliation.
type CatalogService struct {
	BookCol     *mongo.Collection
	CopyCol     *mongo.Collection
	AuditLogger utils.AuditLogger
	Logger      *zap.Logger
}

func activeCopyFilter(bookID primitive.ObjectID) bson.M {
	return bson.M{"book_id": bookID, "is_active": true}
}

func (s *CatalogService) CountTotal(ctx context.Context, bookID primitive.ObjectID) (int64, error) {
	return s.CopyCol.CountDocuments(ctx, activeCopyFilter(bookID))
}

func (s *CatalogService) CountAvailable(ctx context.Context, bookID primitive.ObjectID) (int64, error) {
	filter := activeCopyFilter(bookID)
	filter["status"] = models.StatusAvailable
	return s.CopyCol.CountDocuments(ctx, filter)
}

// FindAvailableCopy returns any one available, active copy without claiming it.
func (s *CatalogService) FindAvailableCopy(ctx context.Context, bookID primitive.ObjectID) (*models.BookCopy, error) {
	filter := activeCopyFilter(bookID)
	filter["status"] = models.StatusAvailable

	var copyObj models.BookCopy
	err := s.CopyCol.FindOne(ctx, filter).Decode(&copyObj)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &UnavailableError{Code: CodeNoCopyAvailable, Msg: "no available copy for this book"}
	}
	if err != nil {
		return nil, fmt.Errorf("find available copy: %w", err)
	}
	return &copyObj, nil
}

// ClaimAvailableCopy atomically flips one available copy to the target
// status. The status filter is the compare-and-swap guard: a copy claimed
// by a concurrent request simply no longer matches.
func (s *CatalogService) ClaimAvailableCopy(ctx context.Context, bookID primitive.ObjectID, to models.CopyStatus) (*models.BookCopy, error) {
	filter := activeCopyFilter(bookID)
	filter["status"] = models.StatusAvailable

	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "copy_number", Value: 1}}).
		SetReturnDocument(options.After)

	var copyObj models.BookCopy
	err := s.CopyCol.FindOneAndUpdate(ctx, filter, update, opts).Decode(&copyObj)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &UnavailableError{Code: CodeNoCopyAvailable, Msg: "no available copy for this book"}
	}
	if err != nil {
		return nil, fmt.Errorf("claim available copy: %w", err)
	}
	return &copyObj, nil
}

// ClaimCopy conditionally moves a specific copy between statuses. Returns
// false when the copy was not in the expected state.
func (s *CatalogService) ClaimCopy(ctx context.Context, copyID primitive.ObjectID, from, to models.CopyStatus) (bool, error) {
	res, err := s.CopyCol.UpdateOne(ctx,
		bson.M{"_id": copyID, "status": from, "is_active": true},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, fmt.Errorf("flip copy %s %s->%s: %w", copyID.Hex(), from, to, err)
	}
	return res.ModifiedCount == 1, nil
}

// ClaimCopyOfBook is ClaimCopy scoped to one book. Used when the copy id
// comes from the caller, so a copy of a different book can never be claimed
// against this book's reservation.
func (s *CatalogService) ClaimCopyOfBook(ctx context.Context, copyID, bookID primitive.ObjectID, from, to models.CopyStatus) (bool, error) {
	res, err := s.CopyCol.UpdateOne(ctx,
		bson.M{"_id": copyID, "book_id": bookID, "status": from, "is_active": true},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, fmt.Errorf("flip copy %s %s->%s: %w", copyID.Hex(), from, to, err)
	}
	return res.ModifiedCount == 1, nil
}

// SetStockLevel reconciles the physical copy count toward target. Growth
// appends new available copies; shrink deactivates the oldest available
// copies first and never touches lent or reserved ones.
func (s *CatalogService) SetStockLevel(ctx context.Context, bookID primitive.ObjectID, target int) (added, removed int, err error) {
	if target < 0 {
		return 0, 0, &ValidationError{Msg: "target stock level must be >= 0"}
	}

	var book models.Book
	if err := s.BookCol.FindOne(ctx, bson.M{"_id": bookID}).Decode(&book); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, 0, &NotFoundError{Entity: models.BookEntity, ID: bookID.Hex()}
		}
		return 0, 0, fmt.Errorf("load book: %w", err)
	}

	total, err := s.CountTotal(ctx, bookID)
	if err != nil {
		return 0, 0, fmt.Errorf("count copies: %w", err)
	}

	switch {
	case int64(target) > total:
		added, err = s.growStock(ctx, bookID, int(int64(target)-total))
	case int64(target) < total:
		removed, err = s.shrinkStock(ctx, bookID, int(total-int64(target)))
	}
	if err != nil {
		return added, removed, err
	}

	s.AuditLogger.Log(ctx, models.CopyEntity, constants.AdjustStock, "system", bson.M{
		"book_id": bookID, "target": target, "added": added, "removed": removed,
	})
	return added, removed, nil
}

func (s *CatalogService) growStock(ctx context.Context, bookID primitive.ObjectID, n int) (int, error) {
	nextNumber, err := s.nextCopyNumber(ctx, bookID)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	docs := make([]interface{}, 0, n)
	for i := 0; i < n; i++ {
		num := nextNumber + i
		docs = append(docs, models.BookCopy{
			ID:         primitive.NewObjectID(),
			BookID:     bookID,
			CopyNumber: num,
			Barcode:    fmt.Sprintf("BF-%s-%03d", bookID.Hex()[18:], num),
			Status:     models.StatusAvailable,
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	if _, err := s.CopyCol.InsertMany(ctx, docs); err != nil {
		return 0, fmt.Errorf("insert copies: %w", err)
	}
	return n, nil
}

func (s *CatalogService) shrinkStock(ctx context.Context, bookID primitive.ObjectID, n int) (int, error) {
	available, err := s.CountAvailable(ctx, bookID)
	if err != nil {
		return 0, fmt.Errorf("count available: %w", err)
	}
	if available < int64(n) {
		return 0, &PolicyError{
			Code:  CodeInsufficientRemovableStock,
			Msg:   fmt.Sprintf("need to remove %d copies but only %d are available", n, available),
			Limit: int(available),
		}
	}

	// Deactivate oldest available first, one conditional update per copy so
	// a copy claimed between the count and the write is never force-removed.
	removed := 0
	for removed < n {
		filter := activeCopyFilter(bookID)
		filter["status"] = models.StatusAvailable

		update := bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}}
		opts := options.FindOneAndUpdate().SetSort(bson.D{{Key: "created_at", Value: 1}})

		err := s.CopyCol.FindOneAndUpdate(ctx, filter, update, opts).Err()
		if errors.Is(err, mongo.ErrNoDocuments) {
			return removed, &PolicyError{
				Code:  CodeInsufficientRemovableStock,
				Msg:   fmt.Sprintf("only %d of %d removable copies were still available", removed, n),
				Limit: removed,
			}
		}
		if err != nil {
			return removed, fmt.Errorf("deactivate copy: %w", err)
		}
		removed++
	}
	return removed, nil
}

func (s *CatalogService) nextCopyNumber(ctx context.Context, bookID primitive.ObjectID) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "copy_number", Value: -1}})

	var last models.BookCopy
	err := s.CopyCol.FindOne(ctx, bson.M{"book_id": bookID}, opts).Decode(&last)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find last copy number: %w", err)
	}
	return last.CopyNumber + 1, nil
}
