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
	"github.com/sohaibislam45/BookFlix-sub002/internal/policy"
	"github.com/sohaibislam45/BookFlix-sub002/internal/utils"
)

// BorrowingService is the borrowing ledger: it creates, renews and closes
// loans and enforces the per-member concurrency and renewal rules.
type BorrowingService struct {
	MemberCol   *mongo.Collection
	BookCol     *mongo.Collection
	BorrowCol   *mongo.Collection
	Catalog     *CatalogService
	Locks       Locker
	Intents     Notifier
	Limits      policy.Limits
	AuditLogger utils.AuditLogger
	Logger      *zap.Logger
}

func (s *BorrowingService) loadMember(ctx context.Context, memberID primitive.ObjectID) (*models.Member, error) {
	var member models.Member
	err := s.MemberCol.FindOne(ctx, bson.M{"_id": memberID}).Decode(&member)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{Entity: models.MemberEntity, ID: memberID.Hex()}
	}
	if err != nil {
		return nil, fmt.Errorf("load member: %w", err)
	}
	return &member, nil
}

func (s *BorrowingService) countOpenLoans(ctx context.Context, memberID primitive.ObjectID) (int64, error) {
	return s.BorrowCol.CountDocuments(ctx, bson.M{
		"member_id": memberID,
		"status":    bson.M{"$in": models.OpenBorrowingStatuses},
	})
}

// Borrow lends one available copy of the book to the member.
func (s *BorrowingService) Borrow(ctx context.Context, memberID, bookID primitive.ObjectID) (*models.Borrowing, error) {
	member, err := s.loadMember(ctx, memberID)
	if err != nil {
		utils.BorrowingsFailedTotal.WithLabelValues("member_not_found").Inc()
		return nil, err
	}

	tier := policy.Resolve(member.SubscriptionType, member.SubscriptionStatus, s.Limits)

	// 1. Concurrent-loan cap against the member's current tier
	open, err := s.countOpenLoans(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("count open loans: %w", err)
	}
	if open >= int64(tier.MaxConcurrentLoans) {
		utils.BorrowingsFailedTotal.WithLabelValues("limit_reached").Inc()
		return nil, &PolicyError{
			Code:  CodeBorrowLimitReached,
			Msg:   fmt.Sprintf("you can borrow up to %d books at a time", tier.MaxConcurrentLoans),
			Limit: tier.MaxConcurrentLoans,
		}
	}

	// 2. Book must exist and be active
	var book models.Book
	if err := s.BookCol.FindOne(ctx, bson.M{"_id": bookID, "is_active": true}).Decode(&book); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.BorrowingsFailedTotal.WithLabelValues("book_not_found").Inc()
			return nil, &NotFoundError{Entity: models.BookEntity, ID: bookID.Hex()}
		}
		return nil, fmt.Errorf("load book: %w", err)
	}

	// 3. Stock check before any mutation
	available, err := s.Catalog.CountAvailable(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("count available: %w", err)
	}
	if available == 0 {
		utils.BorrowingsFailedTotal.WithLabelValues("no_copy").Inc()
		return nil, &UnavailableError{Code: CodeNoCopyAvailable, Msg: "no copy of this book is currently available"}
	}

	// 4. One open loan per (member, book)
	dup, err := s.BorrowCol.CountDocuments(ctx, bson.M{
		"member_id": memberID,
		"book_id":   bookID,
		"status":    bson.M{"$in": models.OpenBorrowingStatuses},
	})
	if err != nil {
		return nil, fmt.Errorf("check duplicate loan: %w", err)
	}
	if dup > 0 {
		utils.BorrowingsFailedTotal.WithLabelValues("duplicate").Inc()
		return nil, &PolicyError{Code: CodeDuplicateLoan, Msg: "you already have an active loan of this book"}
	}

	// 5. Claim a copy and record the loan under the per-book lock
	unlock, err := s.Locks.Lock(ctx, "book:"+bookID.Hex())
	if err != nil {
		return nil, fmt.Errorf("lock book: %w", err)
	}
	defer unlock()

	copyObj, err := s.Catalog.ClaimAvailableCopy(ctx, bookID, models.StatusBorrowed)
	if err != nil {
		utils.BorrowingsFailedTotal.WithLabelValues("no_copy").Inc()
		return nil, err
	}

	now := time.Now()
	borrowing := models.Borrowing{
		ID:           primitive.NewObjectID(),
		MemberID:     memberID,
		BookID:       bookID,
		CopyID:       copyObj.ID,
		BorrowedDate: now,
		DueDate:      now.AddDate(0, 0, tier.LoanDays),
		Status:       models.BorrowingActive,
	}

	if _, err := s.BorrowCol.InsertOne(ctx, borrowing); err != nil {
		// best-effort release of the claimed copy
		if _, relErr := s.Catalog.ClaimCopy(ctx, copyObj.ID, models.StatusBorrowed, models.StatusAvailable); relErr != nil {
			s.Logger.Error("failed to release copy after loan insert failure",
				zap.String("copy_id", copyObj.ID.Hex()), zap.Error(relErr))
		}
		return nil, fmt.Errorf("record loan: %w", err)
	}

	utils.BorrowingsTotal.Inc()
	s.AuditLogger.Log(ctx, models.BorrowingEntity, constants.Borrow, memberID.Hex(), borrowing)

	if err := s.Intents.PublishBookBorrowed(ctx, &models.BookBorrowedEvent{
		IntentEnvelope: models.IntentEnvelope{
			RecipientID: memberID.Hex(),
			Title:       "Book borrowed",
			Message:     fmt.Sprintf("Your loan is due on %s", borrowing.DueDate.Format("Jan 2, 2006")),
		},
		BorrowingID: borrowing.ID.Hex(),
		BookID:      bookID.Hex(),
		CopyID:      copyObj.ID.Hex(),
		DueDate:     borrowing.DueDate,
	}); err != nil {
		s.Logger.Warn("failed to publish BookBorrowed intent", zap.Error(err))
	}

	return &borrowing, nil
}

// Renew extends an open loan's due date by the member's current tier loan
// length. Renewal count is capped and overdue loans must be returned first.
func (s *BorrowingService) Renew(ctx context.Context, borrowingID primitive.ObjectID) (*models.Borrowing, error) {
	var borrowing models.Borrowing
	err := s.BorrowCol.FindOne(ctx, bson.M{"_id": borrowingID}).Decode(&borrowing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{Entity: models.BorrowingEntity, ID: borrowingID.Hex()}
	}
	if err != nil {
		return nil, fmt.Errorf("load borrowing: %w", err)
	}

	if borrowing.Status == models.BorrowingReturned {
		return nil, &PolicyError{Code: CodeAlreadyReturned, Msg: "this loan has already been returned"}
	}
	if borrowing.RenewalCount >= s.Limits.MaxRenewals {
		return nil, &PolicyError{
			Code:  CodeRenewalLimitReached,
			Msg:   fmt.Sprintf("a loan can be renewed at most %d times", s.Limits.MaxRenewals),
			Limit: s.Limits.MaxRenewals,
		}
	}
	if borrowing.IsOverdue(time.Now()) {
		return nil, &PolicyError{Code: CodeCannotRenewOverdue, Msg: "overdue loans must be returned before renewing"}
	}

	member, err := s.loadMember(ctx, borrowing.MemberID)
	if err != nil {
		return nil, err
	}
	tier := policy.Resolve(member.SubscriptionType, member.SubscriptionStatus, s.Limits)

	// Extension runs from the existing due date, not from now.
	newDue := borrowing.DueDate.AddDate(0, 0, tier.LoanDays)

	res := s.BorrowCol.FindOneAndUpdate(ctx,
		bson.M{"_id": borrowingID, "status": bson.M{"$in": models.OpenBorrowingStatuses}},
		bson.M{
			"$set": bson.M{"due_date": newDue, "renewed": true},
			"$inc": bson.M{"renewal_count": 1},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err := res.Decode(&borrowing); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &PolicyError{Code: CodeAlreadyReturned, Msg: "this loan has already been returned"}
		}
		return nil, fmt.Errorf("renew loan: %w", err)
	}

	utils.RenewalsTotal.Inc()
	s.AuditLogger.Log(ctx, models.BorrowingEntity, constants.Renew, borrowing.MemberID.Hex(), borrowing)

	return &borrowing, nil
}

// Return closes an open loan and frees its copy. Queue promotion is a
// separate, explicitly triggered step.
func (s *BorrowingService) Return(ctx context.Context, borrowingID primitive.ObjectID, returnedBy string) (*models.Borrowing, error) {
	now := time.Now()

	res := s.BorrowCol.FindOneAndUpdate(ctx,
		bson.M{"_id": borrowingID, "status": bson.M{"$in": models.OpenBorrowingStatuses}},
		bson.M{"$set": bson.M{
			"status":        models.BorrowingReturned,
			"returned_date": now,
			"returned_by":   returnedBy,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var borrowing models.Borrowing
	if err := res.Decode(&borrowing); err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("close loan: %w", err)
		}
		// distinguish missing from already returned
		count, cerr := s.BorrowCol.CountDocuments(ctx, bson.M{"_id": borrowingID})
		if cerr != nil {
			return nil, fmt.Errorf("close loan: %w", cerr)
		}
		if count == 0 {
			return nil, &NotFoundError{Entity: models.BorrowingEntity, ID: borrowingID.Hex()}
		}
		return nil, &PolicyError{Code: CodeAlreadyReturned, Msg: "this loan has already been returned"}
	}

	flipped, err := s.Catalog.ClaimCopy(ctx, borrowing.CopyID, models.StatusBorrowed, models.StatusAvailable)
	if err != nil {
		return nil, err
	}
	if !flipped {
		s.Logger.Warn("returned loan's copy was not in BORROWED state",
			zap.String("copy_id", borrowing.CopyID.Hex()),
			zap.String("borrowing_id", borrowing.ID.Hex()))
	}

	utils.ReturnsTotal.Inc()
	s.AuditLogger.Log(ctx, models.BorrowingEntity, constants.Return, returnedBy, borrowing)

	return &borrowing, nil
}

// OverdueLoans reports open loans past their due date, by derivation.
func (s *BorrowingService) OverdueLoans(ctx context.Context) ([]models.Borrowing, error) {
	cursor, err := s.BorrowCol.Find(ctx, bson.M{
		"status":   bson.M{"$in": models.OpenBorrowingStatuses},
		"due_date": bson.M{"$lt": time.Now()},
	})
	if err != nil {
		return nil, fmt.Errorf("find overdue loans: %w", err)
	}
	defer cursor.Close(ctx)

	var loans []models.Borrowing
	if err := cursor.All(ctx, &loans); err != nil {
		return nil, fmt.Errorf("decode overdue loans: %w", err)
	}
	return loans, nil
}
