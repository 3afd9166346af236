package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
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

// ReservationService manages the per-book FIFO hold queue: placement,
// promotion to ready, completion into a borrowing, cancellation and expiry.
type ReservationService struct {
	ResCol      *mongo.Collection
	MemberCol   *mongo.Collection
	BorrowCol   *mongo.Collection
	Catalog     *CatalogService
	Locks       Locker
	Intents     Notifier
	Limits      policy.Limits
	ExpiryDays  int
	PickupDays  int
	AuditLogger utils.AuditLogger
	Logger      *zap.Logger
}

func (s *ReservationService) loadReservation(ctx context.Context, id primitive.ObjectID) (*models.Reservation, error) {
	var res models.Reservation
	err := s.ResCol.FindOne(ctx, bson.M{"_id": id}).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{Entity: models.ReservationEntity, ID: id.Hex()}
	}
	if err != nil {
		return nil, fmt.Errorf("load reservation: %w", err)
	}
	return &res, nil
}

// Request places a hold for a book with no available copy. Members with a
// copy in hand or already in the queue are rejected, and so are requests
// for books that can simply be borrowed right now.
func (s *ReservationService) Request(ctx context.Context, memberID, bookID primitive.ObjectID) (*models.Reservation, error) {
	var member models.Member
	err := s.MemberCol.FindOne(ctx, bson.M{"_id": memberID}).Decode(&member)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{Entity: models.MemberEntity, ID: memberID.Hex()}
	}
	if err != nil {
		return nil, fmt.Errorf("load member: %w", err)
	}

	existing, err := s.ResCol.CountDocuments(ctx, bson.M{
		"member_id": memberID,
		"book_id":   bookID,
		"status":    bson.M{"$in": models.UnresolvedReservationStatuses},
	})
	if err != nil {
		return nil, fmt.Errorf("check existing holds: %w", err)
	}
	if existing > 0 {
		return nil, &PolicyError{Code: CodeAlreadyReserved, Msg: "you already have a hold on this book"}
	}

	borrowed, err := s.BorrowCol.CountDocuments(ctx, bson.M{
		"member_id": memberID,
		"book_id":   bookID,
		"status":    bson.M{"$in": models.OpenBorrowingStatuses},
	})
	if err != nil {
		return nil, fmt.Errorf("check open loan: %w", err)
	}
	if borrowed > 0 {
		return nil, &PolicyError{Code: CodeAlreadyBorrowed, Msg: "you already have this book on loan"}
	}

	available, err := s.Catalog.CountAvailable(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("count available: %w", err)
	}
	if available > 0 {
		return nil, &PolicyError{Code: CodeBookCurrentlyAvailable, Msg: "a copy is available — borrow it directly instead of reserving"}
	}

	unlock, err := s.Locks.Lock(ctx, "queue:"+bookID.Hex())
	if err != nil {
		return nil, fmt.Errorf("lock queue: %w", err)
	}
	defer unlock()

	now := time.Now()

	earlier, err := s.ResCol.CountDocuments(ctx, bson.M{
		"book_id":       bookID,
		"status":        bson.M{"$in": models.UnresolvedReservationStatuses},
		"reserved_date": bson.M{"$lt": now},
	})
	if err != nil {
		return nil, fmt.Errorf("count earlier holds: %w", err)
	}

	reservation := models.Reservation{
		ID:              primitive.NewObjectID(),
		MemberID:        memberID,
		BookID:          bookID,
		ReservedDate:    now,
		QueueExpiryDate: now.AddDate(0, 0, s.ExpiryDays),
		Status:          models.ReservationPending,
		QueuePosition:   int(earlier) + 1,
	}

	if _, err := s.ResCol.InsertOne(ctx, reservation); err != nil {
		return nil, fmt.Errorf("place hold: %w", err)
	}

	if err := s.recomputeQueue(ctx, bookID); err != nil {
		s.Logger.Error("queue recompute after request failed",
			zap.String("book_id", bookID.Hex()), zap.Error(err))
	}

	utils.ReservationsTotal.Inc()
	s.AuditLogger.Log(ctx, models.ReservationEntity, constants.Reserve, memberID.Hex(), reservation)

	return &reservation, nil
}

// MarkReady promotes a pending hold: claims an available copy as RESERVED
// and opens the pickup window.
func (s *ReservationService) MarkReady(ctx context.Context, reservationID primitive.ObjectID, copyID *primitive.ObjectID) (*models.Reservation, error) {
	reservation, err := s.loadReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status != models.ReservationPending {
		return nil, &PolicyError{Code: CodeReservationNotPending, Msg: "only pending reservations can be marked ready"}
	}

	unlock, err := s.Locks.Lock(ctx, "book:"+reservation.BookID.Hex())
	if err != nil {
		return nil, fmt.Errorf("lock book: %w", err)
	}
	defer unlock()

	var held *models.BookCopy
	if copyID != nil {
		flipped, err := s.Catalog.ClaimCopyOfBook(ctx, *copyID, reservation.BookID, models.StatusAvailable, models.StatusReserved)
		if err != nil {
			return nil, err
		}
		if !flipped {
			return nil, &UnavailableError{Code: CodeNoAvailableCopy, Msg: "the requested copy is not an available copy of this book"}
		}
		held = &models.BookCopy{ID: *copyID}
	} else {
		claimed, err := s.Catalog.ClaimAvailableCopy(ctx, reservation.BookID, models.StatusReserved)
		if err != nil {
			var unavailable *UnavailableError
			if errors.As(err, &unavailable) {
				return nil, &UnavailableError{Code: CodeNoAvailableCopy, Msg: "no available copy to hold for this reservation"}
			}
			return nil, err
		}
		held = claimed
	}

	now := time.Now()
	pickupBy := now.AddDate(0, 0, s.PickupDays)

	res := s.ResCol.FindOneAndUpdate(ctx,
		bson.M{"_id": reservationID, "status": models.ReservationPending},
		bson.M{"$set": bson.M{
			"status":             models.ReservationReady,
			"copy_id":            held.ID,
			"ready_date":         now,
			"pickup_expiry_date": pickupBy,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err := res.Decode(reservation); err != nil {
		// hold vanished between the read and the write; release the copy
		if _, relErr := s.Catalog.ClaimCopy(ctx, held.ID, models.StatusReserved, models.StatusAvailable); relErr != nil {
			s.Logger.Error("failed to release copy after mark-ready conflict",
				zap.String("copy_id", held.ID.Hex()), zap.Error(relErr))
		}
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &PolicyError{Code: CodeReservationNotPending, Msg: "only pending reservations can be marked ready"}
		}
		return nil, fmt.Errorf("mark reservation ready: %w", err)
	}

	s.AuditLogger.Log(ctx, models.ReservationEntity, constants.MarkReady, "system", reservation)

	if err := s.Intents.PublishReservationReady(ctx, &models.ReservationReadyEvent{
		IntentEnvelope: models.IntentEnvelope{
			RecipientID: reservation.MemberID.Hex(),
			Title:       "Reservation ready for pickup",
			Message:     fmt.Sprintf("Your reserved book is ready — pick it up by %s", pickupBy.Format("Jan 2, 2006")),
			SendEmail:   true,
		},
		ReservationID: reservation.ID.Hex(),
		BookID:        reservation.BookID.Hex(),
		CopyID:        held.ID.Hex(),
		PickupBy:      pickupBy,
	}); err != nil {
		s.Logger.Warn("failed to publish ReservationReady intent", zap.Error(err))
	}

	return reservation, nil
}

// Complete turns a ready hold into a borrowing. The member's concurrent
// loan cap is re-checked against the tier they hold now, not the tier at
// request time.
func (s *ReservationService) Complete(ctx context.Context, reservationID primitive.ObjectID) (*models.Borrowing, error) {
	reservation, err := s.loadReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status != models.ReservationReady {
		return nil, &PolicyError{Code: CodeReservationNotReady, Msg: "only ready reservations can be completed"}
	}
	if reservation.CopyID == nil {
		return nil, fmt.Errorf("ready reservation %s has no held copy", reservationID.Hex())
	}

	var member models.Member
	if err := s.MemberCol.FindOne(ctx, bson.M{"_id": reservation.MemberID}).Decode(&member); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{Entity: models.MemberEntity, ID: reservation.MemberID.Hex()}
		}
		return nil, fmt.Errorf("load member: %w", err)
	}
	tier := policy.Resolve(member.SubscriptionType, member.SubscriptionStatus, s.Limits)

	open, err := s.BorrowCol.CountDocuments(ctx, bson.M{
		"member_id": reservation.MemberID,
		"status":    bson.M{"$in": models.OpenBorrowingStatuses},
	})
	if err != nil {
		return nil, fmt.Errorf("count open loans: %w", err)
	}
	if open >= int64(tier.MaxConcurrentLoans) {
		return nil, &PolicyError{
			Code:  CodeBorrowLimitReached,
			Msg:   fmt.Sprintf("you can borrow up to %d books at a time", tier.MaxConcurrentLoans),
			Limit: tier.MaxConcurrentLoans,
		}
	}

	unlock, err := s.Locks.Lock(ctx, "book:"+reservation.BookID.Hex())
	if err != nil {
		return nil, fmt.Errorf("lock book: %w", err)
	}
	defer unlock()

	flipped, err := s.Catalog.ClaimCopy(ctx, *reservation.CopyID, models.StatusReserved, models.StatusBorrowed)
	if err != nil {
		return nil, err
	}
	if !flipped {
		return nil, &UnavailableError{Code: CodeNoAvailableCopy, Msg: "the held copy is no longer reserved"}
	}

	now := time.Now()
	borrowing := models.Borrowing{
		ID:           primitive.NewObjectID(),
		MemberID:     reservation.MemberID,
		BookID:       reservation.BookID,
		CopyID:       *reservation.CopyID,
		BorrowedDate: now,
		DueDate:      now.AddDate(0, 0, tier.LoanDays),
		Status:       models.BorrowingActive,
	}

	if _, err := s.BorrowCol.InsertOne(ctx, borrowing); err != nil {
		if _, relErr := s.Catalog.ClaimCopy(ctx, *reservation.CopyID, models.StatusBorrowed, models.StatusReserved); relErr != nil {
			s.Logger.Error("failed to restore copy hold after loan insert failure",
				zap.String("copy_id", reservation.CopyID.Hex()), zap.Error(relErr))
		}
		return nil, fmt.Errorf("record loan: %w", err)
	}

	if _, err := s.ResCol.UpdateOne(ctx,
		bson.M{"_id": reservationID, "status": models.ReservationReady},
		bson.M{"$set": bson.M{"status": models.ReservationCompleted, "completed_date": now}},
	); err != nil {
		return nil, fmt.Errorf("complete reservation: %w", err)
	}

	if err := s.recomputeQueue(ctx, reservation.BookID); err != nil {
		s.Logger.Error("queue recompute after completion failed",
			zap.String("book_id", reservation.BookID.Hex()), zap.Error(err))
	}

	utils.ReservationsCompletedTotal.Inc()
	utils.BorrowingsTotal.Inc()
	s.AuditLogger.Log(ctx, models.ReservationEntity, constants.Complete, reservation.MemberID.Hex(), borrowing)

	if err := s.Intents.PublishBookBorrowed(ctx, &models.BookBorrowedEvent{
		IntentEnvelope: models.IntentEnvelope{
			RecipientID: reservation.MemberID.Hex(),
			Title:       "Book borrowed",
			Message:     fmt.Sprintf("Your reserved book is now on loan, due %s", borrowing.DueDate.Format("Jan 2, 2006")),
		},
		BorrowingID: borrowing.ID.Hex(),
		BookID:      reservation.BookID.Hex(),
		CopyID:      reservation.CopyID.Hex(),
		DueDate:     borrowing.DueDate,
	}); err != nil {
		s.Logger.Warn("failed to publish BookBorrowed intent", zap.Error(err))
	}

	return &borrowing, nil
}

// Cancel withdraws a pending or ready hold and releases any held copy.
func (s *ReservationService) Cancel(ctx context.Context, reservationID primitive.ObjectID, cancelledBy string) (*models.Reservation, error) {
	reservation, err := s.loadReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	switch reservation.Status {
	case models.ReservationCompleted:
		return nil, &PolicyError{Code: CodeCannotCancelCompleted, Msg: "a completed reservation cannot be cancelled"}
	case models.ReservationCancelled, models.ReservationExpired:
		return nil, &PolicyError{Code: CodeReservationResolved, Msg: "this reservation is already resolved"}
	}

	now := time.Now()
	res := s.ResCol.FindOneAndUpdate(ctx,
		bson.M{"_id": reservationID, "status": bson.M{"$in": models.UnresolvedReservationStatuses}},
		bson.M{"$set": bson.M{
			"status":         models.ReservationCancelled,
			"cancelled_date": now,
			"cancelled_by":   cancelledBy,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err := res.Decode(reservation); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &PolicyError{Code: CodeReservationResolved, Msg: "this reservation is already resolved"}
		}
		return nil, fmt.Errorf("cancel reservation: %w", err)
	}

	if reservation.CopyID != nil {
		if _, err := s.Catalog.ClaimCopy(ctx, *reservation.CopyID, models.StatusReserved, models.StatusAvailable); err != nil {
			s.Logger.Error("failed to release held copy on cancel",
				zap.String("copy_id", reservation.CopyID.Hex()), zap.Error(err))
		}
	}

	if err := s.recomputeQueue(ctx, reservation.BookID); err != nil {
		s.Logger.Error("queue recompute after cancel failed",
			zap.String("book_id", reservation.BookID.Hex()), zap.Error(err))
	}

	s.AuditLogger.Log(ctx, models.ReservationEntity, constants.Cancel, cancelledBy, reservation)
	return reservation, nil
}

// RunExpirySweep expires pending/ready holds past their governing deadline,
// releases held copies and advances each affected book's queue.
func (s *ReservationService) RunExpirySweep(ctx context.Context, now time.Time) (SweepResult, error) {
	var result SweepResult

	cursor, err := s.ResCol.Find(ctx, bson.M{
		"status": bson.M{"$in": models.UnresolvedReservationStatuses},
		"$or": []bson.M{
			{"pickup_expiry_date": bson.M{"$lt": now}},
			{"pickup_expiry_date": nil, "queue_expiry_date": bson.M{"$lt": now}},
		},
	})
	if err != nil {
		return result, fmt.Errorf("find expired reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var stale []models.Reservation
	if err := cursor.All(ctx, &stale); err != nil {
		return result, fmt.Errorf("decode expired reservations: %w", err)
	}

	affectedBooks := map[primitive.ObjectID]bool{}
	for i := range stale {
		result.Scanned++
		if err := s.expireOne(ctx, &stale[i], now); err != nil {
			result.Errors++
			utils.SweepErrorsTotal.WithLabelValues("reservations").Inc()
			s.Logger.Error("expiry sweep item failed",
				zap.String("reservation_id", stale[i].ID.Hex()), zap.Error(err))
			continue
		}
		result.Updated++
		affectedBooks[stale[i].BookID] = true
	}

	for bookID := range affectedBooks {
		if err := s.recomputeQueue(ctx, bookID); err != nil {
			result.Errors++
			s.Logger.Error("queue recompute after expiry failed",
				zap.String("book_id", bookID.Hex()), zap.Error(err))
		}
	}

	s.Logger.Info("reservation expiry sweep finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("expired", result.Updated),
		zap.Int("errors", result.Errors))
	return result, nil
}

func (s *ReservationService) expireOne(ctx context.Context, reservation *models.Reservation, now time.Time) error {
	res, err := s.ResCol.UpdateOne(ctx,
		bson.M{"_id": reservation.ID, "status": bson.M{"$in": models.UnresolvedReservationStatuses}},
		bson.M{"$set": bson.M{"status": models.ReservationExpired}},
	)
	if err != nil {
		return fmt.Errorf("expire reservation: %w", err)
	}
	if res.ModifiedCount == 0 {
		return nil // resolved by someone else between the read and the write
	}

	if reservation.CopyID != nil {
		if _, err := s.Catalog.ClaimCopy(ctx, *reservation.CopyID, models.StatusReserved, models.StatusAvailable); err != nil {
			return err
		}
	}

	utils.ReservationsExpiredTotal.Inc()
	s.AuditLogger.Log(ctx, models.ReservationEntity, constants.Expire, "system", reservation.ID.Hex())

	if err := s.Intents.PublishReservationExpired(ctx, &models.ReservationExpiredEvent{
		IntentEnvelope: models.IntentEnvelope{
			RecipientID: reservation.MemberID.Hex(),
			Title:       "Reservation expired",
			Message:     "Your hold expired and the next member in line will be offered the book",
		},
		ReservationID: reservation.ID.Hex(),
		BookID:        reservation.BookID.Hex(),
		ExpiredAt:     now,
	}); err != nil {
		s.Logger.Warn("failed to publish ReservationExpired intent", zap.Error(err))
	}

	return nil
}

// Queue lists a book's unresolved holds in queue order.
func (s *ReservationService) Queue(ctx context.Context, bookID primitive.ObjectID) ([]models.Reservation, error) {
	cursor, err := s.ResCol.Find(ctx,
		bson.M{"book_id": bookID, "status": bson.M{"$in": models.UnresolvedReservationStatuses}},
		options.Find().SetSort(bson.D{{Key: "queue_position", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find queue: %w", err)
	}
	defer cursor.Close(ctx)

	var queue []models.Reservation
	if err := cursor.All(ctx, &queue); err != nil {
		return nil, fmt.Errorf("decode queue: %w", err)
	}
	return queue, nil
}

// recomputeQueue reassigns positions 1..N for a book's unresolved holds.
// A full re-sort after every insertion, cancellation or expiry keeps the
// sequence contiguous without incremental bookkeeping.
func (s *ReservationService) recomputeQueue(ctx context.Context, bookID primitive.ObjectID) error {
	unlock, err := s.Locks.Lock(ctx, "queue:"+bookID.Hex()+":positions")
	if err != nil {
		return err
	}
	defer unlock()

	cursor, err := s.ResCol.Find(ctx, bson.M{
		"book_id": bookID,
		"status":  bson.M{"$in": models.UnresolvedReservationStatuses},
	})
	if err != nil {
		return fmt.Errorf("find unresolved holds: %w", err)
	}
	defer cursor.Close(ctx)

	var queue []models.Reservation
	if err := cursor.All(ctx, &queue); err != nil {
		return fmt.Errorf("decode unresolved holds: %w", err)
	}

	OrderQueue(queue)

	for i := range queue {
		pos := i + 1
		if queue[i].QueuePosition == pos {
			continue
		}
		if _, err := s.ResCol.UpdateOne(ctx,
			bson.M{"_id": queue[i].ID},
			bson.M{"$set": bson.M{"queue_position": pos}},
		); err != nil {
			return fmt.Errorf("update queue position: %w", err)
		}
	}
	return nil
}

// OrderQueue sorts holds chronologically by ReservedDate, ties broken by
// creation order (ObjectID carries the insert timestamp).
func OrderQueue(queue []models.Reservation) {
	sort.SliceStable(queue, func(i, j int) bool {
		if queue[i].ReservedDate.Equal(queue[j].ReservedDate) {
			return queue[i].ID.Hex() < queue[j].ID.Hex()
		}
		return queue[i].ReservedDate.Before(queue[j].ReservedDate)
	})
}
