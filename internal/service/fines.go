package service

import (
	"context"
	"errors"
	"fmt"
	"math"
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

// FineService derives fines from overdue borrowings. The sweep is
// idempotent: one PENDING fine per borrowing, recomputed in place.
type FineService struct {
	FineCol     *mongo.Collection
	BorrowCol   *mongo.Collection
	Intents     Notifier
	FineRate    float64
	FineCap     float64 // present in configuration, not enforced at this layer
	GraceDays   int
	AuditLogger utils.AuditLogger
	Logger      *zap.Logger
}

// SweepResult summarizes one batch pass.
type SweepResult struct {
	Scanned int `json:"scanned"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

// FineFor computes the accrued penalty for a due date as of now.
func FineFor(now, dueDate time.Time, rate float64) (daysOverdue int, amount float64) {
	if !now.After(dueDate) {
		return 0, 0
	}
	daysOverdue = int(math.Ceil(now.Sub(dueDate).Hours() / 24))
	return daysOverdue, float64(daysOverdue) * rate
}

// RunFineSweep walks all open loans past due and accrues their fines.
// Per-item errors are counted so one bad record never aborts the batch.
func (s *FineService) RunFineSweep(ctx context.Context, now time.Time) (SweepResult, error) {
	var result SweepResult

	cursor, err := s.BorrowCol.Find(ctx, bson.M{
		"status":   bson.M{"$in": models.OpenBorrowingStatuses},
		"due_date": bson.M{"$lt": now},
	})
	if err != nil {
		return result, fmt.Errorf("find overdue borrowings: %w", err)
	}
	defer cursor.Close(ctx)

	var loans []models.Borrowing
	if err := cursor.All(ctx, &loans); err != nil {
		return result, fmt.Errorf("decode overdue borrowings: %w", err)
	}

	for i := range loans {
		result.Scanned++
		if err := s.sweepOne(ctx, &loans[i], now, &result); err != nil {
			result.Errors++
			utils.SweepErrorsTotal.WithLabelValues("fines").Inc()
			s.Logger.Error("fine sweep item failed",
				zap.String("borrowing_id", loans[i].ID.Hex()), zap.Error(err))
		}
	}

	s.Logger.Info("fine sweep finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("errors", result.Errors))
	return result, nil
}

func (s *FineService) sweepOne(ctx context.Context, loan *models.Borrowing, now time.Time, result *SweepResult) error {
	daysOverdue := loan.DaysOverdue(now)
	if daysOverdue <= 0 {
		return nil
	}

	// Converge the stored status; overdue-ness itself is always derived.
	if loan.Status == models.BorrowingActive {
		if _, err := s.BorrowCol.UpdateOne(ctx,
			bson.M{"_id": loan.ID, "status": models.BorrowingActive},
			bson.M{"$set": bson.M{"status": models.BorrowingOverdue}},
		); err != nil {
			return fmt.Errorf("mark borrowing overdue: %w", err)
		}
	}

	// Grace days delay accrual, not the overdue state itself.
	fineDays, amount := FineFor(now, loan.DueDate.AddDate(0, 0, s.GraceDays), s.FineRate)
	if fineDays > 0 {
		if err := s.accrueFine(ctx, loan, fineDays, amount, now, result); err != nil {
			return err
		}
	}

	// Every pass re-notifies while the loan stays overdue.
	if err := s.Intents.PublishBorrowingOverdue(ctx, &models.BorrowingOverdueEvent{
		IntentEnvelope: models.IntentEnvelope{
			RecipientID: loan.MemberID.Hex(),
			Title:       "Loan overdue",
			Message:     fmt.Sprintf("Your loan is %d days overdue", daysOverdue),
		},
		BorrowingID: loan.ID.Hex(),
		BookID:      loan.BookID.Hex(),
		DueDate:     loan.DueDate,
		DaysOverdue: daysOverdue,
	}); err != nil {
		s.Logger.Warn("failed to publish BorrowingOverdue intent", zap.Error(err))
	}

	return nil
}

// accrueFine recomputes an existing pending fine in place; never creates a
// second one for the same borrowing.
func (s *FineService) accrueFine(ctx context.Context, loan *models.Borrowing, daysOverdue int, amount float64, now time.Time, result *SweepResult) error {
	res := s.FineCol.FindOneAndUpdate(ctx,
		bson.M{"borrowing_id": loan.ID, "status": models.FinePending},
		bson.M{"$set": bson.M{"amount": amount, "days_overdue": daysOverdue}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var fine models.Fine
	err := res.Decode(&fine)
	switch {
	case err == nil:
		result.Updated++
		utils.FinesUpdatedTotal.Inc()

	case errors.Is(err, mongo.ErrNoDocuments):
		fine = models.Fine{
			ID:          primitive.NewObjectID(),
			MemberID:    loan.MemberID,
			BorrowingID: loan.ID,
			Amount:      amount,
			DaysOverdue: daysOverdue,
			Status:      models.FinePending,
			IssuedDate:  now,
		}
		if _, err := s.FineCol.InsertOne(ctx, fine); err != nil {
			return fmt.Errorf("insert fine: %w", err)
		}
		result.Created++
		utils.FinesIssuedTotal.Inc()
		s.AuditLogger.Log(ctx, models.FineEntity, constants.IssueFine, "system", fine)

		if err := s.Intents.PublishFineIssued(ctx, &models.FineIssuedEvent{
			IntentEnvelope: models.IntentEnvelope{
				RecipientID: loan.MemberID.Hex(),
				Title:       "Fine issued",
				Message:     fmt.Sprintf("A fine of %.2f was issued for a loan %d days overdue", amount, daysOverdue),
				SendEmail:   true,
			},
			FineID:      fine.ID.Hex(),
			BorrowingID: loan.ID.Hex(),
			Amount:      amount,
			DaysOverdue: daysOverdue,
		}); err != nil {
			s.Logger.Warn("failed to publish FineIssued intent", zap.Error(err))
		}

	default:
		return fmt.Errorf("upsert fine: %w", err)
	}
	return nil
}

// RunDueReminders nudges members whose loans come due within the next day.
func (s *FineService) RunDueReminders(ctx context.Context, now time.Time) (int, error) {
	cursor, err := s.BorrowCol.Find(ctx, bson.M{
		"status":   models.BorrowingActive,
		"due_date": bson.M{"$gte": now, "$lt": now.AddDate(0, 0, 1)},
	})
	if err != nil {
		return 0, fmt.Errorf("find due loans: %w", err)
	}
	defer cursor.Close(ctx)

	var loans []models.Borrowing
	if err := cursor.All(ctx, &loans); err != nil {
		return 0, fmt.Errorf("decode due loans: %w", err)
	}

	sent := 0
	for i := range loans {
		loan := &loans[i]
		if err := s.Intents.PublishBorrowingDue(ctx, &models.BorrowingDueEvent{
			IntentEnvelope: models.IntentEnvelope{
				RecipientID: loan.MemberID.Hex(),
				Title:       "Loan due soon",
				Message:     fmt.Sprintf("Your loan is due on %s", loan.DueDate.Format("Jan 2, 2006")),
			},
			BorrowingID:   loan.ID.Hex(),
			BookID:        loan.BookID.Hex(),
			DueDate:       loan.DueDate,
			DaysRemaining: loan.DaysRemaining(now),
		}); err != nil {
			s.Logger.Warn("failed to publish BorrowingDue intent",
				zap.String("borrowing_id", loan.ID.Hex()), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

// Waive closes a pending fine without payment.
func (s *FineService) Waive(ctx context.Context, fineID primitive.ObjectID, waivedBy, notes string) (*models.Fine, error) {
	now := time.Now()

	res := s.FineCol.FindOneAndUpdate(ctx,
		bson.M{"_id": fineID, "status": models.FinePending},
		bson.M{"$set": bson.M{
			"status":      models.FineWaived,
			"waived_date": now,
			"waived_by":   waivedBy,
			"notes":       notes,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var fine models.Fine
	if err := res.Decode(&fine); err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("waive fine: %w", err)
		}
		count, cerr := s.FineCol.CountDocuments(ctx, bson.M{"_id": fineID})
		if cerr != nil {
			return nil, fmt.Errorf("waive fine: %w", cerr)
		}
		if count == 0 {
			return nil, &NotFoundError{Entity: models.FineEntity, ID: fineID.Hex()}
		}
		return nil, &PolicyError{Code: CodeFineNotPending, Msg: "only pending fines can be waived"}
	}

	s.AuditLogger.Log(ctx, models.FineEntity, constants.WaiveFine, waivedBy, fine)
	return &fine, nil
}

// MarkPaid records the payment collaborator's "fine paid" fact. Already
// settled fines are a no-op so the consumer can safely re-deliver.
func (s *FineService) MarkPaid(ctx context.Context, fineID primitive.ObjectID, paidAt time.Time) error {
	res, err := s.FineCol.UpdateOne(ctx,
		bson.M{"_id": fineID, "status": models.FinePending},
		bson.M{"$set": bson.M{"status": models.FinePaid, "paid_date": paidAt}},
	)
	if err != nil {
		return fmt.Errorf("mark fine paid: %w", err)
	}
	if res.MatchedCount == 0 {
		s.Logger.Info("fine paid fact ignored, fine not pending", zap.String("fine_id", fineID.Hex()))
		return nil
	}

	s.AuditLogger.Log(ctx, models.FineEntity, constants.PayFine, "payment-collaborator", fineID.Hex())
	return nil
}

// MemberFines lists a member's fines, newest first.
func (s *FineService) MemberFines(ctx context.Context, memberID primitive.ObjectID) ([]models.Fine, error) {
	cursor, err := s.FineCol.Find(ctx,
		bson.M{"member_id": memberID},
		options.Find().SetSort(bson.D{{Key: "issued_date", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find member fines: %w", err)
	}
	defer cursor.Close(ctx)

	var fines []models.Fine
	if err := cursor.All(ctx, &fines); err != nil {
		return nil, fmt.Errorf("decode fines: %w", err)
	}
	return fines, nil
}
