package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BorrowingStatus string

const (
	BorrowingActive   BorrowingStatus = "ACTIVE"
	BorrowingOverdue  BorrowingStatus = "OVERDUE"
	BorrowingReturned BorrowingStatus = "RETURNED"

	BorrowingEntity = "borrowing"
)

type Borrowing struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID     primitive.ObjectID `bson:"member_id" json:"member_id"`
	BookID       primitive.ObjectID `bson:"book_id" json:"book_id"`
	CopyID       primitive.ObjectID `bson:"copy_id" json:"copy_id"`
	BorrowedDate time.Time          `bson:"borrowed_date" json:"borrowed_date"`
	DueDate      time.Time          `bson:"due_date" json:"due_date"`
	ReturnedDate *time.Time         `bson:"returned_date,omitempty" json:"returned_date,omitempty"`
	Status       BorrowingStatus    `bson:"status" json:"status"`
	Renewed      bool               `bson:"renewed" json:"renewed"`
	RenewalCount int                `bson:"renewal_count" json:"renewal_count"`
	ReturnedBy   string             `bson:"returned_by,omitempty" json:"returned_by,omitempty"`
}

// IsOverdue is derived from the due date, never from the stored status.
// The fine sweep persists OVERDUE for query convenience but no business
// rule reads the stored value.
func (b *Borrowing) IsOverdue(now time.Time) bool {
	return b.ReturnedDate == nil && now.After(b.DueDate)
}

func (b *Borrowing) DaysOverdue(now time.Time) int {
	if !b.IsOverdue(now) {
		return 0
	}
	return int(math.Ceil(now.Sub(b.DueDate).Hours() / 24))
}

func (b *Borrowing) DaysRemaining(now time.Time) int {
	if b.ReturnedDate != nil || now.After(b.DueDate) {
		return 0
	}
	return int(math.Ceil(b.DueDate.Sub(now).Hours() / 24))
}

// OpenBorrowingStatuses filter the loans that still hold a copy.
var OpenBorrowingStatuses = []BorrowingStatus{BorrowingActive, BorrowingOverdue}
