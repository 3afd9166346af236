package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FineStatus string

const (
	FinePending FineStatus = "PENDING"
	FinePaid    FineStatus = "PAID"
	FineWaived  FineStatus = "WAIVED"

	FineEntity = "fine"
)

// Fine is a per-day penalty for one overdue borrowing. At most one PENDING
// fine exists per borrowing; the sweep updates it in place while overdue.
type Fine struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID    primitive.ObjectID `bson:"member_id" json:"member_id"`
	BorrowingID primitive.ObjectID `bson:"borrowing_id" json:"borrowing_id"`
	Amount      float64            `bson:"amount" json:"amount"`
	DaysOverdue int                `bson:"days_overdue" json:"days_overdue"`
	Status      FineStatus         `bson:"status" json:"status"`
	IssuedDate  time.Time          `bson:"issued_date" json:"issued_date"`
	PaidDate    *time.Time         `bson:"paid_date,omitempty" json:"paid_date,omitempty"`
	WaivedDate  *time.Time         `bson:"waived_date,omitempty" json:"waived_date,omitempty"`
	WaivedBy    string             `bson:"waived_by,omitempty" json:"waived_by,omitempty"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
}
