package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CopyStatus string

const (
	StatusAvailable   CopyStatus = "AVAILABLE"
	StatusBorrowed    CopyStatus = "BORROWED"
	StatusReserved    CopyStatus = "RESERVED"
	StatusLost        CopyStatus = "LOST"
	StatusMaintenance CopyStatus = "MAINTENANCE"

	CopyEntity = "copy"
)

// BookCopy is one lending unit of a Book. Its status owns at most one open
// borrowing (BORROWED) or one active hold (RESERVED) at a time, never both.
type BookCopy struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BookID     primitive.ObjectID `bson:"book_id" json:"book_id"`
	CopyNumber int                `bson:"copy_number" json:"copy_number"`
	Barcode    string             `bson:"barcode" json:"barcode"`
	Status     CopyStatus         `bson:"status" json:"status"`
	IsActive   bool               `bson:"is_active" json:"is_active"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

var ValidCopyStatuses = map[string]bool{
	string(StatusAvailable):   true,
	string(StatusBorrowed):    true,
	string(StatusReserved):    true,
	string(StatusLost):        true,
	string(StatusMaintenance): true,
}

func IsValidCopyStatus(status string) bool {
	return ValidCopyStatuses[status]
}
