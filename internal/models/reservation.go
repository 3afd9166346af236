package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationReady     ReservationStatus = "READY"
	ReservationCompleted ReservationStatus = "COMPLETED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationExpired   ReservationStatus = "EXPIRED"

	ReservationEntity = "reservation"
)

// Reservation is a hold request in a per-book FIFO queue. QueuePosition is
// 1-based and strictly ordered by ReservedDate among PENDING/READY holds.
type Reservation struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	MemberID         primitive.ObjectID  `bson:"member_id" json:"member_id"`
	BookID           primitive.ObjectID  `bson:"book_id" json:"book_id"`
	CopyID           *primitive.ObjectID `bson:"copy_id,omitempty" json:"copy_id,omitempty"`
	ReservedDate     time.Time           `bson:"reserved_date" json:"reserved_date"`
	QueueExpiryDate  time.Time           `bson:"queue_expiry_date" json:"queue_expiry_date"`
	PickupExpiryDate *time.Time          `bson:"pickup_expiry_date,omitempty" json:"pickup_expiry_date,omitempty"`
	ReadyDate        *time.Time          `bson:"ready_date,omitempty" json:"ready_date,omitempty"`
	CompletedDate    *time.Time          `bson:"completed_date,omitempty" json:"completed_date,omitempty"`
	CancelledDate    *time.Time          `bson:"cancelled_date,omitempty" json:"cancelled_date,omitempty"`
	Status           ReservationStatus   `bson:"status" json:"status"`
	QueuePosition    int                 `bson:"queue_position" json:"queue_position"`
	CancelledBy      string              `bson:"cancelled_by,omitempty" json:"cancelled_by,omitempty"`
}

// ExpiresAt returns the governing deadline: the pickup window once the hold
// is ready, otherwise the original queue expiry.
func (r *Reservation) ExpiresAt() time.Time {
	if r.PickupExpiryDate != nil {
		return *r.PickupExpiryDate
	}
	return r.QueueExpiryDate
}

func (r *Reservation) IsExpired(now time.Time) bool {
	if r.Status != ReservationPending && r.Status != ReservationReady {
		return false
	}
	return now.After(r.ExpiresAt())
}

func (r *Reservation) IsResolved() bool {
	switch r.Status {
	case ReservationCompleted, ReservationCancelled, ReservationExpired:
		return true
	}
	return false
}

// UnresolvedReservationStatuses filter the holds that occupy a queue slot.
var UnresolvedReservationStatuses = []ReservationStatus{ReservationPending, ReservationReady}
