package models

import "time"

// Notification intent types emitted for the delivery collaborator, plus the
// payment fact this service consumes.
const (
	EventTypeBookBorrowed       = "BOOK_BORROWED"
	EventTypeBorrowingDue       = "BORROWING_DUE"
	EventTypeBorrowingOverdue   = "BORROWING_OVERDUE"
	EventTypeFineIssued         = "FINE_ISSUED"
	EventTypeReservationReady   = "RESERVATION_READY"
	EventTypeReservationExpired = "RESERVATION_EXPIRED"
	EventTypeFinePaid           = "FINE_PAID"
)

// BaseEvent contains common fields for all intents
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// IntentEnvelope is shared by every notification intent: who to notify and
// the human-readable rendering. Per-type metadata lives in the concrete
// event struct, not an open map.
type IntentEnvelope struct {
	RecipientID string `json:"recipient_id"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	SendEmail   bool   `json:"send_email"`
}

type BookBorrowedEvent struct {
	BaseEvent
	IntentEnvelope
	BorrowingID string    `json:"borrowing_id"`
	BookID      string    `json:"book_id"`
	CopyID      string    `json:"copy_id"`
	DueDate     time.Time `json:"due_date"`
}

type BorrowingDueEvent struct {
	BaseEvent
	IntentEnvelope
	BorrowingID   string    `json:"borrowing_id"`
	BookID        string    `json:"book_id"`
	DueDate       time.Time `json:"due_date"`
	DaysRemaining int       `json:"days_remaining"`
}

type BorrowingOverdueEvent struct {
	BaseEvent
	IntentEnvelope
	BorrowingID string    `json:"borrowing_id"`
	BookID      string    `json:"book_id"`
	DueDate     time.Time `json:"due_date"`
	DaysOverdue int       `json:"days_overdue"`
}

type FineIssuedEvent struct {
	BaseEvent
	IntentEnvelope
	FineID      string  `json:"fine_id"`
	BorrowingID string  `json:"borrowing_id"`
	Amount      float64 `json:"amount"`
	DaysOverdue int     `json:"days_overdue"`
}

type ReservationReadyEvent struct {
	BaseEvent
	IntentEnvelope
	ReservationID string    `json:"reservation_id"`
	BookID        string    `json:"book_id"`
	CopyID        string    `json:"copy_id"`
	PickupBy      time.Time `json:"pickup_by"`
}

type ReservationExpiredEvent struct {
	BaseEvent
	IntentEnvelope
	ReservationID string    `json:"reservation_id"`
	BookID        string    `json:"book_id"`
	ExpiredAt     time.Time `json:"expired_at"`
}

// FinePaidEvent is published by the payment collaborator and consumed here.
type FinePaidEvent struct {
	BaseEvent
	FineID    string    `json:"fine_id"`
	MemberID  string    `json:"member_id"`
	Amount    float64   `json:"amount"`
	PaidAt    time.Time `json:"paid_at"`
	PaymentID string    `json:"payment_id"`
}
