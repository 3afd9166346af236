package broker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sohaibislam45/BookFlix-sub002/internal/models"
)

// IntentPublisher packages state-change notification intents for the
// delivery collaborator. Delivery itself (email/push) happens elsewhere.
type IntentPublisher struct {
	producer *Producer
}

// NewIntentPublisher creates a new intent publisher
func NewIntentPublisher(producer *Producer) *IntentPublisher {
	return &IntentPublisher{producer: producer}
}

func newBase(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

func (ip *IntentPublisher) PublishBookBorrowed(ctx context.Context, event *models.BookBorrowedEvent) error {
	event.BaseEvent = newBase(models.EventTypeBookBorrowed)
	return ip.producer.PublishEvent(ctx, "member-"+event.RecipientID, event)
}

func (ip *IntentPublisher) PublishBorrowingDue(ctx context.Context, event *models.BorrowingDueEvent) error {
	event.BaseEvent = newBase(models.EventTypeBorrowingDue)
	return ip.producer.PublishEvent(ctx, "member-"+event.RecipientID, event)
}

func (ip *IntentPublisher) PublishBorrowingOverdue(ctx context.Context, event *models.BorrowingOverdueEvent) error {
	event.BaseEvent = newBase(models.EventTypeBorrowingOverdue)
	return ip.producer.PublishEvent(ctx, "member-"+event.RecipientID, event)
}

func (ip *IntentPublisher) PublishFineIssued(ctx context.Context, event *models.FineIssuedEvent) error {
	event.BaseEvent = newBase(models.EventTypeFineIssued)
	return ip.producer.PublishEvent(ctx, "member-"+event.RecipientID, event)
}

func (ip *IntentPublisher) PublishReservationReady(ctx context.Context, event *models.ReservationReadyEvent) error {
	event.BaseEvent = newBase(models.EventTypeReservationReady)
	return ip.producer.PublishEvent(ctx, "member-"+event.RecipientID, event)
}

func (ip *IntentPublisher) PublishReservationExpired(ctx context.Context, event *models.ReservationExpiredEvent) error {
	event.BaseEvent = newBase(models.EventTypeReservationExpired)
	return ip.producer.PublishEvent(ctx, "member-"+event.RecipientID, event)
}
