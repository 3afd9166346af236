package service

import (
	"context"

	"github.com/sohaibislam45/BookFlix-sub002/internal/models"
)

// Locker serializes mutations per book. Backed by Redis SetNX in
// production; NopLocker in tests.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type NopLocker struct{}

func (NopLocker) Lock(ctx context.Context, key string) (func(), error) {
	return func() {}, nil
}

// Notifier emits notification intents. Implemented by broker.IntentPublisher.
type Notifier interface {
	PublishBookBorrowed(ctx context.Context, event *models.BookBorrowedEvent) error
	PublishBorrowingDue(ctx context.Context, event *models.BorrowingDueEvent) error
	PublishBorrowingOverdue(ctx context.Context, event *models.BorrowingOverdueEvent) error
	PublishFineIssued(ctx context.Context, event *models.FineIssuedEvent) error
	PublishReservationReady(ctx context.Context, event *models.ReservationReadyEvent) error
	PublishReservationExpired(ctx context.Context, event *models.ReservationExpiredEvent) error
}

// NopNotifier drops intents; used in tests.
type NopNotifier struct{}

func (NopNotifier) PublishBookBorrowed(context.Context, *models.BookBorrowedEvent) error { return nil }
func (NopNotifier) PublishBorrowingDue(context.Context, *models.BorrowingDueEvent) error { return nil }
func (NopNotifier) PublishBorrowingOverdue(context.Context, *models.BorrowingOverdueEvent) error {
	return nil
}
func (NopNotifier) PublishFineIssued(context.Context, *models.FineIssuedEvent) error { return nil }
func (NopNotifier) PublishReservationReady(context.Context, *models.ReservationReadyEvent) error {
	return nil
}
func (NopNotifier) PublishReservationExpired(context.Context, *models.ReservationExpiredEvent) error {
	return nil
}
