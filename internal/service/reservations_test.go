package service_test

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"

	"github.com/sohaibislam45/BookFlix-sub002/internal/models"
	"github.com/sohaibislam45/BookFlix-sub002/internal/service"
)

func TestMarkReadySuppliedCopyScopedToBook(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil { // Ensure the client is initialized before disconnecting
		defer mt.Client.Disconnect(context.Background())
	}

	mt.Run("copy of another book is rejected", func(mt *mtest.T) {
		svc := &service.ReservationService{
			ResCol:    mt.Coll,
			MemberCol: mt.Coll,
			BorrowCol: mt.Coll,
			Catalog: &service.CatalogService{
				BookCol: mt.Coll,
				CopyCol: mt.Coll,
				Logger:  zap.NewNop(),
			},
			Locks:      service.NopLocker{},
			Intents:    service.NopNotifier{},
			ExpiryDays: 7,
			PickupDays: 3,
			Logger:     zap.NewNop(),
		}

		reservationID := primitive.NewObjectID()
		bookID := primitive.NewObjectID()
		foreignCopyID := primitive.NewObjectID() // a copy of some other book

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.reservations", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: reservationID},
				{Key: "member_id", Value: primitive.NewObjectID()},
				{Key: "book_id", Value: bookID},
				{Key: "status", Value: models.ReservationPending},
			}),
			// the book-scoped claim matches nothing
			mtest.CreateSuccessResponse(
				bson.E{Key: "n", Value: 0},
				bson.E{Key: "nModified", Value: 0},
			),
		)

		_, err := svc.MarkReady(context.Background(), reservationID, &foreignCopyID)

		var unavailable *service.UnavailableError
		if !errors.As(err, &unavailable) || unavailable.Code != service.CodeNoAvailableCopy {
			mt.Fatalf("expected NoAvailableCopy, got %v", err)
		}

		// the claim filter must pin the copy to the reservation's book
		var updateCmd bson.Raw
		for _, ev := range mt.GetAllStartedEvents() {
			if ev.CommandName == "update" {
				updateCmd = ev.Command
			}
		}
		if updateCmd == nil {
			mt.Fatal("no copy claim was issued")
		}
		updates, err := updateCmd.Lookup("updates").Array().Values()
		if err != nil || len(updates) == 0 {
			mt.Fatalf("malformed update command: %v", err)
		}
		filter := updates[0].Document().Lookup("q").Document()
		claimedBook, lookupErr := filter.LookupErr("book_id")
		if lookupErr != nil {
			mt.Fatal("copy claim filter does not carry the reservation's book id")
		}
		if oid, _ := claimedBook.ObjectIDOK(); oid != bookID {
			mt.Fatalf("copy claim scoped to wrong book: %s", oid.Hex())
		}
	})
}
