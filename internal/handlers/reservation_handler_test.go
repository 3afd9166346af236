package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"

	"github.com/sohaibislam45/BookFlix-sub002/internal/handlers"
	"github.com/sohaibislam45/BookFlix-sub002/internal/models"
	"github.com/sohaibislam45/BookFlix-sub002/internal/service"
)

func newReservationService(mt *mtest.T) *service.ReservationService {
	return &service.ReservationService{
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
		Limits:     testLimits(),
		ExpiryDays: 7,
		PickupDays: 3,
		Logger:     zap.NewNop(),
	}
}

func TestReservationHandler_Request(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil { // Ensure the client is initialized before disconnecting
		defer mt.Client.Disconnect(context.Background())
	}

	mt.Run("invalid book id", func(mt *mtest.T) {
		handler := handlers.ReservationHandler{Service: newReservationService(mt)}

		router := mux.NewRouter()
		router.HandleFunc("/reservations", handler.Request).Methods("POST")

		reqBody := handlers.ReserveRequest{
			MemberID: primitive.NewObjectID().Hex(),
			BookID:   "zzz",
		}
		reqBytes, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/reservations", bytes.NewReader(reqBytes))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusBadRequest {
			t.Errorf("expected status Bad Request, got %v", res.Status)
		}
	})

	mt.Run("member not found", func(mt *mtest.T) {
		handler := handlers.ReservationHandler{Service: newReservationService(mt)}

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.members", mtest.FirstBatch))

		router := mux.NewRouter()
		router.HandleFunc("/reservations", handler.Request).Methods("POST")

		reqBody := handlers.ReserveRequest{
			MemberID: primitive.NewObjectID().Hex(),
			BookID:   primitive.NewObjectID().Hex(),
		}
		reqBytes, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/reservations", bytes.NewReader(reqBytes))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusNotFound {
			t.Errorf("expected status Not Found, got %v", res.Status)
		}
	})

	mt.Run("duplicate hold is refused", func(mt *mtest.T) {
		handler := handlers.ReservationHandler{Service: newReservationService(mt)}

		memberID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.members", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: memberID},
				{Key: "subscription_type", Value: models.SubscriptionFree},
				{Key: "subscription_status", Value: models.SubscriptionActive},
			}),
			// one unresolved hold already on the book
			mtest.CreateCursorResponse(0, "test.reservations", mtest.FirstBatch, bson.D{
				{Key: "n", Value: int32(1)},
			}),
		)

		router := mux.NewRouter()
		router.HandleFunc("/reservations", handler.Request).Methods("POST")

		reqBody := handlers.ReserveRequest{
			MemberID: memberID.Hex(),
			BookID:   primitive.NewObjectID().Hex(),
		}
		reqBytes, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/reservations", bytes.NewReader(reqBytes))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusConflict {
			t.Errorf("expected status Conflict, got %v", res.Status)
		}
	})
}

func TestReservationHandler_Lifecycle(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil {
		defer mt.Client.Disconnect(context.Background())
	}

	mt.Run("mark ready rejects a non-pending hold", func(mt *mtest.T) {
		handler := handlers.ReservationHandler{Service: newReservationService(mt)}

		reservationID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "test.reservations", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: reservationID},
			{Key: "member_id", Value: primitive.NewObjectID()},
			{Key: "book_id", Value: primitive.NewObjectID()},
			{Key: "status", Value: models.ReservationReady},
		}))

		router := mux.NewRouter()
		router.HandleFunc("/reservations/ready", handler.MarkReady).Methods("POST")

		reqBody := handlers.MarkReadyRequest{ReservationID: reservationID.Hex()}
		reqBytes, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/reservations/ready", bytes.NewReader(reqBytes))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusConflict {
			t.Errorf("expected status Conflict, got %v", res.Status)
		}
	})

	mt.Run("complete rejects a pending hold", func(mt *mtest.T) {
		handler := handlers.ReservationHandler{Service: newReservationService(mt)}

		reservationID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "test.reservations", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: reservationID},
			{Key: "member_id", Value: primitive.NewObjectID()},
			{Key: "book_id", Value: primitive.NewObjectID()},
			{Key: "status", Value: models.ReservationPending},
		}))

		router := mux.NewRouter()
		router.HandleFunc("/reservations/complete", handler.Complete).Methods("POST")

		reqBody := handlers.CompleteRequest{ReservationID: reservationID.Hex()}
		reqBytes, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/reservations/complete", bytes.NewReader(reqBytes))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusConflict {
			t.Errorf("expected status Conflict, got %v", res.Status)
		}
	})

	mt.Run("cancel rejects a completed hold", func(mt *mtest.T) {
		handler := handlers.ReservationHandler{Service: newReservationService(mt)}

		reservationID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "test.reservations", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: reservationID},
			{Key: "member_id", Value: primitive.NewObjectID()},
			{Key: "book_id", Value: primitive.NewObjectID()},
			{Key: "status", Value: models.ReservationCompleted},
		}))

		router := mux.NewRouter()
		router.HandleFunc("/reservations/cancel", handler.Cancel).Methods("POST")

		reqBody := handlers.CancelRequest{ReservationID: reservationID.Hex()}
		reqBytes, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/reservations/cancel", bytes.NewReader(reqBytes))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusConflict {
			t.Errorf("expected status Conflict, got %v", res.Status)
		}
	})
}
