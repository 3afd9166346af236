package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"

	"github.com/sohaibislam45/BookFlix-sub002/internal/handlers"
	"github.com/sohaibislam45/BookFlix-sub002/internal/models"
	"github.com/sohaibislam45/BookFlix-sub002/internal/policy"
	"github.com/sohaibislam45/BookFlix-sub002/internal/service"
)

func testLimits() policy.Limits {
	return policy.Limits{
		GeneralLoanDays: 7,
		PremiumLoanDays: 14,
		GeneralMaxLoans: 2,
		PremiumMaxLoans: 4,
		MaxRenewals:     2,
	}
}

func newBorrowingService(mt *mtest.T) *service.BorrowingService {
	return &service.BorrowingService{
		MemberCol: mt.Coll,
		BookCol:   mt.Coll,
		BorrowCol: mt.Coll,
		Catalog: &service.CatalogService{
			BookCol: mt.Coll,
			CopyCol: mt.Coll,
			Logger:  zap.NewNop(),
		},
		Locks:   service.NopLocker{},
		Intents: service.NopNotifier{},
		Limits:  testLimits(),
		Logger:  zap.NewNop(),
	}
}

func TestBorrowingHandler_Borrow(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil { // Ensure the client is initialized before disconnecting
		defer mt.Client.Disconnect(context.Background())
	}

	mt.Run("invalid member id", func(mt *mtest.T) {
		handler := handlers.BorrowingHandler{Service: newBorrowingService(mt)}

		router := mux.NewRouter()
		router.HandleFunc("/borrowings", handler.Borrow).Methods("POST")

		reqBody := handlers.BorrowRequest{
			MemberID: "not-a-hex-id",
			BookID:   primitive.NewObjectID().Hex(),
		}
		reqBytes, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/borrowings", bytes.NewReader(reqBytes))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusBadRequest {
			t.Errorf("expected status Bad Request, got %v", res.Status)
		}
	})

	mt.Run("member not found", func(mt *mtest.T) {
		handler := handlers.BorrowingHandler{Service: newBorrowingService(mt)}

		// empty first batch means no member document
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.members", mtest.FirstBatch))

		router := mux.NewRouter()
		router.HandleFunc("/borrowings", handler.Borrow).Methods("POST")

		reqBody := handlers.BorrowRequest{
			MemberID: primitive.NewObjectID().Hex(),
			BookID:   primitive.NewObjectID().Hex(),
		}
		reqBytes, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/borrowings", bytes.NewReader(reqBytes))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusNotFound {
			t.Errorf("expected status Not Found, got %v", res.Status)
		}
	})

	mt.Run("unknown book", func(mt *mtest.T) {
		handler := handlers.BorrowingHandler{Service: newBorrowingService(mt)}

		memberID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.members", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: memberID},
				{Key: "subscription_type", Value: models.SubscriptionFree},
				{Key: "subscription_status", Value: models.SubscriptionActive},
			}),
			mtest.CreateCursorResponse(0, "test.borrowings", mtest.FirstBatch, bson.D{
				{Key: "n", Value: int32(0)},
			}),
			// no active book with this id
			mtest.CreateCursorResponse(0, "test.books", mtest.FirstBatch),
		)

		router := mux.NewRouter()
		router.HandleFunc("/borrowings", handler.Borrow).Methods("POST")

		reqBody := handlers.BorrowRequest{
			MemberID: memberID.Hex(),
			BookID:   primitive.NewObjectID().Hex(),
		}
		reqBytes, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/borrowings", bytes.NewReader(reqBytes))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusNotFound {
			t.Errorf("expected status Not Found, got %v", res.Status)
		}
	})

	mt.Run("free member at loan cap is refused", func(mt *mtest.T) {
		handler := handlers.BorrowingHandler{Service: newBorrowingService(mt)}

		memberID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.members", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: memberID},
				{Key: "subscription_type", Value: models.SubscriptionFree},
				{Key: "subscription_status", Value: models.SubscriptionActive},
				{Key: "is_active", Value: true},
			}),
			// open-loan count already at the general-tier cap of 2
			mtest.CreateCursorResponse(1, "test.borrowings", mtest.FirstBatch, bson.D{
				{Key: "n", Value: int32(2)},
			}),
		)

		router := mux.NewRouter()
		router.HandleFunc("/borrowings", handler.Borrow).Methods("POST")

		reqBody := handlers.BorrowRequest{
			MemberID: memberID.Hex(),
			BookID:   primitive.NewObjectID().Hex(),
		}
		reqBytes, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/borrowings", bytes.NewReader(reqBytes))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusConflict {
			t.Errorf("expected status Conflict, got %v", res.Status)
		}
	})
}

func TestBorrowingHandler_Renew(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil {
		defer mt.Client.Disconnect(context.Background())
	}

	mt.Run("unknown loan", func(mt *mtest.T) {
		handler := handlers.BorrowingHandler{Service: newBorrowingService(mt)}

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.borrowings", mtest.FirstBatch))

		router := mux.NewRouter()
		router.HandleFunc("/borrowings/renew", handler.Renew).Methods("POST")

		reqBody := handlers.RenewRequest{BorrowingID: primitive.NewObjectID().Hex()}
		reqBytes, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/borrowings/renew", bytes.NewReader(reqBytes))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusNotFound {
			t.Errorf("expected status Not Found, got %v", res.Status)
		}
	})

	mt.Run("second renewal is the last", func(mt *mtest.T) {
		handler := handlers.BorrowingHandler{Service: newBorrowingService(mt)}

		borrowingID := primitive.NewObjectID()
		memberID := primitive.NewObjectID()
		due := time.Now().Add(48 * time.Hour)

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.borrowings", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: borrowingID},
				{Key: "member_id", Value: memberID},
				{Key: "book_id", Value: primitive.NewObjectID()},
				{Key: "status", Value: models.BorrowingActive},
				{Key: "due_date", Value: primitive.NewDateTimeFromTime(due)},
				{Key: "renewal_count", Value: int32(1)},
			}),
			mtest.CreateCursorResponse(0, "test.members", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: memberID},
				{Key: "subscription_type", Value: models.SubscriptionFree},
				{Key: "subscription_status", Value: models.SubscriptionActive},
			}),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: borrowingID},
				{Key: "member_id", Value: memberID},
				{Key: "status", Value: models.BorrowingActive},
				{Key: "due_date", Value: primitive.NewDateTimeFromTime(due.AddDate(0, 0, 7))},
				{Key: "renewed", Value: true},
				{Key: "renewal_count", Value: int32(2)},
			}}),
		)

		router := mux.NewRouter()
		router.HandleFunc("/borrowings/renew", handler.Renew).Methods("POST")

		reqBody := handlers.RenewRequest{BorrowingID: borrowingID.Hex()}
		reqBytes, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/borrowings/renew", bytes.NewReader(reqBytes))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			t.Errorf("expected status OK, got %v", res.Status)
		}

		var renewed models.Borrowing
		if err := json.NewDecoder(res.Body).Decode(&renewed); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if renewed.RenewalCount != 2 || !renewed.Renewed {
			t.Errorf("expected renewal_count 2, got %d", renewed.RenewalCount)
		}
	})

	mt.Run("renewal cap reached", func(mt *mtest.T) {
		handler := handlers.BorrowingHandler{Service: newBorrowingService(mt)}

		borrowingID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "test.borrowings", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: borrowingID},
			{Key: "member_id", Value: primitive.NewObjectID()},
			{Key: "book_id", Value: primitive.NewObjectID()},
			{Key: "status", Value: models.BorrowingActive},
			{Key: "due_date", Value: primitive.NewDateTimeFromTime(time.Now().Add(48 * time.Hour))},
			{Key: "renewal_count", Value: int32(2)},
		}))

		router := mux.NewRouter()
		router.HandleFunc("/borrowings/renew", handler.Renew).Methods("POST")

		reqBody := handlers.RenewRequest{BorrowingID: borrowingID.Hex()}
		reqBytes, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/borrowings/renew", bytes.NewReader(reqBytes))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusConflict {
			t.Errorf("expected status Conflict, got %v", res.Status)
		}

		var body map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body["code"] != "RenewalLimitReached" {
			t.Errorf("expected code RenewalLimitReached, got %v", body["code"])
		}
		if limit, _ := body["limit"].(float64); int(limit) != 2 {
			t.Errorf("expected limit 2, got %v", body["limit"])
		}
	})

	mt.Run("returned loan cannot be renewed", func(mt *mtest.T) {
		handler := handlers.BorrowingHandler{Service: newBorrowingService(mt)}

		borrowingID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "test.borrowings", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: borrowingID},
			{Key: "member_id", Value: primitive.NewObjectID()},
			{Key: "book_id", Value: primitive.NewObjectID()},
			{Key: "status", Value: models.BorrowingReturned},
		}))

		router := mux.NewRouter()
		router.HandleFunc("/borrowings/renew", handler.Renew).Methods("POST")

		reqBody := handlers.RenewRequest{BorrowingID: borrowingID.Hex()}
		reqBytes, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/borrowings/renew", bytes.NewReader(reqBytes))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusConflict {
			t.Errorf("expected status Conflict, got %v", res.Status)
		}
	})
}
