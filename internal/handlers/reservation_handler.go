package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sohaibislam45/BookFlix-sub002/internal/service"
	"github.com/sohaibislam45/BookFlix-sub002/internal/utils"
)

type ReservationHandler struct {
	Service *service.ReservationService
}

type ReserveRequest struct {
	MemberID string `json:"member_id"`
	BookID   string `json:"book_id"`
}

// POST /reservations
func (h *ReservationHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid input", http.StatusBadRequest)
		return
	}

	memberID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		utils.JSONError(w, "Invalid member ID", http.StatusBadRequest)
		return
	}
	bookID, err := primitive.ObjectIDFromHex(req.BookID)
	if err != nil {
		utils.JSONError(w, "Invalid book ID", http.StatusBadRequest)
		return
	}

	reservation, err := h.Service.Request(r.Context(), memberID, bookID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(reservation)
}

type MarkReadyRequest struct {
	ReservationID string `json:"reservation_id"`
	CopyID        string `json:"copy_id,omitempty"`
}

// POST /reservations/ready
func (h *ReservationHandler) MarkReady(w http.ResponseWriter, r *http.Request) {
	var req MarkReadyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid input", http.StatusBadRequest)
		return
	}

	reservationID, err := primitive.ObjectIDFromHex(req.ReservationID)
	if err != nil {
		utils.JSONError(w, "Invalid reservation ID", http.StatusBadRequest)
		return
	}

	var copyID *primitive.ObjectID
	if req.CopyID != "" {
		id, err := primitive.ObjectIDFromHex(req.CopyID)
		if err != nil {
			utils.JSONError(w, "Invalid copy ID", http.StatusBadRequest)
			return
		}
		copyID = &id
	}

	reservation, err := h.Service.MarkReady(r.Context(), reservationID, copyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	json.NewEncoder(w).Encode(reservation)
}

type CompleteRequest struct {
	ReservationID string `json:"reservation_id"`
}

// POST /reservations/complete
func (h *ReservationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid input", http.StatusBadRequest)
		return
	}

	reservationID, err := primitive.ObjectIDFromHex(req.ReservationID)
	if err != nil {
		utils.JSONError(w, "Invalid reservation ID", http.StatusBadRequest)
		return
	}

	borrowing, err := h.Service.Complete(r.Context(), reservationID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(borrowing)
}

type CancelRequest struct {
	ReservationID string `json:"reservation_id"`
	CancelledBy   string `json:"cancelled_by,omitempty"`
}

// POST /reservations/cancel
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid input", http.StatusBadRequest)
		return
	}

	reservationID, err := primitive.ObjectIDFromHex(req.ReservationID)
	if err != nil {
		utils.JSONError(w, "Invalid reservation ID", http.StatusBadRequest)
		return
	}

	reservation, err := h.Service.Cancel(r.Context(), reservationID, req.CancelledBy)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	json.NewEncoder(w).Encode(reservation)
}

// GET /reservations/queue/{bookId}
func (h *ReservationHandler) Queue(w http.ResponseWriter, r *http.Request) {
	bookID, err := primitive.ObjectIDFromHex(mux.Vars(r)["bookId"])
	if err != nil {
		utils.JSONError(w, "Invalid book ID", http.StatusBadRequest)
		return
	}

	queue, err := h.Service.Queue(r.Context(), bookID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	json.NewEncoder(w).Encode(queue)
}
