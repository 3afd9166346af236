package handlers

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sohaibislam45/BookFlix-sub002/internal/service"
	"github.com/sohaibislam45/BookFlix-sub002/internal/utils"
)

type BorrowingHandler struct {
	Service *service.BorrowingService
}

type BorrowRequest struct {
	MemberID string `json:"member_id"`
	BookID   string `json:"book_id"`
}

// POST /borrowings
func (h *BorrowingHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	var req BorrowRequest
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

	borrowing, err := h.Service.Borrow(r.Context(), memberID, bookID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(borrowing)
}

type ReturnRequest struct {
	BorrowingID string `json:"borrowing_id"`
	ReturnedBy  string `json:"returned_by,omitempty"`
}

// POST /borrowings/return
func (h *BorrowingHandler) Return(w http.ResponseWriter, r *http.Request) {
	var req ReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid input", http.StatusBadRequest)
		return
	}

	borrowingID, err := primitive.ObjectIDFromHex(req.BorrowingID)
	if err != nil {
		utils.JSONError(w, "Invalid borrowing ID", http.StatusBadRequest)
		return
	}

	borrowing, err := h.Service.Return(r.Context(), borrowingID, req.ReturnedBy)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	json.NewEncoder(w).Encode(borrowing)
}

type RenewRequest struct {
	BorrowingID string `json:"borrowing_id"`
}

// POST /borrowings/renew
func (h *BorrowingHandler) Renew(w http.ResponseWriter, r *http.Request) {
	var req RenewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid input", http.StatusBadRequest)
		return
	}

	borrowingID, err := primitive.ObjectIDFromHex(req.BorrowingID)
	if err != nil {
		utils.JSONError(w, "Invalid borrowing ID", http.StatusBadRequest)
		return
	}

	borrowing, err := h.Service.Renew(r.Context(), borrowingID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	json.NewEncoder(w).Encode(borrowing)
}

// GET /borrowings/overdue
func (h *BorrowingHandler) GetOverdue(w http.ResponseWriter, r *http.Request) {
	loans, err := h.Service.OverdueLoans(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	json.NewEncoder(w).Encode(loans)
}
