package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sohaibislam45/BookFlix-sub002/internal/service"
	"github.com/sohaibislam45/BookFlix-sub002/internal/utils"
)

type FineHandler struct {
	Service *service.FineService
}

type WaiveRequest struct {
	WaivedBy string `json:"waived_by"`
	Notes    string `json:"notes,omitempty"`
}

// POST /fines/{id}/waive
func (h *FineHandler) Waive(w http.ResponseWriter, r *http.Request) {
	fineID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.JSONError(w, "Invalid fine ID", http.StatusBadRequest)
		return
	}

	var req WaiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid input", http.StatusBadRequest)
		return
	}

	fine, err := h.Service.Waive(r.Context(), fineID, req.WaivedBy, req.Notes)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	json.NewEncoder(w).Encode(fine)
}

// GET /members/{id}/fines
func (h *FineHandler) MemberFines(w http.ResponseWriter, r *http.Request) {
	memberID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.JSONError(w, "Invalid member ID", http.StatusBadRequest)
		return
	}

	fines, err := h.Service.MemberFines(r.Context(), memberID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	json.NewEncoder(w).Encode(fines)
}
