package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sohaibislam45/BookFlix-sub002/internal/service"
	"github.com/sohaibislam45/BookFlix-sub002/internal/utils"
)

type BookHandler struct {
	Catalog *service.CatalogService
}

func NewBookHandler(catalog *service.CatalogService) *BookHandler {
	return &BookHandler{Catalog: catalog}
}

type StockRequest struct {
	Target int `json:"target"`
}

// PUT /books/{id}/stock
func (h *BookHandler) SetStockLevel(w http.ResponseWriter, r *http.Request) {
	bookID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.JSONError(w, "Invalid book ID", http.StatusBadRequest)
		return
	}

	var req StockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid input", http.StatusBadRequest)
		return
	}

	added, removed, err := h.Catalog.SetStockLevel(r.Context(), bookID, req.Target)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Stock level reconciled",
		"added":   added,
		"removed": removed,
	})
}

// GET /books/{id}/availability
func (h *BookHandler) Availability(w http.ResponseWriter, r *http.Request) {
	bookID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.JSONError(w, "Invalid book ID", http.StatusBadRequest)
		return
	}

	total, err := h.Catalog.CountTotal(r.Context(), bookID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	available, err := h.Catalog.CountAvailable(r.Context(), bookID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"book_id":   bookID.Hex(),
		"total":     total,
		"available": available,
	})
}
