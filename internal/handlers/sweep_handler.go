package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sohaibislam45/BookFlix-sub002/internal/service"
)

// SweepHandler exposes the batch passes to an external scheduler.
type SweepHandler struct {
	Fines        *service.FineService
	Reservations *service.ReservationService
}

// POST /sweeps/fines
func (h *SweepHandler) RunFineSweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.Fines.RunFineSweep(r.Context(), time.Now())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	json.NewEncoder(w).Encode(result)
}

// POST /sweeps/reservations
func (h *SweepHandler) RunExpirySweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.Reservations.RunExpirySweep(r.Context(), time.Now())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	json.NewEncoder(w).Encode(result)
}
