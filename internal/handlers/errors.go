package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sohaibislam45/BookFlix-sub002/internal/service"
	"github.com/sohaibislam45/BookFlix-sub002/internal/utils"
)

// respondServiceError maps the engine's error taxonomy onto HTTP statuses.
// Policy and availability rejections carry their code and numeric limit so
// the UI can render actionable guidance.
func respondServiceError(w http.ResponseWriter, err error) {
	var validation *service.ValidationError
	var notFound *service.NotFoundError
	var policyErr *service.PolicyError
	var unavailable *service.UnavailableError

	switch {
	case errors.As(err, &validation):
		utils.JSONError(w, validation.Msg, http.StatusBadRequest)
	case errors.As(err, &notFound):
		utils.JSONError(w, notFound.Error(), http.StatusNotFound)
	case errors.As(err, &policyErr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": policyErr.Msg,
			"code":  policyErr.Code,
			"limit": policyErr.Limit,
		})
	case errors.As(err, &unavailable):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": unavailable.Msg,
			"code":  unavailable.Code,
		})
	default:
		utils.GetLogger().Error("internal error", zap.Error(err))
		utils.JSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}
