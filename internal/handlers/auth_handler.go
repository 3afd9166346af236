package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sohaibislam45/BookFlix-sub002/internal/utils"
)

type AuthHandler struct {
	ConfigCreds struct {
		UserId       string
		Username     string
		UserPassword string
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid input", http.StatusBadRequest)
		return
	}

	if req.Username != h.ConfigCreds.Username || req.Password != h.ConfigCreds.UserPassword {
		utils.JSONError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := utils.GenerateJWT(h.ConfigCreds.UserId, "librarian")
	if err != nil {
		utils.JSONError(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"token": token})
}
