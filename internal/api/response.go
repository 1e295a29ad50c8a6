package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Arkiv-Network/inf-demo/internal/types"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondTypedError hides the cause of internal errors from the client
func respondTypedError(w http.ResponseWriter, err *types.Error) {
	message := err.Error()
	if err.StatusCode >= http.StatusInternalServerError {
		log.Error().Err(err.Err).Str("code", err.ErrorCode.String()).Msg("request failed")
		message = "Internal server error"
	}
	respondJSON(w, err.StatusCode, map[string]string{
		"error": message,
		"code":  err.ErrorCode.String(),
	})
}
