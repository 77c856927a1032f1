package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/aegis-panel/internal/contracts"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps an evaluation error to an HTTP status
func statusFor(err error) int {
	var de *contracts.DataError
	switch {
	case errors.Is(err, contracts.ErrUnknownInstrument), errors.Is(err, contracts.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499 // client closed request
	case errors.As(err, &de):
		if de.Err != nil {
			// the source itself failed, not the request
			return http.StatusServiceUnavailable
		}
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
