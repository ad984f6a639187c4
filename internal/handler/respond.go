// Package handler exposes the HTTP surface of the API.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if body == nil {
		return
	}

	// The status line is already out, so an encode failure cannot be
	// reported to the client.
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

func writeInternalError(w http.ResponseWriter, logger zerolog.Logger, err error, msg string) {
	logger.Error().Err(err).Msg(msg)
	writeError(w, http.StatusInternalServerError, "internal_error", "something went wrong")
}
