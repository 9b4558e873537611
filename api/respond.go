package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/top3pick/phonerec/logging"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log := logging.Logger()
		log.Error().Err(err).Msg("marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		log := logging.Logger()
		log.Error().Err(err).Msg("write response")
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorBody{Error: msg})
}

func respondErrorMessage(w http.ResponseWriter, status int, msg, detail string) {
	respondJSON(w, status, errorBody{Error: msg, Message: detail})
}
