package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/yusufkecer/anamnesis-backend/internal/repository"
	"github.com/yusufkecer/anamnesis-backend/internal/service"
	"github.com/yusufkecer/anamnesis-backend/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeServiceError maps domain errors to status codes. Anything unknown is
// logged and reported as a 500 with msg.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrPatientNotFound),
		errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, service.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidPatient),
		errors.Is(err, session.ErrInvalidSession),
		errors.Is(err, service.ErrInvalidAccount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrDuplicateSession),
		errors.Is(err, repository.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg(msg)
		writeError(w, http.StatusInternalServerError, msg)
	}
}
