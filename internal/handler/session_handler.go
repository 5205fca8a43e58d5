package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/yusufkecer/anamnesis-backend/internal/domain"
	"github.com/yusufkecer/anamnesis-backend/internal/service"
)

type SessionHandler struct {
	patients *service.PatientService
}

func NewSessionHandler(patients *service.PatientService) *SessionHandler {
	return &SessionHandler{patients: patients}
}

// List returns the sessions newest first, each with its display date and BMI.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.patients.Sessions(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err, "failed to list sessions")
		return
	}
	writeJSON(w, http.StatusOK, service.NewSessionViews(sessions))
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.SessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.patients.AddSession(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeServiceError(w, r, err, "failed to add session")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.SessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	vars := mux.Vars(r)
	rec, err := h.patients.UpdateSession(r.Context(), vars["id"], vars["sessionID"], req)
	if err != nil {
		writeServiceError(w, r, err, "failed to update session")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.patients.DeleteSession(r.Context(), vars["id"], vars["sessionID"]); err != nil {
		writeServiceError(w, r, err, "failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
