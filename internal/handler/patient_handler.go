package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/yusufkecer/anamnesis-backend/internal/domain"
	"github.com/yusufkecer/anamnesis-backend/internal/service"
)

type PatientHandler struct {
	patients *service.PatientService
}

func NewPatientHandler(patients *service.PatientService) *PatientHandler {
	return &PatientHandler{patients: patients}
}

func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	patients, err := h.patients.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err, "failed to list patients")
		return
	}
	writeJSON(w, http.StatusOK, patients)
}

func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.PatientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.patients.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "failed to create patient")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.patients.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err, "failed to get patient")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.PatientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.patients.Update(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeServiceError(w, r, err, "failed to update patient")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.patients.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, r, err, "failed to delete patient")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Comparison answers 204 when the patient has fewer than two sessions.
func (h *PatientHandler) Comparison(w http.ResponseWriter, r *http.Request) {
	cmp, ok, err := h.patients.Comparison(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err, "failed to compare sessions")
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (h *PatientHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.patients.Report(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err, "failed to build report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func Questions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.Questionnaire)
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
