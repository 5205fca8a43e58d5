package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/yusufkecer/anamnesis-backend/internal/domain"
	"github.com/yusufkecer/anamnesis-backend/internal/middleware"
	"github.com/yusufkecer/anamnesis-backend/internal/service"
)

// AdminHandler manages the accounts allowed to use the system.
type AdminHandler struct {
	accounts *service.AccountService
}

func NewAdminHandler(accounts *service.AccountService) *AdminHandler {
	return &AdminHandler{accounts: accounts}
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to list users")
		return
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.accounts.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "failed to create user")
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if self, _ := middleware.AccountIDFrom(r.Context()); self == id {
		writeError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	if err := h.accounts.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "failed to delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) SendReset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.accounts.SendResetCodeTo(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "failed to send reset code")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "reset code sent"})
}
