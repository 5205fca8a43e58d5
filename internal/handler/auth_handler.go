package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/yusufkecer/anamnesis-backend/internal/domain"
	"github.com/yusufkecer/anamnesis-backend/internal/middleware"
	"github.com/yusufkecer/anamnesis-backend/internal/service"
)

const forgotPasswordMessage = "if the email exists, a code has been sent"

type AuthHandler struct {
	jwtSecret string
	accounts  *service.AccountService
}

func NewAuthHandler(jwtSecret string, accounts *service.AccountService) *AuthHandler {
	return &AuthHandler{jwtSecret: jwtSecret, accounts: accounts}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		writeServiceError(w, r, err, "failed to login")
		return
	}

	token, err := middleware.GenerateToken(account.ID, account.Email, account.Role, h.jwtSecret)
	if err != nil {
		writeServiceError(w, r, err, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, domain.TokenResponse{Token: token, Role: account.Role})
}

// ForgotPassword always answers 200 so callers cannot tell which emails have accounts.
// The code is sent in the background.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": forgotPasswordMessage})
		return
	}

	logger := zerolog.Ctx(r.Context()).With().Str("op", "forgot-password").Logger()
	ctx := context.WithoutCancel(r.Context())
	go func() {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := h.accounts.SendResetCode(ctx, req.Email); err != nil {
			logger.Error().Err(err).Msg("failed to send reset code")
		}
	}()

	writeJSON(w, http.StatusOK, map[string]string{"message": forgotPasswordMessage})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.accounts.ResetPassword(r.Context(), req)
	if errors.Is(err, service.ErrInvalidResetCode) {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		writeServiceError(w, r, err, "failed to reset password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password reset successful"})
}
