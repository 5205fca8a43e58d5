package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/yusufkecer/anamnesis-backend/internal/middleware"
	"github.com/yusufkecer/anamnesis-backend/internal/service"
)

const maxBodyBytes = 1 << 20

type RouterConfig struct {
	JWTSecret      string
	APIKey         string
	AllowedOrigins string
	Logger         zerolog.Logger

	Patients *service.PatientService
	Accounts *service.AccountService

	LoginLimiter  *middleware.RateLimiter
	ForgotLimiter *middleware.RateLimiter
	ResetLimiter  *middleware.RateLimiter
}

// DefaultLimiters returns the login, forgot-password and reset-password
// limiters. The reset limit caps guesses at the 6-digit code.
func DefaultLimiters() (login, forgot, reset *middleware.RateLimiter) {
	return middleware.NewRateLimiter(5, 15*time.Minute),
		middleware.NewRateLimiter(3, 60*time.Minute),
		middleware.NewRateLimiter(5, 15*time.Minute)
}

func NewRouter(cfg RouterConfig) *mux.Router {
	if cfg.LoginLimiter == nil || cfg.ForgotLimiter == nil || cfg.ResetLimiter == nil {
		cfg.LoginLimiter, cfg.ForgotLimiter, cfg.ResetLimiter = DefaultLimiters()
	}

	authHandler := NewAuthHandler(cfg.JWTSecret, cfg.Accounts)
	adminHandler := NewAdminHandler(cfg.Accounts)
	patientHandler := NewPatientHandler(cfg.Patients)
	sessionHandler := NewSessionHandler(cfg.Patients)

	r := mux.NewRouter()

	// request log -> CORS -> security headers -> body limit
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBody(maxBodyBytes))

	r.HandleFunc("/api/v1/health", Health).Methods(http.MethodGet, http.MethodOptions)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.APIKeyMiddleware(cfg.APIKey))

	api.Handle("/auth/login", cfg.LoginLimiter.Middleware(http.HandlerFunc(authHandler.Login))).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/auth/forgot-password", cfg.ForgotLimiter.Middleware(http.HandlerFunc(authHandler.ForgotPassword))).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/auth/reset-password", cfg.ResetLimiter.Middleware(http.HandlerFunc(authHandler.ResetPassword))).Methods(http.MethodPost, http.MethodOptions)

	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret, cfg.Accounts))

	protected.HandleFunc("/questions", Questions).Methods(http.MethodGet, http.MethodOptions)

	protected.HandleFunc("/patients", patientHandler.List).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/patients", patientHandler.Create).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/patients/{id}", patientHandler.Get).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/patients/{id}", patientHandler.Update).Methods(http.MethodPut, http.MethodOptions)
	protected.HandleFunc("/patients/{id}", patientHandler.Delete).Methods(http.MethodDelete, http.MethodOptions)
	protected.HandleFunc("/patients/{id}/comparison", patientHandler.Comparison).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/patients/{id}/report", patientHandler.Report).Methods(http.MethodGet, http.MethodOptions)

	protected.HandleFunc("/patients/{id}/sessions", sessionHandler.List).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/patients/{id}/sessions", sessionHandler.Create).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/patients/{id}/sessions/{sessionID}", sessionHandler.Update).Methods(http.MethodPut, http.MethodOptions)
	protected.HandleFunc("/patients/{id}/sessions/{sessionID}", sessionHandler.Delete).Methods(http.MethodDelete, http.MethodOptions)

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/users", adminHandler.List).Methods(http.MethodGet, http.MethodOptions)
	admin.HandleFunc("/users", adminHandler.Create).Methods(http.MethodPost, http.MethodOptions)
	admin.HandleFunc("/users/{id}", adminHandler.Delete).Methods(http.MethodDelete, http.MethodOptions)
	admin.HandleFunc("/users/{id}/reset-password", adminHandler.SendReset).Methods(http.MethodPost, http.MethodOptions)

	return r
}
