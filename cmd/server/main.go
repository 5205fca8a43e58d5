package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/yusufkecer/anamnesis-backend/internal/cache"
	"github.com/yusufkecer/anamnesis-backend/internal/config"
	"github.com/yusufkecer/anamnesis-backend/internal/db"
	"github.com/yusufkecer/anamnesis-backend/internal/domain"
	"github.com/yusufkecer/anamnesis-backend/internal/handler"
	"github.com/yusufkecer/anamnesis-backend/internal/logging"
	"github.com/yusufkecer/anamnesis-backend/internal/middleware"
	"github.com/yusufkecer/anamnesis-backend/internal/repository"
	"github.com/yusufkecer/anamnesis-backend/internal/service"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "anamnesis",
		Short:        "Anamnesis records API for aesthetic body treatments",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			database, err := db.Connect(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer database.Close()

			_, err = db.RunMigrations(cmd.Context(), database, logger)
			return err
		},
	}
}

func createAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			database, err := db.Connect(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer database.Close()

			if _, err := db.RunMigrations(cmd.Context(), database, logger); err != nil {
				return err
			}

			accounts := newAccountService(cfg, database, logger)
			account, err := accounts.Create(cmd.Context(), domain.CreateAccountRequest{
				Email:    email,
				Password: password,
				Role:     domain.RoleAdmin,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (id %d)\n", account.Email, account.ID)
			return nil
		},
	}
	cmd.Flags().String("email", "", "Administrator email")
	cmd.Flags().String("password", "", "Administrator password (min 6 characters)")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Pretty: cfg.IsDev(), File: cfg.LogFile})
	if err := cfg.Validate(); err != nil {
		return nil, logger, err
	}
	return cfg, logger, nil
}

func newAccountService(cfg *config.Config, database *sql.DB, logger zerolog.Logger) *service.AccountService {
	return service.NewAccountService(
		repository.NewAccountRepository(database),
		repository.NewResetTokenRepository(database),
		service.NewEmailService(cfg.ResendAPIKey, cfg.EmailFrom),
		logger,
	)
}

// newPatientStore picks the document store. Accounts always live in MySQL.
func newPatientStore(cfg *config.Config, database *sql.DB, logger zerolog.Logger) (service.PatientStore, error) {
	if cfg.Storage == config.StorageFile {
		logger.Info().Str("path", cfg.DataFile).Msg("storing patients in local file")
		return repository.NewPatientFileRepository(cfg.DataFile)
	}
	return repository.NewPatientRepository(database), nil
}

func runServer(ctx context.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("database connection failed")
		return err
	}
	defer database.Close()

	if _, err := db.RunMigrations(ctx, database, logger); err != nil {
		logger.Error().Err(err).Msg("migrations failed")
		return err
	}

	store, err := newPatientStore(cfg, database, logger)
	if err != nil {
		return err
	}

	var patientCache service.PatientCache
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, running without cache")
		} else {
			defer client.Close()
			patientCache = cache.NewPatientCache(client, cfg.CacheTTL)
			logger.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("patient cache enabled")
		}
	}

	if cfg.ResendAPIKey == "" {
		logger.Warn().Msg("RESEND_API_KEY not set, password reset emails are disabled")
	}

	loginRL, forgotRL, resetRL := handler.DefaultLimiters()
	for _, rl := range []*middleware.RateLimiter{loginRL, forgotRL, resetRL} {
		rl.TrustForwardedFor(cfg.TrustProxy)
		go rl.Run(ctx, 5*time.Minute)
	}

	router := handler.NewRouter(handler.RouterConfig{
		JWTSecret:      cfg.JWTSecret,
		APIKey:         cfg.APIKey,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
		Patients:       service.NewPatientService(store, patientCache, logger),
		Accounts:       newAccountService(cfg, database, logger),
		LoginLimiter:   loginRL,
		ForgotLimiter:  forgotRL,
		ResetLimiter:   resetRL,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("storage", cfg.Storage).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("server error")
			return err
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
