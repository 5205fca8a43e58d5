package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yusufkecer/anamnesis-backend/internal/domain"
	"github.com/yusufkecer/anamnesis-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	resetCodeTTL      = 15 * time.Minute
	minPasswordLength = 6
)

var (
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetCode   = errors.New("invalid or expired code")
	ErrAccountNotFound    = errors.New("account not found")
)

type AccountStore interface {
	Create(ctx context.Context, email, passwordHash string, role domain.Role) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}

type ResetTokenStore interface {
	Create(ctx context.Context, accountID int64, token string, expiresAt time.Time) error
	GetValidByEmailAndToken(ctx context.Context, email, token string) (*domain.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id int64) error
	DeleteByAccountID(ctx context.Context, accountID int64) error
}

type Mailer interface {
	SendPasswordReset(ctx context.Context, to, code string) error
}

type AccountService struct {
	accounts AccountStore
	tokens   ResetTokenStore
	mailer   Mailer
	logger   zerolog.Logger
	now      func() time.Time
}

func NewAccountService(accounts AccountStore, tokens ResetTokenStore, mailer Mailer, logger zerolog.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		tokens:   tokens,
		mailer:   mailer,
		logger:   logger.With().Str("component", "accounts").Logger(),
		now:      time.Now,
	}
}

// Authenticate returns ErrInvalidCredentials for an unknown email and for a
// wrong password alike.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidAccount)
	}
	if !ValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid email format", ErrInvalidAccount)
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// Create adds an account. role defaults to user. A taken email yields
// repository.ErrDuplicateEmail.
func (s *AccountService) Create(ctx context.Context, req domain.CreateAccountRequest) (*domain.Account, error) {
	email := NormalizeEmail(req.Email)
	if !ValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid email format", ErrInvalidAccount)
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidAccount, minPasswordLength)
	}
	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidAccount, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.accounts.Create(ctx, email, string(hash), role)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("account_id", id).Str("role", string(role)).Msg("account created")
	return &domain.Account{ID: id, Email: email, Role: role, CreatedAt: s.now()}, nil
}

func (s *AccountService) List(ctx context.Context) ([]domain.Account, error) {
	return s.accounts.List(ctx)
}

// GetByID returns nil when the account does not exist.
func (s *AccountService) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

func (s *AccountService) Delete(ctx context.Context, id int64) error {
	err := s.accounts.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return err
	}
	s.logger.Info().Int64("account_id", id).Msg("account deleted")
	return nil
}

// SendResetCode replaces any pending code for the account with a fresh one
// and emails it. Unknown emails are not an error.
func (s *AccountService) SendResetCode(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if account == nil {
		return nil
	}
	return s.sendResetCode(ctx, account)
}

// SendResetCodeTo is SendResetCode for an account id, used by admins.
func (s *AccountService) SendResetCodeTo(ctx context.Context, id int64) error {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotFound
	}
	return s.sendResetCode(ctx, account)
}

func (s *AccountService) sendResetCode(ctx context.Context, account *domain.Account) error {
	log := s.logger.With().Int64("account_id", account.ID).Logger()

	if err := s.tokens.DeleteByAccountID(ctx, account.ID); err != nil {
		log.Warn().Err(err).Msg("failed to delete old reset codes")
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	if err := s.tokens.Create(ctx, account.ID, code, s.now().Add(resetCodeTTL)); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, account.Email, code); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	log.Info().Msg("reset code sent")
	return nil
}

// ResetPassword consumes a valid code and sets the new password.
func (s *AccountService) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	email := NormalizeEmail(req.Email)
	if email == "" || req.Token == "" || req.Password == "" {
		return fmt.Errorf("%w: email, token and password are required", ErrInvalidAccount)
	}
	if len(req.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidAccount, minPasswordLength)
	}

	token, err := s.tokens.GetValidByEmailAndToken(ctx, email, req.Token)
	if err != nil {
		return err
	}
	if token == nil || !token.Usable(s.now()) {
		return ErrInvalidResetCode
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, token.AccountID, string(hash)); err != nil {
		return err
	}
	if err := s.tokens.MarkUsed(ctx, token.ID); err != nil {
		return err
	}
	s.logger.Info().Int64("account_id", token.AccountID).Msg("password reset")
	return nil
}

func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func ValidEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && strings.Contains(email[at:], ".")
}

func generateOTP() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	n := int(b[0])<<16 | int(b[1])<<8 | int(b[2])
	return fmt.Sprintf("%06d", n%1000000), nil
}
