package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yusufkecer/anamnesis-backend/internal/domain"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(
	ctx context.Context,
	email string,
	passwordHash string,
	role domain.Role,
) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (email, password_hash, role) VALUES (?, ?, ?)`,
		email,
		passwordHash,
		role,
	)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrDuplicateEmail
		}
		return 0, fmt.Errorf("failed to create account: %w", err)
	}
	return result.LastInsertId()
}

// GetByEmail returns nil, nil when no account matches.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getOne(ctx,
		`SELECT id, email, password_hash, role, created_at FROM accounts WHERE email = ?`,
		email,
	)
}

// GetByID returns nil, nil when no account matches.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	return r.getOne(ctx,
		`SELECT id, email, password_hash, role, created_at FROM accounts WHERE id = ?`,
		id,
	)
}

func (r *AccountRepository) getOne(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var a domain.Account
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, password_hash, role, created_at FROM accounts ORDER BY email ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ? WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
