package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yusufkecer/anamnesis-backend/internal/domain"
)

// PatientRepository keeps each patient as one JSON document. Save always
// replaces the whole document, sessions included.
type PatientRepository struct {
	db *sql.DB
}

func NewPatientRepository(db *sql.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) List(ctx context.Context) ([]domain.Patient, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT document FROM patients ORDER BY name ASC, created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	var patients []domain.Patient
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		var p domain.Patient
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("failed to decode patient: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (r *PatientRepository) Get(ctx context.Context, id string) (*domain.Patient, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT document FROM patients WHERE id = ?`, id,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	var p domain.Patient
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode patient %s: %w", id, err)
	}
	return &p, nil
}

func (r *PatientRepository) Save(ctx context.Context, p *domain.Patient) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode patient: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO patients (id, name, document, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE name = VALUES(name), document = VALUES(document), updated_at = VALUES(updated_at)`,
		p.ID, p.Name, doc, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save patient: %w", err)
	}
	return nil
}

func (r *PatientRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
