package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufkecer/anamnesis-backend/internal/domain"
)

func samplePatient() domain.Patient {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return domain.Patient{
		ID:   "p-1",
		Name: "Maria Souza",
		Answers: map[domain.Question]domain.Answer{
			domain.QSmoker: {Value: domain.AnswerYes, Observation: "10/day"},
		},
		Sessions: []domain.SessionRecord{{
			ID:            "s-1",
			SessionDate:   "2024-05-01",
			SessionReport: "first visit",
			Measurements:  domain.BodyMeasurements{Weight: "70", Height: "165"},
			CreatedAt:     now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPatientRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := samplePatient()
	doc, err := json.Marshal(p)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT document FROM patients WHERE id = \?`).
		WithArgs("p-1").
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow(doc))

	got, err := NewPatientRepository(db).Get(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Answers, got.Answers)
	require.Len(t, got.Sessions, 1)
	assert.Equal(t, "first visit", got.Sessions[0].SessionReport)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepository_GetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT document FROM patients WHERE id = \?`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"document"}))

	_, err = NewPatientRepository(db).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPatientRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	a, b := samplePatient(), samplePatient()
	b.ID, b.Name = "p-2", "Ana Lima"
	docA, _ := json.Marshal(a)
	docB, _ := json.Marshal(b)

	mock.ExpectQuery(`SELECT document FROM patients ORDER BY name`).
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow(docB).AddRow(docA))

	got, err := NewPatientRepository(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p-2", got[0].ID)
	assert.Equal(t, "p-1", got[1].ID)
}

func TestPatientRepository_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := samplePatient()
	mock.ExpectExec(`INSERT INTO patients .* ON DUPLICATE KEY UPDATE`).
		WithArgs(p.ID, p.Name, sqlmock.AnyArg(), p.CreatedAt, p.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPatientRepository(db).Save(context.Background(), &p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepository_SaveError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := samplePatient()
	mock.ExpectExec(`INSERT INTO patients`).WillReturnError(errors.New("connection reset"))

	err = NewPatientRepository(db).Save(context.Background(), &p)
	assert.ErrorContains(t, err, "failed to save patient")
}

func TestPatientRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPatientRepository(db)

	mock.ExpectExec(`DELETE FROM patients WHERE id = \?`).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(context.Background(), "p-1"))

	mock.ExpectExec(`DELETE FROM patients WHERE id = \?`).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "p-1"), ErrNotFound)
}
