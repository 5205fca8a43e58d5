package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufkecer/anamnesis-backend/internal/domain"
	"github.com/yusufkecer/anamnesis-backend/internal/metrics"
)

func TestBuildReport(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	p := &domain.Patient{
		ID:        "p-1",
		Name:      "Maria",
		BirthDate: "1990-12-31",
		Answers: map[domain.Question]domain.Answer{
			domain.QCellulite: {Value: domain.AnswerYes, Observation: "grade 2"},
		},
		Sessions: []domain.SessionRecord{
			{ID: "a", SessionDate: "2024-03-01", SessionReport: "r", CreatedAt: t0,
				Measurements: domain.BodyMeasurements{Weight: "70", Height: "175"}},
			{ID: "b", SessionDate: "2024-03-08", SessionReport: "r", CreatedAt: t0.Add(time.Hour),
				Measurements: domain.BodyMeasurements{Weight: "68", Height: "175"}},
		},
	}

	r := BuildReport(p, t0)

	assert.Equal(t, "31/12/1990", r.Patient.BirthDateDisplay)

	require.Len(t, r.Questionnaire, 3)
	assert.Equal(t, domain.GroupHealth, r.Questionnaire[0].Group)
	assert.Len(t, r.Questionnaire[0].Questions, len(domain.QuestionsIn(domain.GroupHealth)))
	for _, q := range r.Questionnaire[1].Questions {
		if q.ID == domain.QCellulite {
			assert.Equal(t, domain.AnswerYes, q.Answer.Value)
			assert.Equal(t, "grade 2", q.Answer.Observation)
		} else {
			assert.Equal(t, domain.AnswerNo, q.Answer.Value, "question %s", q.ID)
		}
	}

	require.Len(t, r.Sessions, 2)
	assert.Equal(t, "b", r.Sessions[0].ID)
	assert.Equal(t, "08/03/2024", r.Sessions[0].DisplayDate)
	assert.Equal(t, "22.20", r.Sessions[0].BMI)
	assert.Equal(t, metrics.BandNormal, r.Sessions[0].BMIClass.Band)

	require.NotNil(t, r.Comparison)
	assert.Equal(t, "-2.0", r.Comparison.Weight.Value)
}

func TestBuildReport_SingleSessionHasNoComparison(t *testing.T) {
	p := &domain.Patient{
		ID:   "p-1",
		Name: "Maria",
		Sessions: []domain.SessionRecord{
			{ID: "a", SessionDate: "2024-03-01", SessionReport: "r"},
		},
	}
	r := BuildReport(p, time.Now())
	assert.Nil(t, r.Comparison)
	require.Len(t, r.Sessions, 1)
	assert.Equal(t, metrics.Unavailable, r.Sessions[0].BMI)
}

func TestPatientService_Report(t *testing.T) {
	svc, _, _ := newPatientService(t)
	p := createPatient(t, svc, "Maria")

	r, err := svc.Report(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria", r.Patient.Name)
	assert.Empty(t, r.Sessions)

	_, err = svc.Report(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}
