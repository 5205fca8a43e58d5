package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufkecer/anamnesis-backend/internal/domain"
)

func newFileRepo(t *testing.T) (*PatientFileRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "patients.json")
	repo, err := NewPatientFileRepository(path)
	require.NoError(t, err)
	return repo, path
}

func TestPatientFileRepository_CreatesEmptyFile(t *testing.T) {
	_, path := newFileRepo(t)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"patients": []}`, string(raw))
}

func TestPatientFileRepository_SaveAndGet(t *testing.T) {
	repo, _ := newFileRepo(t)
	ctx := context.Background()

	p := samplePatient()
	require.NoError(t, repo.Save(ctx, &p))

	got, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Answers, got.Answers)
	assert.Equal(t, p.Sessions[0].Measurements, got.Sessions[0].Measurements)
	assert.True(t, p.Sessions[0].CreatedAt.Equal(got.Sessions[0].CreatedAt))
}

func TestPatientFileRepository_SaveReplaces(t *testing.T) {
	repo, path := newFileRepo(t)
	ctx := context.Background()

	p := samplePatient()
	require.NoError(t, repo.Save(ctx, &p))
	p.Phone = "11 99999-0000"
	require.NoError(t, repo.Save(ctx, &p))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "11 99999-0000", all[0].Phone)

	var onDisk struct {
		Patients []json.RawMessage `json:"patients"`
	}
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.Len(t, onDisk.Patients, 1)
}

func TestPatientFileRepository_ListSortedByName(t *testing.T) {
	repo, _ := newFileRepo(t)
	ctx := context.Background()

	for _, name := range []string{"Carla", "Ana", "Beatriz"} {
		p := domain.Patient{ID: name, Name: name}
		require.NoError(t, repo.Save(ctx, &p))
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Ana", all[0].Name)
	assert.Equal(t, "Beatriz", all[1].Name)
	assert.Equal(t, "Carla", all[2].Name)
}

func TestPatientFileRepository_Delete(t *testing.T) {
	repo, _ := newFileRepo(t)
	ctx := context.Background()

	p := samplePatient()
	require.NoError(t, repo.Save(ctx, &p))
	require.NoError(t, repo.Delete(ctx, p.ID))

	_, err := repo.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), ErrNotFound)
}

func TestPatientFileRepository_ReopensExistingFile(t *testing.T) {
	repo, path := newFileRepo(t)
	p := samplePatient()
	require.NoError(t, repo.Save(context.Background(), &p))

	reopened, err := NewPatientFileRepository(path)
	require.NoError(t, err)
	got, err := reopened.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
}

func TestPatientFileRepository_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	repo, err := NewPatientFileRepository(path)
	require.NoError(t, err)
	_, err = repo.List(context.Background())
	assert.ErrorContains(t, err, "failed to decode")
}
