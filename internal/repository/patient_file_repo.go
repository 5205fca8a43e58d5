package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/yusufkecer/anamnesis-backend/internal/domain"
)

type patientFile struct {
	Patients []domain.Patient `json:"patients"`
}

// PatientFileRepository stores every patient in a single local JSON file,
// {"patients": [...]}, for installs without a database server. The file is
// rewritten on each change through a temp file and rename.
type PatientFileRepository struct {
	path string
	mu   sync.Mutex
}

func NewPatientFileRepository(path string) (*PatientFileRepository, error) {
	r := &PatientFileRepository{path: path}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := r.write(patientFile{Patients: []domain.Patient{}}); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *PatientFileRepository) List(_ context.Context) ([]domain.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.read()
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(f.Patients, func(a, b domain.Patient) int {
		return strings.Compare(a.Name, b.Name)
	})
	return f.Patients, nil
}

func (r *PatientFileRepository) Get(_ context.Context, id string) (*domain.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.read()
	if err != nil {
		return nil, err
	}
	for i := range f.Patients {
		if f.Patients[i].ID == id {
			return &f.Patients[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *PatientFileRepository) Save(_ context.Context, p *domain.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.read()
	if err != nil {
		return err
	}
	i := slices.IndexFunc(f.Patients, func(x domain.Patient) bool { return x.ID == p.ID })
	if i >= 0 {
		f.Patients[i] = *p
	} else {
		f.Patients = append(f.Patients, *p)
	}
	return r.write(f)
}

func (r *PatientFileRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.read()
	if err != nil {
		return err
	}
	n := len(f.Patients)
	f.Patients = slices.DeleteFunc(f.Patients, func(x domain.Patient) bool { return x.ID == id })
	if len(f.Patients) == n {
		return ErrNotFound
	}
	return r.write(f)
}

func (r *PatientFileRepository) read() (patientFile, error) {
	var f patientFile
	data, err := os.ReadFile(r.path)
	if err != nil {
		return f, fmt.Errorf("failed to read %s: %w", r.path, err)
	}
	if len(data) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("failed to decode %s: %w", r.path, err)
	}
	return f, nil
}

func (r *PatientFileRepository) write(f patientFile) error {
	if f.Patients == nil {
		f.Patients = []domain.Patient{}
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode patients: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".patients-*.json")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", r.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", r.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", r.path, err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to write %s: %w", r.path, err)
	}
	return nil
}
