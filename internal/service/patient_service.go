package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yusufkecer/anamnesis-backend/internal/domain"
	"github.com/yusufkecer/anamnesis-backend/internal/repository"
	"github.com/yusufkecer/anamnesis-backend/internal/session"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrInvalidPatient  = errors.New("invalid patient")
)

// PatientStore persists whole patient documents. Implemented by
// repository.PatientRepository and repository.PatientFileRepository.
type PatientStore interface {
	List(ctx context.Context) ([]domain.Patient, error)
	Get(ctx context.Context, id string) (*domain.Patient, error)
	Save(ctx context.Context, p *domain.Patient) error
	Delete(ctx context.Context, id string) error
}

// PatientCache is a generation-keyed read-through cache. Get reports the
// generation a miss was observed under and Set stores under it, so a fill
// that loses a race with Invalidate is never served.
type PatientCache interface {
	Get(ctx context.Context, id string) (p *domain.Patient, gen int64, hit bool, err error)
	Set(ctx context.Context, p *domain.Patient, gen int64) error
	Invalidate(ctx context.Context, id string) error
}

type PatientService struct {
	store  PatientStore
	cache  PatientCache
	logger zerolog.Logger
	now    func() time.Time
}

// NewPatientService wires the store. cache may be nil.
func NewPatientService(store PatientStore, cache PatientCache, logger zerolog.Logger) *PatientService {
	return &PatientService{
		store:  store,
		cache:  cache,
		logger: logger.With().Str("component", "patients").Logger(),
		now:    time.Now,
	}
}

// List returns summaries ordered by name. A non-empty query keeps only names
// containing it, ignoring case.
func (s *PatientService) List(ctx context.Context, query string) ([]domain.PatientSummary, error) {
	patients, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.PatientSummary, 0, len(patients))
	for _, p := range patients {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		out = append(out, domain.PatientSummary{
			ID:           p.ID,
			Name:         p.Name,
			Phone:        p.Phone,
			SessionCount: len(p.Sessions),
			UpdatedAt:    p.UpdatedAt,
		})
	}
	return out, nil
}

func (s *PatientService) Get(ctx context.Context, id string) (*domain.Patient, error) {
	var (
		gen       int64
		cacheable bool
	)
	if s.cache != nil {
		p, g, hit, err := s.cache.Get(ctx, id)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("patient_id", id).Msg("cache read failed")
		case hit:
			return p, nil
		default:
			gen, cacheable = g, true
		}
	}

	p, err := s.store.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.Set(ctx, p, gen); err != nil {
			s.logger.Warn().Err(err).Str("patient_id", id).Msg("cache write failed")
		}
	}
	return p, nil
}

func (s *PatientService) Create(ctx context.Context, req domain.PatientRequest) (*domain.Patient, error) {
	if err := validatePatient(req); err != nil {
		return nil, err
	}

	now := s.now()
	p := &domain.Patient{
		ID:        uuid.NewString(),
		Sessions:  []domain.SessionRecord{},
		CreatedAt: now,
	}
	applyIntake(p, req, now)

	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().Str("patient_id", p.ID).Msg("patient created")
	return p, nil
}

// Update replaces the intake fields. Sessions are left as they are.
func (s *PatientService) Update(ctx context.Context, id string, req domain.PatientRequest) (*domain.Patient, error) {
	if err := validatePatient(req); err != nil {
		return nil, err
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	applyIntake(p, req, s.now())
	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PatientService) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPatientNotFound
	}
	if err != nil {
		return err
	}
	s.evict(ctx, id)
	s.logger.Info().Str("patient_id", id).Msg("patient deleted")
	return nil
}

func (s *PatientService) AddSession(ctx context.Context, patientID string, req domain.SessionRequest) (domain.SessionRecord, error) {
	p, err := s.load(ctx, patientID)
	if err != nil {
		return domain.SessionRecord{}, err
	}

	rec := session.New(req, s.now())
	sessions, err := session.Add(p.Sessions, rec)
	if err != nil {
		return domain.SessionRecord{}, err
	}

	p.Sessions = sessions
	p.UpdatedAt = s.now()
	if err := s.save(ctx, p); err != nil {
		return domain.SessionRecord{}, err
	}
	s.logger.Info().Str("patient_id", patientID).Str("session_id", rec.ID).Msg("session added")
	return rec, nil
}

func (s *PatientService) UpdateSession(ctx context.Context, patientID, sessionID string, req domain.SessionRequest) (domain.SessionRecord, error) {
	p, err := s.load(ctx, patientID)
	if err != nil {
		return domain.SessionRecord{}, err
	}

	sessions, err := session.Update(p.Sessions, domain.SessionRecord{
		ID:            sessionID,
		SessionDate:   req.SessionDate,
		GeneralNotes:  req.GeneralNotes,
		SessionReport: req.SessionReport,
		Measurements:  req.Measurements,
	})
	if err != nil {
		return domain.SessionRecord{}, err
	}

	p.Sessions = sessions
	p.UpdatedAt = s.now()
	if err := s.save(ctx, p); err != nil {
		return domain.SessionRecord{}, err
	}
	rec, _ := session.Find(sessions, sessionID)
	return rec, nil
}

// DeleteSession succeeds for unknown session ids. The patient must exist.
func (s *PatientService) DeleteSession(ctx context.Context, patientID, sessionID string) error {
	p, err := s.load(ctx, patientID)
	if err != nil {
		return err
	}

	sessions := session.Delete(p.Sessions, sessionID)
	if len(sessions) == len(p.Sessions) {
		return nil
	}

	p.Sessions = sessions
	p.UpdatedAt = s.now()
	return s.save(ctx, p)
}

// Sessions returns the patient's sessions, most recently created first.
func (s *PatientService) Sessions(ctx context.Context, patientID string) ([]domain.SessionRecord, error) {
	p, err := s.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return slices.Collect(session.Ordered(p.Sessions)), nil
}

// load reads from the store, bypassing the cache, before a write.
func (s *PatientService) load(ctx context.Context, id string) (*domain.Patient, error) {
	p, err := s.store.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPatientNotFound
	}
	return p, err
}

func (s *PatientService) save(ctx context.Context, p *domain.Patient) error {
	if err := s.store.Save(ctx, p); err != nil {
		return err
	}
	s.evict(ctx, p.ID)
	return nil
}

func (s *PatientService) evict(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("patient_id", id).Msg("cache eviction failed")
	}
}

func validatePatient(req domain.PatientRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPatient)
	}
	if err := domain.ValidateAnswers(req.Answers); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatient, err)
	}
	return nil
}

func applyIntake(p *domain.Patient, req domain.PatientRequest, now time.Time) {
	p.Name = strings.TrimSpace(req.Name)
	p.Phone = req.Phone
	p.Address = req.Address
	p.BirthDate = req.BirthDate
	p.Answers = req.Answers
	if p.Answers == nil {
		p.Answers = map[domain.Question]domain.Answer{}
	}
	p.Term = req.Term
	p.UpdatedAt = now
}
