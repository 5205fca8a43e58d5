// Package session manages a patient's session history. Every operation takes
// the current list and returns the new one; the caller owns persistence.
package session

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yusufkecer/anamnesis-backend/internal/domain"
)

var (
	ErrInvalidSession   = errors.New("invalid session")
	ErrSessionNotFound  = errors.New("session not found")
	ErrDuplicateSession = errors.New("session id already exists")
)

// New builds a session ready to be added: fresh id, CreatedAt = now.
func New(req domain.SessionRequest, now time.Time) domain.SessionRecord {
	return domain.SessionRecord{
		ID:            uuid.NewString(),
		SessionDate:   req.SessionDate,
		GeneralNotes:  req.GeneralNotes,
		SessionReport: req.SessionReport,
		Measurements:  req.Measurements,
		CreatedAt:     now,
	}
}

// Validate reports the first missing required field or malformed measurement.
func Validate(s domain.SessionRecord) error {
	if strings.TrimSpace(s.SessionDate) == "" {
		return fmt.Errorf("%w: session_date is required", ErrInvalidSession)
	}
	if strings.TrimSpace(s.SessionReport) == "" {
		return fmt.Errorf("%w: session_report is required", ErrInvalidSession)
	}
	for _, f := range s.Measurements.Fields() {
		if strings.TrimSpace(f.Value) == "" {
			continue
		}
		v, ok := domain.ParseMeasurement(f.Value)
		if !ok || v < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidSession, f.Name)
		}
	}
	return nil
}

// Add appends s to sessions. The backing list is never re-sorted; use Ordered
// for display. On error the input is returned as is.
func Add(sessions []domain.SessionRecord, s domain.SessionRecord) ([]domain.SessionRecord, error) {
	if err := Validate(s); err != nil {
		return sessions, err
	}
	if s.ID == "" {
		return sessions, fmt.Errorf("%w: id is required", ErrInvalidSession)
	}
	if _, ok := Find(sessions, s.ID); ok {
		return sessions, ErrDuplicateSession
	}

	out := make([]domain.SessionRecord, len(sessions), len(sessions)+1)
	copy(out, sessions)
	return append(out, s), nil
}

// Update replaces the editable fields of the session with s.ID. ID and
// CreatedAt of the stored entry are kept.
func Update(sessions []domain.SessionRecord, s domain.SessionRecord) ([]domain.SessionRecord, error) {
	i := index(sessions, s.ID)
	if i < 0 {
		return sessions, ErrSessionNotFound
	}
	if err := Validate(s); err != nil {
		return sessions, err
	}

	out := slices.Clone(sessions)
	out[i].SessionDate = s.SessionDate
	out[i].GeneralNotes = s.GeneralNotes
	out[i].SessionReport = s.SessionReport
	out[i].Measurements = s.Measurements
	return out, nil
}

// Delete removes the session with the given id. Unknown ids are ignored.
func Delete(sessions []domain.SessionRecord, id string) []domain.SessionRecord {
	if index(sessions, id) < 0 {
		return sessions
	}
	out := make([]domain.SessionRecord, 0, len(sessions)-1)
	for _, s := range sessions {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}

func Find(sessions []domain.SessionRecord, id string) (domain.SessionRecord, bool) {
	if i := index(sessions, id); i >= 0 {
		return sessions[i], true
	}
	return domain.SessionRecord{}, false
}

// Ordered yields the sessions most recently created first. Sessions with the
// same CreatedAt keep their insertion order. The sequence sorts a private
// copy each time it is ranged over, so it can be reused.
func Ordered(sessions []domain.SessionRecord) iter.Seq[domain.SessionRecord] {
	return func(yield func(domain.SessionRecord) bool) {
		sorted := slices.Clone(sessions)
		slices.SortStableFunc(sorted, func(a, b domain.SessionRecord) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
		for _, s := range sorted {
			if !yield(s) {
				return
			}
		}
	}
}

func index(sessions []domain.SessionRecord, id string) int {
	return slices.IndexFunc(sessions, func(s domain.SessionRecord) bool {
		return s.ID == id
	})
}
