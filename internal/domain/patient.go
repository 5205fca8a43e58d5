package domain

import "time"

type Patient struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Phone     string              `json:"phone"`
	Address   string              `json:"address"`
	BirthDate string              `json:"birth_date"`
	Answers   map[Question]Answer `json:"answers"`
	Term      ResponsibilityTerm  `json:"responsibility_term"`
	Sessions  []SessionRecord     `json:"sessions"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Answer returns the stored answer for q, defaulting to "no".
func (p *Patient) Answer(q Question) Answer {
	if a, ok := p.Answers[q]; ok {
		return a
	}
	return Answer{Value: AnswerNo}
}

type ResponsibilityTerm struct {
	Accepted              bool   `json:"accepted"`
	ProfessionalSignature string `json:"professional_signature"`
	ClientSignature       string `json:"client_signature"`
}

// PatientRequest carries the intake fields a client may set. Sessions are
// managed through their own endpoints.
type PatientRequest struct {
	Name      string              `json:"name"`
	Phone     string              `json:"phone"`
	Address   string              `json:"address"`
	BirthDate string              `json:"birth_date"`
	Answers   map[Question]Answer `json:"answers"`
	Term      ResponsibilityTerm  `json:"responsibility_term"`
}

type PatientSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	SessionCount int       `json:"session_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}
