package service

import (
	"context"
	"time"

	"github.com/yusufkecer/anamnesis-backend/internal/domain"
	"github.com/yusufkecer/anamnesis-backend/internal/metrics"
	"github.com/yusufkecer/anamnesis-backend/internal/session"
)

// SessionView is a session as shown to the clinician.
type SessionView struct {
	domain.SessionRecord
	DisplayDate string                 `json:"display_date"`
	BMI         string                 `json:"bmi"`
	BMIClass    metrics.Classification `json:"bmi_classification"`
}

type AnsweredQuestion struct {
	domain.QuestionInfo
	Answer domain.Answer `json:"answer"`
}

type QuestionSection struct {
	Group     domain.QuestionGroup `json:"group"`
	Questions []AnsweredQuestion   `json:"questions"`
}

// Report is the printable record of one patient.
type Report struct {
	Patient       ReportPatient             `json:"patient"`
	Questionnaire []QuestionSection         `json:"questionnaire"`
	Term          domain.ResponsibilityTerm `json:"responsibility_term"`
	Sessions      []SessionView             `json:"sessions"`
	Comparison    *metrics.Comparison       `json:"comparison,omitempty"`
	GeneratedAt   time.Time                 `json:"generated_at"`
}

type ReportPatient struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	BirthDate        string `json:"birth_date"`
	BirthDateDisplay string `json:"birth_date_display"`
}

var questionGroups = []domain.QuestionGroup{
	domain.GroupHealth,
	domain.GroupConditions,
	domain.GroupHabits,
}

// NewSessionViews decorates sessions in Ordered order.
func NewSessionViews(sessions []domain.SessionRecord) []SessionView {
	views := make([]SessionView, 0, len(sessions))
	for s := range session.Ordered(sessions) {
		bmi, class := metrics.SessionBMI(s.Measurements)
		views = append(views, SessionView{
			SessionRecord: s,
			DisplayDate:   session.ToDisplayFormat(s.SessionDate),
			BMI:           bmi,
			BMIClass:      class,
		})
	}
	return views
}

func (s *PatientService) Comparison(ctx context.Context, patientID string) (metrics.Comparison, bool, error) {
	p, err := s.Get(ctx, patientID)
	if err != nil {
		return metrics.Comparison{}, false, err
	}
	cmp, ok := metrics.Compare(p.Sessions)
	return cmp, ok, nil
}

func (s *PatientService) Report(ctx context.Context, patientID string) (*Report, error) {
	p, err := s.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return BuildReport(p, s.now()), nil
}

// BuildReport assembles the printable view. Unanswered questions read "no".
func BuildReport(p *domain.Patient, now time.Time) *Report {
	r := &Report{
		Patient: ReportPatient{
			ID:               p.ID,
			Name:             p.Name,
			Phone:            p.Phone,
			Address:          p.Address,
			BirthDate:        p.BirthDate,
			BirthDateDisplay: session.ToDisplayFormat(p.BirthDate),
		},
		Term:        p.Term,
		Sessions:    NewSessionViews(p.Sessions),
		GeneratedAt: now,
	}

	for _, g := range questionGroups {
		section := QuestionSection{Group: g}
		for _, q := range domain.QuestionsIn(g) {
			section.Questions = append(section.Questions, AnsweredQuestion{
				QuestionInfo: q,
				Answer:       p.Answer(q.ID),
			})
		}
		r.Questionnaire = append(r.Questionnaire, section)
	}

	if cmp, ok := metrics.Compare(p.Sessions); ok {
		r.Comparison = &cmp
	}
	return r
}
