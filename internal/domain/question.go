package domain

import "fmt"

type Question string

type QuestionGroup string

const (
	GroupHealth     QuestionGroup = "health"
	GroupConditions QuestionGroup = "conditions"
	GroupHabits     QuestionGroup = "habits"
)

const (
	QThrombosis               Question = "thrombosis"
	QEpilepsy                 Question = "epilepsy"
	QRegularBowel             Question = "regular_bowel"
	QCardiacChanges           Question = "cardiac_changes"
	QPacemaker                Question = "pacemaker"
	QSmoker                   Question = "smoker"
	QPregnant                 Question = "pregnant"
	QRenalChanges             Question = "renal_changes"
	QUncontrolledHypertension Question = "uncontrolled_hypertension"
	QSkinDisease              Question = "skin_disease"
	QMuscleOrBoneChanges      Question = "muscle_or_bone_changes"
	QPreviousTreatment        Question = "previous_treatment"
	QSurgeries                Question = "surgeries"

	QPain         Question = "pain"
	QCellulite    Question = "cellulite"
	QLocalizedFat Question = "localized_fat"
	QStretchMarks Question = "stretch_marks"
	QBruises      Question = "bruises"
	QFolliculitis Question = "folliculitis"
	QAffections   Question = "affections"
	QBlemishes    Question = "blemishes"

	QDrinksWater        Question = "drinks_water"
	QUsesCompression    Question = "uses_compression"
	QDrinksAlcohol      Question = "drinks_alcohol"
	QSunExposure        Question = "sun_exposure"
	QUsesSunscreen      Question = "uses_sunscreen"
	QSleepQuality       Question = "sleep_quality"
	QPhysicalActivity   Question = "physical_activity"
	QProtectsProstheses Question = "protects_prostheses"
	QUsesCreams         Question = "uses_creams"
	QUsesMedication     Question = "uses_medication"
	QHasAllergies       Question = "has_allergies"
	QGoodDiet           Question = "good_diet"
)

type AnswerValue string

const (
	AnswerYes AnswerValue = "yes"
	AnswerNo  AnswerValue = "no"
)

// Answer is a yes/no reply. Observation is only meaningful for "yes".
type Answer struct {
	Value       AnswerValue `json:"value"`
	Observation string      `json:"observation,omitempty"`
}

type QuestionInfo struct {
	ID    Question      `json:"id"`
	Group QuestionGroup `json:"group"`
	Label string        `json:"label"`
}

// Questionnaire is the intake form in display order.
var Questionnaire = []QuestionInfo{
	{QThrombosis, GroupHealth, "Tem ou teve trombose?"},
	{QEpilepsy, GroupHealth, "Tem epilepsia/convulsões?"},
	{QRegularBowel, GroupHealth, "Tem intestino regulado?"},
	{QCardiacChanges, GroupHealth, "Tem alterações cardíacas?"},
	{QPacemaker, GroupHealth, "Tem marcapasso?"},
	{QSmoker, GroupHealth, "É tabagista?"},
	{QPregnant, GroupHealth, "Está gestante?"},
	{QRenalChanges, GroupHealth, "Alterações Renais?"},
	{QUncontrolledHypertension, GroupHealth, "H.A.S. descompensada?"},
	{QSkinDisease, GroupHealth, "Doença de Pele?"},
	{QMuscleOrBoneChanges, GroupHealth, "Alterações Musculares ou Óssea?"},
	{QPreviousTreatment, GroupHealth, "Tem tratamento facial ou corporal anterior?"},
	{QSurgeries, GroupHealth, "Cirurgias?"},

	{QPain, GroupConditions, "Dor?"},
	{QCellulite, GroupConditions, "Celulite?"},
	{QLocalizedFat, GroupConditions, "Gordura Localizada?"},
	{QStretchMarks, GroupConditions, "Estrias?"},
	{QBruises, GroupConditions, "Hematomas?"},
	{QFolliculitis, GroupConditions, "Foliculite?"},
	{QAffections, GroupConditions, "Afecções?"},
	{QBlemishes, GroupConditions, "Manchas?"},

	{QDrinksWater, GroupHabits, "Toma água regularmente?"},
	{QUsesCompression, GroupHabits, "Usa meias ou cintas?"},
	{QDrinksAlcohol, GroupHabits, "Consome bebidas alcoólicas?"},
	{QSunExposure, GroupHabits, "Exposição ao sol?"},
	{QUsesSunscreen, GroupHabits, "Usa filtro solar?"},
	{QSleepQuality, GroupHabits, "Qualidade do sono?"},
	{QPhysicalActivity, GroupHabits, "Pratica atividade física?"},
	{QProtectsProstheses, GroupHabits, "Protege próteses?"},
	{QUsesCreams, GroupHabits, "Utiliza cremes ou loções faciais e corporais?"},
	{QUsesMedication, GroupHabits, "Utiliza algum medicamento?"},
	{QHasAllergies, GroupHabits, "Possui alergias?"},
	{QGoodDiet, GroupHabits, "Boa alimentação?"},
}

var knownQuestions = func() map[Question]QuestionInfo {
	m := make(map[Question]QuestionInfo, len(Questionnaire))
	for _, q := range Questionnaire {
		m[q.ID] = q
	}
	return m
}()

func (q Question) Valid() bool {
	_, ok := knownQuestions[q]
	return ok
}

// QuestionsIn returns the questions of group g in display order.
func QuestionsIn(g QuestionGroup) []QuestionInfo {
	var out []QuestionInfo
	for _, q := range Questionnaire {
		if q.Group == g {
			out = append(out, q)
		}
	}
	return out
}

// ValidateAnswers rejects unknown question ids and values other than yes/no.
func ValidateAnswers(answers map[Question]Answer) error {
	for q, a := range answers {
		if !q.Valid() {
			return fmt.Errorf("unknown question %q", q)
		}
		if a.Value != AnswerYes && a.Value != AnswerNo {
			return fmt.Errorf("invalid answer %q for question %q", a.Value, q)
		}
	}
	return nil
}
