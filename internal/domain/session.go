package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// BodyMeasurements holds the measurements taken during one session. Values
// are kept as entered: empty means "not measured".
type BodyMeasurements struct {
	Weight     string `json:"weight"`
	Height     string `json:"height"`
	Bust       string `json:"bust"`
	Waist      string `json:"waist"`
	Hip        string `json:"hip"`
	RightArm   string `json:"right_arm"`
	LeftArm    string `json:"left_arm"`
	RightLeg   string `json:"right_leg"`
	LeftLeg    string `json:"left_leg"`
	Culote     string `json:"culote"`
	RightFlank string `json:"right_flank"`
	LeftFlank  string `json:"left_flank"`
	RightCalf  string `json:"right_calf"`
	LeftCalf   string `json:"left_calf"`
}

// Fields returns every measurement paired with its JSON name, in form order.
func (m BodyMeasurements) Fields() []MeasurementField {
	return []MeasurementField{
		{"weight", m.Weight},
		{"height", m.Height},
		{"bust", m.Bust},
		{"waist", m.Waist},
		{"hip", m.Hip},
		{"right_arm", m.RightArm},
		{"left_arm", m.LeftArm},
		{"right_leg", m.RightLeg},
		{"left_leg", m.LeftLeg},
		{"culote", m.Culote},
		{"right_flank", m.RightFlank},
		{"left_flank", m.LeftFlank},
		{"right_calf", m.RightCalf},
		{"left_calf", m.LeftCalf},
	}
}

type MeasurementField struct {
	Name  string
	Value string
}

// SessionRecord is one clinical visit. CreatedAt is assigned once when the
// session is added and never changes; SessionDate is whatever the clinician
// typed and may be edited later.
type SessionRecord struct {
	ID            string           `json:"id"`
	SessionDate   string           `json:"session_date"`
	GeneralNotes  string           `json:"general_notes"`
	SessionReport string           `json:"session_report"`
	Measurements  BodyMeasurements `json:"measurements"`
	CreatedAt     time.Time        `json:"created_at"`
}

type SessionRequest struct {
	SessionDate   string           `json:"session_date"`
	GeneralNotes  string           `json:"general_notes"`
	SessionReport string           `json:"session_report"`
	Measurements  BodyMeasurements `json:"measurements"`
}

var plainDecimal = regexp.MustCompile(`^(\d+([.,]\d*)?|[.,]\d+)$`)

// ParseMeasurement reads a measurement as typed on the form: digits with an
// optional fraction, "." or "," as the separator. Signs, exponents and hex
// are refused. ok is false for empty input.
func ParseMeasurement(v string) (value float64, ok bool) {
	v = strings.TrimSpace(v)
	if !plainDecimal.MatchString(v) {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
