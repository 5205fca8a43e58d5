// Package metrics derives BMI and session-to-session deltas from the raw
// measurements. Nothing here returns an error: input that cannot be read
// yields Unavailable.
package metrics

import (
	"fmt"
	"math"

	"github.com/yusufkecer/anamnesis-backend/internal/domain"
)

// Unavailable is returned wherever a value cannot be computed.
const Unavailable = "unavailable"

type Band string

const (
	BandUnavailable Band = "unavailable"
	BandUnderweight Band = "underweight"
	BandNormal      Band = "normal"
	BandOverweight  Band = "overweight"
	BandObesityI    Band = "obesity_1"
	BandObesityII   Band = "obesity_2"
	BandObesityIII  Band = "obesity_3"
)

type Severity string

const (
	SeverityUnknown   Severity = "unknown"
	SeverityNormal    Severity = "normal"
	SeverityAttention Severity = "attention"
	SeverityHigh      Severity = "high"
	SeverityVeryHigh  Severity = "very_high"
	SeveritySevere    Severity = "severe"
)

type Classification struct {
	Band     Band     `json:"band"`
	Label    string   `json:"label"`
	Severity Severity `json:"severity"`
}

// bands are checked in order; each upper bound is exclusive.
var bands = []struct {
	below float64
	class Classification
}{
	{18.5, Classification{BandUnderweight, "Underweight", SeverityAttention}},
	{25, Classification{BandNormal, "Normal weight", SeverityNormal}},
	{30, Classification{BandOverweight, "Overweight", SeverityAttention}},
	{35, Classification{BandObesityI, "Obesity Class I", SeverityHigh}},
	{40, Classification{BandObesityII, "Obesity Class II", SeverityVeryHigh}},
}

var (
	obesityIII  = Classification{BandObesityIII, "Obesity Class III", SeveritySevere}
	unavailable = Classification{BandUnavailable, "Unavailable", SeverityUnknown}
)

// ComputeBMI returns weight / height², with height given in centimetres,
// formatted to two decimals.
func ComputeBMI(weightKg, heightCm string) string {
	w, ok := domain.ParseMeasurement(weightKg)
	if !ok || w < 0 {
		return Unavailable
	}
	h, ok := domain.ParseMeasurement(heightCm)
	if !ok || h <= 0 {
		return Unavailable
	}
	m := h / 100
	bmi := w / (m * m)
	if math.IsInf(bmi, 0) || math.IsNaN(bmi) {
		return Unavailable
	}
	return fmt.Sprintf("%.2f", bmi)
}

func ClassifyBMI(bmi string) Classification {
	v, ok := domain.ParseMeasurement(bmi)
	if !ok || v < 0 {
		return unavailable
	}
	for _, b := range bands {
		if v < b.below {
			return b.class
		}
	}
	return obesityIII
}

// SessionBMI is ComputeBMI and ClassifyBMI for one session's measurements.
func SessionBMI(m domain.BodyMeasurements) (string, Classification) {
	bmi := ComputeBMI(m.Weight, m.Height)
	return bmi, ClassifyBMI(bmi)
}
