package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufkecer/anamnesis-backend/internal/domain"
)

func TestComputeBMI(t *testing.T) {
	tests := []struct {
		weight, height, want string
	}{
		{"70", "175", "22.86"},
		{"70,5", "165", "25.90"},
		{"", "175", Unavailable},
		{"70", "", Unavailable},
		{"70", "0", Unavailable},
		{"abc", "175", Unavailable},
		{"-70", "175", Unavailable},
		{"100", "200", "25.00"},
		{"1" + strings.Repeat("0", 300), "0.0001", Unavailable},
		{"70", "0.0000", Unavailable},
		{"1e2", "175", Unavailable},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ComputeBMI(tt.weight, tt.height), "weight=%q height=%q", tt.weight, tt.height)
	}
}

func TestClassifyBMI(t *testing.T) {
	tests := []struct {
		bmi   string
		label string
		band  Band
	}{
		{"22.86", "Normal weight", BandNormal},
		{"18.49", "Underweight", BandUnderweight},
		{"18.5", "Normal weight", BandNormal},
		{"24.99", "Normal weight", BandNormal},
		{"25", "Overweight", BandOverweight},
		{"29.99", "Overweight", BandOverweight},
		{"30", "Obesity Class I", BandObesityI},
		{"34.99", "Obesity Class I", BandObesityI},
		{"35", "Obesity Class II", BandObesityII},
		{"39.99", "Obesity Class II", BandObesityII},
		{"40", "Obesity Class III", BandObesityIII},
		{"55.2", "Obesity Class III", BandObesityIII},
		{Unavailable, "Unavailable", BandUnavailable},
		{"", "Unavailable", BandUnavailable},
	}
	for _, tt := range tests {
		got := ClassifyBMI(tt.bmi)
		assert.Equal(t, tt.label, got.Label, "bmi %q", tt.bmi)
		assert.Equal(t, tt.band, got.Band, "bmi %q", tt.bmi)
	}

	assert.Equal(t, SeverityUnknown, ClassifyBMI("x").Severity)
	assert.Equal(t, SeverityNormal, ClassifyBMI("22").Severity)
	assert.Equal(t, SeveritySevere, ClassifyBMI("41").Severity)
}

func TestSessionBMI(t *testing.T) {
	bmi, class := SessionBMI(domain.BodyMeasurements{Weight: "70", Height: "175"})
	assert.Equal(t, "22.86", bmi)
	assert.Equal(t, "Normal weight", class.Label)
}

var day0 = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

func visit(id, date string, createdAt time.Time, m domain.BodyMeasurements) domain.SessionRecord {
	return domain.SessionRecord{ID: id, SessionDate: date, SessionReport: "r", Measurements: m, CreatedAt: createdAt}
}

func TestCompare_WeightLoss(t *testing.T) {
	a := visit("a", "2024-01-10", day0, domain.BodyMeasurements{Weight: "80"})
	b := visit("b", "2024-02-10", day0.Add(time.Hour), domain.BodyMeasurements{Weight: "75"})

	cmp, ok := Compare([]domain.SessionRecord{a, b})
	require.True(t, ok)
	assert.Equal(t, "-5.0", cmp.Weight.Value)
	assert.Equal(t, TrendImproved, cmp.Weight.Trend)
	assert.Equal(t, "a", cmp.Previous.ID)
	assert.Equal(t, "b", cmp.Current.ID)
}

func TestCompare_WeightGain(t *testing.T) {
	a := visit("a", "2024-01-10", day0, domain.BodyMeasurements{Weight: "75"})
	b := visit("b", "2024-02-10", day0, domain.BodyMeasurements{Weight: "80"})

	cmp, ok := Compare([]domain.SessionRecord{a, b})
	require.True(t, ok)
	assert.Equal(t, "5.0", cmp.Weight.Value)
	assert.Equal(t, TrendRegressed, cmp.Weight.Trend)
}

func TestCompare_UsesSessionDateNotCreatedAt(t *testing.T) {
	// "late" was typed in first but describes the more recent visit.
	late := visit("late", "2024-03-01", day0, domain.BodyMeasurements{Waist: "70"})
	early := visit("early", "2024-02-01", day0.Add(24*time.Hour), domain.BodyMeasurements{Waist: "72"})

	cmp, ok := Compare([]domain.SessionRecord{late, early})
	require.True(t, ok)
	assert.Equal(t, "early", cmp.Previous.ID)
	assert.Equal(t, "late", cmp.Current.ID)
	assert.Equal(t, "-2.0", cmp.Waist.Value)
}

func TestCompare_PicksTwoMostRecent(t *testing.T) {
	sessions := []domain.SessionRecord{
		visit("s2", "2024-02-01", day0, domain.BodyMeasurements{Hip: "100"}),
		visit("s4", "2024-04-01", day0, domain.BodyMeasurements{Hip: "96.5"}),
		visit("s1", "2024-01-01", day0, domain.BodyMeasurements{Hip: "110"}),
		visit("s3", "2024-03-01", day0, domain.BodyMeasurements{Hip: "98"}),
	}

	cmp, ok := Compare(sessions)
	require.True(t, ok)
	assert.Equal(t, "s3", cmp.Previous.ID)
	assert.Equal(t, "s4", cmp.Current.ID)
	assert.Equal(t, "-1.5", cmp.Hip.Value)
}

func TestCompare_SameDateFallsBackToCreatedAt(t *testing.T) {
	first := visit("first", "2024-01-10", day0, domain.BodyMeasurements{Bust: "90"})
	second := visit("second", "2024-01-10", day0.Add(time.Hour), domain.BodyMeasurements{Bust: "91"})

	cmp, ok := Compare([]domain.SessionRecord{second, first})
	require.True(t, ok)
	assert.Equal(t, "second", cmp.Current.ID)
	assert.Equal(t, "1.0", cmp.Bust.Value)
}

func TestCompare_Bilateral(t *testing.T) {
	a := visit("a", "2024-01-10", day0, domain.BodyMeasurements{
		RightArm: "30", LeftArm: "31",
		RightLeg: "55", LeftLeg: "",
		RightCalf: "36", LeftCalf: "36",
	})
	b := visit("b", "2024-01-20", day0, domain.BodyMeasurements{
		RightArm: "29.5", LeftArm: "31.4",
		RightLeg: "54", LeftLeg: "53",
		RightCalf: "36", LeftCalf: "35.95",
	})

	cmp, ok := Compare([]domain.SessionRecord{a, b})
	require.True(t, ok)

	assert.Equal(t, "-0.5", cmp.Arms.Right.Value)
	assert.Equal(t, TrendImproved, cmp.Arms.Right.Trend)
	assert.Equal(t, "0.4", cmp.Arms.Left.Value)
	assert.Equal(t, TrendRegressed, cmp.Arms.Left.Trend)

	assert.Equal(t, "-1.0", cmp.Legs.Right.Value)
	assert.Equal(t, Unavailable, cmp.Legs.Left.Value)
	assert.Empty(t, cmp.Legs.Left.Trend)

	assert.Equal(t, "0.0", cmp.Calves.Right.Value)
	assert.Equal(t, TrendUnchanged, cmp.Calves.Right.Trend)
	assert.Equal(t, "0.0", cmp.Calves.Left.Value, "rounds away the sign of tiny reductions")

	assert.Equal(t, Unavailable, cmp.Flanks.Right.Value)
	assert.Equal(t, Unavailable, cmp.Flanks.Left.Value)
}

func TestCompare_MissingValues(t *testing.T) {
	a := visit("a", "2024-01-10", day0, domain.BodyMeasurements{Weight: "80"})
	b := visit("b", "2024-01-20", day0, domain.BodyMeasurements{})

	cmp, ok := Compare([]domain.SessionRecord{a, b})
	require.True(t, ok)
	assert.Equal(t, Unavailable, cmp.Weight.Value)
	assert.Empty(t, cmp.Weight.Trend)
	assert.Equal(t, "80", cmp.Weight.Previous)
}

func TestCompare_NeedsTwoSessions(t *testing.T) {
	_, ok := Compare(nil)
	assert.False(t, ok)

	cmp, ok := Compare([]domain.SessionRecord{visit("only", "2024-01-10", day0, domain.BodyMeasurements{Weight: "80"})})
	assert.False(t, ok)
	assert.Equal(t, Comparison{}, cmp)
}

func TestCompare_DoesNotReorderInput(t *testing.T) {
	sessions := []domain.SessionRecord{
		visit("b", "2024-02-01", day0, domain.BodyMeasurements{}),
		visit("a", "2024-01-01", day0, domain.BodyMeasurements{}),
	}
	Compare(sessions)
	assert.Equal(t, "b", sessions[0].ID)
}
