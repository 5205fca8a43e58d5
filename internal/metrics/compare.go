package metrics

import (
	"fmt"
	"math"
	"slices"

	"github.com/yusufkecer/anamnesis-backend/internal/domain"
	"github.com/yusufkecer/anamnesis-backend/internal/session"
)

type Trend string

const (
	TrendImproved  Trend = "improved"
	TrendRegressed Trend = "regressed"
	TrendUnchanged Trend = "unchanged"
)

// Delta is current - previous for one measurement. Value is Unavailable and
// Trend empty when either side is missing.
type Delta struct {
	Previous string `json:"previous"`
	Current  string `json:"current"`
	Value    string `json:"value"`
	Trend    Trend  `json:"trend,omitempty"`
}

// BilateralDelta reports both sides of a paired measurement. The sides are
// never combined.
type BilateralDelta struct {
	Right Delta `json:"right"`
	Left  Delta `json:"left"`
}

type SessionRef struct {
	ID          string `json:"id"`
	SessionDate string `json:"session_date"`
}

type Comparison struct {
	Previous SessionRef `json:"previous"`
	Current  SessionRef `json:"current"`

	Weight Delta `json:"weight"`
	Bust   Delta `json:"bust"`
	Waist  Delta `json:"waist"`
	Hip    Delta `json:"hip"`

	Arms   BilateralDelta `json:"arms"`
	Legs   BilateralDelta `json:"legs"`
	Flanks BilateralDelta `json:"flanks"`
	Calves BilateralDelta `json:"calves"`
}

// Compare diffs the two most recent sessions by clinical date (SessionDate),
// not by entry order. It reports false when there are fewer than two sessions.
func Compare(sessions []domain.SessionRecord) (Comparison, bool) {
	if len(sessions) < 2 {
		return Comparison{}, false
	}

	byDate := slices.Clone(sessions)
	slices.SortStableFunc(byDate, compareClinical)
	prev, cur := byDate[len(byDate)-2], byDate[len(byDate)-1]
	p, c := prev.Measurements, cur.Measurements

	return Comparison{
		Previous: SessionRef{ID: prev.ID, SessionDate: prev.SessionDate},
		Current:  SessionRef{ID: cur.ID, SessionDate: cur.SessionDate},

		Weight: Diff(p.Weight, c.Weight),
		Bust:   Diff(p.Bust, c.Bust),
		Waist:  Diff(p.Waist, c.Waist),
		Hip:    Diff(p.Hip, c.Hip),

		Arms:   BilateralDelta{Right: Diff(p.RightArm, c.RightArm), Left: Diff(p.LeftArm, c.LeftArm)},
		Legs:   BilateralDelta{Right: Diff(p.RightLeg, c.RightLeg), Left: Diff(p.LeftLeg, c.LeftLeg)},
		Flanks: BilateralDelta{Right: Diff(p.RightFlank, c.RightFlank), Left: Diff(p.LeftFlank, c.LeftFlank)},
		Calves: BilateralDelta{Right: Diff(p.RightCalf, c.RightCalf), Left: Diff(p.LeftCalf, c.LeftCalf)},
	}, true
}

// Diff computes current - previous rounded to one decimal. A reduction is an
// improvement for every measurement compared here.
func Diff(previous, current string) Delta {
	d := Delta{Previous: previous, Current: current, Value: Unavailable}

	p, okP := domain.ParseMeasurement(previous)
	c, okC := domain.ParseMeasurement(current)
	if !okP || !okC {
		return d
	}

	v := math.Round((c-p)*10) / 10
	switch {
	case v < 0:
		d.Trend = TrendImproved
	case v > 0:
		d.Trend = TrendRegressed
	default:
		v = 0 // drop the sign of -0
		d.Trend = TrendUnchanged
	}
	d.Value = fmt.Sprintf("%.1f", v)
	return d
}

// compareClinical orders by SessionDate ascending. Unparseable dates sort
// first; equal dates fall back to CreatedAt.
func compareClinical(a, b domain.SessionRecord) int {
	da, okA := session.ParseDate(a.SessionDate)
	db, okB := session.ParseDate(b.SessionDate)
	switch {
	case !okA && okB:
		return -1
	case okA && !okB:
		return 1
	case okA && okB:
		if c := da.Compare(db); c != 0 {
			return c
		}
	}
	return a.CreatedAt.Compare(b.CreatedAt)
}
