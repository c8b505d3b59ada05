package engine

import (
	"fmt"
	"math"

	"github.com/plhub/epl-analytics/internal/models"
)

// AgeRange is an inclusive [Lo, Hi] span of ages.
type AgeRange struct {
	Lo int
	Hi int
}

func (r AgeRange) Contains(age int) bool {
	return age >= r.Lo && age <= r.Hi
}

// AgeCurveProfile holds the position-specific curve parameters. Ranges are
// contiguous and non-overlapping: Development.Hi < Peak.Lo and
// Peak.Hi < Decline.Lo.
type AgeCurveProfile struct {
	PeakAge        int
	Development    AgeRange
	Peak           AgeRange
	Decline        AgeRange
	PeakMultiplier float64 // expected fractional rating gain from current age to peak
}

// defaultCurves encodes the empirical intuition that peak age rises and the
// observed peak amplitude shrinks moving from attacking roles to goalkeeping.
var defaultCurves = map[string]AgeCurveProfile{
	models.PositionForward: {
		PeakAge:        26,
		Development:    AgeRange{18, 22},
		Peak:           AgeRange{23, 29},
		Decline:        AgeRange{30, 40},
		PeakMultiplier: 1.30,
	},
	models.PositionMidfielder: {
		PeakAge:        27,
		Development:    AgeRange{18, 23},
		Peak:           AgeRange{24, 30},
		Decline:        AgeRange{31, 40},
		PeakMultiplier: 1.25,
	},
	models.PositionDefender: {
		PeakAge:        28,
		Development:    AgeRange{18, 24},
		Peak:           AgeRange{25, 31},
		Decline:        AgeRange{32, 40},
		PeakMultiplier: 1.20,
	},
	models.PositionGoalkeeper: {
		PeakAge:        30,
		Development:    AgeRange{18, 26},
		Peak:           AgeRange{27, 33},
		Decline:        AgeRange{34, 42},
		PeakMultiplier: 1.15,
	},
}

// peakHeadroom is the small rating headroom granted inside the peak plateau.
const peakHeadroom = 1.05

// AgeCurveModel classifies players into career phases and projects their
// peak rating. The curve table is fixed at construction and never mutated.
type AgeCurveModel struct {
	curves map[string]AgeCurveProfile
}

func NewAgeCurveModel() *AgeCurveModel {
	return &AgeCurveModel{curves: defaultCurves}
}

// Profile returns the curve for a position, falling back to the Midfielder
// curve for unrecognized positions.
func (m *AgeCurveModel) Profile(position string) AgeCurveProfile {
	if curve, ok := m.curves[models.NormalizePosition(position)]; ok {
		return curve
	}
	return m.curves[models.PositionMidfielder]
}

// Classify maps a player's position and age to a career phase and a projected
// peak rating. Missing ratings default to models.DefaultRating; there are no
// failure modes beyond that defaulting.
func (m *AgeCurveModel) Classify(p *models.Player) models.AgeCurveResult {
	curve := m.Profile(p.Position)
	rating := p.Stats.RatingOrDefault()
	age := p.Age

	// Decline is checked first: under a misconfigured table the decline and
	// peak ranges could both contain a boundary age, and decline wins.
	var phase string
	switch {
	case age >= curve.Decline.Lo:
		phase = models.PhaseDecline
	case curve.Peak.Contains(age):
		phase = models.PhasePeak
	default:
		phase = models.PhaseDevelopment
	}

	var projectedPeak float64
	switch phase {
	case models.PhaseDecline:
		// The observed rating already reflects post-peak decline.
		projectedPeak = rating
	case models.PhasePeak:
		projectedPeak = rating * peakHeadroom
	default:
		// Linearly fade the multiplier's effect as age approaches the peak window.
		progress := clamp(float64(age-curve.Development.Lo)/float64(curve.Peak.Lo-curve.Development.Lo), 0, 1)
		remainingGrowth := 1 - progress
		projectedPeak = rating * (1 + (curve.PeakMultiplier-1)*remainingGrowth)
	}

	uplift := 0.0
	if rating > 0 {
		uplift = round1((projectedPeak - rating) / rating * 100)
	}

	return models.AgeCurveResult{
		CurrentAge:          age,
		PeakAge:             curve.PeakAge,
		YearsUntilPeak:      curve.PeakAge - age,
		Phase:               phase,
		CurrentRating:       rating,
		ProjectedPeakRating: projectedPeak,
		UpliftPercent:       uplift,
		Description:         describePhase(phase, curve, age),
	}
}

func describePhase(phase string, curve AgeCurveProfile, age int) string {
	switch phase {
	case models.PhaseDecline:
		return fmt.Sprintf("Past the typical peak window for the position; %d years beyond the expected peak age of %d.", age-curve.PeakAge, curve.PeakAge)
	case models.PhasePeak:
		return fmt.Sprintf("Inside the peak window (ages %d-%d) for the position.", curve.Peak.Lo, curve.Peak.Hi)
	default:
		return fmt.Sprintf("In the development phase, %d years from the expected peak age of %d.", curve.PeakAge-age, curve.PeakAge)
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
