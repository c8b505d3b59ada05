package engine

import (
	"math"

	"github.com/plhub/epl-analytics/internal/models"
)

const (
	projectionYears = 5    // fixed forward horizon
	ratingFloor     = 5.0  // declining professionals retain baseline competence
	annualDecay     = 0.97 // 3% per year geometric decay past peak
	minValue        = 1.0  // value units, millions
	maxValue        = 150.0
)

// positionValueMultipliers reflect market premiums by role.
var positionValueMultipliers = map[string]float64{
	models.PositionForward:    1.3,
	models.PositionMidfielder: 1.1,
	models.PositionDefender:   0.9,
	models.PositionGoalkeeper: 0.7,
}

// ValueProjectionModel derives a present-day value estimate and projects it
// across the five-year horizon using the age curve's rating trajectory.
type ValueProjectionModel struct{}

func NewValueProjectionModel() *ValueProjectionModel {
	return &ValueProjectionModel{}
}

// BaseValue is the present-day value heuristic: cubic rating scaling (elite
// ratings rewarded disproportionately), age and position multipliers, plus an
// additive goal involvement bonus, clamped to [1, 150].
func (m *ValueProjectionModel) BaseValue(p *models.Player) float64 {
	rating := p.Stats.RatingOrDefault()

	value := math.Pow(rating/10, 3) * 100
	value *= ageValueMultiplier(p.Age)
	value *= positionValueMultiplier(p.Position)
	value += float64(p.Stats.GoalsOrZero()+p.Stats.AssistsOrZero()) * 0.5

	return clamp(value, minValue, maxValue)
}

func ageValueMultiplier(age int) float64 {
	switch {
	case age < 24:
		return 1.5
	case age < 28:
		return 1.2
	case age < 31:
		return 0.9
	default:
		return 0.6
	}
}

func positionValueMultiplier(position string) float64 {
	if mult, ok := positionValueMultipliers[models.NormalizePosition(position)]; ok {
		return mult
	}
	return 1.0
}

// RatingAt projects the rating at a target age along the curve: identity at
// the current age, linear interpolation toward the projected peak before it,
// the projected peak exactly at peak age, and geometric decay after it,
// floored at ratingFloor.
func (m *ValueProjectionModel) RatingAt(targetAge int, curve models.AgeCurveResult) float64 {
	switch {
	case targetAge == curve.CurrentAge:
		return curve.CurrentRating
	case targetAge < curve.PeakAge:
		span := float64(curve.PeakAge - curve.CurrentAge)
		progress := float64(targetAge-curve.CurrentAge) / span
		return curve.CurrentRating + (curve.ProjectedPeakRating-curve.CurrentRating)*progress
	case targetAge == curve.PeakAge:
		return curve.ProjectedPeakRating
	default:
		rating := curve.ProjectedPeakRating * math.Pow(annualDecay, float64(targetAge-curve.PeakAge))
		return math.Max(rating, ratingFloor)
	}
}

// Project builds the six-point market trajectory for years 0 through 5.
// Point 0 is the anchor: its value equals BaseValue exactly. Later values
// scale with the ratio of projected to current rating, keeping the age and
// position multipliers fixed at their current-age values across the horizon.
func (m *ValueProjectionModel) Project(p *models.Player, curve models.AgeCurveResult) models.MarketProjection {
	base := m.BaseValue(p)

	points := make([]models.ProjectionPoint, 0, projectionYears+1)
	peakValue := base
	for year := 0; year <= projectionYears; year++ {
		age := curve.CurrentAge + year
		rating := m.RatingAt(age, curve)

		value := base
		if year > 0 && curve.CurrentRating > 0 {
			value = round1(base * rating / curve.CurrentRating)
		}
		if value > peakValue {
			peakValue = value
		}

		points = append(points, models.ProjectionPoint{
			Year:   year,
			Age:    age,
			Rating: round1(rating),
			Value:  value,
		})
	}

	return models.MarketProjection{
		CurrentValue: base,
		PeakValue:    peakValue,
		Points:       points,
	}
}
