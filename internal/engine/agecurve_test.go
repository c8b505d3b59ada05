package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plhub/epl-analytics/internal/models"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func testPlayer(position string, age int, rating *float64) *models.Player {
	return &models.Player{
		ID:       1,
		Name:     "Test Player",
		Position: position,
		Age:      age,
		Stats:    &models.SeasonStats{Rating: rating},
	}
}

func TestClassify_DevelopmentInterpolation(t *testing.T) {
	// Forward, age 20, rating 7.0: progress = (20-18)/(23-18) = 0.4,
	// remaining growth 0.6, projected peak = 7.0 * (1 + 0.30*0.6) = 8.26.
	model := NewAgeCurveModel()
	result := model.Classify(testPlayer(models.PositionForward, 20, floatPtr(7.0)))

	assert.Equal(t, models.PhaseDevelopment, result.Phase)
	assert.Equal(t, 26, result.PeakAge)
	assert.Equal(t, 6, result.YearsUntilPeak)
	assert.InDelta(t, 8.26, result.ProjectedPeakRating, 1e-9)
	assert.InDelta(t, 18.0, result.UpliftPercent, 1e-9)
}

func TestClassify_PhaseBoundaries(t *testing.T) {
	model := NewAgeCurveModel()
	positions := []string{
		models.PositionGoalkeeper,
		models.PositionDefender,
		models.PositionMidfielder,
		models.PositionForward,
	}

	for _, position := range positions {
		t.Run(position, func(t *testing.T) {
			curve := model.Profile(position)

			lo := model.Classify(testPlayer(position, curve.Peak.Lo, floatPtr(7.0)))
			assert.Equal(t, models.PhasePeak, lo.Phase, "age == peak.lo must classify as peak")

			hi := model.Classify(testPlayer(position, curve.Peak.Hi, floatPtr(7.0)))
			assert.Equal(t, models.PhasePeak, hi.Phase, "age == peak.hi must classify as peak")

			decline := model.Classify(testPlayer(position, curve.Decline.Lo, floatPtr(7.0)))
			assert.Equal(t, models.PhaseDecline, decline.Phase, "decline takes precedence at its boundary")

			development := model.Classify(testPlayer(position, curve.Development.Lo, floatPtr(7.0)))
			assert.Equal(t, models.PhaseDevelopment, development.Phase)
		})
	}
}

func TestClassify_DeclinePrecedence(t *testing.T) {
	// A table where decline and peak both contain the boundary age: decline
	// must win because it is evaluated first.
	model := &AgeCurveModel{curves: map[string]AgeCurveProfile{
		models.PositionForward: {
			PeakAge:        26,
			Development:    AgeRange{18, 22},
			Peak:           AgeRange{23, 30},
			Decline:        AgeRange{30, 40},
			PeakMultiplier: 1.30,
		},
		models.PositionMidfielder: defaultCurves[models.PositionMidfielder],
	}}

	result := model.Classify(testPlayer(models.PositionForward, 30, floatPtr(7.0)))
	assert.Equal(t, models.PhaseDecline, result.Phase)
}

func TestClassify_PeakAndDeclineProjection(t *testing.T) {
	model := NewAgeCurveModel()

	peak := model.Classify(testPlayer(models.PositionForward, 26, floatPtr(8.0)))
	assert.Equal(t, models.PhasePeak, peak.Phase)
	assert.InDelta(t, 8.4, peak.ProjectedPeakRating, 1e-9)
	assert.InDelta(t, 5.0, peak.UpliftPercent, 1e-9)

	decline := model.Classify(testPlayer(models.PositionForward, 33, floatPtr(7.2)))
	assert.Equal(t, models.PhaseDecline, decline.Phase)
	assert.InDelta(t, 7.2, decline.ProjectedPeakRating, 1e-9, "decline keeps the observed rating")
	assert.Zero(t, decline.UpliftPercent)
	assert.Equal(t, -7, decline.YearsUntilPeak)
}

func TestClassify_Defaults(t *testing.T) {
	model := NewAgeCurveModel()

	t.Run("unrecognized position falls back to midfielder curve", func(t *testing.T) {
		result := model.Classify(testPlayer("Wing Wizard", 25, floatPtr(7.0)))
		require.Equal(t, 27, result.PeakAge)
	})

	t.Run("missing rating defaults", func(t *testing.T) {
		result := model.Classify(testPlayer(models.PositionDefender, 26, nil))
		assert.InDelta(t, models.DefaultRating, result.CurrentRating, 1e-9)
	})

	t.Run("missing stats bag defaults", func(t *testing.T) {
		player := &models.Player{Position: models.PositionDefender, Age: 26}
		result := model.Classify(player)
		assert.InDelta(t, models.DefaultRating, result.CurrentRating, 1e-9)
	})
}

func TestDefaultCurves_RangesContiguous(t *testing.T) {
	for position, curve := range defaultCurves {
		assert.Less(t, curve.Development.Hi, curve.Peak.Lo, position)
		assert.Less(t, curve.Peak.Hi, curve.Decline.Lo, position)
		assert.True(t, curve.Peak.Contains(curve.PeakAge), position)
		assert.Greater(t, curve.PeakMultiplier, 1.0, position)
	}
}
