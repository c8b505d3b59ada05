package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePosition(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"gk", PositionGoalkeeper},
		{"Goalkeeper", PositionGoalkeeper},
		{"DEF", PositionDefender},
		{"mid", PositionMidfielder},
		{"fwd", PositionForward},
		{"Striker", PositionForward},
		{"attacker", PositionForward},
		{" forward ", PositionForward},
		{"Sweeper", "Sweeper"}, // unknown values pass through
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizePosition(tt.raw), tt.raw)
	}
}

func TestSeasonStats_NilSafety(t *testing.T) {
	var stats *SeasonStats

	assert.Equal(t, DefaultRating, stats.RatingOrDefault())
	assert.Zero(t, stats.RatingOrZero())
	assert.Zero(t, stats.GoalsOrZero())
	assert.Zero(t, stats.MinutesOrZero())
	assert.Zero(t, stats.YellowCardsOrZero())
}

func TestNewPlayerSummary_Defaults(t *testing.T) {
	player := &Player{
		ID:       7,
		Name:     "No Stats Yet",
		Position: "striker",
		Age:      19,
	}

	summary := NewPlayerSummary(player)
	assert.Equal(t, PositionForward, summary.Position)
	assert.Equal(t, DefaultRating, summary.Rating)
	assert.Zero(t, summary.Goals)
	assert.Empty(t, summary.Club)
}
