package models

import "time"

// Career phase labels produced by the age curve model.
const (
	PhaseDevelopment = "development"
	PhasePeak        = "peak"
	PhaseDecline     = "decline"
)

// AgeCurveResult is the ephemeral age-curve classification for one player.
// Created fresh per invocation and never cached.
type AgeCurveResult struct {
	CurrentAge          int     `json:"current_age"`
	PeakAge             int     `json:"peak_age"`
	YearsUntilPeak      int     `json:"years_until_peak"` // negative once past peak
	Phase               string  `json:"phase"`
	CurrentRating       float64 `json:"current_rating"`
	ProjectedPeakRating float64 `json:"projected_peak_rating"`
	UpliftPercent       float64 `json:"uplift_percent"`
	Description         string  `json:"description"`
}

// SimilarityResult annotates a comparable player with a similarity score.
type SimilarityResult struct {
	PlayerID   uint    `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Club       string  `json:"club,omitempty"`
	Position   string  `json:"position"`
	Age        int     `json:"age"`
	Rating     float64 `json:"rating"`
	Score      float64 `json:"score"`      // raw metric value (cosine similarity or euclidean distance)
	Similarity float64 `json:"similarity"` // 0-100
}

// ProjectionPoint is one yearly step of a market-value trajectory.
type ProjectionPoint struct {
	Year   int     `json:"year"` // 0 = current season
	Age    int     `json:"age"`
	Rating float64 `json:"rating"`
	Value  float64 `json:"value"` // value units, millions
}

// MarketProjection is the fixed five-year forward window. Points are ordered
// ascending by year; point 0 is the anchor and always equals CurrentValue.
type MarketProjection struct {
	CurrentValue float64           `json:"current_value"`
	PeakValue    float64           `json:"peak_value"`
	Points       []ProjectionPoint `json:"points"`
}

// PlayerSummary is the identity block exposed in payloads: who the player is
// plus the season stat snapshot every derived figure was computed from.
type PlayerSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Position    string `json:"position"`
	Club        string `json:"club,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	Age         int    `json:"age"`

	Rating            float64 `json:"rating"`
	Goals             int     `json:"goals"`
	Assists           int     `json:"assists"`
	ExpectedGoals     float64 `json:"expected_goals"`
	ExpectedAssists   float64 `json:"expected_assists"`
	ProgressivePasses int     `json:"progressive_passes"`
	Appearances       int     `json:"appearances"`
	MinutesPlayed     int     `json:"minutes_played"`
	YellowCards       int     `json:"yellow_cards"`
	RedCards          int     `json:"red_cards"`
}

// NewPlayerSummary flattens a player row and its optional stat bag.
func NewPlayerSummary(p *Player) PlayerSummary {
	s := p.Stats
	return PlayerSummary{
		ID:                p.ID,
		Name:              p.Name,
		Position:          NormalizePosition(p.Position),
		Club:              p.ClubName(),
		Nationality:       p.Nationality,
		Age:               p.Age,
		Rating:            s.RatingOrDefault(),
		Goals:             s.GoalsOrZero(),
		Assists:           s.AssistsOrZero(),
		ExpectedGoals:     s.ExpectedGoalsOrZero(),
		ExpectedAssists:   s.ExpectedAssistsOrZero(),
		ProgressivePasses: s.ProgressivePassesOrZero(),
		Appearances:       s.AppearancesOrZero(),
		MinutesPlayed:     s.MinutesOrZero(),
		YellowCards:       s.YellowCardsOrZero(),
		RedCards:          s.RedCardsOrZero(),
	}
}

// TrajectorySide is one complete player trajectory: identity, age curve,
// comparables, and value projection.
type TrajectorySide struct {
	Player      PlayerSummary      `json:"player"`
	AgeCurve    AgeCurveResult     `json:"age_curve"`
	Comparables []SimilarityResult `json:"comparables"`
	Projection  MarketProjection   `json:"projection"`
}

// PlayerTrajectory is the single-player payload returned to callers.
type PlayerTrajectory struct {
	TrajectorySide
	Narrative   string    `json:"narrative"`
	RequestID   string    `json:"request_id"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ComparisonContext pairs two complete trajectories plus an optional
// situational note, ready for serialization to the narrative collaborator.
type ComparisonContext struct {
	PlayerA TrajectorySide `json:"player_a"`
	PlayerB TrajectorySide `json:"player_b"`
	Note    string         `json:"note,omitempty"`
}

// ComparisonResult is the two-player payload returned to callers.
type ComparisonResult struct {
	ComparisonContext
	Narrative   string    `json:"narrative"`
	RequestID   string    `json:"request_id"`
	GeneratedAt time.Time `json:"generated_at"`
}
