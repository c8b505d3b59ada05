package models

import "strings"

// Canonical positions as normalized by the ETL pipeline.
const (
	PositionGoalkeeper = "Goalkeeper"
	PositionDefender   = "Defender"
	PositionMidfielder = "Midfielder"
	PositionForward    = "Forward"
)

// positionAliases mirrors the ETL's position normalization table so raw
// feed values ("gk", "striker") resolve to the canonical four positions.
var positionAliases = map[string]string{
	"gk":         PositionGoalkeeper,
	"goalkeeper": PositionGoalkeeper,
	"def":        PositionDefender,
	"defender":   PositionDefender,
	"mid":        PositionMidfielder,
	"midfielder": PositionMidfielder,
	"fwd":        PositionForward,
	"forward":    PositionForward,
	"striker":    PositionForward,
	"attacker":   PositionForward,
}

// NormalizePosition maps a raw position string to one of the canonical four.
// Unrecognized values are returned as-is; the age curve model falls back to
// the Midfielder curve for anything it does not know.
func NormalizePosition(raw string) string {
	if canonical, ok := positionAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return canonical
	}
	return strings.TrimSpace(raw)
}

type Club struct {
	ID      uint    `gorm:"column:club_id;primaryKey" json:"id"`
	Name    string  `gorm:"not null" json:"name"`
	Founded *int    `json:"founded,omitempty"`
	LogoURL *string `json:"logo_url,omitempty"`
}

func (Club) TableName() string {
	return "clubs"
}

// Player is a flat snapshot of a player row plus the current-season stat bag.
// The engine never mutates it; every derived value is computed fresh per request.
type Player struct {
	ID          uint   `gorm:"column:player_id;primaryKey" json:"id"`
	ClubID      uint   `gorm:"column:club_id" json:"club_id"`
	Name        string `gorm:"not null" json:"name"`
	Position    string `gorm:"not null" json:"position"`
	Nationality string `json:"nationality"`
	Age         int    `json:"age"`

	Club  *Club        `gorm:"foreignKey:ClubID" json:"club,omitempty"`
	Stats *SeasonStats `gorm:"foreignKey:PlayerID" json:"stats,omitempty"`
}

func (Player) TableName() string {
	return "players"
}

// SeasonStats is the per-season statistics bag. Every field is optional in
// the source data, so all are pointers and readers must apply defaults.
type SeasonStats struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	PlayerID uint   `gorm:"column:player_id;index" json:"-"`
	Season   string `json:"season"`

	Rating            *float64 `json:"rating,omitempty"`
	Goals             *int     `json:"goals,omitempty"`
	Assists           *int     `json:"assists,omitempty"`
	ExpectedGoals     *float64 `gorm:"column:expected_goals" json:"expected_goals,omitempty"`
	ExpectedAssists   *float64 `gorm:"column:expected_assists" json:"expected_assists,omitempty"`
	ProgressivePasses *int     `gorm:"column:progressive_passes" json:"progressive_passes,omitempty"`
	Appearances       *int     `json:"appearances,omitempty"`
	MinutesPlayed     *int     `gorm:"column:minutes_played" json:"minutes_played,omitempty"`
	YellowCards       *int     `gorm:"column:yellow_cards" json:"yellow_cards,omitempty"`
	RedCards          *int     `gorm:"column:red_cards" json:"red_cards,omitempty"`
}

func (SeasonStats) TableName() string {
	return "player_season_stats"
}

// DefaultRating is applied when a player has no rating on record. It trades
// numeric accuracy for availability: the curve and projection still compute.
const DefaultRating = 6.5

// RatingOrDefault returns the season rating, or DefaultRating when absent.
// Safe on a nil receiver.
func (s *SeasonStats) RatingOrDefault() float64 {
	if s == nil || s.Rating == nil {
		return DefaultRating
	}
	return *s.Rating
}

// RatingOrZero returns the season rating or 0 when absent. Similarity metrics
// treat missing features as 0 rather than applying the display default.
func (s *SeasonStats) RatingOrZero() float64 {
	if s == nil || s.Rating == nil {
		return 0
	}
	return *s.Rating
}

// Nil-safe accessors for the optional stat bag. Absent values read as 0.

func (s *SeasonStats) GoalsOrZero() int {
	if s == nil || s.Goals == nil {
		return 0
	}
	return *s.Goals
}

func (s *SeasonStats) AssistsOrZero() int {
	if s == nil || s.Assists == nil {
		return 0
	}
	return *s.Assists
}

func (s *SeasonStats) ExpectedGoalsOrZero() float64 {
	if s == nil || s.ExpectedGoals == nil {
		return 0
	}
	return *s.ExpectedGoals
}

func (s *SeasonStats) ExpectedAssistsOrZero() float64 {
	if s == nil || s.ExpectedAssists == nil {
		return 0
	}
	return *s.ExpectedAssists
}

func (s *SeasonStats) ProgressivePassesOrZero() int {
	if s == nil || s.ProgressivePasses == nil {
		return 0
	}
	return *s.ProgressivePasses
}

func (s *SeasonStats) AppearancesOrZero() int {
	if s == nil || s.Appearances == nil {
		return 0
	}
	return *s.Appearances
}

func (s *SeasonStats) MinutesOrZero() int {
	if s == nil || s.MinutesPlayed == nil {
		return 0
	}
	return *s.MinutesPlayed
}

func (s *SeasonStats) YellowCardsOrZero() int {
	if s == nil || s.YellowCards == nil {
		return 0
	}
	return *s.YellowCards
}

func (s *SeasonStats) RedCardsOrZero() int {
	if s == nil || s.RedCards == nil {
		return 0
	}
	return *s.RedCards
}

// ClubName returns the preloaded club name or an empty string.
func (p *Player) ClubName() string {
	if p.Club == nil {
		return ""
	}
	return p.Club.Name
}
