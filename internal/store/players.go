package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/plhub/epl-analytics/internal/models"
)

// ErrPlayerNotFound is returned when the requested player id is absent.
// It is surfaced directly to the caller and never retried.
var ErrPlayerNotFound = errors.New("player not found")

// PlayerStore is the read-only accessor over the player tables the ETL
// pipeline populates.
type PlayerStore struct {
	db *gorm.DB
}

func NewPlayerStore(db *gorm.DB) *PlayerStore {
	return &PlayerStore{db: db}
}

// GetPlayer fetches a single player with club and season stats preloaded.
func (s *PlayerStore) GetPlayer(ctx context.Context, id uint) (*models.Player, error) {
	var player models.Player
	err := s.db.WithContext(ctx).
		Preload("Club").
		Preload("Stats").
		First(&player, "player_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to fetch player %d: %w", id, err)
	}
	return &player, nil
}

// ListComparables returns the candidate pool for similarity ranking: same
// position, target excluded, players below the minutes threshold filtered
// out, rating-sorted descending and capped at limit.
func (s *PlayerStore) ListComparables(ctx context.Context, position string, excludeID uint, minMinutes, limit int) ([]models.Player, error) {
	var players []models.Player
	err := s.db.WithContext(ctx).
		Joins("JOIN player_season_stats stats ON stats.player_id = players.player_id").
		Where("players.position = ?", position).
		Where("players.player_id <> ?", excludeID).
		Where("stats.minutes_played >= ?", minMinutes).
		Order("stats.rating DESC NULLS LAST").
		Limit(limit).
		Preload("Club").
		Preload("Stats").
		Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comparables for position %s: %w", position, err)
	}
	return players, nil
}
