package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/plhub/epl-analytics/internal/engine"
	"github.com/plhub/epl-analytics/internal/services"
	"github.com/plhub/epl-analytics/internal/store"
	"github.com/plhub/epl-analytics/pkg/utils"
)

// TrajectoryHandler exposes the trajectory and comparison endpoints.
type TrajectoryHandler struct {
	service *services.TrajectoryService
	logger  *logrus.Logger
}

func NewTrajectoryHandler(service *services.TrajectoryService, logger *logrus.Logger) *TrajectoryHandler {
	return &TrajectoryHandler{
		service: service,
		logger:  logger,
	}
}

// GetTrajectory handles GET /api/v1/players/:id/trajectory.
// Optional query params: mode (similarity metric), top (comparable count).
func (h *TrajectoryHandler) GetTrajectory(c *gin.Context) {
	playerID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid player ID", err.Error())
		return
	}

	opts := h.parseOptions(c)

	trajectory, err := h.service.BuildTrajectory(c.Request.Context(), uint(playerID), opts)
	if err != nil {
		if errors.Is(err, store.ErrPlayerNotFound) {
			utils.SendNotFound(c, "Player not found")
			return
		}
		h.logger.WithError(err).WithField("player_id", playerID).Error("Failed to build trajectory")
		utils.SendInternalError(c, "Failed to build player trajectory")
		return
	}

	utils.SendSuccess(c, trajectory)
}

// ComparisonRequest is the POST body for a two-player comparison.
type ComparisonRequest struct {
	PlayerAID uint   `json:"player_a_id" binding:"required"`
	PlayerBID uint   `json:"player_b_id" binding:"required"`
	Note      string `json:"note"`
	Mode      string `json:"mode"`
	TopK      int    `json:"top_k"`
}

// ComparePlayers handles POST /api/v1/players/compare.
func (h *TrajectoryHandler) ComparePlayers(c *gin.Context) {
	var request ComparisonRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendValidationError(c, "Invalid comparison request", err.Error())
		return
	}
	if request.PlayerAID == request.PlayerBID {
		utils.SendValidationError(c, "Cannot compare a player with themselves", "")
		return
	}

	opts := services.TrajectoryOptions{TopK: request.TopK}
	if request.Mode != "" {
		opts.Mode = engine.ParseSimilarityMode(request.Mode)
	}

	h.logger.WithFields(logrus.Fields{
		"player_a": request.PlayerAID,
		"player_b": request.PlayerBID,
	}).Info("Processing comparison request")

	comparison, err := h.service.Compare(c.Request.Context(), request.PlayerAID, request.PlayerBID, request.Note, opts)
	if err != nil {
		if errors.Is(err, store.ErrPlayerNotFound) {
			utils.SendNotFound(c, "Player not found")
			return
		}
		h.logger.WithError(err).Error("Failed to build comparison")
		utils.SendInternalError(c, "Failed to build player comparison")
		return
	}

	utils.SendSuccess(c, comparison)
}

func (h *TrajectoryHandler) parseOptions(c *gin.Context) services.TrajectoryOptions {
	opts := services.TrajectoryOptions{}
	if mode := c.Query("mode"); mode != "" {
		opts.Mode = engine.ParseSimilarityMode(mode)
	}
	if top := c.Query("top"); top != "" {
		if k, err := strconv.Atoi(top); err == nil && k > 0 {
			opts.TopK = k
		}
	}
	return opts
}
