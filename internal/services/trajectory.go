package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/plhub/epl-analytics/internal/engine"
	"github.com/plhub/epl-analytics/internal/models"
	"github.com/plhub/epl-analytics/pkg/config"
)

// PlayerReader is the data-store contract consumed by the trajectory service.
type PlayerReader interface {
	GetPlayer(ctx context.Context, id uint) (*models.Player, error)
	ListComparables(ctx context.Context, position string, excludeID uint, minMinutes, limit int) ([]models.Player, error)
}

// NarrativeGenerator is the narrative-collaborator boundary: structured
// prompt in, opaque prose out.
type NarrativeGenerator interface {
	Generate(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// TrajectoryOptions are the per-request knobs; zero values fall back to the
// configured defaults.
type TrajectoryOptions struct {
	Mode engine.SimilarityMode
	TopK int
}

// TrajectoryService composes the accessor, age curve, similarity engine,
// value projection and narrative builder into the trajectory and comparison
// pipelines. All numeric stages are pure and stateless; the only I/O is the
// store read and the collaborator call.
type TrajectoryService struct {
	store      PlayerReader
	ageCurve   *engine.AgeCurveModel
	similarity *engine.SimilarityEngine
	projection *engine.ValueProjectionModel
	builder    *NarrativeContextBuilder
	narrator   NarrativeGenerator
	config     *config.Config
	logger     *logrus.Logger
}

func NewTrajectoryService(
	store PlayerReader,
	narrator NarrativeGenerator,
	cfg *config.Config,
	logger *logrus.Logger,
) *TrajectoryService {
	return &TrajectoryService{
		store:      store,
		ageCurve:   engine.NewAgeCurveModel(),
		similarity: engine.NewSimilarityEngine(),
		projection: engine.NewValueProjectionModel(),
		builder:    NewNarrativeContextBuilder(),
		narrator:   narrator,
		config:     cfg,
		logger:     logger,
	}
}

// BuildTrajectory runs the single-player pipeline: fetch, classify, rank
// comparables, project value, then narrate. A collaborator failure is
// downgraded to the placeholder string; the numeric payload does not depend
// on the narrative step.
func (s *TrajectoryService) BuildTrajectory(ctx context.Context, playerID uint, opts TrajectoryOptions) (*models.PlayerTrajectory, error) {
	requestID := uuid.New().String()
	start := time.Now()

	side, err := s.buildSide(ctx, playerID, opts)
	if err != nil {
		return nil, err
	}

	narrative := s.narrate(ctx, s.builder.BuildTrajectoryPrompt(side))

	s.logger.WithFields(logrus.Fields{
		"request_id":  requestID,
		"player_id":   playerID,
		"phase":       side.AgeCurve.Phase,
		"comparables": len(side.Comparables),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Built player trajectory")

	return &models.PlayerTrajectory{
		TrajectorySide: *side,
		Narrative:      narrative,
		RequestID:      requestID,
		GeneratedAt:    time.Now().UTC(),
	}, nil
}

// Compare runs the two sub-pipelines concurrently and joins before building
// the comparison prompt. The policy is all-or-nothing: if either side fails,
// the whole comparison fails and the collaborator is never invoked, since a
// one-sided narrative would misrepresent a head-to-head analysis.
func (s *TrajectoryService) Compare(ctx context.Context, playerAID, playerBID uint, note string, opts TrajectoryOptions) (*models.ComparisonResult, error) {
	requestID := uuid.New().String()
	start := time.Now()

	type sideResult struct {
		side *models.TrajectorySide
		err  error
	}

	chA := make(chan sideResult, 1)
	chB := make(chan sideResult, 1)
	go func() {
		side, err := s.buildSide(ctx, playerAID, opts)
		chA <- sideResult{side, err}
	}()
	go func() {
		side, err := s.buildSide(ctx, playerBID, opts)
		chB <- sideResult{side, err}
	}()

	resA, resB := <-chA, <-chB
	if resA.err != nil {
		return nil, resA.err
	}
	if resB.err != nil {
		return nil, resB.err
	}

	comparison := models.ComparisonContext{
		PlayerA: *resA.side,
		PlayerB: *resB.side,
		Note:    note,
	}

	narrative := s.narrate(ctx, s.builder.BuildComparisonPrompt(&comparison))

	s.logger.WithFields(logrus.Fields{
		"request_id":  requestID,
		"player_a":    playerAID,
		"player_b":    playerBID,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Built player comparison")

	return &models.ComparisonResult{
		ComparisonContext: comparison,
		Narrative:         narrative,
		RequestID:         requestID,
		GeneratedAt:       time.Now().UTC(),
	}, nil
}

// buildSide runs the numeric stages for one player.
func (s *TrajectoryService) buildSide(ctx context.Context, playerID uint, opts TrajectoryOptions) (*models.TrajectorySide, error) {
	player, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	position := models.NormalizePosition(player.Position)
	candidates, err := s.store.ListComparables(ctx, position, player.ID, s.config.MinSampleMinutes, s.config.ComparablePoolSize)
	if err != nil {
		return nil, err
	}

	mode := opts.Mode
	if mode == "" {
		mode = engine.ParseSimilarityMode(s.config.SimilarityMode)
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = s.config.SimilarityTopK
	}

	curve := s.ageCurve.Classify(player)
	comparables := s.similarity.Rank(player, candidates, mode, topK)
	projection := s.projection.Project(player, curve)

	return &models.TrajectorySide{
		Player:      models.NewPlayerSummary(player),
		AgeCurve:    curve,
		Comparables: comparables,
		Projection:  projection,
	}, nil
}

// narrate invokes the collaborator and downgrades any failure or empty reply
// to the fixed placeholder.
func (s *TrajectoryService) narrate(ctx context.Context, prompt string) string {
	text, err := s.narrator.Generate(ctx, TrajectorySystemPrompt, prompt)
	if err != nil {
		s.logger.WithError(err).Warn("Narrative collaborator failed, using placeholder")
		return NarrativePlaceholder
	}
	return s.builder.UnwrapResponse(text)
}
