package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/plhub/epl-analytics/internal/models"
	"github.com/plhub/epl-analytics/internal/store"
	"github.com/plhub/epl-analytics/pkg/config"
)

// MockPlayerReader mocks the data-store contract.
type MockPlayerReader struct {
	mock.Mock
}

func (m *MockPlayerReader) GetPlayer(ctx context.Context, id uint) (*models.Player, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*models.Player), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPlayerReader) ListComparables(ctx context.Context, position string, excludeID uint, minMinutes, limit int) ([]models.Player, error) {
	args := m.Called(ctx, position, excludeID, minMinutes, limit)
	if p := args.Get(0); p != nil {
		return p.([]models.Player), args.Error(1)
	}
	return nil, args.Error(1)
}

// stubNarrator counts collaborator invocations and returns a fixed reply.
type stubNarrator struct {
	calls int64
	text  string
	err   error
}

func (s *stubNarrator) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	atomic.AddInt64(&s.calls, 1)
	return s.text, s.err
}

func testConfig() *config.Config {
	return &config.Config{
		SimilarityMode:     "weighted-cosine",
		SimilarityTopK:     3,
		ComparablePoolSize: 50,
		MinSampleMinutes:   450,
	}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func float64Ptr(v float64) *float64 { return &v }
func int64Ptr(v int) *int           { return &v }

func fixturePlayer(id uint, name string, age int, rating float64) *models.Player {
	return &models.Player{
		ID:       id,
		Name:     name,
		Position: models.PositionForward,
		Age:      age,
		Club:     &models.Club{ID: 1, Name: "Arsenal"},
		Stats: &models.SeasonStats{
			Rating:            float64Ptr(rating),
			Goals:             int64Ptr(14),
			Assists:           int64Ptr(7),
			ExpectedGoals:     float64Ptr(12.3),
			ExpectedAssists:   float64Ptr(6.1),
			ProgressivePasses: int64Ptr(110),
			Appearances:       int64Ptr(30),
			MinutesPlayed:     int64Ptr(2500),
			YellowCards:       int64Ptr(3),
		},
	}
}

func TestBuildTrajectory_Success(t *testing.T) {
	reader := new(MockPlayerReader)
	narrator := &stubNarrator{text: "A forward approaching the peak window."}

	target := fixturePlayer(10, "Test Forward", 24, 7.6)
	pool := []models.Player{
		*fixturePlayer(11, "Comparable One", 25, 7.4),
		*fixturePlayer(12, "Comparable Two", 23, 7.2),
	}

	reader.On("GetPlayer", mock.Anything, uint(10)).Return(target, nil)
	reader.On("ListComparables", mock.Anything, models.PositionForward, uint(10), 450, 50).Return(pool, nil)

	service := NewTrajectoryService(reader, narrator, testConfig(), quietLogger())
	trajectory, err := service.BuildTrajectory(context.Background(), 10, TrajectoryOptions{})

	require.NoError(t, err)
	assert.Equal(t, "A forward approaching the peak window.", trajectory.Narrative)
	assert.Equal(t, "Test Forward", trajectory.Player.Name)
	assert.Equal(t, models.PhasePeak, trajectory.AgeCurve.Phase)
	assert.Len(t, trajectory.Comparables, 2)
	assert.Len(t, trajectory.Projection.Points, 6)
	assert.NotEmpty(t, trajectory.RequestID)
	assert.EqualValues(t, 1, atomic.LoadInt64(&narrator.calls))
	reader.AssertExpectations(t)
}

func TestBuildTrajectory_NotFound(t *testing.T) {
	reader := new(MockPlayerReader)
	narrator := &stubNarrator{text: "unused"}

	reader.On("GetPlayer", mock.Anything, uint(99)).Return(nil, store.ErrPlayerNotFound)

	service := NewTrajectoryService(reader, narrator, testConfig(), quietLogger())
	trajectory, err := service.BuildTrajectory(context.Background(), 99, TrajectoryOptions{})

	assert.Nil(t, trajectory)
	assert.ErrorIs(t, err, store.ErrPlayerNotFound)
	assert.Zero(t, atomic.LoadInt64(&narrator.calls))
}

func TestBuildTrajectory_CollaboratorFailureDowngrades(t *testing.T) {
	reader := new(MockPlayerReader)
	narrator := &stubNarrator{err: errors.New("narrative service down")}

	target := fixturePlayer(10, "Test Forward", 24, 7.6)
	reader.On("GetPlayer", mock.Anything, uint(10)).Return(target, nil)
	reader.On("ListComparables", mock.Anything, models.PositionForward, uint(10), 450, 50).
		Return([]models.Player{}, nil)

	service := NewTrajectoryService(reader, narrator, testConfig(), quietLogger())
	trajectory, err := service.BuildTrajectory(context.Background(), 10, TrajectoryOptions{})

	// The numeric payload survives a collaborator failure.
	require.NoError(t, err)
	assert.Equal(t, NarrativePlaceholder, trajectory.Narrative)
	assert.Len(t, trajectory.Projection.Points, 6)
	assert.Empty(t, trajectory.Comparables)
}

func TestBuildTrajectory_EmptyReplyBecomesPlaceholder(t *testing.T) {
	reader := new(MockPlayerReader)
	narrator := &stubNarrator{text: "   \n"}

	target := fixturePlayer(10, "Test Forward", 24, 7.6)
	reader.On("GetPlayer", mock.Anything, uint(10)).Return(target, nil)
	reader.On("ListComparables", mock.Anything, models.PositionForward, uint(10), 450, 50).
		Return([]models.Player{}, nil)

	service := NewTrajectoryService(reader, narrator, testConfig(), quietLogger())
	trajectory, err := service.BuildTrajectory(context.Background(), 10, TrajectoryOptions{})

	require.NoError(t, err)
	assert.Equal(t, NarrativePlaceholder, trajectory.Narrative)
}

func TestCompare_Success(t *testing.T) {
	reader := new(MockPlayerReader)
	narrator := &stubNarrator{text: "Player A has the longer runway."}

	playerA := fixturePlayer(10, "Player A", 21, 7.2)
	playerB := fixturePlayer(20, "Player B", 29, 7.8)

	reader.On("GetPlayer", mock.Anything, uint(10)).Return(playerA, nil)
	reader.On("GetPlayer", mock.Anything, uint(20)).Return(playerB, nil)
	reader.On("ListComparables", mock.Anything, models.PositionForward, uint(10), 450, 50).
		Return([]models.Player{*fixturePlayer(30, "Precedent", 22, 7.1)}, nil)
	reader.On("ListComparables", mock.Anything, models.PositionForward, uint(20), 450, 50).
		Return([]models.Player{*fixturePlayer(31, "Veteran Precedent", 30, 7.6)}, nil)

	service := NewTrajectoryService(reader, narrator, testConfig(), quietLogger())
	comparison, err := service.Compare(context.Background(), 10, 20, "Contract expires next summer", TrajectoryOptions{})

	require.NoError(t, err)
	assert.Equal(t, "Player A", comparison.PlayerA.Player.Name)
	assert.Equal(t, "Player B", comparison.PlayerB.Player.Name)
	assert.Equal(t, "Contract expires next summer", comparison.Note)
	assert.Equal(t, "Player A has the longer runway.", comparison.Narrative)
	assert.Equal(t, models.PhaseDevelopment, comparison.PlayerA.AgeCurve.Phase)
	assert.Equal(t, models.PhasePeak, comparison.PlayerB.AgeCurve.Phase)
	assert.EqualValues(t, 1, atomic.LoadInt64(&narrator.calls))
}

func TestCompare_AllOrNothing(t *testing.T) {
	reader := new(MockPlayerReader)
	narrator := &stubNarrator{text: "unused"}

	playerB := fixturePlayer(20, "Player B", 29, 7.8)
	reader.On("GetPlayer", mock.Anything, uint(99)).Return(nil, store.ErrPlayerNotFound)
	reader.On("GetPlayer", mock.Anything, uint(20)).Return(playerB, nil)
	reader.On("ListComparables", mock.Anything, models.PositionForward, uint(20), 450, 50).
		Return([]models.Player{}, nil).Maybe()

	service := NewTrajectoryService(reader, narrator, testConfig(), quietLogger())
	comparison, err := service.Compare(context.Background(), 99, 20, "", TrajectoryOptions{})

	// One missing side fails the whole comparison and the collaborator is
	// never invoked.
	assert.Nil(t, comparison)
	assert.ErrorIs(t, err, store.ErrPlayerNotFound)
	assert.Zero(t, atomic.LoadInt64(&narrator.calls))
}
