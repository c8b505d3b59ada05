package engine

import (
	"math"
	"sort"

	"github.com/plhub/epl-analytics/internal/models"
)

// SimilarityMode selects the distance metric used for ranking comparables.
type SimilarityMode string

const (
	// ModeWeightedCosine ranks by weighted cosine similarity over raw
	// per-season totals.
	ModeWeightedCosine SimilarityMode = "weighted-cosine"
	// ModeRateEuclidean ranks by normalized euclidean distance over
	// per-90-minute rates.
	ModeRateEuclidean SimilarityMode = "rate-normalized-euclidean"
)

// ParseSimilarityMode resolves a configured mode string, defaulting to
// weighted cosine for anything unrecognized.
func ParseSimilarityMode(raw string) SimilarityMode {
	if SimilarityMode(raw) == ModeRateEuclidean {
		return ModeRateEuclidean
	}
	return ModeWeightedCosine
}

// DefaultTopK caps the comparable list when the caller does not say otherwise.
const DefaultTopK = 3

// cosineWeights is the fixed feature-weight table for the cosine mode:
// rating, goals, assists, xG, xA, progressive passes, age. Weights sum to 1
// and are part of the domain model, not tunable per call.
var cosineWeights = [7]float64{0.25, 0.15, 0.15, 0.10, 0.10, 0.15, 0.10}

// euclideanDims is the dimensionality of the rate-normalized feature space:
// xG/90, assists/90, progressive passes/90, rating, inverted discipline.
const euclideanDims = 5

// maxUnitDistance is the largest possible euclidean distance in the
// normalized unit cube.
var maxUnitDistance = math.Sqrt(euclideanDims)

// SimilarityEngine ranks candidate players by statistical similarity to a
// target. Callers restrict the candidate pool to the target's position,
// exclude the target itself, and filter out insufficient sample sizes; the
// engine does not validate significance.
type SimilarityEngine struct{}

func NewSimilarityEngine() *SimilarityEngine {
	return &SimilarityEngine{}
}

// Rank scores every candidate against the target and returns the top-K most
// similar, descending. Ties are broken by ascending player ID so the ordering
// is stable regardless of the pool ordering returned by the store. An empty
// pool yields an empty result.
func (e *SimilarityEngine) Rank(target *models.Player, candidates []models.Player, mode SimilarityMode, topK int) []models.SimilarityResult {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(candidates) == 0 {
		return []models.SimilarityResult{}
	}

	var results []models.SimilarityResult
	switch mode {
	case ModeRateEuclidean:
		results = e.rankByRateDistance(target, candidates)
	default:
		results = e.rankByWeightedCosine(target, candidates)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].PlayerID < results[j].PlayerID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

func (e *SimilarityEngine) rankByWeightedCosine(target *models.Player, candidates []models.Player) []models.SimilarityResult {
	targetVec := weightedTotalsVector(target)

	results := make([]models.SimilarityResult, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		score := cosineSimilarity(targetVec, weightedTotalsVector(c))
		results = append(results, newSimilarityResult(c, score, score*100))
	}
	return results
}

// weightedTotalsVector builds the raw-totals feature vector with the fixed
// weights applied multiplicatively. Missing features are treated as 0.
func weightedTotalsVector(p *models.Player) [7]float64 {
	s := p.Stats
	raw := [7]float64{
		s.RatingOrZero(),
		float64(s.GoalsOrZero()),
		float64(s.AssistsOrZero()),
		s.ExpectedGoalsOrZero(),
		s.ExpectedAssistsOrZero(),
		float64(s.ProgressivePassesOrZero()),
		float64(p.Age),
	}
	for i := range raw {
		raw[i] *= cosineWeights[i]
	}
	return raw
}

// cosineSimilarity returns 0 when either vector has zero magnitude, guarding
// the divide-by-zero. With non-negative features the result lies in [0, 1].
func cosineSimilarity(a, b [7]float64) float64 {
	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

func (e *SimilarityEngine) rankByRateDistance(target *models.Player, candidates []models.Player) []models.SimilarityResult {
	// Normalization bounds are relative to the pool plus the target, not
	// universal constants.
	vectors := make([][euclideanDims]float64, 0, len(candidates)+1)
	vectors = append(vectors, rateVector(target))
	for i := range candidates {
		vectors = append(vectors, rateVector(&candidates[i]))
	}

	normalizeColumns(vectors)

	// Invert discipline after normalization so fewer cards scores higher.
	for i := range vectors {
		vectors[i][4] = 1 - vectors[i][4]
	}

	targetVec := vectors[0]
	results := make([]models.SimilarityResult, 0, len(candidates))
	for i := range candidates {
		distance := euclideanDistance(targetVec, vectors[i+1])
		similarity := math.Max(0, (1-distance/maxUnitDistance)*100)
		results = append(results, newSimilarityResult(&candidates[i], distance, similarity))
	}
	return results
}

// rateVector converts counting stats to per-90-minute rates. Discipline
// combines yellow and double-weighted red cards.
func rateVector(p *models.Player) [euclideanDims]float64 {
	s := p.Stats
	minutes := s.MinutesOrZero()
	discipline := float64(s.YellowCardsOrZero() + 2*s.RedCardsOrZero())
	return [euclideanDims]float64{
		per90(s.ExpectedGoalsOrZero(), minutes),
		per90(float64(s.AssistsOrZero()), minutes),
		per90(float64(s.ProgressivePassesOrZero()), minutes),
		s.RatingOrZero(),
		per90(discipline, minutes),
	}
}

func per90(value float64, minutes int) float64 {
	if minutes <= 0 {
		return 0
	}
	return value / float64(minutes) * 90
}

// normalizeColumns min-max scales each feature to [0, 1] in place. Columns
// with no spread collapse to 0.
func normalizeColumns(vectors [][euclideanDims]float64) {
	for col := 0; col < euclideanDims; col++ {
		lo, hi := vectors[0][col], vectors[0][col]
		for _, v := range vectors {
			lo = math.Min(lo, v[col])
			hi = math.Max(hi, v[col])
		}
		span := hi - lo
		for i := range vectors {
			if span == 0 {
				vectors[i][col] = 0
				continue
			}
			vectors[i][col] = (vectors[i][col] - lo) / span
		}
	}
}

func euclideanDistance(a, b [euclideanDims]float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func newSimilarityResult(c *models.Player, score, similarity float64) models.SimilarityResult {
	return models.SimilarityResult{
		PlayerID:   c.ID,
		PlayerName: c.Name,
		Club:       c.ClubName(),
		Position:   models.NormalizePosition(c.Position),
		Age:        c.Age,
		Rating:     c.Stats.RatingOrDefault(),
		Score:      score,
		Similarity: round1(similarity),
	}
}
