package algorithm

import (
	"math"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/factor"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/gdop"
)

// WeightedPosition pairs a candidate position with the scalar weight used
// during merging (selector weight times the variant's self-reported
// confidence).
type WeightedPosition struct {
	Position positioning.Position
	Weight   float64
}

// Combiner merges weighted position candidates into one final position.
// Implementations return nil when the candidates cannot be merged.
type Combiner interface {
	Combine(candidates []WeightedPosition) *positioning.Position
}

const (
	// Collinear candidate sets cannot resolve the cross-track axis, so the
	// merged estimate gets an accuracy floor and a confidence ceiling.
	minCollinearAccuracy   = 6.0
	maxCollinearConfidence = 0.69

	collinearConfidencePenalty = 1.2
)

// WeightedAverageCombiner merges candidates by weighted averaging, with the
// candidate spread's condition number scaling accuracy up and confidence
// down. The zero value is ready to use.
type WeightedAverageCombiner struct{}

// NewWeightedAverageCombiner returns the default combiner.
func NewWeightedAverageCombiner() *WeightedAverageCombiner {
	return &WeightedAverageCombiner{}
}

// Combine implements Combiner. Nil or empty input yields nil; a single
// candidate passes through unchanged.
func (c *WeightedAverageCombiner) Combine(candidates []WeightedPosition) *positioning.Position {
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) == 1 {
		pos := candidates[0].Position
		return &pos
	}

	var sumW float64
	for _, wp := range candidates {
		if wp.Weight > 0 {
			sumW += wp.Weight
		}
	}
	if sumW <= 0 {
		return nil
	}

	var lat, lon, alt, acc, conf float64
	lats := make([]float64, 0, len(candidates))
	lons := make([]float64, 0, len(candidates))
	for _, wp := range candidates {
		if wp.Weight <= 0 {
			continue
		}
		w := wp.Weight / sumW
		lat += wp.Position.Latitude * w
		lon += wp.Position.Longitude * w
		alt += wp.Position.Altitude * w
		acc += wp.Position.Accuracy * w
		conf += wp.Position.Confidence * w
		lats = append(lats, wp.Position.Latitude)
		lons = append(lons, wp.Position.Longitude)
	}

	// Disagreement between algorithms shows up as spread of the candidate
	// estimates; fold its geometric quality into accuracy and confidence.
	// Two candidates always span a rank-1 covariance, so the spread analysis
	// only applies from three candidates up.
	quality := 1.0
	collinear := false
	if len(lats) >= 3 {
		collinear = factor.IsCollinear(lats, lons)
		if cov, err := gdop.PositionCovariance(lats, lons, lat, lon); err == nil {
			kappa := gdop.ConditionNumber(cov[0], cov[1], cov[2])
			quality = gdop.GeometricQualityFactor(kappa, collinear)
		}
	}

	acc *= quality
	conf /= quality

	if collinear {
		acc = math.Max(acc, minCollinearAccuracy)
		conf = math.Min(conf/collinearConfidencePenalty, maxCollinearConfidence)
	}

	return &positioning.Position{
		Latitude:   lat,
		Longitude:  lon,
		Altitude:   alt,
		Accuracy:   acc,
		Confidence: clamp01(conf),
	}
}
