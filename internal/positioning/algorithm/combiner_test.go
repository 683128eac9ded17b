package algorithm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning"
)

func wp(lat, lon, acc, conf, weight float64) WeightedPosition {
	return WeightedPosition{
		Position: positioning.Position{Latitude: lat, Longitude: lon, Accuracy: acc, Confidence: conf},
		Weight:   weight,
	}
}

func TestCombineEmptyReturnsNil(t *testing.T) {
	c := NewWeightedAverageCombiner()
	assert.Nil(t, c.Combine(nil))
	assert.Nil(t, c.Combine([]WeightedPosition{}))
}

func TestCombineSinglePassthrough(t *testing.T) {
	c := NewWeightedAverageCombiner()
	in := wp(40.7570, -73.9850, 12.0, 0.8, 0.9)

	got := c.Combine([]WeightedPosition{in})
	require.NotNil(t, got)
	assert.Equal(t, in.Position, *got)
}

func TestCombineEqualWeightsIsMidpoint(t *testing.T) {
	c := NewWeightedAverageCombiner()
	got := c.Combine([]WeightedPosition{
		wp(40.7560, -73.9850, 10.0, 0.6, 1.0),
		wp(40.7580, -73.9850, 20.0, 0.8, 1.0),
	})
	require.NotNil(t, got)
	assert.InDelta(t, 40.7570, got.Latitude, 1e-9)
	assert.InDelta(t, -73.9850, got.Longitude, 1e-9)
	assert.InDelta(t, 15.0, got.Accuracy, 1e-9)
	assert.InDelta(t, 0.7, got.Confidence, 1e-9)
}

func TestCombineWeightsPullTowardHeavierCandidate(t *testing.T) {
	c := NewWeightedAverageCombiner()
	got := c.Combine([]WeightedPosition{
		wp(40.7560, -73.9850, 10.0, 0.6, 3.0),
		wp(40.7580, -73.9850, 10.0, 0.6, 1.0),
	})
	require.NotNil(t, got)
	assert.InDelta(t, 40.7565, got.Latitude, 1e-9)
}

func TestCombineIgnoresNonPositiveWeights(t *testing.T) {
	c := NewWeightedAverageCombiner()
	got := c.Combine([]WeightedPosition{
		wp(40.7560, -73.9850, 10.0, 0.6, 1.0),
		wp(0.0, 0.0, 999.0, 0.0, 0.0),
		wp(40.7580, -73.9850, 10.0, 0.6, 1.0),
	})
	require.NotNil(t, got)
	assert.InDelta(t, 40.7570, got.Latitude, 1e-9)
}

func TestCombineAllZeroWeightsReturnsNil(t *testing.T) {
	c := NewWeightedAverageCombiner()
	got := c.Combine([]WeightedPosition{
		wp(40.7560, -73.9850, 10.0, 0.6, 0.0),
		wp(40.7580, -73.9850, 10.0, 0.6, -1.0),
	})
	assert.Nil(t, got)
}

func TestCombineCollinearCandidatesDegraded(t *testing.T) {
	c := NewWeightedAverageCombiner()
	// Three candidates on a meridian line.
	got := c.Combine([]WeightedPosition{
		wp(40.7560, -73.9850, 3.0, 0.95, 1.0),
		wp(40.7570, -73.9850, 3.0, 0.95, 1.0),
		wp(40.7580, -73.9850, 3.0, 0.95, 1.0),
	})
	require.NotNil(t, got)
	assert.GreaterOrEqual(t, got.Accuracy, 6.0, "collinear merges carry an accuracy floor")
	assert.LessOrEqual(t, got.Confidence, 0.69, "collinear merges carry a confidence ceiling")
}

func TestCombineSpreadCandidatesNotCollinearPenalized(t *testing.T) {
	c := NewWeightedAverageCombiner()
	// Triangle of candidates: well conditioned spread.
	got := c.Combine([]WeightedPosition{
		wp(40.7560, -73.9860, 8.0, 0.8, 1.0),
		wp(40.7560, -73.9840, 8.0, 0.8, 1.0),
		wp(40.7580, -73.9850, 8.0, 0.8, 1.0),
	})
	require.NotNil(t, got)
	assert.Less(t, got.Accuracy, 6.0*3, "spread candidates must not hit the collinear path")
	assert.Greater(t, got.Confidence, 0.2)
}
