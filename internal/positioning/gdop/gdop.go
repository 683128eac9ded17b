// Package gdop implements the geometric quality math used by the positioning
// engine: geometric dilution of precision from access point geometry,
// condition-number analysis of 2x2 covariance matrices, and the piecewise
// scaling factors derived from both. The formulation follows standard GPS/GNSS
// practice (GDOP = sqrt(trace((HᵀH)⁻¹))) adapted to geographic coordinates.
package gdop

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/monitoring"
)

const (
	// MaxAllowedGDOP caps the GDOP value. Geometry this poor is unusable and
	// larger values only destabilise downstream scaling.
	MaxAllowedGDOP = 30.0

	// MinPointsForGDOP is the minimum number of reference coordinates needed
	// for the geometry matrix to be meaningful.
	MinPointsForGDOP = 3

	earthRadiusMeters  = 6371000.0
	degreesLatToMeters = earthRadiusMeters * math.Pi / 180.0

	// Reference points closer than this to the estimate produce numerically
	// unstable unit vectors and fall back to a default direction.
	minDistanceMeters = 1.0

	// GDOP band boundaries. Values below ExcellentGDOP indicate excellent
	// geometry; FairGDOP and above is where trilateration-class methods
	// start degrading badly.
	ExcellentGDOP = 2.0
	GoodGDOP      = 4.0
	FairGDOP      = 6.0

	maxGDOPFactor = 4.0

	// SingularityThreshold: determinants below this fraction of the squared
	// trace are treated as singular. The test is relative so that the
	// classification is invariant to the coordinate scale.
	SingularityThreshold = 1e-10

	// CollinearityThreshold: coordinate variance ratios below this mean the
	// points are effectively on one line.
	CollinearityThreshold = 0.01

	goodConditionNumber     = 5.0
	moderateConditionNumber = 20.0
	moderateScalingDivisor  = 15.0
	poorScalingDivisor      = 80.0
	collinearBaseFactor     = 2.0
	collinearLogScale       = 2.0
)

// ErrBadCovarianceInput signals a caller bug: mismatched or empty sample
// arrays handed to PositionCovariance.
var ErrBadCovarianceInput = errors.New("gdop: covariance input arrays must be non-empty and equal length")

// CalculateGDOP computes the geometric dilution of precision for a set of
// reference coordinates relative to an estimated position. Coordinates are
// [lat, lon] or [lat, lon, alt] degrees/meters and must be at least as wide as
// position. includeBiasTerm augments the geometry matrix with a constant
// clock-bias column, as in GNSS formulations.
//
// The function never fails: insufficient points, dimension mismatches and
// singular geometry all degrade to MaxAllowedGDOP.
func CalculateGDOP(coordinates [][]float64, position []float64, includeBiasTerm bool) float64 {
	if len(position) == 0 || len(coordinates) < MinPointsForGDOP {
		return MaxAllowedGDOP
	}
	dims := len(position)
	for _, c := range coordinates {
		if len(c) < dims {
			monitoring.Logf("gdop: coordinate dims %d < position dims %d", len(c), dims)
			return MaxAllowedGDOP
		}
	}

	h := geometryMatrix(coordinates, position, includeBiasTerm)

	var hth mat.Dense
	hth.Mul(h.T(), h)

	var cov mat.Dense
	if err := cov.Inverse(&hth); err != nil {
		// Singular geometry (e.g. perfectly collinear points).
		return MaxAllowedGDOP
	}

	trace := mat.Trace(&cov)
	if math.IsNaN(trace) || math.IsInf(trace, 0) {
		return MaxAllowedGDOP
	}
	return math.Min(MaxAllowedGDOP, math.Sqrt(math.Max(0, trace)))
}

// geometryMatrix builds the matrix of unit vectors from the estimated position
// to each reference coordinate, optionally with a trailing bias column.
func geometryMatrix(coordinates [][]float64, position []float64, includeBiasTerm bool) *mat.Dense {
	dims := len(position)
	cols := dims
	if includeBiasTerm {
		cols++
	}
	h := mat.NewDense(len(coordinates), cols, nil)
	for i, c := range coordinates {
		u := unitVector(c, position)
		for j := 0; j < dims; j++ {
			h.Set(i, j, u[j])
		}
		if includeBiasTerm {
			h.Set(i, cols-1, 1.0)
		}
	}
	return h
}

// unitVector returns the unit direction from position to coordinate in a local
// metric frame: an equirectangular approximation with longitude scaled by
// cos(latitude). Altitude deltas are already in meters.
func unitVector(coordinate, position []float64) []float64 {
	dims := len(position)

	dx := (coordinate[0] - position[0]) * degreesLatToMeters
	lonToMeters := degreesLatToMeters * math.Cos(position[0]*math.Pi/180.0)
	dy := (coordinate[1] - position[1]) * lonToMeters
	dz := 0.0
	if dims > 2 {
		dz = coordinate[2] - position[2]
	}

	dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
	u := make([]float64, dims)
	if dist < minDistanceMeters {
		u[0] = 1.0
		return u
	}
	u[0] = dx / dist
	if dims > 1 {
		u[1] = dy / dist
	}
	if dims > 2 {
		u[2] = dz / dist
	}
	return u
}

// GDOPFactor converts a GDOP value to a quality scaling factor. The mapping is
// piecewise linear and continuous at the band boundaries:
//
//	gdop <= 2  -> 1.0
//	gdop  = 4  -> 1.5
//	gdop  = 6  -> 2.0
//	gdop  > 6  -> 2.0 + (gdop-6)/2, capped at 4.0
func GDOPFactor(g float64) float64 {
	switch {
	case g <= ExcellentGDOP:
		return 1.0
	case g <= GoodGDOP:
		return 1.0 + 0.5*((g-ExcellentGDOP)/(GoodGDOP-ExcellentGDOP))
	case g <= FairGDOP:
		return 1.5 + 0.5*((g-GoodGDOP)/(FairGDOP-GoodGDOP))
	default:
		return math.Min(maxGDOPFactor, 2.0+(g-FairGDOP)/2.0)
	}
}

// ConditionNumber returns the eigenvalue ratio of the 2x2 covariance matrix
// [[covLatLat, covLatLon], [covLatLon, covLonLon]] using the closed-form
// quadratic on trace and determinant. A near-singular determinant or a
// negative discriminant yields math.MaxFloat64, signalling extreme geometric
// distortion.
func ConditionNumber(covLatLat, covLonLon, covLatLon float64) float64 {
	trace := covLatLat + covLonLon
	det := covLatLat*covLonLon - covLatLon*covLatLon
	// det/trace² approximates 1/κ for a PSD 2x2 matrix, so this rejects both
	// exactly singular input and anything with κ beyond 1/SingularityThreshold,
	// independent of coordinate scale.
	if math.Abs(det) <= SingularityThreshold*trace*trace {
		return math.MaxFloat64
	}
	disc := trace*trace - 4*det
	if disc < 0 {
		return math.MaxFloat64
	}
	s := math.Sqrt(disc)
	lambda1 := (trace + s) / 2.0
	lambda2 := (trace - s) / 2.0
	return math.Abs(lambda1) / math.Max(math.Abs(lambda2), SingularityThreshold*math.Abs(trace))
}

// GeometricQualityFactor converts a condition number into an error scaling
// factor. Collinear configurations use logarithmic scaling (the condition
// number explodes there and a linear map would saturate immediately);
// non-collinear configurations use threshold bands.
func GeometricQualityFactor(conditionNumber float64, isCollinear bool) float64 {
	if isCollinear {
		return collinearBaseFactor + math.Min(1.0, math.Log10(conditionNumber)/collinearLogScale)
	}
	switch {
	case conditionNumber < goodConditionNumber:
		return 1.0
	case conditionNumber < moderateConditionNumber:
		return 1.0 + (conditionNumber-goodConditionNumber)/moderateScalingDivisor
	default:
		return 2.0 + math.Min(1.0, (conditionNumber-moderateConditionNumber)/poorScalingDivisor)
	}
}

// PositionCovariance computes the 2x2 statistical covariance of a set of
// position estimates around the supplied means, returned as
// [covLatLat, covLonLon, covLatLon]. Unlike the rest of this package it
// returns an error on malformed input: mismatched or empty arrays indicate a
// caller bug, not a degenerate geometry.
func PositionCovariance(latitudes, longitudes []float64, meanLat, meanLon float64) ([3]float64, error) {
	var out [3]float64
	if len(latitudes) == 0 || len(latitudes) != len(longitudes) {
		return out, ErrBadCovarianceInput
	}
	n := float64(len(latitudes))
	for i := range latitudes {
		dLat := latitudes[i] - meanLat
		dLon := longitudes[i] - meanLon
		out[0] += dLat * dLat
		out[1] += dLon * dLon
		out[2] += dLat * dLon
	}
	out[0] /= n
	out[1] /= n
	out[2] /= n
	return out, nil
}
