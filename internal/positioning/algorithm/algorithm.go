// Package algorithm contains the six positioning algorithm variants and the
// position combiner. Every variant is a stateless singleton: it reads only its
// call arguments, so one instance is shared safely across concurrent requests.
// Besides producing a position estimate, each variant owns four lookup tables
// (base weight by AP count plus three quality multipliers) that the selection
// framework multiplies into its final weight.
package algorithm

import (
	"fmt"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/factor"
)

// PositioningAlgorithm is the capability set shared by all variants.
type PositioningAlgorithm interface {
	// CalculatePosition estimates a position from the valid scans and their
	// matching known access points. Returns an error when the variant cannot
	// produce an estimate from the given input.
	CalculatePosition(scans []positioning.ScanResult, aps []positioning.AccessPoint) (*positioning.Position, error)

	// Confidence is the variant's self-reported base confidence in [0, 1].
	Confidence() float64

	// Name is the stable lowercase identifier used in outward-facing payloads.
	Name() string

	// Weighting tables owned by the variant.
	BaseWeight(c factor.APCount) float64
	SignalQualityMultiplier(q factor.SignalQuality) float64
	GeometricQualityMultiplier(g factor.GeometricQuality) float64
	SignalDistributionMultiplier(d factor.SignalDistribution) float64
}

// Type identifies one of the six algorithm variants. The set is closed;
// Types() returns it in declaration order, which is also the deterministic
// tie-break order used during finalist selection.
type Type int

const (
	Proximity Type = iota
	LogDistance
	RSSIRatio
	WeightedCentroid
	Trilateration
	MaximumLikelihood
)

var allTypes = [...]Type{
	Proximity,
	LogDistance,
	RSSIRatio,
	WeightedCentroid,
	Trilateration,
	MaximumLikelihood,
}

// One stateless implementation instance per variant, built once at startup.
var implementations = map[Type]PositioningAlgorithm{
	Proximity:         &proximityAlgorithm{},
	LogDistance:       &logDistanceAlgorithm{},
	RSSIRatio:         &rssiRatioAlgorithm{},
	WeightedCentroid:  &weightedCentroidAlgorithm{},
	Trilateration:     &trilaterationAlgorithm{},
	MaximumLikelihood: &maximumLikelihoodAlgorithm{},
}

// Types returns all variants in declaration order.
func Types() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes[:])
	return out
}

// ByType returns the shared implementation for a variant.
func ByType(t Type) PositioningAlgorithm {
	return implementations[t]
}

// FromName resolves a variant by its implementation name (case-exact, the
// names are already lowercase).
func FromName(name string) (Type, error) {
	for _, t := range allTypes {
		if implementations[t].Name() == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown algorithm type: %q", name)
}

func (t Type) String() string {
	if impl, ok := implementations[t]; ok {
		return impl.Name()
	}
	return fmt.Sprintf("Type(%d)", int(t))
}
