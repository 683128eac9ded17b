package algorithm

import (
	"errors"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/factor"
)

// proximityAlgorithm places the device at the location of the strongest
// observed access point. The simplest variant, and the only one viable when
// signals are extremely weak or only one AP is known.
type proximityAlgorithm struct{}

const proximityConfidence = 0.5

func (a *proximityAlgorithm) CalculatePosition(scans []positioning.ScanResult, aps []positioning.AccessPoint) (*positioning.Position, error) {
	obs := pairScans(scans, aps)
	if len(obs) == 0 {
		return nil, errors.New("proximity: no scans match known access points")
	}

	best := obs[0]
	for _, o := range obs[1:] {
		if o.scan.SignalStrength > best.scan.SignalStrength {
			best = o
		}
	}

	// Accuracy cannot be better than the AP's surveyed accuracy plus the
	// range implied by the observed signal.
	accuracy := best.ap.HorizontalAccuracy + rssiToDistance(best.scan.SignalStrength)

	pos := &positioning.Position{
		Latitude:   best.ap.Latitude,
		Longitude:  best.ap.Longitude,
		Accuracy:   accuracy,
		Confidence: clamp01(best.ap.Confidence * proximityConfidence),
	}
	if best.ap.HasAltitude() {
		pos.Altitude = *best.ap.Altitude
	}
	return pos, nil
}

func (a *proximityAlgorithm) Confidence() float64 { return proximityConfidence }
func (a *proximityAlgorithm) Name() string        { return "proximity" }

func (a *proximityAlgorithm) BaseWeight(c factor.APCount) float64 {
	switch c {
	case factor.SingleAP:
		return 1.0 // the single-AP algorithm
	case factor.TwoAPs:
		return 0.6
	case factor.ThreeAPs:
		return 0.4
	case factor.FourPlusAPs:
		return 0.3 // better options exist with more APs
	default:
		return 0.0
	}
}

func (a *proximityAlgorithm) SignalQualityMultiplier(q factor.SignalQuality) float64 {
	switch q {
	case factor.StrongSignal:
		return 1.0
	case factor.MediumSignal:
		return 0.9
	case factor.WeakSignal:
		return 0.8
	case factor.VeryWeakSignal:
		return 0.7 // degrades gracefully; still the weak-signal fallback
	default:
		return 0.9
	}
}

func (a *proximityAlgorithm) GeometricQualityMultiplier(g factor.GeometricQuality) float64 {
	// Proximity ignores geometry almost entirely.
	switch g {
	case factor.ExcellentGDOPQuality, factor.GoodGDOPQuality, factor.FairGDOPQuality:
		return 1.0
	case factor.PoorGDOPQuality, factor.CollinearQuality:
		return 0.9
	default:
		return 1.0
	}
}

func (a *proximityAlgorithm) SignalDistributionMultiplier(d factor.SignalDistribution) float64 {
	switch d {
	case factor.UniformSignals:
		return 1.0
	case factor.MixedSignals:
		return 0.9
	case factor.SignalOutliers:
		return 0.8
	default:
		return 0.9
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
