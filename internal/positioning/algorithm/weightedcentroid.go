package algorithm

import (
	"errors"
	"math"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/factor"
)

// weightedCentroidAlgorithm computes the centroid of the known AP locations
// weighted by received signal strength (stronger signal implies closer AP,
// hence a larger pull on the centroid). Robust in poor geometry, which is
// reflected in its geometric multiplier table.
type weightedCentroidAlgorithm struct{}

const (
	weightedCentroidConfidence = 0.65

	// Exponent applied to the linearised signal weight. Values above 1 bias
	// the centroid harder toward the strongest APs.
	centroidWeightExponent = 1.5
)

func (a *weightedCentroidAlgorithm) CalculatePosition(scans []positioning.ScanResult, aps []positioning.AccessPoint) (*positioning.Position, error) {
	obs := pairScans(scans, aps)
	if len(obs) == 0 {
		return nil, errors.New("weighted centroid: no scans match known access points")
	}

	var sumW, sumLat, sumLon, sumConf float64
	for _, o := range obs {
		// Map dBm into a positive linear weight; -30 dBm -> 70, -100 dBm -> 1.
		base := math.Max(1, 100+o.scan.SignalStrength)
		w := math.Pow(base, centroidWeightExponent)
		sumW += w
		sumLat += o.ap.Latitude * w
		sumLon += o.ap.Longitude * w
		sumConf += o.ap.Confidence * w
	}

	lat := sumLat / sumW
	lon := sumLon / sumW

	// Accuracy from the weighted RMS spread of the APs around the centroid.
	var spread float64
	for _, o := range obs {
		d := haversineDistance(lat, lon, nil, o.ap.Latitude, o.ap.Longitude, nil)
		spread += d * d
	}
	accuracy := math.Max(minRangeEstimateM, math.Sqrt(spread/float64(len(obs))))

	pos := &positioning.Position{
		Latitude:   lat,
		Longitude:  lon,
		Accuracy:   accuracy,
		Confidence: clamp01((sumConf / sumW) * weightedCentroidConfidence),
	}
	if alt, ok := meanAltitude(obs); ok {
		pos.Altitude = alt
	}
	return pos, nil
}

func (a *weightedCentroidAlgorithm) Confidence() float64 { return weightedCentroidConfidence }
func (a *weightedCentroidAlgorithm) Name() string        { return "weighted_centroid" }

func (a *weightedCentroidAlgorithm) BaseWeight(c factor.APCount) float64 {
	switch c {
	case factor.SingleAP:
		return 0.0 // centroid of one point is proximity
	case factor.TwoAPs:
		return 0.8
	case factor.ThreeAPs:
		return 0.8
	case factor.FourPlusAPs:
		return 0.7
	default:
		return 0.0
	}
}

func (a *weightedCentroidAlgorithm) SignalQualityMultiplier(q factor.SignalQuality) float64 {
	switch q {
	case factor.StrongSignal:
		return 1.0
	case factor.MediumSignal:
		return 1.0
	case factor.WeakSignal:
		return 0.8
	case factor.VeryWeakSignal:
		return 0.5
	default:
		return 1.0
	}
}

func (a *weightedCentroidAlgorithm) GeometricQualityMultiplier(g factor.GeometricQuality) float64 {
	// The centroid degrades gently as geometry worsens, so it picks up the
	// slack exactly where trilateration-class methods are disqualified.
	switch g {
	case factor.ExcellentGDOPQuality:
		return 1.0
	case factor.GoodGDOPQuality:
		return 1.1
	case factor.FairGDOPQuality:
		return 1.2
	case factor.PoorGDOPQuality:
		return 1.3
	case factor.CollinearQuality:
		return 1.25
	default:
		return 1.0
	}
}

func (a *weightedCentroidAlgorithm) SignalDistributionMultiplier(d factor.SignalDistribution) float64 {
	switch d {
	case factor.UniformSignals:
		return 1.0
	case factor.MixedSignals:
		return 1.1 // differentiated signals give the centroid real shape
	case factor.SignalOutliers:
		return 0.9
	default:
		return 1.0
	}
}
