package algorithm

import (
	"errors"
	"math"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/factor"
)

// rssiRatioAlgorithm interpolates between AP pairs using the ratio of their
// estimated ranges. Each pair contributes a point on the segment between the
// two APs, positioned proportionally to the range ratio; the pair estimates
// are then averaged, weighted by combined signal strength. Needs two APs and
// is largely insensitive to geometry, which makes it a good poor-GDOP option.
type rssiRatioAlgorithm struct{}

const rssiRatioConfidence = 0.6

func (a *rssiRatioAlgorithm) CalculatePosition(scans []positioning.ScanResult, aps []positioning.AccessPoint) (*positioning.Position, error) {
	obs := pairScans(scans, aps)
	if len(obs) < 2 {
		return nil, errors.New("rssi ratio: needs at least two known access points")
	}

	var sumW, sumLat, sumLon, sumConf float64
	for i := 0; i < len(obs); i++ {
		for j := i + 1; j < len(obs); j++ {
			ri := rssiToDistance(obs[i].scan.SignalStrength)
			rj := rssiToDistance(obs[j].scan.SignalStrength)
			// Fraction of the way from AP i toward AP j.
			t := ri / (ri + rj)

			lat := obs[i].ap.Latitude + t*(obs[j].ap.Latitude-obs[i].ap.Latitude)
			lon := obs[i].ap.Longitude + t*(obs[j].ap.Longitude-obs[i].ap.Longitude)

			// Stronger pairs carry more information. Signal strengths are
			// negative dBm, so offset into a positive weight.
			w := math.Max(1, 200+obs[i].scan.SignalStrength+obs[j].scan.SignalStrength)
			sumW += w
			sumLat += lat * w
			sumLon += lon * w
			sumConf += (obs[i].ap.Confidence + obs[j].ap.Confidence) / 2 * w
		}
	}

	// Spread of the per-AP range estimates bounds the achievable accuracy.
	var maxR float64
	for _, o := range obs {
		if r := rssiToDistance(o.scan.SignalStrength); r > maxR {
			maxR = r
		}
	}

	pos := &positioning.Position{
		Latitude:   sumLat / sumW,
		Longitude:  sumLon / sumW,
		Accuracy:   math.Max(minRangeEstimateM, maxR/2),
		Confidence: clamp01((sumConf / sumW) * rssiRatioConfidence),
	}
	if alt, ok := meanAltitude(obs); ok {
		pos.Altitude = alt
	}
	return pos, nil
}

func (a *rssiRatioAlgorithm) Confidence() float64 { return rssiRatioConfidence }
func (a *rssiRatioAlgorithm) Name() string        { return "rssiratio" }

func (a *rssiRatioAlgorithm) BaseWeight(c factor.APCount) float64 {
	switch c {
	case factor.SingleAP:
		return 0.0 // pairwise method, undefined for one AP
	case factor.TwoAPs:
		return 0.8
	case factor.ThreeAPs:
		return 0.7
	case factor.FourPlusAPs:
		return 0.6
	default:
		return 0.0
	}
}

func (a *rssiRatioAlgorithm) SignalQualityMultiplier(q factor.SignalQuality) float64 {
	switch q {
	case factor.StrongSignal:
		return 1.0
	case factor.MediumSignal:
		return 0.9
	case factor.WeakSignal:
		return 0.6
	case factor.VeryWeakSignal:
		return 0.3
	default:
		return 0.9
	}
}

func (a *rssiRatioAlgorithm) GeometricQualityMultiplier(g factor.GeometricQuality) float64 {
	// Ratio interpolation does not rely on well-conditioned geometry; it is
	// boosted when geometry-dependent methods fall away, though collinear
	// layouts still degrade the pairwise interpolation axis.
	switch g {
	case factor.ExcellentGDOPQuality:
		return 1.1
	case factor.GoodGDOPQuality:
		return 1.0
	case factor.FairGDOPQuality:
		return 0.8
	case factor.PoorGDOPQuality:
		return 1.2
	case factor.CollinearQuality:
		return 0.8
	default:
		return 1.0
	}
}

func (a *rssiRatioAlgorithm) SignalDistributionMultiplier(d factor.SignalDistribution) float64 {
	switch d {
	case factor.UniformSignals:
		return 1.0
	case factor.MixedSignals:
		return 1.0
	case factor.SignalOutliers:
		return 0.8
	default:
		return 1.0
	}
}
