package algorithm

import (
	"errors"
	"math"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/factor"
)

// logDistanceAlgorithm estimates per-AP ranges with the log-distance path loss
// model and blends the AP locations weighted by the inverse of those ranges.
// With a single AP it degrades to a range-ring estimate centred on the AP.
type logDistanceAlgorithm struct{}

const logDistanceConfidence = 0.55

func (a *logDistanceAlgorithm) CalculatePosition(scans []positioning.ScanResult, aps []positioning.AccessPoint) (*positioning.Position, error) {
	obs := pairScans(scans, aps)
	if len(obs) == 0 {
		return nil, errors.New("log distance: no scans match known access points")
	}

	var sumW, sumLat, sumLon, sumConf float64
	var maxRange float64
	for _, o := range obs {
		r := rssiToDistance(o.scan.SignalStrength)
		w := 1.0 / r
		sumW += w
		sumLat += o.ap.Latitude * w
		sumLon += o.ap.Longitude * w
		sumConf += o.ap.Confidence * w
		if r > maxRange {
			maxRange = r
		}
	}
	if sumW == 0 {
		return nil, errors.New("log distance: degenerate range weights")
	}

	// Path-loss ranging is noisy; accuracy tracks the largest estimated range
	// rather than the weighted mean.
	accuracy := math.Max(minRangeEstimateM, maxRange)

	pos := &positioning.Position{
		Latitude:   sumLat / sumW,
		Longitude:  sumLon / sumW,
		Accuracy:   accuracy,
		Confidence: clamp01((sumConf / sumW) * logDistanceConfidence),
	}
	if alt, ok := meanAltitude(obs); ok {
		pos.Altitude = alt
	}
	return pos, nil
}

func (a *logDistanceAlgorithm) Confidence() float64 { return logDistanceConfidence }
func (a *logDistanceAlgorithm) Name() string        { return "log_distance" }

func (a *logDistanceAlgorithm) BaseWeight(c factor.APCount) float64 {
	switch c {
	case factor.SingleAP:
		return 0.4
	case factor.TwoAPs:
		return 0.5
	case factor.ThreeAPs:
		return 0.5
	case factor.FourPlusAPs:
		return 0.6
	default:
		return 0.0
	}
}

func (a *logDistanceAlgorithm) SignalQualityMultiplier(q factor.SignalQuality) float64 {
	// The path loss model is only trustworthy when signals are strong.
	switch q {
	case factor.StrongSignal:
		return 1.1
	case factor.MediumSignal:
		return 0.8
	case factor.WeakSignal:
		return 0.5
	case factor.VeryWeakSignal:
		return 0.2
	default:
		return 0.8
	}
}

func (a *logDistanceAlgorithm) GeometricQualityMultiplier(g factor.GeometricQuality) float64 {
	switch g {
	case factor.ExcellentGDOPQuality, factor.GoodGDOPQuality:
		return 1.0
	case factor.FairGDOPQuality:
		return 0.9
	case factor.PoorGDOPQuality, factor.CollinearQuality:
		return 0.7
	default:
		return 0.9
	}
}

func (a *logDistanceAlgorithm) SignalDistributionMultiplier(d factor.SignalDistribution) float64 {
	switch d {
	case factor.UniformSignals:
		return 1.0
	case factor.MixedSignals:
		return 0.9
	case factor.SignalOutliers:
		return 0.7 // outliers wreck range estimates
	default:
		return 0.9
	}
}
