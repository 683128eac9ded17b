package algorithm

import (
	"errors"
	"math"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/factor"
)

// maximumLikelihoodAlgorithm maximises P(position | measurements) by gradient
// ascent on the Gaussian RSSI log-likelihood. Each measurement contributes
// N(RSSI; mu(d), sigma²) where mu(d) follows the log-distance path loss model
// and sigma adapts to signal strength (weaker signals are noisier). The search
// is seeded with the signal-weighted centroid and uses an adaptive learning
// rate that halves whenever the likelihood fails to improve.
//
// The most accurate variant when four or more good measurements exist, and the
// most expensive; its base weight is zero below four APs.
type maximumLikelihoodAlgorithm struct{}

const (
	maxLikelihoodConfidence = 0.8

	mlMaxIterations        = 100
	mlInitialLearningRate  = 1.0
	mlLearningRateDecay    = 0.5
	mlConvergenceThreshold = 0.1 // meters; stop when the step shrinks below

	// Measurement noise model: sigma in dB by signal band.
	mlSigmaStrong = 4.0
	mlSigmaMedium = 6.0
	mlSigmaWeak   = 10.0
)

func (a *maximumLikelihoodAlgorithm) CalculatePosition(scans []positioning.ScanResult, aps []positioning.AccessPoint) (*positioning.Position, error) {
	obs := pairScans(scans, aps)
	if len(obs) < 4 {
		return nil, errors.New("maximum likelihood: needs at least four known access points")
	}

	refLat := obs[0].ap.Latitude
	refLon := obs[0].ap.Longitude

	models := make([]mlModel, len(obs))
	for i, o := range obs {
		x, y := localXY(o.ap.Latitude, o.ap.Longitude, refLat, refLon)
		models[i] = mlModel{x: x, y: y, rssi: o.scan.SignalStrength, sigma: signalSigma(o.scan.SignalStrength)}
	}

	logLikelihood := func(px, py float64) float64 {
		var ll float64
		for _, m := range models {
			d := math.Max(minRangeEstimateM, math.Hypot(px-m.x, py-m.y))
			mu := referenceRSSIAt1m - 10*pathLossExponent*math.Log10(d)
			z := (m.rssi - mu) / m.sigma
			ll += -0.5 * z * z
		}
		return ll
	}

	// Seed from the signal-weighted centroid.
	var px, py, sumW float64
	for i, m := range models {
		w := math.Max(1, 100+obs[i].scan.SignalStrength)
		px += m.x * w
		py += m.y * w
		sumW += w
	}
	px /= sumW
	py /= sumW

	best := logLikelihood(px, py)
	rate := mlInitialLearningRate
	for iter := 0; iter < mlMaxIterations && rate >= mlConvergenceThreshold; iter++ {
		gx, gy := likelihoodGradient(models, px, py)
		nx, ny := px+rate*gx, py+rate*gy
		if ll := logLikelihood(nx, ny); ll > best {
			px, py, best = nx, ny, ll
		} else {
			rate *= mlLearningRateDecay
		}
	}

	lat, lon := fromLocalXY(px, py, refLat, refLon)

	// Residual spread of the range model at the optimum.
	var residual float64
	for _, m := range models {
		d := math.Max(minRangeEstimateM, math.Hypot(px-m.x, py-m.y))
		mu := referenceRSSIAt1m - 10*pathLossExponent*math.Log10(d)
		residual += math.Abs(m.rssi-mu) / m.sigma
	}
	accuracy := math.Max(minRangeEstimateM, residual/float64(len(models))*10)

	var sumConf float64
	for _, o := range obs {
		sumConf += o.ap.Confidence
	}

	pos := &positioning.Position{
		Latitude:   lat,
		Longitude:  lon,
		Accuracy:   accuracy,
		Confidence: clamp01((sumConf / float64(len(obs))) * maxLikelihoodConfidence),
	}
	if alt, ok := meanAltitude(obs); ok {
		pos.Altitude = alt
	}
	return pos, nil
}

// mlModel is one access point's measurement model in the local planar frame.
type mlModel struct {
	x, y  float64
	rssi  float64
	sigma float64
}

// likelihoodGradient is the analytic gradient of the log-likelihood:
// d/dpos sum(-(rssi-mu)²/2sigma²) with mu depending on position via distance.
func likelihoodGradient(models []mlModel, px, py float64) (gx, gy float64) {
	const dbPerLn = 10 * pathLossExponent / math.Ln10
	for _, m := range models {
		dx, dy := px-m.x, py-m.y
		d := math.Max(minRangeEstimateM, math.Hypot(dx, dy))
		mu := referenceRSSIAt1m - 10*pathLossExponent*math.Log10(d)
		// dmu/dd = -dbPerLn/d; dll/dmu = (rssi-mu)/sigma²
		coeff := (m.rssi - mu) / (m.sigma * m.sigma) * (-dbPerLn / d)
		gx += coeff * dx / d
		gy += coeff * dy / d
	}
	return gx, gy
}

func signalSigma(rssi float64) float64 {
	switch {
	case rssi > factor.StrongSignalThreshold:
		return mlSigmaStrong
	case rssi > factor.MediumSignalThreshold:
		return mlSigmaMedium
	default:
		return mlSigmaWeak
	}
}

func (a *maximumLikelihoodAlgorithm) Confidence() float64 { return maxLikelihoodConfidence }
func (a *maximumLikelihoodAlgorithm) Name() string        { return "maximum_likelihood" }

func (a *maximumLikelihoodAlgorithm) BaseWeight(c factor.APCount) float64 {
	switch c {
	case factor.FourPlusAPs:
		return 1.0
	default:
		return 0.0 // not applicable below four APs
	}
}

func (a *maximumLikelihoodAlgorithm) SignalQualityMultiplier(q factor.SignalQuality) float64 {
	switch q {
	case factor.StrongSignal:
		return 1.2
	case factor.MediumSignal:
		return 0.9
	case factor.WeakSignal:
		return 0.5
	case factor.VeryWeakSignal:
		return 0.0
	default:
		return 0.9
	}
}

func (a *maximumLikelihoodAlgorithm) GeometricQualityMultiplier(g factor.GeometricQuality) float64 {
	switch g {
	case factor.ExcellentGDOPQuality:
		return 1.2
	case factor.GoodGDOPQuality:
		return 1.1
	case factor.FairGDOPQuality:
		return 0.9
	case factor.PoorGDOPQuality, factor.CollinearQuality:
		return 0.7
	default:
		return 1.1
	}
}

func (a *maximumLikelihoodAlgorithm) SignalDistributionMultiplier(d factor.SignalDistribution) float64 {
	// Probabilistic modelling thrives on differentiated measurements and
	// handles outliers better than the geometric methods.
	switch d {
	case factor.UniformSignals:
		return 0.9
	case factor.MixedSignals:
		return 1.1
	case factor.SignalOutliers:
		return 1.2
	default:
		return 1.1
	}
}
