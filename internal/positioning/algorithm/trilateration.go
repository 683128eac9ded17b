package algorithm

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/factor"
)

// trilaterationAlgorithm solves the classic range-intersection problem:
// per-AP distances estimated from RSSI, linearised by differencing the sphere
// equations against a reference AP, solved as least squares. Requires at least
// three APs and well-conditioned geometry; it is disqualified outright under
// collinear arrangements, where the linear system is singular.
type trilaterationAlgorithm struct{}

const trilaterationConfidence = 0.7

func (a *trilaterationAlgorithm) CalculatePosition(scans []positioning.ScanResult, aps []positioning.AccessPoint) (*positioning.Position, error) {
	obs := pairScans(scans, aps)
	if len(obs) < 3 {
		return nil, errors.New("trilateration: needs at least three known access points")
	}

	// Planar frame centred on the first AP.
	refLat := obs[0].ap.Latitude
	refLon := obs[0].ap.Longitude

	type ranged struct {
		x, y, d float64
	}
	pts := make([]ranged, len(obs))
	for i, o := range obs {
		x, y := localXY(o.ap.Latitude, o.ap.Longitude, refLat, refLon)
		pts[i] = ranged{x: x, y: y, d: rssiToDistance(o.scan.SignalStrength)}
	}

	// Difference each sphere equation against the last point:
	// 2(xk-xi)x + 2(yk-yi)y = di² - dk² - (xi²+yi²) + (xk²+yk²)
	k := pts[len(pts)-1]
	rows := len(pts) - 1
	aData := make([]float64, rows*2)
	bData := make([]float64, rows)
	for i := 0; i < rows; i++ {
		p := pts[i]
		aData[i*2] = 2 * (k.x - p.x)
		aData[i*2+1] = 2 * (k.y - p.y)
		bData[i] = p.d*p.d - k.d*k.d - (p.x*p.x + p.y*p.y) + (k.x*k.x + k.y*k.y)
	}

	A := mat.NewDense(rows, 2, aData)
	b := mat.NewVecDense(rows, bData)

	var sol mat.VecDense
	if err := sol.SolveVec(A, b); err != nil {
		return nil, fmt.Errorf("trilateration: singular geometry: %w", err)
	}

	x, y := sol.AtVec(0), sol.AtVec(1)
	lat, lon := fromLocalXY(x, y, refLat, refLon)

	// Residual of the range equations gives an error estimate.
	var residual float64
	for _, p := range pts {
		dx, dy := p.x-x, p.y-y
		r := math.Sqrt(dx*dx + dy*dy)
		residual += (r - p.d) * (r - p.d)
	}
	accuracy := math.Max(minRangeEstimateM, math.Sqrt(residual/float64(len(pts))))

	var sumConf float64
	for _, o := range obs {
		sumConf += o.ap.Confidence
	}

	pos := &positioning.Position{
		Latitude:   lat,
		Longitude:  lon,
		Accuracy:   accuracy,
		Confidence: clamp01((sumConf / float64(len(obs))) * trilaterationConfidence),
	}
	if alt, ok := meanAltitude(obs); ok {
		pos.Altitude = alt
	}
	return pos, nil
}

func (a *trilaterationAlgorithm) Confidence() float64 { return trilaterationConfidence }
func (a *trilaterationAlgorithm) Name() string        { return "trilateration" }

func (a *trilaterationAlgorithm) BaseWeight(c factor.APCount) float64 {
	switch c {
	case factor.SingleAP, factor.TwoAPs:
		return 0.0 // underdetermined below three ranges
	case factor.ThreeAPs:
		return 1.0
	case factor.FourPlusAPs:
		return 0.9
	default:
		return 0.0
	}
}

func (a *trilaterationAlgorithm) SignalQualityMultiplier(q factor.SignalQuality) float64 {
	// Range accuracy collapses with signal quality, and trilateration is
	// nothing but ranges.
	switch q {
	case factor.StrongSignal:
		return 1.1
	case factor.MediumSignal:
		return 0.8
	case factor.WeakSignal:
		return 0.3
	case factor.VeryWeakSignal:
		return 0.0
	default:
		return 0.8
	}
}

func (a *trilaterationAlgorithm) GeometricQualityMultiplier(g factor.GeometricQuality) float64 {
	switch g {
	case factor.ExcellentGDOPQuality:
		return 1.3
	case factor.GoodGDOPQuality:
		return 1.1
	case factor.FairGDOPQuality:
		return 0.7
	case factor.PoorGDOPQuality:
		return 0.3
	case factor.CollinearQuality:
		return 0.0 // singular; phase one removes it anyway
	default:
		return 0.7
	}
}

func (a *trilaterationAlgorithm) SignalDistributionMultiplier(d factor.SignalDistribution) float64 {
	switch d {
	case factor.UniformSignals:
		return 1.1
	case factor.MixedSignals:
		return 0.9
	case factor.SignalOutliers:
		return 0.6
	default:
		return 0.9
	}
}
