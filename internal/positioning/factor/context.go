package factor

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/gdop"
)

// SelectionContext is the immutable classification of one positioning request.
// It is computed exactly once from the valid scans and the known-AP lookup and
// shared read-only by all later phases.
type SelectionContext struct {
	APCount            APCount
	SignalQuality      SignalQuality
	GeometricQuality   GeometricQuality
	SignalDistribution SignalDistribution
}

func (c SelectionContext) String() string {
	return fmt.Sprintf("apCount=%s signalQuality=%s geometricQuality=%s signalDistribution=%s",
		c.APCount, c.SignalQuality, c.GeometricQuality, c.SignalDistribution)
}

// BuildContext derives the SelectionContext from the valid scans and the
// known access points they resolve to. Deterministic and side-effect-free.
func BuildContext(scans []positioning.ScanResult, apByMAC map[string]positioning.AccessPoint) SelectionContext {
	strengths := make([]float64, 0, len(scans))
	coords := make([][]float64, 0, len(scans))
	lats := make([]float64, 0, len(scans))
	lons := make([]float64, 0, len(scans))

	for _, s := range scans {
		strengths = append(strengths, s.SignalStrength)
		if ap, ok := apByMAC[s.MACAddress]; ok {
			coords = append(coords, []float64{ap.Latitude, ap.Longitude})
			lats = append(lats, ap.Latitude)
			lons = append(lons, ap.Longitude)
		}
	}

	ctx := SelectionContext{
		APCount:            APCountFromCount(len(coords)),
		SignalQuality:      signalQualityFromScans(strengths),
		SignalDistribution: signalDistributionFromScans(strengths),
	}
	ctx.GeometricQuality = geometricQualityFromCoords(coords, lats, lons)
	return ctx
}

func signalQualityFromScans(strengths []float64) SignalQuality {
	if len(strengths) == 0 {
		return VeryWeakSignal
	}
	return SignalQualityFromStrength(stat.Mean(strengths, nil))
}

func signalDistributionFromScans(strengths []float64) SignalDistribution {
	if len(strengths) < 2 {
		return UniformSignals
	}
	return SignalDistributionFromStdDev(stat.StdDev(strengths, nil))
}

// geometricQualityFromCoords classifies the AP arrangement. Collinearity is
// checked first from the coordinate covariance eigenvalues; otherwise the GDOP
// at the AP centroid is bucketed. Fewer than three APs cannot form a usable
// geometry and always classify as PoorGDOP (CalculateGDOP degrades to its
// sentinel there).
func geometricQualityFromCoords(coords [][]float64, lats, lons []float64) GeometricQuality {
	if len(coords) >= gdop.MinPointsForGDOP && IsCollinear(lats, lons) {
		return CollinearQuality
	}
	if len(coords) < gdop.MinPointsForGDOP {
		return PoorGDOPQuality
	}
	centroid := []float64{stat.Mean(lats, nil), stat.Mean(lons, nil)}
	g := gdop.CalculateGDOP(coords, centroid, false)
	return GeometricQualityFromGDOP(g)
}

// IsCollinear reports whether the points lie (near-)exactly on one line. It
// compares the minor and major eigenvalues of the coordinate covariance
// matrix: a variance ratio below gdop.CollinearityThreshold means essentially
// all spread is along a single axis. Needs at least three points.
func IsCollinear(lats, lons []float64) bool {
	if len(lats) < 3 || len(lats) != len(lons) {
		return false
	}
	meanLat := stat.Mean(lats, nil)
	meanLon := stat.Mean(lons, nil)
	cov, err := gdop.PositionCovariance(lats, lons, meanLat, meanLon)
	if err != nil {
		return false
	}
	kappa := gdop.ConditionNumber(cov[0], cov[1], cov[2])
	// A singular covariance (all points identical or exactly on a line) comes
	// back as MaxFloat64.
	return kappa > 1.0/gdop.CollinearityThreshold
}
