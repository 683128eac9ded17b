package algorithm

import (
	"math"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning"
)

// Shared propagation and geometry helpers. The log-distance path loss model
// uses an indoor exponent of 3.0 against a -40 dBm reference at one meter;
// distance estimates are clamped to [1 m, 1000 m] since RSSI carries no usable
// ranging information beyond that.
const (
	earthRadiusMeters = 6371000.0

	referenceRSSIAt1m  = -40.0
	pathLossExponent   = 3.0
	minRangeEstimateM  = 1.0
	maxRangeEstimateM  = 1000.0
	degreesLatPerMeter = 1.0 / 111320.0
)

// rssiToDistance inverts the log-distance path loss model:
// RSSI = ref - 10*n*log10(d).
func rssiToDistance(rssi float64) float64 {
	d := math.Pow(10, (referenceRSSIAt1m-rssi)/(10*pathLossExponent))
	return math.Min(maxRangeEstimateM, math.Max(minRangeEstimateM, d))
}

// haversineDistance returns the great-circle distance in meters between two
// lat/lon points, with an optional vertical component when both altitudes are
// present.
func haversineDistance(lat1, lon1 float64, alt1 *float64, lat2, lon2 float64, alt2 *float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	horizontal := earthRadiusMeters * c

	if alt1 != nil && alt2 != nil {
		vertical := *alt2 - *alt1
		return math.Sqrt(horizontal*horizontal + vertical*vertical)
	}
	return horizontal
}

// localXY projects a lat/lon point into a planar meter frame centred on
// (refLat, refLon) using the equirectangular approximation.
func localXY(lat, lon, refLat, refLon float64) (x, y float64) {
	x = (lat - refLat) / degreesLatPerMeter
	y = (lon - refLon) / degreesLatPerMeter * math.Cos(refLat*math.Pi/180)
	return x, y
}

// fromLocalXY is the inverse of localXY.
func fromLocalXY(x, y, refLat, refLon float64) (lat, lon float64) {
	lat = refLat + x*degreesLatPerMeter
	cosLat := math.Cos(refLat * math.Pi / 180)
	if cosLat == 0 {
		cosLat = 1e-9
	}
	lon = refLon + y*degreesLatPerMeter/cosLat
	return lat, lon
}

// pairScans joins scans with their known AP records, skipping scans whose MAC
// has no record. Order follows the scans slice.
type observation struct {
	scan positioning.ScanResult
	ap   positioning.AccessPoint
}

func pairScans(scans []positioning.ScanResult, aps []positioning.AccessPoint) []observation {
	byMAC := make(map[string]positioning.AccessPoint, len(aps))
	for _, ap := range aps {
		// First record wins on duplicate MACs.
		if _, ok := byMAC[ap.MACAddress]; !ok {
			byMAC[ap.MACAddress] = ap
		}
	}
	obs := make([]observation, 0, len(scans))
	for _, s := range scans {
		if ap, ok := byMAC[s.MACAddress]; ok {
			obs = append(obs, observation{scan: s, ap: ap})
		}
	}
	return obs
}

// meanAltitude averages the altitudes of the records that carry one. The bool
// result is false when no record has altitude (2D-only mode).
func meanAltitude(obs []observation) (float64, bool) {
	var sum float64
	var n int
	for _, o := range obs {
		if o.ap.HasAltitude() {
			sum += *o.ap.Altitude
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
