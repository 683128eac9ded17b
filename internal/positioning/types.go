// Package positioning holds the shared value types of the WiFi positioning
// engine: scan observations, known access point records, and position
// estimates. All types are plain immutable values; the engine never mutates a
// record it was handed.
package positioning

import "fmt"

// Position is a single position estimate. Accuracy is the estimated horizontal
// error in meters, Confidence is in [0, 1]. Altitude is meters above the
// ellipsoid and is zero when positioning ran in 2D-only mode.
type Position struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Altitude   float64 `json:"altitude"`
	Accuracy   float64 `json:"accuracy"`
	Confidence float64 `json:"confidence"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%.6f, %.6f, %.1fm) ±%.1fm conf=%.2f",
		p.Latitude, p.Longitude, p.Altitude, p.Accuracy, p.Confidence)
}

// ScanResult is one observed emitter in a scan request: identifier, signal
// strength in dBm, channel frequency in MHz and the optional broadcast SSID.
type ScanResult struct {
	MACAddress     string  `json:"macAddress"`
	SignalStrength float64 `json:"signalStrength"`
	Frequency      int     `json:"frequency"`
	SSID           string  `json:"ssid,omitempty"`
}

// Access point operational statuses as stored in the reference database.
const (
	StatusActive      = "active"
	StatusWarning     = "warning"
	StatusError       = "error"
	StatusExpired     = "expired"
	StatusWifiHotspot = "wifi-hotspot"
	StatusVerified    = "verified"
	StatusTest        = "test"
	StatusImported    = "imported"
)

// ValidStatuses is the set of statuses considered reliable enough to
// contribute to a position calculation.
var ValidStatuses = map[string]bool{
	StatusActive:   true,
	StatusWarning:  true,
	StatusVerified: true,
	StatusTest:     true,
	StatusImported: true,
}

// AccessPoint is a known-emitter record from the reference store. Altitude and
// VerticalAccuracy are nil for records surveyed in 2D only.
type AccessPoint struct {
	MACAddress         string   `json:"macAddress"`
	Version            string   `json:"version,omitempty"`
	Latitude           float64  `json:"latitude"`
	Longitude          float64  `json:"longitude"`
	Altitude           *float64 `json:"altitude,omitempty"`
	HorizontalAccuracy float64  `json:"horizontalAccuracy"`
	VerticalAccuracy   *float64 `json:"verticalAccuracy,omitempty"`
	Confidence         float64  `json:"confidence"`
	SSID               string   `json:"ssid,omitempty"`
	Frequency          int      `json:"frequency,omitempty"`
	Vendor             string   `json:"vendor,omitempty"`
	Status             string   `json:"status"`
	Geohash            string   `json:"geohash,omitempty"`
}

// UsableForPositioning reports whether the record's status allows it to be
// used as a positioning reference.
func (ap AccessPoint) UsableForPositioning() bool {
	return ValidStatuses[ap.Status]
}

// IsHotspot reports whether this record is flagged as a mobile hotspot.
func (ap AccessPoint) IsHotspot() bool {
	return ap.Status == StatusWifiHotspot
}

// HasAltitude reports whether the record carries 3D survey data.
func (ap AccessPoint) HasAltitude() bool {
	return ap.Altitude != nil
}
