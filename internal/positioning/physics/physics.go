// Package physics is the signal-plausibility gate applied before any position
// computation. It rejects scan sets whose signal strengths violate basic radio
// physics, which almost always indicates measurement corruption or spoofing
// rather than an unusual environment.
package physics

import (
	"fmt"
	"math"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning"
)

const (
	// No realistic receiver observes a WiFi AP hotter than this; free-space
	// loss at even one meter is already tens of dB.
	maxPlausibleRSSI = -10.0

	// Thermal noise floor; readings below this are not real measurements.
	minPlausibleRSSI = -110.0

	// Two readings of the same AP within one scan should agree to within
	// fading margins.
	maxSameAPDeltaDB = 25.0
)

// Validator is the pass/fail gate over a set of valid scans.
type Validator struct{}

// NewValidator returns a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns nil when the scans are physically plausible, or an error
// describing the first impossibility found.
func (v *Validator) Validate(scans []positioning.ScanResult) error {
	seen := make(map[string]float64, len(scans))
	for _, s := range scans {
		if s.SignalStrength > maxPlausibleRSSI {
			return fmt.Errorf("physics: %s reports %.1f dBm, above plausible maximum %.1f dBm",
				s.MACAddress, s.SignalStrength, maxPlausibleRSSI)
		}
		if s.SignalStrength < minPlausibleRSSI {
			return fmt.Errorf("physics: %s reports %.1f dBm, below noise floor %.1f dBm",
				s.MACAddress, s.SignalStrength, minPlausibleRSSI)
		}
		if prev, ok := seen[s.MACAddress]; ok {
			if math.Abs(prev-s.SignalStrength) > maxSameAPDeltaDB {
				return fmt.Errorf("physics: %s observed at both %.1f and %.1f dBm in one scan",
					s.MACAddress, prev, s.SignalStrength)
			}
		} else {
			seen[s.MACAddress] = s.SignalStrength
		}
	}
	return nil
}
