// Package factor derives the four discrete classification factors that drive
// algorithm selection: AP count, signal quality, geometric quality, and signal
// distribution. The factors are computed once per request from the valid scans
// and known-AP lookup, and the resulting SelectionContext is treated as
// immutable by every downstream phase.
package factor

import "fmt"

// APCount buckets the number of usable access points.
type APCount int

const (
	SingleAP APCount = iota + 1
	TwoAPs
	ThreeAPs
	FourPlusAPs
)

// APCountFromCount buckets a raw AP count.
func APCountFromCount(n int) APCount {
	switch {
	case n >= 4:
		return FourPlusAPs
	case n == 3:
		return ThreeAPs
	case n == 2:
		return TwoAPs
	default:
		return SingleAP
	}
}

func (c APCount) String() string {
	switch c {
	case SingleAP:
		return "SINGLE_AP"
	case TwoAPs:
		return "TWO_APS"
	case ThreeAPs:
		return "THREE_APS"
	case FourPlusAPs:
		return "FOUR_PLUS_APS"
	default:
		return fmt.Sprintf("APCount(%d)", int(c))
	}
}

// SignalQuality buckets the overall received signal strength.
type SignalQuality int

const (
	StrongSignal SignalQuality = iota + 1
	MediumSignal
	WeakSignal
	VeryWeakSignal
)

// Signal quality boundaries in dBm.
const (
	StrongSignalThreshold   = -70.0
	MediumSignalThreshold   = -85.0
	VeryWeakSignalThreshold = -95.0
)

// SignalQualityFromStrength buckets a mean signal strength in dBm.
func SignalQualityFromStrength(dBm float64) SignalQuality {
	switch {
	case dBm > StrongSignalThreshold:
		return StrongSignal
	case dBm > MediumSignalThreshold:
		return MediumSignal
	case dBm > VeryWeakSignalThreshold:
		return WeakSignal
	default:
		return VeryWeakSignal
	}
}

func (q SignalQuality) String() string {
	switch q {
	case StrongSignal:
		return "STRONG_SIGNAL"
	case MediumSignal:
		return "MEDIUM_SIGNAL"
	case WeakSignal:
		return "WEAK_SIGNAL"
	case VeryWeakSignal:
		return "VERY_WEAK_SIGNAL"
	default:
		return fmt.Sprintf("SignalQuality(%d)", int(q))
	}
}

// GeometricQuality buckets the spatial arrangement of the reference APs.
// Collinear is distinct from PoorGDOP: it marks configurations where the APs
// lie (near-)exactly on one line, which invalidates rather than merely
// degrades certain algorithms.
type GeometricQuality int

const (
	ExcellentGDOPQuality GeometricQuality = iota + 1
	GoodGDOPQuality
	FairGDOPQuality
	PoorGDOPQuality
	CollinearQuality
)

// GeometricQualityFromGDOP buckets a GDOP value (collinearity is detected
// separately from coordinate variance, see BuildContext).
func GeometricQualityFromGDOP(g float64) GeometricQuality {
	switch {
	case g < 2.0:
		return ExcellentGDOPQuality
	case g < 4.0:
		return GoodGDOPQuality
	case g < 6.0:
		return FairGDOPQuality
	default:
		return PoorGDOPQuality
	}
}

func (g GeometricQuality) String() string {
	switch g {
	case ExcellentGDOPQuality:
		return "EXCELLENT_GDOP"
	case GoodGDOPQuality:
		return "GOOD_GDOP"
	case FairGDOPQuality:
		return "FAIR_GDOP"
	case PoorGDOPQuality:
		return "POOR_GDOP"
	case CollinearQuality:
		return "COLLINEAR"
	default:
		return fmt.Sprintf("GeometricQuality(%d)", int(g))
	}
}

// SignalDistribution buckets how spread out the observed signal strengths are.
type SignalDistribution int

const (
	UniformSignals SignalDistribution = iota + 1
	MixedSignals
	SignalOutliers
)

// Signal distribution boundaries on the standard deviation in dB.
const (
	uniformStdDevMax = 5.0
	mixedStdDevMax   = 12.0
)

// SignalDistributionFromStdDev buckets the standard deviation of the signal
// strengths.
func SignalDistributionFromStdDev(sigma float64) SignalDistribution {
	switch {
	case sigma < uniformStdDevMax:
		return UniformSignals
	case sigma < mixedStdDevMax:
		return MixedSignals
	default:
		return SignalOutliers
	}
}

func (d SignalDistribution) String() string {
	switch d {
	case UniformSignals:
		return "UNIFORM_SIGNALS"
	case MixedSignals:
		return "MIXED_SIGNALS"
	case SignalOutliers:
		return "SIGNAL_OUTLIERS"
	default:
		return fmt.Sprintf("SignalDistribution(%d)", int(d))
	}
}
