package selection

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/algorithm"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/factor"
)

func ctxOf(c factor.APCount, q factor.SignalQuality, g factor.GeometricQuality, d factor.SignalDistribution) factor.SelectionContext {
	return factor.SelectionContext{
		APCount:            c,
		SignalQuality:      q,
		GeometricQuality:   g,
		SignalDistribution: d,
	}
}

// Single strong AP: proximity carries the result alone with weight 0.90, the
// path loss variant falls below the threshold.
func TestSelectSingleStrongAP(t *testing.T) {
	res := NewSelector().Select(ctxOf(factor.SingleAP, factor.StrongSignal, factor.PoorGDOPQuality, factor.UniformSignals))

	require.Len(t, res.Weights, 1)
	assert.True(t, res.Selected(algorithm.Proximity))
	assert.InDelta(t, 0.90, res.Weights[algorithm.Proximity], 1e-9)

	assert.False(t, res.Selected(algorithm.LogDistance))
	assert.Contains(t, res.Reasons[algorithm.LogDistance][0], "Valid for single AP with path loss model")
	assert.Contains(t, res.Reasons[algorithm.LogDistance][2], "Below minimum weight threshold 0.40")
}

// Two strong APs: weighted centroid leads above the high-confidence bar, so
// only the top two survive.
func TestSelectTwoStrongAPs(t *testing.T) {
	res := NewSelector().Select(ctxOf(factor.TwoAPs, factor.StrongSignal, factor.PoorGDOPQuality, factor.UniformSignals))

	require.Len(t, res.Weights, 2)
	assert.InDelta(t, 1.04, res.Weights[algorithm.WeightedCentroid], 1e-9)
	assert.InDelta(t, 0.96, res.Weights[algorithm.RSSIRatio], 1e-9)

	assert.False(t, res.Selected(algorithm.Proximity))
	assert.Contains(t, res.Reasons[algorithm.Proximity], "high confidence selection: not in top 2")

	assert.Contains(t, res.Reasons[algorithm.Trilateration], "DISQUALIFIED (requires at least 3 APs)")
	assert.Contains(t, res.Reasons[algorithm.MaximumLikelihood], "DISQUALIFIED (requires at least 4 APs)")
}

// Four APs with excellent geometry and strong signals: the geometry-hungry
// variants lead.
func TestSelectFourAPsExcellentGeometry(t *testing.T) {
	res := NewSelector().Select(ctxOf(factor.FourPlusAPs, factor.StrongSignal, factor.ExcellentGDOPQuality, factor.UniformSignals))

	require.Len(t, res.Weights, 2, "a >0.8 leader keeps at most one backup")
	assert.True(t, res.Selected(algorithm.Trilateration))
	assert.True(t, res.Selected(algorithm.MaximumLikelihood))
	assert.InDelta(t, 0.9*1.1*1.3*1.1, res.Weights[algorithm.Trilateration], 1e-9)
	assert.InDelta(t, 1.0*1.2*1.2*0.9, res.Weights[algorithm.MaximumLikelihood], 1e-9)
}

func TestVeryWeakSignalCollapsesToProximity(t *testing.T) {
	for _, apc := range []factor.APCount{factor.SingleAP, factor.TwoAPs, factor.ThreeAPs, factor.FourPlusAPs} {
		res := NewSelector().Select(ctxOf(apc, factor.VeryWeakSignal, factor.ExcellentGDOPQuality, factor.UniformSignals))

		require.Len(t, res.Weights, 1, "apCount=%s", apc)
		assert.True(t, res.Selected(algorithm.Proximity))
		assert.Contains(t, res.Reasons[algorithm.Proximity], "Only viable algorithm for extremely weak signals")
		for _, typ := range algorithm.Types() {
			if typ != algorithm.Proximity {
				assert.Contains(t, res.Reasons[typ], "DISQUALIFIED (signal too weak)")
			}
		}
	}
}

func TestCollinearGeometryRemovesTrilateration(t *testing.T) {
	res := NewSelector().Select(ctxOf(factor.FourPlusAPs, factor.StrongSignal, factor.CollinearQuality, factor.UniformSignals))

	assert.False(t, res.Selected(algorithm.Trilateration))
	assert.Contains(t, res.Reasons[algorithm.Trilateration], "DISQUALIFIED (collinear APs)")
}

// Three collinear APs with medium signals: the centroid leads, ratio
// interpolation survives at 0.7 x 0.9 x 0.8 = 0.504, and the path loss
// variant lands at 0.5 x 0.8 x 0.7 = 0.28, under the threshold.
func TestSelectThreeCollinearAPs(t *testing.T) {
	res := NewSelector().Select(ctxOf(factor.ThreeAPs, factor.MediumSignal, factor.CollinearQuality, factor.UniformSignals))

	require.Len(t, res.Weights, 2)
	assert.InDelta(t, 1.00, res.Weights[algorithm.WeightedCentroid], 1e-9)
	assert.InDelta(t, 0.504, res.Weights[algorithm.RSSIRatio], 1e-9)

	assert.False(t, res.Selected(algorithm.LogDistance))
	assert.Contains(t, res.Reasons[algorithm.LogDistance],
		"Weight=0.28: base(0.50) x signal(0.80) x geometric(0.70) x distribution(1.00)")
	assert.Contains(t, res.Reasons[algorithm.LogDistance],
		"Below minimum weight threshold 0.40: Weight=0.28: base(0.50) x signal(0.80) x geometric(0.70) x distribution(1.00)")
	assert.False(t, res.Selected(algorithm.Trilateration))
}

func TestPoorGeometryRemovesTrilateration(t *testing.T) {
	res := NewSelector().Select(ctxOf(factor.ThreeAPs, factor.MediumSignal, factor.PoorGDOPQuality, factor.MixedSignals))

	assert.False(t, res.Selected(algorithm.Trilateration))
	assert.Contains(t, res.Reasons[algorithm.Trilateration], "DISQUALIFIED (poor geometry)")
}

// Every context must select at least one variant and never more than three.
// A >0.8 leader additionally caps the set at two.
func TestSelectionSizeBoundsOverAllContexts(t *testing.T) {
	sel := NewSelector()
	for _, apc := range []factor.APCount{factor.SingleAP, factor.TwoAPs, factor.ThreeAPs, factor.FourPlusAPs} {
		for _, q := range []factor.SignalQuality{factor.StrongSignal, factor.MediumSignal, factor.WeakSignal, factor.VeryWeakSignal} {
			for _, g := range []factor.GeometricQuality{factor.ExcellentGDOPQuality, factor.GoodGDOPQuality, factor.FairGDOPQuality, factor.PoorGDOPQuality, factor.CollinearQuality} {
				for _, d := range []factor.SignalDistribution{factor.UniformSignals, factor.MixedSignals, factor.SignalOutliers} {
					ctx := ctxOf(apc, q, g, d)
					res := sel.Select(ctx)

					require.GreaterOrEqual(t, len(res.Weights), 1, "context %s selected nothing", ctx)
					require.LessOrEqual(t, len(res.Weights), 3, "context %s selected too many", ctx)

					var max float64
					for _, w := range res.Weights {
						if w > max {
							max = w
						}
					}
					if max > 0.8 {
						require.LessOrEqual(t, len(res.Weights), 2,
							"context %s has a high-confidence leader but %d survivors", ctx, len(res.Weights))
					}

					// The reasoning trail always covers every variant.
					for _, typ := range algorithm.Types() {
						require.NotEmpty(t, res.Reasons[typ], "context %s has no trail for %s", ctx, typ)
					}
				}
			}
		}
	}
}

// Re-applying the finalist cut to a set that already satisfies its rules
// returns the set unchanged with nothing discarded.
func TestFinalistSelectionIsIdempotent(t *testing.T) {
	cases := map[string][]weighted{
		"leader above high confidence, two survivors": {
			{typ: algorithm.WeightedCentroid, weight: 1.0, formula: "Weight=1.00"},
			{typ: algorithm.RSSIRatio, weight: 0.504, formula: "Weight=0.50"},
		},
		"three mid-weight survivors": {
			{typ: algorithm.Trilateration, weight: 0.75, formula: "Weight=0.75"},
			{typ: algorithm.WeightedCentroid, weight: 0.6, formula: "Weight=0.60"},
			{typ: algorithm.RSSIRatio, weight: 0.5, formula: "Weight=0.50"},
		},
		"single survivor below the static threshold": {
			{typ: algorithm.Proximity, weight: 0.32, formula: "Weight=0.32"},
		},
	}
	for name, finalists := range cases {
		again, discards := finalistSelection(finalists)
		assert.Equal(t, finalists, again, "%s: finalists changed on re-application", name)
		assert.Empty(t, discards, "%s: re-application discarded candidates", name)
	}
}

func TestSelectIsDeterministic(t *testing.T) {
	ctx := ctxOf(factor.FourPlusAPs, factor.MediumSignal, factor.GoodGDOPQuality, factor.MixedSignals)
	sel := NewSelector()

	first := sel.Select(ctx)
	second := sel.Select(ctx)

	if diff := cmp.Diff(first.Weights, second.Weights); diff != "" {
		t.Errorf("weights differ between runs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.Reasons, second.Reasons); diff != "" {
		t.Errorf("reasons differ between runs (-first +second):\n%s", diff)
	}
}

// More eligible variants never means a worse trail for the extra ones: growing
// the AP count only adds eligibility, it never removes it.
func TestEligibilityGrowsWithAPCount(t *testing.T) {
	counts := []factor.APCount{factor.SingleAP, factor.TwoAPs, factor.ThreeAPs, factor.FourPlusAPs}

	prevEligible := 0
	for _, apc := range counts {
		set := hardConstraints(ctxOf(apc, factor.StrongSignal, factor.ExcellentGDOPQuality, factor.UniformSignals))
		require.GreaterOrEqual(t, len(set.eligible), prevEligible, "eligibility shrank at %s", apc)
		prevEligible = len(set.eligible)
	}
}

func TestWeightFormulaRecorded(t *testing.T) {
	res := NewSelector().Select(ctxOf(factor.SingleAP, factor.StrongSignal, factor.PoorGDOPQuality, factor.UniformSignals))

	want := []string{
		"Valid for single AP",
		"Weight=0.90: base(1.00) x signal(1.00) x geometric(0.90) x distribution(1.00)",
	}
	if diff := cmp.Diff(want, res.Reasons[algorithm.Proximity]); diff != "" {
		t.Errorf("proximity trail mismatch (-want +got):\n%s", diff)
	}
}
