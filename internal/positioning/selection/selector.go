// Package selection implements the hybrid algorithm selection framework: a
// three-phase pipeline (hard constraints, weighting, finalist selection) that
// turns a SelectionContext into a weighted set of algorithm variants plus a
// per-variant reasoning trail explaining every inclusion and exclusion.
package selection

import (
	"fmt"
	"sort"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/monitoring"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/algorithm"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/factor"
)

const (
	// Candidates below this weight are dropped in phase three, unless phase
	// one produced exactly one survivor (its own weight then becomes the
	// threshold, so the result is never emptied by thresholding alone).
	minimumWeightThreshold = 0.4

	// Above this weight a candidate is trusted enough to carry the result
	// with at most one backup.
	highConfidenceThreshold = 0.8
)

// Disqualification and validity reasons recorded in the selection trail.
const (
	reasonInsufficientAPs   = "DISQUALIFIED (insufficient APs)"
	reasonCollinear         = "DISQUALIFIED (collinear APs)"
	reasonPoorGeometry      = "DISQUALIFIED (poor geometry)"
	reasonSignalTooWeak     = "DISQUALIFIED (signal too weak)"
	reasonTrilatNeeds3      = "DISQUALIFIED (requires at least 3 APs)"
	reasonMLNeeds4          = "DISQUALIFIED (requires at least 4 APs)"
	reasonValidSingleAP     = "Valid for single AP"
	reasonValidSingleAPPL   = "Valid for single AP with path loss model"
	reasonValidTwoAPs       = "Valid for two APs"
	reasonValidThreeAPs     = "Valid for three APs"
	reasonValidFourPlusAPs  = "Valid for 4+ APs"
	reasonOnlyViableForWeak = "Only viable algorithm for extremely weak signals"
)

// Result is the selector output: final weights for the surviving variants and
// the full reasoning trail. Reasons always covers all six variants, even ones
// that were never eligible.
type Result struct {
	Weights map[algorithm.Type]float64
	Reasons map[algorithm.Type][]string
}

// Selected reports whether a variant survived all three phases.
func (r Result) Selected(t algorithm.Type) bool {
	_, ok := r.Weights[t]
	return ok
}

// weighted is the phase-two working record for one eligible variant.
type weighted struct {
	typ     algorithm.Type
	weight  float64
	formula string
}

// eligibleSet is the immutable phase-one output: the eligible variants plus
// the reasons accumulated so far. Phases never mutate a previous phase's set;
// they derive a new one.
type eligibleSet struct {
	eligible map[algorithm.Type]bool
	reasons  map[algorithm.Type][]string
}

func (s eligibleSet) clone() eligibleSet {
	out := eligibleSet{
		eligible: make(map[algorithm.Type]bool, len(s.eligible)),
		reasons:  make(map[algorithm.Type][]string, len(s.reasons)),
	}
	for t, ok := range s.eligible {
		out.eligible[t] = ok
	}
	for t, rs := range s.reasons {
		out.reasons[t] = append([]string(nil), rs...)
	}
	return out
}

// without returns a copy of the set with variants failing keep removed,
// recording reason against each removed variant.
func (s eligibleSet) without(keep func(algorithm.Type) bool, reason string) eligibleSet {
	out := s.clone()
	for t := range s.eligible {
		if !keep(t) {
			delete(out.eligible, t)
			out.reasons[t] = append(out.reasons[t], reason)
		}
	}
	return out
}

// Selector orchestrates the three-phase selection framework over the six
// stateless algorithm variants. The zero value is ready to use.
type Selector struct{}

// NewSelector returns a Selector.
func NewSelector() *Selector {
	return &Selector{}
}

// Select runs the full framework for one request context.
func (s *Selector) Select(ctx factor.SelectionContext) Result {
	monitoring.Logf("selection: starting with context: %s", ctx)

	// Phase one: hard constraints.
	eligible := hardConstraints(ctx)

	// Phase two: weighting.
	candidates := applyWeighting(eligible, ctx)

	// Phase three: finalist selection.
	finalists, discards := finalistSelection(candidates)

	weights := make(map[algorithm.Type]float64, len(finalists))
	for _, c := range finalists {
		weights[c.typ] = c.weight
	}

	reasons := make(map[algorithm.Type][]string, len(algorithm.Types()))
	for _, t := range algorithm.Types() {
		rs := append([]string(nil), eligible.reasons[t]...)
		for _, c := range candidates {
			if c.typ == t {
				rs = append(rs, c.formula)
			}
		}
		rs = append(rs, discards[t]...)
		reasons[t] = rs
	}

	monitoring.Logf("selection: final weights: %v", weights)
	return Result{Weights: weights, Reasons: reasons}
}

// hardConstraints is phase one: a pre-defined eligible-set table keyed by the
// AP-count bucket, with two overrides. Extremely weak signal collapses the set
// to proximity alone regardless of AP count; collinear or poor geometry
// removes trilateration from whatever table applied.
func hardConstraints(ctx factor.SelectionContext) eligibleSet {
	if ctx.SignalQuality == factor.VeryWeakSignal {
		return veryWeakSignalSet()
	}

	base := setForAPCount(ctx.APCount)

	if ctx.GeometricQuality == factor.CollinearQuality || ctx.GeometricQuality == factor.PoorGDOPQuality {
		reason := reasonPoorGeometry
		if ctx.GeometricQuality == factor.CollinearQuality {
			reason = reasonCollinear
		}
		base = base.without(func(t algorithm.Type) bool {
			return t != algorithm.Trilateration
		}, reason)
	}
	return base
}

func newEligibleSet() eligibleSet {
	s := eligibleSet{
		eligible: make(map[algorithm.Type]bool),
		reasons:  make(map[algorithm.Type][]string),
	}
	for _, t := range algorithm.Types() {
		s.reasons[t] = nil
	}
	return s
}

func veryWeakSignalSet() eligibleSet {
	s := newEligibleSet()
	for _, t := range algorithm.Types() {
		if t == algorithm.Proximity {
			s.eligible[t] = true
			s.reasons[t] = append(s.reasons[t], reasonOnlyViableForWeak)
		} else {
			s.reasons[t] = append(s.reasons[t], reasonSignalTooWeak)
		}
	}
	return s
}

func setForAPCount(c factor.APCount) eligibleSet {
	s := newEligibleSet()
	switch c {
	case factor.SingleAP:
		for _, t := range algorithm.Types() {
			switch t {
			case algorithm.Proximity:
				s.eligible[t] = true
				s.reasons[t] = append(s.reasons[t], reasonValidSingleAP)
			case algorithm.LogDistance:
				s.eligible[t] = true
				s.reasons[t] = append(s.reasons[t], reasonValidSingleAPPL)
			default:
				s.reasons[t] = append(s.reasons[t], reasonInsufficientAPs)
			}
		}
	case factor.TwoAPs:
		for _, t := range algorithm.Types() {
			switch t {
			case algorithm.Proximity, algorithm.LogDistance, algorithm.RSSIRatio, algorithm.WeightedCentroid:
				s.eligible[t] = true
				s.reasons[t] = append(s.reasons[t], reasonValidTwoAPs)
			case algorithm.Trilateration:
				s.reasons[t] = append(s.reasons[t], reasonTrilatNeeds3)
			case algorithm.MaximumLikelihood:
				s.reasons[t] = append(s.reasons[t], reasonMLNeeds4)
			}
		}
	case factor.ThreeAPs:
		for _, t := range algorithm.Types() {
			if t == algorithm.MaximumLikelihood {
				s.reasons[t] = append(s.reasons[t], reasonMLNeeds4)
				continue
			}
			s.eligible[t] = true
			s.reasons[t] = append(s.reasons[t], reasonValidThreeAPs)
		}
	default: // FourPlusAPs
		for _, t := range algorithm.Types() {
			s.eligible[t] = true
			s.reasons[t] = append(s.reasons[t], reasonValidFourPlusAPs)
		}
	}
	return s
}

// applyWeighting is phase two: weight = base × signal × geometric ×
// distribution, with every factor looked up from the variant's own tables.
// The formula string is recorded for explainability.
func applyWeighting(s eligibleSet, ctx factor.SelectionContext) []weighted {
	out := make([]weighted, 0, len(s.eligible))
	for _, t := range algorithm.Types() {
		if !s.eligible[t] {
			continue
		}
		impl := algorithm.ByType(t)
		base := impl.BaseWeight(ctx.APCount)
		sig := impl.SignalQualityMultiplier(ctx.SignalQuality)
		geo := impl.GeometricQualityMultiplier(ctx.GeometricQuality)
		dist := impl.SignalDistributionMultiplier(ctx.SignalDistribution)
		w := base * sig * geo * dist
		out = append(out, weighted{
			typ:    t,
			weight: w,
			formula: fmt.Sprintf("Weight=%.2f: base(%.2f) x signal(%.2f) x geometric(%.2f) x distribution(%.2f)",
				w, base, sig, geo, dist),
		})
	}
	return out
}

// finalistSelection is phase three. Step one drops candidates below the
// weight threshold (a single phase-one survivor's own weight becomes the
// threshold, so it always survives). Step two adapts the set size: a
// high-confidence leader keeps only the top two; otherwise more than three
// survivors are cut to the top three. Ties break by weight descending, then
// variant declaration order, making the outcome fully deterministic.
func finalistSelection(candidates []weighted) (finalists []weighted, discards map[algorithm.Type][]string) {
	discards = make(map[algorithm.Type][]string)

	threshold := minimumWeightThreshold
	if len(candidates) == 1 {
		threshold = candidates[0].weight
	}

	kept := make([]weighted, 0, len(candidates))
	for _, c := range candidates {
		if c.weight >= threshold {
			kept = append(kept, c)
		} else {
			discards[c.typ] = append(discards[c.typ],
				fmt.Sprintf("Below minimum weight threshold %.2f: %s", threshold, c.formula))
		}
	}

	sortByWeight(kept)

	limit := 0
	reason := ""
	switch {
	case len(kept) > 0 && kept[0].weight > highConfidenceThreshold:
		limit, reason = 2, "high confidence selection: not in top 2"
	case len(kept) > 3:
		limit, reason = 3, "not in top 3"
	}
	if limit > 0 && len(kept) > limit {
		for _, c := range kept[limit:] {
			discards[c.typ] = append(discards[c.typ], reason)
		}
		kept = kept[:limit]
	}
	return kept, discards
}

// sortByWeight orders candidates by weight descending, breaking exact ties by
// variant declaration order.
func sortByWeight(cs []weighted) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].weight != cs[j].weight {
			return cs[i].weight > cs[j].weight
		}
		return cs[i].typ < cs[j].typ
	})
}
