package calculator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/algorithm"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/factor"
)

// PositioningResult is the immutable output of one successful positioning
// request: the merged position, the per-variant weight map and reasoning
// trail, and the selection context the decision was made under.
type PositioningResult struct {
	RequestID        uuid.UUID
	Position         positioning.Position
	AlgorithmWeights map[algorithm.Type]float64
	SelectionReasons map[algorithm.Type][]string
	Context          factor.SelectionContext
}

// MethodsUsedNames returns the selected variants' names as used verbatim in
// outward-facing payloads: lowercase, no whitespace, ordered by final weight
// descending with declaration order breaking ties. The transform is
// deterministic for identical inputs.
func (r *PositioningResult) MethodsUsedNames() []string {
	types := make([]algorithm.Type, 0, len(r.AlgorithmWeights))
	for t := range r.AlgorithmWeights {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		wi, wj := r.AlgorithmWeights[types[i]], r.AlgorithmWeights[types[j]]
		if wi != wj {
			return wi > wj
		}
		return types[i] < types[j]
	})

	names := make([]string, len(types))
	for i, t := range types {
		name := strings.ToLower(algorithm.ByType(t).Name())
		names[i] = strings.Join(strings.Fields(name), "")
	}
	return names
}

// CalculationInfo renders a human-readable diagnostic dump of the selection
// context and the per-variant weight/reason tables, for optional diagnostic
// payloads. Formatting is informational only; the content is the contract.
func (r *PositioningResult) CalculationInfo() string {
	var b strings.Builder

	fmt.Fprintf(&b, "request: %s\n", r.RequestID)
	fmt.Fprintf(&b, "position: %s\n", r.Position)
	fmt.Fprintf(&b, "selection context: %s\n", r.Context)
	b.WriteString("algorithms:\n")

	for _, t := range algorithm.Types() {
		name := algorithm.ByType(t).Name()
		if w, ok := r.AlgorithmWeights[t]; ok {
			fmt.Fprintf(&b, "  %s: selected, weight=%.3f\n", name, w)
		} else {
			fmt.Fprintf(&b, "  %s: not selected\n", name)
		}
		for _, reason := range r.SelectionReasons[t] {
			fmt.Fprintf(&b, "    - %s\n", reason)
		}
	}
	return b.String()
}
