// Package calculator is the top-level positioning orchestrator. It validates
// inputs, runs the physics gate, builds the selection context, drives the
// three-phase algorithm selector, executes the selected variants concurrently
// on a shared bounded worker pool with per-task timeouts, and merges the
// surviving estimates through the position combiner.
//
// Every expected "cannot compute a position" condition returns (nil, nil):
// absence is a result, not an error. Errors are reserved for unexpected
// internal failures that should propagate to the caller.
package calculator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/monitoring"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/algorithm"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/factor"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/physics"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/selection"
)

// DefaultAlgorithmTimeout is the wall-clock budget for a single algorithm
// variant's execution.
const DefaultAlgorithmTimeout = 5 * time.Second

// DefaultShutdownGrace bounds how long Shutdown waits for in-flight work.
const DefaultShutdownGrace = 10 * time.Second

// Config tunes a Calculator. The zero value selects sensible defaults.
type Config struct {
	// PoolSize is the shared worker pool size; 0 means max(2, NumCPU/2).
	PoolSize int
	// AlgorithmTimeout is the per-variant execution budget; 0 means
	// DefaultAlgorithmTimeout.
	AlgorithmTimeout time.Duration
}

// Calculator executes positioning requests. One instance (and its worker
// pool) is shared across all concurrent requests it serves.
type Calculator struct {
	selector  *selection.Selector
	validator *physics.Validator
	combiner  algorithm.Combiner
	pool      *workerPool
	timeout   time.Duration
}

// New builds a Calculator with the default selector, physics validator and
// weighted-average combiner.
func New(cfg Config) *Calculator {
	timeout := cfg.AlgorithmTimeout
	if timeout <= 0 {
		timeout = DefaultAlgorithmTimeout
	}
	return &Calculator{
		selector:  selection.NewSelector(),
		validator: physics.NewValidator(),
		combiner:  algorithm.NewWeightedAverageCombiner(),
		pool:      newWorkerPool(cfg.PoolSize),
		timeout:   timeout,
	}
}

// Shutdown stops accepting new work, allows in-flight tasks a grace period,
// then force-cancels whatever remains.
func (c *Calculator) Shutdown(grace time.Duration) {
	if grace <= 0 {
		grace = DefaultShutdownGrace
	}
	c.pool.Shutdown(grace)
}

// variantOutcome carries one algorithm task's result back to the request
// goroutine.
type variantOutcome struct {
	typ      algorithm.Type
	weighted algorithm.WeightedPosition
	err      error
}

// CalculatePosition runs the full positioning sequence. It returns (nil, nil)
// for every expected "no usable position" condition, a PositioningResult on
// success, and a non-nil error only for unexpected internal failures or
// caller-context cancellation.
func (c *Calculator) CalculatePosition(ctx context.Context, scans []positioning.ScanResult, knownAPs []positioning.AccessPoint) (*PositioningResult, error) {
	if len(scans) == 0 || len(knownAPs) == 0 {
		monitoring.Logf("calculator: empty scans or known APs, nothing to do")
		return nil, nil
	}

	// Resolve scans against the known records; unknown emitters are dropped.
	apByMAC := make(map[string]positioning.AccessPoint, len(knownAPs))
	for _, ap := range knownAPs {
		if _, ok := apByMAC[ap.MACAddress]; !ok {
			apByMAC[ap.MACAddress] = ap
		}
	}
	validScans := make([]positioning.ScanResult, 0, len(scans))
	for _, s := range scans {
		if _, ok := apByMAC[s.MACAddress]; ok {
			validScans = append(validScans, s)
		}
	}
	if len(validScans) == 0 {
		monitoring.Logf("calculator: no scan matches a known access point")
		return nil, nil
	}

	if err := c.validator.Validate(validScans); err != nil {
		monitoring.Logf("calculator: physics gate rejected scans: %v", err)
		return nil, nil
	}

	// The context is computed once and shared read-only from here on.
	selCtx := factor.BuildContext(validScans, apByMAC)

	sel := c.selector.Select(selCtx)
	if len(sel.Weights) == 0 {
		monitoring.Logf("calculator: no algorithm survived selection")
		return nil, nil
	}

	candidates, err := c.executeSelected(ctx, sel, validScans, knownAPs)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		monitoring.Logf("calculator: every selected algorithm failed")
		return nil, nil
	}

	merged := c.combiner.Combine(candidates)
	if merged == nil {
		monitoring.Logf("calculator: combiner could not merge %d candidates", len(candidates))
		return nil, nil
	}

	return &PositioningResult{
		RequestID:        uuid.New(),
		Position:         *merged,
		AlgorithmWeights: sel.Weights,
		SelectionReasons: sel.Reasons,
		Context:          selCtx,
	}, nil
}

// executeSelected runs every selected variant on the shared pool and collects
// the successful weighted positions. Failures, panics and timeouts are
// isolated per variant: they are logged and excluded without affecting
// siblings. Caller-context cancellation aborts the wait and propagates.
func (c *Calculator) executeSelected(ctx context.Context, sel selection.Result, scans []positioning.ScanResult, aps []positioning.AccessPoint) ([]algorithm.WeightedPosition, error) {
	outcomes := make(chan variantOutcome, len(sel.Weights))
	var submitted int

	for _, t := range algorithm.Types() {
		selectorWeight, ok := sel.Weights[t]
		if !ok {
			continue
		}
		typ := t
		weight := selectorWeight
		err := c.pool.Submit(func(poolCtx context.Context) {
			outcomes <- c.runVariant(poolCtx, typ, weight, scans, aps)
		})
		if err != nil {
			return nil, fmt.Errorf("calculator: submit %s: %w", typ, err)
		}
		submitted++
	}

	candidates := make([]algorithm.WeightedPosition, 0, submitted)
	for i := 0; i < submitted; i++ {
		select {
		case out := <-outcomes:
			if out.err != nil {
				monitoring.Logf("calculator: %s failed: %v", out.typ, out.err)
				continue
			}
			candidates = append(candidates, out.weighted)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return candidates, nil
}

// runVariant executes one algorithm with a wall-clock budget and panic
// isolation. The final weight is the selector weight scaled by the variant's
// self-reported confidence.
func (c *Calculator) runVariant(ctx context.Context, typ algorithm.Type, selectorWeight float64, scans []positioning.ScanResult, aps []positioning.AccessPoint) variantOutcome {
	impl := algorithm.ByType(typ)

	taskCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type posErr struct {
		pos *positioning.Position
		err error
	}
	done := make(chan posErr, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- posErr{err: fmt.Errorf("panic in %s: %v", typ, r)}
			}
		}()
		pos, err := impl.CalculatePosition(scans, aps)
		done <- posErr{pos: pos, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return variantOutcome{typ: typ, err: r.err}
		}
		if r.pos == nil {
			return variantOutcome{typ: typ, err: fmt.Errorf("%s returned no position", typ)}
		}
		return variantOutcome{
			typ: typ,
			weighted: algorithm.WeightedPosition{
				Position: *r.pos,
				Weight:   selectorWeight * impl.Confidence(),
			},
		}
	case <-taskCtx.Done():
		// Timeout or cancellation: non-fatal for the request, the variant is
		// simply excluded. The context error is preserved in the outcome.
		return variantOutcome{typ: typ, err: fmt.Errorf("%s aborted: %w", typ, taskCtx.Err())}
	}
}
