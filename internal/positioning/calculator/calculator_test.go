package calculator

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/algorithm"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/factor"
)

func testAP(mac string, lat, lon float64) positioning.AccessPoint {
	return positioning.AccessPoint{
		MACAddress:         mac,
		Latitude:           lat,
		Longitude:          lon,
		HorizontalAccuracy: 5.0,
		Confidence:         1.0,
		Status:             positioning.StatusActive,
	}
}

func testScan(mac string, rssi float64) positioning.ScanResult {
	return positioning.ScanResult{MACAddress: mac, SignalStrength: rssi, Frequency: 2437}
}

func newTestCalculator(t *testing.T, cfg Config) *Calculator {
	t.Helper()
	c := New(cfg)
	t.Cleanup(func() { c.Shutdown(time.Second) })
	return c
}

func TestCalculatePositionEmptyInputs(t *testing.T) {
	c := newTestCalculator(t, Config{})

	res, err := c.CalculatePosition(context.Background(), nil, nil)
	assert.NoError(t, err)
	assert.Nil(t, res)

	res, err = c.CalculatePosition(context.Background(),
		[]positioning.ScanResult{testScan("aa:00:00:00:00:01", -60)}, nil)
	assert.NoError(t, err)
	assert.Nil(t, res)

	res, err = c.CalculatePosition(context.Background(), nil,
		[]positioning.AccessPoint{testAP("aa:00:00:00:00:01", 40.7570, -73.9850)})
	assert.NoError(t, err)
	assert.Nil(t, res)
}

func TestCalculatePositionNoMatchingMACs(t *testing.T) {
	c := newTestCalculator(t, Config{})

	res, err := c.CalculatePosition(context.Background(),
		[]positioning.ScanResult{testScan("aa:00:00:00:00:01", -60)},
		[]positioning.AccessPoint{testAP("bb:00:00:00:00:01", 40.7570, -73.9850)})
	assert.NoError(t, err)
	assert.Nil(t, res, "unknown emitters are an expected absence, not an error")
}

func TestCalculatePositionPhysicsRejected(t *testing.T) {
	c := newTestCalculator(t, Config{})

	res, err := c.CalculatePosition(context.Background(),
		[]positioning.ScanResult{testScan("aa:00:00:00:00:01", -5)},
		[]positioning.AccessPoint{testAP("aa:00:00:00:00:01", 40.7570, -73.9850)})
	assert.NoError(t, err)
	assert.Nil(t, res)
}

func TestCalculatePositionSingleStrongAP(t *testing.T) {
	c := newTestCalculator(t, Config{})

	res, err := c.CalculatePosition(context.Background(),
		[]positioning.ScanResult{testScan("aa:00:00:00:00:01", -55)},
		[]positioning.AccessPoint{testAP("aa:00:00:00:00:01", 40.7570, -73.9850)})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 40.7570, res.Position.Latitude)
	assert.Equal(t, -73.9850, res.Position.Longitude)
	assert.Equal(t, []string{"proximity"}, res.MethodsUsedNames())
	assert.Equal(t, factor.SingleAP, res.Context.APCount)
	assert.Equal(t, factor.StrongSignal, res.Context.SignalQuality)
	assert.NotEqual(t, uuid.Nil, res.RequestID)
}

func TestCalculatePositionTwoStrongAPs(t *testing.T) {
	c := newTestCalculator(t, Config{})

	res, err := c.CalculatePosition(context.Background(),
		[]positioning.ScanResult{
			testScan("aa:00:00:00:00:01", -60),
			testScan("aa:00:00:00:00:02", -62),
		},
		[]positioning.AccessPoint{
			testAP("aa:00:00:00:00:01", 40.7570, -73.9860),
			testAP("aa:00:00:00:00:02", 40.7570, -73.9840),
		})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, []string{"weighted_centroid", "rssiratio"}, res.MethodsUsedNames())
	assert.InDelta(t, 40.7570, res.Position.Latitude, 1e-4)
	assert.InDelta(t, -73.9850, res.Position.Longitude, 1e-3)
	assert.Greater(t, res.Position.Confidence, 0.0)
}

func TestCalculatePositionFourAPs(t *testing.T) {
	c := newTestCalculator(t, Config{})

	res, err := c.CalculatePosition(context.Background(),
		[]positioning.ScanResult{
			testScan("aa:00:00:00:00:01", -60),
			testScan("aa:00:00:00:00:02", -61),
			testScan("aa:00:00:00:00:03", -62),
			testScan("aa:00:00:00:00:04", -63),
		},
		[]positioning.AccessPoint{
			testAP("aa:00:00:00:00:01", 40.7580, -73.9860),
			testAP("aa:00:00:00:00:02", 40.7580, -73.9840),
			testAP("aa:00:00:00:00:03", 40.7560, -73.9860),
			testAP("aa:00:00:00:00:04", 40.7560, -73.9840),
		})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, factor.FourPlusAPs, res.Context.APCount)
	// The merged estimate lands inside the AP square.
	assert.Greater(t, res.Position.Latitude, 40.7560)
	assert.Less(t, res.Position.Latitude, 40.7580)
	assert.Greater(t, res.Position.Longitude, -73.9860)
	assert.Less(t, res.Position.Longitude, -73.9840)
}

// A timeout too short for any variant to finish excludes them all; every
// variant failing is an expected absence, and the request returns promptly
// rather than hanging on the stragglers.
func TestCalculatePositionTimeoutContainment(t *testing.T) {
	c := newTestCalculator(t, Config{AlgorithmTimeout: time.Nanosecond})

	start := time.Now()
	res, err := c.CalculatePosition(context.Background(),
		[]positioning.ScanResult{testScan("aa:00:00:00:00:01", -55)},
		[]positioning.AccessPoint{testAP("aa:00:00:00:00:01", 40.7570, -73.9850)})
	elapsed := time.Since(start)

	assert.NoError(t, err)
	if res != nil {
		// The variant may still beat a nanosecond timeout on a fast machine;
		// either way the request must complete quickly.
		assert.Equal(t, []string{"proximity"}, res.MethodsUsedNames())
	}
	assert.Less(t, elapsed, 2*time.Second)
}

func TestSubmitAfterShutdown(t *testing.T) {
	p := newWorkerPool(2)
	p.Shutdown(time.Second)
	err := p.Submit(func(context.Context) {})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestSubmitDuringShutdown(t *testing.T) {
	p := newWorkerPool(1)

	release := make(chan struct{})
	running := make(chan struct{})
	require.NoError(t, p.Submit(func(context.Context) {
		close(running)
		<-release
	}))
	<-running

	ran := 0
	for i := 0; i < cap(p.tasks); i++ {
		require.NoError(t, p.Submit(func(context.Context) { ran++ }))
	}

	// With the worker pinned and the queue full, this Submit blocks on the
	// send while Shutdown runs concurrently.
	blocked := make(chan error, 1)
	go func() {
		blocked <- p.Submit(func(context.Context) { ran++ })
	}()
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		p.Shutdown(5 * time.Second)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not complete")
	}

	want := cap(p.tasks)
	select {
	case err := <-blocked:
		if err == nil {
			want++
		} else {
			assert.ErrorIs(t, err, ErrPoolClosed)
		}
	case <-time.After(time.Second):
		t.Fatal("blocked submit never returned")
	}
	assert.Equal(t, want, ran, "every admitted task must run before shutdown completes")
	assert.ErrorIs(t, p.Submit(func(context.Context) {}), ErrPoolClosed)
}

func TestShutdownWaitsForInFlightTasks(t *testing.T) {
	p := newWorkerPool(2)

	started := make(chan struct{})
	finished := false
	require.NoError(t, p.Submit(func(context.Context) {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished = true
	}))

	<-started
	p.Shutdown(2 * time.Second)
	assert.True(t, finished, "shutdown must wait for in-flight work within the grace period")
}

func TestShutdownCancelsStragglers(t *testing.T) {
	p := newWorkerPool(1)

	cancelled := make(chan struct{})
	require.NoError(t, p.Submit(func(ctx context.Context) {
		<-ctx.Done()
		close(cancelled)
	}))

	done := make(chan struct{})
	go func() {
		p.Shutdown(50 * time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not complete")
	}
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("task never saw cancellation")
	}
}

func TestMethodsUsedNamesOrdering(t *testing.T) {
	res := &PositioningResult{
		AlgorithmWeights: map[algorithm.Type]float64{
			algorithm.Proximity:        0.5,
			algorithm.WeightedCentroid: 1.04,
			algorithm.RSSIRatio:        0.96,
		},
	}
	assert.Equal(t, []string{"weighted_centroid", "rssiratio", "proximity"}, res.MethodsUsedNames())

	// Exact weight ties break by declaration order.
	res = &PositioningResult{
		AlgorithmWeights: map[algorithm.Type]float64{
			algorithm.Trilateration: 0.7,
			algorithm.LogDistance:   0.7,
		},
	}
	assert.Equal(t, []string{"log_distance", "trilateration"}, res.MethodsUsedNames())
}

func TestCalculationInfoCoversAllVariants(t *testing.T) {
	c := newTestCalculator(t, Config{})

	res, err := c.CalculatePosition(context.Background(),
		[]positioning.ScanResult{testScan("aa:00:00:00:00:01", -55)},
		[]positioning.AccessPoint{testAP("aa:00:00:00:00:01", 40.7570, -73.9850)})
	require.NoError(t, err)
	require.NotNil(t, res)

	info := res.CalculationInfo()
	for _, typ := range algorithm.Types() {
		assert.Contains(t, info, typ.String())
	}
	assert.Contains(t, info, "selected, weight=")
	assert.Contains(t, info, "SINGLE_AP")
}

func TestConcurrentRequestsShareOnePool(t *testing.T) {
	c := newTestCalculator(t, Config{PoolSize: 2})

	scans := []positioning.ScanResult{testScan("aa:00:00:00:00:01", -55)}
	aps := []positioning.AccessPoint{testAP("aa:00:00:00:00:01", 40.7570, -73.9850)}

	const requests = 8
	errs := make(chan error, requests)
	for i := 0; i < requests; i++ {
		go func() {
			res, err := c.CalculatePosition(context.Background(), scans, aps)
			if err == nil && res == nil {
				err = assert.AnError
			}
			errs <- err
		}()
	}
	for i := 0; i < requests; i++ {
		assert.NoError(t, <-errs)
	}
}
