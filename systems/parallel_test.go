package systems

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pthm-cable/slamsim/components"
)

func TestWorkerPoolCoversRange(t *testing.T) {
	p := newWorkerPool(4)
	defer p.stop()

	for _, n := range []int{0, 10, parallelThreshold, 1001} {
		hits := make([]int32, n)
		p.run(n, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, h)
			}
		}
	}
}

func TestWorkerPoolRestart(t *testing.T) {
	p := newWorkerPool(3)
	var total atomic.Int64
	sum := func(start, end int) { total.Add(int64(end - start)) }

	p.run(500, sum)
	assert.True(t, p.running)
	p.stop()
	assert.False(t, p.running)

	p.run(500, sum)
	p.stop()
	assert.Equal(t, int64(1000), total.Load())
}

func TestParallelWeightingMatchesSerial(t *testing.T) {
	m := mustParse(t, boxedMap, 1)
	sensor := NewRangeSensor(m, SensorParams{MaxRange: 8, ApertureDeg: 360, ResolutionDeg: 90, Noise: 0.5}, newTestRNG(1))

	serial := NewParticleFilter(m, sensor, FilterParams{Workers: 1}, newTestRNG(7))
	parallel := NewParticleFilter(m, sensor, FilterParams{Workers: 4}, newTestRNG(7))
	defer parallel.Close()

	// Enough particles to cross the parallel threshold.
	for _, pf := range []*ParticleFilter{serial, parallel} {
		cells := make([]components.Cell, 0, 640)
		for len(cells) < 640 {
			cells = append(cells, m.LegalCells()...)
		}
		pf.swap(cells[:640])
	}

	scan := components.Scan{3, 4, 5, 4}
	serial.WeightParticles(scan)
	parallel.WeightParticles(scan)

	assert.Equal(t, serial.Weights(), parallel.Weights())
	assert.Equal(t, serial.Locations(), parallel.Locations())
}
