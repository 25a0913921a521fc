package systems

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/slamsim/components"
)

func newBoxedFilter(t *testing.T, seed uint64, scheme Resampling) (*WorldMap, *ParticleFilter) {
	t.Helper()
	m := mustParse(t, boxedMap, 1)
	rng := newTestRNG(seed)
	s := NewRangeSensor(m, SensorParams{MaxRange: 8, Noise: 0.4}, rng)
	return m, NewParticleFilter(m, s, FilterParams{Resampling: scheme}, rng)
}

// TestInitializeParticlesCapped verifies the population never exceeds the legal cell count.
func TestInitializeParticlesCapped(t *testing.T) {
	m, pf := newBoxedFilter(t, 1, ResampleSystematic)

	n := pf.InitializeParticles(1000)
	assert.Equal(t, 64, n)
	assert.Equal(t, 64, pf.Len())
	assert.ElementsMatch(t, m.LegalCells(), pf.Locations())
}

// TestInitializeParticlesDistinct verifies a partial draw picks distinct legal cells.
func TestInitializeParticlesDistinct(t *testing.T) {
	m, pf := newBoxedFilter(t, 2, ResampleSystematic)

	require.Equal(t, 10, pf.InitializeParticles(10))
	seen := make(map[components.Cell]bool)
	for _, c := range pf.Locations() {
		assert.False(t, m.Blocked(c), "particle on obstacle %v", c)
		assert.False(t, seen[c], "duplicate particle %v", c)
		seen[c] = true
	}
	assert.Nil(t, pf.Weights())
	assert.Equal(t, 10.0, pf.EffectiveSampleSize())
}

// TestInitializeAt verifies a known start yields an exact point estimate.
func TestInitializeAt(t *testing.T) {
	_, pf := newBoxedFilter(t, 3, ResampleSystematic)

	pose := components.Cell{Row: 3, Col: 7}
	require.Equal(t, 20, pf.InitializeAt(pose, 20))
	assert.Equal(t, components.Point{Row: 3, Col: 7}, pf.SupposedLocation())
	assert.Zero(t, pf.StdDev())
}

// TestMoveParticlesNoiseFree verifies rounding and clamping of propagated particles.
func TestMoveParticlesNoiseFree(t *testing.T) {
	_, pf := newBoxedFilter(t, 4, ResampleSystematic)
	pf.swap([]components.Cell{{Row: 4, Col: 4}, {Row: 4, Col: 8}})

	pf.MoveParticles(components.Displacement{DY: 0, DX: 2.4})
	assert.Equal(t, []components.Cell{{Row: 4, Col: 6}, {Row: 4, Col: 9}}, pf.Locations())
}

// TestWeightParticlesNormalized verifies weights sum to one and the count is preserved.
func TestWeightParticlesNormalized(t *testing.T) {
	for _, scheme := range []Resampling{ResampleSystematic, ResampleMultinomial} {
		t.Run(string(scheme), func(t *testing.T) {
			_, pf := newBoxedFilter(t, 5, scheme)
			n := pf.InitializeParticles(40)

			pf.WeightParticles(components.Scan{3})
			require.Equal(t, n, pf.Len())
			w := pf.Weights()
			require.Len(t, w, n)
			assert.InDelta(t, 1.0, floats.Sum(w), 1e-9)
			assert.False(t, pf.Degenerate())
			assert.LessOrEqual(t, pf.EffectiveSampleSize(), float64(n)+1e-9)
		})
	}
}

// TestCornerScenario verifies an observation at distance 1 keeps only the
// right-hand corners.
func TestCornerScenario(t *testing.T) {
	corners := []components.Cell{{Row: 1, Col: 1}, {Row: 1, Col: 8}, {Row: 8, Col: 1}, {Row: 8, Col: 8}}

	for _, scheme := range []Resampling{ResampleSystematic, ResampleMultinomial} {
		for trial := uint64(0); trial < 20; trial++ {
			_, pf := newBoxedFilter(t, 100+trial, scheme)
			pf.swap(append([]components.Cell(nil), corners...))

			pf.WeightParticles(components.Scan{1})
			for _, p := range pf.Locations() {
				assert.Equal(t, 8, p.Col, "%s trial %d", scheme, trial)
			}
		}
	}
}

// TestNormalizeLogWeights verifies max-shift normalization and the degenerate fallback.
func TestNormalizeLogWeights(t *testing.T) {
	w, degenerate := normalizeLogWeights([]float64{-1000, -1000 + math.Log(3)})
	assert.False(t, degenerate)
	assert.InDeltaSlice(t, []float64{0.25, 0.75}, w, 1e-12)

	inf := math.Inf(-1)
	w, degenerate = normalizeLogWeights([]float64{inf, inf, math.NaN(), inf})
	assert.True(t, degenerate)
	assert.Equal(t, []float64{0.25, 0.25, 0.25, 0.25}, w)

	w, degenerate = normalizeLogWeights([]float64{math.NaN(), 0})
	assert.False(t, degenerate)
	assert.Equal(t, []float64{0, 1}, w)
}

// TestWeightParticlesZeroNoise verifies a zero-noise sensor still produces finite weights.
func TestWeightParticlesZeroNoise(t *testing.T) {
	m := mustParse(t, boxedMap, 1)
	rng := newTestRNG(6)
	s := NewRangeSensor(m, SensorParams{MaxRange: 8}, rng)
	pf := NewParticleFilter(m, s, FilterParams{}, rng)
	pf.InitializeParticles(64)

	pf.WeightParticles(components.Scan{2})
	assert.Equal(t, 64, pf.Len())
	for _, p := range pf.Locations() {
		assert.Equal(t, 7, p.Col)
	}
}

// TestStdDevDirectional verifies projection onto the beam direction.
func TestStdDevDirectional(t *testing.T) {
	_, pf := newBoxedFilter(t, 7, ResampleSystematic)
	pf.swap([]components.Cell{{Row: 5, Col: 1}, {Row: 5, Col: 3}})

	assert.InDelta(t, 1.0, pf.StdDevDirectional(0), 1e-9)
	assert.InDelta(t, 0.0, pf.StdDevDirectional(math.Pi/2), 1e-9)
	assert.InDelta(t, math.Sqrt2/2, pf.StdDevDirectional(math.Pi/4), 1e-9)
	assert.InDelta(t, 1.0, pf.StdDev(), 1e-9)
}

// TestEmptyFilter verifies queries on an empty population do not panic.
func TestEmptyFilter(t *testing.T) {
	_, pf := newBoxedFilter(t, 8, ResampleSystematic)

	assert.Equal(t, 0, pf.Len())
	pf.WeightParticles(components.Scan{1})
	pf.MoveParticles(components.Displacement{DX: 1})
	assert.Equal(t, components.Point{}, pf.SupposedLocation())
	assert.Zero(t, pf.StdDev())
	assert.Zero(t, pf.StdDevDirectional(1))
}
