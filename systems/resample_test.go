package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseResampling verifies scheme names and the default.
func TestParseResampling(t *testing.T) {
	r, err := ParseResampling("")
	require.NoError(t, err)
	assert.Equal(t, ResampleSystematic, r)

	r, err = ParseResampling("multinomial")
	require.NoError(t, err)
	assert.Equal(t, ResampleMultinomial, r)

	_, err = ParseResampling("stratified")
	assert.Error(t, err)
}

// TestResampleSkipsZeroWeight verifies neither scheme returns a zero-weight index.
func TestResampleSkipsZeroWeight(t *testing.T) {
	weights := []float64{0, 0.5, 0, 0.5, 0}
	rng := newTestRNG(11)

	for _, idx := range [][]int{
		resampleSystematic(weights, 1000, rng),
		resampleMultinomial(weights, 1000, rng),
	} {
		require.Len(t, idx, 1000)
		for _, i := range idx {
			assert.Contains(t, []int{1, 3}, i)
		}
	}
}

// TestResampleSystematicProportions verifies counts follow the weights within one.
func TestResampleSystematicProportions(t *testing.T) {
	weights := []float64{0.1, 0.2, 0.3, 0.4}
	idx := resampleSystematic(weights, 100, newTestRNG(12))

	counts := make([]int, len(weights))
	for _, i := range idx {
		counts[i]++
	}
	for i, w := range weights {
		assert.InDelta(t, w*100, float64(counts[i]), 1, "index %d", i)
	}
}

// TestNonZeroAtOrBefore verifies the rounding guard walks back to a live index.
func TestNonZeroAtOrBefore(t *testing.T) {
	assert.Equal(t, 1, nonZeroAtOrBefore([]float64{0, 1, 0, 0}, 3))
	assert.Equal(t, 2, nonZeroAtOrBefore([]float64{0, 0, 1}, 0))
}
