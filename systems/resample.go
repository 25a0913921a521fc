package systems

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Resampling selects the importance resampling scheme.
type Resampling string

const (
	// ResampleSystematic uses a single random offset and N evenly spaced
	// pointers. Lower variance than multinomial draws.
	ResampleSystematic Resampling = "systematic"
	// ResampleMultinomial draws N independent categorical samples.
	ResampleMultinomial Resampling = "multinomial"
)

// ParseResampling validates a resampling scheme name.
func ParseResampling(s string) (Resampling, error) {
	switch r := Resampling(s); r {
	case ResampleSystematic, ResampleMultinomial:
		return r, nil
	case "":
		return ResampleSystematic, nil
	default:
		return "", fmt.Errorf("unknown resampling scheme %q", s)
	}
}

// resampleSystematic returns n indices drawn in proportion to the normalized
// weights. Indices with zero weight are never returned.
func resampleSystematic(weights []float64, n int, rng *rand.Rand) []int {
	idx := make([]int, n)
	if n == 0 || len(weights) == 0 {
		return idx
	}

	step := 1 / float64(n)
	u := rng.Float64() * step
	cum := weights[0]
	i := 0
	last := len(weights) - 1
	for j := 0; j < n; j++ {
		for i < last && u >= cum {
			i++
			cum += weights[i]
		}
		idx[j] = nonZeroAtOrBefore(weights, i)
		u += step
	}
	return idx
}

// resampleMultinomial draws n independent indices from the categorical
// distribution defined by the weights.
func resampleMultinomial(weights []float64, n int, rng *rand.Rand) []int {
	idx := make([]int, n)
	if n == 0 || len(weights) == 0 {
		return idx
	}
	cat := distuv.NewCategorical(weights, rng)
	for j := range idx {
		idx[j] = int(cat.Rand())
	}
	return idx
}

// nonZeroAtOrBefore guards against rounding in the cumulative sum landing a
// pointer on a trailing zero-weight particle.
func nonZeroAtOrBefore(weights []float64, i int) int {
	for k := i; k >= 0; k-- {
		if weights[k] > 0 {
			return k
		}
	}
	for k := i + 1; k < len(weights); k++ {
		if weights[k] > 0 {
			return k
		}
	}
	return i
}
