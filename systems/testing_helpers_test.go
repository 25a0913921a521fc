package systems

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// boxedMap is a 10x10 room with walls on every edge.
const boxedMap = `
##########
#........#
#........#
#........#
#........#
#........#
#........#
#........#
#........#
##########
`

func mustParse(t *testing.T, text string, scale float64) *WorldMap {
	t.Helper()
	m, err := ParseWorldMap(text, scale)
	require.NoError(t, err)
	return m
}
