package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCollectorFlush verifies window aggregation and reset.
func TestCollectorFlush(t *testing.T) {
	c := NewCollector("run", 3)

	c.Record(CycleStats{Cycle: 1, Legal: true, Error: 1, Spread: 2, ESS: 10})
	c.Record(CycleStats{Cycle: 2, Legal: false, Error: 2, Spread: 2, ESS: 20})
	assert.False(t, c.ShouldFlush(2))
	c.Record(CycleStats{Cycle: 3, Legal: true, Degenerate: true, Error: 3, Spread: 2, ESS: 30})
	assert.True(t, c.ShouldFlush(3))

	s := c.Flush(3, 0.25)
	assert.Equal(t, "run", s.RunID)
	assert.Equal(t, 0, s.WindowStart)
	assert.Equal(t, 3, s.WindowEnd)
	assert.Equal(t, 3, s.Cycles)
	assert.Equal(t, 1, s.IllegalMoves)
	assert.Equal(t, 1, s.DegenerateCycles)
	assert.InDelta(t, 2.0, s.ErrorMean, 1e-12)
	assert.InDelta(t, 2.0, s.ErrorP50, 1e-12)
	assert.InDelta(t, 2.0, s.SpreadMean, 1e-12)
	assert.InDelta(t, 20.0, s.ESSMean, 1e-12)
	assert.Equal(t, 0.25, s.MapError)

	assert.Zero(t, c.Pending())
	assert.False(t, c.ShouldFlush(5))
	assert.True(t, c.ShouldFlush(6))
}

// TestCollectorEmptyFlush verifies flushing an empty window does not panic.
func TestCollectorEmptyFlush(t *testing.T) {
	c := NewCollector("", 0)
	assert.Equal(t, 1, c.WindowCycles())

	s := c.Flush(1, 0)
	assert.Zero(t, s.Cycles)
	assert.Zero(t, s.ErrorMean)
}
