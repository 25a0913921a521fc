package telemetry

import "gonum.org/v1/gonum/stat"

// Collector accumulates cycle records within a window and produces WindowStats.
type Collector struct {
	runID        string
	windowCycles int
	windowStart  int

	errors     []float64
	spreads    []float64
	ess        []float64
	illegal    int
	degenerate int
}

// NewCollector creates a collector that flushes every windowCycles cycles.
func NewCollector(runID string, windowCycles int) *Collector {
	if windowCycles < 1 {
		windowCycles = 1
	}
	return &Collector{runID: runID, windowCycles: windowCycles}
}

// Record adds one cycle to the current window.
func (c *Collector) Record(s CycleStats) {
	if !s.Legal {
		c.illegal++
	}
	if s.Degenerate {
		c.degenerate++
	}
	c.errors = append(c.errors, s.Error)
	c.spreads = append(c.spreads, s.Spread)
	c.ess = append(c.ess, s.ESS)
}

// Pending returns the number of cycles recorded since the last flush.
func (c *Collector) Pending() int {
	return len(c.errors)
}

// ShouldFlush returns true if enough cycles have passed to flush the window.
func (c *Collector) ShouldFlush(cycle int) bool {
	return cycle-c.windowStart >= c.windowCycles
}

// Flush produces a WindowStats and resets the window.
// mapError is the occupancy grid's current error against the true map.
func (c *Collector) Flush(cycle int, mapError float64) WindowStats {
	mean, p10, p50, p90 := ComputeErrorStats(c.errors)

	stats := WindowStats{
		RunID:            c.runID,
		WindowStart:      c.windowStart,
		WindowEnd:        cycle,
		Cycles:           len(c.errors),
		IllegalMoves:     c.illegal,
		DegenerateCycles: c.degenerate,
		ErrorMean:        mean,
		ErrorP10:         p10,
		ErrorP50:         p50,
		ErrorP90:         p90,
		MapError:         mapError,
	}
	if len(c.spreads) > 0 {
		stats.SpreadMean = stat.Mean(c.spreads, nil)
		stats.ESSMean = stat.Mean(c.ess, nil)
	}

	// Reset for next window
	c.windowStart = cycle
	c.errors = c.errors[:0]
	c.spreads = c.spreads[:0]
	c.ess = c.ess[:0]
	c.illegal = 0
	c.degenerate = 0

	return stats
}

// WindowCycles returns the number of cycles per window.
func (c *Collector) WindowCycles() int {
	return c.windowCycles
}
