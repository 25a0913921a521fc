package game

import (
	"log/slog"

	"github.com/pthm-cable/slamsim/telemetry"
)

// recordCycle writes the per-cycle row and flushes or plots when due.
func (g *Game) recordCycle(res CycleResult) {
	stats := telemetry.CycleStats{
		RunID:      g.runID,
		Cycle:      res.Cycle,
		Command:    res.Direction.String(),
		Legal:      res.Legal,
		TrueRow:    res.Truth.Row,
		TrueCol:    res.Truth.Col,
		EstRow:     res.Estimate.Row,
		EstCol:     res.Estimate.Col,
		Error:      res.Error,
		Spread:     res.Spread,
		ESS:        res.ESS,
		Particles:  len(res.Particles),
		Degenerate: res.Degenerate,
		MapUpdates: res.MapUpdates,
	}

	if err := g.outputManager.WriteCycle(stats); err != nil {
		slog.Error("failed to write cycle", "error", err)
	}
	if g.plotter != nil {
		g.history = append(g.history, stats)
	}

	g.collector.Record(stats)
	if g.collector.ShouldFlush(g.cycle) {
		g.flushTelemetry()
	}

	if every := g.cfg.Telemetry.PlotEvery; every > 0 && g.cycle%every == 0 {
		g.plotMap(res)
	}
}

// flushTelemetry closes the current stats window and handles bookmarks.
func (g *Game) flushTelemetry() {
	stats := g.collector.Flush(g.cycle, g.grid.MeanAbsError(g.world))
	perfStats := g.perf.Stats()
	g.lastWindow = stats

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteSummary(stats); err != nil {
		slog.Error("failed to write summary", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEnd); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarks.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}

// plotMap renders the occupancy grid and belief for one cycle.
func (g *Game) plotMap(res CycleResult) {
	if g.plotter == nil {
		return
	}
	path, err := g.plotter.PlotMap(telemetry.MapFrame{
		Cycle:     res.Cycle,
		Grid:      g.grid,
		Particles: res.Particles,
		Estimate:  res.Estimate,
		Truth:     res.Truth,
	})
	if err != nil {
		slog.Error("failed to plot map", "error", err)
		return
	}
	slog.Debug("map plotted", "path", path)
}

// writeFinalPlots renders the last map, unless already plotted, and the error history.
func (g *Game) writeFinalPlots() {
	if g.plotter == nil {
		return
	}
	every := g.cfg.Telemetry.PlotEvery
	if g.hasLast && (every <= 0 || g.cycle%every != 0) {
		g.plotMap(g.last)
	}
	if _, err := g.plotter.PlotError(g.history); err != nil {
		slog.Error("failed to plot error history", "error", err)
	}
}
