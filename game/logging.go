package game

import (
	"log/slog"
	"time"
)

// logPerfStats logs average per-phase cycle timings.
func (g *Game) logPerfStats() {
	stats := g.perf.Stats()
	attrs := []any{
		"cycle", g.cycle,
		"avg_cycle", stats.AvgCycleDuration.Round(time.Microsecond),
		"cycles_per_sec", stats.CyclesPerSecond,
	}
	for name, avg := range stats.PhaseAvg {
		attrs = append(attrs, name, avg.Round(time.Microsecond))
	}
	slog.Info("perf", attrs...)
}

// logWorldState logs the filter and map state at the current cycle.
func (g *Game) logWorldState() {
	truth := g.odometry.ActualPosition()
	est := g.filter.SupposedLocation()
	scale := g.world.Scale()

	slog.Info("state",
		"cycle", g.cycle,
		"true_row", truth.Row,
		"true_col", truth.Col,
		"est_row", est.Row,
		"est_col", est.Col,
		"error", est.Distance(truth.Point())*scale,
		"spread", g.filter.StdDev()*scale,
		"ess", g.filter.EffectiveSampleSize(),
		"particles", g.filter.Len(),
		"map_error", g.grid.MeanAbsError(g.world),
	)
}

// LogSummary logs the end-of-run outcome.
func (g *Game) LogSummary() {
	g.logWorldState()
	slog.Info("run summary",
		"run_id", g.runID,
		"cycles", g.cycle,
		"converged", g.bookmarks.Converged(),
		"last_window_error_p50", g.lastWindow.ErrorP50,
		"last_window_map_error", g.lastWindow.MapError,
	)
	if g.logStats {
		g.logPerfStats()
	}
}
