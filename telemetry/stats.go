package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// CycleStats is the per-cycle record written to cycles.csv.
// Distances are in physical units.
type CycleStats struct {
	RunID      string  `csv:"run_id"`
	Cycle      int     `csv:"cycle"`
	Command    string  `csv:"command"`
	Legal      bool    `csv:"legal"`
	TrueRow    int     `csv:"true_row"`
	TrueCol    int     `csv:"true_col"`
	EstRow     float64 `csv:"est_row"`
	EstCol     float64 `csv:"est_col"`
	Error      float64 `csv:"error"`
	Spread     float64 `csv:"spread"`
	ESS        float64 `csv:"ess"`
	Particles  int     `csv:"particles"`
	Degenerate bool    `csv:"degenerate"`
	MapUpdates int     `csv:"map_updates"`
}

// WindowStats holds aggregated statistics for a window of cycles.
type WindowStats struct {
	RunID       string `csv:"run_id"`
	WindowStart int    `csv:"-"`
	WindowEnd   int    `csv:"window_end"`
	Cycles      int    `csv:"cycles"`

	IllegalMoves     int `csv:"illegal_moves"`
	DegenerateCycles int `csv:"degenerate_cycles"`

	// Localization error distribution over the window
	ErrorMean float64 `csv:"error_mean"`
	ErrorP10  float64 `csv:"error_p10"`
	ErrorP50  float64 `csv:"error_p50"`
	ErrorP90  float64 `csv:"error_p90"`

	SpreadMean float64 `csv:"spread_mean"`
	ESSMean    float64 `csv:"ess_mean"`

	// Occupancy grid mean absolute error against the true map at window end
	MapError float64 `csv:"map_error"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeErrorStats calculates mean and percentiles of a set of errors.
func ComputeErrorStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return mean, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStart),
		slog.Int("window_end", s.WindowEnd),
		slog.Int("cycles", s.Cycles),
		slog.Int("illegal_moves", s.IllegalMoves),
		slog.Int("degenerate_cycles", s.DegenerateCycles),
		slog.Float64("error_mean", s.ErrorMean),
		slog.Float64("error_p10", s.ErrorP10),
		slog.Float64("error_p50", s.ErrorP50),
		slog.Float64("error_p90", s.ErrorP90),
		slog.Float64("spread_mean", s.SpreadMean),
		slog.Float64("ess_mean", s.ESSMean),
		slog.Float64("map_error", s.MapError),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEnd,
		"cycles", s.Cycles,
		"illegal_moves", s.IllegalMoves,
		"degenerate_cycles", s.DegenerateCycles,
		"error_mean", s.ErrorMean,
		"error_p50", s.ErrorP50,
		"error_p90", s.ErrorP90,
		"spread_mean", s.SpreadMean,
		"ess_mean", s.ESSMean,
		"map_error", s.MapError,
	)
}
