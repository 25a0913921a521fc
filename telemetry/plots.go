package telemetry

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/pthm-cable/slamsim/components"
)

// OccupancySource is the read side of an occupancy grid.
type OccupancySource interface {
	Dims() (rows, cols int)
	At(row, col int) float64
}

// MapFrame is everything drawn on one map plot.
type MapFrame struct {
	Cycle     int
	Grid      OccupancySource
	Particles []components.Cell
	Estimate  components.Point
	Truth     components.Cell
}

// Plotter renders PNG plots of the filter state into a directory.
type Plotter struct {
	dir string
}

// NewPlotter creates the plot directory. Returns nil if dir is empty (plots disabled).
func NewPlotter(dir string) (*Plotter, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating plot directory: %w", err)
	}
	return &Plotter{dir: dir}, nil
}

// gridXYZ adapts an occupancy grid to plotter.GridXYZ with row 0 at the top.
type gridXYZ struct {
	src        OccupancySource
	rows, cols int
}

func (g gridXYZ) Dims() (c, r int)   { return g.cols, g.rows }
func (g gridXYZ) Z(c, r int) float64 { return g.src.At(g.rows-1-r, c) }
func (g gridXYZ) X(c int) float64    { return float64(c) }
func (g gridXYZ) Y(r int) float64    { return float64(r) }

// flipRow converts a grid row to the plot's upward Y axis.
func flipRow(rows int, row float64) float64 {
	return float64(rows-1) - row
}

// PlotMap draws the occupancy grid with particles, the estimate and the true
// pose on top, and returns the written file path.
func (p *Plotter) PlotMap(f MapFrame) (string, error) {
	if p == nil {
		return "", nil
	}
	rows, cols := f.Grid.Dims()

	plt := plot.New()
	plt.Title.Text = fmt.Sprintf("Occupancy and belief, cycle %d", f.Cycle)
	plt.X.Label.Text = "col"
	plt.Y.Label.Text = "row (flipped)"

	hm := plotter.NewHeatMap(gridXYZ{src: f.Grid, rows: rows, cols: cols}, palette.Heat(16, 1))
	hm.Min, hm.Max = 0, 1
	plt.Add(hm)

	if len(f.Particles) > 0 {
		pts := make(plotter.XYs, len(f.Particles))
		for i, c := range f.Particles {
			pts[i].X = float64(c.Col)
			pts[i].Y = flipRow(rows, float64(c.Row))
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return "", fmt.Errorf("particle scatter: %w", err)
		}
		s.GlyphStyle.Color = color.RGBA{R: 30, G: 90, B: 255, A: 255}
		s.GlyphStyle.Radius = vg.Points(1)
		plt.Add(s)
	}

	est, err := plotter.NewScatter(plotter.XYs{{X: f.Estimate.Col, Y: flipRow(rows, f.Estimate.Row)}})
	if err != nil {
		return "", fmt.Errorf("estimate scatter: %w", err)
	}
	est.GlyphStyle.Color = color.RGBA{R: 255, B: 255, A: 255}
	est.GlyphStyle.Shape = draw.CrossGlyph{}
	est.GlyphStyle.Radius = vg.Points(5)
	plt.Add(est)

	truth, err := plotter.NewScatter(plotter.XYs{{X: float64(f.Truth.Col), Y: flipRow(rows, float64(f.Truth.Row))}})
	if err != nil {
		return "", fmt.Errorf("truth scatter: %w", err)
	}
	truth.GlyphStyle.Color = color.RGBA{G: 200, A: 255}
	truth.GlyphStyle.Shape = draw.CircleGlyph{}
	truth.GlyphStyle.Radius = vg.Points(4)
	plt.Add(truth)
	plt.Legend.Add("estimate", est)
	plt.Legend.Add("truth", truth)

	plt.X.Min, plt.X.Max = 0, float64(cols-1)
	plt.Y.Min, plt.Y.Max = 0, float64(rows-1)

	name := filepath.Join(p.dir, fmt.Sprintf("map_%05d.png", f.Cycle))
	if err := plt.Save(8*vg.Inch, 8*vg.Inch*vg.Length(rows)/vg.Length(max(cols, 1)), name); err != nil {
		return "", fmt.Errorf("saving map plot: %w", err)
	}
	return name, nil
}

// PlotError draws localization error and particle spread over time.
func (p *Plotter) PlotError(cycles []CycleStats) (string, error) {
	if p == nil {
		return "", nil
	}

	plt := plot.New()
	plt.Title.Text = "Localization error"
	plt.X.Label.Text = "cycle"
	plt.Y.Label.Text = "distance"
	plt.Add(plotter.NewGrid())

	errPts := make(plotter.XYs, len(cycles))
	spreadPts := make(plotter.XYs, len(cycles))
	for i, c := range cycles {
		errPts[i] = plotter.XY{X: float64(c.Cycle), Y: c.Error}
		spreadPts[i] = plotter.XY{X: float64(c.Cycle), Y: c.Spread}
	}

	if len(cycles) > 0 {
		errLine, err := plotter.NewLine(errPts)
		if err != nil {
			return "", fmt.Errorf("error line: %w", err)
		}
		errLine.Color = color.RGBA{R: 220, A: 255}
		errLine.Width = vg.Points(1)
		plt.Add(errLine)
		plt.Legend.Add("error", errLine)

		spreadLine, err := plotter.NewLine(spreadPts)
		if err != nil {
			return "", fmt.Errorf("spread line: %w", err)
		}
		spreadLine.Color = color.RGBA{B: 220, A: 255}
		spreadLine.Width = vg.Points(1)
		spreadLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		plt.Add(spreadLine)
		plt.Legend.Add("spread", spreadLine)
	}

	name := filepath.Join(p.dir, "error.png")
	if err := plt.Save(10*vg.Inch, 4*vg.Inch, name); err != nil {
		return "", fmt.Errorf("saving error plot: %w", err)
	}
	return name, nil
}
