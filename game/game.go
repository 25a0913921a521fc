package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pthm-cable/slamsim/camera"
	"github.com/pthm-cable/slamsim/components"
	"github.com/pthm-cable/slamsim/config"
	"github.com/pthm-cable/slamsim/renderer"
	"github.com/pthm-cable/slamsim/systems"
	"github.com/pthm-cable/slamsim/telemetry"
	"github.com/pthm-cable/slamsim/ui"
)

// RNG streams. Each component draws from its own stream so that changing one
// component's consumption does not perturb the others.
const (
	streamStart uint64 = iota + 1
	streamOdometry
	streamSensor
	streamFilter
	streamWalk
)

// walkHold is the longest run of identical autopilot commands.
const walkHold = 6

// Options configures a game instance.
type Options struct {
	Seed           int64
	Headless       bool
	OutputDir      string // empty = no CSV or plot output
	LogStats       bool
	StepsPerUpdate int    // autopilot cycles per frame in graphical mode
	RunID          string // empty = new UUID
}

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	opts  Options
	runID string

	world    *systems.WorldMap
	odometry *systems.Odometry
	sensor   *systems.RangeSensor
	filter   *systems.ParticleFilter
	grid     *systems.OccupancyGrid

	cycle     int
	last      CycleResult
	hasLast   bool
	observers []Observer

	// Telemetry
	collector     *telemetry.Collector
	perf          *telemetry.PerfCollector
	bookmarks     *telemetry.BookmarkDetector
	outputManager *telemetry.OutputManager
	plotter       *telemetry.Plotter
	history       []telemetry.CycleStats
	lastWindow    telemetry.WindowStats
	logStats      bool

	// Interactive control
	walker         *RandomWalk
	remote         chan Direction
	pending        Direction
	hasPending     bool
	paused         bool
	autopilot      bool
	stepsPerUpdate int

	// Rendering (nil in headless mode)
	camera             *camera.Camera
	backgroundRenderer *renderer.BackgroundRenderer
	mapRenderer        *renderer.MapRenderer
	occupancyRenderer  *renderer.OccupancyRenderer
	particleRenderer   *renderer.ParticleRenderer
	overlays           *ui.OverlayRegistry
	hud                *ui.HUD
	perfPanel          *ui.PerfPanel
	phases             *telemetry.PhaseRegistry
	controlsPanel      *ui.ControlsPanel
	quickStats         *ui.QuickStatsPanel
	inspector          *ui.Inspector
	showPerf           bool
	showInspector      bool
	screenWidth        float32
	screenHeight       float32
}

// NewGameWithOptions builds the map, odometry, sensor, filter and mapper
// from cfg. In graphical mode the raylib window must already be open.
func NewGameWithOptions(cfg *config.Config, opts Options) (*Game, error) {
	if opts.StepsPerUpdate < 1 {
		opts.StepsPerUpdate = 1
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	world, err := buildWorld(cfg, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("building world: %w", err)
	}

	start, err := pickStart(world, cfg.Robot.StartRow, cfg.Robot.StartCol, newRNG(opts.Seed, streamStart))
	if err != nil {
		return nil, err
	}

	odometry, err := systems.NewOdometry(world, start, cfg.Odometry.Error, newRNG(opts.Seed, streamOdometry))
	if err != nil {
		return nil, fmt.Errorf("placing robot: %w", err)
	}

	sensor := systems.NewRangeSensor(world, systems.SensorParams{
		MaxRange:      cfg.Sensor.MaxRange,
		ApertureDeg:   cfg.Sensor.Aperture,
		ResolutionDeg: cfg.Sensor.Resolution,
		Noise:         cfg.Sensor.Noise,
	}, newRNG(opts.Seed, streamSensor))

	resampling, err := systems.ParseResampling(cfg.Filter.Resampling)
	if err != nil {
		return nil, fmt.Errorf("configuring filter: %w", err)
	}
	filter := systems.NewParticleFilter(world, sensor, systems.FilterParams{
		MotionNoise:     cfg.Filter.MotionNoise,
		LikelihoodNoise: cfg.Filter.LikelihoodNoise,
		Resampling:      resampling,
		Workers:         cfg.Filter.Workers,
	}, newRNG(opts.Seed, streamFilter))

	var particles int
	if cfg.Derived.Localize {
		particles = filter.InitializeParticles(cfg.Filter.Particles)
	} else {
		particles = filter.InitializeAt(start, cfg.Filter.Particles)
	}
	if particles < cfg.Filter.Particles {
		slog.Info("particle count capped by free cells", "requested", cfg.Filter.Particles, "used", particles)
	}

	prior := cfg.Mapper.Prior
	if prior < 0 {
		prior = world.OccupancyFraction()
	}
	rows, cols := world.Dims()
	grid := systems.NewOccupancyGrid(rows, cols, prior, systems.MapperParams{
		LearningRate: cfg.Mapper.LearningRate,
		SensorNoise:  cfg.Mapper.SensorNoise,
		Scale:        world.Scale(),
		MaxRange:     cfg.Sensor.MaxRange,
		SkipMargin:   cfg.Mapper.SkipMargin,
		SpanSigmas:   cfg.Mapper.SpanSigmas,
	}, filter)

	g := &Game{
		cfg:            cfg,
		opts:           opts,
		runID:          runID,
		world:          world,
		odometry:       odometry,
		sensor:         sensor,
		filter:         filter,
		grid:           grid,
		collector:      telemetry.NewCollector(runID, cfg.Telemetry.StatsWindow),
		perf:           telemetry.NewPerfCollector(cfg.Telemetry.StatsWindow),
		bookmarks:      telemetry.NewBookmarkDetector(5, float64(cfg.Robot.Step)*world.Scale()),
		logStats:       opts.LogStats,
		stepsPerUpdate: opts.StepsPerUpdate,
		screenWidth:    cfg.Derived.ScreenW32,
		screenHeight:   cfg.Derived.ScreenH32,
	}
	g.walker = NewRandomWalk(newRNG(opts.Seed, streamWalk), walkHold)
	g.AddObserver(g.walker)

	if err := g.initOutput(); err != nil {
		filter.Close()
		return nil, err
	}

	slog.Info("simulation ready",
		"run_id", runID,
		"mode", cfg.Robot.Mode,
		"rows", rows,
		"cols", cols,
		"scale", world.Scale(),
		"free_cells", len(world.LegalCells()),
		"particles", particles,
		"prior", prior,
		"start_row", start.Row,
		"start_col", start.Col,
	)

	if !opts.Headless {
		g.initRendering()
	}
	return g, nil
}

// initOutput opens CSV and plot output when an output directory is set.
func (g *Game) initOutput() error {
	om, err := telemetry.NewOutputManager(g.opts.OutputDir)
	if err != nil {
		return err
	}
	if err := om.WriteConfig(g.cfg); err != nil {
		om.Close()
		return fmt.Errorf("writing config snapshot: %w", err)
	}
	g.outputManager = om

	if g.cfg.Telemetry.Plots && g.opts.OutputDir != "" {
		g.plotter, err = telemetry.NewPlotter(filepath.Join(g.opts.OutputDir, "plots"))
		if err != nil {
			om.Close()
			return err
		}
	}
	return nil
}

// buildWorld loads the configured map file or generates one from noise.
func buildWorld(cfg *config.Config, seed int64) (*systems.WorldMap, error) {
	w := cfg.World
	switch {
	case w.MapFile == "":
		genSeed := w.Generator.Seed
		if genSeed == 0 {
			genSeed = seed
		}
		return systems.GenerateWorldMap(w.Rows, w.Cols, w.Scale, systems.GeneratorParams{
			NoiseScale: w.Generator.NoiseScale,
			Octaves:    w.Generator.Octaves,
			Lacunarity: w.Generator.Lacunarity,
			Gain:       w.Generator.Gain,
			Threshold:  w.Generator.Threshold,
			Border:     w.Generator.Border,
		}, genSeed), nil
	case strings.EqualFold(filepath.Ext(w.MapFile), ".png"):
		return systems.LoadWorldMapPNG(w.MapFile, w.Scale)
	default:
		data, err := os.ReadFile(w.MapFile)
		if err != nil {
			return nil, fmt.Errorf("reading map file: %w", err)
		}
		return systems.ParseWorldMap(string(data), w.Scale)
	}
}

// pickStart returns the configured start cell, moved to the nearest free cell
// if it is blocked, or a random free cell when either coordinate is negative.
func pickStart(m *systems.WorldMap, row, col int, rng *rand.Rand) (components.Cell, error) {
	legal := m.LegalCells()
	if len(legal) == 0 {
		return components.Cell{}, fmt.Errorf("%w: map has no free cells", systems.ErrBlockedStart)
	}
	if row < 0 || col < 0 {
		return legal[rng.IntN(len(legal))], nil
	}

	want := components.Cell{Row: row, Col: col}
	got, _ := m.NearestLegal(want)
	if got != want {
		slog.Warn("start cell unusable, moved to nearest free cell",
			"row", row, "col", col, "new_row", got.Row, "new_col", got.Col)
	}
	return got, nil
}

func newRNG(seed int64, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), stream))
}

// AddObserver registers o to be notified after every cycle.
func (g *Game) AddObserver(o Observer) {
	g.observers = append(g.observers, o)
}

// AttachSource feeds commands from src into the interactive loop until ctx
// ends or src is exhausted. Commands are applied on the caller of Update.
func (g *Game) AttachSource(ctx context.Context, src CommandSource) {
	if g.remote == nil {
		g.remote = make(chan Direction, 16)
	}
	go func() {
		for {
			dir, err := src.Next(ctx)
			if err != nil {
				slog.Info("command source stopped", "error", err)
				return
			}
			select {
			case g.remote <- dir:
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Update handles input and runs at most one manual or remote command, or
// StepsPerUpdate autopilot cycles.
func (g *Game) Update() {
	g.handleInput()
	g.perf.RecordFrame()

	if g.hasPending {
		g.hasPending = false
		g.Step(g.pending)
		return
	}

	select {
	case dir := <-g.remote:
		g.Step(dir)
		return
	default:
	}

	if g.paused || !g.autopilot {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		dir, _ := g.walker.Next(context.Background())
		g.Step(dir)
	}
}

// Walker returns the built-in random walk. It is already registered as an
// observer, so it turns away from walls on its own.
func (g *Game) Walker() *RandomWalk {
	return g.walker
}

// Cycle returns the number of completed cycles.
func (g *Game) Cycle() int {
	return g.cycle
}

// RunID returns the run's unique identifier.
func (g *Game) RunID() string {
	return g.runID
}

// Mode returns the robot mode, localize or slam.
func (g *Game) Mode() string {
	return g.cfg.Robot.Mode
}

// World returns the ground-truth map.
func (g *Game) World() *systems.WorldMap {
	return g.world
}

// Filter returns the particle filter.
func (g *Game) Filter() *systems.ParticleFilter {
	return g.filter
}

// Grid returns the occupancy grid.
func (g *Game) Grid() *systems.OccupancyGrid {
	return g.grid
}

// Truth returns the robot's true pose.
func (g *Game) Truth() components.Cell {
	return g.odometry.ActualPosition()
}

// Last returns the most recent cycle result, if any.
func (g *Game) Last() (CycleResult, bool) {
	return g.last, g.hasLast
}

// LastWindow returns the most recently flushed telemetry window.
func (g *Game) LastWindow() telemetry.WindowStats {
	return g.lastWindow
}

// Unload flushes remaining telemetry, writes final plots and frees resources.
func (g *Game) Unload() {
	if g.collector.Pending() > 0 {
		g.flushTelemetry()
	}
	g.writeFinalPlots()

	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	g.filter.Close()
	g.unloadRendering()

	slog.Info("simulation finished", "run_id", g.runID, "cycles", g.cycle)
}
