package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pthm-cable/slamsim/components"
	"github.com/pthm-cable/slamsim/telemetry"
)

// CycleResult is everything observable about one completed cycle.
// Error and Spread are in physical units.
type CycleResult struct {
	Cycle      int
	Direction  Direction
	Command    components.Command
	Legal      bool
	Odometry   components.Displacement
	Truth      components.Cell
	Estimate   components.Point
	Scan       components.Scan
	Particles  []components.Cell
	Error      float64
	Spread     float64
	ESS        float64
	Degenerate bool
	MapUpdates int
}

// Observer is notified synchronously after every cycle.
type Observer interface {
	OnCycle(r CycleResult)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(CycleResult)

// OnCycle calls f(r).
func (f ObserverFunc) OnCycle(r CycleResult) { f(r) }

// Step runs one full cycle: move the robot, propagate the particles on a
// legal move, sense from the true pose, weight and resample, then update the
// map. A rejected move still senses and weights.
func (g *Game) Step(dir Direction) CycleResult {
	g.perf.StartCycle()

	g.perf.StartPhase(telemetry.PhaseOdometry)
	cmd := dir.Delta(g.cfg.Robot.Step)
	disp, legal := g.odometry.UpdatePosition(cmd)
	if !legal {
		slog.Debug("move rejected", "cycle", g.cycle+1, "direction", dir.String())
	}

	g.perf.StartPhase(telemetry.PhaseMotion)
	if legal {
		g.filter.MoveParticles(disp)
	}

	g.perf.StartPhase(telemetry.PhaseSense)
	truth := g.odometry.ActualPosition()
	scan := g.sensor.NoisyDistances(truth)

	g.perf.StartPhase(telemetry.PhaseWeight)
	g.filter.WeightParticles(scan)

	g.perf.StartPhase(telemetry.PhaseMap)
	updates := g.grid.UpdateMap(g.sensor.Angles(), scan)

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.cycle++
	scale := g.world.Scale()
	est := g.filter.SupposedLocation()
	res := CycleResult{
		Cycle:      g.cycle,
		Direction:  dir,
		Command:    cmd,
		Legal:      legal,
		Odometry:   disp,
		Truth:      truth,
		Estimate:   est,
		Scan:       scan,
		Particles:  g.filter.Locations(),
		Error:      est.Distance(truth.Point()) * scale,
		Spread:     g.filter.StdDev() * scale,
		ESS:        g.filter.EffectiveSampleSize(),
		Degenerate: g.filter.Degenerate(),
		MapUpdates: updates,
	}
	g.recordCycle(res)
	g.perf.EndCycle()

	g.last, g.hasLast = res, true
	for _, o := range g.observers {
		o.OnCycle(res)
	}
	return res
}

// RunHeadless steps the simulation with commands from src until src is
// exhausted, maxSteps cycles have run (0 = unlimited) or ctx ends.
func (g *Game) RunHeadless(ctx context.Context, src CommandSource, maxSteps int) error {
	slog.Info("starting headless run", "run_id", g.runID, "max_steps", maxSteps)

	for maxSteps <= 0 || g.cycle < maxSteps {
		dir, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			slog.Info("command source exhausted", "cycle", g.cycle)
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading command: %w", err)
		}
		g.Step(dir)
	}

	slog.Info("max steps reached", "cycle", g.cycle)
	return nil
}
