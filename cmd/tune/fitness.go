package main

import (
	"context"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/slamsim/config"
	"github.com/pthm-cable/slamsim/game"
)

// mapWeight scales the final map error (a probability in [0,1]) against the
// pose error (in steps).
const mapWeight = 2.0

// FitnessEvaluator runs headless random-walk simulations and scores them.
type FitnessEvaluator struct {
	params     *ParamVector
	maxSteps   int
	seeds      []int64
	baseConfig *config.Config

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	last        runResult
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxSteps int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxSteps:    maxSteps,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// runResult holds the outcome of one or more simulation runs.
type runResult struct {
	poseError float64 // mean estimate error, in steps
	finalErr  float64 // estimate error after the last cycle, in steps
	mapError  float64 // mean |occupancy - truth| at the end
	err       error
}

// Last returns the averaged result of the most recent evaluation.
func (fe *FitnessEvaluator) Last() (poseError, finalErr, mapError float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last.poseError, fe.last.finalErr, fe.last.mapError
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var pose, final, mapErr []float64
	for _, r := range results {
		if r.err != nil {
			// A configuration that cannot run is worse than any that can.
			return math.Inf(1)
		}
		pose = append(pose, r.poseError)
		final = append(final, r.finalErr)
		mapErr = append(mapErr, r.mapError)
	}
	avg := runResult{
		poseError: stat.Mean(pose, nil),
		finalErr:  stat.Mean(final, nil),
		mapError:  stat.Mean(mapErr, nil),
	}
	fitness := computeFitness(avg)

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
	}
	fe.last = avg
	fe.mu.Unlock()

	return fitness
}

// runSimulation executes a single headless run driven by the game's random walk.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	g, err := game.NewGameWithOptions(cfg, game.Options{
		Seed:     seed,
		Headless: true,
		RunID:    fmt.Sprintf("tune-%d", seed),
	})
	if err != nil {
		return runResult{err: err}
	}
	defer g.Unload()

	step := float64(cfg.Robot.Step) * g.World().Scale()
	errs := make([]float64, 0, fe.maxSteps)
	g.AddObserver(game.ObserverFunc(func(r game.CycleResult) {
		errs = append(errs, r.Error/step)
	}))

	if err := g.RunHeadless(context.Background(), g.Walker(), fe.maxSteps); err != nil {
		return runResult{err: err}
	}
	if len(errs) == 0 {
		return runResult{err: fmt.Errorf("seed %d: no cycles ran", seed)}
	}
	return runResult{
		poseError: stat.Mean(errs, nil),
		finalErr:  errs[len(errs)-1],
		mapError:  g.Grid().MeanAbsError(g.World()),
	}
}

// copyConfig returns a copy of the base config with output disabled.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Telemetry.Plots = false
	return &cfg
}

// computeFitness weights the late error above the running mean so that
// configurations which converge and stay converged score best.
func computeFitness(r runResult) float64 {
	return 0.5*r.poseError + 0.5*r.finalErr + mapWeight*r.mapError
}
