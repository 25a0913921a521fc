package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slamsim/bridge"
	"github.com/pthm-cable/slamsim/config"
	"github.com/pthm-cable/slamsim/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, plots and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxSteps := flag.Int("max-steps", 0, "Stop after N cycles (0 = unlimited)")
	commands := flag.String("commands", "", "Command script for headless runs (empty = random walk)")
	useMQTT := flag.Bool("mqtt", false, "Take commands from and publish state to the configured MQTT broker")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Autopilot cycles per frame in graphical mode")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:           rngSeed,
		Headless:       *headless,
		OutputDir:      *outputDir,
		LogStats:       *logStats,
		StepsPerUpdate: *stepsPerUpdate,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *headless {
		if err := runHeadless(ctx, cfg, opts, *commands, *maxSteps, *useMQTT); err != nil {
			slog.Error("headless run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "slamsim")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(cfg, opts)
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	if *useMQTT {
		closeBridge, err := attachBridge(ctx, g, cfg, true)
		if err != nil {
			slog.Error("mqtt bridge unavailable", "error", err)
		} else {
			defer closeBridge()
		}
	}

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		g.Update()
		g.Draw()

		if *maxSteps > 0 && g.Cycle() >= *maxSteps {
			break
		}
	}
	g.LogSummary()
}

// runHeadless drives the simulation from a script, the MQTT command topic or
// the built-in random walk until the source ends or maxSteps is reached.
func runHeadless(ctx context.Context, cfg *config.Config, opts game.Options, script string, maxSteps int, useMQTT bool) error {
	g, err := game.NewGameWithOptions(cfg, opts)
	if err != nil {
		return err
	}
	defer g.Unload()

	var src game.CommandSource = g.Walker()
	switch {
	case script != "":
		s, err := game.OpenScript(script)
		if err != nil {
			return err
		}
		defer s.Close()
		src = s
		if useMQTT {
			closeBridge, err := attachBridge(ctx, g, cfg, false)
			if err != nil {
				return err
			}
			defer closeBridge()
		}
	case useMQTT:
		client, err := bridge.Connect(cfg.MQTT)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
		sub, err := bridge.NewCommandSubscriber(client, cfg.MQTT.CommandTopic, cfg.MQTT.QoS)
		if err != nil {
			return err
		}
		defer sub.Close()
		g.AddObserver(bridge.NewStatePublisher(client, cfg.MQTT.StateTopic, cfg.MQTT.QoS, g.RunID(), g.World().Scale()))
		src = sub
	}

	slog.Info("starting headless simulation", "seed", opts.Seed, "max_steps", maxSteps)
	err = g.RunHeadless(ctx, src, maxSteps)
	g.LogSummary()
	if errors.Is(err, context.Canceled) {
		slog.Info("interrupted", "cycle", g.Cycle())
		return nil
	}
	return err
}

// attachBridge connects to the broker and publishes every cycle. With
// commands set, the command topic also feeds the game.
func attachBridge(ctx context.Context, g *game.Game, cfg *config.Config, commands bool) (func(), error) {
	client, err := bridge.Connect(cfg.MQTT)
	if err != nil {
		return nil, err
	}
	g.AddObserver(bridge.NewStatePublisher(client, cfg.MQTT.StateTopic, cfg.MQTT.QoS, g.RunID(), g.World().Scale()))

	var sub *bridge.CommandSubscriber
	if commands {
		sub, err = bridge.NewCommandSubscriber(client, cfg.MQTT.CommandTopic, cfg.MQTT.QoS)
		if err != nil {
			client.Disconnect(250)
			return nil, err
		}
		g.AttachSource(ctx, sub)
	}
	return func() {
		if sub != nil {
			sub.Close()
		}
		client.Disconnect(250)
	}, nil
}
