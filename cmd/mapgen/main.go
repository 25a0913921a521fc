// Map generator preview - interactive OpenSimplex cave maps with sliders.
// The chosen generator block is printed as YAML on exit.
//
// Usage: go run ./cmd/mapgen [-config path]
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/slamsim/camera"
	"github.com/pthm-cable/slamsim/config"
	"github.com/pthm-cable/slamsim/renderer"
	"github.com/pthm-cable/slamsim/systems"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 640
	panelWidth   = windowWidth - previewSize - 30
)

// generatorBlock mirrors the world.generator section of the config file.
type generatorBlock struct {
	World struct {
		Generator config.GeneratorConfig `yaml:"generator"`
	} `yaml:"world"`
}

func main() {
	configPath := flag.String("config", "", "Config YAML file providing the starting values")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	initial := cfg.World.Generator
	if initial.Seed == 0 {
		initial.Seed = 1
	}
	params := initial

	rl.InitWindow(windowWidth, windowHeight, "Map Generator Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	rows, cols := cfg.World.Rows, cfg.World.Cols
	cam := camera.New(previewSize, previewSize, float32(cols), float32(rows))
	mapRenderer := renderer.NewMapRenderer()
	defer mapRenderer.Unload()

	var world *systems.WorldMap
	needsRegen := true

	for !rl.WindowShouldClose() {
		if needsRegen {
			world = generate(cfg, params)
			mapRenderer.Unload()
			mapRenderer.Init(world)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		mapRenderer.Draw(cam)
		rl.DrawRectangleLines(0, 0, previewSize, previewSize, rl.DarkGray)

		statsY := int32(previewSize + 15)
		rl.DrawText(fmt.Sprintf("%dx%d cells  occupied: %.1f%%  free cells: %d",
			rows, cols, world.OccupancyFraction()*100, len(world.LegalCells())), 15, statsY, 16, rl.DarkGray)

		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Generator Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		changed := false
		params.NoiseScale, changed = sliderF(&panelY, panelX, "Noise scale (base frequency)", params.NoiseScale, 0.005, 0.2, "%.3f", changed)
		params.Octaves, changed = sliderI(&panelY, panelX, "Octaves", params.Octaves, 1, 6, changed)
		params.Lacunarity, changed = sliderF(&panelY, panelX, "Lacunarity (frequency multiplier)", params.Lacunarity, 1.5, 4.0, "%.2f", changed)
		params.Gain, changed = sliderF(&panelY, panelX, "Gain (amplitude multiplier)", params.Gain, 0.2, 0.9, "%.2f", changed)
		params.Threshold, changed = sliderF(&panelY, panelX, "Threshold (higher = fewer walls)", params.Threshold, 0.3, 0.9, "%.3f", changed)
		params.Border, changed = sliderI(&panelY, panelX, "Border (cells)", params.Border, 0, 8, changed)
		seed, seedChanged := sliderI(&panelY, panelX, "Seed", int(params.Seed), 1, 99999, false)
		if seedChanged {
			params.Seed = int64(seed)
			changed = true
		}
		needsRegen = changed
		panelY += 10

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = int64(rl.GetRandomValue(1, 99999))
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = initial
			needsRegen = true
		}
		panelY += 55

		text, err := generatorYAML(params)
		if err != nil {
			text = err.Error()
		}
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		rl.DrawText(text, int32(panelX), int32(panelY), 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(text)
		}

		rl.EndDrawing()
	}

	text, err := generatorYAML(params)
	if err != nil {
		log.Fatalf("failed to encode generator: %v", err)
	}
	fmt.Fprint(os.Stdout, text)
}

// generate builds the preview map.
func generate(cfg *config.Config, g config.GeneratorConfig) *systems.WorldMap {
	return systems.GenerateWorldMap(cfg.World.Rows, cfg.World.Cols, cfg.World.Scale, systems.GeneratorParams{
		NoiseScale: g.NoiseScale,
		Octaves:    g.Octaves,
		Lacunarity: g.Lacunarity,
		Gain:       g.Gain,
		Threshold:  g.Threshold,
		Border:     g.Border,
	}, g.Seed)
}

// generatorYAML renders params as a world.generator block.
func generatorYAML(g config.GeneratorConfig) (string, error) {
	var block generatorBlock
	block.World.Generator = g
	out, err := yaml.Marshal(&block)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// sliderF draws a labelled float slider and advances y.
func sliderF(y *float32, x float32, label string, value, lo, hi float64, format string, changed bool) (float64, bool) {
	rl.DrawText(label, int32(x), int32(*y), 14, rl.Gray)
	*y += 18
	next := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: float32(panelWidth - 80), Height: 20},
		"", "",
		float32(value), float32(lo), float32(hi),
	)
	rl.DrawText(fmt.Sprintf(format, value), int32(x+float32(panelWidth-70)), int32(*y+2), 16, rl.DarkGray)
	*y += 35
	if next != float32(value) {
		return math.Round(float64(next)*1e4) / 1e4, true
	}
	return value, changed
}

// sliderI draws a labelled integer slider and advances y.
func sliderI(y *float32, x float32, label string, value, lo, hi int, changed bool) (int, bool) {
	rl.DrawText(label, int32(x), int32(*y), 14, rl.Gray)
	*y += 18
	next := int(gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: float32(panelWidth - 80), Height: 20},
		"", "",
		float32(value), float32(lo), float32(hi),
	))
	rl.DrawText(fmt.Sprintf("%d", value), int32(x+float32(panelWidth-70)), int32(*y+2), 16, rl.DarkGray)
	*y += 35
	if next != value {
		return next, true
	}
	return value, changed
}
