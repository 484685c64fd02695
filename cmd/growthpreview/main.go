// Population growth preview tool - interactive visualization with sliders.
//
// Usage: go run ./cmd/growthpreview
package main

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/thronglets/config"
	"github.com/pthm-cable/thronglets/game"
	"github.com/pthm-cable/thronglets/telemetry"
)

const (
	windowWidth  = 1000
	windowHeight = 780
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30

	// Runaway growth guard for preview runs
	previewPopCap = 2000
)

// GrowthParams holds the tunable growth parameters.
type GrowthParams struct {
	IntervalMeanMS  float32
	GainPerFood     float32
	EnergyMax       float32
	ReplicationCost float32
	SpawnIntervalMS float32
	InitialFood     int
	InitialPop      int
	DurationSec     int
	Seed            int64
}

func defaultParams() GrowthParams {
	cfg := config.Cfg()
	return GrowthParams{
		IntervalMeanMS:  float32(cfg.Replication.IntervalMeanMS),
		GainPerFood:     float32(cfg.Energy.GainPerFood),
		EnergyMax:       float32(cfg.Energy.Max),
		ReplicationCost: float32(cfg.Energy.ReplicationCost),
		SpawnIntervalMS: float32(cfg.Food.SpawnIntervalMS),
		InitialFood:     cfg.Food.InitialCount,
		InitialPop:      cfg.Agent.InitialPopulation,
		DurationSec:     30,
		Seed:            12345,
	}
}

func main() {
	config.MustInit("")

	rl.InitWindow(windowWidth, windowHeight, "Thronglet Growth Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := defaultParams()

	// Run initial simulation
	windows := runPreview(params)
	needsRerun := false

	for !rl.WindowShouldClose() {
		if needsRerun {
			windows = runPreview(params)
			needsRerun = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		drawCurves(windows)

		// Draw stats
		statsY := int32(previewSize + 25)
		if len(windows) > 0 {
			last := windows[len(windows)-1]
			births := 0
			for _, w := range windows {
				births += w.Births
			}
			rl.DrawText(fmt.Sprintf("Final: %d thronglets, %d food  Births: %d",
				last.Population, last.FoodCount, births), 15, statsY, 16, rl.DarkGray)
		}
		rl.DrawText(fmt.Sprintf("Seed: %d", params.Seed), 15, statsY+20, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Growth Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		// Replication interval slider
		rl.DrawText("Replication interval mean (ms)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newInterval := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"500", "20000",
			params.IntervalMeanMS, 500, 20000,
		)
		rl.DrawText(fmt.Sprintf("%.0f", params.IntervalMeanMS), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newInterval != params.IntervalMeanMS {
			params.IntervalMeanMS = newInterval
			needsRerun = true
		}
		panelY += 35

		// Energy gain slider
		rl.DrawText("Energy gain per food", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newGain := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"5", "60",
			params.GainPerFood, 5, 60,
		)
		rl.DrawText(fmt.Sprintf("%.1f", params.GainPerFood), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newGain != params.GainPerFood {
			params.GainPerFood = newGain
			needsRerun = true
		}
		panelY += 35

		// Max energy slider
		rl.DrawText("Max energy", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newMax := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"50", "200",
			params.EnergyMax, 50, 200,
		)
		rl.DrawText(fmt.Sprintf("%.0f", params.EnergyMax), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newMax != params.EnergyMax {
			params.EnergyMax = newMax
			needsRerun = true
		}
		panelY += 35

		// Replication cost slider
		rl.DrawText("Replication energy cost", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newCost := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"10", "100",
			params.ReplicationCost, 10, 100,
		)
		rl.DrawText(fmt.Sprintf("%.1f", params.ReplicationCost), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newCost != params.ReplicationCost {
			params.ReplicationCost = newCost
			needsRerun = true
		}
		panelY += 35

		// Food spawn interval slider
		rl.DrawText("Food spawn interval (ms)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSpawn := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"200", "10000",
			params.SpawnIntervalMS, 200, 10000,
		)
		rl.DrawText(fmt.Sprintf("%.0f", params.SpawnIntervalMS), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newSpawn != params.SpawnIntervalMS {
			params.SpawnIntervalMS = newSpawn
			needsRerun = true
		}
		panelY += 35

		// Initial food slider
		rl.DrawText("Initial food count", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newFood := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "200",
			float32(params.InitialFood), 0, 200,
		)
		rl.DrawText(fmt.Sprintf("%d", params.InitialFood), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newFood) != params.InitialFood {
			params.InitialFood = int(newFood)
			needsRerun = true
		}
		panelY += 35

		// Initial population slider
		rl.DrawText("Initial population", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newPop := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"1", "100",
			float32(params.InitialPop), 1, 100,
		)
		rl.DrawText(fmt.Sprintf("%d", params.InitialPop), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newPop) != params.InitialPop {
			params.InitialPop = int(newPop)
			needsRerun = true
		}
		panelY += 35

		// Duration slider
		rl.DrawText("Simulated duration (s)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newDur := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"10", "120",
			float32(params.DurationSec), 10, 120,
		)
		rl.DrawText(fmt.Sprintf("%d", params.DurationSec), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newDur) != params.DurationSec {
			params.DurationSec = int(newDur)
			needsRerun = true
		}
		panelY += 45

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Rerun") {
			needsRerun = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = int64(rl.GetRandomValue(0, 99999))
			needsRerun = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams()
			needsRerun = true
		}
		panelY += 55

		// Output YAML
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yamlLines := []string{
			"energy:",
			fmt.Sprintf("  max: %.0f", params.EnergyMax),
			fmt.Sprintf("  gain_per_food: %.1f", params.GainPerFood),
			fmt.Sprintf("  replication_cost: %.1f", params.ReplicationCost),
			"replication:",
			fmt.Sprintf("  interval_mean_ms: %.0f", params.IntervalMeanMS),
			"food:",
			fmt.Sprintf("  initial_count: %d", params.InitialFood),
			fmt.Sprintf("  spawn_interval_ms: %.0f", params.SpawnIntervalMS),
		}
		for _, line := range yamlLines {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		// Instructions
		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)

		// Copy to clipboard on C key
		if rl.IsKeyPressed(rl.KeyC) {
			yaml := fmt.Sprintf(`energy:
  max: %.0f
  gain_per_food: %.1f
  replication_cost: %.1f
replication:
  interval_mean_ms: %.0f
food:
  initial_count: %d
  spawn_interval_ms: %.0f`,
				params.EnergyMax, params.GainPerFood, params.ReplicationCost,
				params.IntervalMeanMS, params.InitialFood, params.SpawnIntervalMS)
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
	}
}

// runPreview executes a short headless run and returns its stats windows.
func runPreview(params GrowthParams) []telemetry.WindowStats {
	cfg := *config.Cfg()
	cfg.Energy.Max = float64(params.EnergyMax)
	cfg.Energy.GainPerFood = float64(params.GainPerFood)
	cfg.Energy.ReplicationCost = float64(params.ReplicationCost)
	if cfg.Energy.ReplicationCost > cfg.Energy.Max {
		cfg.Energy.ReplicationCost = cfg.Energy.Max
	}
	cfg.Replication.IntervalMeanMS = float64(params.IntervalMeanMS)
	cfg.Food.InitialCount = params.InitialFood
	cfg.Food.SpawnIntervalMS = float64(params.SpawnIntervalMS)
	cfg.Agent.InitialPopulation = params.InitialPop

	var windows []telemetry.WindowStats
	g := game.NewGameWithOptions(game.Options{
		Seed:           params.Seed,
		Headless:       true,
		StatsWindowSec: 1.0,
		StepsPerUpdate: 1,
		Config:         &cfg,
		StatsCallback: func(ws telemetry.WindowStats) {
			windows = append(windows, ws)
		},
	})

	maxTicks := int32(params.DurationSec * cfg.Screen.TargetFPS)
	for g.Tick() < maxTicks {
		g.UpdateHeadless()

		if g.Count() >= previewPopCap {
			break
		}
	}
	g.Unload()

	return windows
}

// drawCurves plots population (green) and food (orange) over time.
func drawCurves(windows []telemetry.WindowStats) {
	rl.DrawRectangle(10, 10, previewSize, previewSize, rl.Color{R: 30, G: 30, B: 30, A: 255})
	rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

	if len(windows) < 2 {
		rl.DrawText("not enough data", 20, 20, 16, rl.Gray)
		return
	}

	maxY := 1
	for _, w := range windows {
		if w.Population > maxY {
			maxY = w.Population
		}
		if w.FoodCount > maxY {
			maxY = w.FoodCount
		}
	}

	// Horizontal gridlines at quarter heights
	for q := 1; q <= 3; q++ {
		y := int32(10 + previewSize - q*previewSize/4)
		rl.DrawLine(10, y, 10+previewSize, y, rl.Color{R: 60, G: 60, B: 60, A: 255})
		rl.DrawText(fmt.Sprintf("%d", maxY*q/4), 14, y-14, 12, rl.Gray)
	}

	plot := func(value func(telemetry.WindowStats) int, color rl.Color) {
		n := len(windows)
		for i := 1; i < n; i++ {
			x0 := float32(10) + float32(i-1)/float32(n-1)*previewSize
			x1 := float32(10) + float32(i)/float32(n-1)*previewSize
			y0 := float32(10+previewSize) - float32(value(windows[i-1]))/float32(maxY)*previewSize
			y1 := float32(10+previewSize) - float32(value(windows[i]))/float32(maxY)*previewSize
			rl.DrawLineEx(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, 2, color)
		}
	}

	plot(func(w telemetry.WindowStats) int { return w.FoodCount }, rl.Color{R: 224, G: 188, B: 90, A: 255})
	plot(func(w telemetry.WindowStats) int { return w.Population }, rl.Color{R: 100, G: 200, B: 100, A: 255})

	// Legend
	rl.DrawText("population", 20, 20, 14, rl.Color{R: 100, G: 200, B: 100, A: 255})
	rl.DrawText("food", 20, 38, 14, rl.Color{R: 224, G: 188, B: 90, A: 255})
}
