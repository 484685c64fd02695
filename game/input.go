package game

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/thronglets/sim"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Simulation speed with < and > keys
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	// Manual snapshot
	if rl.IsKeyPressed(rl.KeyS) && g.snapshotDir != "" {
		g.saveSnapshot(nil)
	}

	// Camera: wheel zooms, middle drag pans, R resets
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.cam.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		delta := rl.GetMouseDelta()
		g.cam.Pan(-delta.X, -delta.Y)
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.cam.Reset()
	}

	// Left click places food at the cursor cell
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		mousePos := rl.GetMousePosition()
		wx, wy := g.cam.ScreenToWorld(mousePos.X, mousePos.Y)
		g.placeFoodAt(float64(wx), float64(wy))
	}

	// Right click makes the nearest thronglet drop food
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		mousePos := rl.GetMousePosition()
		wx, wy := g.cam.ScreenToWorld(mousePos.X, mousePos.Y)
		g.commandDropFood(float64(wx), float64(wy))
	}
}

// placeFoodAt adds a food cell at the given world position.
func (g *Game) placeFoodAt(x, y float64) {
	cx, cy := g.world.Clamp(x, y)
	fx := int(math.Round(cx))
	fy := int(math.Round(cy))

	before := g.world.FoodCount()
	g.world.AddFoodAt(fx, fy)
	if g.world.FoodCount() > before {
		g.collector.RecordFoodAdded()
	}

	if g.effects != nil {
		g.effects.SpawnFoodPulse(float64(fx), float64(fy))
	}
}

// commandDropFood finds the thronglet nearest to the given world
// position and has it convert energy into a food cell.
func (g *Game) commandDropFood(x, y float64) {
	var nearest *sim.Thronglet
	best := math.MaxFloat64

	for _, a := range g.population.Agents() {
		dx := a.X - x
		dy := a.Y - y
		if d := dx*dx + dy*dy; d < best {
			best = d
			nearest = a
		}
	}
	if nearest == nil {
		return
	}

	if nearest.DropFood(g.world, g.config().Energy.DropFoodCost) {
		g.collector.RecordFoodDropped()
		if g.effects != nil {
			g.effects.SpawnFoodPulse(math.Round(nearest.X), math.Round(nearest.Y))
		}
	}
}
