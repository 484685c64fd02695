package game

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/thronglets/sim"
)

// Draw renders the world, agents, effects, and HUD.
func (g *Game) Draw() {
	g.perfCollector.RecordFrame()
	cfg := g.config()

	rl.BeginDrawing()

	bg := cfg.Colors.Background
	rl.ClearBackground(rl.Color{R: bg.R, G: bg.G, B: bg.B, A: 255})

	g.drawFood()
	g.drawThronglets()
	g.effects.Draw(g.cam)
	g.drawHover()

	rl.DrawText(fmt.Sprintf("Tick: %d", g.tick), 10, 10, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Thronglets: %d  Food: %d  Due: %d",
		g.population.Count(), g.world.FoodCount(), g.population.DueCount(g.simTimeMS)), 10, 35, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Speed: %dx [< >]  Zoom: %.1fx", g.stepsPerUpdate, g.cam.Zoom), 10, 60, 20, rl.White)
	if g.paused {
		rl.DrawText("PAUSED", 10, 85, 20, rl.Yellow)
	}

	rl.EndDrawing()
}

// drawFood renders food cells as small squares.
func (g *Game) drawFood() {
	c := g.config().Colors.Food
	color := rl.Color{R: c.R, G: c.G, B: c.B, A: 255}
	size := 4 * g.cam.Zoom

	for _, cell := range g.world.Food() {
		wx, wy := float32(cell.X), float32(cell.Y)
		if !g.cam.IsVisible(wx, wy, 4) {
			continue
		}
		sx, sy := g.cam.WorldToScreen(wx, wy)
		rl.DrawRectangle(int32(sx-size/2), int32(sy-size/2), int32(size), int32(size), color)
	}
}

// drawThronglets renders agents as circles faded by energy.
func (g *Game) drawThronglets() {
	cfg := g.config()
	c := cfg.Colors.Thronglet
	radius := float32(cfg.Agent.Radius)
	energyMax := cfg.Energy.Max

	for _, a := range g.population.Agents() {
		wx, wy := float32(a.X), float32(a.Y)
		if !g.cam.IsVisible(wx, wy, radius) {
			continue
		}
		sx, sy := g.cam.WorldToScreen(wx, wy)
		alpha := uint8(100 + int(a.Energy/energyMax*155))
		color := rl.Color{R: c.R, G: c.G, B: c.B, A: alpha}
		rl.DrawCircle(int32(sx), int32(sy), radius*g.cam.Zoom, color)
	}
}

// drawHover shows the state of the thronglet under the cursor.
func (g *Game) drawHover() {
	mousePos := rl.GetMousePosition()
	wx, wy := g.cam.ScreenToWorld(mousePos.X, mousePos.Y)
	pickRadius := g.config().Agent.Radius * 1.5

	var hovered *sim.Thronglet
	best := pickRadius * pickRadius
	for _, a := range g.population.Agents() {
		dx := a.X - float64(wx)
		dy := a.Y - float64(wy)
		if d := dx*dx + dy*dy; d <= best {
			best = d
			hovered = a
		}
	}
	if hovered == nil {
		return
	}

	sx, sy := g.cam.WorldToScreen(float32(hovered.X), float32(hovered.Y))
	rl.DrawCircleLines(int32(sx), int32(sy), float32(g.config().Agent.Radius)*g.cam.Zoom+3, rl.White)

	dueIn := math.Max(hovered.NextReplicateAt-g.simTimeMS, 0) / 1000.0
	label := fmt.Sprintf("#%d  energy %.0f  due in %.1fs", hovered.ID, hovered.Energy, dueIn)
	tx := int32(sx) + 12
	ty := int32(sy) - 24
	rl.DrawRectangle(tx-4, ty-4, rl.MeasureText(label, 14)+8, 22, rl.Color{R: 0, G: 0, B: 0, A: 180})
	rl.DrawText(label, tx, ty, 14, rl.White)
}
