package game

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/thronglets/camera"
	"github.com/pthm-cable/thronglets/config"
)

// effectKind selects how an effect is drawn.
type effectKind uint8

const (
	effectBirthRing effectKind = iota
	effectSpark
	effectFoodPulse
)

// Effect lifetimes in ticks.
const (
	birthRingLife = 36
	sparkLife     = 24
	foodPulseLife = 18
)

type effectPosition struct {
	X, Y float64
}

type effectMotion struct {
	VX, VY float64
}

type effectLife struct {
	Age    int32
	MaxAge int32
	Kind   effectKind
}

// EffectSystem manages short-lived visual feedback entities. Effects live
// in their own ECS world and never touch simulation state.
type EffectSystem struct {
	cfg    *config.Config
	world  ecs.World
	mapper *ecs.Map3[effectPosition, effectMotion, effectLife]
	filter *ecs.Filter3[effectPosition, effectMotion, effectLife]
}

// NewEffectSystem creates an empty effect system.
func NewEffectSystem(cfg *config.Config) *EffectSystem {
	es := &EffectSystem{
		cfg:   cfg,
		world: ecs.NewWorld(),
	}
	es.mapper = ecs.NewMap3[effectPosition, effectMotion, effectLife](&es.world)
	es.filter = ecs.NewFilter3[effectPosition, effectMotion, effectLife](&es.world)
	return es
}

// SpawnBirthRing emits an expanding ring with a burst of sparks.
func (es *EffectSystem) SpawnBirthRing(x, y float64) {
	pos := effectPosition{X: x, Y: y}
	mot := effectMotion{}
	life := effectLife{MaxAge: birthRingLife, Kind: effectBirthRing}
	es.mapper.NewEntity(&pos, &mot, &life)

	for i := 0; i < 6; i++ {
		angle := float64(i) * math.Pi / 3
		spos := effectPosition{X: x, Y: y}
		smot := effectMotion{VX: math.Cos(angle) * 1.5, VY: math.Sin(angle) * 1.5}
		slife := effectLife{MaxAge: sparkLife, Kind: effectSpark}
		es.mapper.NewEntity(&spos, &smot, &slife)
	}
}

// SpawnFoodPulse emits a contracting pulse marking a placed food cell.
func (es *EffectSystem) SpawnFoodPulse(x, y float64) {
	pos := effectPosition{X: x, Y: y}
	mot := effectMotion{}
	life := effectLife{MaxAge: foodPulseLife, Kind: effectFoodPulse}
	es.mapper.NewEntity(&pos, &mot, &life)
}

// Update ages and moves effects, then removes expired ones.
func (es *EffectSystem) Update() {
	// Collect expired entities first; the world must not be modified
	// while a query is iterating.
	var expired []ecs.Entity

	query := es.filter.Query()
	for query.Next() {
		pos, mot, life := query.Get()

		life.Age++
		if life.Age >= life.MaxAge {
			expired = append(expired, query.Entity())
			continue
		}

		pos.X += mot.VX
		pos.Y += mot.VY

		// Sparks decelerate as they age
		if life.Kind == effectSpark {
			mot.VX *= 0.92
			mot.VY *= 0.92
		}
	}

	for _, e := range expired {
		es.world.RemoveEntity(e)
	}
}

// Draw renders all active effects through the camera.
func (es *EffectSystem) Draw(cam *camera.Camera) {
	tc := es.cfg.Colors.Thronglet
	fc := es.cfg.Colors.Food

	query := es.filter.Query()
	for query.Next() {
		pos, _, life := query.Get()

		wx, wy := float32(pos.X), float32(pos.Y)
		if !cam.IsVisible(wx, wy, 40) {
			continue
		}
		sx, sy := cam.WorldToScreen(wx, wy)

		lifeRatio := 1 - float32(life.Age)/float32(life.MaxAge)

		switch life.Kind {
		case effectBirthRing:
			radius := (float32(es.cfg.Agent.Radius) + float32(life.Age)*0.8) * cam.Zoom
			color := rl.Color{R: tc.R, G: tc.G, B: tc.B, A: uint8(lifeRatio * 200)}
			rl.DrawCircleLines(int32(sx), int32(sy), radius, color)
		case effectSpark:
			color := rl.Color{R: tc.R, G: tc.G, B: tc.B, A: uint8(lifeRatio * 230)}
			rl.DrawCircle(int32(sx), int32(sy), 1.5*cam.Zoom, color)
		case effectFoodPulse:
			radius := (3 + float32(life.MaxAge-life.Age)*0.5) * cam.Zoom
			color := rl.Color{R: fc.R, G: fc.G, B: fc.B, A: uint8(lifeRatio * 180)}
			rl.DrawCircleLines(int32(sx), int32(sy), radius, color)
		}
	}
}

// Count returns the number of live effect entities.
func (es *EffectSystem) Count() int {
	n := 0
	query := es.filter.Query()
	for query.Next() {
		n++
	}
	return n
}
