// Package game wires the simulation core to rendering, input, and telemetry.
package game

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/pthm-cable/thronglets/camera"
	"github.com/pthm-cable/thronglets/config"
	"github.com/pthm-cable/thronglets/sim"
	"github.com/pthm-cable/thronglets/telemetry"
)

// Options configures a new game instance.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	SnapshotDir    string
	OutputDir      string
	Headless       bool
	StepsPerUpdate int

	// Config to use instead of the global one (tuning runs pass copies).
	Config *config.Config

	// Restore starts the simulation from a saved snapshot.
	Restore *telemetry.Snapshot

	// StatsCallback receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg *config.Config
	rng *rand.Rand

	world      *sim.World
	population *sim.Population

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)

	// Graphics mode only
	effects *EffectSystem
	cam     *camera.Camera

	// State
	tick            int32
	simTimeMS       float64
	nextFoodSpawnMS float64
	paused          bool
	stepsPerUpdate  int
	logStats        bool
	rngSeed         int64
	snapshotDir     string
}

// NewGameWithOptions creates a game instance with the given options.
func NewGameWithOptions(opts Options) *Game {
	g := &Game{
		cfg:            opts.Config,
		logStats:       opts.LogStats,
		snapshotDir:    opts.SnapshotDir,
		statsCallback:  opts.StatsCallback,
		stepsPerUpdate: opts.StepsPerUpdate,
	}
	if g.stepsPerUpdate < 1 {
		g.stepsPerUpdate = 1
	}

	cfg := g.config()

	g.rngSeed = opts.Seed
	g.rng = rand.New(rand.NewSource(g.rngSeed))

	// Use config stats window if not overridden
	statsWindowSec := opts.StatsWindowSec
	if statsWindowSec <= 0 {
		statsWindowSec = cfg.Telemetry.StatsWindowSec
	}

	g.collector = telemetry.NewCollector(statsWindowSec, cfg.Derived.TickMS)
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	g.bookmarkDetector = telemetry.NewBookmarkDetector(
		cfg.Telemetry.BookmarkHistorySize,
		cfg.Bookmarks.PopulationSurge,
		cfg.Bookmarks.ReplicationStall,
	)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
	}
	g.outputManager = om
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	g.world = sim.NewWorld(cfg.Derived.WorldW, cfg.Derived.WorldH)
	g.population = sim.NewPopulation(cfg, g.rng)

	if opts.Restore != nil {
		g.restoreFromSnapshot(opts.Restore)
	} else {
		g.population.ScatterUniform(g.world, cfg.Agent.InitialPopulation, g.simTimeMS)
		g.scatterInitialFood(cfg.Food.InitialCount)
	}

	if cfg.Food.SpawnIntervalMS > 0 {
		g.nextFoodSpawnMS = g.simTimeMS + cfg.Food.SpawnIntervalMS
	}

	// Effects and camera only in graphics mode
	if !opts.Headless {
		g.effects = NewEffectSystem(cfg)
		g.cam = camera.New(
			float32(cfg.Screen.Width), float32(cfg.Screen.Height),
			float32(cfg.Derived.WorldW), float32(cfg.Derived.WorldH),
		)
	}

	return g
}

// config returns the active configuration for this game instance.
func (g *Game) config() *config.Config {
	if g.cfg != nil {
		return g.cfg
	}
	return config.Cfg()
}

// scatterInitialFood seeds the world with randomly placed food cells.
// Collisions with existing cells are absorbed, so the final count can
// come out slightly below n.
func (g *Game) scatterInitialFood(n int) {
	for i := 0; i < n; i++ {
		x := int(math.Round(g.rng.Float64() * g.world.Width))
		y := int(math.Round(g.rng.Float64() * g.world.Height))
		g.world.AddFoodAt(x, y)
	}
}

// Update advances the simulation from the render loop.
func (g *Game) Update() {
	g.handleInput()

	if g.paused {
		return
	}

	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
}

// UpdateHeadless advances the simulation without input or rendering.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
}

// step runs a single simulation tick.
func (g *Game) step() {
	g.perfCollector.StartTick()

	// 1. Agent updates (separation, foraging, seeking, replication, wandering)
	g.perfCollector.StartPhase(telemetry.PhaseStep)
	popBefore := g.population.Count()
	foodBefore := g.world.FoodCount()
	g.population.Step(g.simTimeMS, g.world)
	births := g.population.Count() - popBefore
	foraged := foodBefore - g.world.FoodCount()

	// 2. Timed food spawning
	g.perfCollector.StartPhase(telemetry.PhaseFoodSpawn)
	g.spawnFood()

	// 3. Visual effects (newborns sit at the roster tail)
	g.perfCollector.StartPhase(telemetry.PhaseEffects)
	if g.effects != nil {
		agents := g.population.Agents()
		for _, a := range agents[len(agents)-births:] {
			g.effects.SpawnBirthRing(a.X, a.Y)
		}
		g.effects.Update()
	}

	// 4. Telemetry accounting
	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.collector.RecordBirths(births)
	g.collector.RecordForaged(foraged)

	g.tick++
	g.simTimeMS += g.config().Derived.TickMS

	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// spawnFood drips food into the world on the configured interval.
func (g *Game) spawnFood() {
	cfg := g.config()
	if cfg.Food.SpawnIntervalMS <= 0 {
		return
	}

	for g.simTimeMS >= g.nextFoodSpawnMS {
		x := int(math.Round(g.rng.Float64() * g.world.Width))
		y := int(math.Round(g.rng.Float64() * g.world.Height))

		before := g.world.FoodCount()
		g.world.AddFoodAt(x, y)
		if g.world.FoodCount() > before {
			g.collector.RecordFoodAdded()
		}

		g.nextFoodSpawnMS += cfg.Food.SpawnIntervalMS
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// SimTimeMS returns the simulated time in milliseconds.
func (g *Game) SimTimeMS() float64 {
	return g.simTimeMS
}

// Count returns the number of living thronglets.
func (g *Game) Count() int {
	return g.population.Count()
}

// FoodCount returns the number of food cells in the world.
func (g *Game) FoodCount() int {
	return g.world.FoodCount()
}

// DueCount returns the number of thronglets with an elapsed replication timer.
func (g *Game) DueCount() int {
	return g.population.DueCount(g.simTimeMS)
}

// Unload closes output files and releases resources.
func (g *Game) Unload() {
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
