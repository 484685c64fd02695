package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/thronglets/config"
	"github.com/pthm-cable/thronglets/game"
	"github.com/pthm-cable/thronglets/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64
	targetPop   int

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, targetPop int) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 5.0, // 5 seconds per window
		targetPop:   targetPop,
		bestFitness: math.Inf(1),
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// A run aborts once the population reaches this multiple of the target;
// runaway growth never recovers, so simulating further is wasted work.
const explosionFactor = 4

// runResult holds the results from a single simulation run.
type runResult struct {
	finalPop    int
	exploded    bool
	windowStats []telemetry.WindowStats // collected via StatsCallback each window
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative quality: a config that holds the population near
// the target without stalling or exploding scores lowest.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			results[idx] = seedResult{
				fitness: fe.computeFitness(result),
				quality: fe.computeQuality(result.windowStats),
			}
		}(i, seed)
	}
	wg.Wait()

	// Aggregate results
	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless simulation run.
// Runs to maxTicks unless the population explodes past the abort cap.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	// Create a fresh config copy and apply parameters
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{}

	// Create and run game, collecting window stats via callback
	g := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Config:         cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})

	abortPop := explosionFactor * fe.targetPop

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()

		if g.Count() >= abortPop {
			result.exploded = true
			break
		}
	}

	result.finalPop = g.Count()
	g.Unload()
	return result
}

// copyConfig creates a deep copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	// Load fresh defaults and copy base values
	cfg, _ := config.Load("")

	// Copy tunable fields from base
	cfg.Energy = fe.baseConfig.Energy
	cfg.Replication = fe.baseConfig.Replication
	cfg.Food = fe.baseConfig.Food

	// Copy other important fields
	cfg.Screen = fe.baseConfig.Screen
	cfg.World = fe.baseConfig.World
	cfg.Agent = fe.baseConfig.Agent
	cfg.Telemetry = fe.baseConfig.Telemetry
	cfg.Bookmarks = fe.baseConfig.Bookmarks
	cfg.Colors = fe.baseConfig.Colors
	cfg.Derived = fe.baseConfig.Derived

	return cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Exploded runs score 0, worse than any finished run.
func (fe *FitnessEvaluator) computeFitness(r *runResult) float64 {
	if r.exploded {
		return 0
	}
	return -fe.computeQuality(r.windowStats)
}

// Quality component weights.
const (
	qualityWeightTarget = 0.35 // final population near target
	qualityWeightTime   = 0.20 // target band reached early
	qualityWeightStall  = 0.25 // few stalled windows
	qualityWeightFood   = 0.20 // food present but not piling up

	qualityWarmupWindows = 3 // skip first N windows (warmup)

	// A window counts as stalled when at least this fraction of agents is
	// due to replicate and none do. Matches the stall bookmark condition.
	stallDueFraction = 0.5
)

// computeQuality computes population health in [0, 1] from window stats.
func (fe *FitnessEvaluator) computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	valid := windows[qualityWarmupWindows:]
	target := float64(fe.targetPop)

	var stalled, starved, hoarded int
	reachedAt := -1

	for i, w := range valid {
		if w.Population > 0 {
			dueFrac := float64(w.DueCount) / float64(w.Population)
			if dueFrac >= stallDueFraction && w.Births == 0 {
				stalled++
			}
		}

		if w.FoodCount == 0 {
			starved++
		} else if float64(w.FoodCount) > 5.0*math.Max(float64(w.Population), 1) {
			hoarded++
		}

		if reachedAt < 0 && float64(w.Population) >= 0.9*target {
			reachedAt = i
		}
	}

	n := float64(len(valid))

	// 1. Final population near the target (Gaussian, 30% tolerance)
	final := float64(valid[len(valid)-1].Population)
	relErr := (final - target) / (0.3 * target)
	targetScore := math.Exp(-relErr * relErr)

	// 2. Time to reach the target band
	timeScore := 0.0
	if reachedAt >= 0 {
		timeScore = 1.0 - float64(reachedAt)/n
	}

	// 3. Stall-free fraction
	stallScore := 1.0 - float64(stalled)/n

	// 4. Food balance
	foodScore := 1.0 - float64(starved+hoarded)/n

	quality := qualityWeightTarget*targetScore +
		qualityWeightTime*timeScore +
		qualityWeightStall*stallScore +
		qualityWeightFood*foodScore

	return clamp01(quality)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
