// Package telemetry provides population health tracking, bookmarking, and snapshots.
package telemetry

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	tickMS              float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	births      int
	foraged     int
	foodAdded   int
	foodDropped int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// tickMS: simulation milliseconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, tickMS float64) *Collector {
	ticksPerWindow := int32(windowDurationSec * 1000 / tickMS)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		tickMS:              tickMS,
		windowStartTick:     0,
	}
}

// RecordBirths records n replication events.
func (c *Collector) RecordBirths(n int) {
	c.births += n
}

// RecordForaged records n food cells eaten by agents.
func (c *Collector) RecordForaged(n int) {
	c.foraged += n
}

// RecordFoodAdded records one food cell placed into the world.
func (c *Collector) RecordFoodAdded() {
	c.foodAdded++
}

// RecordFoodDropped records one food cell dropped by an agent.
func (c *Collector) RecordFoodDropped() {
	c.foodDropped++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// The caller provides the current tick, the population and food counts,
// the number of agents with a due replication timer, and the agent
// energy values for distribution stats.
func (c *Collector) Flush(currentTick int32, population, foodCount, dueCount int, energies []float64) WindowStats {
	mean, std, p10, p50, p90 := ComputeEnergyStats(energies)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeMS:       float64(currentTick) * c.tickMS,

		Population: population,
		FoodCount:  foodCount,
		DueCount:   dueCount,

		Births:      c.births,
		Foraged:     c.foraged,
		FoodAdded:   c.foodAdded,
		FoodDropped: c.foodDropped,

		EnergyMean: mean,
		EnergyStd:  std,
		EnergyP10:  p10,
		EnergyP50:  p50,
		EnergyP90:  p90,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.births = 0
	c.foraged = 0
	c.foodAdded = 0
	c.foodDropped = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
