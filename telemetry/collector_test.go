package telemetry

import (
	"math"
	"testing"
)

func TestCollector_FlushCadence(t *testing.T) {
	// 5 second windows at 50ms per tick = 100 ticks per window
	c := NewCollector(5.0, 50.0)

	if c.WindowDurationTicks() != 100 {
		t.Errorf("WindowDurationTicks() = %d, want 100", c.WindowDurationTicks())
	}

	if c.ShouldFlush(99) {
		t.Error("should not flush before the window elapses")
	}
	if !c.ShouldFlush(100) {
		t.Error("should flush once the window elapses")
	}
}

func TestCollector_MinimumOneTickWindow(t *testing.T) {
	c := NewCollector(0.001, 50.0)

	if c.WindowDurationTicks() != 1 {
		t.Errorf("WindowDurationTicks() = %d, want 1", c.WindowDurationTicks())
	}
}

func TestCollector_FlushProducesStatsAndResets(t *testing.T) {
	c := NewCollector(1.0, 100.0) // 10 ticks per window

	c.RecordBirths(3)
	c.RecordForaged(7)
	c.RecordFoodAdded()
	c.RecordFoodAdded()
	c.RecordFoodDropped()

	stats := c.Flush(10, 12, 5, 4, []float64{40, 60})

	if stats.Births != 3 {
		t.Errorf("Births = %d, want 3", stats.Births)
	}
	if stats.Foraged != 7 {
		t.Errorf("Foraged = %d, want 7", stats.Foraged)
	}
	if stats.FoodAdded != 2 {
		t.Errorf("FoodAdded = %d, want 2", stats.FoodAdded)
	}
	if stats.FoodDropped != 1 {
		t.Errorf("FoodDropped = %d, want 1", stats.FoodDropped)
	}
	if stats.Population != 12 || stats.FoodCount != 5 || stats.DueCount != 4 {
		t.Errorf("counts = %d/%d/%d, want 12/5/4", stats.Population, stats.FoodCount, stats.DueCount)
	}
	if stats.WindowStartTick != 0 || stats.WindowEndTick != 10 {
		t.Errorf("window = [%d, %d], want [0, 10]", stats.WindowStartTick, stats.WindowEndTick)
	}
	if math.Abs(stats.SimTimeMS-1000) > 0.001 {
		t.Errorf("SimTimeMS = %v, want 1000", stats.SimTimeMS)
	}
	if math.Abs(stats.EnergyMean-50) > 0.001 {
		t.Errorf("EnergyMean = %v, want 50", stats.EnergyMean)
	}

	// Counters reset for the next window
	next := c.Flush(20, 12, 5, 4, nil)
	if next.Births != 0 || next.Foraged != 0 || next.FoodAdded != 0 || next.FoodDropped != 0 {
		t.Error("counters should reset after flush")
	}
	if next.WindowStartTick != 10 {
		t.Errorf("WindowStartTick = %d, want 10", next.WindowStartTick)
	}
}
