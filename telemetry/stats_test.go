package telemetry

import (
	"math"
	"testing"
)

func TestComputeEnergyStats(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	mean, std, p10, p50, p90 := ComputeEnergyStats(values)

	if math.Abs(mean-55) > 0.001 {
		t.Errorf("mean = %v, want 55", mean)
	}

	// Sample standard deviation (n-1 divisor) of 10..100
	if math.Abs(std-30.2765) > 0.001 {
		t.Errorf("std = %v, want ~30.2765", std)
	}

	// Empirical quantiles return actual sample values
	if p10 != 10 {
		t.Errorf("p10 = %v, want 10", p10)
	}
	if p50 != 50 {
		t.Errorf("p50 = %v, want 50", p50)
	}
	if p90 != 90 {
		t.Errorf("p90 = %v, want 90", p90)
	}
}

func TestComputeEnergyStatsEmpty(t *testing.T) {
	mean, std, p10, p50, p90 := ComputeEnergyStats([]float64{})

	if mean != 0 || std != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestComputeEnergyStatsSingleValue(t *testing.T) {
	mean, std, p10, p50, p90 := ComputeEnergyStats([]float64{42})

	if mean != 42 {
		t.Errorf("mean = %v, want 42", mean)
	}
	if std != 0 {
		t.Errorf("std = %v, want 0 for a single sample", std)
	}
	if p10 != 42 || p50 != 42 || p90 != 42 {
		t.Errorf("quantiles = %v/%v/%v, want 42 for all", p10, p50, p90)
	}
}

func TestComputeEnergyStatsUnsortedInput(t *testing.T) {
	values := []float64{90, 10, 50, 30, 70}
	mean, _, p10, p50, p90 := ComputeEnergyStats(values)

	if math.Abs(mean-50) > 0.001 {
		t.Errorf("mean = %v, want 50", mean)
	}
	if p10 != 10 || p50 != 50 || p90 != 90 {
		t.Errorf("quantiles = %v/%v/%v, want 10/50/90", p10, p50, p90)
	}

	// Input order must be preserved (quantiles sort a copy)
	if values[0] != 90 || values[4] != 70 {
		t.Error("input slice was reordered")
	}
}
