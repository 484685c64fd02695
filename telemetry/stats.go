package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeMS       float64 `csv:"sim_time_ms"`

	// Counts at window end
	Population int `csv:"population"`
	FoodCount  int `csv:"food"`
	DueCount   int `csv:"due"`

	// Events during window
	Births      int `csv:"births"`
	Foraged     int `csv:"foraged"`
	FoodAdded   int `csv:"food_added"`
	FoodDropped int `csv:"food_dropped"`

	// Energy distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyStd  float64 `csv:"energy_std"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`
}

// ComputeEnergyStats calculates mean, standard deviation, and empirical
// percentiles from energy values. All zeros for an empty slice.
func ComputeEnergyStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	if n > 1 {
		// StdDev needs at least two samples (n-1 divisor)
		std = stat.StdDev(values, nil)
	}

	// Quantile requires sorted input
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time_ms", s.SimTimeMS),
		slog.Int("population", s.Population),
		slog.Int("food", s.FoodCount),
		slog.Int("due", s.DueCount),
		slog.Int("births", s.Births),
		slog.Int("foraged", s.Foraged),
		slog.Int("food_added", s.FoodAdded),
		slog.Int("food_dropped", s.FoodDropped),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_std", s.EnergyStd),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time_ms", s.SimTimeMS,
		"population", s.Population,
		"food", s.FoodCount,
		"due", s.DueCount,
		"births", s.Births,
		"foraged", s.Foraged,
		"food_added", s.FoodAdded,
		"food_dropped", s.FoodDropped,
		"energy_mean", s.EnergyMean,
		"energy_std", s.EnergyStd,
		"energy_p10", s.EnergyP10,
		"energy_p50", s.EnergyP50,
		"energy_p90", s.EnergyP90,
	)
}
