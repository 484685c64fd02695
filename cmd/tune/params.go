// Package main provides CMA-ES tuning for thronglet simulation parameters.
package main

import (
	"github.com/pthm-cable/thronglets/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Energy (max locked at the base config value)
			{Name: "gain_per_food", Path: "energy.gain_per_food", Min: 5.0, Max: 60.0, Default: 25.0},
			{Name: "replication_cost", Path: "energy.replication_cost", Min: 10.0, Max: 100.0, Default: 60.0},
			{Name: "drop_food_cost", Path: "energy.drop_food_cost", Min: 1.0, Max: 30.0, Default: 10.0},
			// Replication
			{Name: "interval_mean_ms", Path: "replication.interval_mean_ms", Min: 1000.0, Max: 20000.0, Default: 5000.0},
			// Movement
			{Name: "walk_speed", Path: "agent.walk_speed", Min: 0.5, Max: 6.0, Default: 2.0},
			{Name: "seek_speed", Path: "agent.seek_speed", Min: 0.5, Max: 8.0, Default: 2.5},
			{Name: "separation_distance", Path: "agent.separation_distance", Min: 4.0, Max: 40.0, Default: 18.0},
			{Name: "separation_speed", Path: "agent.separation_speed", Min: 0.2, Max: 4.0, Default: 1.2},
			// Food supply
			{Name: "food_initial_count", Path: "food.initial_count", Min: 0, Max: 200, Default: 40},
			{Name: "food_spawn_interval_ms", Path: "food.spawn_interval_ms", Min: 200.0, Max: 10000.0, Default: 1500.0},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	// Clamp values to ensure they're within bounds
	clamped := pv.Clamp(values)

	// Order must match Specs order
	i := 0

	// Energy (max locked)
	cfg.Energy.GainPerFood = clamped[i]
	i++
	cfg.Energy.ReplicationCost = clamped[i]
	i++
	// Replication cost above max energy would fail config validation
	if cfg.Energy.ReplicationCost > cfg.Energy.Max {
		cfg.Energy.ReplicationCost = cfg.Energy.Max
	}
	cfg.Energy.DropFoodCost = clamped[i]
	i++

	// Replication
	cfg.Replication.IntervalMeanMS = clamped[i]
	i++

	// Movement
	cfg.Agent.WalkSpeed = clamped[i]
	i++
	cfg.Agent.SeekSpeed = clamped[i]
	i++
	cfg.Agent.SeparationDistance = clamped[i]
	i++
	cfg.Agent.SeparationSpeed = clamped[i]
	i++

	// Food supply
	cfg.Food.InitialCount = int(clamped[i])
	i++
	cfg.Food.SpawnIntervalMS = clamped[i]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Energy.GainPerFood,
		cfg.Energy.ReplicationCost,
		cfg.Energy.DropFoodCost,
		cfg.Replication.IntervalMeanMS,
		cfg.Agent.WalkSpeed,
		cfg.Agent.SeekSpeed,
		cfg.Agent.SeparationDistance,
		cfg.Agent.SeparationSpeed,
		float64(cfg.Food.InitialCount),
		cfg.Food.SpawnIntervalMS,
	}
}
