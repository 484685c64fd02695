package game

import (
	"log/slog"

	"github.com/pthm-cable/thronglets/sim"
	"github.com/pthm-cable/thronglets/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(
		g.tick,
		g.population.Count(),
		g.world.FoodCount(),
		g.population.DueCount(g.simTimeMS),
		g.sampleEnergies(),
	)
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}

		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}

		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// sampleEnergies collects agent energy values for distribution stats.
func (g *Game) sampleEnergies() []float64 {
	agents := g.population.Agents()
	energies := make([]float64, 0, len(agents))
	for _, a := range agents {
		energies = append(energies, a.Energy)
	}
	return energies
}

// saveSnapshot writes the current state to the snapshot directory.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := telemetry.SaveSnapshot(g.createSnapshot(bookmark), g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// createSnapshot captures the full simulation state.
func (g *Game) createSnapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		RNGSeed:     g.rngSeed,
		WorldWidth:  g.world.Width,
		WorldHeight: g.world.Height,
		Tick:        g.tick,
		SimTimeMS:   g.simTimeMS,
		Food:        g.world.Food(),
		Bookmark:    bookmark,
	}

	for _, a := range g.population.Agents() {
		snapshot.Agents = append(snapshot.Agents, telemetry.AgentState{
			ID:              a.ID,
			X:               a.X,
			Y:               a.Y,
			Energy:          a.Energy,
			NextReplicateAt: a.NextReplicateAt,
		})
	}

	return snapshot
}

// restoreFromSnapshot rebuilds world and population state from a snapshot.
// The RNG stream is re-seeded rather than resumed, so a restored run is
// deterministic but diverges from the run that produced the snapshot.
func (g *Game) restoreFromSnapshot(snap *telemetry.Snapshot) {
	if snap.WorldWidth > 0 && snap.WorldHeight > 0 {
		g.world = sim.NewWorld(snap.WorldWidth, snap.WorldHeight)
	}

	for _, c := range snap.Food {
		g.world.AddFoodAt(c.X, c.Y)
	}

	for _, a := range snap.Agents {
		g.population.RestoreAgent(sim.Thronglet{
			ID:              a.ID,
			X:               a.X,
			Y:               a.Y,
			Energy:          a.Energy,
			NextReplicateAt: a.NextReplicateAt,
		})
	}

	g.tick = snap.Tick
	g.simTimeMS = snap.SimTimeMS

	slog.Info("snapshot restored",
		"tick", g.tick,
		"agents", len(snap.Agents),
		"food", len(snap.Food),
	)
}
