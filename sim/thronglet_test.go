package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/thronglets/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading default config: %v", err)
	}
	return cfg
}

// ---------- Random walk ----------

func TestMoveRandom_StaysInBounds(t *testing.T) {
	w := NewWorld(10, 10)
	rng := rand.New(rand.NewSource(42))
	tl := &Thronglet{X: 0, Y: 0}

	for i := 0; i < 1000; i++ {
		tl.MoveRandom(w, 3, rng)
		if tl.X < 0 || tl.X > w.Width || tl.Y < 0 || tl.Y > w.Height {
			t.Fatalf("position (%g, %g) out of bounds after move %d", tl.X, tl.Y, i)
		}
	}
}

func TestMoveRandom_OffsetWithinSpeed(t *testing.T) {
	w := NewWorld(100000, 100000)
	rng := rand.New(rand.NewSource(7))
	tl := &Thronglet{X: 50000, Y: 50000}
	speed := 2.0

	for i := 0; i < 1000; i++ {
		px, py := tl.X, tl.Y
		tl.MoveRandom(w, speed, rng)
		if math.Abs(tl.X-px) > speed || math.Abs(tl.Y-py) > speed {
			t.Fatalf("move %d stepped (%g, %g), beyond speed %g", i, tl.X-px, tl.Y-py, speed)
		}
	}
}

// ---------- Separation ----------

func TestMoveAwayFromOthers_NoNeighbors(t *testing.T) {
	w := NewWorld(100, 100)
	tl := &Thronglet{X: 50, Y: 50}

	// The roster always contains the agent itself
	tl.MoveAwayFromOthers(w, []*Thronglet{tl}, 5, 2)
	if tl.X != 50 || tl.Y != 50 {
		t.Errorf("moved to (%g, %g) with no neighbors, want (50, 50)", tl.X, tl.Y)
	}
}

func TestMoveAwayFromOthers_OutOfRangeIgnored(t *testing.T) {
	w := NewWorld(100, 100)
	tl := &Thronglet{X: 50, Y: 50}
	far := &Thronglet{X: 60, Y: 50}
	atBoundary := &Thronglet{X: 55, Y: 50} // exactly minDist away

	tl.MoveAwayFromOthers(w, []*Thronglet{tl, far, atBoundary}, 5, 2)
	if tl.X != 50 || tl.Y != 50 {
		t.Errorf("moved to (%g, %g), want (50, 50) when nothing is within range", tl.X, tl.Y)
	}
}

func TestMoveAwayFromOthers_SingleNeighbor(t *testing.T) {
	w := NewWorld(100, 100)
	tl := &Thronglet{X: 50, Y: 50}
	other := &Thronglet{X: 53, Y: 50}

	tl.MoveAwayFromOthers(w, []*Thronglet{tl, other}, 5, 2)

	// Push direction is straight away from the neighbor
	if math.Abs(tl.X-48) > 1e-9 || math.Abs(tl.Y-50) > 1e-9 {
		t.Errorf("moved to (%g, %g), want (48, 50)", tl.X, tl.Y)
	}
}

func TestMoveAwayFromOthers_StepLengthIsSpeed(t *testing.T) {
	w := NewWorld(100, 100)
	tl := &Thronglet{X: 50, Y: 50}
	other := &Thronglet{X: 52, Y: 52}

	tl.MoveAwayFromOthers(w, []*Thronglet{tl, other}, 5, 2)

	moved := math.Hypot(tl.X-50, tl.Y-50)
	if math.Abs(moved-2) > 1e-9 {
		t.Errorf("step length = %g, want 2", moved)
	}
}

func TestMoveAwayFromOthers_CoincidentAgentsDoNotRepel(t *testing.T) {
	// Two agents at the identical position cannot form a direction
	w := NewWorld(100, 100)
	a := &Thronglet{ID: 1, X: 40, Y: 40}
	b := &Thronglet{ID: 2, X: 40, Y: 40}
	roster := []*Thronglet{a, b}

	a.MoveAwayFromOthers(w, roster, 5, 2)
	b.MoveAwayFromOthers(w, roster, 5, 2)

	if a.X != 40 || a.Y != 40 {
		t.Errorf("a moved to (%g, %g), want (40, 40)", a.X, a.Y)
	}
	if b.X != 40 || b.Y != 40 {
		t.Errorf("b moved to (%g, %g), want (40, 40)", b.X, b.Y)
	}
}

func TestMoveAwayFromOthers_OpposingNeighborsCancel(t *testing.T) {
	w := NewWorld(100, 100)
	tl := &Thronglet{ID: 1, X: 50, Y: 50}
	left := &Thronglet{ID: 2, X: 48, Y: 50}
	right := &Thronglet{ID: 3, X: 52, Y: 50}

	tl.MoveAwayFromOthers(w, []*Thronglet{tl, left, right}, 5, 2)

	if tl.X != 50 || tl.Y != 50 {
		t.Errorf("moved to (%g, %g), want (50, 50) when pushes cancel", tl.X, tl.Y)
	}
}

// ---------- Seeking ----------

func TestSeekFood_StepsTowardFood(t *testing.T) {
	w := NewWorld(200, 200)
	w.AddFoodAt(60, 50)
	rng := rand.New(rand.NewSource(42))
	tl := &Thronglet{X: 50, Y: 50, Energy: 30}

	tl.SeekFood(w, 2.5, 2.0, rng)

	if math.Abs(tl.X-52.5) > 1e-9 || math.Abs(tl.Y-50) > 1e-9 {
		t.Errorf("moved to (%g, %g), want (52.5, 50)", tl.X, tl.Y)
	}
	if w.FoodCount() != 1 {
		t.Errorf("seeking consumed food: count = %d, want 1", w.FoodCount())
	}
}

func TestSeekFood_NoOvershoot(t *testing.T) {
	w := NewWorld(200, 200)
	w.AddFoodAt(51, 50)
	rng := rand.New(rand.NewSource(42))
	tl := &Thronglet{X: 50, Y: 50}

	tl.SeekFood(w, 2.5, 2.0, rng)

	if tl.X != 51 || tl.Y != 50 {
		t.Errorf("moved to (%g, %g), want exactly (51, 50)", tl.X, tl.Y)
	}
}

func TestSeekFood_AtFoodNoMove(t *testing.T) {
	w := NewWorld(200, 200)
	w.AddFoodAt(60, 50)
	rng := rand.New(rand.NewSource(42))
	tl := &Thronglet{X: 60, Y: 50}

	tl.SeekFood(w, 2.5, 2.0, rng)

	if tl.X != 60 || tl.Y != 50 {
		t.Errorf("moved to (%g, %g), want (60, 50)", tl.X, tl.Y)
	}
}

func TestSeekFood_NoFoodFallsBackToRandomWalk(t *testing.T) {
	w := NewWorld(100, 100)
	a := &Thronglet{X: 50, Y: 50}
	b := &Thronglet{X: 50, Y: 50}

	// Same seed → the fallback must make exactly the walk MoveRandom makes
	a.SeekFood(w, 2.5, 2.0, rand.New(rand.NewSource(9)))
	b.MoveRandom(w, 2.0, rand.New(rand.NewSource(9)))

	if a.X != b.X || a.Y != b.Y {
		t.Errorf("fallback walked to (%g, %g), MoveRandom walked to (%g, %g)", a.X, a.Y, b.X, b.Y)
	}
}

func TestSeekFood_MonotonicApproach(t *testing.T) {
	w := NewWorld(200, 200)
	w.AddFoodAt(90, 90)
	rng := rand.New(rand.NewSource(42))
	tl := &Thronglet{X: 10, Y: 10}

	prev := math.Hypot(tl.X-90, tl.Y-90)
	for i := 0; i < 100; i++ {
		tl.SeekFood(w, 2.5, 2.0, rng)
		d := math.Hypot(tl.X-90, tl.Y-90)
		if d > prev+1e-9 {
			t.Fatalf("distance grew from %g to %g on step %d", prev, d, i)
		}
		prev = d
	}
	if prev > 1e-6 {
		t.Errorf("still %g away from food after 100 steps", prev)
	}
}

// ---------- Foraging ----------

func TestForage_ConsumesAtRoundedCell(t *testing.T) {
	w := NewWorld(100, 100)
	w.AddFoodAt(10, 10)
	tl := &Thronglet{X: 10.4, Y: 9.6, Energy: 20}

	if !tl.Forage(w, 25, 100) {
		t.Fatal("Forage missed food at the rounded cell")
	}
	if tl.Energy != 45 {
		t.Errorf("energy = %g after foraging, want 45", tl.Energy)
	}
	if w.FoodCount() != 0 {
		t.Errorf("food count = %d after foraging, want 0", w.FoodCount())
	}
}

func TestForage_MissesNeighboringCell(t *testing.T) {
	w := NewWorld(100, 100)
	w.AddFoodAt(10, 10)
	tl := &Thronglet{X: 10.6, Y: 10, Energy: 20} // rounds to (11, 10)

	if tl.Forage(w, 25, 100) {
		t.Error("Forage ate food from a different cell")
	}
	if tl.Energy != 20 {
		t.Errorf("energy = %g, want unchanged 20", tl.Energy)
	}
	if w.FoodCount() != 1 {
		t.Errorf("food count = %d, want 1", w.FoodCount())
	}
}

func TestForage_EnergyClampedAtMax(t *testing.T) {
	w := NewWorld(100, 100)
	w.AddFoodAt(10, 10)
	tl := &Thronglet{X: 10, Y: 10, Energy: 90}

	tl.Forage(w, 25, 100)
	if tl.Energy != 100 {
		t.Errorf("energy = %g, want clamped to 100", tl.Energy)
	}
}

// ---------- Dropping food ----------

func TestDropFood_GatedByCost(t *testing.T) {
	w := NewWorld(100, 100)
	tl := &Thronglet{X: 10, Y: 10, Energy: 5}

	if tl.DropFood(w, 10) {
		t.Error("dropped food without enough energy")
	}
	if tl.Energy != 5 {
		t.Errorf("energy = %g after refused drop, want 5", tl.Energy)
	}
	if w.FoodCount() != 0 {
		t.Errorf("food count = %d after refused drop, want 0", w.FoodCount())
	}
}

func TestDropFood_SpendsAndPlaces(t *testing.T) {
	w := NewWorld(100, 100)
	tl := &Thronglet{X: 10.3, Y: 9.8, Energy: 50}

	if !tl.DropFood(w, 10) {
		t.Fatal("drop refused despite sufficient energy")
	}
	if tl.Energy != 40 {
		t.Errorf("energy = %g after drop, want 40", tl.Energy)
	}
	if !w.ConsumeFoodAt(10, 10) {
		t.Error("no food at the rounded cell (10, 10)")
	}
}

func TestDropFood_OccupiedCellStillCharges(t *testing.T) {
	w := NewWorld(100, 100)
	w.AddFoodAt(10, 10)
	tl := &Thronglet{X: 10, Y: 10, Energy: 50}

	if !tl.DropFood(w, 10) {
		t.Fatal("drop refused despite sufficient energy")
	}
	if tl.Energy != 40 {
		t.Errorf("energy = %g, want 40: the cost is paid even onto occupied cells", tl.Energy)
	}
	if w.FoodCount() != 1 {
		t.Errorf("food count = %d, want 1 (no duplicates)", w.FoodCount())
	}
}

// ---------- Replication gate ----------

func TestCanReplicate_RequiresTimerAndEnergy(t *testing.T) {
	tests := []struct {
		name   string
		now    float64
		nextAt float64
		energy float64
		want   bool
	}{
		{"due and full", 1000, 800, 100, true},
		{"due exactly now", 800, 800, 100, true},
		{"due but underfed", 1000, 800, 99.9, false},
		{"full but not due", 700, 800, 100, false},
		{"neither", 500, 800, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := &Thronglet{NextReplicateAt: tt.nextAt, Energy: tt.energy}
			if got := tl.CanReplicate(tt.now, 100); got != tt.want {
				t.Errorf("CanReplicate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReplicate_ChildAtParentPositionFullEnergy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Energy.Max = 50
	cfg.Energy.ReplicationCost = 50
	rng := rand.New(rand.NewSource(42))
	ids := NewIDGenerator()

	parent := &Thronglet{ID: ids.NextID(), X: 100, Y: 100, Energy: 50, NextReplicateAt: 5000}
	child := parent.Replicate(6000, cfg, rng, ids)

	if child.X != 100 || child.Y != 100 {
		t.Errorf("child at (%g, %g), want parent position (100, 100)", child.X, child.Y)
	}
	if child.Energy != 50 {
		t.Errorf("child energy = %g, want full 50", child.Energy)
	}
	if child.ID == parent.ID {
		t.Error("child reused the parent's ID")
	}
	if parent.Energy != 0 {
		t.Errorf("parent energy = %g after paying a full-max cost, want 0", parent.Energy)
	}
	if parent.NextReplicateAt < 6000 {
		t.Errorf("parent timer = %g, want rescheduled at or after now (6000)", parent.NextReplicateAt)
	}
	if child.NextReplicateAt < 6000 {
		t.Errorf("child timer = %g, want drawn at or after now (6000)", child.NextReplicateAt)
	}
}

// ---------- Update dispatch order ----------

func TestUpdate_ForageRunsBeforeReplicationCheck(t *testing.T) {
	cfg := testConfig(t) // max 100, gain 25, cost 60
	w := NewWorld(200, 200)
	w.AddFoodAt(10, 10)
	rng := rand.New(rand.NewSource(42))
	ids := NewIDGenerator()

	// One food away from full, timer due: eating first enables replication
	tl := &Thronglet{ID: ids.NextID(), X: 10, Y: 10, Energy: 75, NextReplicateAt: 0}
	child := tl.Update(1000, w, []*Thronglet{tl}, cfg, rng, ids)

	if child == nil {
		t.Fatal("expected a child: forage should fill energy before the gate check")
	}
	if w.FoodCount() != 0 {
		t.Errorf("food count = %d, want 0", w.FoodCount())
	}
	if tl.Energy != 40 {
		t.Errorf("parent energy = %g, want 100 - 60 = 40", tl.Energy)
	}
	if child.X != 10 || child.Y != 10 {
		t.Errorf("child at (%g, %g), want (10, 10)", child.X, child.Y)
	}
}

func TestUpdate_DueButUnderfedSeeksFood(t *testing.T) {
	cfg := testConfig(t)
	cfg.Energy.Max = 50
	cfg.Energy.ReplicationCost = 40
	w := NewWorld(200, 200)
	w.AddFoodAt(60, 50)
	rng := rand.New(rand.NewSource(42))
	ids := NewIDGenerator()

	tl := &Thronglet{ID: ids.NextID(), X: 50, Y: 50, Energy: 30, NextReplicateAt: 0}
	child := tl.Update(1000, w, []*Thronglet{tl}, cfg, rng, ids)

	if child != nil {
		t.Fatal("underfed agent must not replicate")
	}
	if math.Abs(tl.X-52.5) > 1e-9 || math.Abs(tl.Y-50) > 1e-9 {
		t.Errorf("moved to (%g, %g), want seek step to (52.5, 50)", tl.X, tl.Y)
	}
	if tl.Energy != 30 {
		t.Errorf("energy = %g, want unchanged 30", tl.Energy)
	}
}

func TestUpdate_SeparationRunsBeforeReplication(t *testing.T) {
	cfg := testConfig(t)
	cfg.Agent.SeparationDistance = 5
	cfg.Agent.SeparationSpeed = 2
	w := NewWorld(200, 200)
	rng := rand.New(rand.NewSource(42))
	ids := NewIDGenerator()

	parent := &Thronglet{ID: ids.NextID(), X: 50, Y: 50, Energy: cfg.Energy.Max, NextReplicateAt: 0}
	neighbor := &Thronglet{ID: ids.NextID(), X: 52, Y: 50, Energy: 10, NextReplicateAt: 1e12}
	roster := []*Thronglet{parent, neighbor}

	child := parent.Update(1000, w, roster, cfg, rng, ids)

	if child == nil {
		t.Fatal("expected a child")
	}
	// The parent separated to (48, 50) first, so the child is born there
	if math.Abs(parent.X-48) > 1e-9 || math.Abs(child.X-48) > 1e-9 {
		t.Errorf("parent at %g, child at %g, want both at x=48", parent.X, child.X)
	}
}

func TestUpdate_WandersWhenIdle(t *testing.T) {
	cfg := testConfig(t)
	w := NewWorld(200, 200)
	rng := rand.New(rand.NewSource(42))
	ids := NewIDGenerator()

	tl := &Thronglet{ID: ids.NextID(), X: 50, Y: 50, Energy: 50, NextReplicateAt: 1e12}
	child := tl.Update(1000, w, []*Thronglet{tl}, cfg, rng, ids)

	if child != nil {
		t.Fatal("idle agent must not replicate")
	}
	if tl.X == 50 && tl.Y == 50 {
		t.Error("idle agent should random walk")
	}
	if tl.Energy != 50 {
		t.Errorf("energy = %g, want unchanged 50", tl.Energy)
	}
}
