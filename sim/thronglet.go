package sim

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/thronglets/config"
)

// Thronglet is a single agent. Positions are continuous world
// coordinates; all times are simulation milliseconds.
type Thronglet struct {
	ID              uint32
	X               float64
	Y               float64
	Energy          float64
	NextReplicateAt float64
}

// MoveRandom applies an independent uniform offset in [-speed, speed]
// on each axis, then clamps to the world bounds.
func (t *Thronglet) MoveRandom(w *World, speed float64, rng *rand.Rand) {
	dx := (rng.Float64()*2 - 1) * speed
	dy := (rng.Float64()*2 - 1) * speed
	t.X, t.Y = w.Clamp(t.X+dx, t.Y+dy)
}

// MoveAwayFromOthers pushes the agent away from neighbors closer than
// minDist. Each neighbor contributes a unit vector away from it and
// the sum is rescaled to length speed. Coincident neighbors (distance
// exactly 0) contribute nothing. Without any repelling neighbor the
// position is untouched.
func (t *Thronglet) MoveAwayFromOthers(w *World, roster []*Thronglet, minDist, speed float64) {
	var pushX, pushY float64
	repelled := false
	for _, o := range roster {
		if o == t {
			continue
		}
		dx := t.X - o.X
		dy := t.Y - o.Y
		d := math.Hypot(dx, dy)
		if d <= 0 || d >= minDist {
			continue
		}
		pushX += dx / d
		pushY += dy / d
		repelled = true
	}
	if !repelled {
		return
	}
	norm := math.Hypot(pushX, pushY)
	if norm == 0 {
		// Opposing neighbors cancel out
		return
	}
	t.X, t.Y = w.Clamp(t.X+pushX/norm*speed, t.Y+pushY/norm*speed)
}

// SeekFood steps toward the nearest food by min(seekSpeed, distance)
// so the agent never overshoots. An agent already standing on the food
// does not move. With no food anywhere it falls back to a random walk.
func (t *Thronglet) SeekFood(w *World, seekSpeed, walkSpeed float64, rng *rand.Rand) {
	target, ok := w.NearestFood(t.X, t.Y)
	if !ok {
		t.MoveRandom(w, walkSpeed, rng)
		return
	}
	dx := float64(target.X) - t.X
	dy := float64(target.Y) - t.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return
	}
	step := math.Min(seekSpeed, dist)
	t.X, t.Y = w.Clamp(t.X+dx/dist*step, t.Y+dy/dist*step)
}

// Forage consumes the food at the agent's rounded cell, if any, and
// gains energy clamped at energyMax. Returns whether food was eaten.
func (t *Thronglet) Forage(w *World, gain, energyMax float64) bool {
	if !w.ConsumeFoodAt(int(math.Round(t.X)), int(math.Round(t.Y))) {
		return false
	}
	t.Energy = clamp(t.Energy+gain, 0, energyMax)
	return true
}

// DropFood places food at the agent's rounded cell for cost energy.
// Refused when the agent cannot pay the cost. The cost is charged even
// when the cell already holds food.
func (t *Thronglet) DropFood(w *World, cost float64) bool {
	if t.Energy < cost {
		return false
	}
	w.AddFoodAt(int(math.Round(t.X)), int(math.Round(t.Y)))
	t.Energy -= cost
	return true
}

// CanReplicate reports whether the agent may replicate now. The timer
// must be due and energy must be at its maximum; either alone is not
// enough.
func (t *Thronglet) CanReplicate(now, energyMax float64) bool {
	return now >= t.NextReplicateAt && t.Energy >= energyMax
}

// Replicate spends the replication cost, reschedules the parent's
// timer, and returns a child at the parent's position with full energy
// and a fresh ID. The parent's timer is redrawn before the child's so
// RNG consumption order stays fixed.
func (t *Thronglet) Replicate(now float64, cfg *config.Config, rng *rand.Rand, ids *IDGenerator) *Thronglet {
	t.Energy = clamp(t.Energy-cfg.Energy.ReplicationCost, 0, cfg.Energy.Max)
	t.NextReplicateAt = now + replicationInterval(rng, cfg.Replication.IntervalMeanMS)
	return &Thronglet{
		ID:              ids.NextID(),
		X:               t.X,
		Y:               t.Y,
		Energy:          cfg.Energy.Max,
		NextReplicateAt: now + replicationInterval(rng, cfg.Replication.IntervalMeanMS),
	}
}

// Update advances the agent one tick. The roster is the agent set as
// of the start of the tick and is never mutated here. Returns the
// child when the agent replicates, nil otherwise.
func (t *Thronglet) Update(now float64, w *World, roster []*Thronglet, cfg *config.Config, rng *rand.Rand, ids *IDGenerator) *Thronglet {
	// 1. Separate from crowding neighbors
	t.MoveAwayFromOthers(w, roster, cfg.Agent.SeparationDistance, cfg.Agent.SeparationSpeed)

	// 2. Eat whatever sits at the current cell
	t.Forage(w, cfg.Energy.GainPerFood, cfg.Energy.Max)

	// 3. Exactly one of: seek food, replicate, wander
	switch {
	case now >= t.NextReplicateAt && t.Energy < cfg.Energy.Max:
		// Timer due but underfed: finding food comes before anything else
		t.SeekFood(w, cfg.Agent.SeekSpeed, cfg.Agent.WalkSpeed, rng)
	case t.CanReplicate(now, cfg.Energy.Max):
		return t.Replicate(now, cfg, rng, ids)
	default:
		t.MoveRandom(w, cfg.Agent.WalkSpeed, rng)
	}
	return nil
}

// replicationInterval draws a timer delay from an exponential
// distribution with the configured mean.
func replicationInterval(rng *rand.Rand, meanMS float64) float64 {
	return distuv.Exponential{Rate: 1 / meanMS, Src: rng}.Rand()
}
