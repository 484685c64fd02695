package sim

import (
	"math/rand"

	"github.com/pthm-cable/thronglets/config"
)

// IDGenerator issues unique agent IDs. IDs start at 1 and only grow.
type IDGenerator struct {
	next uint32
}

// NewIDGenerator creates a generator whose first ID is 1.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{next: 1}
}

// NextID returns the next unused ID.
func (g *IDGenerator) NextID() uint32 {
	id := g.next
	g.next++
	return id
}

// Reserve bumps the counter past id so it is never reissued.
func (g *IDGenerator) Reserve(id uint32) {
	if g.next <= id {
		g.next = id + 1
	}
}

// Population owns the agent roster and advances it tick by tick.
type Population struct {
	cfg    *config.Config
	rng    *rand.Rand
	ids    *IDGenerator
	agents []*Thronglet
}

// NewPopulation creates an empty population. The RNG drives all
// stochastic agent behavior and timer draws.
func NewPopulation(cfg *config.Config, rng *rand.Rand) *Population {
	return &Population{
		cfg: cfg,
		rng: rng,
		ids: NewIDGenerator(),
	}
}

// SpawnAt adds a fresh agent at the clamped position with full energy
// and a newly drawn replication timer.
func (p *Population) SpawnAt(w *World, x, y, now float64) *Thronglet {
	cx, cy := w.Clamp(x, y)
	t := &Thronglet{
		ID:              p.ids.NextID(),
		X:               cx,
		Y:               cy,
		Energy:          p.cfg.Energy.Max,
		NextReplicateAt: now + replicationInterval(p.rng, p.cfg.Replication.IntervalMeanMS),
	}
	p.agents = append(p.agents, t)
	return t
}

// ScatterUniform spawns n agents uniformly over the world.
func (p *Population) ScatterUniform(w *World, n int, now float64) {
	for i := 0; i < n; i++ {
		p.SpawnAt(w, p.rng.Float64()*w.Width, p.rng.Float64()*w.Height, now)
	}
}

// RestoreAgent reinserts an exact agent state, reserving its ID so
// later spawns cannot collide with it.
func (p *Population) RestoreAgent(t Thronglet) {
	p.ids.Reserve(t.ID)
	restored := t
	p.agents = append(p.agents, &restored)
}

// Step advances every agent one tick. Roster membership is fixed at
// the start of the tick: children born during the pass do not act and
// are not seen as neighbors until the next tick. Timestamps passed in
// must never decrease between calls.
func (p *Population) Step(now float64, w *World) {
	roster := p.agents

	// Collect births to append after the pass
	var births []*Thronglet
	for _, t := range roster {
		if child := t.Update(now, w, roster, p.cfg, p.rng, p.ids); child != nil {
			births = append(births, child)
		}
	}

	p.agents = append(p.agents, births...)
}

// Agents returns the live roster. Callers must not mutate it.
func (p *Population) Agents() []*Thronglet {
	return p.agents
}

// Count returns the number of live agents.
func (p *Population) Count() int {
	return len(p.agents)
}

// DueCount returns how many agents have a due replication timer.
func (p *Population) DueCount(now float64) int {
	n := 0
	for _, t := range p.agents {
		if now >= t.NextReplicateAt {
			n++
		}
	}
	return n
}
