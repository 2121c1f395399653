// Package world owns the shared simulation state — the fluid field,
// scalar fields, broad-phase grid, particle system, and the living
// creature population — and drives the per-tick simulation engine
// described in spec.md §4.9: grid rebuild, particle repopulation, fluid
// step, per-creature update and reproduction, offspring admission,
// particle advance, unstable-creature culling, and floor top-up.
package world

import (
	"github.com/fluidlife/biosim/blueprint"
	"github.com/fluidlife/biosim/brain"
	"github.com/fluidlife/biosim/config"
	"github.com/fluidlife/biosim/creature"
	"github.com/fluidlife/biosim/fields"
	"github.com/fluidlife/biosim/fluid"
	"github.com/fluidlife/biosim/particles"
	"github.com/fluidlife/biosim/spatial"
	"github.com/fluidlife/biosim/vecmath"
)

// TickStats summarizes what happened during one Step call, for a driver
// to log or export.
type TickStats struct {
	Tick              int
	Population        int
	ParticleCount     int
	OffspringBorn     int
	CreaturesCulled   int
	FailedPlacements  int
	GlobalEnergyGains float32
	GlobalEnergyCosts float32
	Mutations         blueprint.MutationCounters
}

// World holds every shared subsystem and the living population. It
// implements creature.Locator, creature.PlacementSpace, and
// creature.ParticleMarker so per-creature code never needs direct access
// to the population or particle list.
type World struct {
	cfg *config.Config

	grid       *spatial.Grid
	fluidField *fluid.Field
	fieldSet   *fields.Set
	particles  *particles.System

	population []*creature.Creature
	nextID     int

	// particleIDBase separates the broad-phase grid's point-id namespace
	// (creature slot * MaxPointsPerCreature + point index) from its
	// particle-id namespace (particleIDBase + particle slice index). Sized
	// off the population ceiling so it never collides with a live point id.
	particleIDBase int

	reserved []disc

	GlobalEnergyGains float32
	GlobalEnergyCosts float32
	MutationCounters  blueprint.MutationCounters

	Tick int

	rng       *vecmath.RandomSource
	wiringCfg blueprint.WiringConfig
}

type disc struct {
	x, y, radius float32
}

// New builds a world from configuration, seeded with a population at the
// configured floor.
func New(cfg *config.Config, seed int64) *World {
	worldW := float32(cfg.World.Width)
	worldH := float32(cfg.World.Height)

	w := &World{
		cfg:            cfg,
		grid:           spatial.NewGrid(worldW, worldH, float32(cfg.Spatial.CellSize), cfg.World.Wrap),
		fluidField:     fluid.NewField(worldW, worldH, cfg.World.Wrap, cfg),
		fieldSet:       fields.NewSet(worldW, worldH, seed, cfg),
		particles:      particles.NewSystem(worldW, worldH, cfg.World.Wrap, cfg.Particles, vecmath.NewRandomSource(seed+1)),
		particleIDBase: cfg.Population.Ceiling * creature.MaxPointsPerCreature,
		rng:            vecmath.NewRandomSource(seed),
		wiringCfg: blueprint.WiringConfig{
			NeuralInputSizeBase: cfg.Brain.NeuralInputSizeBase,
			EyeInputs:           cfg.Brain.EyeInputs,
			FluidSensorInputs:   cfg.Brain.FluidSensorInputs,
		},
	}

	for i := 0; i < cfg.Population.Floor; i++ {
		w.population = append(w.population, w.spawnRandomCreature())
	}

	return w
}

// Population returns the live creature slice. Callers must not retain or
// mutate it across a Step call.
func (w *World) Population() []*creature.Creature { return w.population }

// ParticleCount returns the current number of live particles.
func (w *World) ParticleCount() int { return w.particles.Count() }

// spawnRandomCreature builds a fresh first-generation creature at a random
// interior position, used both for initial seeding and floor top-up.
func (w *World) spawnRandomCreature() *creature.Creature {
	shapes := []blueprint.Shape{blueprint.ShapeGrid, blueprint.ShapeLine, blueprint.ShapeStar}
	shape := shapes[w.rng.IntN(len(shapes))]

	genCfg := blueprint.GenerateConfig{NeuronChance: float32(w.cfg.Brain.NeuronChance)}
	bp := blueprint.Generate(shape, genCfg, w.rng)

	x := w.rng.UniformRange(0, float32(w.cfg.World.Width))
	y := w.rng.UniformRange(0, float32(w.cfg.World.Height))
	ph := blueprint.Instantiate(bp, x, y, w.wiringCfg)

	net := brain.NewNet(w.rng.Rand(), ph.Wiring.InputSize, w.cfg.Brain.HiddenMin, 2*ph.Wiring.OutputSlots)
	trainer := brain.NewTrainer(w.cfg.Brain)

	id := w.allocID()
	return creature.New(id, 0, ph, bp, w.rng, net, trainer)
}

func (w *World) allocID() int {
	w.nextID++
	return w.nextID
}

// Step advances the simulation by dt seconds, per spec.md §4.9's ten
// ordered steps.
func (w *World) Step(dt float32) TickStats {
	w.Tick++
	stats := TickStats{Tick: w.Tick}

	// 1. Rebuild broad-phase grid from living points and alive particles.
	w.rebuildGrid()

	// 2. Queued velocity emitters: no interactive control plane exists in
	// this headless driver, so there is nothing to inject here.

	// 3. Particle repopulation.
	w.particles.Repopulate(dt)

	// 4. Optional selected-point fluid push: interactive-only, skipped.

	// 5. Fluid step.
	w.fieldSet.Step(dt)
	w.fluidField.Step(dt)

	// 6. Per-creature update (reverse order) and reproduction.
	w.reserved = w.reserved[:0]
	var offspring []*creature.Creature
	worldW := float32(w.cfg.World.Width)
	worldH := float32(w.cfg.World.Height)

	for i := len(w.population) - 1; i >= 0; i-- {
		c := w.population[i]
		c.UpdateSelf(dt, w.grid, w, w, w.fluidField, w.fieldSet, worldW, worldH, w.cfg.World.Wrap, i, w.cfg)

		if c.Unstable {
			continue
		}
		if c.ReproductionEligible(w.cfg, len(w.population)+len(offspring), w.cfg.Population.Ceiling) {
			before := len(w.reserved)
			kids := c.Reproduce(w.cfg, w.rng, w.wiringCfg, w, w.allocID, &w.MutationCounters)
			if len(kids) == 0 && len(w.reserved) == before {
				stats.FailedPlacements++
			}
			offspring = append(offspring, kids...)
		}
	}

	// 7. Append offspring.
	w.population = append(w.population, offspring...)
	stats.OffspringBorn = len(offspring)

	// 8. Advance particles, removing dead or fully-eaten ones.
	w.particles.Advance(dt, w.fluidField)

	// 9. Remove unstable creatures, folding lifetime accumulators into
	// global totals.
	alive := w.population[:0]
	for _, c := range w.population {
		if c.Unstable {
			w.GlobalEnergyGains += c.LifetimeGains
			w.GlobalEnergyCosts += c.LifetimeCosts
			stats.CreaturesCulled++
			continue
		}
		alive = append(alive, c)
	}
	w.population = alive

	// 10. Top up to the population floor with parentless creatures.
	for len(w.population) < w.cfg.Population.Floor {
		w.population = append(w.population, w.spawnRandomCreature())
	}

	stats.Population = len(w.population)
	stats.ParticleCount = w.particles.Count()
	stats.GlobalEnergyGains = w.GlobalEnergyGains
	stats.GlobalEnergyCosts = w.GlobalEnergyCosts
	stats.Mutations = w.MutationCounters
	return stats
}

// rebuildGrid clears and refills the broad-phase grid from every living
// creature's points and every live particle, per step 1 of the tick order.
func (w *World) rebuildGrid() {
	w.grid.Clear()
	for slot, c := range w.population {
		for idx, p := range c.Points {
			w.grid.Insert(creature.EncodePointID(slot, idx), p.Pos.X, p.Pos.Y)
		}
	}
	for idx, p := range w.particles.Particles {
		w.grid.Insert(w.particleIDBase+idx, p.Pos.X, p.Pos.Y)
	}
}

// LookupPoint implements creature.Locator.
func (w *World) LookupPoint(id int) (*creature.Creature, *creature.Point, bool) {
	if id >= w.particleIDBase {
		return nil, nil, false
	}
	slot, idx := creature.DecodePointID(id)
	if slot < 0 || slot >= len(w.population) {
		return nil, nil, false
	}
	owner := w.population[slot]
	if idx < 0 || idx >= len(owner.Points) {
		return nil, nil, false
	}
	return owner, &owner.Points[idx], true
}

// LookupParticle implements creature.Locator.
func (w *World) LookupParticle(id int) (x, y float32, ok bool) {
	if id < w.particleIDBase {
		return 0, 0, false
	}
	idx := id - w.particleIDBase
	if idx < 0 || idx >= len(w.particles.Particles) {
		return 0, 0, false
	}
	p := w.particles.Particles[idx]
	return p.Pos.X, p.Pos.Y, true
}

// MarkEaten implements creature.ParticleMarker: consumes a particle by its
// encoded grid id exactly once.
func (w *World) MarkEaten(id int) bool {
	if id < w.particleIDBase {
		return false
	}
	idx := id - w.particleIDBase
	if idx < 0 || idx >= len(w.particles.Particles) || w.particles.Particles[idx].IsEaten {
		return false
	}
	w.particles.MarkEaten(idx)
	return true
}

// Blocked implements creature.PlacementSpace: reports whether a candidate
// offspring disc overlaps any living body or any newborn already reserved
// earlier in this same tick.
func (w *World) Blocked(x, y, radius float32) bool {
	for _, c := range w.population {
		com := c.CenterOfMass()
		if overlaps(x, y, radius, com.X, com.Y, c.Blueprint.Radius()) {
			return true
		}
	}
	for _, d := range w.reserved {
		if overlaps(x, y, radius, d.x, d.y, d.radius) {
			return true
		}
	}
	return false
}

// Reserve implements creature.PlacementSpace.
func (w *World) Reserve(x, y, radius float32) {
	w.reserved = append(w.reserved, disc{x: x, y: y, radius: radius})
}

func overlaps(x1, y1, r1, x2, y2, r2 float32) bool {
	dx, dy := x1-x2, y1-y2
	minDist := r1 + r2
	return dx*dx+dy*dy < minDist*minDist
}
