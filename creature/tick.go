package creature

import (
	"github.com/fluidlife/biosim/config"
	"github.com/fluidlife/biosim/fields"
	"github.com/fluidlife/biosim/fluid"
	"github.com/fluidlife/biosim/spatial"
)

// UpdateSelf drives this creature through the six ordered per-tick
// sub-phases (sensory, brain, energy, physics, interaction, stability),
// composing sensory.go/brain.go/energy.go/physics.go/interaction.go/
// stability.go in the §4.4 order. Once a phase marks the creature
// Unstable, the remaining phases for this tick are skipped: there is no
// point sensing, thinking, or spending energy budget for a body the
// driver is about to cull. selfSlot is this creature's current index in
// the owning population slice, used to address its own points in the
// broad-phase grid.
func (c *Creature) UpdateSelf(
	dt float32,
	grid *spatial.Grid,
	loc Locator,
	particles ParticleMarker,
	fluidField *fluid.Field,
	fieldSet *fields.Set,
	worldW, worldH float32,
	wrap bool,
	selfSlot int,
	cfg *config.Config,
) {
	c.UpdateSensory(dt, grid, loc, fluidField, selfSlot)
	if c.Unstable {
		return
	}

	c.UpdateBrain(dt, fluidField, fieldSet, cfg)
	if c.Unstable {
		return
	}

	c.UpdateEnergyBudget(dt, fieldSet, fluidField.DyeAt, cfg)
	if c.Unstable {
		return
	}

	c.Integrate(dt, fluidField, worldW, worldH, wrap, cfg)
	if c.Unstable {
		return
	}

	c.Interact(grid, loc, particles, fieldSet, selfSlot, cfg)
	if c.Unstable {
		return
	}

	c.FinalizeStability(cfg)
}
