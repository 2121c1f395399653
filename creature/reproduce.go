package creature

import (
	"math"

	"github.com/fluidlife/biosim/blueprint"
	"github.com/fluidlife/biosim/brain"
	"github.com/fluidlife/biosim/config"
	"github.com/fluidlife/biosim/vecmath"
)

// PlacementSpace lets a creature test and reserve candidate offspring
// placements against the rest of the population without owning the
// population itself. World implements this over its living bodies plus
// whatever newborns have already been placed earlier in the same tick.
type PlacementSpace interface {
	Blocked(x, y, radius float32) bool
	Reserve(x, y, radius float32)
}

// ReproductionEligible reports whether this creature currently satisfies
// the fertility preconditions checked before attempting reproduce.
func (c *Creature) ReproductionEligible(cfg *config.Config, populationSize, populationCeiling int) bool {
	return c.Energy >= c.Genome.ReproductionEnergyThreshold &&
		c.CanReproduce &&
		populationSize < populationCeiling &&
		c.FailedReproductionCooldown == 0
}

// Reproduce attempts to place up to Genome.NumOffspring children around
// this creature's center of mass, debiting energy per accepted placement.
// nextID allocates a globally unique id for each accepted child. On return,
// the parent's own bookkeeping (energy debit, cooldown reset, failed-cooldown
// penalty) has already been applied.
func (c *Creature) Reproduce(cfg *config.Config, rng *vecmath.RandomSource, wcfg blueprint.WiringConfig, space PlacementSpace, nextID func() int, globalCounters *blueprint.MutationCounters) []*Creature {
	var offspring []*Creature
	com := c.CenterOfMass()
	energyShare := float32(cfg.Reproduction.OffspringInitialShare)
	energyPerOffspring := c.MaxEnergy * energyShare
	clearance := float32(cfg.Reproduction.Clearance)
	attempts := cfg.Reproduction.PlacementAttempts

	anyPlaced := false
	for i := 0; i < c.Genome.NumOffspring && c.Energy >= energyPerOffspring; i++ {
		childBP := c.Blueprint.Clone()
		var counters blueprint.MutationCounters
		blueprint.Mutate(childBP, cfg.Mutation, &counters, rng)
		if globalCounters != nil {
			globalCounters.Merge(&counters)
		}

		childRadius := childBP.Radius()
		placedOK := false
		var spawnX, spawnY float32

		for attempt := 0; attempt < attempts; attempt++ {
			angle := rng.UniformRange(0, float32(2*math.Pi))
			radius := rng.UniformRange(0.5, 1.0) * c.Genome.OffspringSpawnRadius
			x := com.X + radius*float32(math.Cos(float64(angle)))
			y := com.Y + radius*float32(math.Sin(float64(angle)))

			if space.Blocked(x, y, childRadius+clearance) {
				continue
			}
			spawnX, spawnY = x, y
			placedOK = true
			break
		}

		if !placedOK {
			continue
		}

		ph := blueprint.Instantiate(childBP, spawnX, spawnY, wcfg)
		net := brain.NewNet(rng.Rand(), ph.Wiring.InputSize, pickHiddenSize(childBP, cfg), 2*ph.Wiring.OutputSlots)
		trainer := brain.NewTrainer(cfg.Brain)

		child := New(nextID(), c.ID, ph, childBP, rng, net, trainer)
		space.Reserve(spawnX, spawnY, childRadius+clearance)

		c.Energy -= energyPerOffspring
		offspring = append(offspring, child)
		anyPlaced = true
	}

	if anyPlaced {
		c.Energy *= 1 - float32(cfg.Reproduction.AdditionalCostFactor)
		if c.Energy < 0 {
			c.Energy = 0
		}
		c.TicksSinceBirth = 0
		c.CanReproduce = false
		c.JustReproduced = true
	} else if c.Energy >= energyPerOffspring {
		c.FailedReproductionCooldown = cfg.Reproduction.FailedCooldownTicks
	}

	return offspring
}

// pickHiddenSize reads the brain-sizing NEURON that will become this
// blueprint's designated brain (first NEURON by point index), falling back
// to the configured minimum if none carries sizing data.
func pickHiddenSize(bp *blueprint.Blueprint, cfg *config.Config) int {
	for _, p := range bp.Points {
		if p.NodeType == blueprint.Neuron && p.Neuron != nil {
			h := p.Neuron.HiddenLayerSize
			if h < cfg.Brain.HiddenMin {
				h = cfg.Brain.HiddenMin
			}
			if h > cfg.Brain.HiddenMax {
				h = cfg.Brain.HiddenMax
			}
			return h
		}
	}
	return cfg.Brain.HiddenMin
}
