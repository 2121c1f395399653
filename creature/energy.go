package creature

import (
	"github.com/fluidlife/biosim/blueprint"
	"github.com/fluidlife/biosim/config"
	"github.com/fluidlife/biosim/fields"
)

// UpdateEnergyBudget runs sub-phase 3: per-point existence/actuator costs
// scaled by local nutrient scarcity, photosynthesis gain, and red-dye
// poison, applied as gains first then costs, clamped to [0,MaxEnergy].
// Energy<=0 marks the creature unstable.
func (c *Creature) UpdateEnergyBudget(dt float32, fieldSet *fields.Set, fluidDyeAt func(x, y float32) (r, g, b float32), cfg *config.Config) {
	e := &cfg.Energy
	minNutrient := float32(cfg.Fields.MinNutrient)
	globalMult := float32(cfg.Fields.GlobalNutrientMult)
	globalLight := float32(cfg.Fields.GlobalLightMult)

	var gain, cost, poison float32

	for i := range c.Points {
		p := &c.Points[i]

		nutrient := fieldSet.Nutrient.Sample(p.Pos.X, p.Pos.Y)
		costMult := 1 / maxf(minNutrient, nutrient*globalMult)

		pointCost := float32(e.BaseCost)
		ex2 := p.Exertion * p.Exertion

		switch p.NodeType {
		case blueprint.Emitter:
			pointCost += float32(e.EmitterCost) * ex2
		case blueprint.Swimmer:
			pointCost += float32(e.SwimmerCost) * ex2
		case blueprint.Eater:
			pointCost += float32(e.EaterCost) * ex2
		case blueprint.Predator:
			pointCost += float32(e.PredatorCost) * ex2
		case blueprint.Jet:
			pointCost += float32(e.JetCost) * ex2
		case blueprint.Photosynthetic:
			pointCost += float32(e.PhotosyntheticCost)
		case blueprint.Neuron:
			hidden := 0
			if p.Neuron != nil {
				hidden = p.Neuron.HiddenLayerSize
			}
			if c.Wiring.BrainIndex == i {
				pointCost += float32(e.NeuronBaseCost)*5 + float32(e.NeuronHiddenCostScale)*float32(hidden)
			} else {
				pointCost += float32(e.NeuronBaseCost)
			}
		}

		if p.IsGrabbing {
			pointCost += float32(e.GrabbingCost)
		}
		if p.IsDesignatedEye {
			pointCost += float32(e.EyeCost)
		}

		cost += pointCost * costMult

		if p.NodeType == blueprint.Photosynthetic {
			light := fieldSet.Light.Sample(p.Pos.X, p.Pos.Y)
			gain += light * globalLight * float32(e.PhotosynthEfficiency) * (p.Radius / 5) * dt
		}

		r, _, _ := fluidDyeAt(p.Pos.X, p.Pos.Y)
		poison += r * float32(e.PoisonStrength) * (p.Radius / 5)
	}

	c.prevEnergyChange = c.Energy - c.prevEnergy
	c.prevEnergy = c.Energy

	c.Energy += gain
	c.Energy -= cost * dt
	c.Energy -= poison * dt

	c.LifetimeGains += gain
	c.LifetimeCosts += cost * dt
	c.tickGains = gain
	c.tickCosts = cost*dt + poison*dt

	if c.Energy > c.MaxEnergy {
		c.Energy = c.MaxEnergy
	}
	if c.Energy <= 0 {
		c.Energy = 0
		c.Unstable = true
	}
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
