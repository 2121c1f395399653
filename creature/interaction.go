package creature

import (
	"math"

	"github.com/fluidlife/biosim/blueprint"
	"github.com/fluidlife/biosim/config"
	"github.com/fluidlife/biosim/fields"
	"github.com/fluidlife/biosim/spatial"
)

// Interact runs sub-phase 5: inter-body point repulsion, predation, and
// eating, all resolved through the broad-phase grid so a creature never
// needs direct access to the rest of the population. selfSlot identifies
// this creature's own encoded grid ids so matches against its own points
// are skipped.
func (c *Creature) Interact(grid *spatial.Grid, loc Locator, particles ParticleMarker, fieldSet *fields.Set, selfSlot int, cfg *config.Config) {
	radiusFactor := float32(cfg.Physics.RepulsionRadiusFactor)
	repulsionStrength := float32(cfg.Physics.RepulsionStrength)
	predationBase := float32(cfg.Energy.PredationEnergyBase)
	predationBonus := float32(cfg.Energy.PredationEnergyBonus)
	eatingBase := float32(cfg.Energy.EatingRadiusBase)
	eatingBonus := float32(cfg.Energy.EatingRadiusBonus)
	energyPerParticle := float32(cfg.Energy.EnergyPerParticle)
	minNutrient := float32(cfg.Fields.MinNutrient)

	var buf [spatial.MaxQueryResults]spatial.Neighbor

	for i := range c.Points {
		p := &c.Points[i]
		selfID := EncodePointID(selfSlot, i)

		queryRadius := p.Radius * radiusFactor
		if p.NodeType == blueprint.Predator {
			queryRadius = maxf(queryRadius, predationReach(p.Radius, radiusFactor))
		}
		if p.NodeType == blueprint.Eater {
			reach := eatingBase + eatingBonus*p.Exertion
			queryRadius = maxf(queryRadius, reach)
		}

		neighbors := grid.QueryRadiusInto(buf[:0], p.Pos.X, p.Pos.Y, queryRadius, selfID)

		for _, n := range neighbors {
			if owner, other, ok := loc.LookupPoint(n.Item.ID); ok {
				if owner.ID == c.ID {
					continue
				}
				resolveRepulsion(p, other, radiusFactor, repulsionStrength)

				if p.NodeType == blueprint.Predator && !c.PreyPredatedThisTick[owner.ID] {
					reach := predationReach(p.Radius, radiusFactor)
					dx, dy := other.Pos.X-p.Pos.X, other.Pos.Y-p.Pos.Y
					if dx*dx+dy*dy <= reach*reach && p.Exertion > 0.01 {
						transfer := predationBase + predationBonus*p.Exertion
						if transfer > owner.Energy {
							transfer = owner.Energy
						}
						if room := c.MaxEnergy - c.Energy; transfer > room {
							transfer = room
						}
						if transfer > 0 {
							owner.Energy -= transfer
							c.Energy += transfer
							c.tickGains += transfer
							c.PreyPredatedThisTick[owner.ID] = true
						}
					}
				}
				continue
			}

			if p.NodeType != blueprint.Eater {
				continue
			}
			x, y, ok := loc.LookupParticle(n.Item.ID)
			if !ok {
				continue
			}
			reach := eatingBase + eatingBonus*p.Exertion
			dx, dy := x-p.Pos.X, y-p.Pos.Y
			if dx*dx+dy*dy > reach*reach || p.Exertion <= 0.01 {
				continue
			}
			if particles.MarkEaten(n.Item.ID) {
				nutrient := fieldSet.Nutrient.Sample(x, y)
				c.Energy += energyPerParticle * maxf(minNutrient, nutrient)
				if c.Energy > c.MaxEnergy {
					c.Energy = c.MaxEnergy
				}
			}
		}
	}
}

// ParticleMarker lets a creature's eating pass consume a particle by its
// encoded grid id without knowing how that id maps back to the particle
// system's own indexing.
type ParticleMarker interface {
	MarkEaten(id int) (ok bool)
}

func predationReach(radius, factor float32) float32 {
	return radius * factor * 1.5
}

// resolveRepulsion pushes two overlapping, non-fixed points of distinct
// bodies apart by half the overlap each, scaled by RepulsionStrength.
func resolveRepulsion(p, other *Point, radiusFactor, strength float32) {
	if p.IsFixed() {
		return
	}
	threshold := (p.Radius + other.Radius) * radiusFactor
	dx, dy := p.Pos.X-other.Pos.X, p.Pos.Y-other.Pos.Y
	distSq := dx*dx + dy*dy
	if distSq >= threshold*threshold || distSq < 1e-9 {
		return
	}
	dist := float32(math.Sqrt(float64(distSq)))
	overlap := threshold - dist
	push := strength * overlap * 0.5 / dist
	p.Pos.X += dx * push
	p.Pos.Y += dy * push
}
