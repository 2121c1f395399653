package creature

import (
	"math"

	"github.com/fluidlife/biosim/blueprint"
	"github.com/fluidlife/biosim/fluid"
	"github.com/fluidlife/biosim/spatial"
)

const eyeDetectionRadius = 120.0

// Locator resolves a broad-phase grid item id back to the point it came
// from, whether that point belongs to a foreign creature or is a
// particle. World supplies the concrete implementation since only it
// knows the full population and particle list.
type Locator interface {
	LookupPoint(id int) (owner *Creature, point *Point, ok bool)
	LookupParticle(id int) (x, y float32, ok bool)
}

// UpdateSensory runs sub-phase 1: apply each point's default activation
// pattern, reset EATER/PREDATOR exertion to zero (only a brain may drive
// them), scan EYE points for the nearest target, and sample fluid
// velocity at SWIMMER/JET points.
func (c *Creature) UpdateSensory(dt float32, grid *spatial.Grid, loc Locator, fluidField *fluid.Field, selfSlot int) {
	tNorm := float32(c.TicksSinceBirth) + c.Genome.ActivationPhaseOffset
	if c.Genome.ActivationPeriod > 0 {
		tNorm /= c.Genome.ActivationPeriod
	}

	for i := range c.Points {
		p := &c.Points[i]

		switch c.Genome.ActivationPattern {
		case blueprint.Flat:
			p.Exertion = c.Genome.ActivationLevel
		case blueprint.Sine:
			p.Exertion = c.Genome.ActivationLevel * (0.5*float32(math.Sin(2*math.Pi*float64(tNorm))) + 0.5)
		case blueprint.Pulse:
			frac := tNorm - float32(math.Floor(float64(tNorm)))
			if frac < 0.1 {
				p.Exertion = c.Genome.ActivationLevel
			} else {
				p.Exertion = 0
			}
		}

		if p.NodeType == blueprint.Eater || p.NodeType == blueprint.Predator {
			p.Exertion = 0
		}

		if p.NodeType == blueprint.Eye {
			c.scanEye(i, grid, loc, selfSlot)
		}

		if p.NodeType == blueprint.Swimmer || p.NodeType == blueprint.Jet {
			p.SensedFluidVelocity = fluidField.VelocityAt(p.Pos.X, p.Pos.Y)
		}
	}
}

// scanEye searches the broad-phase neighbourhood for the nearest target
// of this EYE point's configured target type, recording whether one was
// seen, its normalized distance, and its bearing.
func (c *Creature) scanEye(pointIndex int, grid *spatial.Grid, loc Locator, selfSlot int) {
	p := &c.Points[pointIndex]
	selfID := EncodePointID(selfSlot, pointIndex)

	var buf [spatial.MaxQueryResults]spatial.Neighbor
	neighbors := grid.QueryRadiusInto(buf[:0], p.Pos.X, p.Pos.Y, eyeDetectionRadius, selfID)

	p.SeesTarget = false
	p.EyeDistanceNorm = 1
	p.EyeBearing = 0

	bestDistSq := float32(eyeDetectionRadius * eyeDetectionRadius)
	found := false
	var bestDX, bestDY float32

	for _, n := range neighbors {
		switch p.EyeTargetType {
		case blueprint.TargetParticle:
			x, y, ok := loc.LookupParticle(n.Item.ID)
			if !ok {
				continue
			}
			dx := x - p.Pos.X
			dy := y - p.Pos.Y
			if d := dx*dx + dy*dy; d < bestDistSq {
				bestDistSq, found, bestDX, bestDY = d, true, dx, dy
			}
		case blueprint.TargetForeignBodyPoint:
			owner, fp, ok := loc.LookupPoint(n.Item.ID)
			if !ok || owner.ID == c.ID {
				continue
			}
			dx := fp.Pos.X - p.Pos.X
			dy := fp.Pos.Y - p.Pos.Y
			if d := dx*dx + dy*dy; d < bestDistSq {
				bestDistSq, found, bestDX, bestDY = d, true, dx, dy
			}
		}
	}

	if found {
		p.SeesTarget = true
		p.EyeDistanceNorm = float32(math.Sqrt(float64(bestDistSq))) / eyeDetectionRadius
		p.EyeBearing = float32(math.Atan2(float64(bestDY), float64(bestDX)))
	}
}
