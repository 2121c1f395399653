package creature

import (
	"math"

	"github.com/fluidlife/biosim/blueprint"
	"github.com/fluidlife/biosim/config"
	"github.com/fluidlife/biosim/fluid"
	"github.com/fluidlife/biosim/vecmath"
)

// Integrate runs sub-phase 4: apply spring forces (Hooke plus implicit
// Verlet velocity damping), Verlet-step every non-fixed point, enforce
// world boundary (wrap or clamp+reflect), blend FLOATING points with the
// local fluid current, and inject EMITTER dye / JET velocity into the
// fluid field. Any excessive or non-finite displacement marks the
// creature unstable.
func (c *Creature) Integrate(dt float32, fluidField *fluid.Field, worldW, worldH float32, wrap bool, cfg *config.Config) {
	forces := make([]vecmath.Vec2, len(c.Points))

	for _, s := range c.Springs {
		a, b := &c.Points[s.P1], &c.Points[s.P2]
		delta := b.Pos.Sub(a.Pos)
		dist := delta.Len()
		if dist < 1e-6 {
			continue
		}
		dir := delta.Scale(1 / dist)

		stiffness, damping := s.Stiffness, s.Damping
		if s.IsRigid {
			stiffness = float32(cfg.Physics.RigidStiffness)
			damping = float32(cfg.Physics.RigidDamping)
		}

		stretch := dist - s.RestLength
		springForce := dir.Scale(stiffness * stretch)

		velA := a.Pos.Sub(a.PrevPos)
		velB := b.Pos.Sub(b.PrevPos)
		relVel := velB.Sub(velA)
		dampingForce := dir.Scale(damping * relVel.Dot(dir))

		total := springForce.Add(dampingForce)
		forces[s.P1] = forces[s.P1].Add(total)
		forces[s.P2] = forces[s.P2].Sub(total)

		if stretch > s.RestLength*(float32(cfg.Physics.MaxStretchFactor)-1) {
			c.Unstable = true
		}
	}

	maxDispSq := float32(cfg.Physics.MaxDisplacement) * float32(cfg.Physics.MaxDisplacement)
	restitution := float32(cfg.Physics.Restitution)
	entrainment := float32(cfg.Physics.BodyFluidEntrainment)
	currentStrength := float32(cfg.Physics.FluidCurrentStrength)

	for i := range c.Points {
		p := &c.Points[i]

		if p.NodeType == blueprint.Emitter && p.Exertion > 0.01 {
			strength := 50 * p.Exertion
			ci, cj := fluidField.CellAt(p.Pos.X, p.Pos.Y)
			fluidField.AddDensity(ci, cj, float32(p.Dye.R), float32(p.Dye.G), float32(p.Dye.B), strength)
		}
		if p.NodeType == blueprint.Jet && p.Exertion > 0.01 {
			localVel := fluidField.VelocityAt(p.Pos.X, p.Pos.Y)
			if localVel.LenSq() < p.MaxEffectiveJetVelocity*p.MaxEffectiveJetVelocity {
				dx := p.ActuatorMagnitude * float32(math.Cos(float64(p.ActuatorAngle)))
				dy := p.ActuatorMagnitude * float32(math.Sin(float64(p.ActuatorAngle)))
				ci, cj := fluidField.CellAt(p.Pos.X, p.Pos.Y)
				fluidField.AddVelocity(ci, cj, dx, dy)
			}
		}
		if p.NodeType == blueprint.Swimmer && p.Exertion > 0.01 && !p.IsFixed() {
			dx := p.ActuatorMagnitude * float32(math.Cos(float64(p.ActuatorAngle)))
			dy := p.ActuatorMagnitude * float32(math.Sin(float64(p.ActuatorAngle)))
			forces[i] = forces[i].Add(vecmath.Vec2{X: dx, Y: dy}.Scale(1 / dt))
		}

		if p.IsFixed() {
			continue
		}

		accel := forces[i].Scale(p.InvMass)
		newPos := p.Pos.Scale(2).Sub(p.PrevPos).Add(accel.Scale(dt * dt))

		if p.MovementType == blueprint.Floating {
			current := p.SensedFluidVelocity.Scale(currentStrength * dt)
			implicitVel := p.Pos.Sub(p.PrevPos)
			blended := implicitVel.Scale(1 - entrainment).Add(current.Scale(entrainment))
			p.PrevPos = newPos.Sub(blended)
		} else {
			p.PrevPos = p.Pos
		}

		disp := newPos.Sub(p.Pos)
		p.displacementSq = disp.LenSq()
		if p.displacementSq > maxDispSq || !newPos.Finite() {
			c.Unstable = true
		}

		p.Pos = newPos

		if wrap {
			if p.Pos.X < 0 {
				p.Pos.X += worldW
				p.PrevPos.X += worldW
			} else if p.Pos.X >= worldW {
				p.Pos.X -= worldW
				p.PrevPos.X -= worldW
			}
			if p.Pos.Y < 0 {
				p.Pos.Y += worldH
				p.PrevPos.Y += worldH
			} else if p.Pos.Y >= worldH {
				p.Pos.Y -= worldH
				p.PrevPos.Y -= worldH
			}
		} else {
			vel := p.Pos.Sub(p.PrevPos)
			if p.Pos.X < p.Radius {
				p.Pos.X = p.Radius
				vel.X = -vel.X * restitution
				p.PrevPos.X = p.Pos.X - vel.X
			} else if p.Pos.X > worldW-p.Radius {
				p.Pos.X = worldW - p.Radius
				vel.X = -vel.X * restitution
				p.PrevPos.X = p.Pos.X - vel.X
			}
			if p.Pos.Y < p.Radius {
				p.Pos.Y = p.Radius
				vel.Y = -vel.Y * restitution
				p.PrevPos.Y = p.Pos.Y - vel.Y
			} else if p.Pos.Y > worldH-p.Radius {
				p.Pos.Y = worldH - p.Radius
				vel.Y = -vel.Y * restitution
				p.PrevPos.Y = p.Pos.Y - vel.Y
			}
		}
	}
}
