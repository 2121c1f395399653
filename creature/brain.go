package creature

import (
	"math"

	"github.com/fluidlife/biosim/blueprint"
	"github.com/fluidlife/biosim/brain"
	"github.com/fluidlife/biosim/config"
	"github.com/fluidlife/biosim/fields"
	"github.com/fluidlife/biosim/fluid"
	"github.com/fluidlife/biosim/vecmath"
)

// UpdateBrain runs sub-phase 2: compose the input vector for the
// designated brain point, run the forward pass, sample actions, and
// apply them in canonical point order (emitters -> swimmers -> eaters ->
// predators -> jets -> grabbers). If no brain is designated or its shape
// disagrees with the current point counts, fall back to periodic random
// motor impulses on non-fixed points.
func (c *Creature) UpdateBrain(dt float32, fluidField *fluid.Field, fieldSet *fields.Set, cfg *config.Config) {
	brainIndex := c.Wiring.BrainIndex
	if brainIndex < 0 || c.Brain == nil || c.Brain.I != c.Wiring.InputSize || c.Brain.O != 2*c.Wiring.OutputSlots {
		c.fallbackRandomImpulses(cfg)
		return
	}

	inputs := c.composeInputs(dt, brainIndex, fluidField, fieldSet, cfg)
	act := c.Brain.Forward(inputs)
	labels := c.actionLabels()
	actions := brain.SampleActions(act.RawOut, labels, c.rng, float32(cfg.Brain.StdDevEpsilon))

	c.LastInputs = inputs
	c.LastActions = actions

	c.applyActions(actions, cfg)
}

// composeInputs builds the fixed-order input vector described by the
// brain inference contract, padded/truncated by Net.Forward itself.
func (c *Creature) composeInputs(dt float32, brainIndex int, fluidField *fluid.Field, fieldSet *fields.Set, cfg *config.Config) []float32 {
	brainPt := &c.Points[brainIndex]
	r, g, b := fluidField.DyeAt(brainPt.Pos.X, brainPt.Pos.Y)

	energyRatio := float32(0)
	if c.MaxEnergy > 0 {
		energyRatio = c.Energy / c.MaxEnergy
	}

	com := c.CenterOfMass()
	relPos := brainPt.Pos.Sub(com)
	relPosN := vecmath.Vec2{X: vecmath.Tanh(relPos.X / 100), Y: vecmath.Tanh(relPos.Y / 100)}

	brainVel := brainPt.Pos.Sub(brainPt.PrevPos)
	maxDisp := float32(cfg.Physics.MaxDisplacement)
	if maxDisp <= 0 {
		maxDisp = 1
	}
	relVelN := vecmath.Vec2{X: vecmath.Tanh(brainVel.X / maxDisp), Y: vecmath.Tanh(brainVel.Y / maxDisp)}

	nutrient := fieldSet.Nutrient.Sample(brainPt.Pos.X, brainPt.Pos.Y)

	energyChange := c.Energy - c.prevEnergy
	secondDeriv := vecmath.Tanh((energyChange - c.prevEnergyChange) / 10)

	inputs := []float32{
		r / 255, g / 255, b / 255,
		energyRatio,
		relPosN.X, relPosN.Y,
		relVelN.X, relVelN.Y,
		nutrient,
		secondDeriv,
	}

	for i := range c.Points {
		p := &c.Points[i]
		if p.NodeType == blueprint.Swimmer || p.NodeType == blueprint.Jet {
			inputs = append(inputs, p.SensedFluidVelocity.X, p.SensedFluidVelocity.Y)
		}
	}

	const twoPi = 2 * math.Pi
	for i := range c.Points {
		p := &c.Points[i]
		if p.NodeType == blueprint.Eye {
			sees := float32(0)
			if p.SeesTarget {
				sees = 1
			}
			dirNorm := p.EyeBearing/twoPi + 0.5
			inputs = append(inputs, sees, p.EyeDistanceNorm, dirNorm)
		}
	}

	return inputs
}

// actionLabels returns the per-slot label ordering matching the
// emitters -> swimmers -> eaters -> predators -> jets -> grabbers
// canonical application order.
func (c *Creature) actionLabels() []string {
	var labels []string
	appendN := func(prefix string, n int) {
		for i := 0; i < n; i++ {
			labels = append(labels, prefix)
		}
	}
	for i := range c.Points {
		if c.Points[i].NodeType == blueprint.Emitter {
			appendN("emitter", blueprint.OutEmitter)
		}
	}
	for i := range c.Points {
		if c.Points[i].NodeType == blueprint.Swimmer {
			appendN("swimmer", blueprint.OutSwimmer)
		}
	}
	for i := range c.Points {
		if c.Points[i].NodeType == blueprint.Eater {
			appendN("eater", blueprint.OutEater)
		}
	}
	for i := range c.Points {
		if c.Points[i].NodeType == blueprint.Predator {
			appendN("predator", blueprint.OutPredator)
		}
	}
	for i := range c.Points {
		if c.Points[i].NodeType == blueprint.Jet {
			appendN("jet", blueprint.OutJet)
		}
	}
	for i := range c.Points {
		if c.Points[i].CanBeGrabber {
			appendN("grabber", blueprint.OutGrabber)
		}
	}
	return labels
}

// applyActions maps sampled action slots back onto their owning points in
// the same canonical order actionLabels produced them.
func (c *Creature) applyActions(actions []brain.ActionDetail, cfg *config.Config) {
	slot := 0
	next := func() float32 {
		if slot >= len(actions) {
			return 0
		}
		v := actions[slot].Sampled
		slot++
		return v
	}

	for i := range c.Points {
		if c.Points[i].NodeType != blueprint.Emitter {
			continue
		}
		p := &c.Points[i]
		p.Dye = blueprint.DyeColor{
			R: clampByte(vecmath.Sigmoid(next()) * 255),
			G: clampByte(vecmath.Sigmoid(next()) * 255),
			B: clampByte(vecmath.Sigmoid(next()) * 255),
		}
		p.Exertion = vecmath.Sigmoid(next())
	}
	for i := range c.Points {
		if c.Points[i].NodeType != blueprint.Swimmer {
			continue
		}
		p := &c.Points[i]
		mag := vecmath.Sigmoid(next()) * float32(cfg.Physics.MaxSwimmerMag)
		angle := next()
		p.ActuatorMagnitude = mag * p.Exertion
		p.ActuatorAngle = angle
		p.Exertion = vecmath.Sigmoid(next())
	}
	for i := range c.Points {
		if c.Points[i].NodeType != blueprint.Eater {
			continue
		}
		c.Points[i].Exertion = vecmath.Sigmoid(next())
	}
	for i := range c.Points {
		if c.Points[i].NodeType != blueprint.Predator {
			continue
		}
		c.Points[i].Exertion = vecmath.Sigmoid(next())
	}
	for i := range c.Points {
		if c.Points[i].NodeType != blueprint.Jet {
			continue
		}
		p := &c.Points[i]
		p.ActuatorMagnitude = vecmath.Sigmoid(next()) * float32(cfg.Physics.MaxJetMag) * p.Exertion
		p.ActuatorAngle = next()
		p.Exertion = vecmath.Sigmoid(next())
	}
	for i := range c.Points {
		if !c.Points[i].CanBeGrabber {
			continue
		}
		c.Points[i].IsGrabbing = vecmath.Sigmoid(next()) > 0.5
	}
}

// fallbackRandomImpulses drives non-fixed points with small periodic
// random motor impulses when no usable brain is designated.
func (c *Creature) fallbackRandomImpulses(cfg *config.Config) {
	for i := range c.Points {
		p := &c.Points[i]
		if p.IsFixed() {
			continue
		}
		if c.rng.Bool(0.1) {
			p.Exertion = c.rng.UniformRange(0.2, 0.6)
		}
	}
}

func clampByte(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
