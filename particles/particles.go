// Package particles implements the ambient nutrient/detritus particle
// system: small drifting motes that follow the fluid's velocity field,
// decay over time, and are consumed by EATER nodes.
package particles

import (
	"github.com/fluidlife/biosim/config"
	"github.com/fluidlife/biosim/vecmath"
)

// FluidSampler is the minimal view of the fluid solver the particle system
// needs: a velocity lookup at a world position.
type FluidSampler interface {
	VelocityAt(x, y float32) vecmath.Vec2
}

// Particle is a single drifting mote.
type Particle struct {
	Pos       vecmath.Vec2
	Vel       vecmath.Vec2
	Life      float32
	LifeDecay float32
	Size      float32
	IsEaten   bool
}

// System owns the particle population and keeps it near a configured floor
// count, spawning new particles on a rate-with-debt-accumulator schedule so
// fractional spawn rates still even out over many ticks.
type System struct {
	Particles []Particle

	width, height float32
	wrap          bool

	floor          int
	rate           float64
	fluidInfluence float32
	jitter         float32
	lifeDecay      float32
	size           float32

	spawnDebt float64

	rng *vecmath.RandomSource
}

// NewSystem builds a particle system from configuration.
func NewSystem(width, height float32, wrap bool, cfg config.ParticlesConfig, rng *vecmath.RandomSource) *System {
	return &System{
		Particles:      make([]Particle, 0, cfg.Floor*2),
		width:          width,
		height:         height,
		wrap:           wrap,
		floor:          cfg.Floor,
		rate:           cfg.PerSecond,
		fluidInfluence: float32(cfg.FluidInfluence),
		jitter:         float32(cfg.Jitter),
		lifeDecay:      float32(cfg.DefaultLifeDecay),
		size:           float32(cfg.DefaultSize),
		rng:            rng,
	}
}

// Count returns the current number of live particles.
func (s *System) Count() int { return len(s.Particles) }

// Update advances the particle population by dt seconds: spawns to
// maintain the floor and rate, applies fluid drift and jitter, decays
// life, and removes dead or fully-eaten particles.
func (s *System) Update(dt float32, fluid FluidSampler) {
	s.Repopulate(dt)
	s.Advance(dt, fluid)
}

// Repopulate tops the population up to the configured floor in one batch
// when it is below the floor, and otherwise spawns at the configured
// per-second rate via a debt accumulator so fractional rates still even out
// over many ticks. Split out from Update so a tick driver can repopulate
// before stepping the fluid field and advance afterward, matching the
// spec's ordering.
func (s *System) Repopulate(dt float32) {
	if deficit := s.floor - len(s.Particles); deficit > 0 {
		for i := 0; i < deficit; i++ {
			s.spawnOne()
		}
		return
	}
	s.spawnDebt += s.rate * float64(dt)
	for s.spawnDebt >= 1 {
		s.spawnDebt -= 1
		s.spawnOne()
	}
}

// Advance drifts, decays, and removes dead or fully-eaten particles.
func (s *System) Advance(dt float32, fluid FluidSampler) {
	alive := 0
	for i := range s.Particles {
		p := &s.Particles[i]

		decay := p.LifeDecay * dt
		if p.IsEaten {
			decay *= 4
		}
		p.Life -= decay
		if p.Life <= 0 {
			continue
		}

		fv := fluid.VelocityAt(p.Pos.X, p.Pos.Y)
		p.Vel = p.Vel.Add(fv.Scale(s.fluidInfluence * dt))
		jitterVec := vecmath.Vec2{
			X: s.rng.UniformRange(-1, 1),
			Y: s.rng.UniformRange(-1, 1),
		}.Scale(s.jitter * dt)
		p.Vel = p.Vel.Add(jitterVec).Scale(0.98)

		p.Pos = p.Pos.Add(p.Vel.Scale(dt))

		if s.wrap {
			p.Pos = s.wrapPos(p.Pos)
		} else if p.Pos.X < 0 || p.Pos.X > s.width || p.Pos.Y < 0 || p.Pos.Y > s.height {
			continue
		}

		s.Particles[alive] = *p
		alive++
	}
	s.Particles = s.Particles[:alive]
}

// MarkEaten flags a particle for accelerated fade-out, called by the
// creature interaction pass when an EATER node consumes it.
func (s *System) MarkEaten(index int) {
	if index < 0 || index >= len(s.Particles) {
		return
	}
	s.Particles[index].IsEaten = true
}

// RemoveAt removes a particle immediately by index (order not preserved).
func (s *System) RemoveAt(index int) {
	if index < 0 || index >= len(s.Particles) {
		return
	}
	last := len(s.Particles) - 1
	s.Particles[index] = s.Particles[last]
	s.Particles = s.Particles[:last]
}

func (s *System) spawnOne() {
	p := Particle{
		Pos: vecmath.Vec2{
			X: s.rng.UniformRange(0, s.width),
			Y: s.rng.UniformRange(0, s.height),
		},
		Life:      1.0,
		LifeDecay: s.lifeDecay,
		Size:      s.size,
	}
	s.Particles = append(s.Particles, p)
}

func (s *System) wrapPos(p vecmath.Vec2) vecmath.Vec2 {
	if p.X < 0 {
		p.X += s.width
	} else if p.X > s.width {
		p.X -= s.width
	}
	if p.Y < 0 {
		p.Y += s.height
	} else if p.Y > s.height {
		p.Y -= s.height
	}
	return p
}
