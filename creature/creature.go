// Package creature implements the per-creature mass-spring phenotype: its
// arena of points and springs, the six ordered per-tick sub-phases
// (sensing, brain inference, energy budget, Verlet integration,
// inter-body interaction, final stability), and reproduction/placement.
package creature

import (
	"github.com/fluidlife/biosim/blueprint"
	"github.com/fluidlife/biosim/brain"
	"github.com/fluidlife/biosim/vecmath"
)

// MaxPointsPerCreature bounds how many points a single creature can own,
// used to pack a (creature slot, point index) pair into one broad-phase
// grid item id.
const MaxPointsPerCreature = 64

// EncodePointID packs a creature's population slot and a point index into
// one opaque broad-phase grid id.
func EncodePointID(creatureSlot, pointIndex int) int {
	return creatureSlot*MaxPointsPerCreature + pointIndex
}

// DecodePointID reverses EncodePointID.
func DecodePointID(id int) (creatureSlot, pointIndex int) {
	return id / MaxPointsPerCreature, id % MaxPointsPerCreature
}

// Point is a live mass point: a blueprint point instantiated into the
// physics world, carrying Verlet state and per-tick derived sensor/actuator
// values.
type Point struct {
	Pos, PrevPos vecmath.Vec2
	Mass         float32
	InvMass      float32
	Radius       float32

	NodeType      blueprint.NodeType
	MovementType  blueprint.MovementType
	Dye           blueprint.DyeColor
	CanBeGrabber  bool
	EyeTargetType blueprint.EyeTargetType

	MaxEffectiveJetVelocity float32
	Neuron                  *blueprint.NeuronData

	Exertion            float32
	IsGrabbing          bool
	IsDesignatedEye     bool
	SensedFluidVelocity vecmath.Vec2
	ActuatorMagnitude   float32 // swimmer force magnitude or jet injection magnitude
	ActuatorAngle       float32 // swimmer force direction or jet injection direction

	SeesTarget       bool
	EyeDistanceNorm  float32
	EyeBearing       float32

	displacementSq float32 // this-tick squared displacement, for instability checks
}

// IsFixed reports whether a point is effectively immobile this tick:
// either genuinely FIXED, or temporarily pinned by a grab.
func (p *Point) IsFixed() bool {
	return p.MovementType == blueprint.Fixed || p.IsGrabbing
}

// Spring connects two points of the same creature.
type Spring struct {
	P1, P2     int
	RestLength float32
	Stiffness  float32
	Damping    float32
	IsRigid    bool
}

// Creature owns an ordered arena of points and springs, its genome, cached
// blueprint (for reproduction), brain, and derived per-tick state.
type Creature struct {
	ID       int
	ParentID int

	Points  []Point
	Springs []Spring

	Genome    blueprint.Genome
	Blueprint *blueprint.Blueprint
	Wiring    blueprint.Wiring

	Brain   *brain.Net
	Trainer *brain.Trainer

	Energy                      float32
	MaxEnergy                   float32
	TicksSinceBirth             int
	CanReproduce                bool
	JustReproduced              bool
	FailedReproductionCooldown  int
	PreyPredatedThisTick        map[int]bool // keyed by predated creature's ID

	LifetimeGains float32
	LifetimeCosts float32
	tickGains     float32
	tickCosts     float32

	prevEnergy       float32
	prevEnergyChange float32

	Unstable bool

	LastInputs  []float32
	LastActions []brain.ActionDetail

	rng *vecmath.RandomSource
}

// New builds a live Creature from an instantiated phenotype, genome, and
// brain. net and trainer are stored as given; a nil net leaves the creature
// brainless, and UpdateBrain then falls back to random impulses.
func New(id, parentID int, ph blueprint.Phenotype, bp *blueprint.Blueprint, rng *vecmath.RandomSource, net *brain.Net, trainer *brain.Trainer) *Creature {
	pts := make([]Point, len(ph.Points))
	for i, ip := range ph.Points {
		invMass := float32(0)
		if ip.Mass > 0 {
			invMass = 1 / ip.Mass
		}
		pts[i] = Point{
			Pos:                     vecmath.Vec2{X: ip.X, Y: ip.Y},
			PrevPos:                 vecmath.Vec2{X: ip.X, Y: ip.Y},
			Mass:                    ip.Mass,
			InvMass:                 invMass,
			Radius:                  ip.Radius,
			NodeType:                ip.NodeType,
			MovementType:            ip.MovementType,
			Dye:                     ip.Dye,
			CanBeGrabber:            ip.CanBeGrabber,
			EyeTargetType:           ip.EyeTargetType,
			MaxEffectiveJetVelocity: ip.MaxEffectiveJetVelocity,
			Neuron:                  ip.Neuron,
		}
	}

	springs := make([]Spring, len(ph.Springs))
	for i, s := range ph.Springs {
		springs[i] = Spring{P1: s.P1, P2: s.P2, RestLength: s.RestLength, Stiffness: s.Stiffness, Damping: s.Damping, IsRigid: s.IsRigid}
	}

	if ph.Wiring.PrimaryEyeIndex >= 0 {
		pts[ph.Wiring.PrimaryEyeIndex].IsDesignatedEye = true
	}

	maxEnergy := float32(50 + 10*len(pts))
	c := &Creature{
		ID:                   id,
		ParentID:             parentID,
		Points:               pts,
		Springs:              springs,
		Genome:               bp.Genome,
		Blueprint:            bp,
		Wiring:               ph.Wiring,
		Brain:                net,
		Trainer:              trainer,
		Energy:               maxEnergy,
		MaxEnergy:            maxEnergy,
		PreyPredatedThisTick: make(map[int]bool),
		rng:                  rng,
	}
	c.prevEnergy = c.Energy
	return c
}

// CenterOfMass returns the mass-weighted average position of all points.
func (c *Creature) CenterOfMass() vecmath.Vec2 {
	var sum vecmath.Vec2
	var totalMass float32
	for _, p := range c.Points {
		sum = sum.Add(p.Pos.Scale(p.Mass))
		totalMass += p.Mass
	}
	if totalMass == 0 {
		return vecmath.Vec2{}
	}
	return sum.Scale(1 / totalMass)
}

// EffectiveReproductionCooldown scales with point count via a fixed 0.2
// factor, per spec.md's documented (non-genetic) behavior.
func (c *Creature) EffectiveReproductionCooldown() float32 {
	return c.Genome.ReproductionCooldownGene * (1 + 0.2*float32(len(c.Points)))
}
