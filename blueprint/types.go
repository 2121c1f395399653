// Package blueprint holds the heritable, pure-data description of a
// creature's morphology — points and springs relative to a centroid — plus
// the generation and mutation operators that turn one blueprint into the
// next generation's.
package blueprint

import "math"

// NodeType is the functional role of a mass point.
type NodeType uint8

const (
	Predator NodeType = iota
	Eater
	Photosynthetic
	Neuron
	Emitter
	Swimmer
	Eye
	Jet
)

func (t NodeType) String() string {
	switch t {
	case Predator:
		return "Predator"
	case Eater:
		return "Eater"
	case Photosynthetic:
		return "Photosynthetic"
	case Neuron:
		return "Neuron"
	case Emitter:
		return "Emitter"
	case Swimmer:
		return "Swimmer"
	case Eye:
		return "Eye"
	case Jet:
		return "Jet"
	default:
		return "Unknown"
	}
}

// nodeTypes lists every functional type, used when sampling a non-NEURON
// type uniformly and when iterating category counts in a fixed order.
var nodeTypes = []NodeType{Predator, Eater, Photosynthetic, Emitter, Swimmer, Eye, Jet}

// Output slot counts per actuator node type: the number of (mean, rawStdDev)
// action pairs it contributes to a brain's output vector.
const (
	OutEmitter  = 4 // R, G, B, exertion
	OutSwimmer  = 3 // magnitude, angle, exertion
	OutEater    = 1 // exertion
	OutPredator = 1 // exertion
	OutJet      = 3 // magnitude, angle, exertion
	OutGrabber  = 1 // grab toggle
)

// MovementType governs how a point is affected by integration and fluid
// coupling. A SWIMMER is never FLOATING; mutation must coerce it to NEUTRAL
// or FIXED.
type MovementType uint8

const (
	Fixed MovementType = iota
	Floating
	Neutral
)

func (m MovementType) String() string {
	switch m {
	case Fixed:
		return "Fixed"
	case Floating:
		return "Floating"
	case Neutral:
		return "Neutral"
	default:
		return "Unknown"
	}
}

// EyeTargetType is what an EYE point's sensory scan looks for.
type EyeTargetType uint8

const (
	TargetParticle EyeTargetType = iota
	TargetForeignBodyPoint
)

func (e EyeTargetType) String() string {
	if e == TargetForeignBodyPoint {
		return "ForeignBodyPoint"
	}
	return "Particle"
}

// RewardStrategy names the reward signal a creature's brain is trained on.
// It is generated, inherited and mutated with the genome; no code in this
// module computes a reward from it.
type RewardStrategy uint8

const (
	RewardEnergyChange RewardStrategy = iota
	RewardReproductionEvent
	RewardParticleProximity
	RewardEnergySecondDerivative
)

func (r RewardStrategy) String() string {
	switch r {
	case RewardEnergyChange:
		return "EnergyChange"
	case RewardReproductionEvent:
		return "ReproductionEvent"
	case RewardParticleProximity:
		return "ParticleProximity"
	case RewardEnergySecondDerivative:
		return "EnergySecondDerivative"
	default:
		return "Unknown"
	}
}

var rewardStrategies = []RewardStrategy{RewardEnergyChange, RewardReproductionEvent, RewardParticleProximity, RewardEnergySecondDerivative}

// ActivationPattern is a point's default exertion driver, used whenever a
// brain is absent or does not address that point.
type ActivationPattern uint8

const (
	Flat ActivationPattern = iota
	Sine
	Pulse
)

func (a ActivationPattern) String() string {
	switch a {
	case Flat:
		return "Flat"
	case Sine:
		return "Sine"
	case Pulse:
		return "Pulse"
	default:
		return "Unknown"
	}
}

var activationPatterns = []ActivationPattern{Flat, Sine, Pulse}

// NeuronData is present only on NEURON points that carry brain parameters.
type NeuronData struct {
	HiddenLayerSize int
}

// DyeColor is an RGB triple in [0,255] injected by EMITTER points.
type DyeColor struct {
	R, G, B uint8
}

// Point is one blueprint mass point, positioned relative to the
// blueprint's centroid. Phenotype instantiation places the centroid at a
// world spawn coordinate.
type Point struct {
	RelX, RelY              float32
	Radius                  float32
	Mass                    float32
	NodeType                NodeType
	MovementType            MovementType
	Dye                     DyeColor
	CanBeGrabber            bool
	EyeTargetType           EyeTargetType
	MaxEffectiveJetVelocity float32
	Neuron                  *NeuronData // non-nil only if NodeType == Neuron
}

// Spring is a blueprint spring referencing two points by index.
type Spring struct {
	P1, P2     int
	RestLength float32
	IsRigid    bool
	Stiffness  float32
	Damping    float32
}

// Genome holds scalar heritable traits outside the point/spring graph:
// reproduction behavior, actuator limits, and the brain's training and
// default-activation configuration.
type Genome struct {
	NumOffspring                int
	OffspringSpawnRadius        float32
	PointAddChance              float32
	SpringConnectionRadius      float32
	ReproductionEnergyThreshold float32
	ReproductionCooldownGene    float32
	JetMaxVelocityGene          float32
	EmitterDirection            float32
	RewardStrategy              RewardStrategy
	RLAlgorithmID               int
	ActivationPattern           ActivationPattern
	ActivationPeriod            float32
	ActivationPhaseOffset       float32
	ActivationLevel             float32
}

// Blueprint is the full heritable description of a creature: its point and
// spring graph plus scalar genome.
type Blueprint struct {
	Points  []Point
	Springs []Spring
	Genome  Genome
}

// Clone deep-copies a blueprint, used before mutating a parent's blueprint
// for a reproductive instantiation.
func (b *Blueprint) Clone() *Blueprint {
	c := &Blueprint{
		Points:  make([]Point, len(b.Points)),
		Springs: append([]Spring(nil), b.Springs...),
		Genome:  b.Genome,
	}
	for i, p := range b.Points {
		if p.Neuron != nil {
			nd := *p.Neuron
			p.Neuron = &nd
		}
		c.Points[i] = p
	}
	return c
}

// Radius returns blueprintRadius: the max over points of the point's
// centroid-relative distance plus its own radius, used as a coarse
// placement-collision proxy.
func (b *Blueprint) Radius() float32 {
	var maxR float32
	for _, p := range b.Points {
		d := float32(math.Sqrt(float64(p.RelX*p.RelX + p.RelY*p.RelY)))
		if r := d + p.Radius; r > maxR {
			maxR = r
		}
	}
	return maxR
}
