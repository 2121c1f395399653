package blueprint

// InstancePoint is one phenotype point placed at absolute world
// coordinates, ready for a creature's mass-point arena.
type InstancePoint struct {
	Point
	X, Y float32 // spawnX+relX, spawnY+relY
}

// InstanceSpring mirrors a blueprint spring; indices reference Points of
// the same Phenotype.
type InstanceSpring = Spring

// Wiring describes how a phenotype's points couple to its brain: the
// neural input/output vector sizes implied by its sensor/actuator
// population, which points serve which role, and per-category point counts
// used to size the output vector.
type Wiring struct {
	InputSize       int
	OutputSlots     int // number of (mean, rawStdDev) action pairs; raw output width is 2x this
	SensorIndices   []int
	EffectorIndices []int
	PrimaryEyeIndex int // -1 if the phenotype has no EYE point
	BrainIndex      int // index of the designated brain NEURON point, -1 if none
	Counts          map[NodeType]int
}

// Phenotype is a blueprint instantiated at a world spawn point: absolute
// point positions, rebuilt springs, and the wiring needed to size and
// address a brain.
type Phenotype struct {
	Points  []InstancePoint
	Springs []InstanceSpring
	Wiring  Wiring
}

// WiringConfig supplies the neural sizing constants Wiring needs, passed
// in rather than imported from config to avoid a package cycle between
// blueprint and the creature/world packages that own config wiring.
type WiringConfig struct {
	NeuralInputSizeBase int
	EyeInputs           int
	FluidSensorInputs   int
}

// Instantiate places a (possibly just-mutated) blueprint's points at a
// world spawn coordinate, rebuilds springs from indices, and computes the
// brain wiring: every sensor and effector candidate listed in point order
// (no random choice among candidates is made), the first existing EYE
// point designated primary, and per-category counts that size the outputs.
func Instantiate(bp *Blueprint, spawnX, spawnY float32, wcfg WiringConfig) Phenotype {
	points := make([]InstancePoint, len(bp.Points))
	for i, p := range bp.Points {
		points[i] = InstancePoint{
			Point: p,
			X:     spawnX + p.RelX,
			Y:     spawnY + p.RelY,
		}
	}

	// Skip springs with indices invalid against the point count: a
	// corrupted blueprint continues with its remaining springs rather
	// than aborting instantiation.
	springs := make([]InstanceSpring, 0, len(bp.Springs))
	for _, s := range bp.Springs {
		if s.P1 < 0 || s.P1 >= len(points) || s.P2 < 0 || s.P2 >= len(points) {
			continue
		}
		springs = append(springs, s)
	}

	wiring := computeWiring(points, wcfg)
	return Phenotype{Points: points, Springs: springs, Wiring: wiring}
}

func computeWiring(points []InstancePoint, wcfg WiringConfig) Wiring {
	w := Wiring{PrimaryEyeIndex: -1, BrainIndex: -1, Counts: make(map[NodeType]int, len(nodeTypes)+1)}

	var eyeCount, swimmerCount, jetCount int
	var sensorCandidates, effectorCandidates []int

	for i, p := range points {
		w.Counts[p.NodeType]++
		switch p.NodeType {
		case Eye:
			eyeCount++
			if w.PrimaryEyeIndex == -1 {
				w.PrimaryEyeIndex = i // first existing EYE point, preserving point-index order
			}
			sensorCandidates = append(sensorCandidates, i)
		case Swimmer:
			swimmerCount++
			effectorCandidates = append(effectorCandidates, i)
		case Jet:
			jetCount++
			effectorCandidates = append(effectorCandidates, i)
		case Emitter, Eater, Predator:
			effectorCandidates = append(effectorCandidates, i)
		case Neuron:
			if w.BrainIndex == -1 {
				w.BrainIndex = i // tie-break: first NEURON by point index
			}
		}
		if p.CanBeGrabber {
			effectorCandidates = append(effectorCandidates, i)
		}
	}

	w.SensorIndices = sensorCandidates
	w.EffectorIndices = effectorCandidates

	w.InputSize = wcfg.NeuralInputSizeBase + eyeCount*wcfg.EyeInputs + (swimmerCount+jetCount)*wcfg.FluidSensorInputs

	w.OutputSlots = w.Counts[Emitter]*OutEmitter +
		w.Counts[Swimmer]*OutSwimmer +
		w.Counts[Eater]*OutEater +
		w.Counts[Predator]*OutPredator +
		w.Counts[Jet]*OutJet
	for _, p := range points {
		if p.CanBeGrabber {
			w.OutputSlots += OutGrabber
		}
	}

	return w
}
