package blueprint

import (
	"math"

	"github.com/fluidlife/biosim/vecmath"
)

// Shape selects one of the three primitive body layouts used for
// first-generation blueprint creation.
type Shape uint8

const (
	ShapeGrid Shape = iota
	ShapeLine
	ShapeStar
)

const (
	defaultRadius    = 6.0
	defaultMass      = 1.0
	defaultSpacing   = 18.0
	defaultStiffness = 0.3
	defaultDamping   = 0.1
)

// GenerateConfig carries the tunables Generate needs from configuration
// without creating an import cycle on the config package.
type GenerateConfig struct {
	NeuronChance float32
}

// Generate builds a first-generation blueprint from one of the three
// primitive shapes: a 3x3 grid, a line of 3-5 points, or a star with a
// central hub and 4-6 outer points. Temporary points are laid out in world
// space, then re-expressed relative to their centroid.
func Generate(shape Shape, cfg GenerateConfig, rng *vecmath.RandomSource) *Blueprint {
	var pts []Point
	var springs []Spring

	switch shape {
	case ShapeGrid:
		pts, springs = generateGrid()
	case ShapeLine:
		pts, springs = generateLine(rng)
	default:
		pts, springs = generateStar(rng)
	}

	for i := range pts {
		assignRandomTraits(&pts[i], cfg, rng)
	}

	bp := &Blueprint{
		Points:  recenter(pts),
		Springs: springs,
		Genome:  randomGenome(rng),
	}
	return bp
}

// generateGrid lays out a 3x3 lattice of points, connected to each
// orthogonal and diagonal neighbour.
func generateGrid() ([]Point, []Spring) {
	const n = 3
	pts := make([]Point, 0, n*n)
	index := make(map[[2]int]int, n*n)
	for gy := 0; gy < n; gy++ {
		for gx := 0; gx < n; gx++ {
			index[[2]int{gx, gy}] = len(pts)
			pts = append(pts, Point{
				RelX:   float32(gx) * defaultSpacing,
				RelY:   float32(gy) * defaultSpacing,
				Radius: defaultRadius,
				Mass:   defaultMass,
			})
		}
	}

	var springs []Spring
	addSpring := func(a, b [2]int) {
		ia, oka := index[a]
		ib, okb := index[b]
		if oka && okb {
			springs = append(springs, newSpring(pts, ia, ib))
		}
	}
	for gy := 0; gy < n; gy++ {
		for gx := 0; gx < n; gx++ {
			here := [2]int{gx, gy}
			addSpring(here, [2]int{gx + 1, gy})
			addSpring(here, [2]int{gx, gy + 1})
			addSpring(here, [2]int{gx + 1, gy + 1})
			addSpring(here, [2]int{gx + 1, gy - 1})
		}
	}
	return pts, springs
}

// generateLine lays out 3-5 points in a row, each connected to its
// immediate neighbour.
func generateLine(rng *vecmath.RandomSource) ([]Point, []Spring) {
	n := 3 + rng.IntN(3) // 3..5
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		pts[i] = Point{
			RelX:   float32(i) * defaultSpacing,
			RelY:   0,
			Radius: defaultRadius,
			Mass:   defaultMass,
		}
	}
	springs := make([]Spring, 0, n-1)
	for i := 0; i < n-1; i++ {
		springs = append(springs, newSpring(pts, i, i+1))
	}
	return pts, springs
}

// generateStar lays out a central hub with 4-6 outer points spaced evenly
// around it, each connected to the hub and to its two star neighbours.
func generateStar(rng *vecmath.RandomSource) ([]Point, []Spring) {
	outer := 4 + rng.IntN(3) // 4..6
	pts := make([]Point, 0, outer+1)
	pts = append(pts, Point{RelX: 0, RelY: 0, Radius: defaultRadius, Mass: defaultMass})

	const twoPi = 6.283185307179586
	for i := 0; i < outer; i++ {
		angle := twoPi * float64(i) / float64(outer)
		pts = append(pts, Point{
			RelX:   defaultSpacing * float32(math.Cos(angle)),
			RelY:   defaultSpacing * float32(math.Sin(angle)),
			Radius: defaultRadius,
			Mass:   defaultMass,
		})
	}

	var springs []Spring
	for i := 1; i <= outer; i++ {
		springs = append(springs, newSpring(pts, 0, i))
		next := i + 1
		if next > outer {
			next = 1
		}
		springs = append(springs, newSpring(pts, i, next))
	}
	return pts, springs
}

func newSpring(pts []Point, a, b int) Spring {
	dx := pts[a].RelX - pts[b].RelX
	dy := pts[a].RelY - pts[b].RelY
	rest := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	return Spring{P1: a, P2: b, RestLength: rest, Stiffness: defaultStiffness, Damping: defaultDamping}
}

// recenter shifts every point so the set's centroid sits at (0,0), the
// contract blueprint coordinates must satisfy.
func recenter(pts []Point) []Point {
	var cx, cy float32
	for _, p := range pts {
		cx += p.RelX
		cy += p.RelY
	}
	n := float32(len(pts))
	if n == 0 {
		return pts
	}
	cx /= n
	cy /= n
	for i := range pts {
		pts[i].RelX -= cx
		pts[i].RelY -= cy
	}
	return pts
}

// assignRandomTraits samples a point's functional role and secondary
// attributes: NEURON with probability cfg.NeuronChance, else uniform over
// the remaining functional types; movementType uniform but coerced so a
// SWIMMER is never FLOATING; dye and grabbing sampled independently.
func assignRandomTraits(p *Point, cfg GenerateConfig, rng *vecmath.RandomSource) {
	if rng.Bool(cfg.NeuronChance) {
		p.NodeType = Neuron
		p.Neuron = &NeuronData{HiddenLayerSize: 4 + rng.IntN(5)} // width clamped to [H_MIN,H_MAX] by the caller
	} else {
		p.NodeType = nodeTypes[rng.IntN(len(nodeTypes))]
	}

	mt := MovementType(rng.IntN(3))
	if p.NodeType == Swimmer && mt == Floating {
		if rng.Bool(0.5) {
			mt = Neutral
		} else {
			mt = Fixed
		}
	}
	p.MovementType = mt

	p.Dye = DyeColor{
		R: uint8(rng.UniformRange(0, 255)),
		G: uint8(rng.UniformRange(0, 255)),
		B: uint8(rng.UniformRange(0, 255)),
	}
	p.CanBeGrabber = rng.Bool(0.2)
	p.EyeTargetType = EyeTargetType(rng.IntN(2))
	p.MaxEffectiveJetVelocity = rng.UniformRange(20, 80)
}

func randomGenome(rng *vecmath.RandomSource) Genome {
	return Genome{
		NumOffspring:                1 + rng.IntN(3),
		OffspringSpawnRadius:        rng.UniformRange(40, 100),
		PointAddChance:              rng.UniformRange(0, 0.3),
		SpringConnectionRadius:      rng.UniformRange(20, 60),
		ReproductionEnergyThreshold: rng.UniformRange(50, 90),
		ReproductionCooldownGene:    rng.UniformRange(0.5, 1.5),
		JetMaxVelocityGene:          rng.UniformRange(20, 80),
		EmitterDirection:            rng.UniformRange(0, 6.283185307179586),
		RewardStrategy:              rewardStrategies[rng.IntN(len(rewardStrategies))],
		RLAlgorithmID:               0,
		ActivationPattern:           activationPatterns[rng.IntN(len(activationPatterns))],
		ActivationPeriod:            rng.UniformRange(30, 180),
		ActivationPhaseOffset:       rng.UniformRange(0, 180),
		ActivationLevel:             rng.UniformRange(0.3, 1.0),
	}
}
