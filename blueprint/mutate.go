package blueprint

import (
	"github.com/fluidlife/biosim/config"
	"github.com/fluidlife/biosim/vecmath"
)

// MutationCounters is a monotonic per-operator event count, reported as
// telemetry. Each successful application of an operator increments its
// counter exactly once.
type MutationCounters struct {
	Parametric      uint64
	Categorical     uint64
	Spring          uint64
	AddPoint        uint64
	DeleteSpring    uint64
	AddSpring       uint64
	SubdivideSpring uint64
	BodyScale       uint64
}

// Merge folds another counter set into this one, for accumulating
// per-reproduction counters into a running global total.
func (m *MutationCounters) Merge(other *MutationCounters) {
	m.Parametric += other.Parametric
	m.Categorical += other.Categorical
	m.Spring += other.Spring
	m.AddPoint += other.AddPoint
	m.DeleteSpring += other.DeleteSpring
	m.AddSpring += other.AddSpring
	m.SubdivideSpring += other.SubdivideSpring
	m.BodyScale += other.BodyScale
}

// Mutate applies every structural and parametric mutation operator to bp
// independently, each gated by its own probability scaled by
// GlobalRateModifier, and increments the matching counter on success. A
// GlobalRateModifier of zero is a no-op, producing a bit-identical
// blueprint.
func Mutate(bp *Blueprint, cfg config.MutationConfig, counters *MutationCounters, rng *vecmath.RandomSource) {
	modifier := float32(cfg.GlobalRateModifier)

	if rng.Bool(float32(cfg.ParametricProb) * modifier) {
		mutateParametric(bp, float32(cfg.RatePercent), rng)
		counters.Parametric++
	}
	if rng.Bool(float32(cfg.CategoricalProb) * modifier) {
		mutateCategorical(bp, rng)
		counters.Categorical++
	}
	if rng.Bool(float32(cfg.SpringProb) * modifier) {
		mutateSprings(bp, float32(cfg.RatePercent), rng)
		counters.Spring++
	}
	if rng.Bool(float32(cfg.AddPointProb) * modifier) {
		if addPoint(bp, cfg, rng) {
			counters.AddPoint++
		}
	}
	if rng.Bool(float32(cfg.DeleteSpringProb) * modifier) {
		if deleteSpring(bp, rng) {
			counters.DeleteSpring++
		}
	}
	if rng.Bool(float32(cfg.AddSpringProb) * modifier) {
		if addSpring(bp, rng) {
			counters.AddSpring++
		}
	}
	if rng.Bool(float32(cfg.SubdivideSpringProb) * modifier) {
		if subdivideSpring(bp, rng) {
			counters.SubdivideSpring++
		}
	}
	if rng.Bool(float32(cfg.BodyScaleProb) * modifier) {
		bodyScale(bp, rng)
		counters.BodyScale++
	}

	enforceInvariants(bp)
}

// jitter perturbs v by a uniform factor in [1-rate, 1+rate].
func jitter(v, rate float32, rng *vecmath.RandomSource) float32 {
	return v * (1 + rng.UniformRange(-rate, rate))
}

// mutateParametric perturbs every scalar genome trait by a uniform
// +/-rate factor, clamped to each trait's legal range.
func mutateParametric(bp *Blueprint, rate float32, rng *vecmath.RandomSource) {
	g := &bp.Genome
	g.OffspringSpawnRadius = vecmath.Clamp(jitter(g.OffspringSpawnRadius, rate, rng), 20, 200)
	g.PointAddChance = vecmath.Clamp(jitter(g.PointAddChance, rate, rng), 0, 1)
	g.SpringConnectionRadius = vecmath.Clamp(jitter(g.SpringConnectionRadius, rate, rng), 10, 120)
	g.ReproductionEnergyThreshold = vecmath.Clamp(jitter(g.ReproductionEnergyThreshold, rate, rng), 10, 100)
	g.ReproductionCooldownGene = vecmath.Clamp(jitter(g.ReproductionCooldownGene, rate, rng), 0.1, 3)
	g.JetMaxVelocityGene = vecmath.Clamp(jitter(g.JetMaxVelocityGene, rate, rng), 10, 150)
	g.EmitterDirection = jitter(g.EmitterDirection, rate, rng)
	g.ActivationPeriod = vecmath.Clamp(jitter(g.ActivationPeriod, rate, rng), 5, 600)
	g.ActivationPhaseOffset = jitter(g.ActivationPhaseOffset, rate, rng)
	g.ActivationLevel = vecmath.Clamp(jitter(g.ActivationLevel, rate, rng), 0, 1)

	if rng.Bool(0.2) && len(bp.Points) > 0 {
		g.NumOffspring = 1 + rng.IntN(4)
	}
}

// mutateCategorical re-rolls exactly one discrete trait: either one trait of
// a random point or the genome's reward strategy. RLAlgorithmID is not
// changed.
func mutateCategorical(bp *Blueprint, rng *vecmath.RandomSource) {
	if len(bp.Points) == 0 {
		return
	}
	p := &bp.Points[rng.IntN(len(bp.Points))]

	switch rng.IntN(6) {
	case 0:
		p.NodeType = nodeTypes[rng.IntN(len(nodeTypes))]
		if p.NodeType != Neuron {
			p.Neuron = nil
		}
	case 1:
		p.MovementType = MovementType(rng.IntN(3))
	case 2:
		p.Dye = DyeColor{
			R: uint8(rng.UniformRange(0, 255)),
			G: uint8(rng.UniformRange(0, 255)),
			B: uint8(rng.UniformRange(0, 255)),
		}
	case 3:
		p.CanBeGrabber = !p.CanBeGrabber
	case 4:
		p.EyeTargetType = EyeTargetType(rng.IntN(2))
	case 5:
		bp.Genome.RewardStrategy = rewardStrategies[rng.IntN(len(rewardStrategies))]
	}
}

// mutateSprings perturbs one random spring's rest length, stiffness and
// damping, and independently flips its rigidity.
func mutateSprings(bp *Blueprint, rate float32, rng *vecmath.RandomSource) {
	if len(bp.Springs) == 0 {
		return
	}
	s := &bp.Springs[rng.IntN(len(bp.Springs))]
	s.RestLength = vecmath.Clamp(jitter(s.RestLength, rate, rng), 2, 200)
	s.Stiffness = vecmath.Clamp(jitter(s.Stiffness, rate, rng), 0.01, 1)
	s.Damping = vecmath.Clamp(jitter(s.Damping, rate, rng), 0, 1)
	if rng.Bool(0.1) {
		s.IsRigid = !s.IsRigid
	}
}

// addPoint appends one new point offset from the last point, connected by
// MinNewPointSprings..MaxNewPointSprings springs to random existing points.
func addPoint(bp *Blueprint, cfg config.MutationConfig, rng *vecmath.RandomSource) bool {
	if len(bp.Points) == 0 {
		return false
	}
	last := bp.Points[len(bp.Points)-1]
	np := Point{
		RelX:   last.RelX + rng.UniformRange(-defaultSpacing, defaultSpacing),
		RelY:   last.RelY + rng.UniformRange(-defaultSpacing, defaultSpacing),
		Radius: defaultRadius,
		Mass:   defaultMass,
	}
	assignRandomTraits(&np, GenerateConfig{NeuronChance: 0.15}, rng)
	newIndex := len(bp.Points)
	bp.Points = append(bp.Points, np)

	lo, hi := cfg.MinNewPointSprings, cfg.MaxNewPointSprings
	if hi < lo {
		hi = lo
	}
	count := lo
	if hi > lo {
		count = lo + rng.IntN(hi-lo+1)
	}
	if count > newIndex {
		count = newIndex
	}
	seen := map[int]bool{}
	for i := 0; i < count; i++ {
		target := rng.IntN(newIndex)
		if seen[target] {
			continue
		}
		seen[target] = true
		bp.Springs = append(bp.Springs, newSpring(bp.Points, newIndex, target))
	}
	return true
}

// deleteSpring removes one random spring, provided doing so leaves every
// point reachable through the remaining spring graph (redundancy check).
func deleteSpring(bp *Blueprint, rng *vecmath.RandomSource) bool {
	if len(bp.Springs) == 0 {
		return false
	}
	idx := rng.IntN(len(bp.Springs))
	candidate := append([]Spring(nil), bp.Springs[:idx]...)
	candidate = append(candidate, bp.Springs[idx+1:]...)
	if !isConnected(len(bp.Points), candidate) {
		return false
	}
	bp.Springs = candidate
	return true
}

// addSpring connects two currently-unconnected points.
func addSpring(bp *Blueprint, rng *vecmath.RandomSource) bool {
	n := len(bp.Points)
	if n < 2 {
		return false
	}
	connected := make(map[[2]int]bool, len(bp.Springs))
	for _, s := range bp.Springs {
		a, b := s.P1, s.P2
		if a > b {
			a, b = b, a
		}
		connected[[2]int{a, b}] = true
	}
	for attempt := 0; attempt < 10; attempt++ {
		a := rng.IntN(n)
		b := rng.IntN(n)
		if a == b {
			continue
		}
		if a > b {
			a, b = b, a
		}
		if connected[[2]int{a, b}] {
			continue
		}
		bp.Springs = append(bp.Springs, newSpring(bp.Points, a, b))
		return true
	}
	return false
}

// subdivideSpring replaces one spring with a new midpoint point connected
// to both of its former endpoints.
func subdivideSpring(bp *Blueprint, rng *vecmath.RandomSource) bool {
	if len(bp.Springs) == 0 {
		return false
	}
	idx := rng.IntN(len(bp.Springs))
	s := bp.Springs[idx]
	a, b := bp.Points[s.P1], bp.Points[s.P2]

	mid := Point{
		RelX:   (a.RelX + b.RelX) / 2,
		RelY:   (a.RelY + b.RelY) / 2,
		Radius: defaultRadius,
		Mass:   defaultMass,
	}
	assignRandomTraits(&mid, GenerateConfig{NeuronChance: 0.15}, rng)
	midIndex := len(bp.Points)
	bp.Points = append(bp.Points, mid)

	bp.Springs[idx] = newSpring(bp.Points, s.P1, midIndex)
	bp.Springs = append(bp.Springs, newSpring(bp.Points, midIndex, s.P2))
	return true
}

// bodyScale multiplies every relative coordinate, radius and rest length
// by a single global factor.
func bodyScale(bp *Blueprint, rng *vecmath.RandomSource) {
	factor := rng.UniformRange(0.85, 1.2)
	for i := range bp.Points {
		bp.Points[i].RelX *= factor
		bp.Points[i].RelY *= factor
		bp.Points[i].Radius *= factor
	}
	for i := range bp.Springs {
		bp.Springs[i].RestLength *= factor
	}
}

// enforceInvariants restores the two blueprint-wide contracts that
// mutation operators might otherwise violate: a SWIMMER is never
// FLOATING, and only NEURON points carry neuron data.
func enforceInvariants(bp *Blueprint) {
	for i := range bp.Points {
		p := &bp.Points[i]
		if p.NodeType == Swimmer && p.MovementType == Floating {
			p.MovementType = Neutral
		}
		if p.NodeType != Neuron {
			p.Neuron = nil
		} else if p.Neuron == nil {
			p.Neuron = &NeuronData{HiddenLayerSize: 4}
		}
	}
}

// isConnected reports whether the spring graph over n points forms a
// single connected component, via breadth-first traversal from point 0.
func isConnected(n int, springs []Spring) bool {
	if n <= 1 {
		return true
	}
	adj := make(map[int][]int, n)
	for _, s := range springs {
		adj[s.P1] = append(adj[s.P1], s.P2)
		adj[s.P2] = append(adj[s.P2], s.P1)
	}
	visited := make([]bool, n)
	queue := []int{0}
	visited[0] = true
	count := 1
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if !visited[next] {
				visited[next] = true
				count++
				queue = append(queue, next)
			}
		}
	}
	return count == n
}
