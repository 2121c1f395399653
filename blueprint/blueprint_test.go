package blueprint

import (
	"testing"

	"github.com/fluidlife/biosim/config"
	"github.com/fluidlife/biosim/vecmath"
)

func testGenerateConfig() GenerateConfig {
	return GenerateConfig{NeuronChance: 0.2}
}

func testMutationConfig() config.MutationConfig {
	return config.MutationConfig{
		GlobalRateModifier:  1.0,
		RatePercent:         0.1,
		ParametricProb:      1.0,
		CategoricalProb:     1.0,
		SpringProb:          1.0,
		AddPointProb:        1.0,
		DeleteSpringProb:    1.0,
		AddSpringProb:       1.0,
		SubdivideSpringProb: 1.0,
		BodyScaleProb:       1.0,
		MinNewPointSprings:  1,
		MaxNewPointSprings:  2,
	}
}

func TestGenerateGridHasNinePointsCenteredOnCentroid(t *testing.T) {
	rng := vecmath.NewRandomSource(1)
	bp := Generate(ShapeGrid, testGenerateConfig(), rng)
	if len(bp.Points) != 9 {
		t.Fatalf("expected 9 points, got %d", len(bp.Points))
	}
	var cx, cy float32
	for _, p := range bp.Points {
		cx += p.RelX
		cy += p.RelY
	}
	if abs32(cx) > 1e-3 || abs32(cy) > 1e-3 {
		t.Errorf("expected centroid at origin, got (%f, %f)", cx, cy)
	}
}

func TestGenerateLineHasThreeToFivePoints(t *testing.T) {
	rng := vecmath.NewRandomSource(2)
	bp := Generate(ShapeLine, testGenerateConfig(), rng)
	if len(bp.Points) < 3 || len(bp.Points) > 5 {
		t.Fatalf("expected 3-5 points, got %d", len(bp.Points))
	}
	if len(bp.Springs) != len(bp.Points)-1 {
		t.Errorf("expected a chain of %d springs, got %d", len(bp.Points)-1, len(bp.Springs))
	}
}

func TestGenerateStarHasHubAndFourToSixOuterPoints(t *testing.T) {
	rng := vecmath.NewRandomSource(3)
	bp := Generate(ShapeStar, testGenerateConfig(), rng)
	if len(bp.Points) < 5 || len(bp.Points) > 7 {
		t.Fatalf("expected hub + 4..6 outer points (5..7 total), got %d", len(bp.Points))
	}
}

func TestGenerateNeverProducesSwimmerFloating(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		rng := vecmath.NewRandomSource(seed)
		bp := Generate(ShapeGrid, GenerateConfig{NeuronChance: 0.3}, rng)
		for _, p := range bp.Points {
			if p.NodeType == Swimmer && p.MovementType == Floating {
				t.Fatalf("seed %d produced a SWIMMER+FLOATING point", seed)
			}
			if p.NodeType != Neuron && p.Neuron != nil {
				t.Fatalf("seed %d: non-NEURON point carries neuron data", seed)
			}
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	rng := vecmath.NewRandomSource(4)
	bp := Generate(ShapeGrid, testGenerateConfig(), rng)
	clone := bp.Clone()
	clone.Points[0].RelX = 999
	if bp.Points[0].RelX == 999 {
		t.Error("mutating clone's points affected the original blueprint")
	}
}

func TestMutateWithZeroRateModifierIsIdentity(t *testing.T) {
	rng := vecmath.NewRandomSource(5)
	bp := Generate(ShapeGrid, testGenerateConfig(), rng)
	before := bp.Clone()

	cfg := testMutationConfig()
	cfg.GlobalRateModifier = 0

	counters := &MutationCounters{}
	Mutate(bp, cfg, counters, rng)

	if len(bp.Points) != len(before.Points) || len(bp.Springs) != len(before.Springs) {
		t.Fatalf("zero-rate mutation changed point/spring counts")
	}
	for i := range bp.Points {
		if bp.Points[i] != before.Points[i] && !pointsNeuronEqual(bp.Points[i], before.Points[i]) {
			t.Errorf("point %d changed under zero-rate mutation", i)
		}
	}
	if *counters != (MutationCounters{}) {
		t.Errorf("expected no counters incremented, got %+v", counters)
	}
}

// pointsNeuronEqual compares two points field-by-field except the Neuron
// pointer, since Clone gives each copy its own NeuronData and the pointers
// would never be equal.
func pointsNeuronEqual(a, b Point) bool {
	a.Neuron, b.Neuron = nil, nil
	return a == b
}

func TestMutatePreservesInvariants(t *testing.T) {
	rng := vecmath.NewRandomSource(6)
	cfg := testMutationConfig()
	counters := &MutationCounters{}

	for i := 0; i < 30; i++ {
		bp := Generate(ShapeStar, testGenerateConfig(), rng)
		Mutate(bp, cfg, counters, rng)
		for _, p := range bp.Points {
			if p.NodeType == Swimmer && p.MovementType == Floating {
				t.Fatalf("iteration %d: SWIMMER+FLOATING survived mutation", i)
			}
			if p.NodeType != Neuron && p.Neuron != nil {
				t.Fatalf("iteration %d: non-NEURON point carries neuron data after mutation", i)
			}
		}
	}
}

func TestMutateNeverProducesOrphanSprings(t *testing.T) {
	rng := vecmath.NewRandomSource(7)
	cfg := testMutationConfig()
	counters := &MutationCounters{}
	bp := Generate(ShapeLine, testGenerateConfig(), rng)

	for i := 0; i < 20; i++ {
		Mutate(bp, cfg, counters, rng)
		for _, s := range bp.Springs {
			if s.P1 < 0 || s.P1 >= len(bp.Points) || s.P2 < 0 || s.P2 >= len(bp.Points) {
				t.Fatalf("iteration %d: spring references out-of-range point", i)
			}
		}
	}
}

func TestInstantiatePlacesPointsAtSpawn(t *testing.T) {
	rng := vecmath.NewRandomSource(8)
	bp := Generate(ShapeGrid, testGenerateConfig(), rng)

	wcfg := WiringConfig{NeuralInputSizeBase: 8, EyeInputs: 3, FluidSensorInputs: 2}
	ph := Instantiate(bp, 100, 200, wcfg)

	for i, ip := range ph.Points {
		want := InstancePoint{Point: bp.Points[i], X: 100 + bp.Points[i].RelX, Y: 200 + bp.Points[i].RelY}
		if ip.X != want.X || ip.Y != want.Y {
			t.Errorf("point %d placed at (%f,%f), want (%f,%f)", i, ip.X, ip.Y, want.X, want.Y)
		}
	}
}

func TestInstantiateSkipsCorruptSpringIndices(t *testing.T) {
	rng := vecmath.NewRandomSource(9)
	bp := Generate(ShapeLine, testGenerateConfig(), rng)
	bp.Springs = append(bp.Springs, Spring{P1: 0, P2: 999, RestLength: 10})

	ph := Instantiate(bp, 0, 0, WiringConfig{NeuralInputSizeBase: 8, EyeInputs: 3, FluidSensorInputs: 2})
	for _, s := range ph.Springs {
		if s.P2 == 999 {
			t.Fatal("corrupt spring index was not skipped")
		}
	}
}

func TestWiringDesignatesFirstEyeAsPrimary(t *testing.T) {
	bp := &Blueprint{
		Points: []Point{
			{NodeType: Eater},
			{NodeType: Eye},
			{NodeType: Eye},
		},
	}
	ph := Instantiate(bp, 0, 0, WiringConfig{NeuralInputSizeBase: 8, EyeInputs: 3, FluidSensorInputs: 2})
	if ph.Wiring.PrimaryEyeIndex != 1 {
		t.Errorf("expected primary eye index 1, got %d", ph.Wiring.PrimaryEyeIndex)
	}
}

func TestWiringComputesInputAndOutputSizes(t *testing.T) {
	bp := &Blueprint{
		Points: []Point{
			{NodeType: Eye},
			{NodeType: Swimmer},
			{NodeType: Emitter},
			{NodeType: Eater},
		},
	}
	wcfg := WiringConfig{NeuralInputSizeBase: 10, EyeInputs: 3, FluidSensorInputs: 2}
	ph := Instantiate(bp, 0, 0, wcfg)

	wantInput := 10 + 1*3 + 1*2
	if ph.Wiring.InputSize != wantInput {
		t.Errorf("expected input size %d, got %d", wantInput, ph.Wiring.InputSize)
	}
	wantOutput := OutSwimmer + OutEmitter + OutEater
	if ph.Wiring.OutputSlots != wantOutput {
		t.Errorf("expected %d output slots, got %d", wantOutput, ph.Wiring.OutputSlots)
	}
}

func TestRadiusIsMaxOverPoints(t *testing.T) {
	bp := &Blueprint{
		Points: []Point{
			{RelX: 0, RelY: 0, Radius: 5},
			{RelX: 10, RelY: 0, Radius: 2},
		},
	}
	if got := bp.Radius(); got != 12 {
		t.Errorf("expected radius 12, got %f", got)
	}
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
