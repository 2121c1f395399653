package creature

import (
	"testing"

	"github.com/fluidlife/biosim/blueprint"
	"github.com/fluidlife/biosim/config"
	"github.com/fluidlife/biosim/fields"
	"github.com/fluidlife/biosim/fluid"
	"github.com/fluidlife/biosim/spatial"
	"github.com/fluidlife/biosim/vecmath"
)

func testFieldSet(cfg *config.Config) *fields.Set {
	return fields.NewSet(float32(cfg.World.Width), float32(cfg.World.Height), 1, cfg)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load failed: %v", err)
	}
	return cfg
}

func testWiringConfig(cfg *config.Config) blueprint.WiringConfig {
	return blueprint.WiringConfig{
		NeuralInputSizeBase: cfg.Brain.NeuralInputSizeBase,
		EyeInputs:           cfg.Brain.EyeInputs,
		FluidSensorInputs:   cfg.Brain.FluidSensorInputs,
	}
}

func newTestCreature(t *testing.T, cfg *config.Config, rng *vecmath.RandomSource, shape blueprint.Shape) (*Creature, *blueprint.Blueprint) {
	t.Helper()
	bp := blueprint.Generate(shape, blueprint.GenerateConfig{NeuronChance: 0.3}, rng)
	ph := blueprint.Instantiate(bp, 100, 100, testWiringConfig(cfg))
	c := New(1, 0, ph, bp, rng, nil, nil)
	return c, bp
}

func TestIntegrateGridBodyStaysNearSpawn(t *testing.T) {
	cfg := testConfig(t)
	rng := vecmath.NewRandomSource(7)
	c, _ := newTestCreature(t, cfg, rng, blueprint.ShapeGrid)

	fluidField := fluid.NewField(float32(cfg.World.Width), float32(cfg.World.Height), false, cfg)

	for i := 0; i < 30; i++ {
		c.Integrate(float32(cfg.World.DT), fluidField, float32(cfg.World.Width), float32(cfg.World.Height), false, cfg)
	}

	com := c.CenterOfMass()
	if com.X < 50 || com.X > 150 || com.Y < 50 || com.Y > 150 {
		t.Errorf("expected body to stay near spawn without actuation, got (%f, %f)", com.X, com.Y)
	}
	if c.Unstable {
		t.Error("idle grid body should not go unstable over 30 ticks")
	}
}

func TestIntegrateFixedPointNeverMoves(t *testing.T) {
	cfg := testConfig(t)
	rng := vecmath.NewRandomSource(11)
	c, _ := newTestCreature(t, cfg, rng, blueprint.ShapeGrid)
	c.Points[0].MovementType = blueprint.Fixed
	fixedPos := c.Points[0].Pos

	fluidField := fluid.NewField(float32(cfg.World.Width), float32(cfg.World.Height), false, cfg)
	for i := 0; i < 10; i++ {
		c.Integrate(float32(cfg.World.DT), fluidField, float32(cfg.World.Width), float32(cfg.World.Height), false, cfg)
	}

	if c.Points[0].Pos != fixedPos {
		t.Errorf("expected fixed point to stay at %v, moved to %v", fixedPos, c.Points[0].Pos)
	}
}

func TestIntegrateBoundaryClampsNonWrappingWorld(t *testing.T) {
	cfg := testConfig(t)
	rng := vecmath.NewRandomSource(3)
	c, _ := newTestCreature(t, cfg, rng, blueprint.ShapeLine)

	worldW, worldH := float32(50), float32(50)
	for i := range c.Points {
		c.Points[i].Pos = vecmath.Vec2{X: -20, Y: -20}
		c.Points[i].PrevPos = vecmath.Vec2{X: -25, Y: -25}
		c.Points[i].MovementType = blueprint.Neutral
	}

	fluidField := fluid.NewField(worldW, worldH, false, cfg)
	c.Integrate(float32(cfg.World.DT), fluidField, worldW, worldH, false, cfg)

	for i, p := range c.Points {
		if p.Pos.X < 0 || p.Pos.Y < 0 {
			t.Errorf("point %d escaped lower boundary: %v", i, p.Pos)
		}
	}
}

func TestUpdateEnergyBudgetPhotosyntheticGainsOutpaceBaseCost(t *testing.T) {
	cfg := testConfig(t)
	cfg.Energy.BaseCost = 0
	cfg.Energy.PhotosynthEfficiency = 10
	rng := vecmath.NewRandomSource(5)

	bp := &blueprint.Blueprint{
		Points: []blueprint.Point{{RelX: 0, RelY: 0, Radius: 5, Mass: 1, NodeType: blueprint.Photosynthetic}},
		Genome: blueprint.Genome{},
	}
	ph := blueprint.Instantiate(bp, 0, 0, testWiringConfig(cfg))
	c := New(1, 0, ph, bp, rng, nil, nil)
	c.Energy = c.MaxEnergy / 2
	startEnergy := c.Energy

	set := testFieldSet(cfg)
	c.UpdateEnergyBudget(float32(cfg.World.DT), set, func(x, y float32) (float32, float32, float32) { return 0, 0, 0 }, cfg)

	if c.Energy <= startEnergy {
		t.Errorf("expected photosynthetic gain to raise energy above %f, got %f", startEnergy, c.Energy)
	}
}

func TestUpdateEnergyBudgetZeroEnergyMarksUnstable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Energy.PhotosynthEfficiency = 0
	rng := vecmath.NewRandomSource(9)
	c, _ := newTestCreature(t, cfg, rng, blueprint.ShapeGrid)
	c.Energy = 0

	set := testFieldSet(cfg)
	c.UpdateEnergyBudget(float32(cfg.World.DT), set, func(x, y float32) (float32, float32, float32) { return 0, 0, 0 }, cfg)

	if !c.Unstable {
		t.Error("expected zero energy to mark creature unstable")
	}
	if c.Energy != 0 {
		t.Errorf("expected energy clamped to 0, got %f", c.Energy)
	}
}

func TestFinalizeStabilityOverstretchedSpringMarksUnstable(t *testing.T) {
	cfg := testConfig(t)
	rng := vecmath.NewRandomSource(13)
	c, _ := newTestCreature(t, cfg, rng, blueprint.ShapeLine)

	s := &c.Springs[0]
	stretchedDist := s.RestLength * (float32(cfg.Physics.MaxStretchFactor) + 1)
	c.Points[s.P2].Pos = c.Points[s.P1].Pos
	c.Points[s.P2].Pos.X += stretchedDist

	c.FinalizeStability(cfg)

	if !c.Unstable {
		t.Error("expected overstretched spring to mark creature unstable")
	}
}

func TestFinalizeStabilityAdvancesCooldownAndReproduceGate(t *testing.T) {
	cfg := testConfig(t)
	rng := vecmath.NewRandomSource(17)
	c, _ := newTestCreature(t, cfg, rng, blueprint.ShapeGrid)
	c.Genome.ReproductionCooldownGene = 1

	if c.CanReproduce {
		t.Fatal("freshly spawned creature should not start reproduction-eligible")
	}

	cooldown := int(c.EffectiveReproductionCooldown()) + 2
	for i := 0; i < cooldown; i++ {
		c.FinalizeStability(cfg)
	}

	if !c.CanReproduce {
		t.Error("expected canReproduce to become true once ticksSinceBirth exceeds effective cooldown")
	}
}

func TestReproduceDebitsEnergyAndResetsCooldown(t *testing.T) {
	cfg := testConfig(t)
	rng := vecmath.NewRandomSource(21)
	c, _ := newTestCreature(t, cfg, rng, blueprint.ShapeGrid)
	c.Genome.NumOffspring = 1
	c.Genome.OffspringSpawnRadius = 40
	c.Genome.ReproductionEnergyThreshold = 0
	c.Energy = c.MaxEnergy
	c.CanReproduce = true
	startEnergy := c.Energy

	space := &alwaysOpenSpace{}
	nextID := 100
	offspring := c.Reproduce(cfg, rng, testWiringConfig(cfg), space, func() int {
		nextID++
		return nextID
	}, nil)

	if len(offspring) != 1 {
		t.Fatalf("expected 1 offspring placed into an empty space, got %d", len(offspring))
	}
	if c.Energy >= startEnergy {
		t.Errorf("expected parent energy to decrease after reproducing, start=%f end=%f", startEnergy, c.Energy)
	}
	if c.TicksSinceBirth != 0 || c.CanReproduce {
		t.Error("expected ticksSinceBirth reset and canReproduce cleared on successful reproduction")
	}
	if !c.JustReproduced {
		t.Error("expected justReproduced to be set")
	}
}

func TestReproduceBlockedSpaceSetsFailedCooldown(t *testing.T) {
	cfg := testConfig(t)
	rng := vecmath.NewRandomSource(23)
	c, _ := newTestCreature(t, cfg, rng, blueprint.ShapeGrid)
	c.Genome.NumOffspring = 1
	c.Genome.ReproductionEnergyThreshold = 0
	c.Energy = c.MaxEnergy
	c.CanReproduce = true

	space := &alwaysBlockedSpace{}
	offspring := c.Reproduce(cfg, rng, testWiringConfig(cfg), space, func() int { return 999 }, nil)

	if len(offspring) != 0 {
		t.Fatalf("expected no offspring placed when space is fully blocked, got %d", len(offspring))
	}
	if c.FailedReproductionCooldown == 0 {
		t.Error("expected failedReproductionCooldown to be set after a failed placement attempt")
	}
}

type noopLocator struct{}

func (noopLocator) LookupPoint(id int) (*Creature, *Point, bool) { return nil, nil, false }
func (noopLocator) LookupParticle(id int) (float32, float32, bool) { return 0, 0, false }

type noopParticleMarker struct{}

func (noopParticleMarker) MarkEaten(id int) bool { return false }

func TestUpdateSelfRunsAllPhasesForHealthyCreature(t *testing.T) {
	cfg := testConfig(t)
	rng := vecmath.NewRandomSource(31)
	c, _ := newTestCreature(t, cfg, rng, blueprint.ShapeGrid)

	grid := spatial.NewGrid(float32(cfg.World.Width), float32(cfg.World.Height), float32(cfg.Spatial.CellSize), cfg.World.Wrap)
	fluidField := fluid.NewField(float32(cfg.World.Width), float32(cfg.World.Height), cfg.World.Wrap, cfg)
	set := testFieldSet(cfg)

	c.UpdateSelf(float32(cfg.World.DT), grid, noopLocator{}, noopParticleMarker{}, fluidField, set,
		float32(cfg.World.Width), float32(cfg.World.Height), cfg.World.Wrap, 0, cfg)

	if c.TicksSinceBirth != 1 {
		t.Errorf("expected stability phase to run and advance ticksSinceBirth to 1, got %d", c.TicksSinceBirth)
	}
}

func TestUpdateSelfAbortsRemainingPhasesOnceUnstable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Energy.PhotosynthEfficiency = 0
	rng := vecmath.NewRandomSource(37)
	c, _ := newTestCreature(t, cfg, rng, blueprint.ShapeGrid)
	c.Energy = 0 // sub-phase 3 (energy budget) will mark this unstable immediately

	grid := spatial.NewGrid(float32(cfg.World.Width), float32(cfg.World.Height), float32(cfg.Spatial.CellSize), cfg.World.Wrap)
	fluidField := fluid.NewField(float32(cfg.World.Width), float32(cfg.World.Height), cfg.World.Wrap, cfg)
	set := testFieldSet(cfg)

	c.UpdateSelf(float32(cfg.World.DT), grid, noopLocator{}, noopParticleMarker{}, fluidField, set,
		float32(cfg.World.Width), float32(cfg.World.Height), cfg.World.Wrap, 0, cfg)

	if !c.Unstable {
		t.Fatal("expected creature to be marked unstable")
	}
	if c.TicksSinceBirth != 0 {
		t.Error("expected the stability phase to be skipped once an earlier phase marks the creature unstable")
	}
}

type alwaysOpenSpace struct{}

func (alwaysOpenSpace) Blocked(x, y, radius float32) bool { return false }
func (alwaysOpenSpace) Reserve(x, y, radius float32)      {}

type alwaysBlockedSpace struct{}

func (alwaysBlockedSpace) Blocked(x, y, radius float32) bool { return true }
func (alwaysBlockedSpace) Reserve(x, y, radius float32)      {}
