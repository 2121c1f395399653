package fluid

import (
	"math"
	"testing"

	"github.com/fluidlife/biosim/config"
)

func testConfig() *config.Config {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}
	cfg.World.GridN = 16
	return cfg
}

func TestAddVelocityClamped(t *testing.T) {
	f := NewField(100, 100, false, testConfig())
	f.AddVelocity(5, 5, 1000, 1000)
	idx := f.IX(5, 5)
	if f.Vx[idx] != f.maxVelComp || f.Vy[idx] != f.maxVelComp {
		t.Errorf("expected velocity clamped to %f, got (%f, %f)", f.maxVelComp, f.Vx[idx], f.Vy[idx])
	}
}

func TestAddDensityClamped(t *testing.T) {
	f := NewField(100, 100, false, testConfig())
	for i := 0; i < 50; i++ {
		f.AddDensity(5, 5, 255, 255, 255, 100)
	}
	idx := f.IX(5, 5)
	if f.R[idx] > 255 || f.G[idx] > 255 || f.B[idx] > 255 {
		t.Errorf("expected dye clamped to 255, got (%f, %f, %f)", f.R[idx], f.G[idx], f.B[idx])
	}
}

func TestStepDoesNotProduceNaN(t *testing.T) {
	f := NewField(100, 100, true, testConfig())
	f.AddVelocity(8, 8, 5, -3)
	f.AddDensity(8, 8, 200, 50, 10, 80)

	for i := 0; i < 20; i++ {
		f.Step(1.0 / 60)
	}

	for _, v := range f.Vx {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatal("Vx contains NaN/Inf after stepping")
		}
	}
	for _, v := range f.R {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatal("R dye contains NaN/Inf after stepping")
		}
	}
}

func TestDyeFadesTowardZero(t *testing.T) {
	cfg := testConfig()
	cfg.Fluid.FadeRate = 0.1
	f := NewField(100, 100, true, cfg)
	f.AddDensity(8, 8, 200, 200, 200, 100)
	for i := 0; i < 500; i++ {
		f.Step(1.0 / 60)
	}
	idx := f.IX(8, 8)
	if f.R[idx] > 5 {
		t.Errorf("expected dye to fade close to zero over many steps, got %f", f.R[idx])
	}
}

func TestVelocityAtBilinearInterpolates(t *testing.T) {
	f := NewField(100, 100, true, testConfig())
	f.AddVelocity(8, 8, 5, 0)
	v := f.VelocityAt(50, 50)
	if v.X == 0 {
		t.Error("expected nonzero sampled velocity near an injection point")
	}
}

func TestClampModeKeepsCornersBounded(t *testing.T) {
	f := NewField(100, 100, false, testConfig())
	f.AddVelocity(1, 1, 10, 10)
	for i := 0; i < 10; i++ {
		f.Step(1.0 / 60)
	}
	for _, v := range f.Vx {
		if v > f.maxVelComp || v < -f.maxVelComp {
			t.Errorf("velocity component exceeded clamp bound: %f", v)
		}
	}
}
