package fields

import (
	"testing"

	"github.com/fluidlife/biosim/config"
)

func testNoiseConfig() config.NoiseConfig {
	return config.NoiseConfig{
		Scale:      0.05,
		Octaves:    2,
		Lacunarity: 2.0,
		Gain:       0.5,
		Contrast:   1.0,
		TimeSpeed:  0.1,
	}
}

func TestFieldWithinBounds(t *testing.T) {
	f := newField(16, 16, 100, 100, 1, 0, 0.2, 0.8, 1.0, testNoiseConfig())
	for _, v := range f.Values {
		if v < 0.2 || v > 0.8 {
			t.Fatalf("field value %f outside [0.2, 0.8]", v)
		}
	}
}

func TestFieldSampleWraps(t *testing.T) {
	f := newField(8, 8, 100, 100, 2, 0, 0, 1, 1.0, testNoiseConfig())
	a := f.Sample(0, 0)
	b := f.Sample(100, 100)
	if a != b {
		t.Errorf("expected toroidal wrap to match at origin and far edge: %f vs %f", a, b)
	}
}

func TestFieldMultiplier(t *testing.T) {
	base := newField(8, 8, 100, 100, 3, 0, 0.5, 0.5, 1.0, testNoiseConfig())
	scaled := newField(8, 8, 100, 100, 3, 0, 0.5, 0.5, 2.0, testNoiseConfig())
	if scaled.Sample(10, 10) != base.Sample(10, 10)*2 {
		t.Error("global multiplier should scale sampled value")
	}
}

func TestSetStepAdvancesIndependently(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	s := NewSet(960, 540, 7, cfg)
	before := append([]float32(nil), s.Nutrient.Values...)
	s.Step(1.0)
	changed := false
	for i, v := range s.Nutrient.Values {
		if v != before[i] {
			changed = true
			break
		}
	}
	if !changed {
		t.Error("expected nutrient field to change after stepping with nonzero time_speed")
	}
}
