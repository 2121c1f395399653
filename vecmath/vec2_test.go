package vecmath

import (
	"math"
	"testing"
)

func TestVec2Normalize(t *testing.T) {
	v := Vec2{3, 4}.Normalize()
	if math.Abs(float64(v.Len()-1)) > 1e-6 {
		t.Errorf("expected unit length, got %f", v.Len())
	}
}

func TestVec2NormalizeZero(t *testing.T) {
	v := Vec2{}.Normalize()
	if v != (Vec2{}) {
		t.Errorf("expected zero vector, got %+v", v)
	}
}

func TestFinite(t *testing.T) {
	if !(Vec2{1, 2}).Finite() {
		t.Error("expected finite")
	}
	nan := Vec2{float32(math.NaN()), 0}
	if nan.Finite() {
		t.Error("expected non-finite")
	}
}

func TestClampAndLerp(t *testing.T) {
	if Clamp(5, 0, 3) != 3 {
		t.Error("clamp high failed")
	}
	if Clamp(-5, 0, 3) != 0 {
		t.Error("clamp low failed")
	}
	if Lerp(0, 10, 0.5) != 5 {
		t.Error("lerp failed")
	}
}

func TestTanhBounds(t *testing.T) {
	if Tanh(10) != 1 || Tanh(-10) != -1 {
		t.Error("tanh saturation failed")
	}
	if Tanh(0) != 0 {
		t.Error("tanh(0) should be 0")
	}
}

func TestRandomSourceDeterministic(t *testing.T) {
	a := NewRandomSource(42)
	b := NewRandomSource(42)
	for i := 0; i < 10; i++ {
		if a.Uniform() != b.Uniform() {
			t.Fatal("same seed should produce identical sequences")
		}
	}
}

func TestLogPDFGaussianPeak(t *testing.T) {
	atMean := LogPDFGaussian(0, 0, 1)
	offMean := LogPDFGaussian(2, 0, 1)
	if atMean <= offMean {
		t.Errorf("density at mean should exceed density away from mean: %f vs %f", atMean, offMean)
	}
}
