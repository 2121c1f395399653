package brain

import (
	"math/rand"
	"testing"

	"github.com/fluidlife/biosim/config"
	"github.com/fluidlife/biosim/vecmath"
)

func TestForwardProducesCorrectShape(t *testing.T) {
	net := NewNet(rand.New(rand.NewSource(1)), 10, 6, 4)
	act := net.Forward(make([]float32, 10))
	if len(act.Hidden) != 6 {
		t.Errorf("expected 6 hidden activations, got %d", len(act.Hidden))
	}
	if len(act.RawOut) != 4 {
		t.Errorf("expected 4 raw outputs, got %d", len(act.RawOut))
	}
}

func TestForwardPadsShortInput(t *testing.T) {
	net := NewNet(rand.New(rand.NewSource(1)), 10, 6, 4)
	act := net.Forward([]float32{1, 2, 3})
	if len(act.Inputs) != 10 {
		t.Errorf("expected input padded to 10, got %d", len(act.Inputs))
	}
}

func TestSampleActionsMatchesSlotCount(t *testing.T) {
	rng := vecmath.NewRandomSource(1)
	raw := []float32{0.5, -1.0, -0.2, 0.3}
	labels := []string{"a", "b"}
	actions := SampleActions(raw, labels, rng, 0.05)
	if len(actions) != 2 {
		t.Fatalf("expected 2 action details, got %d", len(actions))
	}
	if actions[0].Label != "a" || actions[1].Label != "b" {
		t.Error("labels not assigned in order")
	}
	if actions[0].StdDev <= 0 {
		t.Error("expected strictly positive stddev")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	net := NewNet(rand.New(rand.NewSource(1)), 4, 3, 2)
	clone := net.Clone()
	clone.WeightsIH[0][0] = 999
	if net.WeightsIH[0][0] == 999 {
		t.Error("mutating clone affected original network")
	}
}

func TestMarshalUnmarshalRoundTrips(t *testing.T) {
	net := NewNet(rand.New(rand.NewSource(1)), 5, 3, 2)
	bw := net.MarshalWeights()
	restored := UnmarshalWeights(bw)
	if restored.I != net.I || restored.H != net.H || restored.O != net.O {
		t.Fatal("dimensions did not round-trip")
	}
	for j := range net.WeightsIH {
		for k := range net.WeightsIH[j] {
			if restored.WeightsIH[j][k] != net.WeightsIH[j][k] {
				t.Fatalf("weight mismatch at [%d][%d]", j, k)
			}
		}
	}
}

func testBrainConfig() config.BrainConfig {
	return config.BrainConfig{
		MaxExperienceBufferSize: 4,
		TrainingIntervalFrames:  4,
		DiscountFactorGamma:     0.9,
		LearningRate:            0.01,
		StdDevEpsilon:           0.05,
	}
}

func TestTrainerSkipsUntilBufferFull(t *testing.T) {
	net := NewNet(rand.New(rand.NewSource(1)), 4, 3, 2)
	before := net.Clone()
	tr := NewTrainer(testBrainConfig())

	tr.Record(Experience{State: make([]float32, 4), Actions: []ActionDetail{{Sampled: 0.1}}, Reward: 1})
	tr.MaybeTrain(net)

	for j := range net.WeightsIH {
		for k := range net.WeightsIH[j] {
			if net.WeightsIH[j][k] != before.WeightsIH[j][k] {
				t.Fatal("network should not change before buffer is full")
			}
		}
	}
}

func TestTrainerUpdatesWeightsWhenBufferFull(t *testing.T) {
	net := NewNet(rand.New(rand.NewSource(1)), 4, 3, 2)
	before := net.Clone()
	tr := NewTrainer(testBrainConfig())

	for i := 0; i < 4; i++ {
		tr.Record(Experience{
			State:   []float32{0.1, 0.2, 0.3, 0.4},
			Actions: []ActionDetail{{Sampled: float32(i) * 0.5}},
			Reward:  float32(i) - 1,
		})
	}
	tr.MaybeTrain(net)

	changed := false
	for j := range net.WeightsIH {
		for k := range net.WeightsIH[j] {
			if net.WeightsIH[j][k] != before.WeightsIH[j][k] {
				changed = true
			}
		}
	}
	if !changed {
		t.Error("expected weights to change after a full training batch")
	}
	if !net.Finite() {
		t.Error("expected network to remain finite after training")
	}
}

func TestTrainerTolerantOfShrunkActionSlots(t *testing.T) {
	net := NewNet(rand.New(rand.NewSource(1)), 4, 3, 6) // 3 action slots now
	tr := NewTrainer(testBrainConfig())

	// Recorded when the net only had 1 action slot (topology since grew).
	for i := 0; i < 4; i++ {
		tr.Record(Experience{
			State:   []float32{0.1, 0.2, 0.3, 0.4},
			Actions: []ActionDetail{{Sampled: 0.2}},
			Reward:  1,
		})
	}

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("training panicked on shrunk action slot history: %v", r)
		}
	}()
	tr.MaybeTrain(net)
}
