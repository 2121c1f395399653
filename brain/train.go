package brain

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/fluidlife/biosim/config"
)

// Experience is one recorded tick of (state, actions taken, reward),
// appended to a bounded FIFO buffer and replayed for REINFORCE training.
type Experience struct {
	State   []float32
	Actions []ActionDetail
	Reward  float32
}

// Trainer owns a creature brain's rolling experience buffer and drives its
// REINFORCE update every TrainingIntervalFrames ticks once the buffer is
// full.
type Trainer struct {
	buffer   []Experience
	maxSize  int
	interval int
	framesSinceLastTrain int

	gamma    float32
	lr       float32
	epsilon  float32

	lastAvgNormalizedReward float32
}

// NewTrainer builds a Trainer from configuration.
func NewTrainer(cfg config.BrainConfig) *Trainer {
	return &Trainer{
		buffer:   make([]Experience, 0, cfg.MaxExperienceBufferSize),
		maxSize:  cfg.MaxExperienceBufferSize,
		interval: cfg.TrainingIntervalFrames,
		gamma:    float32(cfg.DiscountFactorGamma),
		lr:       float32(cfg.LearningRate),
		epsilon:  float32(cfg.StdDevEpsilon),
	}
}

// Record appends one tick's experience to the bounded FIFO, dropping the
// oldest entry once maxSize is reached.
func (t *Trainer) Record(exp Experience) {
	if len(t.buffer) >= t.maxSize {
		copy(t.buffer, t.buffer[1:])
		t.buffer = t.buffer[:len(t.buffer)-1]
	}
	t.buffer = append(t.buffer, exp)
	t.framesSinceLastTrain++
}

// LastAvgNormalizedReward reports the mean normalized return from the most
// recent completed training pass, for telemetry.
func (t *Trainer) LastAvgNormalizedReward() float32 { return t.lastAvgNormalizedReward }

// MaybeTrain runs one REINFORCE update against net if the training
// interval has elapsed and the buffer is full; otherwise it is a no-op.
func (t *Trainer) MaybeTrain(net *Net) {
	if t.framesSinceLastTrain < t.interval || len(t.buffer) < t.maxSize {
		return
	}
	t.train(net)
	t.buffer = t.buffer[:0]
	t.framesSinceLastTrain = 0
}

// train performs one batch REINFORCE update: discounted returns,
// normalization, gradient accumulation through the tanh hidden layer, and
// a single gradient-ascent step.
func (t *Trainer) train(net *Net) {
	n := len(t.buffer)
	if n == 0 {
		return
	}

	returns := make([]float64, n)
	var g float64
	for i := n - 1; i >= 0; i-- {
		g = float64(t.buffer[i].Reward) + float64(t.gamma)*g
		returns[i] = g
	}

	mean, std := stat.MeanStdDev(returns, nil)
	normalized := make([]float32, n)
	for i, r := range returns {
		normalized[i] = float32((r - mean) / (std + 1e-8))
	}

	gradIH := zeroLike2D(net.WeightsIH)
	gradBH := make([]float32, net.H)
	gradHO := zeroLike2D(net.WeightsHO)
	gradBO := make([]float32, net.O)

	avgAdvantage := float32(0)

	for i, exp := range t.buffer {
		advantage := normalized[i]
		avgAdvantage += advantage

		act := net.Forward(exp.State)

		slots := len(exp.Actions)
		maxSlots := net.O / 2
		if slots > maxSlots {
			slots = maxSlots // tolerated skew: topology changed since recording
		}

		outGrad := make([]float32, net.O)
		for s := 0; s < slots; s++ {
			mean := act.RawOut[2*s]
			rawStd := act.RawOut[2*s+1]
			sigma := float32ExpPlus(rawStd, t.epsilon)
			sample := exp.Actions[s].Sampled

			diff := sample - mean
			dMeanLogP := diff / (sigma * sigma)
			dSigmaLogP := (diff*diff - sigma*sigma) / (sigma * sigma * sigma)
			dRawStdLogP := dSigmaLogP * (sigma - t.epsilon)

			outGrad[2*s] = dMeanLogP * advantage
			outGrad[2*s+1] = dRawStdLogP * advantage
		}

		for j := 0; j < net.O; j++ {
			grad := outGrad[j]
			if grad == 0 {
				continue
			}
			gradBO[j] += grad
			for k := 0; k < net.H; k++ {
				gradHO[j][k] += grad * act.Hidden[k]
			}
		}

		hiddenGrad := make([]float32, net.H)
		for k := 0; k < net.H; k++ {
			var sum float32
			for j := 0; j < net.O; j++ {
				sum += outGrad[j] * net.WeightsHO[j][k]
			}
			hiddenGrad[k] = sum * (1 - act.Hidden[k]*act.Hidden[k])
		}

		for j := 0; j < net.H; j++ {
			grad := hiddenGrad[j]
			if grad == 0 {
				continue
			}
			gradBH[j] += grad
			for k := 0; k < net.I; k++ {
				gradIH[j][k] += grad * act.Inputs[k]
			}
		}
	}

	before := net.Clone()

	batch := float32(n)
	applyGradient(net.WeightsIH, gradIH, t.lr, batch)
	applyGradient1D(net.BiasesH, gradBH, t.lr, batch)
	applyGradient(net.WeightsHO, gradHO, t.lr, batch)
	applyGradient1D(net.BiasesO, gradBO, t.lr, batch)

	if !net.Finite() {
		*net = *before
		return
	}

	t.lastAvgNormalizedReward = avgAdvantage / batch
}

func zeroLike2D(src [][]float32) [][]float32 {
	out := make([][]float32, len(src))
	for i := range src {
		out[i] = make([]float32, len(src[i]))
	}
	return out
}

func applyGradient(weights, grad [][]float32, lr, batch float32) {
	for j := range weights {
		for k := range weights[j] {
			weights[j][k] += lr * (grad[j][k] / batch)
		}
	}
}

func applyGradient1D(weights, grad []float32, lr, batch float32) {
	for j := range weights {
		weights[j] += lr * (grad[j] / batch)
	}
}

// sliceFinite reports whether a slice contains no NaN/Inf.
func sliceFinite(xs []float32) bool {
	for _, x := range xs {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return false
		}
	}
	return true
}
