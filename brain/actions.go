package brain

import (
	"math"

	"github.com/fluidlife/biosim/vecmath"
)

// ActionDetail records one sampled action slot: its raw distribution
// parameters, the sampled value, and the log-probability of that sample,
// all needed later for the REINFORCE gradient.
type ActionDetail struct {
	Label    string
	Mean     float32
	StdDev   float32
	Sampled  float32
	LogProb  float32
}

// SampleActions reads raw output pairs (mean, rawStdDev) and draws one
// stochastic sample per action slot. sigma = exp(rawStdDev) + epsilon
// keeps the standard deviation strictly positive without a hard floor
// discontinuity.
func SampleActions(raw []float32, labels []string, rng *vecmath.RandomSource, epsilon float32) []ActionDetail {
	slots := len(raw) / 2
	if slots > len(labels) {
		slots = len(labels)
	}

	out := make([]ActionDetail, slots)
	for i := 0; i < slots; i++ {
		mean := raw[2*i]
		rawStd := raw[2*i+1]
		sigma := float32ExpPlus(rawStd, epsilon)

		sample := rng.Gaussian(mean, sigma)
		out[i] = ActionDetail{
			Label:   labels[i],
			Mean:    mean,
			StdDev:  sigma,
			Sampled: sample,
			LogProb: vecmath.LogPDFGaussian(sample, mean, sigma),
		}
	}
	return out
}

func float32ExpPlus(x, eps float32) float32 {
	return float32(math.Exp(float64(x))) + eps
}
