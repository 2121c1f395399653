// Package brain implements the single-hidden-layer stochastic-policy
// network driving creature actuation, and its REINFORCE training loop.
package brain

import (
	"math"
	"math/rand"

	"github.com/fluidlife/biosim/vecmath"
)

// Net is a single-hidden-layer feedforward network. Unlike a deterministic
// controller, its output layer is read in (mean, rawStdDev) pairs: one
// per logical action slot, sampled stochastically by SampleActions.
type Net struct {
	I, H, O int // O is the raw output width: 2 floats per action slot.

	WeightsIH [][]float32 // H x I
	BiasesH   []float32   // H

	WeightsHO [][]float32 // O x H
	BiasesO   []float32   // O
}

// NewNet builds a randomly Xavier-initialized network with I inputs, H
// hidden units and O raw outputs (O must be even: one mean/rawStdDev pair
// per action slot).
func NewNet(rng *rand.Rand, i, h, o int) *Net {
	n := &Net{
		I: i, H: h, O: o,
		WeightsIH: make([][]float32, h),
		BiasesH:   make([]float32, h),
		WeightsHO: make([][]float32, o),
		BiasesO:   make([]float32, o),
	}

	scaleIH := float32(math.Sqrt(2.0 / float64(i)))
	for j := 0; j < h; j++ {
		n.WeightsIH[j] = make([]float32, i)
		for k := 0; k < i; k++ {
			n.WeightsIH[j][k] = float32(rng.NormFloat64()) * scaleIH
		}
	}

	scaleHO := float32(math.Sqrt(2.0 / float64(h)))
	for j := 0; j < o; j++ {
		n.WeightsHO[j] = make([]float32, h)
		for k := 0; k < h; k++ {
			n.WeightsHO[j][k] = float32(rng.NormFloat64()) * scaleHO
		}
	}

	return n
}

// Activations captures the intermediate values of a forward pass, needed
// both for sampling and for the backward pass during training.
type Activations struct {
	Inputs  []float32 // length I
	Hidden  []float32 // length H, post-tanh
	RawOut  []float32 // length O, pre-activation (linear output layer)
}

// Forward computes the hidden and raw output activations for a fixed
// input vector, padding or truncating to I as needed.
func (n *Net) Forward(inputs []float32) *Activations {
	x := fitLength(inputs, n.I)

	hidden := make([]float32, n.H)
	for j := 0; j < n.H; j++ {
		sum := n.BiasesH[j]
		row := n.WeightsIH[j]
		for k := 0; k < n.I; k++ {
			sum += row[k] * x[k]
		}
		hidden[j] = vecmath.Tanh(sum)
	}

	raw := make([]float32, n.O)
	for j := 0; j < n.O; j++ {
		sum := n.BiasesO[j]
		row := n.WeightsHO[j]
		for k := 0; k < n.H; k++ {
			sum += row[k] * hidden[k]
		}
		raw[j] = sum
	}

	return &Activations{Inputs: x, Hidden: hidden, RawOut: raw}
}

// fitLength pads with zeros or truncates src to exactly n elements.
func fitLength(src []float32, n int) []float32 {
	out := make([]float32, n)
	copy(out, src)
	return out
}

// Finite reports whether every weight and bias is a finite float,
// guarding against a training step that blew up on a degenerate gradient.
func (n *Net) Finite() bool {
	if !sliceFinite(n.BiasesH) || !sliceFinite(n.BiasesO) {
		return false
	}
	for _, row := range n.WeightsIH {
		if !sliceFinite(row) {
			return false
		}
	}
	for _, row := range n.WeightsHO {
		if !sliceFinite(row) {
			return false
		}
	}
	return true
}

// Clone deep-copies the network, used when reshaping weights across a
// blueprint mutation that changed hidden layer size or input/output width.
func (n *Net) Clone() *Net {
	c := &Net{
		I: n.I, H: n.H, O: n.O,
		WeightsIH: make([][]float32, len(n.WeightsIH)),
		BiasesH:   append([]float32(nil), n.BiasesH...),
		WeightsHO: make([][]float32, len(n.WeightsHO)),
		BiasesO:   append([]float32(nil), n.BiasesO...),
	}
	for j := range n.WeightsIH {
		c.WeightsIH[j] = append([]float32(nil), n.WeightsIH[j]...)
	}
	for j := range n.WeightsHO {
		c.WeightsHO[j] = append([]float32(nil), n.WeightsHO[j]...)
	}
	return c
}

// BrainWeights holds flattened network weights for serialization, e.g.
// when persisting a lineage's trained brain.
type BrainWeights struct {
	I, H, O   int
	WeightsIH []float32
	BiasesH   []float32
	WeightsHO []float32
	BiasesO   []float32
}

// MarshalWeights flattens the network's weights for serialization.
func (n *Net) MarshalWeights() BrainWeights {
	bw := BrainWeights{
		I: n.I, H: n.H, O: n.O,
		WeightsIH: make([]float32, n.H*n.I),
		BiasesH:   append([]float32(nil), n.BiasesH...),
		WeightsHO: make([]float32, n.O*n.H),
		BiasesO:   append([]float32(nil), n.BiasesO...),
	}
	for j := 0; j < n.H; j++ {
		copy(bw.WeightsIH[j*n.I:(j+1)*n.I], n.WeightsIH[j])
	}
	for j := 0; j < n.O; j++ {
		copy(bw.WeightsHO[j*n.H:(j+1)*n.H], n.WeightsHO[j])
	}
	return bw
}

// UnmarshalWeights restores a network from its flattened form.
func UnmarshalWeights(bw BrainWeights) *Net {
	n := &Net{
		I: bw.I, H: bw.H, O: bw.O,
		WeightsIH: make([][]float32, bw.H),
		BiasesH:   append([]float32(nil), bw.BiasesH...),
		WeightsHO: make([][]float32, bw.O),
		BiasesO:   append([]float32(nil), bw.BiasesO...),
	}
	for j := 0; j < bw.H; j++ {
		n.WeightsIH[j] = append([]float32(nil), bw.WeightsIH[j*bw.I:(j+1)*bw.I]...)
	}
	for j := 0; j < bw.O; j++ {
		n.WeightsHO[j] = append([]float32(nil), bw.WeightsHO[j*bw.H:(j+1)*bw.H]...)
	}
	return n
}
