// Package fields implements the animated scalar fields (nutrient, light,
// viscosity) sampled across the world. Nutrient scales energy costs and
// eating gains and feeds a brain input, light scales photosynthetic gain,
// and viscosity is animated but read by no other package.
package fields

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/fluidlife/biosim/config"
)

// Field is an N×N scalar grid sampled bilinearly in world space and animated
// by 4D tiled OpenSimplex noise rotating over time, grounded directly on the
// teacher's ResourceField capacity-grid animation.
type Field struct {
	Values []float32
	W, H   int

	worldW, worldH float32

	noise opensimplex.Noise
	time  float64

	min, max float32
	mult     float32

	scale      float64
	octaves    int
	lacunarity float64
	gain       float64
	contrast   float64
	timeSpeed  float64
}

// newField builds a Field over a W×H grid spanning worldW×worldH, seeded
// from seed+salt so each of Nutrient/Light/Viscosity drifts independently.
func newField(w, h int, worldW, worldH float32, seed int64, salt int64, min, max, mult float32, noise config.NoiseConfig) *Field {
	f := &Field{
		Values:     make([]float32, w*h),
		W:          w,
		H:          h,
		worldW:     worldW,
		worldH:     worldH,
		noise:      opensimplex.New(seed + salt),
		min:        min,
		max:        max,
		mult:       mult,
		scale:      noise.Scale,
		octaves:    noise.Octaves,
		lacunarity: noise.Lacunarity,
		gain:       noise.Gain,
		contrast:   noise.Contrast,
		timeSpeed:  noise.TimeSpeed,
	}
	f.regenerate()
	return f
}

// Step advances the field's animation clock by dt seconds and regenerates
// the grid from the rotated 4D noise plane.
func (f *Field) Step(dt float32) {
	if f.timeSpeed <= 0 {
		return
	}
	f.time += float64(dt) * f.timeSpeed
	f.regenerate()
}

func (f *Field) regenerate() {
	t := f.time
	for y := 0; y < f.H; y++ {
		v := (float64(y) + 0.5) / float64(f.H)
		for x := 0; x < f.W; x++ {
			u := (float64(x) + 0.5) / float64(f.W)
			n := f.fbmTiled(u, v, t)
			f.Values[y*f.W+x] = f.min + (f.max-f.min)*n
		}
	}
}

// Sample bilinearly interpolates the field at world coordinates (x, y),
// wrapping toroidally, and scales by the global multiplier.
func (f *Field) Sample(x, y float32) float32 {
	u := fract(x / f.worldW)
	v := fract(y / f.worldH)

	fx := u * float32(f.W)
	fy := v * float32(f.H)

	x0 := int(fx)
	y0 := int(fy)
	if x0 >= f.W {
		x0 = 0
	}
	if y0 >= f.H {
		y0 = 0
	}
	x1 := x0 + 1
	if x1 >= f.W {
		x1 = 0
	}
	y1 := y0 + 1
	if y1 >= f.H {
		y1 = 0
	}

	tx := fx - float32(x0)
	ty := fy - float32(y0)

	i00 := y0*f.W + x0
	i10 := y0*f.W + x1
	i01 := y1*f.W + x0
	i11 := y1*f.W + x1

	a := f.Values[i00] + (f.Values[i10]-f.Values[i00])*tx
	b := f.Values[i01] + (f.Values[i11]-f.Values[i01])*tx
	return (a + (b-a)*ty) * f.mult
}

// fbmTiled generates fractal Brownian motion using 4D OpenSimplex noise
// mapped to a 2-torus for seamless tiling at world boundaries, with the
// sampling plane rotated over time so hotspots morph rather than translate.
func (f *Field) fbmTiled(u, v, t float64) float32 {
	sum := 0.0
	amp := 0.5
	freq := f.scale

	twoPi := 2.0 * math.Pi
	angleU := u * twoPi
	angleV := v * twoPi

	baseX := math.Cos(angleU)
	baseY := math.Sin(angleU)
	baseZ := math.Cos(angleV)
	baseW := math.Sin(angleV)

	rotXW := t * 0.7
	rotYZ := t * 0.53

	cosXW := math.Cos(rotXW)
	sinXW := math.Sin(rotXW)
	cosYZ := math.Cos(rotYZ)
	sinYZ := math.Sin(rotYZ)

	nx := baseX*cosXW - baseW*sinXW
	nw := baseX*sinXW + baseW*cosXW
	ny := baseY*cosYZ - baseZ*sinYZ
	nz := baseY*sinYZ + baseZ*cosYZ

	for o := 0; o < f.octaves; o++ {
		n := (f.noise.Eval4(nx*freq, ny*freq, nz*freq, nw*freq) + 1) * 0.5
		sum += amp * n
		freq *= f.lacunarity
		amp *= f.gain
	}

	c := f.contrast
	if c <= 0 {
		c = 1
	}
	return clamp01(float32(math.Pow(sum, c)))
}

func fract(x float32) float32 {
	x -= float32(math.Floor(float64(x)))
	if x < 0 {
		x += 1
	}
	return x
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Set holds the three scalar fields animated each tick: Nutrient scales
// energy costs and eating gains, Light scales photosynthetic gain, and
// Viscosity is animated but not read by the fluid or body physics.
type Set struct {
	Nutrient  *Field
	Light     *Field
	Viscosity *Field
}

// NewSet builds the three animated fields from configuration, each seeded
// independently from a shared base seed.
func NewSet(worldW, worldH float32, seed int64, cfg *config.Config) *Set {
	n := cfg.World.GridN
	fc := cfg.Fields
	return &Set{
		Nutrient:  newField(n, n, worldW, worldH, seed, 1, float32(fc.NutrientMin), float32(fc.NutrientMax), float32(fc.GlobalNutrientMult), fc.Noise),
		Light:     newField(n, n, worldW, worldH, seed, 2, float32(fc.LightMin), float32(fc.LightMax), float32(fc.GlobalLightMult), fc.Noise),
		Viscosity: newField(n, n, worldW, worldH, seed, 3, float32(fc.ViscosityMin), float32(fc.ViscosityMax), 1.0, fc.Noise),
	}
}

// Step advances all three fields by dt seconds.
func (s *Set) Step(dt float32) {
	s.Nutrient.Step(dt)
	s.Light.Step(dt)
	s.Viscosity.Step(dt)
}
