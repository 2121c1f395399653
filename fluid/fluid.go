// Package fluid implements the semi-Lagrangian Stable-Fluids solver: a
// square-grid velocity field advected and diffused each tick, carrying
// three dye channels consumed by emitters, sensors, and poison accounting.
//
// There is no ready-made analog for this solver anywhere in the retrieved
// reference pack; it is built directly from Stam's stable-fluids algorithm
// (diffuse -> project -> advect -> project for velocity, diffuse -> advect
// for dye, with Gauss-Seidel relaxation and mirrored/inverted boundary
// handling), styled in the plain grid-and-free-function idiom the rest of
// this codebase uses for its scalar fields.
package fluid

import (
	"math"

	"github.com/fluidlife/biosim/config"
	"github.com/fluidlife/biosim/vecmath"
)

// Field is the N×N Stable-Fluids grid: a velocity field (Vx, Vy) and three
// dye channels (R, G, B), each paired with a scratch buffer used during the
// diffuse/advect passes.
type Field struct {
	N int

	Vx, Vy   []float32
	Vx0, Vy0 []float32

	R, G, B    []float32
	R0, G0, B0 []float32

	worldW, worldH float32
	scaleX, scaleY float32

	wrap bool

	diffusionRate float64
	velocityIters int
	pressureIters int
	densityIters  int
	fadeRate      float64
	dyePullRate   float64
	maxVelComp    float32
}

// NewField builds a fluid field from configuration.
func NewField(worldW, worldH float32, wrap bool, cfg *config.Config) *Field {
	n := cfg.World.GridN
	size := n * n
	f := &Field{
		N:             n,
		Vx:            make([]float32, size),
		Vy:            make([]float32, size),
		Vx0:           make([]float32, size),
		Vy0:           make([]float32, size),
		R:             make([]float32, size),
		G:             make([]float32, size),
		B:             make([]float32, size),
		R0:            make([]float32, size),
		G0:            make([]float32, size),
		B0:            make([]float32, size),
		worldW:        worldW,
		worldH:        worldH,
		scaleX:        worldW / float32(n),
		scaleY:        worldH / float32(n),
		wrap:          wrap,
		diffusionRate: cfg.Fluid.DiffusionRate,
		velocityIters: cfg.Fluid.VelocityIters,
		pressureIters: cfg.Fluid.PressureIters,
		densityIters:  cfg.Fluid.DensityIters,
		fadeRate:      cfg.Fluid.FadeRate,
		dyePullRate:   cfg.Fluid.DyePullRate,
		maxVelComp:    float32(cfg.Fluid.MaxVelocityComp),
	}
	return f
}

// IX maps a cell coordinate to a flat index, wrapping or clamping to
// [0, N-1] depending on the field's boundary mode. Every caller indexing
// into a grid slice MUST go through IX so wrap/clamp behavior stays
// consistent across the solver.
func (f *Field) IX(x, y int) int {
	if f.wrap {
		x = ((x % f.N) + f.N) % f.N
		y = ((y % f.N) + f.N) % f.N
	} else {
		if x < 0 {
			x = 0
		} else if x >= f.N {
			x = f.N - 1
		}
		if y < 0 {
			y = 0
		} else if y >= f.N {
			y = f.N - 1
		}
	}
	return y*f.N + x
}

// worldToCell maps a world position to fractional grid coordinates.
func (f *Field) worldToCell(x, y float32) (float32, float32) {
	return x / f.scaleX, y / f.scaleY
}

// CellAt maps a world position to the integer grid cell containing it, for
// callers that need to inject density or velocity (AddDensity, AddVelocity)
// rather than sample it.
func (f *Field) CellAt(x, y float32) (i, j int) {
	cx, cy := f.worldToCell(x, y)
	return int(cx), int(cy)
}

// VelocityAt samples the velocity field at a world position via bilinear
// interpolation, implementing the particles.FluidSampler interface.
func (f *Field) VelocityAt(x, y float32) vecmath.Vec2 {
	cx, cy := f.worldToCell(x, y)
	return vecmath.Vec2{
		X: f.sampleBilinear(f.Vx, cx, cy),
		Y: f.sampleBilinear(f.Vy, cx, cy),
	}
}

// DyeAt samples the RGB dye channels at a world position.
func (f *Field) DyeAt(x, y float32) (r, g, b float32) {
	cx, cy := f.worldToCell(x, y)
	return f.sampleBilinear(f.R, cx, cy), f.sampleBilinear(f.G, cx, cy), f.sampleBilinear(f.B, cx, cy)
}

func (f *Field) sampleBilinear(grid []float32, cx, cy float32) float32 {
	x0 := int(math.Floor(float64(cx)))
	y0 := int(math.Floor(float64(cy)))
	tx := cx - float32(x0)
	ty := cy - float32(y0)

	v00 := grid[f.IX(x0, y0)]
	v10 := grid[f.IX(x0+1, y0)]
	v01 := grid[f.IX(x0, y0+1)]
	v11 := grid[f.IX(x0+1, y0+1)]

	a := v00 + (v10-v00)*tx
	b := v01 + (v11-v01)*tx
	return a + (b-a)*ty
}

// AddDensity blends a cell's dye channels toward (r,g,b) with rate
// (strength/50)*dyePullRate, clamped to [0,255].
func (f *Field) AddDensity(i, j int, r, g, b, strength float32) {
	idx := f.IX(i, j)
	rate := (strength / 50) * float32(f.dyePullRate)
	f.R[idx] = vecmath.Clamp(f.R[idx]+(r-f.R[idx])*rate, 0, 255)
	f.G[idx] = vecmath.Clamp(f.G[idx]+(g-f.G[idx])*rate, 0, 255)
	f.B[idx] = vecmath.Clamp(f.B[idx]+(b-f.B[idx])*rate, 0, 255)
}

// AddVelocity adds (dx,dy) to a cell's velocity, clamped to
// ±maxVelocityComponent on each axis.
func (f *Field) AddVelocity(i, j int, dx, dy float32) {
	idx := f.IX(i, j)
	f.Vx[idx] = vecmath.Clamp(f.Vx[idx]+dx, -f.maxVelComp, f.maxVelComp)
	f.Vy[idx] = vecmath.Clamp(f.Vy[idx]+dy, -f.maxVelComp, f.maxVelComp)
}

// Step advances the fluid field by dt seconds: velocity diffuse -> project
// -> advect -> project, then dye diffuse -> advect, then dye fade.
func (f *Field) Step(dt float32) {
	a := float32(f.diffusionRate) * dt * float32((f.N-2)*(f.N-2))

	f.Vx0, f.Vx = f.Vx, f.Vx0
	f.Vy0, f.Vy = f.Vy, f.Vy0
	f.diffuse(1, f.Vx, f.Vx0, a, f.velocityIters)
	f.diffuse(2, f.Vy, f.Vy0, a, f.velocityIters)

	f.project(f.Vx, f.Vy, f.Vx0, f.Vy0, f.pressureIters)

	f.Vx0, f.Vx = f.Vx, f.Vx0
	f.Vy0, f.Vy = f.Vy, f.Vy0
	f.advect(1, f.Vx, f.Vx0, f.Vx0, f.Vy0, dt)
	f.advect(2, f.Vy, f.Vy0, f.Vx0, f.Vy0, dt)

	f.project(f.Vx, f.Vy, f.Vx0, f.Vy0, f.pressureIters)

	f.clampVelocity()

	f.R0, f.R = f.R, f.R0
	f.G0, f.G = f.G, f.G0
	f.B0, f.B = f.B, f.B0
	dDye := float32(f.diffusionRate) * dt * float32((f.N-2)*(f.N-2))
	f.diffuse(0, f.R, f.R0, dDye, f.densityIters)
	f.diffuse(0, f.G, f.G0, dDye, f.densityIters)
	f.diffuse(0, f.B, f.B0, dDye, f.densityIters)

	f.R0, f.R = f.R, f.R0
	f.G0, f.G = f.G, f.G0
	f.B0, f.B = f.B, f.B0
	f.advect(0, f.R, f.R0, f.Vx, f.Vy, dt)
	f.advect(0, f.G, f.G0, f.Vx, f.Vy, dt)
	f.advect(0, f.B, f.B0, f.Vx, f.Vy, dt)

	fade := float32(f.fadeRate) * 255 * dt
	fadeChannel(f.R, fade)
	fadeChannel(f.G, fade)
	fadeChannel(f.B, fade)
}

func fadeChannel(grid []float32, fade float32) {
	for i := range grid {
		v := grid[i] - fade
		if v < 0 {
			v = 0
		}
		grid[i] = v
	}
}

func (f *Field) clampVelocity() {
	for i := range f.Vx {
		f.Vx[i] = vecmath.Clamp(f.Vx[i], -f.maxVelComp, f.maxVelComp)
		f.Vy[i] = vecmath.Clamp(f.Vy[i], -f.maxVelComp, f.maxVelComp)
	}
}

// diffuse solves (I + 4a*L)x = x0 via K Gauss-Seidel relaxation iterations.
func (f *Field) diffuse(b int, x, x0 []float32, a float32, iters int) {
	c := 1 + 4*a
	f.linSolve(b, x, x0, a, c, iters)
}

// linSolve performs K Gauss-Seidel iterations of 4p = d + sum(neighbours).
func (f *Field) linSolve(b int, x, x0 []float32, a, c float32, iters int) {
	cRecip := 1 / c
	n := f.N
	for k := 0; k < iters; k++ {
		for j := 1; j < n-1; j++ {
			for i := 1; i < n-1; i++ {
				idx := f.IX(i, j)
				x[idx] = (x0[idx] + a*(x[f.IX(i+1, j)]+x[f.IX(i-1, j)]+
					x[f.IX(i, j+1)]+x[f.IX(i, j-1)])) * cRecip
			}
		}
		f.setBnd(b, x)
	}
}

// project makes the velocity field approximately divergence-free.
func (f *Field) project(vx, vy, p, div []float32, iters int) {
	n := f.N
	for j := 1; j < n-1; j++ {
		for i := 1; i < n-1; i++ {
			idx := f.IX(i, j)
			div[idx] = -0.5 * (vx[f.IX(i+1, j)] - vx[f.IX(i-1, j)] +
				vy[f.IX(i, j+1)] - vy[f.IX(i, j-1)]) / float32(n)
			p[idx] = 0
		}
	}
	f.setBnd(0, div)
	f.setBnd(0, p)
	f.linSolve(0, p, div, 1, 4, iters)

	for j := 1; j < n-1; j++ {
		for i := 1; i < n-1; i++ {
			idx := f.IX(i, j)
			vx[idx] -= 0.5 * float32(n) * (p[f.IX(i+1, j)] - p[f.IX(i-1, j)])
			vy[idx] -= 0.5 * float32(n) * (p[f.IX(i, j+1)] - p[f.IX(i, j-1)])
		}
	}
	f.setBnd(1, vx)
	f.setBnd(2, vy)
}

// advect traces each cell back along the velocity field and bilinearly
// interpolates the source field there.
func (f *Field) advect(b int, d, d0, vx, vy []float32, dt float32) {
	n := f.N
	nFloat := float32(n)
	dtN := dt * nFloat

	var iMin, iMax float32 = 0.5, nFloat - 1.5
	for j := 1; j < n-1; j++ {
		for i := 1; i < n-1; i++ {
			idx := f.IX(i, j)
			x := float32(i) - dtN*vx[idx]
			y := float32(j) - dtN*vy[idx]

			if f.wrap {
				x = wrapCoord(x, nFloat)
				y = wrapCoord(y, nFloat)
			} else {
				x = vecmath.Clamp(x, iMin, iMax)
				y = vecmath.Clamp(y, iMin, iMax)
			}

			i0 := int(math.Floor(float64(x)))
			i1 := i0 + 1
			j0 := int(math.Floor(float64(y)))
			j1 := j0 + 1

			s1 := x - float32(i0)
			s0 := 1 - s1
			t1 := y - float32(j0)
			t0 := 1 - t1

			d[idx] = s0*(t0*d0[f.IX(i0, j0)]+t1*d0[f.IX(i0, j1)]) +
				s1*(t0*d0[f.IX(i1, j0)]+t1*d0[f.IX(i1, j1)])
		}
	}
	f.setBnd(b, d)
}

func wrapCoord(v, n float32) float32 {
	for v < 0 {
		v += n
	}
	for v >= n {
		v -= n
	}
	return v
}

// setBnd enforces the boundary condition for field b: velocity components
// invert their normal component on walls, scalars mirror, corners average
// their two neighbours. In wrap mode, opposite edges are copied instead.
func (f *Field) setBnd(b int, x []float32) {
	n := f.N

	if f.wrap {
		for i := 1; i < n-1; i++ {
			x[f.IX(i, 0)] = x[f.IX(i, n-2)]
			x[f.IX(i, n-1)] = x[f.IX(i, 1)]
			x[f.IX(0, i)] = x[f.IX(n-2, i)]
			x[f.IX(n-1, i)] = x[f.IX(1, i)]
		}
	} else {
		for i := 1; i < n-1; i++ {
			if b == 2 {
				x[f.IX(i, 0)] = -x[f.IX(i, 1)]
				x[f.IX(i, n-1)] = -x[f.IX(i, n-2)]
			} else {
				x[f.IX(i, 0)] = x[f.IX(i, 1)]
				x[f.IX(i, n-1)] = x[f.IX(i, n-2)]
			}
			if b == 1 {
				x[f.IX(0, i)] = -x[f.IX(1, i)]
				x[f.IX(n-1, i)] = -x[f.IX(n-2, i)]
			} else {
				x[f.IX(0, i)] = x[f.IX(1, i)]
				x[f.IX(n-1, i)] = x[f.IX(n-2, i)]
			}
		}
	}

	x[f.IX(0, 0)] = 0.5 * (x[f.IX(1, 0)] + x[f.IX(0, 1)])
	x[f.IX(0, n-1)] = 0.5 * (x[f.IX(1, n-1)] + x[f.IX(0, n-2)])
	x[f.IX(n-1, 0)] = 0.5 * (x[f.IX(n-2, 0)] + x[f.IX(n-1, 1)])
	x[f.IX(n-1, n-1)] = 0.5 * (x[f.IX(n-2, n-1)] + x[f.IX(n-1, n-2)])
}
