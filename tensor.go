package terra

import (
	"math"

	"github.com/esimov/terra/utils"
)

// BorderPolicy selects how the Hessian stencils treat out-of-bounds
// samples.
type BorderPolicy int

const (
	// BorderUndefined treats out-of-bounds samples as undefined: a 3x3
	// stencil term that needs one contributes zero, and the 5x5 stencil
	// falls back to 3x3.
	BorderUndefined BorderPolicy = iota
	// BorderClampEdge clamps out-of-bounds reads to the nearest edge pixel.
	BorderClampEdge
	// BorderRepeat wraps out-of-bounds reads around the field (toroidal).
	BorderRepeat
	// BorderMirror reflects out-of-bounds reads back into the field.
	BorderMirror
)

// StencilSize selects the finite-difference stencil used by Hessian.
type StencilSize int

const (
	// Stencil3x3 uses the standard 3-sample central-difference stencil.
	Stencil3x3 StencilSize = iota
	// Stencil5x5 uses the five-point stencil, falling back to 3x3 if any
	// sample in its footprint is undefined.
	Stencil5x5
)

// HessianConfig configures Hessian2D sampling.
type HessianConfig struct {
	Border    BorderPolicy
	Stencil   StencilSize
	Undefined float32 // sentinel value; samples equal to this contribute zero
	HasSentinel bool
}

// DefaultHessianConfig returns the engine's default Hessian sampling
// policy: 3x3 stencil, clamp-to-border.
func DefaultHessianConfig() HessianConfig {
	return HessianConfig{Border: BorderClampEdge, Stencil: Stencil3x3}
}

// Hessian2D is a symmetric 2x2 second-derivative tensor.
type Hessian2D struct {
	XX, XY, YY float32
}

// sample reads height(x,y) honouring the configured border policy and
// undefined-value sentinel. ok is false when the sample should be treated
// as undefined.
func (c HessianConfig) sample(h *HeightField, x, y int) (v float32, ok bool) {
	if x >= 0 && y >= 0 && x < h.W && y < h.H {
		v = h.Pix[y*h.W+x]
		if c.HasSentinel && v == c.Undefined {
			return 0, false
		}
		return v, true
	}
	switch c.Border {
	case BorderClampEdge:
		cx, cy := clampInt(x, 0, h.W-1), clampInt(y, 0, h.H-1)
		return h.At(cx, cy), true
	case BorderRepeat:
		cx, cy := wrapInt(x, h.W), wrapInt(y, h.H)
		return h.At(cx, cy), true
	case BorderMirror:
		cx, cy := mirrorInt(x, h.W), mirrorInt(y, h.H)
		return h.At(cx, cy), true
	default: // BorderUndefined
		return 0, false
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func wrapInt(v, n int) int {
	if n <= 0 {
		return 0
	}
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func mirrorInt(v, n int) int {
	if n <= 1 {
		return 0
	}
	period := 2 * (n - 1)
	v = wrapInt(v, period)
	if v >= n {
		v = period - v
	}
	return v
}

// ComputeHessian evaluates the Hessian at every pixel of h using cfg's
// stencil and border policy.
func ComputeHessian(h *HeightField, cfg HessianConfig) []Hessian2D {
	out := make([]Hessian2D, h.W*h.H)
	for y := 0; y < h.H; y++ {
		for x := 0; x < h.W; x++ {
			out[y*h.W+x] = hessianAt(h, cfg, x, y)
		}
	}
	return out
}

func hessianAt(h *HeightField, cfg HessianConfig, x, y int) Hessian2D {
	if cfg.Stencil == Stencil5x5 {
		if he, ok := hessian5x5(h, cfg, x, y); ok {
			return he
		}
	}
	return hessian3x3(h, cfg, x, y)
}

// hessian3x3 implements the standard 3x3 central-difference stencil:
//
//	fxx ≈ f(x-1)-2f(x)+f(x+1)
//	fxy ≈ 1/4 (f(+,+)-f(-,+)-f(+,-)+f(-,-))
func hessian3x3(h *HeightField, cfg HessianConfig, x, y int) Hessian2D {
	c, _ := cfg.sample(h, x, y)
	l, lok := cfg.sample(h, x-1, y)
	r, rok := cfg.sample(h, x+1, y)
	u, uok := cfg.sample(h, x, y-1)
	d, dok := cfg.sample(h, x, y+1)
	pp, ppok := cfg.sample(h, x+1, y+1)
	pm, pmok := cfg.sample(h, x+1, y-1)
	mp, mpok := cfg.sample(h, x-1, y+1)
	mm, mmok := cfg.sample(h, x-1, y-1)

	var he Hessian2D
	if lok && rok {
		he.XX = l - 2*c + r
	}
	if uok && dok {
		he.YY = u - 2*c + d
	}
	if ppok && pmok && mpok && mmok {
		he.XY = 0.25 * (pp - mp - pm + mm)
	}
	return he
}

// hessian5x5 implements the five-point stencil
// (-1,16,-30,16,-1)/12 with a 4x4 mixed-derivative stencil normalized by
// 144. Falls back to 3x3 (ok=false) if any sample in its footprint is
// undefined.
func hessian5x5(h *HeightField, cfg HessianConfig, x, y int) (Hessian2D, bool) {
	var xs, ys [5]float32
	for i := -2; i <= 2; i++ {
		v, ok := cfg.sample(h, x+i, y)
		if !ok {
			return Hessian2D{}, false
		}
		xs[i+2] = v
		v, ok = cfg.sample(h, x, y+i)
		if !ok {
			return Hessian2D{}, false
		}
		ys[i+2] = v
	}
	fxx := (-xs[0] + 16*xs[1] - 30*xs[2] + 16*xs[3] - xs[4]) / 12
	fyy := (-ys[0] + 16*ys[1] - 30*ys[2] + 16*ys[3] - ys[4]) / 12

	// 4x4 mixed-derivative stencil: weighted central differences at
	// offsets {-2,-1,1,2} on both axes, normalized by 144.
	weight := func(o int) float32 {
		switch o {
		case -2, 2:
			return -1
		case -1, 1:
			return 8
		}
		return 0
	}
	var fxy float32
	offsets := []int{-2, -1, 1, 2}
	for _, oy := range offsets {
		for _, ox := range offsets {
			v, ok := cfg.sample(h, x+ox, y+oy)
			if !ok {
				return Hessian2D{}, false
			}
			sign := float32(1)
			if (ox < 0) != (oy < 0) {
				sign = -1
			}
			fxy += sign * weight(ox) * weight(oy) * v
		}
	}
	fxy /= 144
	return Hessian2D{XX: fxx, XY: fxy, YY: fyy}, true
}

// EigenVec2 is a unit eigenvector with its signed eigenvalue.
type EigenVec2 struct {
	Vector Vec2
	Value  float32
}

// EigenPair holds a Hessian's eigendecomposition, ordered by |value|
// descending (Major is the dominant-curvature axis).
type EigenPair struct {
	Major, Minor EigenVec2
}

// Eigendecompose computes the eigendecomposition of a symmetric 2x2
// Hessian using the numerically stable closed form:
// discriminant = sqrt((xx-yy)^2 + 4xy^2), never sqrt(trace^2 - 4 det).
func Eigendecompose(h Hessian2D) EigenPair {
	trace := h.XX + h.YY
	diff := h.XX - h.YY
	disc := float32(math.Sqrt(float64(diff*diff + 4*h.XY*h.XY)))

	l1 := (trace + disc) * 0.5
	l2 := (trace - disc) * 0.5

	var v1, v2 Vec2
	if utils.Abs(h.XY) > 1e-8 {
		v1 = Vec2{l1 - h.YY, h.XY}.Normalize()
		v2 = Vec2{l2 - h.YY, h.XY}.Normalize()
		if v1 == (Vec2{}) {
			v1 = Vec2{1, 0}
		}
		if v2 == (Vec2{}) {
			v2 = Vec2{0, 1}
		}
	} else {
		// Near-diagonal: eigenvectors are the axis vectors, l1 (the larger
		// eigenvalue) belonging to whichever of xx, yy is larger.
		if h.XX >= h.YY {
			v1, v2 = Vec2{1, 0}, Vec2{0, 1}
		} else {
			v1, v2 = Vec2{0, 1}, Vec2{1, 0}
		}
	}

	e1 := EigenVec2{Vector: v1, Value: l1}
	e2 := EigenVec2{Vector: v2, Value: l2}
	if utils.Abs(e1.Value) >= utils.Abs(e2.Value) {
		return EigenPair{Major: e1, Minor: e2}
	}
	return EigenPair{Major: e2, Minor: e1}
}

// Rank1 returns the rank-1 matrix lambda * v (x) v for an eigenvector.
func Rank1(e EigenVec2) Hessian2D {
	return Hessian2D{
		XX: e.Value * e.Vector.X * e.Vector.X,
		XY: e.Value * e.Vector.X * e.Vector.Y,
		YY: e.Value * e.Vector.Y * e.Vector.Y,
	}
}

// ComplementaryRank1 subtracts the major-axis rank-1 reconstruction from h,
// yielding the complementary rank-1 component driven by the minor axis.
// Used by the split-normals pipeline to obtain two complementary normal
// fields from one Hessian.
func ComplementaryRank1(h Hessian2D, pair EigenPair) Hessian2D {
	major := Rank1(pair.Major)
	return Hessian2D{
		XX: h.XX - major.XX,
		XY: h.XY - major.XY,
		YY: h.YY - major.YY,
	}
}

// AnisotropyRatio returns |lambda_major| / (|lambda_major|+|lambda_minor|),
// clamped to [0,1]. 0.5 is isotropic, 1.0 is fully anisotropic.
func AnisotropyRatio(pair EigenPair) float32 {
	maj := utils.Abs(pair.Major.Value)
	mino := utils.Abs(pair.Minor.Value)
	sum := maj + mino
	if sum < 1e-12 {
		return 0.5
	}
	r := maj / sum
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
