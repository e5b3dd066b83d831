package terra

import "math"

// ZeroThreshold is the default epsilon below which a height sample is
// considered "no data" and therefore Dirichlet-constrained by the solvers.
const ZeroThreshold = 1e-6

// HeightField is a dense W*H plane of height samples, nominally in [0,1].
// A value of exactly 0 marks "no data". HeightField is planar: a single
// contiguous slice, enabling single-channel numerical kernels to run
// without a stride.
type HeightField struct {
	W, H int
	Pix  []float32
}

// NewHeightField allocates a zeroed W*H height field.
func NewHeightField(w, h int) *HeightField {
	return &HeightField{W: w, H: h, Pix: make([]float32, w*h)}
}

// At returns the height sample at (x,y), reading out-of-bounds samples as
// zero (clamp-to-border), matching the solvers' boundary policy.
func (f *HeightField) At(x, y int) float32 {
	if x < 0 || y < 0 || x >= f.W || y >= f.H {
		return 0
	}
	return f.Pix[y*f.W+x]
}

// Set stores a height sample at (x,y). Out-of-bounds writes are ignored.
func (f *HeightField) Set(x, y int, v float32) {
	if x < 0 || y < 0 || x >= f.W || y >= f.H {
		return
	}
	f.Pix[y*f.W+x] = v
}

// Clone returns an independent copy of the field.
func (f *HeightField) Clone() *HeightField {
	out := &HeightField{W: f.W, H: f.H, Pix: make([]float32, len(f.Pix))}
	copy(out.Pix, f.Pix)
	return out
}

// Mask derives the Dirichlet/no-data mask: true wherever height <= eps.
func (f *HeightField) Mask(eps float32) []bool {
	mask := make([]bool, len(f.Pix))
	for i, v := range f.Pix {
		mask[i] = v <= eps
	}
	return mask
}

// Vec2 is a planar 2-vector, used for gradients and tangents.
type Vec2 struct {
	X, Y float32
}

// Len returns the Euclidean norm of v.
func (v Vec2) Len() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// Normalize returns v scaled to unit length, or the zero vector if v is
// degenerate (below 1e-12 magnitude).
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l < 1e-12 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float32 {
	return v.X*o.X + v.Y*o.Y
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Vec3 is a 3-vector, used for unit surface normals (nz >= 0).
type Vec3 struct {
	X, Y, Z float32
}

// Normalize returns v scaled to unit length, falling back to the
// identity-direction normal (0,0,1) for a degenerate input, matching the
// engine's numerical edge case policy.
func (v Vec3) Normalize() Vec3 {
	l := float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
	if l < 1e-12 {
		return Vec3{0, 0, 1}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// NormalField is a dense W*H plane of unit surface normals, stored
// interleaved (one Vec3 per pixel). Planar layout (PlanarNormalField) is
// used where per-component smoothing needs contiguous channels; convert at
// component boundaries and never let the layout escape a component.
type NormalField struct {
	W, H int
	N    []Vec3
}

// NewNormalField allocates a W*H normal field initialized to (0,0,1).
func NewNormalField(w, h int) *NormalField {
	n := make([]Vec3, w*h)
	for i := range n {
		n[i] = Vec3{0, 0, 1}
	}
	return &NormalField{W: w, H: h, N: n}
}

// PlanarNormalField holds the same data as NormalField but split into
// three contiguous per-component slices, required by solvers and blur
// kernels that operate a single channel at a time.
type PlanarNormalField struct {
	W, H       int
	Nx, Ny, Nz []float32
}

// ToPlanar converts an interleaved normal field to planar layout.
func (n *NormalField) ToPlanar() *PlanarNormalField {
	p := &PlanarNormalField{
		W: n.W, H: n.H,
		Nx: make([]float32, len(n.N)),
		Ny: make([]float32, len(n.N)),
		Nz: make([]float32, len(n.N)),
	}
	for i, v := range n.N {
		p.Nx[i], p.Ny[i], p.Nz[i] = v.X, v.Y, v.Z
	}
	return p
}

// ToInterleaved converts a planar normal field back to interleaved layout.
func (p *PlanarNormalField) ToInterleaved() *NormalField {
	n := &NormalField{W: p.W, H: p.H, N: make([]Vec3, len(p.Nx))}
	for i := range n.N {
		n.N[i] = Vec3{p.Nx[i], p.Ny[i], p.Nz[i]}
	}
	return n
}

// HeightGradient computes the height gradient at (x,y) via central
// differences with clamp-to-border out-of-bounds reads.
func HeightGradient(h *HeightField, x, y int) Vec2 {
	hl := h.At(x-1, y)
	hr := h.At(x+1, y)
	hd := h.At(x, y-1)
	hu := h.At(x, y+1)
	return Vec2{(hr - hl) * 0.5, (hu - hd) * 0.5}
}

// HeightToNormal computes the unit surface normal at (x,y) from the height
// gradient, with scale controlling the z-component magnitude before
// renormalization (larger scale = flatter normals).
func HeightToNormal(h *HeightField, x, y int, scale float32) Vec3 {
	g := HeightGradient(h, x, y)
	return Vec3{-g.X, -g.Y, scale}.Normalize()
}

// HeightToNormals converts a full height field into an interleaved normal
// field using HeightToNormal at every pixel.
func HeightToNormals(h *HeightField, scale float32) *NormalField {
	out := NewNormalField(h.W, h.H)
	for y := 0; y < h.H; y++ {
		for x := 0; x < h.W; x++ {
			out.N[y*h.W+x] = HeightToNormal(h, x, y, scale)
		}
	}
	return out
}

// Divergence2D computes div(fx,fy) at (x,y) via central differences with
// clamp-to-border out-of-bounds reads.
func Divergence2D(fx, fy []float32, w, hgt, x, y int) float32 {
	at := func(f []float32, xx, yy int) float32 {
		if xx < 0 || yy < 0 || xx >= w || yy >= hgt {
			return 0
		}
		return f[yy*w+xx]
	}
	fxL := at(fx, x-1, y)
	fxR := at(fx, x+1, y)
	fyD := at(fy, x, y-1)
	fyU := at(fy, x, y+1)
	return (fxR - fxL + fyU - fyD) * 0.5
}
