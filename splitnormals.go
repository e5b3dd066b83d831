package terra

import "math"

// SplitNormalsConfig configures the rank-1 decomposition used to separate
// a height field's curvature into two complementary normal fields, one
// driven by the dominant (major) curvature axis and one by the
// perpendicular (minor) axis.
type SplitNormalsConfig struct {
	Hessian HessianConfig
	Scale   float32 // z-component scale, as in HeightToNormal
}

// DefaultSplitNormalsConfig uses the default Hessian sampling policy and
// a unit z-scale.
func DefaultSplitNormalsConfig() SplitNormalsConfig {
	return SplitNormalsConfig{Hessian: DefaultHessianConfig(), Scale: 1.0}
}

// SplitResult holds the two complementary normal fields and the raw
// per-pixel anisotropy ratio, which the LIC debug export passes to
// ComputeLIC to shorten streaks over near-isotropic regions.
type SplitResult struct {
	Major      *NormalField
	Minor      *NormalField
	Anisotropy []float32
}

// SplitNormals decomposes a height field's Hessian at every pixel into
// its major and minor rank-1 components and reconstructs a normal field
// from each, so ridge-aligned and valley-aligned structure can be
// processed independently downstream.
func SplitNormals(h *HeightField, cfg SplitNormalsConfig) SplitResult {
	hess := ComputeHessian(h, cfg.Hessian)
	major := NewNormalField(h.W, h.H)
	minor := NewNormalField(h.W, h.H)
	aniso := make([]float32, h.W*h.H)

	for i, he := range hess {
		pair := Eigendecompose(he)
		aniso[i] = AnisotropyRatio(pair)

		majorT := Rank1(pair.Major)
		minorT := ComplementaryRank1(he, pair)

		major.N[i] = tensorToNormal(majorT, cfg.Scale)
		minor.N[i] = tensorToNormal(minorT, cfg.Scale)
	}

	return SplitResult{Major: major, Minor: minor, Anisotropy: aniso}
}

// tensorToNormal treats a rank-1 (or rank-1-difference) tensor's diagonal
// (XX, YY) as a pseudo-gradient and returns the unit normal of
// (-XX, -YY, scale): larger diagonal entries tilt the normal further from
// vertical, and an all-zero diagonal gives (0,0,1).
func tensorToNormal(t Hessian2D, scale float32) Vec3 {
	gx := t.XX
	gy := t.YY
	mag := float32(math.Sqrt(float64(gx*gx + gy*gy)))
	if mag < 1e-12 {
		return Vec3{0, 0, 1}
	}
	return Vec3{-gx, -gy, scale}.Normalize()
}
