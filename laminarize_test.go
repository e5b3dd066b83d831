package terra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestLaminarize_FlatFieldStaysFlat checks that a perfectly flat normal
// field (zero divergence everywhere) is left alone: the Poisson RHS is
// identically zero so the corrector potential phi stays zero too.
func TestLaminarize_FlatFieldStaysFlat(t *testing.T) {
	assert := assert.New(t)

	n := NewNormalField(8, 8) // already (0,0,1) everywhere

	out, diag := Laminarize(n, 1.0, DefaultLaminarizeConfig())
	assert.True(diag.Converged)

	for _, v := range out.N {
		assert.InDelta(0, v.X, 1e-4)
		assert.InDelta(0, v.Y, 1e-4)
		assert.InDelta(1, v.Z, 1e-3)
	}
}

func TestLaminarize_OutputStaysUnitLength(t *testing.T) {
	assert := assert.New(t)

	n := NewNormalField(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			n.N[y*8+x] = Vec3{float32(x) / 16, float32(y) / 16, 1}.Normalize()
		}
	}

	out, _ := Laminarize(n, 1.0, DefaultLaminarizeConfig())
	for _, v := range out.N {
		l := v.X*v.X + v.Y*v.Y + v.Z*v.Z
		assert.InDelta(1, l, 1e-3)
	}
}

func TestSolveNeumannPoisson_ZeroRHSStaysZero(t *testing.T) {
	assert := assert.New(t)

	rhs := make([]float32, 16)
	phi, diag := solveNeumannPoisson(rhs, 4, 4, DefaultLaminarizeConfig())
	assert.True(diag.Converged)
	for _, v := range phi {
		assert.Equal(float32(0), v)
	}
}

func TestSeparableGaussianBlur_PreservesConstantField(t *testing.T) {
	assert := assert.New(t)

	f := make([]float32, 36)
	for i := range f {
		f[i] = 3.5
	}
	out := separableGaussianBlur(f, 6, 6, 1.5, 3)
	for _, v := range out {
		assert.InDelta(3.5, v, 1e-4)
	}
}
