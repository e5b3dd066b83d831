package terra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitNormals_FlatFieldYieldsUpwardNormalsAndIsotropicRatio(t *testing.T) {
	assert := assert.New(t)

	hf := NewHeightField(6, 6)
	for i := range hf.Pix {
		hf.Pix[i] = 0.5
	}

	res := SplitNormals(hf, DefaultSplitNormalsConfig())
	for _, v := range res.Major.N {
		assert.InDelta(1, v.Z, 1e-4)
	}
	for _, v := range res.Minor.N {
		assert.InDelta(1, v.Z, 1e-4)
	}
	for _, a := range res.Anisotropy {
		assert.InDelta(0.5, a, 1e-4)
	}
}

func TestSplitNormals_OutputsUnitLength(t *testing.T) {
	assert := assert.New(t)

	hf := quadraticBowl(8, 8, 0.1, 0.05, 0.02)
	res := SplitNormals(hf, DefaultSplitNormalsConfig())
	for i := range res.Major.N {
		m := res.Major.N[i]
		l := m.X*m.X + m.Y*m.Y + m.Z*m.Z
		assert.InDelta(1, l, 1e-3)
	}
}
