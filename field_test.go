package terra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeightField_AtOutOfBoundsReadsZero(t *testing.T) {
	assert := assert.New(t)

	hf := NewHeightField(3, 3)
	hf.Set(1, 1, 0.5)

	assert.Equal(float32(0.5), hf.At(1, 1))
	assert.Equal(float32(0), hf.At(-1, 0))
	assert.Equal(float32(0), hf.At(3, 0))
	assert.Equal(float32(0), hf.At(0, -1))
	assert.Equal(float32(0), hf.At(0, 3))
}

func TestHeightField_SetOutOfBoundsIgnored(t *testing.T) {
	assert := assert.New(t)

	hf := NewHeightField(2, 2)
	hf.Set(5, 5, 1.0)
	for _, v := range hf.Pix {
		assert.Equal(float32(0), v)
	}
}

func TestHeightField_Clone(t *testing.T) {
	assert := assert.New(t)

	hf := NewHeightField(2, 2)
	hf.Set(0, 0, 1.0)
	clone := hf.Clone()
	clone.Set(0, 0, 0.0)

	assert.Equal(float32(1.0), hf.At(0, 0))
	assert.Equal(float32(0.0), clone.At(0, 0))
}

func TestHeightField_Mask(t *testing.T) {
	assert := assert.New(t)

	hf := NewHeightField(2, 1)
	hf.Set(0, 0, 0)
	hf.Set(1, 0, 0.4)

	mask := hf.Mask(0.1)
	assert.True(mask[0])
	assert.False(mask[1])
}

func TestVec2_Normalize(t *testing.T) {
	assert := assert.New(t)

	v := Vec2{3, 4}.Normalize()
	assert.InDelta(0.6, v.X, 1e-6)
	assert.InDelta(0.8, v.Y, 1e-6)

	degenerate := Vec2{0, 0}.Normalize()
	assert.Equal(Vec2{}, degenerate)
}

func TestVec2_DotAddSubScale(t *testing.T) {
	assert := assert.New(t)

	a := Vec2{1, 2}
	b := Vec2{3, 4}

	assert.Equal(float32(11), a.Dot(b))
	assert.Equal(Vec2{4, 6}, a.Add(b))
	assert.Equal(Vec2{-2, -2}, a.Sub(b))
	assert.Equal(Vec2{2, 4}, a.Scale(2))
}

func TestHeightToNormals_FlatFieldPointsUp(t *testing.T) {
	assert := assert.New(t)

	hf := NewHeightField(4, 4)
	for i := range hf.Pix {
		hf.Pix[i] = 0.5
	}
	normals := HeightToNormals(hf, 1.0)

	// Border pixels read the zero outside the field as a drop, so check an
	// interior pixel.
	n := normals.N[1*4+1]
	nx, ny, nz := n.X, n.Y, n.Z
	assert.InDelta(0, nx, 1e-5)
	assert.InDelta(0, ny, 1e-5)
	assert.InDelta(1, nz, 1e-5)
}

func TestNormalField_PlanarInterleavedRoundTrip(t *testing.T) {
	assert := assert.New(t)

	nf := NewNormalField(2, 2)
	for i := range nf.N {
		nf.N[i] = Vec3{X: 0.1, Y: -0.2, Z: 0.97}
	}
	planar := nf.ToPlanar()
	back := planar.ToInterleaved()

	for i := range nf.N {
		assert.InDelta(nf.N[i].X, back.N[i].X, 1e-6)
		assert.InDelta(nf.N[i].Y, back.N[i].Y, 1e-6)
		assert.InDelta(nf.N[i].Z, back.N[i].Z, 1e-6)
	}
}
