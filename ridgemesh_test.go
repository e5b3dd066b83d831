package terra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeDivergenceField_RidgeNegativeValleyPositive(t *testing.T) {
	assert := assert.New(t)

	hf := threePeakHeightField()
	div := ComputeDivergenceField(hf)
	assert.Len(div, hf.W*hf.H)

	// At a peak the flow diverges outward in every direction: negative
	// divergence, the ridge sign.
	peakIdx := 3*hf.W + 3
	assert.Less(div[peakIdx], float32(0))

	for _, v := range div {
		assert.GreaterOrEqual(v, float32(-1.0001))
		assert.LessOrEqual(v, float32(1.0001))
	}
}

func TestBuildRidgeMesh_ThreePeaksProducesEnergizedMesh(t *testing.T) {
	assert := assert.New(t)

	hf := threePeakHeightField()
	rm := BuildRidgeMesh(hf, DefaultRidgeMeshConfig())

	assert.NotNil(rm.Mesh)
	assert.NotEmpty(rm.Mesh.Vertices)
	assert.NotEmpty(rm.Mesh.HalfEdges)
	assert.NotEmpty(rm.Separatrices)

	var sawRidge, sawEnergized bool
	for _, he := range rm.Mesh.HalfEdges {
		if he.Kind == EdgeRidge {
			sawRidge = true
		}
		if he.Energy > 0 {
			sawEnergized = true
		}
	}
	assert.True(sawRidge, "three separated peaks should yield at least one ridge edge")
	assert.True(sawEnergized, "PropagateEnergy should leave some half-edge with positive energy")
}

func TestBuildRidgeMesh_FlatFieldReturnsMesh(t *testing.T) {
	assert := assert.New(t)

	hf := NewHeightField(8, 8)
	for i := range hf.Pix {
		hf.Pix[i] = 0.5
	}

	rm := BuildRidgeMesh(hf, DefaultRidgeMeshConfig())
	assert.NotNil(rm.Mesh)
}
