package terra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// squareWithDiagonalsMesh builds a 2x2 square with both diagonals meeting
// at a center vertex, i.e. 5 vertices / 8 edges forming 4 triangular
// faces of area 1 plus the infinite face around the square (an easy planar
// embedding to hand-author that still exercises every DCEL invariant).
func squareWithDiagonalsMesh() *DCELMesh {
	vertices := []Vertex{
		{X: 0, Y: 0, Kind: VertexJunction},
		{X: 2, Y: 0, Kind: VertexJunction},
		{X: 2, Y: 2, Kind: VertexJunction},
		{X: 0, Y: 2, Kind: VertexJunction},
		{X: 1, Y: 1, Kind: VertexJunction},
	}
	edges := []UndirectedEdge{
		{V0: 0, V1: 1, Kind: EdgeRidge},
		{V0: 1, V1: 2, Kind: EdgeRidge},
		{V0: 2, V1: 3, Kind: EdgeRidge},
		{V0: 3, V1: 0, Kind: EdgeRidge},
		{V0: 0, V1: 4, Kind: EdgeRidge},
		{V0: 1, V1: 4, Kind: EdgeRidge},
		{V0: 2, V1: 4, Kind: EdgeRidge},
		{V0: 3, V1: 4, Kind: EdgeRidge},
	}
	return BuildDCEL(vertices, edges)
}

func TestBuildDCEL_TwinInvolution(t *testing.T) {
	assert := assert.New(t)

	m := squareWithDiagonalsMesh()
	for he := range m.HalfEdges {
		twin := m.HalfEdges[he].Twin
		assert.Equal(he, m.HalfEdges[twin].Twin, "twin(twin(h)) must equal h")
		assert.Equal(m.Dest(he), m.HalfEdges[twin].Origin, "origin(twin(h)) must equal destination(h)")
	}
}

func TestBuildDCEL_HalfEdgeCount(t *testing.T) {
	assert := assert.New(t)

	m := squareWithDiagonalsMesh()
	assert.Len(m.HalfEdges, 16) // 8 undirected edges -> 2 half-edges each
}

func TestBuildDCEL_FaceClosure(t *testing.T) {
	assert := assert.New(t)

	m := squareWithDiagonalsMesh()
	for he := range m.HalfEdges {
		face := m.HalfEdges[he].Face
		if face == InfiniteFace || face == NoFace {
			continue
		}
		count := m.Features[face].EdgeCount
		cur := he
		for i := 0; i < count; i++ {
			cur = m.HalfEdges[cur].Next
		}
		assert.Equal(he, cur, "iterating Next edge_count(face) times must return to the start")
	}
}

func TestBuildDCEL_ExactlyOneInfiniteFace(t *testing.T) {
	assert := assert.New(t)

	m := squareWithDiagonalsMesh()
	// The square has 4 inner triangles plus the infinite face around it;
	// after infinite-face removal exactly 4 closed features remain.
	assert.Len(m.Features, 4)
	for _, f := range m.Features {
		assert.Equal(FeatureClosed, f.Kind)
		assert.Greater(f.AreaSigned, float32(0))
	}

	sawInfinite := false
	for _, he := range m.HalfEdges {
		if he.Face == InfiniteFace {
			sawInfinite = true
		}
	}
	assert.True(sawInfinite, "infinite face's half-edges must be tagged")
}
