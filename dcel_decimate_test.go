package terra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// collinearChainMesh builds two junctions bridged by a chain of 3
// perfectly collinear path vertices, the shape Decimate's RDP thinning
// should collapse to a single edge.
func collinearChainMesh() *DCELMesh {
	vertices := []Vertex{
		{X: 0, Y: 0, Kind: VertexJunction},
		{X: 1, Y: 0, Kind: VertexPath},
		{X: 2, Y: 0, Kind: VertexPath},
		{X: 3, Y: 0, Kind: VertexPath},
		{X: 4, Y: 0, Kind: VertexJunction},
	}
	edges := []UndirectedEdge{
		{V0: 0, V1: 1, Kind: EdgeRidge},
		{V0: 1, V1: 2, Kind: EdgeRidge},
		{V0: 2, V1: 3, Kind: EdgeRidge},
		{V0: 3, V1: 4, Kind: EdgeRidge},
	}
	return BuildDCEL(vertices, edges)
}

func TestDecimate_CollapsesCollinearChain(t *testing.T) {
	assert := assert.New(t)

	m := collinearChainMesh()
	out := Decimate(m, DecimateConfig{Epsilon: 0.5})

	// The junctions at both ends must survive; the 3 collinear path
	// vertices between them should not introduce extra kept points.
	junctions := 0
	for _, v := range out.Vertices {
		if v.Kind == VertexJunction {
			junctions++
		}
	}
	assert.Equal(2, junctions)

	var found bool
	for he := 0; he < len(out.HalfEdges); he += 2 {
		v0, v1 := out.Vertices[out.HalfEdges[he].Origin], out.Vertices[out.Dest(he)]
		if (v0.X == 0 && v1.X == 4) || (v0.X == 4 && v1.X == 0) {
			found = true
		}
	}
	assert.True(found, "collinear chain must collapse to a single direct edge")
}

func TestRDPSimplify_KeepsEndpointsAndSignificantBend(t *testing.T) {
	assert := assert.New(t)

	points := []Vec2{{0, 0}, {1, 0.01}, {2, 5}, {3, 0.01}, {4, 0}}
	kept := RDPSimplify(points, 0.5)

	assert.Contains(kept, 0)
	assert.Contains(kept, 4)
	assert.Contains(kept, 2, "the sharp bend at index 2 must survive thinning")
}

func TestRDPSimplify_StraightLineCollapsesToEndpoints(t *testing.T) {
	assert := assert.New(t)

	points := []Vec2{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}}
	kept := RDPSimplify(points, 0.1)
	assert.Equal([]int{0, 4}, kept)
}
