package terra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatmullRomPoint_InterpolatesEndpoints(t *testing.T) {
	assert := assert.New(t)

	p0 := Vec2{-1, 0}
	p1 := Vec2{0, 0}
	p2 := Vec2{1, 0}
	p3 := Vec2{2, 0}

	at0 := CatmullRomPoint(p0, p1, p2, p3, 0)
	at1 := CatmullRomPoint(p0, p1, p2, p3, 1)

	assert.InDelta(p1.X, at0.X, 1e-5)
	assert.InDelta(p1.Y, at0.Y, 1e-5)
	assert.InDelta(p2.X, at1.X, 1e-5)
	assert.InDelta(p2.Y, at1.Y, 1e-5)
}

func TestCatmullRomTangent_StraightLineMatchesDirection(t *testing.T) {
	assert := assert.New(t)

	tangent := CatmullRomTangent(Vec2{-1, 0}, Vec2{0, 0}, Vec2{1, 0}, Vec2{2, 0})
	assert.InDelta(1, tangent.X, 1e-5)
	assert.InDelta(0, tangent.Y, 1e-5)
}

func TestProjectParam_ClampsToSegment(t *testing.T) {
	assert := assert.New(t)

	p1, p2 := Vec2{0, 0}, Vec2{10, 0}
	assert.Equal(float32(0), projectParam(p1, p2, Vec2{-5, 0}))
	assert.Equal(float32(1), projectParam(p1, p2, Vec2{15, 0}))
	assert.InDelta(0.5, projectParam(p1, p2, Vec2{5, 3}), 1e-6)
}

func TestEdgeTangent_StraightChainMatchesSegmentDirection(t *testing.T) {
	assert := assert.New(t)

	m := straightChainMesh()
	// The middle segment (vertex 1 -> vertex 2) of the straight chain.
	var midEdge int = -1
	for he, e := range m.HalfEdges {
		if m.Vertices[e.Origin].X == 1 && m.Vertices[m.Dest(he)].X == 2 {
			midEdge = he
		}
	}
	assert.GreaterOrEqual(midEdge, 0)

	tangent := EdgeTangent(m, midEdge, Vec2{1.5, 0})
	assert.InDelta(1, tangent.X, 1e-4)
	assert.InDelta(0, tangent.Y, 1e-4)
}

func TestChainTangents_EndpointsUseAdjacentSegment(t *testing.T) {
	assert := assert.New(t)

	points := []Vec2{{0, 0}, {1, 0}, {2, 0}, {3, 0}}
	tangents := ChainTangents(points)

	assert.Len(tangents, 4)
	for _, tg := range tangents {
		assert.InDelta(1, tg.X, 1e-5)
		assert.InDelta(0, tg.Y, 1e-5)
	}
}
