package terra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSimplify_IsIdempotent checks simplify(simplify(M)) == simplify(M)
// structurally: running Simplify a second time on its own output must be
// a no-op once every sub-threshold feature has already collapsed.
func TestSimplify_IsIdempotent(t *testing.T) {
	assert := assert.New(t)

	m := squareWithDiagonalsMesh() // 4 unit-area triangles, all below MinArea=4
	cfg := DefaultSimplifyConfig()

	once := Simplify(m, cfg)
	twice := Simplify(once, cfg)

	assert.Equal(len(once.Vertices), len(twice.Vertices))
	assert.Equal(len(once.HalfEdges), len(twice.HalfEdges))
}

func TestSimplify_LeavesLargeFeaturesAlone(t *testing.T) {
	assert := assert.New(t)

	m := squareWithDiagonalsMesh()
	cfg := SimplifyConfig{MinArea: 0.1} // below every triangle's area: nothing collapses

	out := Simplify(m, cfg)
	assert.Equal(len(m.Vertices), len(out.Vertices))
	assert.Equal(len(m.HalfEdges), len(out.HalfEdges))
}
