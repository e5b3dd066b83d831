package terra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPropagateDijkstra_HorizontalRidgePropagatesHorizontalDirection
// reproduces spec scenario 6: a linearly increasing row-ramp height with a
// single horizontal seed edge centered in the image; the propagated
// direction should be overwhelmingly horizontal.
func TestPropagateDijkstra_HorizontalRidgePropagatesHorizontalDirection(t *testing.T) {
	assert := assert.New(t)

	const w, h = 16, 16
	hf := NewHeightField(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hf.Set(x, y, float32(x)/float32(w-1))
		}
	}

	gradX, gradY := GradientDirectionField(hf)

	midY := h / 2
	seeds := []SeedPixel{
		{X: 0, Y: midY, HalfEdge: 0, Kind: EdgeRidge, Terminal: true, TangentX: 1, TangentY: 0},
		{X: w - 1, Y: midY, HalfEdge: 0, Kind: EdgeRidge, Terminal: true, TangentX: 1, TangentY: 0},
	}
	for x := 1; x < w-1; x++ {
		seeds = append(seeds, SeedPixel{X: x, Y: midY, HalfEdge: 0, Kind: EdgeRidge, TangentX: 1, TangentY: 0})
	}

	assignments := PropagateDijkstra(seeds, hf, gradX, gradY, PassUphill, DefaultDijkstraConfig())

	aligned := 0
	total := 0
	for _, a := range assignments {
		if a.HalfEdge == NoEdge {
			continue
		}
		total++
		dot := absf(a.TangentX*1 + a.TangentY*0)
		if dot > 0.95 {
			aligned++
		}
	}
	assert.Greater(total, 0)
	assert.Greater(float64(aligned)/float64(total), 0.90)
}

func TestPropagateDijkstra_UnreachedPixelsKeepNoEdge(t *testing.T) {
	assert := assert.New(t)

	hf := NewHeightField(4, 4)
	out := PropagateDijkstra(nil, hf, nil, nil, PassUphill, DefaultDijkstraConfig())
	for _, a := range out {
		assert.Equal(NoEdge, a.HalfEdge)
	}
}

func TestRasterizeEdge_Bresenham(t *testing.T) {
	assert := assert.New(t)

	pts := rasterizeEdge(0, 0, 3, 0)
	assert.Equal([][2]int{{0, 0}, {1, 0}, {2, 0}, {3, 0}}, pts)
}
