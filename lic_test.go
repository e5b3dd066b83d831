package terra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeLIC_ConstantNoiseStaysConstant(t *testing.T) {
	assert := assert.New(t)

	const w, h = 8, 8
	noise := make([]float32, w*h)
	dirX := make([]float32, w*h)
	dirY := make([]float32, w*h)
	for i := range noise {
		noise[i] = 0.75
		dirX[i] = 1
	}

	out := ComputeLIC(noise, dirX, dirY, nil, w, h, DefaultLICConfig())
	for _, v := range out {
		assert.InDelta(0.75, v, 1e-4)
	}
}

func TestComputeLIC_ZeroDirectionFallsBackToPointSample(t *testing.T) {
	assert := assert.New(t)

	const w, h = 4, 4
	noise := []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}
	dirX := make([]float32, w*h)
	dirY := make([]float32, w*h)

	out := ComputeLIC(noise, dirX, dirY, nil, w, h, DefaultLICConfig())
	for i, v := range out {
		assert.InDelta(noise[i], v, 1e-4)
	}
}

func TestRaisedCosineWeight_PeaksAtCenterFadesAtEdges(t *testing.T) {
	assert := assert.New(t)

	assert.InDelta(1.0, raisedCosineWeight(0, 10), 1e-6)
	assert.InDelta(0.0, raisedCosineWeight(10, 10), 1e-6)
	assert.Greater(raisedCosineWeight(5, 10), raisedCosineWeight(9, 10))
}

func TestBilinearSample_ExactAtGridPoints(t *testing.T) {
	assert := assert.New(t)

	f := []float32{0, 1, 2, 3}
	assert.InDelta(0, bilinearSample(f, 2, 2, 0, 0), 1e-6)
	assert.InDelta(3, bilinearSample(f, 2, 2, 1, 1), 1e-6)
	assert.InDelta(2, bilinearSample(f, 2, 2, 1, 0.5), 1e-5)
}
