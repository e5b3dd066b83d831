package terra

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantizeHeightField_ClampsToByteRange(t *testing.T) {
	assert := assert.New(t)

	hf := NewHeightField(3, 1)
	hf.Set(0, 0, -1)
	hf.Set(1, 0, 0.5)
	hf.Set(2, 0, 5)

	out := QuantizeHeightField(hf)
	assert.Equal(uint8(0), out[0])
	assert.Equal(uint8(127), out[1])
	assert.Equal(uint8(255), out[2])
}

func TestQuantizeDivergence_ClampsToInt16Range(t *testing.T) {
	assert := assert.New(t)

	out := QuantizeDivergence([]float32{-1000, 0, 1000})
	assert.Equal(int16(-32768), out[0])
	assert.Equal(int16(0), out[1])
	assert.Equal(int16(32767), out[2])
}

func TestCompositeGrid_LaysTilesSideBySide(t *testing.T) {
	assert := assert.New(t)

	tileA := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	tileB := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	out := CompositeGrid([]*image.NRGBA{tileA, tileB}, 1)

	assert.Equal(2*2+1, out.Bounds().Dx())
	assert.Equal(2, out.Bounds().Dy())
}

func TestCompositeGrid_EmptyInputReturnsZeroSize(t *testing.T) {
	assert := assert.New(t)

	out := CompositeGrid(nil, 4)
	assert.Equal(0, out.Bounds().Dx())
}
