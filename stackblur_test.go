package terra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStackBlurPlane_ConstantFieldStaysConstant(t *testing.T) {
	assert := assert.New(t)

	hf := NewHeightField(10, 10)
	for i := range hf.Pix {
		hf.Pix[i] = 0.6
	}
	out := stackBlurPlane(hf, 2)
	for _, v := range out.Pix {
		assert.InDelta(0.6, v, 1e-5)
	}
}

func TestStackBlurPlane_NoDataPixelsStayZero(t *testing.T) {
	assert := assert.New(t)

	hf := NewHeightField(6, 6)
	for i := range hf.Pix {
		hf.Pix[i] = 1
	}
	hf.Set(3, 3, 0) // a single no-data hole

	out := stackBlurPlane(hf, 2)
	assert.Equal(float32(0), out.At(3, 3))
}

func TestStackBlurPlane_ZeroRadiusIsIdentity(t *testing.T) {
	assert := assert.New(t)

	hf := quadraticBowl(5, 5, 1, 0, 1)
	out := stackBlurPlane(hf, 0)
	assert.Equal(hf.Pix, out.Pix)
}
