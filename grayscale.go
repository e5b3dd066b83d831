package terra

import (
	"image"
	"image/color"
)

// QuantizeHeightField quantizes a height field to u8, clamping to [0,1]
// before scaling, for embedding in the HTML separatrix viewer.
func QuantizeHeightField(h *HeightField) []uint8 {
	out := make([]uint8, len(h.Pix))
	for i, v := range h.Pix {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		out[i] = uint8(v * 255)
	}
	return out
}

// QuantizeDivergence quantizes a signed divergence field to i16, scaled by
// 1000, for embedding in the HTML separatrix viewer.
func QuantizeDivergence(div []float32) []int16 {
	out := make([]int16, len(div))
	for i, v := range div {
		scaled := v * 1000
		switch {
		case scaled > 32767:
			scaled = 32767
		case scaled < -32768:
			scaled = -32768
		}
		out[i] = int16(scaled)
	}
	return out
}

// CompositeGrid lays a row of debug tiles of identical bounds out
// side-by-side into a single grid composite image, with gap columns of
// opaque white between tiles. ExportGridCompositePNG writes its result to
// disk.
func CompositeGrid(tiles []*image.NRGBA, gap int) *image.NRGBA {
	if len(tiles) == 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	tw, th := tiles[0].Bounds().Dx(), tiles[0].Bounds().Dy()
	w := tw*len(tiles) + gap*(len(tiles)-1)
	dst := image.NewNRGBA(image.Rect(0, 0, w, th))
	for i := range dst.Pix {
		dst.Pix[i] = 0xff
	}

	for i, tile := range tiles {
		ox := i * (tw + gap)
		b := tile.Bounds()
		for y := 0; y < th; y++ {
			for x := 0; x < tw; x++ {
				c := tile.NRGBAAt(b.Min.X+x, b.Min.Y+y)
				dst.SetNRGBA(ox+x, y, c)
			}
		}
	}
	return dst
}

// grayToNRGBA renders a u8 grayscale plane as an opaque NRGBA image.
func grayToNRGBA(gray []uint8, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g := gray[y*w+x]
			dst.SetNRGBA(x, y, color.NRGBA{R: g, G: g, B: g, A: 255})
		}
	}
	return dst
}
