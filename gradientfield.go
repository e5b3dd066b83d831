package terra

import "math"

// sobelKernelX and sobelKernelY are the standard 3x3 Sobel derivative
// kernels, applied directly to height samples in place of the
// grayscale-brightness values the image-domain filter convolves.
var (
	sobelKernelX = [3][3]float32{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelKernelY = [3][3]float32{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// GradientDirectionField precomputes the per-pixel unit gradient
// direction g = grad(height)/|grad(height)| of a height field via a 3x3
// Sobel convolution, zero where the field is locally flat. It is the
// precomputed direction input PropagateDijkstra uses to penalize
// cost-path steps that cross isophotes.
func GradientDirectionField(h *HeightField) (gx, gy []float32) {
	w, hgt := h.W, h.H
	gx = make([]float32, w*hgt)
	gy = make([]float32, w*hgt)

	at := func(x, y int) float32 {
		cx, cy := clampInt(x, 0, w-1), clampInt(y, 0, hgt-1)
		return h.At(cx, cy)
	}

	for y := 0; y < hgt; y++ {
		for x := 0; x < w; x++ {
			var sx, sy float32
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := at(x+kx, y+ky)
					sx += v * sobelKernelX[ky+1][kx+1]
					sy += v * sobelKernelY[ky+1][kx+1]
				}
			}
			mag := float32(math.Sqrt(float64(sx*sx + sy*sy)))
			idx := y*w + x
			if mag < 1e-8 {
				continue // flat: leave as the zero vector
			}
			gx[idx] = sx / mag
			gy[idx] = sy / mag
		}
	}
	return gx, gy
}
