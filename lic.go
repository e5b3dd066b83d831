package terra

import "math"

// LICConfig tunes Line Integral Convolution.
type LICConfig struct {
	// KernelLength is the base number of integration steps taken in each
	// direction along the streamline.
	KernelLength int
	// StepSize is the arc-length advanced per integration step, in pixels.
	StepSize float32
	// AdaptiveMinAniso below which KernelLength is shrunk, shortening the
	// streak over weakly directional (near-isotropic) regions.
	AdaptiveMinAniso float32
}

// DefaultLICConfig matches the engine's reference tuning.
func DefaultLICConfig() LICConfig {
	return LICConfig{KernelLength: 20, StepSize: 1.0, AdaptiveMinAniso: 0.3}
}

// ComputeLIC renders a Line Integral Convolution of noise advected along
// the direction field (dirX,dirY), using a raised-cosine kernel weight
// and a streamline length that adapts to the local anisotropy ratio so
// flat regions don't smear as aggressively as sharply directional ones.
func ComputeLIC(noise []float32, dirX, dirY, anisotropy []float32, w, h int, cfg LICConfig) []float32 {
	out := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			length := cfg.KernelLength
			if anisotropy != nil && idx < len(anisotropy) && anisotropy[idx] < cfg.AdaptiveMinAniso {
				length = int(float32(length) * anisotropy[idx] / cfg.AdaptiveMinAniso)
				if length < 2 {
					length = 2
				}
			}
			out[idx] = licSample(noise, dirX, dirY, w, h, float32(x), float32(y), length, cfg.StepSize)
		}
	}
	return out
}

// licSample integrates a bidirectional streamline from (x0,y0) through the
// direction field, accumulating a raised-cosine-weighted average of the
// noise texture sampled along it.
func licSample(noise, dirX, dirY []float32, w, h int, x0, y0 float32, steps int, stepSize float32) float32 {
	var sum, weightSum float32

	integrate := func(sign float32) {
		x, y := x0, y0
		for i := 0; i <= steps; i++ {
			xi, yi := clampInt(int(x), 0, w-1), clampInt(int(y), 0, h-1)
			idx := yi*w + xi
			weight := raisedCosineWeight(i, steps)
			sum += weight * bilinearSample(noise, w, h, x, y)
			weightSum += weight
			dx, dy := dirX[idx], dirY[idx]
			if dx == 0 && dy == 0 {
				break
			}
			x += sign * dx * stepSize
			y += sign * dy * stepSize
			if x < 0 || y < 0 || x >= float32(w) || y >= float32(h) {
				break
			}
		}
	}

	integrate(1)
	integrate(-1)

	if weightSum < 1e-9 {
		return bilinearSample(noise, w, h, x0, y0)
	}
	return sum / weightSum
}

// raisedCosineWeight returns a raised-cosine (Hann) taper that fades a
// streamline sample toward zero as it nears the kernel's endpoints.
func raisedCosineWeight(i, n int) float32 {
	if n == 0 {
		return 1
	}
	t := float64(i) / float64(n)
	return float32(0.5 * (1 + math.Cos(math.Pi*t)))
}

func bilinearSample(f []float32, w, h int, x, y float32) float32 {
	x0, y0 := int(math.Floor(float64(x))), int(math.Floor(float64(y)))
	x1, y1 := x0+1, y0+1
	fx, fy := x-float32(x0), y-float32(y0)

	at := func(xi, yi int) float32 {
		xi = clampInt(xi, 0, w-1)
		yi = clampInt(yi, 0, h-1)
		return f[yi*w+xi]
	}

	v00, v10 := at(x0, y0), at(x1, y0)
	v01, v11 := at(x0, y1), at(x1, y1)
	top := v00 + (v10-v00)*fx
	bot := v01 + (v11-v01)*fx
	return top + (bot-top)*fy
}
