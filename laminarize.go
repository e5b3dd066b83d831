package terra

import (
	"math"

	"github.com/esimov/terra/utils"
)

// LaminarizeConfig configures the Helmholtz corrector.
type LaminarizeConfig struct {
	Strength      float32 // in [0,1]
	Sigma         float32 // magnitude-blur standard deviation
	MaxIterations int
	Tolerance     float64
}

// DefaultLaminarizeConfig mirrors the Poisson solver's default iteration
// budget.
func DefaultLaminarizeConfig() LaminarizeConfig {
	return LaminarizeConfig{Strength: 0.5, Sigma: 1.5, MaxIterations: 1000, Tolerance: 1e-5}
}

// Laminarize attenuates residual divergence in a normal field so the
// projected-gradient field becomes more laminar.
func Laminarize(n *NormalField, scale float32, cfg LaminarizeConfig) (*NormalField, SolverDiagnostic) {
	w, hgt := n.W, n.H
	count := w * hgt

	fx := make([]float32, count)
	fy := make([]float32, count)
	mag := make([]float32, count)
	dirX := make([]float32, count)
	dirY := make([]float32, count)

	for i, v := range n.N {
		fx[i] = -v.X
		fy[i] = -v.Y
		m := Vec2{fx[i], fy[i]}.Len()
		mag[i] = m
		d := Vec2{fx[i], fy[i]}.Normalize()
		dirX[i], dirY[i] = d.X, d.Y
	}

	fxScaled := make([]float32, count)
	fyScaled := make([]float32, count)
	for i, v := range n.N {
		scaled := Vec3{v.X, v.Y, v.Z * scale}.Normalize()
		fxScaled[i] = -scaled.X
		fyScaled[i] = -scaled.Y
	}

	lapOrig := divergenceField(fx, fy, w, hgt)
	lapTarget := divergenceField(fxScaled, fyScaled, w, hgt)

	rhs := make([]float32, count)
	for i := range rhs {
		rhs[i] = cfg.Strength * (lapOrig[i] - lapTarget[i])
	}

	phi, diag := solveNeumannPoisson(rhs, w, hgt, cfg)

	gradPhiX, gradPhiY := centralGradientField(phi, w, hgt)

	correctedDirX := make([]float32, count)
	correctedDirY := make([]float32, count)
	for i := range correctedDirX {
		d := Vec2{dirX[i] - gradPhiX[i], dirY[i] - gradPhiY[i]}.Normalize()
		correctedDirX[i], correctedDirY[i] = d.X, d.Y
	}

	radius := int(math.Ceil(float64(3 * cfg.Sigma)))
	blurredMag := separableGaussianBlur(mag, w, hgt, cfg.Sigma, radius)

	out := NewNormalField(w, hgt)
	for i := range out.N {
		fpx := correctedDirX[i] * blurredMag[i]
		fpy := correctedDirY[i] * blurredMag[i]
		magSq := fpx*fpx + fpy*fpy
		nz := float32(math.Sqrt(math.Max(0, float64(1-magSq))))
		out.N[i] = Vec3{-fpx, -fpy, nz}.Normalize()
	}

	return out, diag
}

// divergenceField computes div(fx,fy) at every pixel.
func divergenceField(fx, fy []float32, w, hgt int) []float32 {
	out := make([]float32, w*hgt)
	for y := 0; y < hgt; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = Divergence2D(fx, fy, w, hgt, x, y)
		}
	}
	return out
}

// centralGradientField computes the gradient of a scalar field at every
// pixel, clamp-to-border.
func centralGradientField(f []float32, w, hgt int) (gx, gy []float32) {
	gx = make([]float32, w*hgt)
	gy = make([]float32, w*hgt)
	at := func(x, y int) float32 {
		if x < 0 || y < 0 || x >= w || y >= hgt {
			return 0
		}
		return f[y*w+x]
	}
	for y := 0; y < hgt; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			gx[idx] = (at(x+1, y) - at(x-1, y)) * 0.5
			gy[idx] = (at(x, y+1) - at(x, y-1)) * 0.5
		}
	}
	return
}

// solveNeumannPoisson solves grad^2 phi = rhs with mirror-reflection
// (Neumann) boundary conditions and a zero-mean start, via Gauss-Seidel.
func solveNeumannPoisson(rhs []float32, w, hgt int, cfg LaminarizeConfig) ([]float32, SolverDiagnostic) {
	phi := make([]float32, w*hgt)

	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = 1000
	}
	tol := cfg.Tolerance
	if tol <= 0 {
		tol = 1e-5
	}

	mirror := func(v, n int) int { return mirrorInt(v, n) }
	at := func(x, y int) float32 {
		return phi[mirror(y, hgt)*w+mirror(x, w)]
	}

	var iterUsed int
	converged := false
	for iter := 0; iter < maxIter; iter++ {
		var maxChange float32
		for y := 0; y < hgt; y++ {
			for x := 0; x < w; x++ {
				idx := y*w + x
				neighbors := at(x-1, y) + at(x+1, y) + at(x, y-1) + at(x, y+1)
				newVal := (neighbors - rhs[idx]) * 0.25
				change := utils.Abs(newVal - phi[idx])
				if change > maxChange {
					maxChange = change
				}
				phi[idx] = newVal
			}
		}
		iterUsed = iter + 1
		if maxChange < tol {
			converged = true
			break
		}
	}
	return phi, SolverDiagnostic{IterationsUsed: iterUsed, Converged: converged}
}

// separableGaussianBlur convolves f (a w*h scalar field) with a 1D Gaussian
// kernel of the given sigma along x then y, using clamp-to-border reads.
// FFT/Gaussian blur are treated as textbook primitives; this
// is the direct-convolution implementation used where a full FFT pipeline
// is unnecessary.
func separableGaussianBlur(f []float32, w, hgt int, sigma float32, radius int) []float32 {
	if radius <= 0 || sigma <= 0 {
		out := make([]float32, len(f))
		copy(out, f)
		return out
	}
	kernel := make([]float32, 2*radius+1)
	var sum float32
	for i := -radius; i <= radius; i++ {
		v := float32(math.Exp(-float64(i*i) / (2 * float64(sigma) * float64(sigma))))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	tmp := make([]float32, w*hgt)
	for y := 0; y < hgt; y++ {
		for x := 0; x < w; x++ {
			var acc float32
			for k := -radius; k <= radius; k++ {
				xx := clampInt(x+k, 0, w-1)
				acc += f[y*w+xx] * kernel[k+radius]
			}
			tmp[y*w+x] = acc
		}
	}
	out := make([]float32, w*hgt)
	for y := 0; y < hgt; y++ {
		for x := 0; x < w; x++ {
			var acc float32
			for k := -radius; k <= radius; k++ {
				yy := clampInt(y+k, 0, hgt-1)
				acc += tmp[yy*w+x] * kernel[k+radius]
			}
			out[y*w+x] = acc
		}
	}
	return out
}
