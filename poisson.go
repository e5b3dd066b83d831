package terra

import (
	"math"

	"github.com/esimov/terra/utils"
)

// PoissonConfig configures the constrained Poisson solver.
type PoissonConfig struct {
	MaxIterations int
	Tolerance     float64
	ZeroThreshold float32
}

// DefaultPoissonConfig returns the solver defaults:
// 1000 iterations, tolerance 1e-5.
func DefaultPoissonConfig() PoissonConfig {
	return PoissonConfig{MaxIterations: 1000, Tolerance: 1e-5, ZeroThreshold: ZeroThreshold}
}

// normalsToLaplacian derives the target Laplacian field from a target
// normal field: L = d(gx)/dx + d(gy)/dy where g = (-nx/nz, -ny/nz), with a
// small-epsilon guard on nz.
func normalsToLaplacian(normals *PlanarNormalField) []float32 {
	w, hgt := normals.W, normals.H
	n := w * hgt
	gx := make([]float32, n)
	gy := make([]float32, n)

	const eps = 1e-6
	for i := 0; i < n; i++ {
		nz := normals.Nz[i]
		if utils.Abs(nz) < eps {
			continue // near-zero nz substitutes zero gradient
		}
		gx[i] = -normals.Nx[i] / nz
		gy[i] = -normals.Ny[i] / nz
	}

	lap := make([]float32, n)
	for y := 0; y < hgt; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			var dgxdx, dgydy float32
			switch {
			case x == 0:
				dgxdx = gx[idx+1] - gx[idx]
			case x == w-1:
				dgxdx = gx[idx] - gx[idx-1]
			default:
				dgxdx = (gx[idx+1] - gx[idx-1]) * 0.5
			}
			switch {
			case y == 0:
				dgydy = gy[idx+w] - gy[idx]
			case y == hgt-1:
				dgydy = gy[idx] - gy[idx-w]
			default:
				dgydy = (gy[idx+w] - gy[idx-w]) * 0.5
			}
			lap[idx] = dgxdx + dgydy
		}
	}
	return lap
}

// SolvePoisson reconstructs heights from a target normal field subject to
// Dirichlet (zero) and positivity constraints. original is
// the pre-lift height field supplying both the warm start and the
// Dirichlet mask (original(p) <= zeroThreshold marks p as no-data).
func SolvePoisson(original *HeightField, target *NormalField, cfg PoissonConfig) (*HeightField, SolverDiagnostic) {
	w, hgt := original.W, original.H
	n := w * hgt

	laplacian := normalsToLaplacian(target.ToPlanar())

	mask := make([]bool, n)
	for i, v := range original.Pix {
		mask[i] = v <= cfg.ZeroThreshold
	}

	result := original.Clone()
	for i := range result.Pix {
		if mask[i] {
			result.Pix[i] = 0
		}
	}

	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = 1000
	}
	tol := cfg.Tolerance
	if tol <= 0 {
		tol = 1e-5
	}
	eps := cfg.ZeroThreshold
	if eps <= 0 {
		eps = ZeroThreshold
	}

	var iterUsed int
	var residual float64
	converged := false
	for iter := 0; iter < maxIter; iter++ {
		maxChange := gaussSeidelSweep(result.Pix, laplacian, mask, w, hgt, eps)

		// Re-enforce the zero constraint: belt-and-braces, the sweep
		// already skips masked pixels.
		for i := range result.Pix {
			if mask[i] {
				result.Pix[i] = 0
			}
		}

		iterUsed = iter + 1
		if (iterUsed)%250 == 0 || maxChange < tol {
			residual = poissonResidual(result.Pix, laplacian, mask, w, hgt)
		}
		if maxChange < tol {
			converged = true
			break
		}
	}

	return result, SolverDiagnostic{IterationsUsed: iterUsed, FinalResidual: residual, Converged: converged}
}

// gaussSeidelSweep runs one sweep of the constrained solve, returning the
// largest single-pixel change observed. Boundary samples read as zero.
func gaussSeidelSweep(h, laplacian []float32, mask []bool, w, hgt int, eps float32) float32 {
	var maxChange float32
	at := func(x, y int) float32 {
		if x < 0 || y < 0 || x >= w || y >= hgt {
			return 0
		}
		return h[y*w+x]
	}
	for y := 0; y < hgt; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if mask[idx] {
				continue
			}
			neighbors := at(x-1, y) + at(x+1, y) + at(x, y-1) + at(x, y+1)
			newVal := (neighbors - laplacian[idx]) * 0.25
			if newVal < eps {
				newVal = eps
			}
			change := utils.Abs(newVal - h[idx])
			if change > maxChange {
				maxChange = change
			}
			h[idx] = newVal
		}
	}
	return maxChange
}

// poissonResidual computes the RMS residual ||grad^2 h - L||_2 over
// unmasked pixels.
func poissonResidual(h, laplacian []float32, mask []bool, w, hgt int) float64 {
	at := func(x, y int) float32 {
		if x < 0 || y < 0 || x >= w || y >= hgt {
			return 0
		}
		return h[y*w+x]
	}
	var sumSq float64
	var count int
	for y := 0; y < hgt; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if mask[idx] {
				continue
			}
			lapH := at(x-1, y) + at(x+1, y) + at(x, y-1) + at(x, y+1) - 4*h[idx]
			r := float64(lapH - laplacian[idx])
			sumSq += r * r
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(sumSq / float64(count))
}
