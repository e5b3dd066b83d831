package terra

import "github.com/esimov/terra/utils"

// RidgeMeshConfig bundles the per-stage configs the ridge-mesh pipeline
// threads through Morse extraction, skeletonization, DCEL simplification
// and decimation, and energy propagation.
type RidgeMeshConfig struct {
	Skeleton SkeletonConfig
	Simplify SimplifyConfig
	Decimate DecimateConfig
	Energy   EnergyConfig
}

// DefaultRidgeMeshConfig matches the engine's reference tuning for every
// stage of the pipeline.
func DefaultRidgeMeshConfig() RidgeMeshConfig {
	return RidgeMeshConfig{
		Skeleton: DefaultSkeletonConfig(),
		Simplify: DefaultSimplifyConfig(),
		Decimate: DefaultDecimateConfig(),
		Energy:   DefaultEnergyConfig(),
	}
}

// ComputeDivergenceField computes the signed divergence of the projected
// downhill flow field (-nx,-ny) derived from h's surface normals,
// normalized into [-1,+1] by its peak magnitude: positive marks a valley
// (converging flow), negative a ridge (diverging flow).
func ComputeDivergenceField(h *HeightField) []float32 {
	normals := HeightToNormals(h, 1.0)
	w, hgt := h.W, h.H
	fx := make([]float32, w*hgt)
	fy := make([]float32, w*hgt)
	for i, v := range normals.N {
		fx[i], fy[i] = -v.X, -v.Y
	}

	div := make([]float32, w*hgt)
	var maxAbs float32
	for y := 0; y < hgt; y++ {
		for x := 0; x < w; x++ {
			d := Divergence2D(fx, fy, w, hgt, x, y)
			div[y*w+x] = d
			if a := utils.Abs(d); a > maxAbs {
				maxAbs = a
			}
		}
	}
	if maxAbs > 1e-12 {
		for i := range div {
			div[i] /= maxAbs
		}
	}
	return div
}

// RidgeMesh is the fully assembled geometry-engine output: the decimated
// DCEL mesh with its propagated edge energies, the divergence field the
// skeleton was classified against, the underlying Morse complex, and its
// traced separatrices (the viewer export's raw material).
type RidgeMesh struct {
	Mesh         *DCELMesh
	Divergence   []float32
	Morse        *MorseComplex
	Separatrices []Separatrix
}

// BuildRidgeMesh runs the full geometry pipeline over a height field:
// Morse complex extraction, divergence-guided skeletonization, DCEL
// construction, topology simplification and polyline decimation, and
// finally edge energy propagation. This is the orchestrator the
// EffectDijkstra erosion effect and the ridge-mesh debug exports drive.
func BuildRidgeMesh(h *HeightField, cfg RidgeMeshConfig) *RidgeMesh {
	divergence := ComputeDivergenceField(h)
	mc := BuildMorseComplex(h)
	vertices, edges := BuildSkeletonGraph(h, mc, divergence, cfg.Skeleton)

	mesh := BuildDCEL(vertices, edges)
	mesh = Simplify(mesh, cfg.Simplify)
	mesh = Decimate(mesh, cfg.Decimate)
	PropagateEnergy(mesh, cfg.Energy)
	NormalizeEnergy(mesh)

	return &RidgeMesh{
		Mesh:         mesh,
		Divergence:   divergence,
		Morse:        mc,
		Separatrices: mc.TraceSeparatrices(),
	}
}
