package terra

import (
	"math"

	"github.com/esimov/terra/utils"
)

// EnergyConfig tunes the ridge/valley energy propagation pass.
type EnergyConfig struct {
	// RidgeSeedFactor and ValleySeedFactor scale the length contribution
	// each edge adds to its chain's accumulating energy; valleys carry a
	// weaker signal than ridges by default.
	RidgeSeedFactor  float32
	ValleySeedFactor float32
	// AlignThreshold is the minimum |cos(angle)| between a ridge and
	// valley tangent for the ridge-to-valley transfer step to apply.
	AlignThreshold float32
}

// DefaultEnergyConfig matches the engine's reference tuning.
func DefaultEnergyConfig() EnergyConfig {
	return EnergyConfig{RidgeSeedFactor: 1.0, ValleySeedFactor: 0.3, AlignThreshold: 0.3}
}

func (cfg EnergyConfig) seedFactor(k EdgeKind) float32 {
	if k == EdgeRidge {
		return cfg.RidgeSeedFactor
	}
	return cfg.ValleySeedFactor
}

// chainContinuation returns the half-edge that continues he's same-kind
// chain past its destination vertex: the other outgoing half-edge of
// matching kind at dest(he), if there is exactly one. Path vertices have
// degree 2, so "the other one" is unambiguous; any other vertex kind (a
// junction, extremum, or endpoint) terminates the chain.
func chainContinuation(m *DCELMesh, he int) (int, bool) {
	dest := m.Dest(he)
	if m.Vertices[dest].Kind != VertexPath {
		return 0, false
	}
	kind := m.HalfEdges[he].Kind
	twin := m.HalfEdges[he].Twin
	var found int = -1
	for _, out := range m.OutgoingEdges(dest) {
		if out == twin || m.HalfEdges[out].Kind != kind {
			continue
		}
		if found != -1 {
			return 0, false // branching: not a simple chain
		}
		found = out
	}
	if found == -1 {
		return 0, false
	}
	return found, true
}

// chainWalk walks he's same-kind chain forward via chainContinuation,
// returning the ordered half-edge sequence starting at he.
func chainWalk(m *DCELMesh, he int) []int {
	chain := []int{he}
	cur := he
	seen := map[int]bool{he: true}
	for {
		next, ok := chainContinuation(m, cur)
		if !ok || seen[next] {
			break
		}
		chain = append(chain, next)
		seen[next] = true
		cur = next
	}
	return chain
}

// PropagateEnergy implements the chain energy sweep: each maximal chain
// of same-kind edges is swept forward and backward, accumulating energy
// that decays with tangent misalignment between consecutive edges and
// grows with each edge's own length; the canonical (higher-energy)
// half-edge of each pair keeps the result, its twin is zeroed. A
// ridge-to-valley transfer pass then computes, per valley half-edge, the
// extra seed energy nearby well-aligned ridge energy contributes, and a
// final re-sweep folds that transferred seed into the valley chains'
// own accumulation instead of recomputing from scratch.
func PropagateEnergy(m *DCELMesh, cfg EnergyConfig) {
	sweepChains(m, cfg, nil)
	extra := computeRidgeToValleyTransfer(m, cfg)
	sweepChains(m, cfg, extra)
}

// sweepChains runs the forward/backward chain accumulation described by
// PropagateEnergy. extraSeed, if non-nil, adds a per-half-edge seed bias
// on top of length*seedFactor -- this is how a prior transfer pass's
// contribution survives a re-sweep instead of being overwritten by it.
func sweepChains(m *DCELMesh, cfg EnergyConfig, extraSeed []float32) {
	visited := make([]bool, len(m.HalfEdges))
	for start := range m.HalfEdges {
		if visited[start] {
			continue
		}
		// Only begin a chain at a non-continuation point, so each chain
		// is swept exactly once from its true start.
		origin := m.HalfEdges[start].Origin
		if m.Vertices[origin].Kind == VertexPath {
			if _, ok := chainContinuation(m, m.HalfEdges[start].Twin); ok {
				continue
			}
		}

		chain := chainWalk(m, start)
		for _, he := range chain {
			visited[he] = true
		}

		seedOf := func(he int) float32 {
			e := m.HalfEdges[he]
			seed := e.Length * cfg.seedFactor(e.Kind)
			if extraSeed != nil {
				seed += extraSeed[he]
			}
			return seed
		}

		fwd := make([]float32, len(chain))
		for i, he := range chain {
			e := m.HalfEdges[he]
			seed := seedOf(he)
			if i == 0 {
				fwd[i] = seed
				continue
			}
			prev := m.HalfEdges[chain[i-1]]
			align := prev.TangentX*e.TangentX + prev.TangentY*e.TangentY
			if align < 0 {
				align = 0
			}
			fwd[i] = align*fwd[i-1] + seed
		}

		bwd := make([]float32, len(chain))
		for i := len(chain) - 1; i >= 0; i-- {
			he := chain[i]
			e := m.HalfEdges[he]
			seed := seedOf(he)
			if i == len(chain)-1 {
				bwd[i] = seed
				continue
			}
			next := m.HalfEdges[chain[i+1]]
			align := next.TangentX*e.TangentX + next.TangentY*e.TangentY
			if align < 0 {
				align = 0
			}
			bwd[i] = align*bwd[i+1] + seed
		}

		for i, he := range chain {
			energy := fwd[i]
			if bwd[i] > energy {
				energy = bwd[i]
			}
			m.HalfEdges[he].Energy = energy
			m.HalfEdges[m.HalfEdges[he].Twin].Energy = 0
		}
	}
}

// computeRidgeToValleyTransfer finds, for each valley edge, the nearest
// well-aligned ridge edge and returns the per-half-edge seed boost the
// next sweepChains call should add before re-running the chain
// accumulation, scaled by alignment and inverse distance and credited to
// whichever valley half-edge is sign-aligned with the ridge tangent.
// Returning a seed bias rather than writing Energy directly is what lets
// the transferred contribution survive the re-sweep instead of being
// overwritten by it.
func computeRidgeToValleyTransfer(m *DCELMesh, cfg EnergyConfig) []float32 {
	extra := make([]float32, len(m.HalfEdges))

	var ridgeMids []struct {
		x, y, tx, ty, energy float32
	}
	for he, e := range m.HalfEdges {
		if e.Kind != EdgeRidge {
			continue
		}
		v0 := m.Vertices[e.Origin]
		v1 := m.Vertices[m.Dest(he)]
		ridgeMids = append(ridgeMids, struct {
			x, y, tx, ty, energy float32
		}{(v0.X + v1.X) * 0.5, (v0.Y + v1.Y) * 0.5, e.TangentX, e.TangentY, e.Energy})
	}
	if len(ridgeMids) == 0 {
		return extra
	}

	for he, e := range m.HalfEdges {
		if e.Kind != EdgeValley {
			continue
		}
		v0 := m.Vertices[e.Origin]
		v1 := m.Vertices[m.Dest(he)]
		mx, my := (v0.X+v1.X)*0.5, (v0.Y+v1.Y)*0.5

		bestDist := float32(-1)
		var bestAlign, bestEnergy float32
		for _, r := range ridgeMids {
			dx, dy := mx-r.x, my-r.y
			dist := dx*dx + dy*dy
			align := e.TangentX*r.tx + e.TangentY*r.ty
			if utils.Abs(align) < cfg.AlignThreshold {
				continue
			}
			if bestDist < 0 || dist < bestDist {
				bestDist = dist
				bestAlign = align
				bestEnergy = r.energy
			}
		}
		if bestDist < 0 {
			continue
		}
		d := float32(math.Sqrt(float64(bestDist)))
		transfer := bestEnergy * utils.Abs(bestAlign) / (d + 1)
		if bestAlign >= 0 {
			extra[he] += transfer
		} else {
			extra[e.Twin] += transfer
		}
	}
	return extra
}

// NormalizeEnergy rescales every half-edge's energy into [0,1] using the
// mesh-wide maximum, leaving an all-zero mesh untouched.
func NormalizeEnergy(m *DCELMesh) {
	var maxE float32
	for _, he := range m.HalfEdges {
		if he.Energy > maxE {
			maxE = he.Energy
		}
	}
	if maxE < 1e-12 {
		return
	}
	for i := range m.HalfEdges {
		m.HalfEdges[i].Energy /= maxE
	}
}

// alignmentZScore computes the Fisher z-score of the mean |cos(angle)|
// observed across a set of chain-alignment samples against the null
// hypothesis of uniformly random tangent directions (E[|cos|]=2/pi,
// Var=1/2-4/pi^2), used by the debug SVG exporter to flag chains whose
// alignment is unlikely to have arisen by chance.
func alignmentZScore(meanAbsCos float32, sampleCount int) float32 {
	if sampleCount == 0 {
		return 0
	}
	const mean = float32(0.6366198)     // 2/pi
	const variance = float32(0.0947153) // 1/2 - 4/pi^2
	se := float32(math.Sqrt(float64(variance) / float64(sampleCount)))
	if se < 1e-12 {
		return 0
	}
	return (meanAbsCos - mean) / se
}
