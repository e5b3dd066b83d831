package terra

import "github.com/esimov/terra/utils"

// DecimateConfig tunes Decimate's Ramer-Douglas-Peucker tolerance.
type DecimateConfig struct {
	Epsilon float32
}

// DefaultDecimateConfig decimates chains to within 1 pixel of their
// original path.
func DefaultDecimateConfig() DecimateConfig {
	return DecimateConfig{Epsilon: 1.0}
}

// RDPSimplify runs the Ramer-Douglas-Peucker algorithm over an open
// polyline and returns the indices of points to keep, always including
// the first and last. Points is assumed non-cyclic; callers that need to
// simplify a closed loop should break it at an arbitrary vertex first.
func RDPSimplify(points []Vec2, epsilon float32) []int {
	n := len(points)
	if n < 3 {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	keep := make([]bool, n)
	keep[0] = true
	keep[n-1] = true
	rdpRecurse(points, 0, n-1, epsilon, keep)

	out := make([]int, 0, n)
	for i, k := range keep {
		if k {
			out = append(out, i)
		}
	}
	return out
}

func rdpRecurse(points []Vec2, lo, hi int, epsilon float32, keep []bool) {
	if hi <= lo+1 {
		return
	}
	a, b := points[lo], points[hi]
	var maxDist float32 = -1
	maxIdx := -1
	for i := lo + 1; i < hi; i++ {
		d := perpendicularDistance(points[i], a, b)
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}
	if maxDist <= epsilon || maxIdx < 0 {
		return
	}
	keep[maxIdx] = true
	rdpRecurse(points, lo, maxIdx, epsilon, keep)
	rdpRecurse(points, maxIdx, hi, epsilon, keep)
}

func perpendicularDistance(p, a, b Vec2) float32 {
	ab := b.Sub(a)
	length := ab.Len()
	if length < 1e-9 {
		return p.Sub(a).Len()
	}
	// |cross(ab, ap)| / |ab|
	ap := p.Sub(a)
	cross := ab.X*ap.Y - ab.Y*ap.X
	return utils.Abs(cross) / length
}

// chain is a maximal run of degree-2 VertexPath vertices bridging two
// non-path endpoints (a junction, extremum, or graph endpoint).
type chain struct {
	halfEdges []int // the half-edge path from the first endpoint to the last
}

// Decimate finds every maximal chain of degree-2 path vertices and
// Ramer-Douglas-Peucker-thins it, rebuilding the mesh from the kept
// edges. The vertex list is carried over unchanged, so a path vertex that
// RDP drops stays in the mesh with no incident edges. Non-path vertices
// (junctions, extrema, endpoints) are never dropped, and a closed loop made
// only of path vertices is broken at an arbitrary vertex of the loop before
// simplification so RDP always sees an open polyline.
func Decimate(m *DCELMesh, cfg DecimateConfig) *DCELMesh {
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = 1.0
	}

	visited := make([]bool, len(m.HalfEdges))
	var keptEdges []UndirectedEdge

	for start := range m.HalfEdges {
		if visited[start] || m.Vertices[m.HalfEdges[start].Origin].Kind != VertexPath {
			continue
		}
		// Walk backward to find the chain's true start (a non-path
		// vertex, or back to start if the chain is a closed loop).
		he := start
		steps := 0
		for m.Vertices[m.HalfEdges[he].Origin].Kind == VertexPath && steps < len(m.HalfEdges) {
			prevHe := m.HalfEdges[he].Prev
			if prevHe == start {
				break // closed loop entirely of path vertices
			}
			he = prevHe
			steps++
		}

		var path []int
		cur := he
		path = append(path, cur)
		visited[cur] = true
		visited[m.HalfEdges[cur].Twin] = true
		for m.Vertices[m.Dest(cur)].Kind == VertexPath {
			nxt := -1
			for _, oe := range m.OutgoingEdges(m.Dest(cur)) {
				if oe != m.HalfEdges[cur].Twin {
					nxt = oe
					break
				}
			}
			if nxt == -1 || visited[nxt] {
				break
			}
			cur = nxt
			path = append(path, cur)
			visited[cur] = true
			visited[m.HalfEdges[cur].Twin] = true
		}

		points := make([]Vec2, len(path)+1)
		points[0] = vertexVec2(m.Vertices[m.HalfEdges[path[0]].Origin])
		for i, he := range path {
			points[i+1] = vertexVec2(m.Vertices[m.Dest(he)])
		}

		kept := RDPSimplify(points, cfg.Epsilon)
		kind := m.HalfEdges[path[0]].Kind
		for i := 0; i < len(kept)-1; i++ {
			v0 := chainVertexID(m, path, kept[i])
			v1 := chainVertexID(m, path, kept[i+1])
			if v0 == v1 {
				continue
			}
			keptEdges = append(keptEdges, UndirectedEdge{V0: v0, V1: v1, Kind: kind})
		}
	}

	// Carry over every non-path-chain edge untouched.
	for he := 0; he < len(m.HalfEdges); he += 2 {
		if visited[he] || visited[m.HalfEdges[he].Twin] {
			continue
		}
		keptEdges = append(keptEdges, UndirectedEdge{
			V0: m.HalfEdges[he].Origin, V1: m.Dest(he), Kind: m.HalfEdges[he].Kind,
		})
	}

	return BuildDCEL(m.Vertices, keptEdges)
}

func vertexVec2(v Vertex) Vec2 { return Vec2{v.X, v.Y} }

// chainVertexID maps an RDP-kept point index (0 = the chain's start
// vertex, i = the destination of path[i-1]) back to a vertex id.
func chainVertexID(m *DCELMesh, path []int, pointIdx int) int {
	if pointIdx == 0 {
		return m.HalfEdges[path[0]].Origin
	}
	return m.Dest(path[pointIdx-1])
}
