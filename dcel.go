package terra

import (
	"math"
	"sort"

	"github.com/esimov/terra/utils"
)

// VertexKind classifies a DCEL vertex.
type VertexKind uint8

const (
	VertexMaximum VertexKind = iota
	VertexMinimum
	VertexJunction
	VertexEndpoint
	VertexPath
)

// vertexKindPriority expresses the "most important kind wins" ordering
// used when simplify collapses several vertices into one
// (Maximum < Minimum < Junction < Endpoint < Path).
func vertexKindPriority(k VertexKind) int {
	switch k {
	case VertexMaximum:
		return 0
	case VertexMinimum:
		return 1
	case VertexJunction:
		return 2
	case VertexEndpoint:
		return 3
	default: // VertexPath
		return 4
	}
}

// EdgeKind distinguishes ridge from valley half-edges.
type EdgeKind uint8

const (
	EdgeRidge EdgeKind = iota
	EdgeValley
)

// FeatureKind distinguishes closed faces from open (boundary/dangling)
// features.
type FeatureKind uint8

const (
	FeatureClosed FeatureKind = iota
	FeatureOpen
)

// NoEdge / NoVertex / NoFace are the sentinel "absence" indices used
// throughout the DCEL,-1 convention.
const (
	NoEdge   = -1
	NoVertex = -1
	// InfiniteFace tags half-edges belonging to the removed infinite face.
	InfiniteFace = -2
	// NoFace marks a face that hasn't been assigned yet.
	NoFace = -1
)

// Vertex is a DCEL vertex.
type Vertex struct {
	X, Y             float32
	Height           float32
	Divergence       float32
	Kind             VertexKind
	Outgoing         int // HalfEdgeId, or NoEdge
}

// HalfEdge is one oriented half of an undirected DCEL edge.
type HalfEdge struct {
	Origin             int // VertexId
	Twin, Next, Prev   int // HalfEdgeId, or NoEdge
	Face               int // FaceId, InfiniteFace, or NoFace
	Kind               EdgeKind
	TangentX, TangentY float32
	Energy             float32
	Length             float32
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	MinX, MinY, MaxX, MaxY float32
}

func (b AABB) contains(o AABB) bool {
	return b.MinX <= o.MinX && b.MinY <= o.MinY && b.MaxX >= o.MaxX && b.MaxY >= o.MaxY
}

// Feature is a connected DCEL face.
type Feature struct {
	Kind       FeatureKind
	FirstEdge  int
	EdgeCount  int
	Parent     int // FeatureId, or NoFace
	BBox       AABB
	AreaSigned float32
}

// UndirectedEdge is the DCEL-build construction intermediate: a single
// edge between two vertices, tagged with the ridge/valley kind it will
// carry once split into a half-edge pair.
type UndirectedEdge struct {
	V0, V1 int
	Kind   EdgeKind
}

// DCELMesh is the doubly-connected edge list produced by Build and
// transformed by Simplify/Decimate. Indices (not pointers) cross-reference
// the three parallel slices; rebuilds construct a fresh mesh rather than
// mutating in place.
type DCELMesh struct {
	Vertices  []Vertex
	HalfEdges []HalfEdge
	Features  []Feature
}

// Dest returns the destination vertex id of half-edge he.
func (m *DCELMesh) Dest(he int) int {
	return m.HalfEdges[m.HalfEdges[he].Twin].Origin
}

// NextAroundVertex returns the next half-edge in CCW rotation order around
// he's origin vertex.
func (m *DCELMesh) NextAroundVertex(he int) int {
	return m.HalfEdges[m.HalfEdges[he].Twin].Next
}

// BuildDCEL constructs a DCELMesh from a vertex list and an undirected-edge
// list. Vertices must already carry their geometric
// and scalar attributes; Outgoing is filled in by this function.
func BuildDCEL(vertices []Vertex, edges []UndirectedEdge) *DCELMesh {
	verts := make([]Vertex, len(vertices))
	copy(verts, vertices)
	for i := range verts {
		verts[i].Outgoing = NoEdge
	}

	halfEdges := make([]HalfEdge, 0, len(edges)*2)
	outgoingByVertex := make([][]int, len(verts))

	for _, e := range edges {
		v0, v1 := verts[e.V0], verts[e.V1]
		dx, dy := v1.X-v0.X, v1.Y-v0.Y
		length := float32(math.Sqrt(float64(dx*dx + dy*dy)))
		var tx, ty float32
		if length > 1e-12 {
			tx, ty = dx/length, dy/length
		}

		h0 := len(halfEdges)
		h1 := h0 + 1
		halfEdges = append(halfEdges,
			HalfEdge{Origin: e.V0, Twin: h1, Next: NoEdge, Prev: NoEdge, Face: NoFace, Kind: e.Kind, TangentX: tx, TangentY: ty, Length: length},
			HalfEdge{Origin: e.V1, Twin: h0, Next: NoEdge, Prev: NoEdge, Face: NoFace, Kind: e.Kind, TangentX: -tx, TangentY: -ty, Length: length},
		)
		outgoingByVertex[e.V0] = append(outgoingByVertex[e.V0], h0)
		outgoingByVertex[e.V1] = append(outgoingByVertex[e.V1], h1)
	}

	mesh := &DCELMesh{Vertices: verts, HalfEdges: halfEdges}

	// Sort each vertex's outgoing half-edges by atan2(tangent) ascending
	// (CCW), then link next/prev across twins.
	for v, outs := range outgoingByVertex {
		if len(outs) == 0 {
			continue
		}
		sort.Slice(outs, func(i, j int) bool {
			hi, hj := halfEdges[outs[i]], halfEdges[outs[j]]
			return math.Atan2(float64(hi.TangentY), float64(hi.TangentX)) <
				math.Atan2(float64(hj.TangentY), float64(hj.TangentX))
		})
		for i, he := range outs {
			next := outs[(i+1)%len(outs)]
			twin := halfEdges[he].Twin
			halfEdges[twin].Next = next
			halfEdges[next].Prev = twin
		}
		mesh.Vertices[v].Outgoing = outs[0]
	}

	mesh.discoverFeatures()
	return mesh
}

// discoverFeatures walks next-cycles from every unvisited half-edge,
// classifying each closed cycle as a face and each broken (malformed)
// cycle as an open feature, then removes the infinite face. A next-chain
// exceeding the half-edge count is
// treated as malformed and recorded as an open feature rather than
// looping forever.
func (m *DCELMesh) discoverFeatures() {
	n := len(m.HalfEdges)
	visited := make([]bool, n)
	var features []Feature

	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}
		cycle := []int{start}
		visited[start] = true
		cur := m.HalfEdges[start].Next
		closed := true
		for cur != start {
			if cur == NoEdge || len(cycle) > n {
				closed = false
				break
			}
			if visited[cur] {
				// Merged into an already-visited cycle; shouldn't
				// normally happen for a consistent DCEL, but guard
				// against malformed input
				closed = false
				break
			}
			visited[cur] = true
			cycle = append(cycle, cur)
			cur = m.HalfEdges[cur].Next
		}

		fid := len(features)
		kind := FeatureClosed
		if !closed {
			kind = FeatureOpen
		}
		bbox, area := faceGeometry(m, cycle)
		features = append(features, Feature{
			Kind: kind, FirstEdge: start, EdgeCount: len(cycle),
			Parent: NoFace, BBox: bbox, AreaSigned: area,
		})
		for _, he := range cycle {
			m.HalfEdges[he].Face = fid
		}
	}

	// The face with the most-negative signed area is the infinite face;
	// exclude it from the feature list and tag its half-edges.
	infIdx := -1
	for i, f := range features {
		if f.Kind != FeatureClosed {
			continue
		}
		if infIdx == -1 || f.AreaSigned < features[infIdx].AreaSigned {
			infIdx = i
		}
	}

	if infIdx != -1 && features[infIdx].AreaSigned < 0 {
		for he := range m.HalfEdges {
			if m.HalfEdges[he].Face == infIdx {
				m.HalfEdges[he].Face = InfiniteFace
			}
		}
		kept := make([]Feature, 0, len(features)-1)
		remap := make(map[int]int, len(features))
		for i, f := range features {
			if i == infIdx {
				continue
			}
			remap[i] = len(kept)
			kept = append(kept, f)
		}
		for he := range m.HalfEdges {
			if f := m.HalfEdges[he].Face; f >= 0 {
				m.HalfEdges[he].Face = remap[f]
			}
		}
		features = kept
	}

	m.Features = features
	m.assignParents()
}

// faceGeometry computes the AABB and shoelace signed area of a half-edge
// cycle. BuildDCEL's linking walks a bounded face's cycle clockwise in
// x-right/y-up terms (counter-clockwise on screen, where y grows down), so
// the shoelace sum is negated: bounded faces come out positive and the
// infinite face negative.
func faceGeometry(m *DCELMesh, cycle []int) (AABB, float32) {
	bbox := AABB{MinX: math.MaxFloat32, MinY: math.MaxFloat32, MaxX: -math.MaxFloat32, MaxY: -math.MaxFloat32}
	var area float32
	for _, he := range cycle {
		v0 := m.Vertices[m.HalfEdges[he].Origin]
		v1 := m.Vertices[m.Dest(he)]
		if v0.X < bbox.MinX {
			bbox.MinX = v0.X
		}
		if v0.Y < bbox.MinY {
			bbox.MinY = v0.Y
		}
		if v0.X > bbox.MaxX {
			bbox.MaxX = v0.X
		}
		if v0.Y > bbox.MaxY {
			bbox.MaxY = v0.Y
		}
		area += v1.X*v0.Y - v0.X*v1.Y
	}
	return bbox, area * 0.5
}

// assignParents assigns each feature the smallest closed feature that
// encloses it: for each feature, examine the faces across the twin of
// each boundary half-edge
// and pick the smallest-area enclosing candidate as parent.
func (m *DCELMesh) assignParents() {
	for fid := range m.Features {
		f := m.Features[fid]
		best := NoFace
		var bestArea float32
		he := f.FirstEdge
		for i := 0; i < f.EdgeCount; i++ {
			twinFace := m.HalfEdges[m.HalfEdges[he].Twin].Face
			if twinFace >= 0 && twinFace != fid {
				cand := m.Features[twinFace]
				if cand.Kind == FeatureClosed && cand.BBox.contains(f.BBox) && utils.Abs(cand.AreaSigned) > utils.Abs(f.AreaSigned) {
					if best == NoFace || utils.Abs(cand.AreaSigned) < bestArea {
						best = twinFace
						bestArea = utils.Abs(cand.AreaSigned)
					}
				}
			}
			he = m.HalfEdges[he].Next
		}
		m.Features[fid].Parent = best
	}
}

// Degree returns the number of distinct outgoing half-edges from vertex v.
func (m *DCELMesh) Degree(v int) int {
	start := m.Vertices[v].Outgoing
	if start == NoEdge {
		return 0
	}
	count := 1
	cur := m.NextAroundVertex(start)
	for cur != start {
		count++
		cur = m.NextAroundVertex(cur)
	}
	return count
}

// OutgoingEdges returns all half-edges originating at vertex v, in CCW
// order.
func (m *DCELMesh) OutgoingEdges(v int) []int {
	start := m.Vertices[v].Outgoing
	if start == NoEdge {
		return nil
	}
	out := []int{start}
	cur := m.NextAroundVertex(start)
	for cur != start {
		out = append(out, cur)
		cur = m.NextAroundVertex(cur)
	}
	return out
}
