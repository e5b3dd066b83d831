package terra

import "github.com/esimov/terra/utils"

// SimplifyConfig tunes Simplify's tiny-feature collapse.
type SimplifyConfig struct {
	// MinArea is the smallest |signed area| a closed feature may have
	// before its boundary vertices are merged into one.
	MinArea float32
}

// DefaultSimplifyConfig collapses faces smaller than 4 square pixels,
// about the footprint of a single grid cell.
func DefaultSimplifyConfig() SimplifyConfig {
	return SimplifyConfig{MinArea: 4}
}

// Simplify collapses every closed feature smaller than cfg.MinArea by
// merging all of its boundary vertices into one, taking the merged
// vertex's position as the centroid and its kind as the highest-priority
// kind among the collapsed set (Maximum and Minimum outrank Junction,
// which outranks Endpoint and Path). The mesh is rebuilt from the
// resulting vertex/edge set via BuildDCEL.
func Simplify(m *DCELMesh, cfg SimplifyConfig) *DCELMesh {
	n := len(m.Vertices)
	uf := make([]int, n)
	for i := range uf {
		uf[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for uf[i] != i {
			uf[i] = uf[uf[i]]
			i = uf[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		uf[ra] = rb
	}

	for _, f := range m.Features {
		if f.Kind != FeatureClosed {
			continue
		}
		if utils.Abs(f.AreaSigned) >= cfg.MinArea {
			continue
		}
		he := f.FirstEdge
		first := m.HalfEdges[he].Origin
		for i := 0; i < f.EdgeCount; i++ {
			union(first, m.HalfEdges[he].Origin)
			he = m.HalfEdges[he].Next
		}
	}

	groups := make(map[int][]int)
	for i := 0; i < n; i++ {
		r := find(i)
		groups[r] = append(groups[r], i)
	}

	newIndex := make([]int, n)
	var mergedVertices []Vertex
	for _, members := range groups {
		if len(members) == 1 {
			newIndex[members[0]] = len(mergedVertices)
			mergedVertices = append(mergedVertices, m.Vertices[members[0]])
			continue
		}
		var sx, sy, sh, sd float32
		bestKind := m.Vertices[members[0]].Kind
		for _, v := range members {
			vert := m.Vertices[v]
			sx += vert.X
			sy += vert.Y
			sh += vert.Height
			sd += vert.Divergence
			if vertexKindPriority(vert.Kind) < vertexKindPriority(bestKind) {
				bestKind = vert.Kind
			}
		}
		count := float32(len(members))
		merged := Vertex{
			X: sx / count, Y: sy / count,
			Height: sh / count, Divergence: sd / count,
			Kind: bestKind,
		}
		idx := len(mergedVertices)
		mergedVertices = append(mergedVertices, merged)
		for _, v := range members {
			newIndex[v] = idx
		}
	}

	seen := make(map[[2]int]bool)
	var edges []UndirectedEdge
	for he := 0; he < len(m.HalfEdges); he += 2 {
		v0 := newIndex[m.HalfEdges[he].Origin]
		v1 := newIndex[m.Dest(he)]
		if v0 == v1 {
			continue // collapsed to a self-loop inside a merged cluster
		}
		key := [2]int{v0, v1}
		if v0 > v1 {
			key = [2]int{v1, v0}
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		edges = append(edges, UndirectedEdge{V0: v0, V1: v1, Kind: m.HalfEdges[he].Kind})
	}

	return BuildDCEL(mergedVertices, edges)
}
