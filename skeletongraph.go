package terra

import "math"

// SkeletonConfig tunes how ridge/valley separatrices are turned into a
// vertex/edge graph ready for BuildDCEL.
type SkeletonConfig struct {
	// ClusterRadius merges critical cells within this pixel distance into
	// a single graph vertex, absorbing the redundant extrema a coarse
	// discrete gradient tends to produce on flat plateaus.
	ClusterRadius float32
	// RDPEpsilon is the Ramer-Douglas-Peucker tolerance, in pixels, used
	// to thin each separatrix polyline before it becomes graph edges.
	RDPEpsilon float32
	// BoundaryAsValley appends the data/no-data boundary (the image frame
	// counts as no-data, as height fields are zero-padded outside their
	// domain) to the graph as valley contour edges.
	BoundaryAsValley bool
}

// DefaultSkeletonConfig returns conservative defaults: a 2px cluster
// radius and 1px RDP tolerance.
func DefaultSkeletonConfig() SkeletonConfig {
	return SkeletonConfig{ClusterRadius: 2, RDPEpsilon: 1.0, BoundaryAsValley: true}
}

// cellPosition returns a cell's representative pixel-space coordinate:
// the vertex itself for a 0-cell, the midpoint for a 1-cell, and the
// centroid for a 2-cell.
func cellPosition(c Cell) Vec2 {
	switch c.Kind {
	case Cell0:
		return Vec2{float32(c.X), float32(c.Y)}
	case Cell1Horiz:
		return Vec2{float32(c.X) + 0.5, float32(c.Y)}
	case Cell1Vert:
		return Vec2{float32(c.X), float32(c.Y) + 0.5}
	default: // Cell2
		return Vec2{float32(c.X) + 0.5, float32(c.Y) + 0.5}
	}
}

// clusterNode is a union-find node for merging nearby critical cells.
type clusterNode struct {
	parent int
	kind   VertexKind
	pos    Vec2
}

func findCluster(nodes []clusterNode, i int) int {
	for nodes[i].parent != i {
		nodes[i].parent = nodes[nodes[i].parent].parent
		i = nodes[i].parent
	}
	return i
}

func unionCluster(nodes []clusterNode, a, b int) {
	ra, rb := findCluster(nodes, a), findCluster(nodes, b)
	if ra == rb {
		return
	}
	// Lower kind priority (more significant kind) survives as the
	// cluster's classification.
	if vertexKindPriority(nodes[rb].kind) < vertexKindPriority(nodes[ra].kind) {
		nodes[ra].parent = rb
	} else {
		nodes[rb].parent = ra
	}
}

func criticalVertexKind(kind CriticalPointKind) VertexKind {
	switch kind {
	case CritMaximum:
		return VertexMaximum
	case CritMinimum:
		return VertexMinimum
	default: // CritSaddle
		return VertexJunction
	}
}

// BuildSkeletonGraph converts a height field's Morse complex into a vertex
// list and undirected-edge list ready for BuildDCEL: critical cells within
// ClusterRadius collapse to a single junction/extremum vertex, each
// separatrix becomes a chain of path vertices thinned by
// Ramer-Douglas-Peucker, and edges are tagged ridge or valley by the sign
// of the divergence sampled at their midpoint.
func BuildSkeletonGraph(h *HeightField, mc *MorseComplex, divergence []float32, cfg SkeletonConfig) ([]Vertex, []UndirectedEdge) {
	if cfg.ClusterRadius <= 0 {
		cfg.ClusterRadius = 1
	}
	if cfg.RDPEpsilon <= 0 {
		cfg.RDPEpsilon = 1.0
	}

	nodes := make([]clusterNode, len(mc.Critical))
	cellToNode := make(map[Cell]int, len(mc.Critical))
	for i, cp := range mc.Critical {
		nodes[i] = clusterNode{parent: i, kind: criticalVertexKind(cp.Kind), pos: cellPosition(cp.Cell)}
		cellToNode[cp.Cell] = i
	}
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			if nodes[i].pos.Sub(nodes[j].pos).Len() <= cfg.ClusterRadius {
				unionCluster(nodes, i, j)
			}
		}
	}

	// Materialize one graph vertex per cluster root.
	clusterVertex := make(map[int]int) // root index -> Vertices index
	var vertices []Vertex
	for i := range nodes {
		root := findCluster(nodes, i)
		if _, ok := clusterVertex[root]; ok {
			continue
		}
		pos := nodes[root].pos
		clusterVertex[root] = len(vertices)
		vertices = append(vertices, Vertex{
			X: pos.X, Y: pos.Y,
			Height: h.At(int(pos.X), int(pos.Y)),
			Kind:   nodes[root].kind,
		})
	}
	vertexOf := func(cellIdx int) int {
		return clusterVertex[findCluster(nodes, cellIdx)]
	}

	var edges []UndirectedEdge
	seps := mc.TraceSeparatrices()
	for _, sep := range seps {
		if len(sep.Cells) == 0 {
			continue
		}
		startCellIdx, startOK := cellToNode[sep.Saddle]
		if !startOK {
			continue
		}
		endCell := sep.Cells[len(sep.Cells)-1]
		endCellIdx, endOK := cellToNode[endCell]
		if !endOK {
			continue
		}

		poly := make([]Vec2, len(sep.Cells))
		for i, c := range sep.Cells {
			poly[i] = cellPosition(c)
		}
		kept := RDPSimplify(poly, cfg.RDPEpsilon)
		if len(kept) < 2 {
			continue
		}

		chain := make([]int, len(kept))
		for i, idx := range kept {
			switch {
			case i == 0:
				chain[i] = vertexOf(startCellIdx)
			case i == len(kept)-1:
				chain[i] = vertexOf(endCellIdx)
			default:
				p := poly[idx]
				chain[i] = len(vertices)
				vertices = append(vertices, Vertex{
					X: p.X, Y: p.Y,
					Height: h.At(int(p.X), int(p.Y)),
					Kind:   VertexPath,
				})
			}
		}

		for i := 0; i < len(chain)-1; i++ {
			v0, v1 := chain[i], chain[i+1]
			if v0 == v1 {
				continue // degenerate zero-length edge
			}
			mx := (vertices[v0].X + vertices[v1].X) * 0.5
			my := (vertices[v0].Y + vertices[v1].Y) * 0.5
			kind := EdgeRidge
			if sampleDivergence(divergence, h.W, h.H, mx, my) > 0 {
				kind = EdgeValley
			}
			edges = append(edges, UndirectedEdge{V0: v0, V1: v1, Kind: kind})
		}
	}

	if cfg.BoundaryAsValley {
		vertices, edges = appendDataBoundary(h, vertices, edges, cfg.RDPEpsilon)
	}

	return mergeDegreeTwoPathVertices(vertices, edges)
}

func sampleDivergence(div []float32, w, h int, x, y float32) float32 {
	if div == nil {
		return 0
	}
	xi := clampInt(int(math.Round(float64(x))), 0, w-1)
	yi := clampInt(int(math.Round(float64(y))), 0, h-1)
	return div[yi*w+xi]
}

// appendDataBoundary chains the data/no-data boundary into polyline
// contours and appends them to the graph as valley edges. A pixel is on
// the boundary when it carries data (height above the zero threshold)
// but has at least one 4-connected neighbor that doesn't (including the
// image frame, implicitly no-data). Boundary pixels are grouped into
// 8-connected components, each walked into an ordered polyline by
// repeated nearest-neighbor selection, then thinned by RDPSimplify
// before becoming a chain of path vertices capped with endpoint
// vertices at both ends.
func appendDataBoundary(h *HeightField, vertices []Vertex, edges []UndirectedEdge, rdpEps float32) ([]Vertex, []UndirectedEdge) {
	w, hgt := h.W, h.H
	isData := func(x, y int) bool {
		if x < 0 || y < 0 || x >= w || y >= hgt {
			return false
		}
		return h.At(x, y) > ZeroThreshold
	}

	type px struct{ x, y int }
	var boundary []px
	idxOf := make(map[px]int)
	for y := 0; y < hgt; y++ {
		for x := 0; x < w; x++ {
			if !isData(x, y) {
				continue
			}
			if !isData(x-1, y) || !isData(x+1, y) || !isData(x, y-1) || !isData(x, y+1) {
				idxOf[px{x, y}] = len(boundary)
				boundary = append(boundary, px{x, y})
			}
		}
	}
	if len(boundary) < 2 {
		return vertices, edges
	}

	parent := make([]int, len(boundary))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}
	offsets := [8][2]int{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}
	for i, p := range boundary {
		for _, o := range offsets {
			if j, ok := idxOf[px{p.x + o[0], p.y + o[1]}]; ok {
				union(i, j)
			}
		}
	}
	comps := make(map[int][]int)
	for i := range boundary {
		r := find(i)
		comps[r] = append(comps[r], i)
	}

	for _, members := range comps {
		if len(members) < 2 {
			continue
		}
		visited := make(map[int]bool, len(members))
		order := []int{members[0]}
		visited[members[0]] = true
		cur := members[0]
		for len(order) < len(members) {
			best, bestDist := -1, 0
			for _, m := range members {
				if visited[m] {
					continue
				}
				dx := boundary[m].x - boundary[cur].x
				dy := boundary[m].y - boundary[cur].y
				d := dx*dx + dy*dy
				if best == -1 || d < bestDist {
					best, bestDist = m, d
				}
			}
			order = append(order, best)
			visited[best] = true
			cur = best
		}

		poly := make([]Vec2, len(order))
		for i, m := range order {
			poly[i] = Vec2{float32(boundary[m].x), float32(boundary[m].y)}
		}
		kept := RDPSimplify(poly, rdpEps)
		if len(kept) < 2 {
			continue
		}

		chain := make([]int, len(kept))
		for i, ki := range kept {
			p := poly[ki]
			kind := VertexPath
			if i == 0 || i == len(kept)-1 {
				kind = VertexEndpoint
			}
			chain[i] = len(vertices)
			vertices = append(vertices, Vertex{
				X: p.X, Y: p.Y,
				Height: h.At(int(p.X), int(p.Y)),
				Kind:   kind,
			})
		}
		for i := 0; i < len(chain)-1; i++ {
			edges = append(edges, UndirectedEdge{V0: chain[i], V1: chain[i+1], Kind: EdgeValley})
		}
	}

	return vertices, edges
}

// mergeDegreeTwoPathVertices collapses VertexPath vertices that carry
// exactly two incident edges by splicing the pair into a single edge,
// eliminating the through-vertices that RDP thinning kept along separatrix
// and boundary chains.
func mergeDegreeTwoPathVertices(vertices []Vertex, edges []UndirectedEdge) ([]Vertex, []UndirectedEdge) {
	adj := make(map[int][]int) // vertex -> edge indices
	for ei, e := range edges {
		adj[e.V0] = append(adj[e.V0], ei)
		adj[e.V1] = append(adj[e.V1], ei)
	}

	removed := make([]bool, len(edges))
	changed := true
	for changed {
		changed = false
		for v, eids := range adj {
			if v >= len(vertices) || vertices[v].Kind != VertexPath {
				continue
			}
			live := eids[:0:0]
			for _, ei := range eids {
				if !removed[ei] {
					live = append(live, ei)
				}
			}
			adj[v] = live
			if len(live) != 2 {
				continue
			}
			e0, e1 := edges[live[0]], edges[live[1]]
			other := func(e UndirectedEdge) int {
				if e.V0 == v {
					return e.V1
				}
				return e.V0
			}
			a, b := other(e0), other(e1)
			if a == b {
				continue // would create a self-loop; leave as-is
			}
			kind := e0.Kind
			edges = append(edges, UndirectedEdge{V0: a, V1: b, Kind: kind})
			removed = append(removed, false)
			removed[live[0]] = true
			removed[live[1]] = true
			adj[v] = nil
			adj[a] = append(adj[a], len(edges)-1)
			adj[b] = append(adj[b], len(edges)-1)
			changed = true
		}
	}

	out := make([]UndirectedEdge, 0, len(edges))
	for i, e := range edges {
		if !removed[i] {
			out = append(out, e)
		}
	}
	return vertices, out
}
