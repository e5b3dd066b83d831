package terra

// dijkstraDirectionField blends the uphill and downhill propagation
// fields into a single per-pixel tangent-aligned bias, weighted by each
// assignment's claiming edge energy and inversely by its propagation
// cost so a pixel close to a high-energy ridge/valley edge is pulled
// harder toward that edge's tangent than one far from any seed.
func dijkstraDirectionField(mesh *DCELMesh, up, down []FieldAssignment, w, h int) []float32 {
	out := make([]float32, w*h)
	for i := range out {
		a, hasA := up[i], up[i].HalfEdge != NoEdge
		b, hasB := down[i], down[i].HalfEdge != NoEdge
		if !hasA && !hasB {
			continue
		}

		x, y := i%w, i/w
		p := Vec2{float32(x), float32(y)}
		var sum, weight float32
		if hasA {
			t := EdgeTangent(mesh, a.HalfEdge, p)
			wgt := mesh.HalfEdges[a.HalfEdge].Energy / (a.Cost + 1)
			sum += t.X * wgt
			weight += wgt
		}
		if hasB {
			t := EdgeTangent(mesh, b.HalfEdge, p)
			wgt := mesh.HalfEdges[b.HalfEdge].Energy / (b.Cost + 1)
			sum += t.X * wgt
			weight += wgt
		}
		if weight < 1e-12 {
			continue
		}
		out[i] = sum / weight
	}
	return out
}

// dijkstraEffectPlane runs the edge-guided multi-source Dijkstra
// propagation (uphill and downhill passes) from a freshly built ridge
// mesh's edges, then nudges each non-zero height sample toward its
// claiming edge's tangent, sharpening ridge/valley structure the way the
// box-blur and fft-clamp erosion effects smooth it. params decode in
// order to HeightBias, DirBias, TangentBias (the cost function's three
// weights); missing trailing params keep DefaultDijkstraConfig's value.
func dijkstraEffectPlane(p *HeightField, params []float32) *HeightField {
	cfg := DefaultDijkstraConfig()
	if len(params) > 0 {
		cfg.HeightBias = params[0]
	}
	if len(params) > 1 {
		cfg.DirBias = params[1]
	}
	if len(params) > 2 {
		cfg.TangentBias = params[2]
	}

	mesh := BuildRidgeMesh(p, DefaultRidgeMeshConfig())
	if len(mesh.Mesh.HalfEdges) == 0 {
		return p.Clone()
	}

	gx, gy := GradientDirectionField(p)
	seeds := SeedFromMesh(mesh.Mesh)
	up := PropagateDijkstra(seeds, p, gx, gy, PassUphill, cfg)
	down := PropagateDijkstra(seeds, p, gx, gy, PassDownhill, cfg)
	dir := dijkstraDirectionField(mesh.Mesh, up, down, p.W, p.H)

	out := p.Clone()
	for i, v := range out.Pix {
		if v == 0 {
			continue // preserve no-data
		}
		adjusted := v + dir[i]*0.05
		if adjusted < ZeroThreshold {
			adjusted = ZeroThreshold
		}
		out.Set(i%p.W, i/p.W, adjusted)
	}
	return out
}
