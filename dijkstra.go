package terra

import (
	"container/heap"
	"math"

	"github.com/esimov/terra/utils"
)

// dx8/dy8 are the 8-connected neighbor offsets, and dcost8 the matching
// base step distance (1 for axis moves, sqrt(2) for diagonals).
var (
	dx8    = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	dy8    = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
	dcost8 = [8]float32{1, math.Sqrt2, 1, math.Sqrt2, 1, math.Sqrt2, 1, math.Sqrt2}
)

// DijkstraConfig weights the terms of the edge-guided cost function.
type DijkstraConfig struct {
	HeightBias   float32
	DirBias      float32
	TangentBias  float32
	TerminalCost float32
}

// DefaultDijkstraConfig matches the engine's reference tuning.
func DefaultDijkstraConfig() DijkstraConfig {
	return DijkstraConfig{HeightBias: 50, DirBias: 20, TangentBias: 10, TerminalCost: 3.0}
}

// DijkstraPass selects the sign of the height and direction penalties:
// Uphill penalizes steps that lose height and favors steps against the
// gradient direction; Downhill mirrors both.
type DijkstraPass int

const (
	PassUphill DijkstraPass = iota
	PassDownhill
)

// SeedPixel is one pixel-grid source for the multi-source Dijkstra
// propagation: a point on a rasterized DCEL half-edge, carrying the
// canonical (higher-energy) half-edge's tangent so the cost function can
// penalize direction changes as the front expands away from it.
type SeedPixel struct {
	X, Y     int
	HalfEdge int
	Kind     EdgeKind
	Terminal bool // true if this pixel sits at an endpoint vertex
	TangentX float32
	TangentY float32
}

// rasterizeEdge returns the integer pixels on the Bresenham line between
// two endpoints, used to seed the propagation front along a DCEL
// half-edge's length.
func rasterizeEdge(x0, y0, x1, y1 int) [][2]int {
	var pts [][2]int
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	x, y := x0, y0
	for {
		pts = append(pts, [2]int{x, y})
		if x == x1 && y == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
	return pts
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// canonicalHalfEdge returns the higher-energy half-edge of an undirected
// edge pair, the one whose tangent seeds Dijkstra propagation.
func canonicalHalfEdge(m *DCELMesh, he int) int {
	twin := m.HalfEdges[he].Twin
	if m.HalfEdges[twin].Energy > m.HalfEdges[he].Energy {
		return twin
	}
	return he
}

// SeedFromMesh rasterizes every undirected edge of m into SeedPixels,
// carrying the canonical half-edge's tangent and tagging a pixel terminal
// if it falls on a vertex that is not a plain path vertex.
func SeedFromMesh(m *DCELMesh) []SeedPixel {
	var seeds []SeedPixel
	for he := 0; he < len(m.HalfEdges); he += 2 {
		canon := canonicalHalfEdge(m, he)
		e := m.HalfEdges[canon]
		v0 := m.Vertices[m.HalfEdges[he].Origin]
		v1 := m.Vertices[m.Dest(he)]
		pts := rasterizeEdge(int(v0.X), int(v0.Y), int(v1.X), int(v1.Y))
		for i, p := range pts {
			terminal := (i == 0 && v0.Kind != VertexPath) || (i == len(pts)-1 && v1.Kind != VertexPath)
			tangent := EdgeTangent(m, canon, Vec2{float32(p[0]), float32(p[1])})
			seeds = append(seeds, SeedPixel{
				X: p[0], Y: p[1], HalfEdge: canon, Kind: e.Kind,
				Terminal: terminal, TangentX: tangent.X, TangentY: tangent.Y,
			})
		}
	}
	return seeds
}

// dijkstraNode is a priority-queue entry for the pixel-grid propagation.
// Ties are broken by insertion order, so the propagation is deterministic
// for a fixed seed-rasterization order.
type dijkstraNode struct {
	x, y  int
	cost  float32
	order int
}

type dijkstraHeap []dijkstraNode

func (h dijkstraHeap) Len() int { return len(h) }
func (h dijkstraHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return h[i].order < h[j].order
}
func (h dijkstraHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *dijkstraHeap) Push(x interface{}) { *h = append(*h, x.(dijkstraNode)) }
func (h *dijkstraHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// FieldAssignment is the result of multi-source propagation at one pixel:
// which seeded half-edge claimed it, the accumulated cost, the
// propagated tangent, the seed pixel it traces back to, and whether that
// seed was terminal.
type FieldAssignment struct {
	HalfEdge     int
	Cost         float32
	TangentX     float32
	TangentY     float32
	SeedX, SeedY int
	Terminal     bool
}

// PropagateDijkstra runs one multi-source Dijkstra expansion from seeds
// across the full w*h pixel grid for the given pass direction, using
// height, gradient-alignment, and tangent-continuity penalties to steer
// the front so it tracks ridge/valley structure instead of expanding as
// plain Euclidean distance. gradX/gradY is the per-pixel normalized
// image gradient. Unreached pixels keep HalfEdge = NoEdge.
func PropagateDijkstra(seeds []SeedPixel, h *HeightField, gradX, gradY []float32, pass DijkstraPass, cfg DijkstraConfig) []FieldAssignment {
	w, hgt := h.W, h.H
	n := w * hgt
	out := make([]FieldAssignment, n)
	for i := range out {
		out[i] = FieldAssignment{HalfEdge: NoEdge, Cost: float32(math.Inf(1))}
	}

	pq := &dijkstraHeap{}
	heap.Init(pq)
	order := 0
	for _, s := range seeds {
		if s.X < 0 || s.Y < 0 || s.X >= w || s.Y >= hgt {
			continue
		}
		idx := s.Y*w + s.X
		cost := float32(0)
		if s.Terminal {
			cost = cfg.TerminalCost
		}
		if cost < out[idx].Cost {
			out[idx] = FieldAssignment{
				HalfEdge: s.HalfEdge, Cost: cost,
				TangentX: s.TangentX, TangentY: s.TangentY,
				SeedX: s.X, SeedY: s.Y, Terminal: s.Terminal,
			}
			heap.Push(pq, dijkstraNode{x: s.X, y: s.Y, cost: cost, order: order})
			order++
		}
	}

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(dijkstraNode)
		idx := cur.y*w + cur.x
		if cur.cost > out[idx].Cost {
			continue // stale entry
		}
		a := out[idx]
		for k := 0; k < 8; k++ {
			nx, ny := cur.x+dx8[k], cur.y+dy8[k]
			if nx < 0 || ny < 0 || nx >= w || ny >= hgt {
				continue
			}
			nIdx := ny*w + nx
			step := stepCost(dcost8[k], h, gradX, gradY, cur.x, cur.y, nx, ny, a.TangentX, a.TangentY, pass, cfg)
			newCost := a.Cost + step
			if newCost < out[nIdx].Cost {
				out[nIdx] = FieldAssignment{
					HalfEdge: a.HalfEdge, Cost: newCost,
					TangentX: a.TangentX, TangentY: a.TangentY,
					SeedX: a.SeedX, SeedY: a.SeedY, Terminal: a.Terminal,
				}
				heap.Push(pq, dijkstraNode{x: nx, y: ny, cost: newCost, order: order})
				order++
			}
		}
	}

	return out
}

// stepCost applies the cost-function biases to a base 8-connected step:
// cost = base*(1 + heightBias*heightPenalty + dirBias*dirPenalty +
// tangBias*tangPenalty). Uphill prefers stepping against the gradient;
// downhill is the mirror image.
func stepCost(base float32, h *HeightField, gradX, gradY []float32, x0, y0, x1, y1 int, tx, ty float32, pass DijkstraPass, cfg DijkstraConfig) float32 {
	dh := h.At(x1, y1) - h.At(x0, y0)
	var heightPenalty float32
	if pass == PassUphill {
		heightPenalty = utils.Max(0, -dh)
	} else {
		heightPenalty = utils.Max(0, dh)
	}

	dirX, dirY := float32(x1-x0), float32(y1-y0)
	dlen := Vec2{dirX, dirY}.Len()
	var step Vec2
	if dlen > 1e-9 {
		step = Vec2{dirX / dlen, dirY / dlen}
	}

	idx := y0*h.W + x0
	var gradStepAlign float32
	if gradX != nil && idx >= 0 && idx < len(gradX) {
		g := Vec2{gradX[idx], gradY[idx]}
		gradStepAlign = step.Dot(g)
	}
	var dirPenalty float32
	if pass == PassUphill {
		dirPenalty = 1 - utils.Max(0, -gradStepAlign)
	} else {
		dirPenalty = 1 - utils.Max(0, gradStepAlign)
	}

	tangentLen := Vec2{tx, ty}.Len()
	var tangPenalty float32
	if tangentLen > 1e-9 {
		tangPenalty = utils.Abs(step.Dot(Vec2{tx, ty})) / tangentLen
	}

	return base * (1 + cfg.HeightBias*heightPenalty + cfg.DirBias*dirPenalty + cfg.TangentBias*tangPenalty)
}
