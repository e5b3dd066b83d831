package terra

import (
	"sort"

	"github.com/esimov/terra/utils"
)

// CellKind classifies a cell of the cubical complex by dimension: a pixel
// is a 0-cell (vertex), a horizontal or vertical pixel-pair is a 1-cell
// (edge), and a 2x2 pixel quad is a 2-cell (face).
type CellKind uint8

const (
	Cell0 CellKind = iota // vertex
	Cell1Horiz             // edge between (x,y) and (x+1,y)
	Cell1Vert              // edge between (x,y) and (x,y+1)
	Cell2                  // face spanned by (x,y)-(x+1,y+1)
)

// Cell identifies one cell of the cubical complex by its anchor pixel and
// kind.
type Cell struct {
	X, Y int
	Kind CellKind
}

// CriticalPointKind classifies a critical cell by Morse index.
type CriticalPointKind uint8

const (
	CritMaximum CriticalPointKind = iota // index 2, a 2-cell
	CritSaddle                           // index 1, a 1-cell
	CritMinimum                          // index 0, a 0-cell
)

// CriticalPoint is a cell the discrete gradient leaves unpaired.
type CriticalPoint struct {
	Cell Cell
	Kind CriticalPointKind
}

// gradientPair records a V-path arrow from a lower cell to the higher cell
// it is paired with.
type gradientPair struct {
	from, to Cell
}

// MorseComplex is the discrete gradient vector field computed over a
// height field's cubical complex, together with the critical cells it
// leaves unpaired.
type MorseComplex struct {
	W, H     int
	height   *HeightField
	pairUp   map[Cell]Cell // 0-cell <-> 1-cell pairs, stored in both directions
	pairDown map[Cell]Cell // 1-cell <-> 2-cell pairs, stored in both directions
	Critical []CriticalPoint
}

// noDataSentinel is the value a no-data (height <= ZeroThreshold) 0-cell is assigned
// in the cubical complex's total order, far below any real height sample
// so no-data regions behave as deep sinks that ridges avoid.
const noDataSentinel float32 = -1e6

// vertexHeight returns the height sample backing a 0-cell, used as the
// total order's primary key (ties broken by raster position). A no-data
// pixel (height <= ZeroThreshold) reads as noDataSentinel instead of its
// literal zero.
func (m *MorseComplex) vertexHeight(x, y int) float32 {
	v := m.height.At(x, y)
	if v <= ZeroThreshold {
		return noDataSentinel
	}
	return v
}

// cellValue returns the scalar used to order a cell in the discrete Morse
// function: a 0-cell takes its own height, a 1-cell the max of its two
// endpoint heights, and a 2-cell the max of its four corner heights. Ties
// are broken lexicographically by (y,x,kind) so the order is total.
func (m *MorseComplex) cellValue(c Cell) float32 {
	switch c.Kind {
	case Cell0:
		return m.vertexHeight(c.X, c.Y)
	case Cell1Horiz:
		return utils.Max(m.vertexHeight(c.X, c.Y), m.vertexHeight(c.X+1, c.Y))
	case Cell1Vert:
		return utils.Max(m.vertexHeight(c.X, c.Y), m.vertexHeight(c.X, c.Y+1))
	default: // Cell2
		return utils.Max(
			utils.Max(m.vertexHeight(c.X, c.Y), m.vertexHeight(c.X+1, c.Y)),
			utils.Max(m.vertexHeight(c.X, c.Y+1), m.vertexHeight(c.X+1, c.Y+1)),
		)
	}
}

// cellLess orders two cells by (value, y, x, kind) to produce the total
// order the gradient pairing sweeps in descending order.
func (m *MorseComplex) cellLess(a, b Cell) bool {
	va, vb := m.cellValue(a), m.cellValue(b)
	if va != vb {
		return va < vb
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Kind < b.Kind
}

// faces1 returns the two 0-cell faces of a 1-cell.
func faces1(c Cell) [2]Cell {
	if c.Kind == Cell1Horiz {
		return [2]Cell{{c.X, c.Y, Cell0}, {c.X + 1, c.Y, Cell0}}
	}
	return [2]Cell{{c.X, c.Y, Cell0}, {c.X, c.Y + 1, Cell0}}
}

// faces2 returns the four 1-cell faces of a 2-cell.
func faces2(c Cell) [4]Cell {
	return [4]Cell{
		{c.X, c.Y, Cell1Horiz},     // bottom
		{c.X, c.Y + 1, Cell1Horiz}, // top
		{c.X, c.Y, Cell1Vert},      // left
		{c.X + 1, c.Y, Cell1Vert},  // right
	}
}

// cofaces0 returns the 1-cells incident to a 0-cell (up to 4, fewer at the
// boundary).
func cofaces0(c Cell, w, h int) []Cell {
	var out []Cell
	if c.X > 0 {
		out = append(out, Cell{c.X - 1, c.Y, Cell1Horiz})
	}
	if c.X < w-1 {
		out = append(out, Cell{c.X, c.Y, Cell1Horiz})
	}
	if c.Y > 0 {
		out = append(out, Cell{c.X, c.Y - 1, Cell1Vert})
	}
	if c.Y < h-1 {
		out = append(out, Cell{c.X, c.Y, Cell1Vert})
	}
	return out
}

// cofaces1 returns the 2-cells incident to a 1-cell (up to 2, fewer at the
// boundary).
func cofaces1(c Cell, w, h int) []Cell {
	var out []Cell
	if c.Kind == Cell1Horiz {
		if c.Y > 0 {
			out = append(out, Cell{c.X, c.Y - 1, Cell2})
		}
		if c.Y < h-1 {
			out = append(out, Cell{c.X, c.Y, Cell2})
		}
		return out
	}
	if c.X > 0 {
		out = append(out, Cell{c.X - 1, c.Y, Cell2})
	}
	if c.X < w-1 {
		out = append(out, Cell{c.X, c.Y, Cell2})
	}
	return out
}

// BuildMorseComplex computes the discrete gradient vector field of a height
// field's cubical complex following the Robins-Wood-Sheppard pairing
// algorithm: cells are processed in descending value order, and each
// unpaired cell is paired with the unique unpaired coface whose value
// equals its own, if one exists.
func BuildMorseComplex(h *HeightField) *MorseComplex {
	w, hgt := h.W, h.H
	m := &MorseComplex{W: w, H: hgt, height: h, pairUp: map[Cell]Cell{}, pairDown: map[Cell]Cell{}}

	var cells []Cell
	for y := 0; y < hgt; y++ {
		for x := 0; x < w; x++ {
			cells = append(cells, Cell{x, y, Cell0})
			if x < w-1 {
				cells = append(cells, Cell{x, y, Cell1Horiz})
			}
			if y < hgt-1 {
				cells = append(cells, Cell{x, y, Cell1Vert})
			}
			if x < w-1 && y < hgt-1 {
				cells = append(cells, Cell{x, y, Cell2})
			}
		}
	}
	sort.Slice(cells, func(i, j int) bool { return m.cellLess(cells[j], cells[i]) }) // descending

	paired := make(map[Cell]bool, len(cells))

	for _, c := range cells {
		if paired[c] {
			continue
		}
		switch c.Kind {
		case Cell0:
			var candidate Cell
			found := false
			for _, co := range cofaces0(c, w, hgt) {
				if paired[co] {
					continue
				}
				if m.cellValue(co) == m.cellValue(c) {
					if found {
						found = false
						break
					}
					candidate, found = co, true
				}
			}
			if found {
				m.pairUp[c] = candidate
				m.pairUp[candidate] = c
				paired[c] = true
				paired[candidate] = true
			}
		case Cell1Horiz, Cell1Vert:
			if paired[c] {
				continue
			}
			var candidate Cell
			found := false
			for _, co := range cofaces1(c, w, hgt) {
				if paired[co] {
					continue
				}
				if m.cellValue(co) == m.cellValue(c) {
					if found {
						found = false
						break
					}
					candidate, found = co, true
				}
			}
			if found {
				m.pairDown[candidate] = c
				m.pairDown[c] = candidate
				paired[c] = true
				paired[candidate] = true
			}
		}
	}

	for _, c := range cells {
		if paired[c] {
			continue
		}
		// A cell fully inside a no-data region evaluates to the sentinel
		// itself (all its vertex faces are no-data); such cells carry no
		// real topology and are discarded rather than reported critical.
		if m.cellValue(c) <= noDataSentinel {
			continue
		}
		switch c.Kind {
		case Cell0:
			m.Critical = append(m.Critical, CriticalPoint{Cell: c, Kind: CritMinimum})
		case Cell1Horiz, Cell1Vert:
			m.Critical = append(m.Critical, CriticalPoint{Cell: c, Kind: CritSaddle})
		case Cell2:
			m.Critical = append(m.Critical, CriticalPoint{Cell: c, Kind: CritMaximum})
		}
	}

	return m
}

// touchesNoData reports whether any 0-cell in c's closure samples a
// no-data pixel, used to skip saddles that border a no-data region when
// tracing separatrices (such saddles have no meaningful descending or
// ascending direction on the no-data side).
func (m *MorseComplex) touchesNoData(c Cell) bool {
	switch c.Kind {
	case Cell0:
		return m.vertexHeight(c.X, c.Y) <= noDataSentinel
	case Cell1Horiz, Cell1Vert:
		for _, f := range faces1(c) {
			if m.vertexHeight(f.X, f.Y) <= noDataSentinel {
				return true
			}
		}
	case Cell2:
		for _, dx := range [2]int{0, 1} {
			for _, dy := range [2]int{0, 1} {
				if m.vertexHeight(c.X+dx, c.Y+dy) <= noDataSentinel {
					return true
				}
			}
		}
	}
	return false
}

// descendingPath traces a V-path downward from a saddle's 0-cell face,
// following the discrete gradient (paired 1-cell -> 2-cell jumps are
// ascending and never taken here) until it reaches a critical 0-cell
// (a minimum) or a dead end.
func (m *MorseComplex) descendingPath(start Cell) []Cell {
	path := []Cell{start}
	cur := start
	visited := map[Cell]bool{start: true}
	for {
		next, ok := m.pairUp[cur]
		if !ok {
			break // cur is a critical vertex: path terminates at a minimum
		}
		if next == cur {
			break
		}
		// next is the 1-cell paired to cur; step across it to its other
		// 0-cell face, continuing the descent.
		fs := faces1(next)
		var other Cell
		if fs[0] == cur {
			other = fs[1]
		} else {
			other = fs[0]
		}
		path = append(path, next, other)
		if visited[other] {
			break
		}
		visited[other] = true
		cur = other
	}
	return path
}

// Separatrix is a traced integral line of the discrete gradient connecting
// a saddle to an extremum.
type Separatrix struct {
	Saddle Cell
	Cells  []Cell
	ToMax  bool // true if this traces upward to a maximum, false if downward to a minimum
}

// TraceSeparatrices computes the descending (to minima) and ascending (to
// maxima) 1-manifolds emanating from every saddle, by following the
// discrete gradient V-paths from the saddle's two 0-cell faces (descending)
// and from each of its 2-cell cofaces (ascending; two in the interior, one
// on the domain border).
func (m *MorseComplex) TraceSeparatrices() []Separatrix {
	var out []Separatrix
	for _, cp := range m.Critical {
		if cp.Kind != CritSaddle {
			continue
		}
		if m.touchesNoData(cp.Cell) {
			continue // saddle borders a no-data region: no meaningful separatrix
		}
		for _, v := range faces1(cp.Cell) {
			path := m.descendingPath(v)
			out = append(out, Separatrix{Saddle: cp.Cell, Cells: path, ToMax: false})
		}
		for _, f := range cofaces1(cp.Cell, m.W, m.H) {
			path := m.ascendingPath(f)
			out = append(out, Separatrix{Saddle: cp.Cell, Cells: path, ToMax: true})
		}
	}
	return out
}

// ascendingPath traces a V-path upward from a saddle's 2-cell coface,
// following the discrete gradient until it reaches a critical 2-cell (a
// maximum) or a dead end.
func (m *MorseComplex) ascendingPath(start Cell) []Cell {
	path := []Cell{start}
	cur := start
	visited := map[Cell]bool{start: true}
	for {
		next, ok := m.pairDown[cur]
		if !ok {
			break // cur is a critical face: path terminates at a maximum
		}
		// next is the 1-cell paired to cur; step across it to its other
		// 2-cell coface, continuing the ascent.
		var other Cell
		found := false
		for _, c2 := range cofaces1(next, m.W, m.H) {
			if c2 != cur {
				other, found = c2, true
			}
		}
		if !found {
			break
		}
		path = append(path, next, other)
		if visited[other] {
			break
		}
		visited[other] = true
		cur = other
	}
	return path
}
