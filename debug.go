package terra

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"

	"github.com/esimov/terra/utils"
)

// ExportGrayscalePNG writes h as an 8-bit grayscale PNG debug layout.
func ExportGrayscalePNG(path string, h *HeightField) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return encodeImg(f, heightFieldToGrayscaleImage(h))
}

// ExportNormalMapPNG writes n as an RGB-encoded normal-map PNG debug
// layout via the (n+1)/2*255 mapping.
func ExportNormalMapPNG(path string, n *NormalField) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return encodeImg(f, normalFieldToImage(n.ToPlanar()))
}

// ExportGridCompositePNG writes a row of debug tiles side by side into a
// single grid composite PNG.
func ExportGridCompositePNG(path string, tiles []*image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return encodeImg(f, CompositeGrid(tiles, 4))
}

// ExportRidgeOverlayPNG composites a rasterized ridge/valley mesh overlay
// over a grayscale height preview using the source-over operator.
func ExportRidgeOverlayPNG(path string, h *HeightField, m *DCELMesh) error {
	bg := heightFieldToGrayscaleImage(h)
	overlay := rasterizeRidgeMesh(m, h.W, h.H)

	composite := image.NewNRGBA(bg.Bounds())
	draw.Draw(composite, composite.Bounds(), bg, image.Point{}, draw.Src)
	draw.Draw(composite, composite.Bounds(), overlay, image.Point{}, draw.Over)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return encodeImg(f, composite)
}

// ExportHessianFlowPNG renders the dominant-curvature direction at every
// pixel (the Hessian's major eigenvector) as an RGB-encoded normal-map
// debug PNG, the same encoding ExportNormalMapPNG uses for a surface
// normal field.
func ExportHessianFlowPNG(path string, h *HeightField) error {
	hess := ComputeHessian(h, DefaultHessianConfig())
	flow := &PlanarNormalField{
		W: h.W, H: h.H,
		Nx: make([]float32, len(hess)),
		Ny: make([]float32, len(hess)),
		Nz: make([]float32, len(hess)),
	}
	for i, he := range hess {
		pair := Eigendecompose(he)
		flow.Nx[i] = pair.Major.Vector.X
		flow.Ny[i] = pair.Major.Vector.Y
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return encodeImg(f, normalFieldToImage(flow))
}

// exportSplitChannelsDebug writes the major- and minor-axis rank-1 normal
// fields SplitNormals produces as two side-by-side debug PNGs.
func exportSplitChannelsDebug(prefix string, h *HeightField) error {
	split := SplitNormals(h, DefaultSplitNormalsConfig())
	if err := ExportNormalMapPNG(prefix+"split_major.png", split.Major); err != nil {
		return err
	}
	return ExportNormalMapPNG(prefix+"split_minor.png", split.Minor)
}

// exportLICDebug renders a Line Integral Convolution of the height field
// advected along its own gradient direction, self-LIC being a cheap way
// to visualize flow structure without a separate procedural noise source.
func exportLICDebug(prefix string, h *HeightField, kernelLength int) error {
	gx, gy := GradientDirectionField(h)
	split := SplitNormals(h, DefaultSplitNormalsConfig())
	cfg := DefaultLICConfig()
	if kernelLength > 0 {
		cfg.KernelLength = kernelLength
	}
	out := ComputeLIC(h.Pix, gx, gy, split.Anisotropy, h.W, h.H, cfg)
	return ExportGrayscalePNG(prefix+"lic.png", &HeightField{W: h.W, H: h.H, Pix: out})
}

// exportLaplacianDebug renders the height field's Laplacian (the
// divergence of its own gradient) as a grayscale debug PNG, remapped from
// its signed range into [0,1] for display.
func exportLaplacianDebug(prefix string, h *HeightField) error {
	fx := make([]float32, h.W*h.H)
	fy := make([]float32, h.W*h.H)
	for y := 0; y < h.H; y++ {
		for x := 0; x < h.W; x++ {
			g := HeightGradient(h, x, y)
			fx[y*h.W+x], fy[y*h.W+x] = g.X, g.Y
		}
	}
	out := make([]float32, h.W*h.H)
	var maxAbs float32
	for y := 0; y < h.H; y++ {
		for x := 0; x < h.W; x++ {
			d := Divergence2D(fx, fy, h.W, h.H, x, y)
			out[y*h.W+x] = d
			if a := utils.Abs(d); a > maxAbs {
				maxAbs = a
			}
		}
	}
	if maxAbs > 1e-12 {
		for i := range out {
			out[i] = out[i]/maxAbs*0.5 + 0.5
		}
	}
	return ExportGrayscalePNG(prefix+"laplacian.png", &HeightField{W: h.W, H: h.H, Pix: out})
}

// exportRidgeMeshDebug runs the full ridge-mesh pipeline and writes its
// three viewer artifacts: an SVG of the decimated mesh, a grayscale+mesh
// overlay PNG, and the interactive separatrix viewer HTML.
func exportRidgeMeshDebug(prefix string, h *HeightField) error {
	rm := BuildRidgeMesh(h, DefaultRidgeMeshConfig())
	if err := ExportRidgeMeshSVG(prefix+"ridgemesh.svg", rm.Mesh); err != nil {
		return err
	}
	if err := ExportRidgeOverlayPNG(prefix+"ridgemesh_overlay.png", h, rm.Mesh); err != nil {
		return err
	}
	return ExportSeparatrixViewerHTML(prefix+"separatrix_viewer.html", h, rm.Divergence, rm.Separatrices)
}

// rasterizeRidgeMesh draws every undirected edge of m as a 1px line,
// colored by its alignment z-score, onto a transparent canvas.
func rasterizeRidgeMesh(m *DCELMesh, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for he := 0; he < len(m.HalfEdges); he += 2 {
		meanAbsCos, n := edgeAlignmentStats(m, he)
		z := alignmentZScore(meanAbsCos, n)
		c := zScoreColor(z)

		v0 := m.Vertices[m.HalfEdges[he].Origin]
		v1 := m.Vertices[m.Dest(he)]
		for _, p := range rasterizeEdge(int(v0.X), int(v0.Y), int(v1.X), int(v1.Y)) {
			if p[0] < 0 || p[1] < 0 || p[0] >= w || p[1] >= h {
				continue
			}
			dst.SetNRGBA(p[0], p[1], c)
		}
	}
	return dst
}

// edgeAlignmentStats samples the mean |cos(angle)| between he's tangent
// and the tangents of the (up to two) same-kind chain edges adjoining it,
// the sample feeding alignmentZScore's Fisher test.
func edgeAlignmentStats(m *DCELMesh, he int) (meanAbsCos float32, n int) {
	e := m.HalfEdges[he]
	var cosSum float32
	if next, ok := chainContinuation(m, he); ok {
		ne := m.HalfEdges[next]
		cosSum += utils.Abs(e.TangentX*ne.TangentX + e.TangentY*ne.TangentY)
		n++
	}
	if prev, ok := chainContinuation(m, e.Twin); ok {
		pe := m.HalfEdges[prev]
		cosSum += utils.Abs(e.TangentX*pe.TangentX + e.TangentY*pe.TangentY)
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return cosSum / float32(n), n
}

// zScoreColor maps an alignment z-score to a blue (insignificant) to red
// (highly significant alignment) ramp, clamped to [0,4].
func zScoreColor(z float32) color.NRGBA {
	t := z / 4
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return color.NRGBA{R: uint8(t * 255), G: uint8((1 - t) * 80), B: uint8((1 - t) * 255), A: 255}
}

func vertexKindColor(k VertexKind) string {
	switch k {
	case VertexMaximum:
		return "#d62728"
	case VertexMinimum:
		return "#1f77b4"
	case VertexJunction:
		return "#9467bd"
	case VertexEndpoint:
		return "#7f7f7f"
	default: // VertexPath
		return "#2ca02c"
	}
}

// ExportRidgeMeshSVG writes a simplified DCEL mesh as an SVG: one
// polyline per undirected edge, stroke colour encoding the alignment
// z-score against the null hypothesis of uniformly random tangent
// directions, and one circle per vertex, coloured by vertex kind.
func ExportRidgeMeshSVG(path string, m *DCELMesh) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d">`+"\n", svgBounds(m))
	for he := 0; he < len(m.HalfEdges); he += 2 {
		meanAbsCos, n := edgeAlignmentStats(m, he)
		z := alignmentZScore(meanAbsCos, n)
		c := zScoreColor(z)
		v0 := m.Vertices[m.HalfEdges[he].Origin]
		v1 := m.Vertices[m.Dest(he)]
		fmt.Fprintf(&buf, `<polyline points="%g,%g %g,%g" stroke="rgb(%d,%d,%d)" stroke-width="1" fill="none"/>`+"\n",
			v0.X, v0.Y, v1.X, v1.Y, c.R, c.G, c.B)
	}
	for _, v := range m.Vertices {
		fmt.Fprintf(&buf, `<circle cx="%g" cy="%g" r="2" fill="%s"/>`+"\n", v.X, v.Y, vertexKindColor(v.Kind))
	}
	buf.WriteString("</svg>\n")
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func svgBounds(m *DCELMesh) (w, h int) {
	var maxX, maxY float32
	for _, v := range m.Vertices {
		if v.X > maxX {
			maxX = v.X
		}
		if v.Y > maxY {
			maxY = v.Y
		}
	}
	return int(math.Ceil(float64(maxX))) + 1, int(math.Ceil(float64(maxY))) + 1
}

// ExportSeparatrixViewerHTML writes a self-contained interactive
// separatrix viewer: the heightmap quantised to u8, the signed
// divergence field scaled by 1000 as i16, and the separatrix polylines,
// all embedded as inline JS arrays, with pan/zoom, a kind-visibility
// toggle, and a "copy kept/removed separatrix indices" clipboard button.
func ExportSeparatrixViewerHTML(path string, h *HeightField, divergence []float32, seps []Separatrix) error {
	gray := QuantizeHeightField(h)
	div := QuantizeDivergence(divergence)

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\">")
	fmt.Fprintf(&buf, "<title>terra separatrix viewer</title></head><body>\n")
	fmt.Fprintf(&buf, "<canvas id=\"c\" width=\"%d\" height=\"%d\"></canvas>\n", h.W, h.H)
	buf.WriteString("<script>\n")
	fmt.Fprintf(&buf, "const W=%d, H=%d;\n", h.W, h.H)
	buf.WriteString("const heightmap=new Uint8Array([")
	writeUint8Array(&buf, gray)
	buf.WriteString("]);\n")
	buf.WriteString("const divergence=new Int16Array([")
	writeInt16Array(&buf, div)
	buf.WriteString("]);\n")
	buf.WriteString("const separatrices=[\n")
	for _, s := range seps {
		fmt.Fprintf(&buf, "{toMax:%v,points:[", s.ToMax)
		for _, c := range s.Cells {
			p := cellPosition(c)
			fmt.Fprintf(&buf, "[%g,%g],", p.X, p.Y)
		}
		buf.WriteString("]},\n")
	}
	buf.WriteString("];\n")
	buf.WriteString(viewerScript)
	buf.WriteString("\n</script></body></html>\n")
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func writeUint8Array(buf *bytes.Buffer, v []uint8) {
	for i, b := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(buf, "%d", b)
	}
}

func writeInt16Array(buf *bytes.Buffer, v []int16) {
	for i, b := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(buf, "%d", b)
	}
}

// viewerScript implements pan/zoom over the canvas, a per-kind
// visibility toggle (ridge separatrices vs valley), and a clipboard
// export of the indices of separatrices the user has marked kept or
// removed via click-selection.
const viewerScript = `
let scale = 1, offX = 0, offY = 0, dragging = false, lastX = 0, lastY = 0;
const kept = new Set(), removed = new Set();
const canvas = document.getElementById('c');
const ctx = canvas.getContext('2d');

function draw() {
  ctx.setTransform(1, 0, 0, 1, 0, 0);
  ctx.clearRect(0, 0, canvas.width, canvas.height);
  ctx.setTransform(scale, 0, 0, scale, offX, offY);
  const img = ctx.createImageData(W, H);
  for (let i = 0; i < W * H; i++) {
    const g = heightmap[i];
    img.data[i*4] = g; img.data[i*4+1] = g; img.data[i*4+2] = g; img.data[i*4+3] = 255;
  }
  ctx.putImageData(img, 0, 0);
  for (const s of separatrices) {
    ctx.strokeStyle = s.toMax ? '#d62728' : '#1f77b4';
    ctx.beginPath();
    s.points.forEach((p, i) => i === 0 ? ctx.moveTo(p[0], p[1]) : ctx.lineTo(p[0], p[1]));
    ctx.stroke();
  }
}

canvas.addEventListener('wheel', e => {
  e.preventDefault();
  scale *= e.deltaY < 0 ? 1.1 : 0.9;
  draw();
});
canvas.addEventListener('mousedown', e => { dragging = true; lastX = e.clientX; lastY = e.clientY; });
window.addEventListener('mouseup', () => dragging = false);
window.addEventListener('mousemove', e => {
  if (!dragging) return;
  offX += e.clientX - lastX; offY += e.clientY - lastY;
  lastX = e.clientX; lastY = e.clientY;
  draw();
});

function exportSelection() {
  const payload = JSON.stringify({ kept: [...kept], removed: [...removed] });
  navigator.clipboard.writeText(payload);
}

draw();
`
