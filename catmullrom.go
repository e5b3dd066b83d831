package terra

// CatmullRomTangent returns the tangent direction at p1 of a Catmull-Rom
// spline through p0,p1,p2,p3, normalized to unit length. Used to derive a
// smoother per-sample tangent along a decimated chain than the raw
// straight-line segment tangent.
func CatmullRomTangent(p0, p1, p2, p3 Vec2) Vec2 {
	// d/dt at t=0 of the standard Catmull-Rom basis is 0.5*(p2-p0).
	return Vec2{0.5 * (p2.X - p0.X), 0.5 * (p2.Y - p0.Y)}.Normalize()
}

// CatmullRomPoint evaluates the Catmull-Rom spline through p0,p1,p2,p3 at
// parameter t in [0,1], interpolating between p1 and p2.
func CatmullRomPoint(p0, p1, p2, p3 Vec2, t float32) Vec2 {
	t2 := t * t
	t3 := t2 * t
	x := 0.5 * ((2 * p1.X) +
		(-p0.X+p2.X)*t +
		(2*p0.X-5*p1.X+4*p2.X-p3.X)*t2 +
		(-p0.X+3*p1.X-3*p2.X+p3.X)*t3)
	y := 0.5 * ((2 * p1.Y) +
		(-p0.Y+p2.Y)*t +
		(2*p0.Y-5*p1.Y+4*p2.Y-p3.Y)*t2 +
		(-p0.Y+3*p1.Y-3*p2.Y+p3.Y)*t3)
	return Vec2{x, y}
}

// catmullRomDerivative evaluates q'(t) of the standard Catmull-Rom basis
// through p0,p1,p2,p3, t in [0,1] interpolating between p1 and p2.
func catmullRomDerivative(p0, p1, p2, p3 Vec2, t float32) Vec2 {
	t2 := t * t
	dx := 0.5 * ((-p0.X + p2.X) +
		2*(2*p0.X-5*p1.X+4*p2.X-p3.X)*t +
		3*(-p0.X+3*p1.X-3*p2.X+p3.X)*t2)
	dy := 0.5 * ((-p0.Y + p2.Y) +
		2*(2*p0.Y-5*p1.Y+4*p2.Y-p3.Y)*t +
		3*(-p0.Y+3*p1.Y-3*p2.Y+p3.Y)*t2)
	return Vec2{dx, dy}
}

// projectParam projects p onto segment p1-p2 and returns the clamped
// parameter t in [0,1] of its closest point.
func projectParam(p1, p2, p Vec2) float32 {
	d := p2.Sub(p1)
	len2 := d.Dot(d)
	if len2 < 1e-12 {
		return 0
	}
	t := p.Sub(p1).Dot(d) / len2
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// EdgeTangent returns the smoothed tangent direction of half-edge he at
// pixel p, following the mesh's actual topology rather than a bare
// straight-line segment: the chain is extended one vertex backward past
// he's origin and one vertex forward past its destination (via
// chainContinuation on both ends), p is projected onto the he segment to
// obtain a parameter t, and the Catmull-Rom derivative at t is evaluated
// over the four resulting control points. At a chain endpoint, the
// missing control point is mirrored across the nearer vertex, the usual
// open-curve convention. Falls back to the raw edge tangent if the
// spline derivative collapses to (near) zero, which happens when all
// four control points are collinear and coincide with the segment
// direction's reversal.
func EdgeTangent(m *DCELMesh, he int, p Vec2) Vec2 {
	e := m.HalfEdges[he]
	originIdx := e.Origin
	destIdx := m.Dest(he)
	p1 := Vec2{m.Vertices[originIdx].X, m.Vertices[originIdx].Y}
	p2 := Vec2{m.Vertices[destIdx].X, m.Vertices[destIdx].Y}

	p0 := p1.Add(p1.Sub(p2))
	if back, ok := chainContinuation(m, e.Twin); ok {
		v := m.Vertices[m.Dest(back)]
		p0 = Vec2{v.X, v.Y}
	}

	p3 := p2.Add(p2.Sub(p1))
	if fwd, ok := chainContinuation(m, he); ok {
		v := m.Vertices[m.Dest(fwd)]
		p3 = Vec2{v.X, v.Y}
	}

	t := projectParam(p1, p2, p)
	tangent := catmullRomDerivative(p0, p1, p2, p3, t)
	if tangent.Len() < 1e-6 {
		return p2.Sub(p1).Normalize()
	}
	return tangent.Normalize()
}

// ChainTangents returns the Catmull-Rom tangent at every interior point of
// a polyline, with the endpoints falling back to the adjacent segment's
// direction (a spline needs a point on both sides to define its tangent).
func ChainTangents(points []Vec2) []Vec2 {
	n := len(points)
	out := make([]Vec2, n)
	if n == 0 {
		return out
	}
	if n == 1 {
		return out
	}
	out[0] = points[1].Sub(points[0]).Normalize()
	out[n-1] = points[n-1].Sub(points[n-2]).Normalize()
	for i := 1; i < n-1; i++ {
		p0 := points[i-1]
		p2 := points[i+1]
		p3 := points[i]
		if i+2 < n {
			p3 = points[i+2]
		}
		out[i] = CatmullRomTangent(p0, points[i], p2, p3)
	}
	return out
}
