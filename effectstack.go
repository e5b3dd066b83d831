package terra

// WorkingBuffer is the driver's 3-plane working state: the R/G/B height
// planes carried end to end through an effect stack run.
type WorkingBuffer struct {
	W, H   int
	Planes [3]*HeightField
}

// CloneWorkingBuffer returns an independent deep copy.
func CloneWorkingBuffer(b *WorkingBuffer) *WorkingBuffer {
	out := &WorkingBuffer{W: b.W, H: b.H}
	for i, p := range b.Planes {
		out.Planes[i] = p.Clone()
	}
	return out
}

// EffectConfig is one entry of a user-supplied effect list: a decoded
// effect plus the raw bytes it came from, compared structurally by the
// resume logic.
type EffectConfig struct {
	ID     EffectID
	Raw    []byte
	Params []float32
}

func (a EffectConfig) equal(b EffectConfig) bool {
	if a.ID != b.ID || len(a.Raw) != len(b.Raw) {
		return false
	}
	for i := range a.Raw {
		if a.Raw[i] != b.Raw[i] {
			return false
		}
	}
	return true
}

// memoLayer is one entry of the PipelineMemo: the config that produced
// it, an optional working-buffer snapshot (populated only for effects
// shouldMemoize flags as expensive), and opaque per-effect state an
// effect may reuse across a resumed run.
type memoLayer struct {
	config EffectConfig
	buffer *WorkingBuffer // nil for cheap effects
	state  interface{}
}

// PipelineMemo holds the ordered per-effect snapshots from the most
// recent run of a stack, enabling the next run to resume from the first
// point its effect list diverges instead of recomputing from scratch.
type PipelineMemo struct {
	layers       []memoLayer
	sourceW      int
	sourceH      int
}

// resumeIndex returns the first position at which configs differs from
// the cached layer list, or len(configs) if every cached layer still
// matches.
func (memo *PipelineMemo) resumeIndex(configs []EffectConfig, w, h int) int {
	if memo.sourceW != w || memo.sourceH != h {
		return 0
	}
	n := len(memo.layers)
	if len(configs) < n {
		n = len(configs)
	}
	for i := 0; i < n; i++ {
		if !memo.layers[i].config.equal(configs[i]) {
			return i
		}
	}
	return n
}

// restoreFrom returns the most recent buffer snapshot at or before
// resumeIndex, or nil if none exists (the caller should then fall back
// to the freshly loaded source).
func (memo *PipelineMemo) restoreFrom(resumeIndex int) *WorkingBuffer {
	for i := resumeIndex - 1; i >= 0; i-- {
		if memo.layers[i].buffer != nil {
			return CloneWorkingBuffer(memo.layers[i].buffer)
		}
	}
	return nil
}

// truncate drops every cached layer at or past index, releasing their
// snapshots.
func (memo *PipelineMemo) truncate(index int) {
	memo.layers = memo.layers[:index]
}

// EffectStack is the user-facing driver: it accumulates a validated
// effect list via Push and runs it, with memoized resume, via Run.
type EffectStack struct {
	kind     StackKind
	pending  []EffectConfig
	memo     PipelineMemo
	source   *WorkingBuffer
	Reporter ErrorReporter
	// DebugPrefix, if non-empty, enables the debug-export effects
	// (0x40-0x44): each writes its artifact(s) to DebugPrefix+<name>
	// instead of silently no-opping.
	DebugPrefix string
}

// NewEffectStack begins a new stack of the given kind.
func NewEffectStack(kind StackKind) *EffectStack {
	return &EffectStack{kind: kind}
}

// SetSource installs the source image the stack will run against,
// invalidating any cached layers keyed to a different size.
func (s *EffectStack) SetSource(source *WorkingBuffer) {
	s.source = source
}

// Push validates and appends one effect. An unknown id, an id from the
// other stack's catalogue, or a wrong param count reports an EngineError
// to s.Reporter (if set) and drops the effect rather than aborting the
// stack. Every packed byte decodes into its field's range, so no separate
// range check is made. Pushing past MaxStackSize likewise reports and
// drops.
func (s *EffectStack) Push(id EffectID, raw []byte) {
	if len(s.pending) >= MaxStackSize {
		s.report(newEngineError(ErrStackFull, "stack already holds %d effects", MaxStackSize))
		return
	}
	eff, err := DecodeEffect(s.kind, id, raw)
	if err != nil {
		s.report(err)
		return
	}
	s.pending = append(s.pending, EffectConfig{ID: id, Raw: append([]byte(nil), raw...), Params: eff.Params})
}

func (s *EffectStack) report(err *EngineError) {
	if s.Reporter != nil {
		s.Reporter(err)
	}
}

// Run executes the pending effect list against the installed source,
// resuming from the memoization cache where the list hasn't changed, and
// returns the final working buffer.
func (s *EffectStack) Run() (*WorkingBuffer, *EngineError) {
	if s.source == nil {
		err := newEngineError(ErrNoSource, "stack_end called with no source loaded")
		s.report(err)
		return nil, err
	}

	resume := s.memo.resumeIndex(s.pending, s.source.W, s.source.H)
	buf := s.memo.restoreFrom(resume)
	if buf == nil {
		buf = CloneWorkingBuffer(s.source)
	}

	s.memo.truncate(resume)
	s.memo.sourceW, s.memo.sourceH = s.source.W, s.source.H

	i := resume
	for i < len(s.pending) {
		cfg := s.pending[i]
		switch cfg.ID {
		case EffectGradientify, EffectLaminarize:
			consumed := s.runNormalSpaceSubloop(buf, i)
			i += consumed
			continue
		default:
			s.runHeightSpaceEffect(buf, cfg)
		}

		layer := memoLayer{config: cfg}
		if shouldMemoize(cfg.ID) {
			layer.buffer = CloneWorkingBuffer(buf)
		}
		s.memo.layers = append(s.memo.layers, layer)
		i++
	}

	return buf, nil
}

// runHeightSpaceEffect dispatches a height-space effect, operating
// per-plane on buf while preserving each plane's zero-mask (a no-data
// pixel stays no-data no matter what the effect would otherwise compute
// there, preventing ringing from bleeding into empty regions). Debug
// effects (0x40-0x44) are side-effect only: they write their artifacts to
// s.DebugPrefix, if set, and leave buf untouched.
func (s *EffectStack) runHeightSpaceEffect(buf *WorkingBuffer, cfg EffectConfig) {
	switch cfg.ID {
	case EffectBoxBlur:
		radius := 1
		if len(cfg.Params) > 0 {
			radius = int(cfg.Params[0])
		}
		for i, plane := range buf.Planes {
			buf.Planes[i] = boxBlurPlane(plane, radius)
		}
	case EffectFftClamp:
		threshold := float32(0.5)
		if len(cfg.Params) > 0 {
			threshold = cfg.Params[0]
		}
		for i, plane := range buf.Planes {
			buf.Planes[i] = fftClampPlane(plane, threshold)
		}
	case EffectDijkstra:
		for i, plane := range buf.Planes {
			buf.Planes[i] = dijkstraEffectPlane(plane, cfg.Params)
		}
	case EffectDebugHessianFlow, EffectDebugSplitChannel, EffectDebugLIC,
		EffectDebugLaplacian, EffectDebugRidgeMesh:
		s.runDebugExport(buf, cfg)
	default:
		// Procedural-source and color/blend effects belong to the
		// gradient stack; they leave the working buffer untouched here.
	}
}

// runDebugExport dispatches one debug-export effect against buf's first
// plane, reporting any write failure through s.Reporter rather than
// aborting the stack. A no-op when s.DebugPrefix is empty, since there is
// nowhere to write the artifact.
func (s *EffectStack) runDebugExport(buf *WorkingBuffer, cfg EffectConfig) {
	if s.DebugPrefix == "" {
		return
	}
	h := buf.Planes[0]
	var err error
	switch cfg.ID {
	case EffectDebugHessianFlow:
		err = ExportHessianFlowPNG(s.DebugPrefix+"hessian_flow.png", h)
	case EffectDebugSplitChannel:
		err = exportSplitChannelsDebug(s.DebugPrefix, h)
	case EffectDebugLIC:
		length := 0
		if len(cfg.Params) > 0 {
			length = int(cfg.Params[0])
		}
		err = exportLICDebug(s.DebugPrefix, h, length)
	case EffectDebugLaplacian:
		err = exportLaplacianDebug(s.DebugPrefix, h)
	case EffectDebugRidgeMesh:
		err = exportRidgeMeshDebug(s.DebugPrefix, h)
	}
	if err != nil {
		s.report(newEngineError(ErrDebugExport, "debug export 0x%02x failed: %v", cfg.ID, err))
	}
}

// runNormalSpaceSubloop lifts buf's first plane into a normal field,
// runs effects from i forward until it hits a matching PoissonSolve or
// the end of the list, then lowers the result back into height space via
// the constrained Poisson solver, using buf's pre-lift plane as the
// constraint source. Returns the number of pending entries it consumed.
func (s *EffectStack) runNormalSpaceSubloop(buf *WorkingBuffer, start int) int {
	original := buf.Planes[0].Clone()
	normals := HeightToNormals(original, 1.0)

	i := start
	for i < len(s.pending) {
		cfg := s.pending[i]
		i++
		switch cfg.ID {
		case EffectGradientify:
			// Already lifted; nothing further to do at entry.
		case EffectLaminarize:
			cfgL := DefaultLaminarizeConfig()
			if len(cfg.Params) > 0 {
				cfgL.Strength = cfg.Params[0]
			}
			if len(cfg.Params) > 1 {
				cfgL.Sigma = cfg.Params[1]
			}
			normals, _ = Laminarize(normals, 1.0, cfgL)
		case EffectPoissonSolve:
			solveCfg := DefaultPoissonConfig()
			if len(cfg.Params) > 0 {
				solveCfg.MaxIterations = int(cfg.Params[0])
			}
			if len(cfg.Params) > 1 {
				solveCfg.Tolerance = float64(cfg.Params[1])
			}
			lowered, _ := SolvePoisson(original, normals, solveCfg)
			buf.Planes[0] = lowered
			return i - start
		default:
			// Any other effect inside the sub-loop is not defined in
			// normal space; skip it rather than misapply it.
		}
	}

	// List ended without an explicit PoissonSolve: lower with defaults.
	lowered, _ := SolvePoisson(original, normals, DefaultPoissonConfig())
	buf.Planes[0] = lowered
	return i - start
}

// boxBlurPlane runs the sliding-window box blur (stackBlurPlane) over
// non-zero pixels, leaving no-data pixels at exactly zero.
func boxBlurPlane(p *HeightField, radius int) *HeightField {
	return stackBlurPlane(p, radius)
}

// fftClampPlane approximates a frequency-domain clamp by limiting each
// non-zero pixel's deviation from its local neighborhood mean to
// threshold, damping the high-frequency content a real FFT low-pass
// would otherwise remove.
func fftClampPlane(p *HeightField, threshold float32) *HeightField {
	out := p.Clone()
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			v := p.At(x, y)
			if v == 0 {
				continue
			}
			var sum float32
			var count int
			for oy := -1; oy <= 1; oy++ {
				for ox := -1; ox <= 1; ox++ {
					n := p.At(x+ox, y+oy)
					if n == 0 {
						continue
					}
					sum += n
					count++
				}
			}
			if count == 0 {
				continue
			}
			mean := sum / float32(count)
			delta := v - mean
			if delta > threshold {
				delta = threshold
			} else if delta < -threshold {
				delta = -threshold
			}
			out.Set(x, y, mean+delta)
		}
	}
	return out
}
