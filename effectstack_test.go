package terra

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// bumpySourceBuffer builds a working buffer with a single raised bump, so
// the ridge-mesh pipeline driving EffectDijkstra and the debug exports has
// real topology to chew on instead of a degenerate flat field.
func bumpySourceBuffer(w, h int) *WorkingBuffer {
	buf := &WorkingBuffer{W: w, H: h}
	for i := range buf.Planes {
		hf := NewHeightField(w, h)
		cx, cy := float32(w)/2, float32(h)/2
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dx, dy := float32(x)-cx, float32(y)-cy
				hf.Set(x, y, 1-0.05*(dx*dx+dy*dy))
			}
		}
		buf.Planes[i] = hf
	}
	return buf
}

func flatSourceBuffer(w, h int, v float32) *WorkingBuffer {
	buf := &WorkingBuffer{W: w, H: h}
	for i := range buf.Planes {
		hf := NewHeightField(w, h)
		for j := range hf.Pix {
			hf.Pix[j] = v
		}
		buf.Planes[i] = hf
	}
	return buf
}

func TestEffectStack_PushRejectsUnknownEffect(t *testing.T) {
	assert := assert.New(t)

	var reported *EngineError
	stack := NewEffectStack(StackErosion)
	stack.Reporter = func(e *EngineError) { reported = e }
	stack.Push(EffectID(0xFE), nil)

	assert.NotNil(reported)
	assert.Equal(ErrUnknownEffect, reported.Kind)
	assert.Empty(stack.pending)
}

func TestEffectStack_PushRejectsPastMaxStackSize(t *testing.T) {
	assert := assert.New(t)

	var lastErr *EngineError
	stack := NewEffectStack(StackErosion)
	stack.Reporter = func(e *EngineError) { lastErr = e }
	for i := 0; i < MaxStackSize; i++ {
		stack.Push(EffectFftClamp, []byte{128})
	}
	assert.Len(stack.pending, MaxStackSize)

	stack.Push(EffectFftClamp, []byte{128})
	assert.NotNil(lastErr)
	assert.Equal(ErrStackFull, lastErr.Kind)
	assert.Len(stack.pending, MaxStackSize)
}

func TestEffectStack_RunWithNoSourceReportsError(t *testing.T) {
	assert := assert.New(t)

	stack := NewEffectStack(StackErosion)
	_, err := stack.Run()
	assert.NotNil(err)
	assert.Equal(ErrNoSource, err.Kind)
}

func TestEffectStack_RunProducesWorkingBuffer(t *testing.T) {
	assert := assert.New(t)

	stack := NewEffectStack(StackErosion)
	stack.SetSource(flatSourceBuffer(4, 4, 0.5))
	stack.Push(EffectBoxBlur, []byte{1})

	out, err := stack.Run()
	assert.Nil(err)
	assert.Equal(4, out.W)
	assert.Equal(4, out.H)
}

func TestEffectStack_DijkstraEffectRunsAgainstRidgeMesh(t *testing.T) {
	assert := assert.New(t)

	stack := NewEffectStack(StackErosion)
	stack.SetSource(bumpySourceBuffer(12, 12))
	stack.Push(EffectDijkstra, []byte{128, 128, 128})

	out, err := stack.Run()
	assert.Nil(err)
	assert.Equal(12, out.W)
	assert.Equal(12, out.H)
}

func TestEffectStack_DebugExportNoopsWithoutPrefix(t *testing.T) {
	assert := assert.New(t)

	stack := NewEffectStack(StackErosion)
	stack.SetSource(bumpySourceBuffer(10, 10))
	stack.Push(EffectDebugRidgeMesh, nil)

	_, err := stack.Run()
	assert.Nil(err)
}

func TestEffectStack_DebugExportWritesArtifactsWithPrefix(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	prefix := filepath.Join(dir, "run_")

	stack := NewEffectStack(StackErosion)
	stack.SetSource(bumpySourceBuffer(10, 10))
	stack.DebugPrefix = prefix
	stack.Push(EffectDebugHessianFlow, nil)
	stack.Push(EffectDebugLaplacian, nil)

	_, err := stack.Run()
	assert.Nil(err)
	assert.FileExists(prefix + "hessian_flow.png")
	assert.FileExists(prefix + "laplacian.png")
}

func TestPipelineMemo_ResumeIndexFindsFirstDivergence(t *testing.T) {
	assert := assert.New(t)

	memo := &PipelineMemo{sourceW: 4, sourceH: 4}
	memo.layers = []memoLayer{
		{config: EffectConfig{ID: EffectBoxBlur, Raw: []byte{1}}},
		{config: EffectConfig{ID: EffectFftClamp, Raw: []byte{10}}},
	}

	same := []EffectConfig{
		{ID: EffectBoxBlur, Raw: []byte{1}},
		{ID: EffectFftClamp, Raw: []byte{99}}, // diverges here
	}
	assert.Equal(1, memo.resumeIndex(same, 4, 4))

	// A different source size invalidates the whole cache.
	assert.Equal(0, memo.resumeIndex(same, 8, 8))

	identical := []EffectConfig{
		{ID: EffectBoxBlur, Raw: []byte{1}},
		{ID: EffectFftClamp, Raw: []byte{10}},
	}
	assert.Equal(2, memo.resumeIndex(identical, 4, 4))
}

func TestEffectStack_MemoizationSkipsRecomputingUnchangedPrefix(t *testing.T) {
	assert := assert.New(t)

	stack := NewEffectStack(StackErosion)
	stack.SetSource(flatSourceBuffer(4, 4, 0.5))
	stack.Push(EffectBoxBlur, []byte{2})
	stack.Push(EffectFftClamp, []byte{50})

	first, err := stack.Run()
	assert.Nil(err)
	assert.NotNil(first)
	assert.Len(stack.memo.layers, 2)
	assert.NotNil(stack.memo.layers[0].buffer, "box blur is an expensive effect and must be snapshotted")
	assert.NotNil(stack.memo.layers[1].buffer)

	// Re-push the identical list: resumeIndex should walk straight to the
	// end without recomputing anything.
	stack.pending = nil
	stack.Push(EffectBoxBlur, []byte{2})
	stack.Push(EffectFftClamp, []byte{50})

	resume := stack.memo.resumeIndex(stack.pending, stack.source.W, stack.source.H)
	assert.Equal(2, resume)
}
